package placement

import (
	"context"
	"strconv"
	"time"

	"github.com/google/uuid"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/mwinokan/Fragmenstein/internal/domain/molecule"
	"github.com/mwinokan/Fragmenstein/internal/infrastructure/monitoring/logging"
	"github.com/mwinokan/Fragmenstein/pkg/errors"
	ptypes "github.com/mwinokan/Fragmenstein/pkg/types/placement"
)

// Result carries the artifacts of one session.  On failure the fields filled
// before the failing step are kept.
type Result struct {
	ID         uuid.UUID
	Candidate  string
	Hits       []*molecule.Graph
	Scaffold   *molecule.Graph
	Chimera    *molecule.Graph
	Positioned *molecule.Graph
	Unmatched  []string
	Logbook    []ptypes.LogbookEntry
	Duration   time.Duration
}

// Summary converts the result into its serialisable form.  The positioned
// graph is summarised when present, otherwise the scaffold.
func (r *Result) Summary() *ptypes.Summary {
	s := &ptypes.Summary{
		ID:        r.ID.String(),
		Name:      r.Candidate,
		Unmatched: r.Unmatched,
		Logbook:   r.Logbook,
		Duration:  r.Duration,
		CreatedAt: time.Now().UTC(),
	}
	for _, h := range r.Hits {
		s.Hits = append(s.Hits, h.Name)
	}
	g := r.Positioned
	if g == nil {
		g = r.Scaffold
	}
	if g != nil {
		s.Atoms = AtomProvenances(g)
		if s.Name == "" {
			s.Name = g.Name
		}
	}
	return s
}

// AtomProvenances exports the per-atom provenance of g.
func AtomProvenances(g *molecule.Graph) []ptypes.AtomProvenance {
	out := make([]ptypes.AtomProvenance, g.NumAtoms())
	for i := range out {
		out[i] = ptypes.AtomProvenance{
			Index:      i,
			Element:    g.Atoms[i].Element,
			Origin:     g.Origin(i),
			Confidence: g.Confidence(i),
		}
	}
	return out
}

// Options tune a session.
type Options struct {
	Cutoff float64
	Limits molecule.SearchLimits
	Logger logging.Logger
}

// Option configures Options.
type Option func(*Options)

// WithCutoff sets the positional cutoff.
func WithCutoff(cutoff float64) Option {
	return func(o *Options) { o.Cutoff = cutoff }
}

// WithSearchLimits bounds every MCS query.
func WithSearchLimits(limits molecule.SearchLimits) Option {
	return func(o *Options) { o.Limits = limits }
}

// WithLogger sets the session logger.
func WithLogger(l logging.Logger) Option {
	return func(o *Options) { o.Logger = l }
}

// Session is one compositor/placement run.  It is not safe for concurrent
// use; run one session per goroutine.
type Session struct {
	id         uuid.UUID
	logger     logging.Logger
	compositor *Compositor
	refiner    *Refiner
	chimera    *ChimeraBuilder
	placer     *Placer
	logbook    Logbook
}

// NewSession wires the placement services around minimizer.
func NewSession(minimizer molecule.Minimizer, opts ...Option) *Session {
	o := Options{Cutoff: DefaultCutoff, Limits: molecule.DefaultSearchLimits}
	for _, opt := range opts {
		opt(&o)
	}
	id := uuid.New()
	logger := logging.OrNop(o.Logger).With(logging.String("session", id.String()))

	spatial := NewSpatialMatcher(o.Cutoff)
	matcher := NewSubstructureMatcher(o.Limits, logger)
	return &Session{
		id:         id,
		logger:     logger,
		compositor: NewCompositor(spatial, logger.Named("compositor")),
		refiner:    NewRefiner(spatial, logger.Named("refiner")),
		chimera:    NewChimeraBuilder(matcher, logger.Named("chimera")),
		placer:     NewPlacer(matcher, minimizer, logger.Named("placer")),
	}
}

// ID returns the session identifier.
func (s *Session) ID() uuid.UUID { return s.id }

// Combine merges and refines hits into a scaffold.
func (s *Session) Combine(ctx context.Context, hits []*molecule.Graph) (*Result, error) {
	start := time.Now()
	res := &Result{ID: s.id}
	defer func() { res.Duration = time.Since(start) }()

	if err := ctx.Err(); err != nil {
		return res, errors.Wrap(err, errors.ErrCodeCancelled, "session cancelled")
	}
	if err := s.combine(res, hits); err != nil {
		return res, err
	}
	logging.LogOperationDuration(s.logger, "combine", start, logging.String("scaffold", res.Scaffold.Name))
	return res, nil
}

func (s *Session) combine(res *Result, hits []*molecule.Graph) error {
	merge, err := s.compositor.MergeHits(hits)
	if err != nil {
		return err
	}
	res.Hits = merge.Hits
	res.Unmatched = merge.Unmatched
	res.Scaffold = s.refiner.Refine(merge.Scaffold, mergedHits(merge))
	return nil
}

// mergedHits drops the unmatched hits so they do not pull refined
// coordinates.
func mergedHits(m *Merge) []*molecule.Graph {
	if len(m.Unmatched) == 0 {
		return m.Hits
	}
	skip := make(map[string]bool, len(m.Unmatched))
	for _, n := range m.Unmatched {
		skip[n] = true
	}
	out := make([]*molecule.Graph, 0, len(m.Hits))
	for _, h := range m.Hits {
		if !skip[h.Name] {
			out = append(out, h)
		}
	}
	return out
}

// Run builds the scaffold from hits, adapts it into a chimera of candidate
// and positions candidate onto it.  attachment optionally pins the
// candidate's wildcard atom.
func (s *Session) Run(ctx context.Context, candidate *molecule.Graph, hits []*molecule.Graph, attachment *r3.Vec) (*Result, error) {
	start := time.Now()
	res := &Result{ID: s.id}
	defer func() {
		res.Duration = time.Since(start)
		res.Logbook = s.logbook.Entries()
	}()

	if err := ctx.Err(); err != nil {
		return res, errors.Wrap(err, errors.ErrCodeCancelled, "session cancelled")
	}
	if candidate == nil || candidate.NumAtoms() == 0 {
		return res, errors.New(errors.CodeInvalidParam, "empty candidate")
	}
	cand, _ := candidate.RemoveHydrogens()
	if cand.Name == "" {
		cand.Name = "followup"
	}
	res.Candidate = cand.Name
	attachment = s.checkAttachment(cand, attachment)

	if err := s.combine(res, hits); err != nil {
		return res, err
	}

	chimera, match, err := s.chimera.Build(res.Scaffold, cand)
	s.logbook.Record(ptypes.StepScaffoldFollowup, match)
	if err != nil {
		return res, err
	}
	res.Chimera = chimera

	positioned, match, err := s.placer.Place(ctx, cand, chimera, attachment)
	s.logbook.Record(ptypes.StepFollowupChimera, match)
	if err != nil {
		return res, err
	}
	res.Positioned = positioned

	logging.LogOperationDuration(s.logger, "place", start,
		logging.String("candidate", cand.Name),
		logging.Int("unmatched", len(res.Unmatched)))
	return res, nil
}

// checkAttachment warns about a wildcard without an attachment point and
// drops an attachment point the candidate has no wildcard for.
func (s *Session) checkAttachment(candidate *molecule.Graph, attachment *r3.Vec) *r3.Vec {
	wildcards := 0
	for _, a := range candidate.Atoms {
		if a.IsWildcard() {
			wildcards++
		}
	}
	switch {
	case wildcards > 0 && attachment == nil:
		s.logger.Warn("candidate has a wildcard atom but no attachment point was given",
			logging.String("candidate", candidate.Name),
			logging.Int("wildcards", wildcards))
	case wildcards == 0 && attachment != nil:
		s.logger.Warn("attachment point ignored: candidate has no wildcard atom",
			logging.String("candidate", candidate.Name),
			logging.String("attachment", formatVec(*attachment)))
		return nil
	}
	return attachment
}

func formatVec(v r3.Vec) string {
	f := func(x float64) string { return strconv.FormatFloat(x, 'f', 3, 64) }
	return f(v.X) + "," + f(v.Y) + "," + f(v.Z)
}

//Personal.AI order the ending
