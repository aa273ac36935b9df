package placement

import (
	"context"
	"sort"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/mwinokan/Fragmenstein/internal/domain/molecule"
	"github.com/mwinokan/Fragmenstein/internal/infrastructure/monitoring/logging"
	"github.com/mwinokan/Fragmenstein/pkg/errors"
)

// Placer positions a candidate onto a chimera.
type Placer struct {
	matcher   *SubstructureMatcher
	minimizer molecule.Minimizer
	logger    logging.Logger
}

// NewPlacer returns a placer; the minimizer supplies the scratch conformer.
func NewPlacer(matcher *SubstructureMatcher, minimizer molecule.Minimizer, logger logging.Logger) *Placer {
	return &Placer{matcher: matcher, minimizer: minimizer, logger: logging.OrNop(logger)}
}

// Place returns a copy of candidate whose matched atoms sit exactly on their
// chimera partners and whose unmatched atoms come from a scratch conformer,
// rigidly aligned team by team onto the local conserved context.  When
// attachment is set, the wildcard of a team is pinned to it.  The
// correspondence used is returned for the logbook.
func (p *Placer) Place(ctx context.Context, candidate, chimera *molecule.Graph, attachment *r3.Vec) (*molecule.Graph, *Match, error) {
	sextant, err := p.scratchPose(ctx, candidate)
	if err != nil {
		return nil, nil, err
	}

	match, err := p.matcher.Map(candidate, chimera)
	if err != nil {
		return nil, nil, err
	}
	if _, err := molecule.AlignOnto(sextant, chimera, match.Pairs); err != nil {
		return nil, match, err
	}

	putty := candidate.Clone()
	if err := putty.SetPositions(sextant.Positions()); err != nil {
		return nil, match, err
	}
	mapped := make(map[int]bool, len(match.Pairs))
	for _, pr := range match.Pairs {
		putty.SetPosition(pr.A, chimera.Position(pr.B))
		putty.CopyProvenance(pr.A, chimera, pr.B)
		mapped[pr.A] = true
	}
	for i := 0; i < putty.NumAtoms(); i++ {
		if !mapped[i] {
			putty.ResetProvenance(i)
		}
	}

	cats := categorize(putty, uniqueAtoms(putty, mapped))
	done := make(map[int]bool)
	teams := 0
	for _, anchor := range cats.anchors() {
		if done[anchor] {
			continue
		}
		team := cats.team(putty, anchor)
		sights := p.sights(putty, cats, team, done)

		if dummy := firstWildcard(putty, team); dummy >= 0 && attachment != nil {
			putty.SetPosition(dummy, *attachment)
			sights = append(sights, molecule.Pair{A: dummy, B: dummy})
		}

		rmsd, err := molecule.AlignOnto(sextant, putty, sights)
		if err != nil {
			return nil, match, err
		}
		for _, i := range team {
			putty.SetPosition(i, sextant.Position(i))
		}
		teams++
		p.logger.Debug("team placed",
			logging.String("candidate", candidate.Name),
			logging.Int("anchor", anchor),
			logging.Int("atoms", len(team)),
			logging.Int("sights", len(sights)),
			logging.Float64("rmsd", rmsd))
	}

	logIssues(p.logger, putty, putty.Sanitize())
	p.logger.Info("candidate placed",
		logging.String("candidate", candidate.Name),
		logging.Int("rung", match.Rung),
		logging.Int("mapped", len(match.Pairs)),
		logging.Int("teams", teams))
	return putty, match, nil
}

// scratchPose embeds and relaxes a copy of candidate.
func (p *Placer) scratchPose(ctx context.Context, candidate *molecule.Graph) (*molecule.Graph, error) {
	sextant := candidate.Clone()
	sextant.Sanitize()
	coords, err := p.minimizer.Embed(ctx, sextant)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeMinimizerFailed, "embedding failed")
	}
	if err := sextant.SetPositions(coords); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeMinimizerFailed, "embedding returned a wrong conformer size")
	}
	relaxed, err := p.minimizer.Optimize(ctx, sextant, nil)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeMinimizerFailed, "scratch relaxation failed")
	}
	if relaxed == nil || relaxed.Graph == nil {
		return nil, errors.New(errors.ErrCodeMinimizerFailed, "scratch relaxation returned no graph")
	}
	if err := sextant.SetPositions(relaxed.Graph.Positions()); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeMinimizerFailed, "relaxation returned a wrong conformer size")
	}
	return sextant, nil
}

// sights collects the conserved context of a team: every attachment of its
// anchors and the conserved neighbours of those attachments.  Anchors in the
// team are marked done.
func (p *Placer) sights(g *molecule.Graph, cats *categories, team []int, done map[int]bool) []molecule.Pair {
	seen := make(map[int]bool)
	var out []int
	add := func(i int) {
		if !seen[i] {
			seen[i] = true
			out = append(out, i)
		}
	}
	for _, member := range team {
		atts, ok := cats.pairs[member]
		if !ok {
			continue
		}
		done[member] = true
		for _, at := range atts {
			add(at.Atom)
			for _, n := range g.Neighbors(at.Atom) {
				if !cats.uniques[n] {
					add(n)
				}
			}
		}
	}
	sort.Ints(out)
	pairs := make([]molecule.Pair, len(out))
	for k, i := range out {
		pairs[k] = molecule.Pair{A: i, B: i}
	}
	return pairs
}

// firstWildcard returns the lowest-index wildcard atom of team, or -1.
func firstWildcard(g *molecule.Graph, team []int) int {
	for _, i := range team {
		if g.Atoms[i].IsWildcard() {
			return i
		}
	}
	return -1
}

//Personal.AI order the ending
