// Package laboratory runs many placement sessions concurrently: pairwise
// hit combination and follow-up placement in batch, with per-task timeouts,
// an optional result cache, metrics and restrained post-minimization.
package laboratory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/mwinokan/Fragmenstein/internal/config"
	"github.com/mwinokan/Fragmenstein/internal/domain/molecule"
	"github.com/mwinokan/Fragmenstein/internal/domain/placement"
	"github.com/mwinokan/Fragmenstein/internal/infrastructure/database/redis"
	"github.com/mwinokan/Fragmenstein/internal/infrastructure/monitoring/logging"
	prom "github.com/mwinokan/Fragmenstein/internal/infrastructure/monitoring/prometheus"
	"github.com/mwinokan/Fragmenstein/pkg/errors"
	ptypes "github.com/mwinokan/Fragmenstein/pkg/types/placement"
)

const (
	opCombine = "combine"
	opPlace   = "place"
	cacheName = "redis"
)

// Task is one follow-up to place.  Empty HitNames selects every hit.
type Task struct {
	Name       string
	Candidate  *molecule.Graph
	HitNames   []string
	Attachment *r3.Vec
}

// Outcome is the result of one task.  Graph is the positioned follow-up (or
// the scaffold for combinations) and is nil on failure.
type Outcome struct {
	ptypes.Outcome
	Graph *molecule.Graph
}

// Lab orchestrates placement sessions.
type Lab struct {
	placement config.PlacementConfig
	minimizer molecule.Minimizer
	minCfg    config.MinimizerConfig
	labCfg    config.LabConfig
	cache     redis.ResultCache
	metrics   *prom.PlacementMetrics
	logger    logging.Logger
}

// Option configures a Lab.
type Option func(*Lab)

// WithCache stores and reuses placement summaries.
func WithCache(c redis.ResultCache) Option {
	return func(l *Lab) { l.cache = c }
}

// WithMetrics records every outcome.
func WithMetrics(m *prom.PlacementMetrics) Option {
	return func(l *Lab) { l.metrics = m }
}

// WithLogger sets the lab logger.
func WithLogger(log logging.Logger) Option {
	return func(l *Lab) { l.logger = log }
}

// New builds a Lab from cfg around minimizer.
func New(cfg *config.Config, minimizer molecule.Minimizer, opts ...Option) *Lab {
	l := &Lab{
		placement: cfg.Placement,
		minimizer: minimizer,
		minCfg:    cfg.Minimizer,
		labCfg:    cfg.Lab,
	}
	for _, opt := range opts {
		opt(l)
	}
	l.logger = logging.OrNop(l.logger).Named("lab")
	if l.labCfg.Concurrency < 1 {
		l.labCfg.Concurrency = 1
	}
	return l
}

func (l *Lab) session(name string) *placement.Session {
	limits := molecule.SearchLimits{NodeBudget: l.placement.MCSNodeBudget, MaxMatches: l.placement.MCSMaxMatches}
	if limits.NodeBudget <= 0 || limits.MaxMatches <= 0 {
		limits = molecule.DefaultSearchLimits
	}
	return placement.NewSession(l.minimizer,
		placement.WithCutoff(l.placement.PositionalCutoff),
		placement.WithSearchLimits(limits),
		placement.WithLogger(l.logger.With(logging.String("task", name))))
}

// ─────────────────────────────────────────────────────────────────────────────
// Combine
// ─────────────────────────────────────────────────────────────────────────────

// Combine merges every unordered pair of hits into a scaffold.  Outcomes are
// returned in pair order (0-1, 0-2, ..., 1-2, ...).
func (l *Lab) Combine(ctx context.Context, hits []*molecule.Graph) ([]Outcome, error) {
	if err := checkHitNames(hits); err != nil {
		return nil, err
	}
	var pairs [][2]int
	for i := range hits {
		for j := i + 1; j < len(hits); j++ {
			pairs = append(pairs, [2]int{i, j})
		}
	}
	l.logger.Info("combining hit pairs", logging.Int("hits", len(hits)), logging.Int("pairs", len(pairs)))

	outcomes := make([]Outcome, len(pairs))
	l.run(ctx, len(pairs), func(i int) {
		a, b := hits[pairs[i][0]], hits[pairs[i][1]]
		name := a.Name + "-" + b.Name
		outcomes[i] = l.runTask(ctx, opCombine, name, func(taskCtx context.Context) (*ptypes.Summary, *molecule.Graph, error) {
			res, err := l.session(name).Combine(taskCtx, []*molecule.Graph{a.Clone(), b.Clone()})
			if err != nil {
				return nil, nil, err
			}
			l.metrics.RecordUnmatched(len(res.Unmatched))
			return res.Summary(), res.Scaffold, nil
		})
	})
	return outcomes, ctx.Err()
}

// Merge combines every hit into a single scaffold under the task timeout.
func (l *Lab) Merge(ctx context.Context, hits []*molecule.Graph) (Outcome, error) {
	if err := checkHitNames(hits); err != nil {
		return Outcome{}, err
	}
	names := make([]string, len(hits))
	copies := make([]*molecule.Graph, len(hits))
	for i, h := range hits {
		names[i] = h.Name
		copies[i] = h.Clone()
	}
	name := strings.Join(names, "-")
	out := l.runTask(ctx, opCombine, name, func(taskCtx context.Context) (*ptypes.Summary, *molecule.Graph, error) {
		res, err := l.session(name).Combine(taskCtx, copies)
		if err != nil {
			return nil, nil, err
		}
		l.metrics.RecordUnmatched(len(res.Unmatched))
		return res.Summary(), res.Scaffold, nil
	})
	return out, ctx.Err()
}

// ─────────────────────────────────────────────────────────────────────────────
// Place
// ─────────────────────────────────────────────────────────────────────────────

// Place runs every task against its hits.  A failing task is reported in its
// outcome and never cancels the others; the returned error is set only for
// invalid hits or a cancelled ctx.
func (l *Lab) Place(ctx context.Context, hits []*molecule.Graph, tasks []Task) ([]Outcome, error) {
	if err := checkHitNames(hits); err != nil {
		return nil, err
	}
	byName := make(map[string]*molecule.Graph, len(hits))
	for _, h := range hits {
		byName[h.Name] = h
	}
	l.logger.Info("placing follow-ups",
		logging.Int("tasks", len(tasks)),
		logging.Int("hits", len(hits)),
		logging.Int("concurrency", l.labCfg.Concurrency))

	outcomes := make([]Outcome, len(tasks))
	l.run(ctx, len(tasks), func(i int) {
		task := tasks[i]
		name := task.Name
		if name == "" && task.Candidate != nil {
			name = task.Candidate.Name
		}
		if name == "" {
			name = fmt.Sprintf("task%d", i)
		}
		outcomes[i] = l.runTask(ctx, opPlace, name, func(taskCtx context.Context) (*ptypes.Summary, *molecule.Graph, error) {
			selected, err := selectHits(byName, hits, task.HitNames)
			if err != nil {
				return nil, nil, err
			}
			return l.place(taskCtx, name, task, selected)
		})
	})
	return outcomes, ctx.Err()
}

// place runs one session, through the cache when configured.
func (l *Lab) place(ctx context.Context, name string, task Task, hits []*molecule.Graph) (*ptypes.Summary, *molecule.Graph, error) {
	compute := func(ctx context.Context) (*ptypes.Summary, *molecule.Graph, error) {
		copies := make([]*molecule.Graph, len(hits))
		for i, h := range hits {
			copies[i] = h.Clone()
		}
		res, err := l.session(name).Run(ctx, task.Candidate, copies, task.Attachment)
		l.recordLogbook(res)
		if err != nil {
			return nil, nil, err
		}
		l.metrics.RecordUnmatched(len(res.Unmatched))

		positioned := res.Positioned
		var energy *float64
		if l.labCfg.MinimizeOutput {
			m, err := l.minimize(ctx, positioned)
			if err != nil {
				return nil, nil, err
			}
			positioned = m.Graph
			e := m.Energy
			energy = &e
			res.Positioned = positioned
		}
		summary := res.Summary()
		summary.Name = name
		summary.Energy = energy
		return summary, positioned, nil
	}

	if l.cache == nil {
		summary, g, err := compute(ctx)
		if err != nil {
			return nil, nil, err
		}
		if err := attachMolBlock(summary, g); err != nil {
			return nil, nil, err
		}
		return summary, g, nil
	}

	key, err := cacheKey(task, hits, l.labCfg.MinimizeOutput)
	if err != nil {
		return nil, nil, err
	}
	var fresh *molecule.Graph
	summary, hit, err := l.cache.GetOrCompute(ctx, key, func(ctx context.Context) (*ptypes.Summary, error) {
		s, g, err := compute(ctx)
		if err != nil {
			return nil, err
		}
		fresh = g
		return s, attachMolBlock(s, g)
	})
	l.metrics.RecordCacheAccess(cacheName, hit)
	if err != nil {
		return nil, nil, err
	}
	if fresh != nil {
		return summary, fresh, nil
	}
	// Served from the cache or by a concurrent identical task.
	g, rerr := restore(summary)
	if rerr != nil {
		l.logger.Warn("cached structure could not be restored", logging.String("task", name), logging.Err(rerr))
	}
	if hit {
		return summary, g, errCached
	}
	return summary, g, nil
}

// errCached marks a cache hit; it never leaves the package.
var errCached = errors.New(errors.ErrCodeCacheError, "served from cache")

func (l *Lab) recordLogbook(res *placement.Result) {
	if res == nil {
		return
	}
	for _, e := range res.Logbook {
		l.metrics.RecordRung(string(e.Step), e.RungName)
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// Task plumbing
// ─────────────────────────────────────────────────────────────────────────────

// run calls fn for 0..n-1 with at most Concurrency calls in flight.  fn
// reports through its own outcome slot and never fails the group.
func (l *Lab) run(ctx context.Context, n int, fn func(i int)) {
	g, _ := errgroup.WithContext(ctx)
	g.SetLimit(l.labCfg.Concurrency)
	for i := 0; i < n; i++ {
		i := i
		g.Go(func() error {
			fn(i)
			return nil
		})
	}
	_ = g.Wait()
}

// runTask applies the per-task timeout and turns the work's result into an
// Outcome with metrics and logs.
func (l *Lab) runTask(ctx context.Context, op, name string, work func(context.Context) (*ptypes.Summary, *molecule.Graph, error)) Outcome {
	start := time.Now()
	release := l.metrics.TaskStarted(op)
	defer release()

	out := Outcome{Outcome: ptypes.Outcome{Name: name}}
	if err := ctx.Err(); err != nil {
		err = errors.Wrap(err, errors.ErrCodeCancelled, "batch cancelled")
		l.fail(&out, ptypes.StatusFailed, err)
		l.metrics.RecordOutcome(op, string(out.Status), out.ErrorCode, time.Since(start))
		return out
	}

	taskCtx, cancel := ctx, context.CancelFunc(func() {})
	if l.labCfg.TaskTimeout > 0 {
		taskCtx, cancel = context.WithTimeout(ctx, l.labCfg.TaskTimeout)
	}
	defer cancel()

	summary, g, err := work(taskCtx)
	switch {
	case err == errCached:
		out.Status = ptypes.StatusCached
		out.Summary = summary
		out.Graph = g
	case err != nil && taskCtx.Err() == context.DeadlineExceeded && ctx.Err() == nil:
		l.fail(&out, ptypes.StatusTimedOut, errors.Wrap(err, errors.ErrCodeTimeout, "task timed out"))
	case err != nil:
		l.fail(&out, ptypes.StatusFailed, err)
	default:
		out.Status = ptypes.StatusSucceeded
		out.Summary = summary
		out.Graph = g
	}
	d := time.Since(start)
	l.metrics.RecordOutcome(op, string(out.Status), out.ErrorCode, d)
	if out.Status.IsSuccess() {
		l.logger.Info("task finished",
			logging.String("operation", op),
			logging.String("task", name),
			logging.String("status", string(out.Status)),
			logging.Duration("elapsed", d))
	}
	return out
}

func (l *Lab) fail(out *Outcome, status ptypes.Status, err error) {
	out.Status = status
	out.ErrorCode = string(errors.GetCode(err))
	out.Error = err.Error()
	l.logger.Warn("task failed",
		logging.String("task", out.Name),
		logging.String("status", string(status)),
		logging.String("code", out.ErrorCode),
		logging.Err(err))
}

// checkHitNames requires every hit to carry a distinct non-empty name so that
// tasks can refer to them.
func checkHitNames(hits []*molecule.Graph) error {
	seen := make(map[string]bool, len(hits))
	for i, h := range hits {
		if h == nil || h.Name == "" {
			return errors.New(errors.ErrCodeHitInvalid, "hit without a name").WithDetail(fmt.Sprintf("index %d", i))
		}
		if seen[h.Name] {
			return errors.New(errors.ErrCodeHitInvalid, "duplicate hit name").WithDetail(h.Name)
		}
		seen[h.Name] = true
	}
	return nil
}

// selectHits resolves names against the hit set, keeping input order for an
// empty selection and the requested order otherwise.
func selectHits(byName map[string]*molecule.Graph, all []*molecule.Graph, names []string) ([]*molecule.Graph, error) {
	if len(names) == 0 {
		return all, nil
	}
	out := make([]*molecule.Graph, 0, len(names))
	var missing []string
	for _, n := range names {
		h, ok := byName[n]
		if !ok {
			missing = append(missing, n)
			continue
		}
		out = append(out, h)
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return nil, errors.New(errors.ErrCodeHitInvalid, "unknown hit names").WithDetail(fmt.Sprint(missing))
	}
	return out, nil
}

//Personal.AI order the ending
