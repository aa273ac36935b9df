package forcefield

import (
	"context"
	"hash/fnv"
	"math"
	"math/rand"
	"time"

	"gonum.org/v1/gonum/optimize"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/mwinokan/Fragmenstein/internal/config"
	"github.com/mwinokan/Fragmenstein/internal/domain/molecule"
	"github.com/mwinokan/Fragmenstein/internal/infrastructure/monitoring/logging"
	"github.com/mwinokan/Fragmenstein/pkg/errors"
)

// Minimizer relaxes conformers with L-BFGS over the valence model.  It holds
// no mutable state and is safe for concurrent use.
type Minimizer struct {
	cfg    config.MinimizerConfig
	logger logging.Logger
}

var _ molecule.Minimizer = (*Minimizer)(nil)

// NewMinimizer returns a Minimizer configured from cfg.  Zero values fall
// back to the package defaults.
func NewMinimizer(cfg config.MinimizerConfig, logger logging.Logger) *Minimizer {
	if cfg.MaxIterations <= 0 {
		cfg.MaxIterations = config.DefaultMinimizerMaxIterations
	}
	if cfg.GradientTolerance <= 0 {
		cfg.GradientTolerance = config.DefaultGradientTolerance
	}
	return &Minimizer{
		cfg:    cfg,
		logger: logging.OrNop(logger).Named("forcefield"),
	}
}

// Energy evaluates g's current conformer under the restraints.
func (m *Minimizer) Energy(g *molecule.Graph, restraints []molecule.Restraint) float64 {
	return newModel(g, restraints).energy(flatten(g.Positions()))
}

// Embed grows a conformer outward from the first atom of every component,
// placing each atom at its ideal bond length in a random direction from its
// parent, then relaxes it.  The random source is seeded from the configured
// seed and the graph's structure, so a molecule embeds the same way whatever
// else runs alongside it.
func (m *Minimizer) Embed(ctx context.Context, g *molecule.Graph) ([]r3.Vec, error) {
	if err := ctx.Err(); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeCancelled, "embedding cancelled")
	}
	n := g.NumAtoms()
	ps := make([]r3.Vec, n)
	placed := make([]bool, n)

	rng := rand.New(rand.NewSource(m.seedFor(g)))
	offset := 0.0
	for start := 0; start < n; start++ {
		if placed[start] {
			continue
		}
		ps[start] = r3.Vec{X: offset}
		placed[start] = true
		queue := []int{start}
		for len(queue) > 0 {
			cur := queue[0]
			queue = queue[1:]
			for _, b := range g.IncidentBonds(cur) {
				bond := g.Bond(b)
				next := bond.Other(cur)
				if placed[next] {
					continue
				}
				dir := randomDirection(rng)
				ps[next] = r3.Add(ps[cur], r3.Scale(idealBondLength(g, bond), dir))
				placed[next] = true
				queue = append(queue, next)
			}
		}
		offset += 10
	}

	x, _, _, err := m.minimize(ctx, newModel(g, nil), flatten(ps))
	if err != nil {
		return nil, err
	}
	return unflatten(x), nil
}

// seedFor mixes the configured seed with the element sequence and bond list.
func (m *Minimizer) seedFor(g *molecule.Graph) int64 {
	h := fnv.New64a()
	for _, a := range g.Atoms {
		h.Write([]byte(a.Element))
		h.Write([]byte{0})
	}
	for _, b := range g.Bonds() {
		h.Write([]byte{byte(b.Begin), byte(b.Begin >> 8), byte(b.End), byte(b.End >> 8), byte(b.Order)})
	}
	return m.cfg.Seed ^ int64(h.Sum64())
}

// randomDirection returns a uniformly distributed unit vector.
func randomDirection(rng *rand.Rand) r3.Vec {
	for {
		v := r3.Vec{X: rng.Float64()*2 - 1, Y: rng.Float64()*2 - 1, Z: rng.Float64()*2 - 1}
		if n := r3.Norm(v); n > 0.1 && n <= 1 {
			return r3.Scale(1/n, v)
		}
	}
}

// Optimize relaxes g under restraints and returns a relaxed copy.
func (m *Minimizer) Optimize(ctx context.Context, g *molecule.Graph, restraints []molecule.Restraint) (*molecule.Minimized, error) {
	if err := ctx.Err(); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeCancelled, "optimization cancelled")
	}
	for _, r := range restraints {
		if r.Atom < 0 || r.Atom >= g.NumAtoms() {
			return nil, errors.InvalidParam("restraint atom out of range").
				WithDetail(g.Name)
		}
	}
	start := time.Now()
	mdl := newModel(g, restraints)
	x0 := flatten(g.Positions())
	before := mdl.energy(x0)

	x, energy, converged, err := m.minimize(ctx, mdl, x0)
	if err != nil {
		return nil, err
	}
	out := g.Clone()
	if err := out.SetPositions(unflatten(x)); err != nil {
		return nil, err
	}
	m.logger.Debug("conformer relaxed",
		logging.String("molecule", g.Name),
		logging.Int("restraints", len(restraints)),
		logging.Float64("energy_before", before),
		logging.Float64("energy", energy),
		logging.Bool("converged", converged),
		logging.Duration("elapsed", time.Since(start)))
	return &molecule.Minimized{Graph: out, EnergyBefore: before, Energy: energy, Converged: converged}, nil
}

// minimize runs L-BFGS from x0.  A run that stops early without a context
// error still yields its best location, reported as not converged.
func (m *Minimizer) minimize(ctx context.Context, mdl *model, x0 []float64) ([]float64, float64, bool, error) {
	e0 := mdl.energy(x0)
	if len(x0) == 0 || len(mdl.terms)+len(mdl.restraints) == 0 {
		return x0, e0, true, nil
	}
	problem := optimize.Problem{
		Func: mdl.energy,
		Grad: mdl.gradient,
		Status: func() (optimize.Status, error) {
			if err := ctx.Err(); err != nil {
				return optimize.Failure, err
			}
			return optimize.NotTerminated, nil
		},
	}
	settings := &optimize.Settings{
		GradientThreshold: m.cfg.GradientTolerance,
		MajorIterations:   m.cfg.MaxIterations,
	}
	res, err := optimize.Minimize(problem, x0, settings, &optimize.LBFGS{})
	if cerr := ctx.Err(); cerr != nil {
		return nil, 0, false, errors.Wrap(cerr, errors.ErrCodeCancelled, "minimization cancelled")
	}
	if res == nil || math.IsInf(res.F, 1) || math.IsNaN(res.F) {
		if err == nil {
			err = errors.New(errors.ErrCodeMinimizerFailed, "minimizer produced no location")
		}
		return nil, 0, false, errors.Wrap(err, errors.ErrCodeMinimizerFailed, "minimization failed")
	}
	if res.F > e0 {
		return x0, e0, false, nil
	}
	converged := err == nil && !res.Status.Early()
	if err != nil {
		m.logger.Debug("minimizer stopped early",
			logging.String("status", res.Status.String()),
			logging.Err(err))
	}
	return res.X, res.F, converged, nil
}

//Personal.AI order the ending
