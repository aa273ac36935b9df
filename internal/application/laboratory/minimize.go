package laboratory

import (
	"context"

	"github.com/mwinokan/Fragmenstein/internal/domain/molecule"
	"github.com/mwinokan/Fragmenstein/internal/infrastructure/monitoring/logging"
	"github.com/mwinokan/Fragmenstein/pkg/errors"
)

const (
	// wildcardForceFactor scales the restraint on wildcard atoms, which
	// carry the attachment point.
	wildcardForceFactor = 10.0
	// laxForceDivisor weakens every restraint for the single retry.
	laxForceDivisor = 5.0
)

// restraints pins every atom that derives from a hit, plus the wildcards,
// to its placed position.
func (l *Lab) restraints(g *molecule.Graph, force float64) []molecule.Restraint {
	var out []molecule.Restraint
	for i, a := range g.Atoms {
		k := force
		switch {
		case a.IsWildcard():
			k *= wildcardForceFactor
		case g.Origin(i) == nil:
			continue
		}
		out = append(out, molecule.Restraint{
			Atom:          i,
			Target:        g.Position(i),
			Tolerance:     l.minCfg.RestraintTolerance,
			ForceConstant: k,
		})
	}
	return out
}

// minimize relaxes a positioned follow-up under restraints.  A failed or
// unconverged first attempt is retried once with restraints weakened by
// laxForceDivisor unless minimization is strict.
func (l *Lab) minimize(ctx context.Context, g *molecule.Graph) (*molecule.Minimized, error) {
	force := l.minCfg.RestraintForce
	res, err := l.minimizer.Optimize(ctx, g, l.restraints(g, force))
	if err == nil && res != nil && res.Converged {
		l.metrics.RecordMinimization("converged")
		return res, nil
	}
	if ctx.Err() != nil {
		l.metrics.RecordMinimization("failed")
		return nil, errors.Wrap(ctx.Err(), errors.ErrCodeCancelled, "minimization cancelled")
	}
	if l.labCfg.StrictMinimization {
		return l.settle(g, res, err)
	}

	l.logger.Info("retrying minimization with weaker restraints",
		logging.String("molecule", g.Name),
		logging.Float64("force", force/laxForceDivisor),
		logging.Bool("first_error", err != nil))
	l.metrics.RecordMinimization("retried")
	res, err = l.minimizer.Optimize(ctx, g, l.restraints(g, force/laxForceDivisor))
	if err == nil && res != nil && res.Converged {
		l.metrics.RecordMinimization("converged")
		return res, nil
	}
	return l.settle(g, res, err)
}

// settle accepts an unconverged relaxation with a warning and turns a failed
// one into an error.
func (l *Lab) settle(g *molecule.Graph, res *molecule.Minimized, err error) (*molecule.Minimized, error) {
	if err != nil || res == nil || res.Graph == nil {
		l.metrics.RecordMinimization("failed")
		if err == nil {
			return nil, errors.New(errors.ErrCodeMinimizerFailed, "minimizer returned no structure").WithDetail(g.Name)
		}
		return nil, errors.Wrap(err, errors.ErrCodeMinimizerFailed, "minimization failed")
	}
	l.metrics.RecordMinimization("not_converged")
	l.logger.Warn("minimization did not converge", logging.String("molecule", g.Name), logging.Float64("energy", res.Energy))
	return res, nil
}

//Personal.AI order the ending
