package placement

import (
	"github.com/mwinokan/Fragmenstein/internal/domain/molecule"
	"github.com/mwinokan/Fragmenstein/internal/infrastructure/monitoring/logging"
)

// noFlex are elements whose valence cannot stretch to absorb surplus bonds.
var noFlex = map[string]bool{"F": true, "Cl": true, "Br": true, "C": true, "H": true}

// ChimeraBuilder adapts scaffold elements toward a candidate.
type ChimeraBuilder struct {
	matcher *SubstructureMatcher
	logger  logging.Logger
}

// NewChimeraBuilder returns a builder using the given substructure matcher.
func NewChimeraBuilder(matcher *SubstructureMatcher, logger logging.Logger) *ChimeraBuilder {
	return &ChimeraBuilder{matcher: matcher, logger: logging.OrNop(logger)}
}

// Build returns a copy of scaffold whose atoms matched to candidate atoms of
// a different element are mutated toward the candidate, unless the mutation
// would overload the new atom.  Topology, coordinates and provenance are
// unchanged.  The correspondence used is returned for the logbook.
func (b *ChimeraBuilder) Build(scaffold, candidate *molecule.Graph) (*molecule.Graph, *Match, error) {
	match, err := b.matcher.Map(scaffold, candidate)
	if err != nil {
		return nil, nil, err
	}

	chimera := scaffold.Clone()
	mutated := 0
	for _, p := range match.Pairs {
		have := chimera.Atoms[p.A]
		want := candidate.Atoms[p.B]
		if have.Element == want.Element || want.IsWildcard() {
			continue
		}
		if b.mutate(chimera, p.A, want) {
			mutated++
		}
	}

	logIssues(b.logger, chimera, chimera.Sanitize())
	b.logger.Info("chimera built",
		logging.String("scaffold", scaffold.Name),
		logging.String("candidate", candidate.Name),
		logging.Int("rung", match.Rung),
		logging.String("config", match.Config.String()),
		logging.Int("mapped", len(match.Pairs)),
		logging.Int("mutated", mutated))
	return chimera, match, nil
}

// mutate turns atom i of g into want's element when the valence allows it.
func (b *ChimeraBuilder) mutate(g *molecule.Graph, i int, want molecule.Atom) bool {
	have := g.Atoms[i]
	ceiling, ok := molecule.MaxValence(want.Element)
	if !ok {
		b.logger.Debug("mutation skipped: no valence entry", logging.String("element", want.Element), logging.Int("atom", i))
		return false
	}
	valence := g.ExplicitValence(i)
	diff := valence - ceiling
	if diff > 0 && (noFlex[want.Element] || noFlex[have.Element]) {
		b.logger.Debug("mutation skipped: valence surplus",
			logging.Int("atom", i),
			logging.String("from", have.Element),
			logging.String("to", want.Element),
			logging.Int("valence", valence))
		return false
	}
	if valence > 4 && want.Element != "P" {
		b.logger.Debug("mutation skipped: hypervalent", logging.Int("atom", i), logging.String("to", want.Element))
		return false
	}

	mutated := have
	mutated.Element = want.Element
	mutated.Charge = want.Charge
	if diff > 0 {
		mutated.Charge = diff
	}
	g.Atoms[i] = mutated
	b.logger.Debug("atom mutated",
		logging.Int("atom", i),
		logging.String("from", have.Element),
		logging.String("to", want.Element),
		logging.Int("charge", mutated.Charge))
	return true
}

//Personal.AI order the ending
