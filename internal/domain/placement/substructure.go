package placement

import (
	"github.com/mwinokan/Fragmenstein/internal/domain/molecule"
	"github.com/mwinokan/Fragmenstein/internal/infrastructure/monitoring/logging"
	"github.com/mwinokan/Fragmenstein/pkg/errors"
)

// LadderRung is one matching configuration of the relaxation ladder.
type LadderRung struct {
	Name   string
	Config molecule.MatchConfig
}

// StrictMatch is the reference correspondence every accepted lax
// correspondence must agree with.
var StrictMatch = molecule.MatchConfig{
	AtomCompare:          molecule.CompareElements,
	BondCompare:          molecule.CompareOrder,
	RingMatchesRingOnly:  true,
	PermissiveRingFusion: true,
	MatchChirality:       true,
}

// MatchingLadder is tried in order; the first rung yielding a correspondence
// consistent with the strict one wins.
var MatchingLadder = []LadderRung{
	{Name: "any-atom any-bond", Config: molecule.MatchConfig{
		AtomCompare: molecule.CompareAnyAtom, BondCompare: molecule.CompareAnyBond, PermissiveRingFusion: true}},
	{Name: "any-atom bond-order", Config: molecule.MatchConfig{
		AtomCompare: molecule.CompareAnyAtom, BondCompare: molecule.CompareOrder, PermissiveRingFusion: true}},
	{Name: "element bond-order", Config: molecule.MatchConfig{
		AtomCompare: molecule.CompareElements, BondCompare: molecule.CompareOrder, PermissiveRingFusion: true}},
	{Name: "any-atom any-bond ring-only", Config: molecule.MatchConfig{
		AtomCompare: molecule.CompareAnyAtom, BondCompare: molecule.CompareAnyBond, RingMatchesRingOnly: true, PermissiveRingFusion: true}},
	{Name: "any-atom bond-order ring-only", Config: molecule.MatchConfig{
		AtomCompare: molecule.CompareAnyAtom, BondCompare: molecule.CompareOrder, RingMatchesRingOnly: true, PermissiveRingFusion: true}},
	{Name: "element bond-order ring-only", Config: molecule.MatchConfig{
		AtomCompare: molecule.CompareElements, BondCompare: molecule.CompareOrder, RingMatchesRingOnly: true, PermissiveRingFusion: true}},
}

// Match is the winning correspondence: A indexes the first graph, B the
// second.
type Match struct {
	Pairs    []molecule.Pair
	Rung     int
	RungName string
	Config   molecule.MatchConfig
}

// Forward returns the correspondence as an A→B map.
func (m *Match) Forward() map[int]int {
	out := make(map[int]int, len(m.Pairs))
	for _, p := range m.Pairs {
		out[p.A] = p.B
	}
	return out
}

// Reverse returns the correspondence as a B→A map.
func (m *Match) Reverse() map[int]int {
	out := make(map[int]int, len(m.Pairs))
	for _, p := range m.Pairs {
		out[p.B] = p.A
	}
	return out
}

// SubstructureMatcher walks the matching ladder.
type SubstructureMatcher struct {
	Limits molecule.SearchLimits
	logger logging.Logger
}

// NewSubstructureMatcher returns a matcher with the given search limits.
func NewSubstructureMatcher(limits molecule.SearchLimits, logger logging.Logger) *SubstructureMatcher {
	return &SubstructureMatcher{Limits: limits, logger: logging.OrNop(logger)}
}

// Map computes the strict correspondences between a and b, then returns the
// first lax correspondence, at the first ladder rung, that extends one of
// them.  Pairs joining a wildcard to a non-wildcard atom are dropped from lax
// correspondences before the comparison.
func (s *SubstructureMatcher) Map(a, b *molecule.Graph) (*Match, error) {
	strict := molecule.FindMCS(a, b, StrictMatch, s.Limits)
	if len(strict) == 0 {
		return nil, errors.MatchingExhausted(a.Name, b.Name).WithDetail(a.Name + " vs " + b.Name + ": no strict correspondence")
	}

	for i, rung := range MatchingLadder {
		for _, lax := range molecule.FindMCS(a, b, rung.Config, s.Limits) {
			lax = dropWildcardMismatches(a, b, lax)
			if !extendsAny(lax, strict) {
				continue
			}
			s.logger.Debug("matching rung accepted",
				logging.String("a", a.Name),
				logging.String("b", b.Name),
				logging.Int("rung", i),
				logging.String("config", rung.Config.String()),
				logging.Int("mapped", len(lax)))
			return &Match{Pairs: lax, Rung: i, RungName: rung.Name, Config: rung.Config}, nil
		}
	}
	return nil, errors.MatchingExhausted(a.Name, b.Name)
}

func dropWildcardMismatches(a, b *molecule.Graph, m molecule.Mapping) molecule.Mapping {
	out := make(molecule.Mapping, 0, len(m))
	for _, p := range m {
		if a.Atoms[p.A].IsWildcard() != b.Atoms[p.B].IsWildcard() {
			continue
		}
		out = append(out, p)
	}
	return out
}

func extendsAny(lax molecule.Mapping, strict []molecule.Mapping) bool {
	for _, s := range strict {
		if lax.Contains(s) {
			return true
		}
	}
	return false
}

//Personal.AI order the ending
