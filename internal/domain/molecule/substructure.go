package molecule

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// ─────────────────────────────────────────────────────────────────────────────
// Matching configuration
// ─────────────────────────────────────────────────────────────────────────────

// AtomCompare selects how atoms are compared during MCS search.
type AtomCompare int

const (
	CompareAnyAtom AtomCompare = iota
	CompareElements
)

// BondCompare selects how bonds are compared during MCS search.
type BondCompare int

const (
	CompareAnyBond BondCompare = iota
	// CompareOrder requires equal bond orders; single and aromatic bonds are
	// treated as equal.
	CompareOrder
)

// MatchConfig is one matching mode.
type MatchConfig struct {
	AtomCompare AtomCompare
	BondCompare BondCompare
	// RingMatchesRingOnly restricts ring atoms and bonds to ring partners and
	// chain atoms and bonds to chain partners.
	RingMatchesRingOnly bool
	// PermissiveRingFusion allows partial rings and fused systems to match a
	// subset of another ring system.  Only the permissive mode is implemented.
	PermissiveRingFusion bool
	MatchChirality       bool
}

func (c MatchConfig) String() string {
	atoms := "any"
	if c.AtomCompare == CompareElements {
		atoms = "elements"
	}
	bonds := "any"
	if c.BondCompare == CompareOrder {
		bonds = "order"
	}
	return fmt.Sprintf("atoms=%s bonds=%s ringMatchesRingOnly=%t permissiveRingFusion=%t chirality=%t",
		atoms, bonds, c.RingMatchesRingOnly, c.PermissiveRingFusion, c.MatchChirality)
}

// SearchLimits bounds one MCS query.
type SearchLimits struct {
	// NodeBudget caps visited search states; the best correspondences found
	// so far are returned once it is spent.
	NodeBudget int
	// MaxMatches caps the number of equivalent correspondences kept.
	MaxMatches int
}

// DefaultSearchLimits are used when a zero SearchLimits is supplied.
var DefaultSearchLimits = SearchLimits{NodeBudget: 200000, MaxMatches: 256}

// Mapping is an atom correspondence sorted by A index.
type Mapping []Pair

// Lookup returns the B partner of atom a.
func (m Mapping) Lookup(a int) (int, bool) {
	for _, p := range m {
		if p.A == a {
			return p.B, true
		}
	}
	return -1, false
}

// Contains reports whether every pair of other is present in m.
func (m Mapping) Contains(other Mapping) bool {
	set := make(map[Pair]bool, len(m))
	for _, p := range m {
		set[p] = true
	}
	for _, p := range other {
		if !set[p] {
			return false
		}
	}
	return true
}

func (m Mapping) key() string {
	var sb strings.Builder
	for _, p := range m {
		sb.WriteString(strconv.Itoa(p.A))
		sb.WriteByte(':')
		sb.WriteString(strconv.Itoa(p.B))
		sb.WriteByte(',')
	}
	return sb.String()
}

// ─────────────────────────────────────────────────────────────────────────────
// Maximum common substructure search
// ─────────────────────────────────────────────────────────────────────────────

// FindMCS returns every maximum common connected substructure correspondence
// between a and b under cfg: the mappings with the most atoms, ties broken by
// the most matched bonds.  Correspondences are returned in discovery order,
// which is deterministic: seeds in ascending a then b index, growth through
// the lowest-index frontier atom of a, partners in ascending b index.
//
// A correspondence is a connected common subgraph: every mapped atom is tied
// to the rest through at least one bond present and compatible in both
// graphs, and no pair of mapped atoms is bonded incompatibly in a and b.
func FindMCS(a, b *Graph, cfg MatchConfig, limits SearchLimits) []Mapping {
	if limits.NodeBudget <= 0 {
		limits.NodeBudget = DefaultSearchLimits.NodeBudget
	}
	if limits.MaxMatches <= 0 {
		limits.MaxMatches = DefaultSearchLimits.MaxMatches
	}
	if a.NumAtoms() == 0 || b.NumAtoms() == 0 {
		return nil
	}
	s := newMCSSearch(a, b, cfg, limits)
	s.run()
	return s.results
}

type mcsSearch struct {
	a, b   *Graph
	cfg    MatchConfig
	limits SearchLimits
	ringA  RingInfo
	ringB  RingInfo

	aToB     []int
	bToA     []int
	excluded []bool // per search branch
	retired  []bool // seeds already fully explored
	order    []int  // mapped A atoms in mapping order

	size    int
	bonds   int
	freeA   int
	bestN   int
	bestB   int
	results []Mapping
	seen    map[string]bool
	nodes   int
}

func newMCSSearch(a, b *Graph, cfg MatchConfig, limits SearchLimits) *mcsSearch {
	s := &mcsSearch{
		a: a, b: b, cfg: cfg, limits: limits,
		aToB:     make([]int, a.NumAtoms()),
		bToA:     make([]int, b.NumAtoms()),
		excluded: make([]bool, a.NumAtoms()),
		retired:  make([]bool, a.NumAtoms()),
		seen:     make(map[string]bool),
	}
	if cfg.RingMatchesRingOnly {
		s.ringA = a.RingInfo()
		s.ringB = b.RingInfo()
	}
	for i := range s.aToB {
		s.aToB[i] = -1
	}
	for i := range s.bToA {
		s.bToA[i] = -1
	}
	return s
}

func (s *mcsSearch) run() {
	for a0 := 0; a0 < s.a.NumAtoms(); a0++ {
		comp := s.a.ComponentOf(a0)
		for b0 := 0; b0 < s.b.NumAtoms(); b0++ {
			if s.spent() {
				return
			}
			if !s.atomsMatch(a0, b0) {
				continue
			}
			s.freeA = 0
			for _, i := range comp {
				if !s.retired[i] {
					s.freeA++
				}
			}
			s.assign(a0, b0, 0)
			s.extend()
			s.unassign(a0, b0, 0)
		}
		s.retired[a0] = true
	}
}

func (s *mcsSearch) spent() bool { return s.nodes >= s.limits.NodeBudget }

func (s *mcsSearch) extend() {
	if s.spent() {
		return
	}
	s.nodes++
	s.record()

	x := s.frontier()
	if x < 0 {
		return
	}
	freeB := s.b.NumAtoms() - s.size
	bound := s.size + minInt(s.freeA, freeB)
	if bound < s.bestN || (bound == s.bestN && len(s.results) >= s.limits.MaxMatches) {
		return
	}

	for y := 0; y < s.b.NumAtoms(); y++ {
		if s.bToA[y] >= 0 {
			continue
		}
		if added, ok := s.feasible(x, y); ok {
			s.assign(x, y, added)
			s.extend()
			s.unassign(x, y, added)
		}
	}

	s.excluded[x] = true
	s.freeA--
	s.extend()
	s.freeA++
	s.excluded[x] = false
}

// frontier returns the lowest-index unmapped, non-excluded a atom bonded to
// the current mapping, or -1.
func (s *mcsSearch) frontier() int {
	best := -1
	for _, m := range s.order {
		for _, w := range s.a.Neighbors(m) {
			if s.aToB[w] >= 0 || s.excluded[w] || s.retired[w] {
				continue
			}
			if best < 0 || w < best {
				best = w
			}
		}
	}
	return best
}

// feasible checks mapping x→y against the current mapping and returns the
// number of bonds it adds to the common subgraph.
func (s *mcsSearch) feasible(x, y int) (int, bool) {
	if !s.atomsMatch(x, y) {
		return 0, false
	}
	added := 0
	for _, bx := range s.a.adj[x] {
		m := s.a.bonds[bx].Other(x)
		my := s.aToB[m]
		if my < 0 {
			continue
		}
		by, ok := s.b.BondBetween(y, my)
		if !ok {
			continue
		}
		if !s.bondsMatch(bx, by) {
			return 0, false
		}
		added++
	}
	// Bonds in b towards mapped atoms whose preimage is not bonded to x are
	// allowed: the common subgraph need not be induced.
	return added, added > 0
}

func (s *mcsSearch) atomsMatch(x, y int) bool {
	ax, by := s.a.Atoms[x], s.b.Atoms[y]
	if s.cfg.AtomCompare == CompareElements && ax.Element != by.Element {
		return false
	}
	if s.cfg.RingMatchesRingOnly && s.ringA.Atoms[x] != s.ringB.Atoms[y] {
		return false
	}
	if s.cfg.MatchChirality && ax.Chirality != by.Chirality {
		return false
	}
	return true
}

func (s *mcsSearch) bondsMatch(bx, by int) bool {
	if s.cfg.RingMatchesRingOnly && s.ringA.Bonds[bx] != s.ringB.Bonds[by] {
		return false
	}
	if s.cfg.BondCompare == CompareAnyBond {
		return true
	}
	ox, oy := s.a.bonds[bx].Order, s.b.bonds[by].Order
	if ox == oy {
		return true
	}
	return (ox == BondSingle && oy == BondAromatic) || (ox == BondAromatic && oy == BondSingle)
}

func (s *mcsSearch) assign(x, y, added int) {
	s.aToB[x] = y
	s.bToA[y] = x
	s.order = append(s.order, x)
	s.size++
	s.bonds += added
	s.freeA--
}

func (s *mcsSearch) unassign(x, y, added int) {
	s.aToB[x] = -1
	s.bToA[y] = -1
	s.order = s.order[:len(s.order)-1]
	s.size--
	s.bonds -= added
	s.freeA++
}

func (s *mcsSearch) record() {
	if s.size < s.bestN || (s.size == s.bestN && s.bonds < s.bestB) {
		return
	}
	if s.size > s.bestN || s.bonds > s.bestB {
		s.bestN, s.bestB = s.size, s.bonds
		s.results = s.results[:0]
		s.seen = make(map[string]bool)
	}
	if len(s.results) >= s.limits.MaxMatches {
		return
	}
	m := make(Mapping, 0, s.size)
	for _, x := range s.order {
		m = append(m, Pair{A: x, B: s.aToB[x]})
	}
	sort.Slice(m, func(i, j int) bool { return m[i].A < m[j].A })
	k := m.key()
	if s.seen[k] {
		return
	}
	s.seen[k] = true
	s.results = append(s.results, m)
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

//Personal.AI order the ending
