// Package molecule provides the molecular graph toolkit used by the placement
// core: an atom/bond graph carrying one 3-D conformer and a per-atom
// provenance side table, plus validation, ring perception, connected
// components, bond cutting, rigid superposition and maximum common
// substructure search.
package molecule

import (
	"fmt"
	"sort"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/mwinokan/Fragmenstein/pkg/errors"
)

// ─────────────────────────────────────────────────────────────────────────────
// Value types
// ─────────────────────────────────────────────────────────────────────────────

// Wildcard is the element symbol of a placeholder atom marking a free
// attachment point.
const Wildcard = "*"

// BondOrder is the bond type tag.  The numeric values follow the MDL molfile
// bond-type column.
type BondOrder int

const (
	BondSingle   BondOrder = 1
	BondDouble   BondOrder = 2
	BondTriple   BondOrder = 3
	BondAromatic BondOrder = 4
)

// Valence returns the bond's contribution to the valence of each end.
func (o BondOrder) Valence() float64 {
	switch o {
	case BondDouble:
		return 2
	case BondTriple:
		return 3
	case BondAromatic:
		return 1.5
	default:
		return 1
	}
}

func (o BondOrder) String() string {
	switch o {
	case BondSingle:
		return "single"
	case BondDouble:
		return "double"
	case BondTriple:
		return "triple"
	case BondAromatic:
		return "aromatic"
	default:
		return fmt.Sprintf("BondOrder(%d)", int(o))
	}
}

// Chirality is the tetrahedral chirality tag of an atom.
type Chirality int

const (
	ChiralNone Chirality = iota
	ChiralCW
	ChiralCCW
)

// Atom is one vertex of a Graph.  Provenance is not stored here; see the
// Graph side table.
type Atom struct {
	Element   string
	Charge    int
	Aromatic  bool
	Chirality Chirality
	// ImplicitHs is derived by Sanitize.
	ImplicitHs int
}

// IsWildcard reports whether the atom is a placeholder.
func (a Atom) IsWildcard() bool { return a.Element == Wildcard }

// Bond is an undirected edge between two atom indices.
type Bond struct {
	Begin int
	End   int
	Order BondOrder
}

// Other returns the end of the bond that is not i.
func (b Bond) Other(i int) int {
	if b.Begin == i {
		return b.End
	}
	return b.Begin
}

// Pair is an atom correspondence between two graphs: A indexes the first
// graph, B the second.
type Pair struct {
	A int
	B int
}

// ─────────────────────────────────────────────────────────────────────────────
// Graph
// ─────────────────────────────────────────────────────────────────────────────

// Graph is a molecular graph with exactly one conformer.  Atom indices are
// stable for the lifetime of an instance; growth is append-only.  A Graph is
// not safe for concurrent mutation; callers Clone before mutating a graph
// they do not own.
type Graph struct {
	Name  string
	Atoms []Atom

	bonds  []Bond
	adj    [][]int // atom index → incident bond indices
	coords []r3.Vec
	posed  bool
	prov   provenance
}

// NewGraph returns an empty graph.
func NewGraph(name string) *Graph {
	return &Graph{Name: name, prov: newProvenance()}
}

// NumAtoms returns the atom count.
func (g *Graph) NumAtoms() int { return len(g.Atoms) }

// NumBonds returns the bond count.
func (g *Graph) NumBonds() int { return len(g.bonds) }

// AddAtom appends an atom at pos and returns its index.  A position away
// from the origin marks the graph as posed; see MarkPosed for conformers
// that legitimately sit at the origin.
func (g *Graph) AddAtom(atom Atom, pos r3.Vec) int {
	if pos != (r3.Vec{}) {
		g.posed = true
	}
	g.Atoms = append(g.Atoms, atom)
	g.coords = append(g.coords, pos)
	g.adj = append(g.adj, nil)
	return len(g.Atoms) - 1
}

// AddBond joins atoms i and j and returns the new bond index.
func (g *Graph) AddBond(i, j int, order BondOrder) (int, error) {
	n := len(g.Atoms)
	if i < 0 || j < 0 || i >= n || j >= n {
		return -1, errors.New(errors.ErrCodeGraphInvalid, "bond references a missing atom").
			WithDetail(fmt.Sprintf("%s: %d-%d with %d atoms", g.Name, i, j, n))
	}
	if i == j {
		return -1, errors.New(errors.ErrCodeGraphInvalid, "self bond").
			WithDetail(fmt.Sprintf("%s: atom %d", g.Name, i))
	}
	if _, ok := g.BondBetween(i, j); ok {
		return -1, errors.New(errors.ErrCodeGraphInvalid, "duplicate bond").
			WithDetail(fmt.Sprintf("%s: %d-%d", g.Name, i, j))
	}
	g.bonds = append(g.bonds, Bond{Begin: i, End: j, Order: order})
	idx := len(g.bonds) - 1
	g.adj[i] = append(g.adj[i], idx)
	g.adj[j] = append(g.adj[j], idx)
	return idx, nil
}

// Bond returns bond b.
func (g *Graph) Bond(b int) Bond { return g.bonds[b] }

// Bonds returns a copy of the bond list.
func (g *Graph) Bonds() []Bond {
	out := make([]Bond, len(g.bonds))
	copy(out, g.bonds)
	return out
}

// BondBetween returns the index of the bond joining i and j.
func (g *Graph) BondBetween(i, j int) (int, bool) {
	if i < 0 || i >= len(g.adj) {
		return -1, false
	}
	for _, b := range g.adj[i] {
		if g.bonds[b].Other(i) == j {
			return b, true
		}
	}
	return -1, false
}

// IncidentBonds returns the indices of the bonds touching atom i.
func (g *Graph) IncidentBonds(i int) []int {
	out := make([]int, len(g.adj[i]))
	copy(out, g.adj[i])
	return out
}

// Neighbors returns the atoms bonded to i in bond insertion order.
func (g *Graph) Neighbors(i int) []int {
	out := make([]int, 0, len(g.adj[i]))
	for _, b := range g.adj[i] {
		out = append(out, g.bonds[b].Other(i))
	}
	return out
}

// Degree returns the number of explicit bonds on atom i.
func (g *Graph) Degree(i int) int { return len(g.adj[i]) }

// ── Conformer ────────────────────────────────────────────────────────────────

// Position returns the coordinate of atom i.
func (g *Graph) Position(i int) r3.Vec { return g.coords[i] }

// SetPosition overwrites the coordinate of atom i and marks the graph posed.
func (g *Graph) SetPosition(i int, p r3.Vec) {
	g.coords[i] = p
	g.posed = true
}

// Positions returns a copy of the conformer.
func (g *Graph) Positions() []r3.Vec {
	out := make([]r3.Vec, len(g.coords))
	copy(out, g.coords)
	return out
}

// SetPositions replaces the whole conformer.
func (g *Graph) SetPositions(ps []r3.Vec) error {
	if len(ps) != len(g.Atoms) {
		return errors.New(errors.ErrCodeGraphInvalid, "conformer size mismatch").
			WithDetail(fmt.Sprintf("%s: %d positions for %d atoms", g.Name, len(ps), len(g.Atoms)))
	}
	copy(g.coords, ps)
	g.posed = true
	return nil
}

// MarkPosed records that the current coordinates are a real conformer.
func (g *Graph) MarkPosed() { g.posed = true }

// HasConformer reports whether the graph carries real coordinates: set
// through SetPosition, SetPositions or MarkPosed, or given away from the
// origin to AddAtom.
func (g *Graph) HasConformer() bool { return g.posed }

// ─────────────────────────────────────────────────────────────────────────────
// Copies and surgery
// ─────────────────────────────────────────────────────────────────────────────

// Clone returns a deep copy: structure, conformer and provenance.
func (g *Graph) Clone() *Graph {
	c := &Graph{
		Name:   g.Name,
		Atoms:  make([]Atom, len(g.Atoms)),
		bonds:  make([]Bond, len(g.bonds)),
		adj:    make([][]int, len(g.adj)),
		coords: make([]r3.Vec, len(g.coords)),
		posed:  g.posed,
		prov:   g.prov.clone(),
	}
	copy(c.Atoms, g.Atoms)
	copy(c.bonds, g.bonds)
	copy(c.coords, g.coords)
	for i, a := range g.adj {
		c.adj[i] = append([]int(nil), a...)
	}
	return c
}

// Append copies every atom, bond, coordinate and provenance entry of other
// onto the end of g and returns the index offset of the first appended atom.
func (g *Graph) Append(other *Graph) int {
	offset := len(g.Atoms)
	for i, a := range other.Atoms {
		g.AddAtom(a, other.coords[i])
	}
	for _, b := range other.bonds {
		// Indices are valid and distinct by construction of other.
		_, _ = g.AddBond(b.Begin+offset, b.End+offset, b.Order)
	}
	g.prov.merge(other.prov, func(i int) int { return i + offset })
	g.posed = g.posed || other.posed
	return offset
}

// Subgraph returns the graph induced by indices (in the given order) and the
// map from old to new atom indices.
func (g *Graph) Subgraph(indices []int) (*Graph, map[int]int) {
	sub := NewGraph(g.Name)
	remap := make(map[int]int, len(indices))
	for _, i := range indices {
		remap[i] = sub.AddAtom(g.Atoms[i], g.coords[i])
	}
	for _, b := range g.bonds {
		bi, okB := remap[b.Begin]
		ei, okE := remap[b.End]
		if okB && okE {
			_, _ = sub.AddBond(bi, ei, b.Order)
		}
	}
	sub.prov.merge(g.prov.restrict(remap), func(i int) int { return i })
	sub.posed = g.posed
	return sub, remap
}

// CutBonds returns a copy of g without the listed bonds.  Atom indices are
// unchanged.
func (g *Graph) CutBonds(bondIndices []int) *Graph {
	drop := make(map[int]bool, len(bondIndices))
	for _, b := range bondIndices {
		drop[b] = true
	}
	c := g.Clone()
	c.bonds = c.bonds[:0]
	for i := range c.adj {
		c.adj[i] = nil
	}
	for i, b := range g.bonds {
		if drop[i] {
			continue
		}
		c.bonds = append(c.bonds, b)
		idx := len(c.bonds) - 1
		c.adj[b.Begin] = append(c.adj[b.Begin], idx)
		c.adj[b.End] = append(c.adj[b.End], idx)
	}
	return c
}

// Components returns the connected components as ascending atom-index lists,
// ordered by their smallest atom.
func (g *Graph) Components() [][]int {
	seen := make([]bool, len(g.Atoms))
	var comps [][]int
	for start := range g.Atoms {
		if seen[start] {
			continue
		}
		comps = append(comps, g.reach(start, seen, nil))
	}
	return comps
}

// ComponentOf returns the ascending atom indices connected to i.
func (g *Graph) ComponentOf(i int) []int {
	return g.reach(i, make([]bool, len(g.Atoms)), nil)
}

// reach runs a breadth-first traversal from start over atoms for which allow
// returns true (all atoms when allow is nil), marking seen.
func (g *Graph) reach(start int, seen []bool, allow func(int) bool) []int {
	queue := []int{start}
	seen[start] = true
	var comp []int
	for len(queue) > 0 {
		v := queue[0]
		queue = queue[1:]
		comp = append(comp, v)
		for _, w := range g.Neighbors(v) {
			if seen[w] || (allow != nil && !allow(w)) {
				continue
			}
			seen[w] = true
			queue = append(queue, w)
		}
	}
	sort.Ints(comp)
	return comp
}

// ConnectedWithin returns the ascending atoms reachable from start moving only
// through atoms in the set.  start itself must be in the set.
func (g *Graph) ConnectedWithin(start int, set map[int]bool) []int {
	if !set[start] {
		return nil
	}
	return g.reach(start, make([]bool, len(g.Atoms)), func(i int) bool { return set[i] })
}

//Personal.AI order the ending
