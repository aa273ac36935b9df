package placement

import (
	"sort"

	"github.com/mwinokan/Fragmenstein/internal/domain/molecule"
)

// attachment is a bond from a unique anchor atom to a conserved atom.
type attachment struct {
	Atom  int
	Bond  int
	Order molecule.BondOrder
}

// categories sorts the unique atoms of a graph by how they touch the
// conserved part.
type categories struct {
	uniques   map[int]bool
	internals []int
	// pairs maps each anchor to its attachments, in bond order.
	pairs   map[int][]attachment
	dummies []int
}

// anchors returns the anchor atoms in ascending order.
func (c *categories) anchors() []int {
	out := make([]int, 0, len(c.pairs))
	for a := range c.pairs {
		out = append(out, a)
	}
	sort.Ints(out)
	return out
}

// team returns the unique atoms reachable from anchor through unique-only
// bonds.
func (c *categories) team(g *molecule.Graph, anchor int) []int {
	return g.ConnectedWithin(anchor, c.uniques)
}

// categorize classifies the unique atoms of g and tags every atom with its
// debug category.
func categorize(g *molecule.Graph, uniques map[int]bool) *categories {
	c := &categories{uniques: uniques, pairs: make(map[int][]attachment)}
	for i := 0; i < g.NumAtoms(); i++ {
		g.SetCategory(i, molecule.CategoryNone)
	}
	for i := 0; i < g.NumAtoms(); i++ {
		if !uniques[i] {
			continue
		}
		if g.Atoms[i].IsWildcard() {
			c.dummies = append(c.dummies, i)
		}
		var atts []attachment
		for _, b := range g.IncidentBonds(i) {
			bond := g.Bond(b)
			other := bond.Other(i)
			if uniques[other] {
				continue
			}
			atts = append(atts, attachment{Atom: other, Bond: b, Order: bond.Order})
			g.SetCategory(other, molecule.CategoryOverlappingAttachment)
		}
		if len(atts) == 0 {
			c.internals = append(c.internals, i)
			g.SetCategory(i, molecule.CategoryInternal)
			continue
		}
		c.pairs[i] = atts
		g.SetCategory(i, molecule.CategoryInternalAttachment)
	}
	for i := 0; i < g.NumAtoms(); i++ {
		if !uniques[i] && g.Category(i) == molecule.CategoryNone {
			g.SetCategory(i, molecule.CategoryOverlapping)
		}
	}
	return c
}

// uniqueAtoms returns the atoms of g that are not covered by the mapped set.
func uniqueAtoms(g *molecule.Graph, mapped map[int]bool) map[int]bool {
	out := make(map[int]bool)
	for i := 0; i < g.NumAtoms(); i++ {
		if !mapped[i] {
			out[i] = true
		}
	}
	return out
}

//Personal.AI order the ending
