package molecule

// Hydrogen is the element symbol of hydrogen.
const Hydrogen = "H"

// RemoveHydrogens returns a copy of g without its explicit hydrogen atoms,
// each counted instead in the ImplicitHs of the atom it was bonded to, and
// the map from old to new atom indices.  A hydrogen stays an atom when it
// is charged, is not bonded by exactly one single bond, or its partner is
// another hydrogen, a wildcard or a chiral centre.
func (g *Graph) RemoveHydrogens() (*Graph, map[int]int) {
	var keep []int
	folded := make(map[int]int)
	for i := range g.Atoms {
		if partner, ok := g.foldableHydrogen(i); ok {
			folded[partner]++
			continue
		}
		keep = append(keep, i)
	}
	if len(folded) == 0 {
		remap := make(map[int]int, len(g.Atoms))
		for i := range g.Atoms {
			remap[i] = i
		}
		return g.Clone(), remap
	}

	out, remap := g.Subgraph(keep)
	for partner, n := range folded {
		out.Atoms[remap[partner]].ImplicitHs += n
	}
	return out, remap
}

// foldableHydrogen reports whether atom i is a plain terminal hydrogen and
// returns the atom carrying it.
func (g *Graph) foldableHydrogen(i int) (int, bool) {
	a := g.Atoms[i]
	if a.Element != Hydrogen || a.Charge != 0 || len(g.adj[i]) != 1 {
		return -1, false
	}
	b := g.bonds[g.adj[i][0]]
	if b.Order != BondSingle {
		return -1, false
	}
	partner := b.Other(i)
	p := g.Atoms[partner]
	if p.Element == Hydrogen || p.IsWildcard() || p.Chirality != ChiralNone {
		return -1, false
	}
	return partner, true
}

//Personal.AI order the ending
