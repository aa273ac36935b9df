package molecule

import (
	"fmt"
)

// IssueKind classifies a Sanitize finding.
type IssueKind string

const (
	IssueValence     IssueKind = "valence"
	IssueAromaticity IssueKind = "aromaticity"
	IssueElement     IssueKind = "element"
)

// Issue is one problem found while revalidating a graph.  Issues never stop
// validation; the offending atom is left as it is.
type Issue struct {
	Atom   int
	Kind   IssueKind
	Detail string
}

func (i Issue) String() string {
	return fmt.Sprintf("atom %d %s: %s", i.Atom, i.Kind, i.Detail)
}

// Sanitize revalidates the graph after structural or chemical edits: it
// recomputes implicit hydrogens, derives atom aromaticity from aromatic ring
// bonds, clears aromatic flags outside rings and reports impossible valences.
// It is idempotent and tolerant: every issue is collected and returned, none
// aborts the pass.
func (g *Graph) Sanitize() []Issue {
	var issues []Issue
	rings := g.RingInfo()

	for i := range g.Atoms {
		a := &g.Atoms[i]

		hasAromaticBond := false
		for _, b := range g.adj[i] {
			if g.bonds[b].Order == BondAromatic && rings.Bonds[b] {
				hasAromaticBond = true
			}
		}
		switch {
		case hasAromaticBond:
			a.Aromatic = true
		case a.Aromatic:
			a.Aromatic = false
			issues = append(issues, Issue{Atom: i, Kind: IssueAromaticity, Detail: "aromatic flag outside an aromatic ring cleared"})
		}

		if a.IsWildcard() {
			a.ImplicitHs = 0
			continue
		}
		allowed := AllowedValences(a.Element, a.Charge)
		if allowed == nil {
			a.ImplicitHs = 0
			if !KnownElement(a.Element) {
				issues = append(issues, Issue{Atom: i, Kind: IssueElement, Detail: fmt.Sprintf("unknown element %q", a.Element)})
			}
			continue
		}

		if g.minimalValence(i) > allowed[len(allowed)-1] {
			a.ImplicitHs = 0
			issues = append(issues, Issue{
				Atom:   i,
				Kind:   IssueValence,
				Detail: fmt.Sprintf("%s valence %d exceeds %v", chargedSymbol(*a), g.ExplicitValence(i), allowed),
			})
			continue
		}

		ev := g.ExplicitValence(i)
		a.ImplicitHs = 0
		for _, v := range allowed {
			if v >= ev {
				a.ImplicitHs = v - ev
				break
			}
		}
	}
	for b := range g.bonds {
		if g.bonds[b].Order == BondAromatic && !rings.Bonds[b] {
			issues = append(issues, Issue{Atom: g.bonds[b].Begin, Kind: IssueAromaticity, Detail: fmt.Sprintf("aromatic bond %d outside a ring", b)})
		}
	}
	return issues
}

func chargedSymbol(a Atom) string {
	switch {
	case a.Charge > 0:
		return fmt.Sprintf("%s+%d", a.Element, a.Charge)
	case a.Charge < 0:
		return fmt.Sprintf("%s%d", a.Element, a.Charge)
	}
	return a.Element
}

//Personal.AI order the ending
