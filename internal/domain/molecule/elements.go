package molecule

import "math"

// ---------------------------------------------------------------------------
// Element tables
// ---------------------------------------------------------------------------

// atomicNumbers maps element symbols to atomic numbers.
var atomicNumbers = map[string]int{
	Wildcard: 0,

	"H": 1, "He": 2, "Li": 3, "Be": 4, "B": 5, "C": 6, "N": 7, "O": 8,
	"F": 9, "Ne": 10, "Na": 11, "Mg": 12, "Al": 13, "Si": 14, "P": 15,
	"S": 16, "Cl": 17, "Ar": 18, "K": 19, "Ca": 20, "Fe": 26, "Cu": 29,
	"Zn": 30, "As": 33, "Se": 34, "Br": 35, "Sn": 50, "I": 53, "Pt": 78,
}

// maxValence is the standard maximum valence used when mutating an atom
// toward another element.
var maxValence = map[string]int{
	"F": 1, "Br": 1, "Cl": 1, "H": 1,
	"B": 3, "C": 4, "N": 3, "O": 2, "S": 2, "Se": 2, "P": 6,
}

// allowedValences lists the neutral valence states accepted by Sanitize.
var allowedValences = map[string][]int{
	"H": {1}, "B": {3}, "C": {4}, "N": {3}, "O": {2}, "F": {1},
	"Si": {4}, "P": {3, 5}, "S": {2, 4, 6}, "Cl": {1}, "As": {3, 5},
	"Se": {2, 4, 6}, "Br": {1}, "I": {1, 3, 5},
}

// covalentRadii in ångström, used for ideal bond lengths.
var covalentRadii = map[string]float64{
	"H": 0.31, "B": 0.84, "C": 0.76, "N": 0.71, "O": 0.66, "F": 0.57,
	"Si": 1.11, "P": 1.07, "S": 1.05, "Cl": 1.02, "As": 1.19, "Se": 1.20,
	"Br": 1.20, "I": 1.39,
}

// AtomicNumber returns the atomic number of element; 0 for the wildcard.
func AtomicNumber(element string) (int, bool) {
	n, ok := atomicNumbers[element]
	return n, ok
}

// KnownElement reports whether element is a recognised symbol.
func KnownElement(element string) bool {
	_, ok := atomicNumbers[element]
	return ok
}

// MaxValence returns the standard maximum valence of element.
func MaxValence(element string) (int, bool) {
	v, ok := maxValence[element]
	return v, ok
}

// CovalentRadius returns the covalent radius of element, 0.77 Å when unknown.
func CovalentRadius(element string) float64 {
	if r, ok := covalentRadii[element]; ok {
		return r
	}
	return 0.77
}

// AllowedValences returns the valence states accepted for an element carrying
// the given formal charge.  Donor elements gain valence with positive charge,
// carbon loses it with any charge and boron gains it with negative charge.
func AllowedValences(element string, charge int) []int {
	base, ok := allowedValences[element]
	if !ok {
		return nil
	}
	var shift int
	switch element {
	case "C", "Si":
		shift = -absInt(charge)
	case "B":
		shift = -charge
	default:
		shift = charge
	}
	out := make([]int, 0, len(base))
	for _, v := range base {
		if v+shift >= 0 {
			out = append(out, v+shift)
		}
	}
	return out
}

// ExplicitValence returns the summed bond contributions at atom i.  Aromatic
// bonds count 1.5 and the sum is truncated, so a ring-fusion carbon with
// three aromatic bonds has valence 4.
func (g *Graph) ExplicitValence(i int) int {
	var sum float64
	for _, b := range g.adj[i] {
		sum += g.bonds[b].Order.Valence()
	}
	return int(math.Floor(sum + 1e-9))
}

// minimalValence counts aromatic bonds as single bonds.
func (g *Graph) minimalValence(i int) int {
	var sum int
	for _, b := range g.adj[i] {
		if o := g.bonds[b].Order; o == BondAromatic {
			sum++
		} else {
			sum += int(o.Valence())
		}
	}
	return sum
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

//Personal.AI order the ending
