// Package forcefield implements molecule.Minimizer with a small valence force
// field: harmonic bonds, 1-3 distances derived from hybridisation angles and
// a soft repulsive wall between more distant atoms, optionally with
// flat-bottom position restraints.  Minimisation uses gonum's L-BFGS.
package forcefield

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/mwinokan/Fragmenstein/internal/domain/molecule"
)

const (
	bondForce      = 100.0
	angleForce     = 30.0
	repulsionForce = 10.0
	// repulsionWall is the distance below which non-bonded pairs repel.
	repulsionWall = 2.6
)

type termKind int

const (
	harmonic termKind = iota
	// wall terms only act when atoms are closer than the reference distance.
	wall
)

type pairTerm struct {
	i, j  int
	ref   float64
	force float64
	kind  termKind
}

// model is the energy function of one graph.
type model struct {
	n          int
	terms      []pairTerm
	restraints []molecule.Restraint
}

// idealBondLength returns the bond length from covalent radii shortened by
// bond order.
func idealBondLength(g *molecule.Graph, b molecule.Bond) float64 {
	r := molecule.CovalentRadius(g.Atoms[b.Begin].Element) + molecule.CovalentRadius(g.Atoms[b.End].Element)
	switch b.Order {
	case molecule.BondDouble:
		return r * 0.87
	case molecule.BondTriple:
		return r * 0.78
	case molecule.BondAromatic:
		return r * 0.93
	}
	return r
}

// idealAngle returns the bond angle at atom j in radians.
func idealAngle(g *molecule.Graph, j int) float64 {
	doubles := 0
	for _, b := range g.IncidentBonds(j) {
		switch g.Bond(b).Order {
		case molecule.BondTriple:
			return math.Pi
		case molecule.BondDouble:
			doubles++
		case molecule.BondAromatic:
			return 2 * math.Pi / 3
		}
	}
	switch {
	case doubles >= 2:
		return math.Pi
	case doubles == 1:
		return 2 * math.Pi / 3
	}
	return 109.47 * math.Pi / 180
}

func newModel(g *molecule.Graph, restraints []molecule.Restraint) *model {
	m := &model{n: g.NumAtoms(), restraints: restraints}
	bonded := make(map[[2]int]bool)
	key := func(i, j int) [2]int {
		if i > j {
			i, j = j, i
		}
		return [2]int{i, j}
	}

	lengths := make(map[[2]int]float64)
	for _, b := range g.Bonds() {
		l := idealBondLength(g, b)
		k := key(b.Begin, b.End)
		lengths[k] = l
		bonded[k] = true
		m.terms = append(m.terms, pairTerm{i: b.Begin, j: b.End, ref: l, force: bondForce, kind: harmonic})
	}

	for j := 0; j < g.NumAtoms(); j++ {
		nb := g.Neighbors(j)
		theta := idealAngle(g, j)
		for x := 0; x < len(nb); x++ {
			for y := x + 1; y < len(nb); y++ {
				i, k := nb[x], nb[y]
				if bonded[key(i, k)] {
					continue // three-membered ring
				}
				a, c := lengths[key(i, j)], lengths[key(j, k)]
				d := math.Sqrt(a*a + c*c - 2*a*c*math.Cos(theta))
				bonded[key(i, k)] = true
				m.terms = append(m.terms, pairTerm{i: i, j: k, ref: d, force: angleForce, kind: harmonic})
			}
		}
	}

	for i := 0; i < g.NumAtoms(); i++ {
		for j := i + 1; j < g.NumAtoms(); j++ {
			if bonded[[2]int{i, j}] {
				continue
			}
			m.terms = append(m.terms, pairTerm{i: i, j: j, ref: repulsionWall, force: repulsionForce, kind: wall})
		}
	}
	return m
}

func at(x []float64, i int) r3.Vec {
	return r3.Vec{X: x[3*i], Y: x[3*i+1], Z: x[3*i+2]}
}

// energy evaluates the model at flattened coordinates x.
func (m *model) energy(x []float64) float64 {
	var e float64
	for _, t := range m.terms {
		d := r3.Norm(r3.Sub(at(x, t.i), at(x, t.j)))
		dev := d - t.ref
		if t.kind == wall && dev >= 0 {
			continue
		}
		e += t.force * dev * dev
	}
	for _, r := range m.restraints {
		d := r3.Norm(r3.Sub(at(x, r.Atom), r.Target))
		if excess := d - r.Tolerance; excess > 0 {
			e += r.ForceConstant * excess * excess
		}
	}
	return e
}

// gradient writes dE/dx into grad.
func (m *model) gradient(grad, x []float64) {
	for k := range grad {
		grad[k] = 0
	}
	add := func(i int, v r3.Vec) {
		grad[3*i] += v.X
		grad[3*i+1] += v.Y
		grad[3*i+2] += v.Z
	}
	for _, t := range m.terms {
		diff := r3.Sub(at(x, t.i), at(x, t.j))
		d := r3.Norm(diff)
		if d < 1e-9 {
			continue
		}
		dev := d - t.ref
		if t.kind == wall && dev >= 0 {
			continue
		}
		g := r3.Scale(2*t.force*dev/d, diff)
		add(t.i, g)
		add(t.j, r3.Scale(-1, g))
	}
	for _, r := range m.restraints {
		diff := r3.Sub(at(x, r.Atom), r.Target)
		d := r3.Norm(diff)
		excess := d - r.Tolerance
		if excess <= 0 || d < 1e-9 {
			continue
		}
		add(r.Atom, r3.Scale(2*r.ForceConstant*excess/d, diff))
	}
}

func flatten(ps []r3.Vec) []float64 {
	x := make([]float64, 3*len(ps))
	for i, p := range ps {
		x[3*i], x[3*i+1], x[3*i+2] = p.X, p.Y, p.Z
	}
	return x
}

func unflatten(x []float64) []r3.Vec {
	ps := make([]r3.Vec, len(x)/3)
	for i := range ps {
		ps[i] = at(x, i)
	}
	return ps
}

//Personal.AI order the ending
