package molecule

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"
)

// chain builds a linear molecule of the given elements joined by single
// bonds, laid out along x at 1.5 Å spacing.
func chain(t *testing.T, name string, elements ...string) *Graph {
	t.Helper()
	g := NewGraph(name)
	for i, el := range elements {
		g.AddAtom(Atom{Element: el}, r3.Vec{X: 1.5 * float64(i)})
		if i > 0 {
			_, err := g.AddBond(i-1, i, BondSingle)
			require.NoError(t, err)
		}
	}
	return g
}

// ring builds a planar ring of n atoms with the given element and bond order.
func ring(t *testing.T, name, element string, n int, order BondOrder) *Graph {
	t.Helper()
	g := NewGraph(name)
	pts := regularPolygon(n, 1.4)
	for i := 0; i < n; i++ {
		g.AddAtom(Atom{Element: element}, pts[i])
	}
	for i := 0; i < n; i++ {
		_, err := g.AddBond(i, (i+1)%n, order)
		require.NoError(t, err)
	}
	return g
}

func regularPolygon(n int, radius float64) []r3.Vec {
	out := make([]r3.Vec, n)
	for i := range out {
		a := 2 * math.Pi * float64(i) / float64(n)
		out[i] = r3.Vec{X: radius * math.Cos(a), Y: radius * math.Sin(a)}
	}
	return out
}

//Personal.AI order the ending
