package molecule

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"
)

func TestRingInfo(t *testing.T) {
	g := ring(t, "cyclohexane", "C", 6, BondSingle)
	g.AddAtom(Atom{Element: "O"}, r3.Vec{Z: 1})
	_, err := g.AddBond(0, 6, BondSingle)
	require.NoError(t, err)

	info := g.RingInfo()
	for i := 0; i < 6; i++ {
		assert.True(t, info.Atoms[i], "atom %d", i)
		assert.True(t, info.Bonds[i], "bond %d", i)
	}
	assert.False(t, info.Atoms[6])
	assert.False(t, info.Bonds[6])
}

func TestRingInfo_FusedAndChain(t *testing.T) {
	// Two fused four-membered rings sharing bond 1-2, plus a tail.
	g := chain(t, "bicycle", "C", "C", "C", "C", "C", "C", "C")
	// chain bonds: 0-1,1-2,2-3,3-4,4-5,5-6
	_, err := g.AddBond(3, 0, BondSingle)
	require.NoError(t, err)
	_, err = g.AddBond(4, 1, BondSingle)
	require.NoError(t, err)

	info := g.RingInfo()
	for i := 0; i <= 4; i++ {
		assert.True(t, info.Atoms[i], "atom %d", i)
	}
	assert.False(t, info.Atoms[5])
	assert.False(t, info.Atoms[6])
}

func TestSanitize_ImplicitHydrogens(t *testing.T) {
	g := chain(t, "ethanol", "C", "C", "O")
	issues := g.Sanitize()
	assert.Empty(t, issues)
	assert.Equal(t, 3, g.Atoms[0].ImplicitHs)
	assert.Equal(t, 2, g.Atoms[1].ImplicitHs)
	assert.Equal(t, 1, g.Atoms[2].ImplicitHs)

	// idempotent
	assert.Empty(t, g.Sanitize())
	assert.Equal(t, 3, g.Atoms[0].ImplicitHs)
}

func TestSanitize_Aromatic(t *testing.T) {
	g := ring(t, "benzene", "C", 6, BondAromatic)
	assert.Empty(t, g.Sanitize())
	for _, a := range g.Atoms {
		assert.True(t, a.Aromatic)
		assert.Equal(t, 1, a.ImplicitHs)
	}
}

func TestSanitize_StrayAromaticity(t *testing.T) {
	g := chain(t, "x", "C", "C")
	g.Atoms[0].Aromatic = true
	b, _ := g.BondBetween(0, 1)
	g.bonds[b].Order = BondAromatic

	issues := g.Sanitize()
	require.NotEmpty(t, issues)
	kinds := map[IssueKind]bool{}
	for _, i := range issues {
		kinds[i.Kind] = true
	}
	assert.True(t, kinds[IssueAromaticity])
	assert.False(t, g.Atoms[0].Aromatic)
}

func TestSanitize_Valence(t *testing.T) {
	// Pentavalent carbon.
	g := NewGraph("bad")
	c := g.AddAtom(Atom{Element: "C"}, r3.Vec{})
	for i := 0; i < 5; i++ {
		f := g.AddAtom(Atom{Element: "F"}, r3.Vec{X: float64(i + 1)})
		_, err := g.AddBond(c, f, BondSingle)
		require.NoError(t, err)
	}
	issues := g.Sanitize()
	require.Len(t, issues, 1)
	assert.Equal(t, IssueValence, issues[0].Kind)
	assert.Equal(t, c, issues[0].Atom)
	assert.Contains(t, issues[0].String(), "valence")
}

func TestSanitize_ChargedAndUnknown(t *testing.T) {
	g := NewGraph("ammonium")
	n := g.AddAtom(Atom{Element: "N", Charge: 1}, r3.Vec{})
	g.AddAtom(Atom{Element: "Xx"}, r3.Vec{X: 1})
	w := g.AddAtom(Atom{Element: Wildcard}, r3.Vec{X: 2})
	_, err := g.AddBond(n, w, BondSingle)
	require.NoError(t, err)

	issues := g.Sanitize()
	require.Len(t, issues, 1)
	assert.Equal(t, IssueElement, issues[0].Kind)
	assert.Equal(t, 3, g.Atoms[n].ImplicitHs)
	assert.Equal(t, 0, g.Atoms[w].ImplicitHs)
}

func TestElements(t *testing.T) {
	n, ok := AtomicNumber("C")
	assert.True(t, ok)
	assert.Equal(t, 6, n)
	assert.True(t, KnownElement(Wildcard))

	v, ok := MaxValence("P")
	assert.True(t, ok)
	assert.Equal(t, 6, v)
	_, ok = MaxValence("Fe")
	assert.False(t, ok)

	assert.Equal(t, []int{4}, AllowedValences("N", 1))
	assert.Equal(t, []int{3}, AllowedValences("C", -1))
	assert.Equal(t, []int{4}, AllowedValences("B", -1))
	assert.Nil(t, AllowedValences("Fe", 0))
	assert.Equal(t, 0.77, CovalentRadius("Fe"))
}

func TestExplicitValence_Aromatic(t *testing.T) {
	g := ring(t, "benzene", "C", 6, BondAromatic)
	assert.Equal(t, 3, g.ExplicitValence(0))
	g.AddAtom(Atom{Element: "C"}, r3.Vec{Z: 2})
	_, err := g.AddBond(0, 6, BondSingle)
	require.NoError(t, err)
	assert.Equal(t, 4, g.ExplicitValence(0))
}

//Personal.AI order the ending
