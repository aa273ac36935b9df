package molecule

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/mwinokan/Fragmenstein/pkg/errors"
)

func TestBondOrder_Valence(t *testing.T) {
	assert.Equal(t, 1.0, BondSingle.Valence())
	assert.Equal(t, 2.0, BondDouble.Valence())
	assert.Equal(t, 3.0, BondTriple.Valence())
	assert.Equal(t, 1.5, BondAromatic.Valence())
	assert.Equal(t, "aromatic", BondAromatic.String())
	assert.Equal(t, "BondOrder(9)", BondOrder(9).String())
}

func TestGraph_AddBond_Rejects(t *testing.T) {
	g := chain(t, "ethane", "C", "C")

	_, err := g.AddBond(0, 5, BondSingle)
	assert.True(t, errors.IsCode(err, errors.ErrCodeGraphInvalid))

	_, err = g.AddBond(1, 1, BondSingle)
	assert.True(t, errors.IsCode(err, errors.ErrCodeGraphInvalid))

	_, err = g.AddBond(1, 0, BondDouble)
	assert.True(t, errors.IsCode(err, errors.ErrCodeGraphInvalid))
	assert.Equal(t, 1, g.NumBonds())
}

func TestGraph_Neighbors(t *testing.T) {
	g := chain(t, "propane", "C", "C", "C")
	assert.ElementsMatch(t, []int{0, 2}, g.Neighbors(1))
	assert.Equal(t, 2, g.Degree(1))
	b, ok := g.BondBetween(2, 1)
	require.True(t, ok)
	assert.Equal(t, 1, b)
	_, ok = g.BondBetween(0, 2)
	assert.False(t, ok)
}

func TestGraph_Clone_IsDeep(t *testing.T) {
	g := chain(t, "propane", "C", "C", "C")
	g.SetOrigin(0, []string{"hit.0"})
	c := g.Clone()

	c.Atoms[0].Element = "N"
	c.SetPosition(0, r3.Vec{X: 9})
	c.SetOrigin(0, []string{"other.1"})
	_, err := c.AddBond(0, 2, BondSingle)
	require.NoError(t, err)

	assert.Equal(t, "C", g.Atoms[0].Element)
	assert.Equal(t, r3.Vec{}, g.Position(0))
	assert.Equal(t, []string{"hit.0"}, g.Origin(0))
	assert.Equal(t, 2, g.NumBonds())
}

func TestGraph_Append(t *testing.T) {
	a := chain(t, "a", "C", "C")
	b := chain(t, "b", "N", "O")
	b.SetOrigin(1, []string{"b.1"})
	b.SetConfidence(1, 0.5)

	offset := a.Append(b)
	assert.Equal(t, 2, offset)
	assert.Equal(t, 4, a.NumAtoms())
	assert.Equal(t, 2, a.NumBonds())
	_, ok := a.BondBetween(2, 3)
	assert.True(t, ok)
	assert.Equal(t, []string{"b.1"}, a.Origin(3))
	assert.Equal(t, 0.5, a.Confidence(3))
	assert.Equal(t, "O", a.Atoms[3].Element)
}

func TestGraph_Subgraph(t *testing.T) {
	g := chain(t, "butane", "C", "N", "O", "S")
	g.SetOrigin(2, []string{"x.2"})
	sub, remap := g.Subgraph([]int{2, 3})

	assert.Equal(t, 2, sub.NumAtoms())
	assert.Equal(t, 1, sub.NumBonds())
	assert.Equal(t, map[int]int{2: 0, 3: 1}, remap)
	assert.Equal(t, "O", sub.Atoms[0].Element)
	assert.Equal(t, g.Position(3), sub.Position(1))
	assert.Equal(t, []string{"x.2"}, sub.Origin(0))
	assert.Nil(t, sub.Origin(1))
}

func TestGraph_CutBondsAndComponents(t *testing.T) {
	g := chain(t, "pentane", "C", "C", "C", "C", "C")
	b, ok := g.BondBetween(1, 2)
	require.True(t, ok)

	cut := g.CutBonds([]int{b})
	assert.Equal(t, 4, g.NumBonds())
	assert.Equal(t, 3, cut.NumBonds())
	assert.Equal(t, [][]int{{0, 1}, {2, 3, 4}}, cut.Components())
	assert.Equal(t, []int{2, 3, 4}, cut.ComponentOf(4))
}

func TestGraph_ConnectedWithin(t *testing.T) {
	g := chain(t, "hexane", "C", "C", "C", "C", "C", "C")
	set := map[int]bool{0: true, 1: true, 3: true, 4: true}
	assert.Equal(t, []int{0, 1}, g.ConnectedWithin(0, set))
	assert.Equal(t, []int{3, 4}, g.ConnectedWithin(4, set))
	assert.Nil(t, g.ConnectedWithin(2, set))
}

func TestGraph_Conformer(t *testing.T) {
	g := NewGraph("x")
	g.AddAtom(Atom{Element: "C"}, r3.Vec{})
	assert.False(t, g.HasConformer())

	require.NoError(t, g.SetPositions([]r3.Vec{{X: 1}}))
	assert.True(t, g.HasConformer())

	err := g.SetPositions([]r3.Vec{{}, {}})
	assert.True(t, errors.IsCode(err, errors.ErrCodeGraphInvalid))
}

func TestGraph_ConformerAtOrigin(t *testing.T) {
	g := NewGraph("ion")
	g.AddAtom(Atom{Element: "N", Charge: 1}, r3.Vec{})
	assert.False(t, g.HasConformer())

	g.MarkPosed()
	assert.True(t, g.HasConformer())
	assert.True(t, g.Clone().HasConformer())
	sub, _ := g.Subgraph([]int{0})
	assert.True(t, sub.HasConformer())

	placed := NewGraph("placed")
	placed.AddAtom(Atom{Element: "C"}, r3.Vec{})
	require.NoError(t, placed.SetPositions([]r3.Vec{{}}))
	assert.True(t, placed.HasConformer())
}

func TestProvenance_Defaults(t *testing.T) {
	g := chain(t, "x", "C", "C")
	assert.Nil(t, g.Origin(0))
	assert.Equal(t, NoOrigin, g.OriginString(0))
	assert.Equal(t, 0.0, g.Confidence(0))
	assert.Equal(t, CategoryNone, g.Category(0))

	g.SetOrigin(0, []string{"hit1.0", "hit2.3"})
	assert.Equal(t, `["hit1.0","hit2.3"]`, g.OriginString(0))

	g.SetConfidence(0, -1)
	assert.Equal(t, 0.0, g.Confidence(0))

	g.SetCategory(1, CategoryOverlapping)
	assert.Equal(t, CategoryOverlapping, g.Category(1))
	g.SetCategory(1, CategoryNone)
	assert.Equal(t, CategoryNone, g.Category(1))
}

func TestProvenance_ResetAndCopy(t *testing.T) {
	src := chain(t, "src", "C")
	src.SetOrigin(0, []string{"src.0"})
	src.SetConfidence(0, 0.3)

	g := chain(t, "dst", "C", "C")
	g.CopyProvenance(1, src, 0)
	assert.Equal(t, []string{"src.0"}, g.Origin(1))
	assert.Equal(t, 0.3, g.Confidence(1))

	g.ResetProvenance(1)
	assert.Nil(t, g.Origin(1))
	assert.Equal(t, 0.0, g.Confidence(1))
}

func TestProvenance_ZeroValueGraph(t *testing.T) {
	g := &Graph{}
	g.AddAtom(Atom{Element: "C"}, r3.Vec{})
	g.SetOrigin(0, []string{"a.0"})
	assert.Equal(t, []string{"a.0"}, g.Origin(0))
}

//Personal.AI order the ending
