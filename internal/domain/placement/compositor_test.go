package placement

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/mwinokan/Fragmenstein/internal/domain/molecule"
	"github.com/mwinokan/Fragmenstein/internal/testutil"
	"github.com/mwinokan/Fragmenstein/pkg/errors"
)

func newCompositor(logger *testutil.MockLogger) *Compositor {
	return NewCompositor(NewSpatialMatcher(DefaultCutoff), logger)
}

func TestPrepareHits(t *testing.T) {
	unnamed := testutil.RingHit("", r3.Vec{})
	named := testutil.BranchHit("branch")
	got, err := PrepareHits([]*molecule.Graph{named, unnamed})
	require.NoError(t, err)
	assert.Equal(t, "branch", got[0].Name)
	assert.Equal(t, "hit1", got[1].Name)
	assert.Equal(t, []string{"hit1.3"}, got[1].Origin(3))
	assert.Equal(t, 0.0, got[1].Confidence(3))

	// inputs untouched
	assert.Equal(t, "", unnamed.Name)
	assert.Nil(t, unnamed.Origin(3))
}

func TestPrepareHits_Rejects(t *testing.T) {
	_, err := PrepareHits(nil)
	assert.True(t, errors.IsCode(err, errors.ErrCodeHitInvalid))

	a := testutil.RingHit("same", r3.Vec{})
	b := testutil.RingHit("same", r3.Vec{X: 1})
	_, err = PrepareHits([]*molecule.Graph{a, b})
	assert.True(t, errors.IsCode(err, errors.ErrCodeHitInvalid))

	flat := testutil.Build("flat", []string{"C", "C"}, nil, [][2]int{{0, 1}})
	_, err = PrepareHits([]*molecule.Graph{flat})
	assert.True(t, errors.IsCode(err, errors.ErrCodeHitInvalid))
}

func TestPrepareHits_SingleAtomAtOrigin(t *testing.T) {
	ion := molecule.NewGraph("ion")
	ion.AddAtom(molecule.Atom{Element: "N", Charge: 1}, r3.Vec{})
	ion.MarkPosed()
	got, err := PrepareHits([]*molecule.Graph{ion})
	require.NoError(t, err)
	assert.Equal(t, []string{"ion.0"}, got[0].Origin(0))
}

func TestPrepareHits_FoldsHydrogens(t *testing.T) {
	amine := ethylamineWithHydrogens()
	got, err := PrepareHits([]*molecule.Graph{amine})
	require.NoError(t, err)
	require.Equal(t, 3, got[0].NumAtoms())
	assert.Equal(t, 2, got[0].Atoms[2].ImplicitHs)
	assert.Equal(t, []string{"amine.2"}, got[0].Origin(2))
	assert.Equal(t, 5, amine.NumAtoms())
}

// ethylamineWithHydrogens is C-C-N with both amine hydrogens explicit.
func ethylamineWithHydrogens() *molecule.Graph {
	return testutil.Build("amine",
		[]string{"C", "C", "N", "H", "H"},
		[]r3.Vec{{}, {X: 1.5}, {X: 2, Y: 1.4}, {X: 3, Y: 1.4}, {X: 1.6, Y: 2.3}},
		[][2]int{{0, 1}, {1, 2}, {2, 3}, {2, 4}})
}

func TestMergeHits_SingleHit(t *testing.T) {
	hit := testutil.RingHit("ring", r3.Vec{})
	merge, err := newCompositor(testutil.NewMockLogger()).MergeHits([]*molecule.Graph{hit})
	require.NoError(t, err)

	s := merge.Scaffold
	assert.Equal(t, hit.NumAtoms(), s.NumAtoms())
	assert.Equal(t, hit.Bonds(), s.Bonds())
	for i := 0; i < s.NumAtoms(); i++ {
		assert.Equal(t, hit.Atoms[i].Element, s.Atoms[i].Element)
		assert.Equal(t, hit.Position(i), s.Position(i))
		assert.NotNil(t, s.Origin(i))
		assert.Equal(t, 0.0, s.Confidence(i))
	}
	assert.Empty(t, merge.Unmatched)
}

func TestMergeHits_SelfCopyCollapses(t *testing.T) {
	a := testutil.RingHit("a", r3.Vec{})
	b := testutil.RingHit("b", r3.Vec{})
	merge, err := newCompositor(testutil.NewMockLogger()).MergeHits([]*molecule.Graph{a, b})
	require.NoError(t, err)
	assert.Equal(t, 6, merge.Scaffold.NumAtoms())
	assert.Equal(t, "a-b", merge.Scaffold.Name)
}

func TestMergeHits_ThreeFragments(t *testing.T) {
	logger := testutil.NewMockLogger()
	hits := []*molecule.Graph{
		testutil.DistantHit("hit3"),
		testutil.BranchHit("hit2"),
		testutil.RingHit("hit1", r3.Vec{}),
	}
	merge, err := newCompositor(logger).MergeHits(hits)
	require.NoError(t, err)

	s := merge.Scaffold
	assert.Equal(t, 9, s.NumAtoms())
	assert.Equal(t, 9, s.NumBonds())
	assert.Equal(t, "hit1-hit2", s.Name)
	assert.Len(t, s.Components(), 1)
	assert.Equal(t, []string{"hit3"}, merge.Unmatched)
	assert.True(t, logger.HasMessage("warn", "hit could not be merged and is excluded"))

	// Spliced chain hangs off scaffold atom 1.
	_, ok := s.BondBetween(1, 6)
	assert.True(t, ok)
	assert.Equal(t, "O", s.Atoms[8].Element)
	assert.Equal(t, []string{"hit2.4"}, s.Origin(8))

	// Private copies keep input order.
	require.Len(t, merge.Hits, 3)
	assert.Equal(t, "hit3", merge.Hits[0].Name)
}

func TestMergeHits_DeferredHitRetried(t *testing.T) {
	// The tail only touches the branch, yet sorts before it by size, so it
	// has no overlap on the first pass and must wait for the second.
	ring := testutil.RingHit("ring", r3.Vec{})
	branch := testutil.BranchHit("branch")
	tip := branch.Position(4)
	elements := []string{"O", "C", "C", "C", "C", "C"}
	pos := make([]r3.Vec, len(elements))
	var bonds [][2]int
	for i := range pos {
		pos[i] = r3.Add(tip, r3.Vec{Z: 3 * float64(i)})
		if i > 0 {
			bonds = append(bonds, [2]int{i - 1, i})
		}
	}
	tail := testutil.Build("tail", elements, pos, bonds)

	logger := testutil.NewMockLogger()
	merge, err := newCompositor(logger).MergeHits([]*molecule.Graph{ring, tail, branch})
	require.NoError(t, err)
	assert.Empty(t, merge.Unmatched)
	assert.Equal(t, 14, merge.Scaffold.NumAtoms())
	assert.Equal(t, "ring-branch-tail", merge.Scaffold.Name)
	assert.True(t, logger.HasMessage("debug", "hit deferred"))
}

func TestMergePair_NoOverlap(t *testing.T) {
	c := newCompositor(nil)
	_, err := c.MergePair(testutil.RingHit("a", r3.Vec{}), testutil.DistantHit("far"))
	require.Error(t, err)
	assert.True(t, errors.IsConnectivity(err))
}

func TestMergePair_RingAttachedAtTwoPoints(t *testing.T) {
	// A fused ring: the fragment shares atoms 0 and 1 with the scaffold and
	// closes a second ring through two novel atoms, each bonded to one
	// shared atom. Both anchors must be spliced as one team.
	scaffold := testutil.Build("s",
		[]string{"C", "C"},
		[]r3.Vec{{X: 0}, {X: 3}},
		[][2]int{{0, 1}})
	frag := testutil.Build("f",
		[]string{"C", "C", "N", "N"},
		[]r3.Vec{{X: 0}, {X: 3}, {X: 3, Y: 3}, {X: 0, Y: 3}},
		[][2]int{{0, 1}, {1, 2}, {2, 3}, {3, 0}})
	logger := testutil.NewMockLogger()
	merged, err := NewCompositor(NewSpatialMatcher(0), logger).MergePair(scaffold, frag)
	require.NoError(t, err)
	assert.Equal(t, 4, merged.NumAtoms())
	assert.Equal(t, 4, merged.NumBonds())
	_, ok := merged.BondBetween(1, 2)
	assert.True(t, ok)
	_, ok = merged.BondBetween(0, 3)
	assert.True(t, ok)
	assert.Len(t, logger.Find("debug", "team spliced"), 1)
	assert.True(t, merged.RingInfo().Atoms[2])
}

//Personal.AI order the ending
