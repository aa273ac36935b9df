// Package placement is the compositor/placement engine: it merges spatially
// pre-aligned fragment hits into one scaffold, refines shared coordinates,
// adapts the scaffold's chemistry toward a candidate molecule and finally
// positions the candidate onto that chimera block by block.
//
// Every service here is synchronous and works on private deep copies of its
// inputs; concurrency is left to callers running independent sessions.
package placement

import (
	"sort"

	"github.com/mwinokan/Fragmenstein/internal/domain/molecule"
)

// DefaultCutoff is the distance under which two atoms of different poses
// are considered the same atom.
const DefaultCutoff = 2.0

// SpatialMatcher pairs atoms of two posed graphs by proximity.
type SpatialMatcher struct {
	Cutoff float64
}

// NewSpatialMatcher returns a matcher; a non-positive cutoff selects
// DefaultCutoff.
func NewSpatialMatcher(cutoff float64) SpatialMatcher {
	if cutoff <= 0 {
		cutoff = DefaultCutoff
	}
	return SpatialMatcher{Cutoff: cutoff}
}

type candidatePair struct {
	a, b int
	d    float64
}

// PositionalMap greedily assigns the globally closest remaining atom pair
// until the closest remaining distance exceeds the cutoff.  Each atom is
// used at most once on either side.  Equal distances resolve in row-major
// scan order of the a×b distance matrix.
func (m SpatialMatcher) PositionalMap(a, b *molecule.Graph) map[int]int {
	cutoff := m.Cutoff
	if cutoff <= 0 {
		cutoff = DefaultCutoff
	}
	pairs := make([]candidatePair, 0, a.NumAtoms()*b.NumAtoms())
	for i := 0; i < a.NumAtoms(); i++ {
		pi := a.Position(i)
		for j := 0; j < b.NumAtoms(); j++ {
			d := molecule.Distance(pi, b.Position(j))
			if d <= cutoff {
				pairs = append(pairs, candidatePair{a: i, b: j, d: d})
			}
		}
	}
	// Stable sort keeps scan order among ties.
	sort.SliceStable(pairs, func(x, y int) bool { return pairs[x].d < pairs[y].d })

	usedA := make(map[int]bool)
	usedB := make(map[int]bool)
	out := make(map[int]int)
	for _, p := range pairs {
		if usedA[p.a] || usedB[p.b] {
			continue
		}
		usedA[p.a], usedB[p.b] = true, true
		out[p.a] = p.b
	}
	return out
}

//Personal.AI order the ending
