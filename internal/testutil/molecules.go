package testutil

import (
	"context"
	"fmt"
	"math"

	"github.com/stretchr/testify/mock"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/mwinokan/Fragmenstein/internal/domain/molecule"
)

// ─────────────────────────────────────────────────────────────────────────────
// Graph builders
// ─────────────────────────────────────────────────────────────────────────────

// Build assembles a graph from parallel element and position lists and
// single bonds given as index pairs.  It panics on a malformed bond, which
// only happens when a fixture is wrong.
func Build(name string, elements []string, positions []r3.Vec, bonds [][2]int) *molecule.Graph {
	g := molecule.NewGraph(name)
	for i, el := range elements {
		var p r3.Vec
		if i < len(positions) {
			p = positions[i]
		}
		g.AddAtom(molecule.Atom{Element: el}, p)
	}
	for _, b := range bonds {
		if _, err := g.AddBond(b[0], b[1], molecule.BondSingle); err != nil {
			panic(fmt.Sprintf("fixture %s: %v", name, err))
		}
	}
	return g
}

// RingRadius separates ring neighbours by more than the positional cutoff.
const RingRadius = 3.0

// RingHit is a six-carbon ring in the xy plane centred on shift.
func RingHit(name string, shift r3.Vec) *molecule.Graph {
	pos := make([]r3.Vec, 6)
	for i := range pos {
		a := float64(i) * math.Pi / 3
		pos[i] = r3.Add(shift, r3.Vec{X: RingRadius * math.Cos(a), Y: RingRadius * math.Sin(a)})
	}
	return Build(name,
		[]string{"C", "C", "C", "C", "C", "C"},
		pos,
		[][2]int{{0, 1}, {1, 2}, {2, 3}, {3, 4}, {4, 5}, {5, 0}})
}

// BranchHit shares RingHit atoms 0 and 1 (displaced by 0.1 along x) and adds
// a three-atom chain leaving atom 1 away from the ring.
func BranchHit(name string) *molecule.Graph {
	ring := RingHit("", r3.Vec{})
	shift := r3.Vec{X: 0.1}
	p0 := r3.Add(ring.Position(0), shift)
	p1 := r3.Add(ring.Position(1), shift)
	step := r3.Scale(RingRadius, r3.Vec{X: 0.866, Y: 0.5})
	p2 := r3.Add(p1, step)
	p3 := r3.Add(p2, step)
	p4 := r3.Add(p3, step)
	return Build(name,
		[]string{"C", "C", "C", "C", "O"},
		[]r3.Vec{p0, p1, p2, p3, p4},
		[][2]int{{0, 1}, {1, 2}, {2, 3}, {3, 4}})
}

// DistantHit overlaps nothing near the origin.
func DistantHit(name string) *molecule.Graph {
	return Build(name,
		[]string{"N", "C", "C"},
		[]r3.Vec{{X: 50, Y: 50, Z: 50}, {X: 51.5, Y: 50, Z: 50}, {X: 53, Y: 50, Z: 50}},
		[][2]int{{0, 1}, {1, 2}})
}

// ─────────────────────────────────────────────────────────────────────────────
// Placement scenario
// ─────────────────────────────────────────────────────────────────────────────

// FollowupPoints are the reference coordinates of WildcardCandidate atoms.
// Atoms 0-4 form the C-N-C-O-C backbone covered by PlacementHits; atom 5 is
// a carbon on atom 0 and atom 6 the wildcard on atom 5.
var FollowupPoints = []r3.Vec{
	{X: 0, Y: 0, Z: 0},
	{X: 1.5, Y: 0, Z: 0},
	{X: 2.2, Y: 1.3, Z: 0},
	{X: 3.7, Y: 1.3, Z: 0.2},
	{X: 4.4, Y: 2.6, Z: 0.1},
	{X: -0.7, Y: -1.3, Z: 0.1},
	{X: -2.2, Y: -1.3, Z: 0.5},
}

// PlacementHits returns two hits that splice into the C-N-C-O-C backbone at
// FollowupPoints[0:5], overlapping at atom 2.
func PlacementHits() []*molecule.Graph {
	t := FollowupPoints
	return []*molecule.Graph{
		Build("hitA", []string{"C", "N", "C"}, []r3.Vec{t[0], t[1], t[2]}, [][2]int{{0, 1}, {1, 2}}),
		Build("hitB", []string{"C", "O", "C"}, []r3.Vec{t[2], t[3], t[4]}, [][2]int{{0, 1}, {1, 2}}),
	}
}

// WildcardCandidate is the backbone plus a C-* substituent on atom 0, with
// no conformer.
func WildcardCandidate() *molecule.Graph {
	return Build("followup",
		[]string{"C", "N", "C", "O", "C", "C", molecule.Wildcard},
		nil,
		[][2]int{{0, 1}, {1, 2}, {2, 3}, {3, 4}, {0, 5}, {5, 6}})
}

// ─────────────────────────────────────────────────────────────────────────────
// Minimizers
// ─────────────────────────────────────────────────────────────────────────────

// RigidMinimizer embeds graphs at fixed points moved by a rotation about z
// and a translation, so tests can predict where alignment puts every atom.
// Optimize returns an unchanged copy.
type RigidMinimizer struct {
	Points []r3.Vec
	Angle  float64 // degrees
	Shift  r3.Vec
	Energy float64
}

// NewRigidMinimizer returns the minimizer used by the placement scenario.
func NewRigidMinimizer() *RigidMinimizer {
	return &RigidMinimizer{Points: FollowupPoints, Angle: 40, Shift: r3.Vec{X: 3, Y: -2, Z: 5}}
}

func (m *RigidMinimizer) Embed(ctx context.Context, g *molecule.Graph) ([]r3.Vec, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if g.NumAtoms() != len(m.Points) {
		return nil, fmt.Errorf("rigid minimizer: %d atoms, %d points", g.NumAtoms(), len(m.Points))
	}
	a := m.Angle * math.Pi / 180
	out := make([]r3.Vec, len(m.Points))
	for i, p := range m.Points {
		rot := r3.Vec{X: math.Cos(a)*p.X - math.Sin(a)*p.Y, Y: math.Sin(a)*p.X + math.Cos(a)*p.Y, Z: p.Z}
		out[i] = r3.Add(rot, m.Shift)
	}
	return out, nil
}

func (m *RigidMinimizer) Optimize(ctx context.Context, g *molecule.Graph, _ []molecule.Restraint) (*molecule.Minimized, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return &molecule.Minimized{Graph: g.Clone(), EnergyBefore: m.Energy, Energy: m.Energy, Converged: true}, nil
}

// MockMinimizer is a testify mock of molecule.Minimizer.
type MockMinimizer struct {
	mock.Mock
}

func (m *MockMinimizer) Embed(ctx context.Context, g *molecule.Graph) ([]r3.Vec, error) {
	args := m.Called(ctx, g)
	if v := args.Get(0); v != nil {
		return v.([]r3.Vec), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockMinimizer) Optimize(ctx context.Context, g *molecule.Graph, restraints []molecule.Restraint) (*molecule.Minimized, error) {
	args := m.Called(ctx, g, restraints)
	if v := args.Get(0); v != nil {
		return v.(*molecule.Minimized), args.Error(1)
	}
	return nil, args.Error(1)
}

//Personal.AI order the ending
