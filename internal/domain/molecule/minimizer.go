package molecule

import (
	"context"

	"gonum.org/v1/gonum/spatial/r3"
)

// Restraint pins one atom near a target position.  Inside Tolerance the
// restraint is flat; beyond it the penalty grows harmonically with
// ForceConstant.
type Restraint struct {
	Atom          int
	Target        r3.Vec
	Tolerance     float64
	ForceConstant float64
}

// Minimized is the outcome of a geometry optimization.
type Minimized struct {
	Graph        *Graph
	EnergyBefore float64
	Energy       float64
	Converged    bool
}

// Minimizer is the coordinate engine used by the placer and the laboratory.
// Implementations must not mutate the graph they are given.
type Minimizer interface {
	// Embed generates a plausible 3-D conformer for g from scratch.
	Embed(ctx context.Context, g *Graph) ([]r3.Vec, error)
	// Optimize relaxes g's current conformer under the restraints and
	// returns a new graph.
	Optimize(ctx context.Context, g *Graph, restraints []Restraint) (*Minimized, error)
}

//Personal.AI order the ending
