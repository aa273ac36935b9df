package placement

import (
	"strconv"

	"gonum.org/v1/gonum/spatial/r3"
	"gonum.org/v1/gonum/stat"

	"github.com/mwinokan/Fragmenstein/internal/domain/molecule"
	"github.com/mwinokan/Fragmenstein/internal/infrastructure/monitoring/logging"
)

// Refiner averages scaffold coordinates over every hit atom that overlaps
// them.
type Refiner struct {
	spatial SpatialMatcher
	logger  logging.Logger
}

// NewRefiner returns a refiner using the given spatial matcher.
func NewRefiner(spatial SpatialMatcher, logger logging.Logger) *Refiner {
	return &Refiner{spatial: spatial, logger: logging.OrNop(logger)}
}

// Refine returns a copy of scaffold in which every atom overlapping at least
// one hit atom sits at the mean of those positions, with the mean per-axis
// population standard deviation as confidence and the contributing
// "<hit>.<atom>" references as origin.  Atoms no hit overlaps keep their
// position and get origin none, confidence 0.  All positional maps are
// computed against the unrefined coordinates.
func (r *Refiner) Refine(scaffold *molecule.Graph, hits []*molecule.Graph) *molecule.Graph {
	maps := make([]map[int]int, len(hits))
	for k, h := range hits {
		maps[k] = r.spatial.PositionalMap(scaffold, h)
	}

	out := scaffold.Clone()
	moved := 0
	for i := 0; i < out.NumAtoms(); i++ {
		var xs, ys, zs []float64
		var origin []string
		for k, h := range hits {
			j, ok := maps[k][i]
			if !ok {
				continue
			}
			p := h.Position(j)
			xs = append(xs, p.X)
			ys = append(ys, p.Y)
			zs = append(zs, p.Z)
			origin = append(origin, h.Name+"."+strconv.Itoa(j))
		}
		if len(origin) == 0 {
			out.ResetProvenance(i)
			continue
		}
		mx, sx := stat.PopMeanStdDev(xs, nil)
		my, sy := stat.PopMeanStdDev(ys, nil)
		mz, sz := stat.PopMeanStdDev(zs, nil)
		out.SetPosition(i, r3.Vec{X: mx, Y: my, Z: mz})
		out.SetOrigin(i, origin)
		out.SetConfidence(i, (sx+sy+sz)/3)
		moved++
	}

	logIssues(r.logger, out, out.Sanitize())
	r.logger.Debug("scaffold refined",
		logging.String("scaffold", out.Name),
		logging.Int("averaged", moved),
		logging.Int("atoms", out.NumAtoms()))
	return out
}

//Personal.AI order the ending
