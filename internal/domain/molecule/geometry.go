package molecule

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/mwinokan/Fragmenstein/pkg/errors"
)

// Transform is a proper rigid motion: p ↦ R·p + T.
type Transform struct {
	Rotation    *mat.Dense
	Translation r3.Vec
}

// Identity returns the transform that leaves points unchanged.
func Identity() Transform {
	return Transform{Rotation: eye3()}
}

// Apply transforms p.
func (t Transform) Apply(p r3.Vec) r3.Vec {
	r := t.Rotation
	return r3.Vec{
		X: r.At(0, 0)*p.X + r.At(0, 1)*p.Y + r.At(0, 2)*p.Z + t.Translation.X,
		Y: r.At(1, 0)*p.X + r.At(1, 1)*p.Y + r.At(1, 2)*p.Z + t.Translation.Y,
		Z: r.At(2, 0)*p.X + r.At(2, 1)*p.Y + r.At(2, 2)*p.Z + t.Translation.Z,
	}
}

// Centroid returns the mean of ps.
func Centroid(ps []r3.Vec) r3.Vec {
	var c r3.Vec
	if len(ps) == 0 {
		return c
	}
	for _, p := range ps {
		c = r3.Add(c, p)
	}
	return r3.Scale(1/float64(len(ps)), c)
}

// Distance returns the Euclidean distance between p and q.
func Distance(p, q r3.Vec) float64 { return r3.Norm(r3.Sub(p, q)) }

// RMSD returns the root-mean-square deviation between equal-length point sets.
func RMSD(a, b []r3.Vec) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return math.NaN()
	}
	var sum float64
	for i := range a {
		d := r3.Sub(a[i], b[i])
		sum += r3.Dot(d, d)
	}
	return math.Sqrt(sum / float64(len(a)))
}

// Superpose finds the rigid motion minimising the summed squared distance
// between the transformed mobile points and target (Kabsch).  The SVD of
// the covariance matrix gives the rotation; a reflection is corrected by
// flipping the smallest singular direction.  A single point yields a pure
// translation and collinear points the least rotation between the lines.
func Superpose(mobile, target []r3.Vec) (Transform, error) {
	if len(mobile) == 0 || len(mobile) != len(target) {
		return Transform{}, errors.New(errors.ErrCodeAlignmentFailed, "superposition needs matching non-empty point sets").
			WithDetail(fmt.Sprintf("mobile=%d target=%d", len(mobile), len(target)))
	}
	cm := Centroid(mobile)
	ct := Centroid(target)
	if len(mobile) == 1 {
		return Transform{Rotation: eye3(), Translation: r3.Sub(ct, cm)}, nil
	}

	h := mat.NewDense(3, 3, nil)
	for i := range mobile {
		p := r3.Sub(mobile[i], cm)
		q := r3.Sub(target[i], ct)
		pv := [3]float64{p.X, p.Y, p.Z}
		qv := [3]float64{q.X, q.Y, q.Z}
		for r := 0; r < 3; r++ {
			for c := 0; c < 3; c++ {
				h.Set(r, c, h.At(r, c)+pv[r]*qv[c])
			}
		}
	}

	var svd mat.SVD
	if ok := svd.Factorize(h, mat.SVDFull); !ok {
		return Transform{}, errors.New(errors.ErrCodeAlignmentFailed, "SVD factorisation failed")
	}
	var u, v mat.Dense
	svd.UTo(&u)
	svd.VTo(&v)

	sv := svd.Values(nil)
	switch {
	case sv[0] < 1e-12:
		// Every point sits on its centroid.
		return Transform{Rotation: eye3(), Translation: r3.Sub(ct, cm)}, nil
	case sv[1] < 1e-9*sv[0]:
		// Collinear points leave the spin about the line undetermined; take
		// the smallest rotation carrying one line onto the other.
		rot := minimalRotation(
			r3.Vec{X: u.At(0, 0), Y: u.At(1, 0), Z: u.At(2, 0)},
			r3.Vec{X: v.At(0, 0), Y: v.At(1, 0), Z: v.At(2, 0)})
		t := Transform{Rotation: rot}
		t.Translation = r3.Sub(ct, t.Apply(cm))
		return t, nil
	}

	var vut mat.Dense
	vut.Mul(&v, u.T())
	d := 1.0
	if mat.Det(&vut) < 0 {
		d = -1
	}
	diag := mat.NewDiagDense(3, []float64{1, 1, d})
	var vd, rot mat.Dense
	vd.Mul(&v, diag)
	rot.Mul(&vd, u.T())

	t := Transform{Rotation: &rot}
	rc := t.Apply(cm)
	t.Translation = r3.Sub(ct, rc)
	return t, nil
}

// AlignToPoints moves the whole conformer of mobile by the rigid motion that
// best superposes the listed atoms onto targets, and returns the RMSD over
// those atoms after the move.
func AlignToPoints(mobile *Graph, atoms []int, targets []r3.Vec) (float64, error) {
	if len(atoms) != len(targets) {
		return 0, errors.New(errors.ErrCodeAlignmentFailed, "atom and target counts differ")
	}
	src := make([]r3.Vec, len(atoms))
	for k, i := range atoms {
		if i < 0 || i >= mobile.NumAtoms() {
			return 0, errors.New(errors.ErrCodeAlignmentFailed, "alignment atom out of range").
				WithDetail(fmt.Sprintf("%s atom %d", mobile.Name, i))
		}
		src[k] = mobile.coords[i]
	}
	t, err := Superpose(src, targets)
	if err != nil {
		return 0, err
	}
	for i, p := range mobile.coords {
		mobile.coords[i] = t.Apply(p)
	}
	moved := make([]r3.Vec, len(atoms))
	for k, i := range atoms {
		moved[k] = mobile.coords[i]
	}
	return RMSD(moved, targets), nil
}

// AlignOnto superposes mobile onto ref using pairs (A indexes mobile, B
// indexes ref) as correspondences and moves all of mobile's atoms.
func AlignOnto(mobile, ref *Graph, pairs []Pair) (float64, error) {
	atoms := make([]int, len(pairs))
	targets := make([]r3.Vec, len(pairs))
	for k, p := range pairs {
		if p.B < 0 || p.B >= ref.NumAtoms() {
			return 0, errors.New(errors.ErrCodeAlignmentFailed, "reference atom out of range").
				WithDetail(fmt.Sprintf("%s atom %d", ref.Name, p.B))
		}
		atoms[k] = p.A
		targets[k] = ref.coords[p.B]
	}
	return AlignToPoints(mobile, atoms, targets)
}

// minimalRotation returns the rotation of least angle taking unit vector a
// onto unit vector b.
func minimalRotation(a, b r3.Vec) *mat.Dense {
	k := r3.Cross(a, b)
	s := r3.Norm(k)
	c := r3.Dot(a, b)
	if s < 1e-12 {
		if c > 0 {
			return eye3()
		}
		// Half turn about any axis perpendicular to a.
		axis := r3.Cross(a, r3.Vec{X: 1})
		if r3.Norm(axis) < 1e-6 {
			axis = r3.Cross(a, r3.Vec{Y: 1})
		}
		axis = r3.Unit(axis)
		r := mat.NewDense(3, 3, nil)
		ax := [3]float64{axis.X, axis.Y, axis.Z}
		for i := 0; i < 3; i++ {
			for j := 0; j < 3; j++ {
				r.Set(i, j, 2*ax[i]*ax[j])
			}
			r.Set(i, i, r.At(i, i)-1)
		}
		return r
	}
	kx := mat.NewDense(3, 3, []float64{
		0, -k.Z, k.Y,
		k.Z, 0, -k.X,
		-k.Y, k.X, 0,
	})
	var kx2 mat.Dense
	kx2.Mul(kx, kx)
	kx2.Scale((1-c)/(s*s), &kx2)
	r := eye3()
	r.Add(r, kx)
	r.Add(r, &kx2)
	return r
}

func eye3() *mat.Dense {
	return mat.NewDense(3, 3, []float64{1, 0, 0, 0, 1, 0, 0, 0, 1})
}

//Personal.AI order the ending
