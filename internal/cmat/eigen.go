package cmat

import (
	"fmt"
	"math"
	"math/cmplx"

	"gonum.org/v1/gonum/mat"
)

// Eigen returns the eigenvalues of a and the corresponding unit
// eigenvectors, computed in closed form from the characteristic
// polynomial. For a defective matrix the two returned vectors
// coincide.
func (a Matrix2) Eigen() ([2]complex128, [2]Vector2) {
	mean := a.Trace() / 2
	disc := cmplx.Sqrt(mean*mean - a.Det())
	values := [2]complex128{mean + disc, mean - disc}

	var vectors [2]Vector2
	for i, lambda := range values {
		// Rows of (a - λI) are orthogonal to the eigenvector; build it
		// from whichever row is better conditioned.
		v1 := Vector2{a[0][1], lambda - a[0][0]}
		v2 := Vector2{lambda - a[1][1], a[1][0]}
		v := v1
		if vecNorm2(v2) > vecNorm2(v1) {
			v = v2
		}
		if n := vecNorm2(v); n > 0 {
			v[0] /= complex(n, 0)
			v[1] /= complex(n, 0)
		} else {
			v = Vector2{1, 0}
		}
		vectors[i] = v
	}
	return values, vectors
}

func vecNorm2(v Vector2) float64 {
	return math.Hypot(cmplx.Abs(v[0]), cmplx.Abs(v[1]))
}

func vecNorm4(v Vector4) float64 {
	var s float64
	for _, c := range v {
		s += real(c)*real(c) + imag(c)*imag(c)
	}
	return math.Sqrt(s)
}

// Eigen returns the four eigenvalues of a with unit eigenvectors.
//
// gonum's eigensolver handles real matrices only, so a is embedded as
// the real 8×8 matrix [[Re a, -Im a], [Im a, Re a]], whose spectrum is
// spec(a) ∪ conj(spec(a)). Embedding eigenvectors (u; v) map back
// through u+iv: pairs belonging to conj(spec(a)) map to zero and are
// discarded, and for repeated eigenvalues the doubled eigenspace is
// thinned by Gram-Schmidt to the right multiplicity.
func (a Matrix4) Eigen() ([4]complex128, [4]Vector4, error) {
	data := make([]float64, 64)
	for i := 0; i < 4; i++ {
		for j := 0; j < 4; j++ {
			re, im := real(a[i][j]), imag(a[i][j])
			data[i*8+j] = re
			data[i*8+j+4] = -im
			data[(i+4)*8+j] = im
			data[(i+4)*8+j+4] = re
		}
	}

	var eig mat.Eigen
	if ok := eig.Factorize(mat.NewDense(8, 8, data), mat.EigenRight); !ok {
		return [4]complex128{}, [4]Vector4{}, fmt.Errorf("eigendecomposition failed")
	}
	values := eig.Values(nil)
	var vectors mat.CDense
	eig.VectorsTo(&vectors)

	scale := a.MaxNorm()
	if scale == 0 {
		scale = 1
	}
	const rel = 1e-9

	var outVals [4]complex128
	var outVecs [4]Vector4
	n := 0
	for j := 0; j < 8 && n < 4; j++ {
		var x Vector4
		for i := 0; i < 4; i++ {
			u := vectors.At(i, j)
			v := vectors.At(i+4, j)
			x[i] = u + complex(0, 1)*v
		}
		if vecNorm4(x) < 1e-6 {
			continue // eigenpair of the conjugate copy
		}
		// Project out any already accepted eigenvector with the same
		// eigenvalue; the embedding doubles each genuine eigenspace.
		for k := 0; k < n; k++ {
			if cmplx.Abs(values[j]-outVals[k]) > rel*scale+rel {
				continue
			}
			var dot complex128
			for i := 0; i < 4; i++ {
				dot += cmplx.Conj(outVecs[k][i]) * x[i]
			}
			for i := 0; i < 4; i++ {
				x[i] -= dot * outVecs[k][i]
			}
		}
		norm := vecNorm4(x)
		if norm < 1e-7 {
			continue // duplicate direction, nothing new
		}
		for i := 0; i < 4; i++ {
			x[i] /= complex(norm, 0)
		}
		outVals[n] = values[j]
		outVecs[n] = x
		n++
	}
	if n < 4 {
		return outVals, outVecs, fmt.Errorf("found %d of 4 eigenvectors", n)
	}
	return outVals, outVecs, nil
}
