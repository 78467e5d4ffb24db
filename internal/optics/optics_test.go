package optics

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsotropicTensor(t *testing.T) {
	t.Parallel()

	glass := NewIsotropicMaterial(1.55)
	eps := glass.Tensor(500e-9)
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			if i == j {
				assert.InDelta(t, 1.55*1.55, real(eps[i][j]), 1e-12)
			} else {
				assert.Zero(t, eps[i][j])
			}
		}
	}
}

func TestSellmeierBK7(t *testing.T) {
	t.Parallel()

	// BK7 coefficients, C in m².
	bk7 := Sellmeier{
		B: []float64{1.03961212, 0.231792344, 1.01046945},
		C: []float64{6.00069867e-15, 2.00179144e-14, 1.03560653e-10},
	}
	n := bk7.RefractiveIndex(587.6e-9)
	assert.InDelta(t, 1.5168, real(n), 5e-4)
	assert.InDelta(t, 0, imag(n), 1e-9)

	// Normal dispersion: shorter wavelengths see a larger index.
	assert.Greater(t, real(bk7.RefractiveIndex(400e-9)), real(bk7.RefractiveIndex(700e-9)))
}

func TestCauchy(t *testing.T) {
	t.Parallel()

	law := Cauchy{A: 1.5, B: 0.005e-12}
	assert.InDelta(t, 1.52, real(law.RefractiveIndex(500e-9)), 1e-12)
}

func TestRotationVThetaOrthonormal(t *testing.T) {
	t.Parallel()

	r := RotationVTheta([3]float64{1, 2, 3}, 0.7)
	id := r.Mul(r.Transpose())
	want := IdentityRotation()
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			assert.InDelta(t, want[i][j], id[i][j], 1e-12)
		}
	}
}

func TestRotationZeroAxis(t *testing.T) {
	t.Parallel()

	assert.Equal(t, IdentityRotation(), RotationVTheta([3]float64{0, 0, 0}, 1.0))
}

func TestUniaxialRotatedToX(t *testing.T) {
	t.Parallel()

	// Rotating the optic axis from z to x (rotation about y by π/2)
	// must swap the xx and zz tensor entries.
	lc := NewUniaxialMaterial(1.5, 1.6)
	r := RotationVTheta([3]float64{0, 1, 0}, math.Pi/2)
	rotated := Rotated(lc, r)

	eps := rotated.Tensor(600e-9)
	assert.InDelta(t, 1.6*1.6, real(eps[0][0]), 1e-12)
	assert.InDelta(t, 1.5*1.5, real(eps[1][1]), 1e-12)
	assert.InDelta(t, 1.5*1.5, real(eps[2][2]), 1e-12)
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			if i != j {
				assert.InDelta(t, 0, real(eps[i][j]), 1e-12)
				assert.InDelta(t, 0, imag(eps[i][j]), 1e-12)
			}
		}
	}
}

func TestRotatedTensorTraceInvariant(t *testing.T) {
	t.Parallel()

	m := NewBiaxialMaterial(1.4, 1.5, 1.7)
	r := RotationEuler(0.3, 0.8, 1.1)

	base := m.Tensor(500e-9)
	rot := m.Tensor(500e-9).Rotated(r)

	var trBase, trRot complex128
	for i := 0; i < 3; i++ {
		trBase += base[i][i]
		trRot += rot[i][i]
	}
	require.InDelta(t, real(trBase), real(trRot), 1e-12)
}
