package stack

import (
	"math"
	"math/cmplx"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/514687572h/Berreman4x4/internal/optics"
)

// cholestericStructure builds the reference right-handed cholesteric
// stack: pitch p, N half-pitch repetitions, glass half-spaces.
func cholestericStructure(no, ne, nGlass, pitch float64, reps, div int) *Structure {
	glass := optics.NewIsotropicMaterial(nGlass)
	lc := optics.Rotated(
		optics.NewUniaxialMaterial(no, ne),
		optics.RotationVTheta([3]float64{0, 1, 0}, math.Pi/2),
	)
	halfTurn := NewInhomogeneousLayer(NewTwistedMaterial(lc, pitch/2, math.Pi, div))
	return NewStructure(
		NewIsotropicHalfSpace(glass),
		[]Layer{NewRepeatedLayers([]Layer{halfTurn}, reps)},
		NewIsotropicHalfSpace(glass),
	)
}

func TestCholestericStopBand(t *testing.T) {
	t.Parallel()

	const (
		no    = 1.5
		ne    = 1.6
		pitch = 0.65e-6
		reps  = 25
	)
	nMed := (no + ne) / 2
	dn := ne - no
	height := float64(reps) * pitch / 2
	lbdaBragg := pitch * nMed
	rTh := math.Pow(math.Tanh(dn/nMed*math.Pi*height/pitch), 2)

	s := cholestericStructure(no, ne, 1.55, pitch, reps, 40)
	j, err := s.Jones(0, 2*math.Pi/lbdaBragg)
	require.NoError(t, err)

	rRR, _ := PowerCoefficient(j, "r_RR")
	tRR, _ := PowerCoefficient(j, "t_RR")
	tLL, _ := PowerCoefficient(j, "t_LL")
	rLL, _ := PowerCoefficient(j, "r_LL")

	// The right-circular wave is Bragg reflected; the analytic
	// coupled-mode result bounds the reflectance at band centre.
	assert.InDelta(t, rTh, rRR, 0.03)
	assert.InDelta(t, 1-rRR, tRR, 1e-7, "no absorption: R_RR + T_RR = 1")

	// The left-circular wave passes through the whole band.
	assert.Greater(t, tLL, 0.95)
	assert.Less(t, rLL, 0.05)

	// Unpolarized energy balance.
	r, tr := j.UnpolarizedPower()
	assert.InDelta(t, 1, r+tr, 1e-7)
}

func TestCholestericOutsideStopBand(t *testing.T) {
	t.Parallel()

	s := cholestericStructure(1.5, 1.6, 1.55, 0.65e-6, 25, 40)

	// 1.2 µm is well past the band edge at p·ne = 1.04 µm; only weak
	// sidelobe reflection remains for either handedness.
	j, err := s.Jones(0, 2*math.Pi/1.2e-6)
	require.NoError(t, err)

	rRR, _ := PowerCoefficient(j, "r_RR")
	tRR, _ := PowerCoefficient(j, "t_RR")
	assert.Less(t, rRR, 0.15)
	assert.Greater(t, tRR, 0.85)
}

func TestCholestericTransmissionEigenmodes(t *testing.T) {
	t.Parallel()

	s := cholestericStructure(1.5, 1.6, 1.55, 0.65e-6, 25, 40)
	j, err := s.Jones(0, 2*math.Pi/(0.65e-6*1.55))
	require.NoError(t, err)

	values, vectors := j.T.Eigen()

	// One eigenmode transmits nearly fully (left circular), the other
	// is blocked by the stop band.
	p1 := math.Pow(cmplx.Abs(values[0]), 2)
	p2 := math.Pow(cmplx.Abs(values[1]), 2)
	hi, lo := math.Max(p1, p2), math.Min(p1, p2)
	assert.Greater(t, hi, 0.9)
	assert.Less(t, lo, 0.1)

	// Both eigenvectors are close to circular: |E_s| ≈ |E_p|.
	for i, v := range vectors {
		ratio := cmplx.Abs(v[1]) / cmplx.Abs(v[0])
		assert.InDelta(t, 1, ratio, 0.15, "eigenvector %d s/p ratio", i)
	}
}
