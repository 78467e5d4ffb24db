package stack

import (
	"math"
	"math/cmplx"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/514687572h/Berreman4x4/internal/optics"
)

const k0For500nm = 2 * math.Pi / 500e-9

// fresnel returns the amplitude coefficients of a single interface
// n1|n2 for reduced tangential wavenumber Kx.
func fresnel(n1, n2 complex128, kx float64) (rs, ts, rp, tp complex128) {
	c1 := cmplx.Sqrt(n1*n1-complex(kx*kx, 0)) / n1
	c2 := cmplx.Sqrt(n2*n2-complex(kx*kx, 0)) / n2
	rs = (n1*c1 - n2*c2) / (n1*c1 + n2*c2)
	ts = 2 * n1 * c1 / (n1*c1 + n2*c2)
	rp = (n2*c1 - n1*c2) / (n2*c1 + n1*c2)
	tp = 2 * n1 * c1 / (n2*c1 + n1*c2)
	return
}

func TestSingleInterfaceFresnel(t *testing.T) {
	t.Parallel()

	air := optics.NewIsotropicMaterial(1.0)
	glass := optics.NewIsotropicMaterial(1.55)
	s := NewStructure(NewIsotropicHalfSpace(air), nil, NewIsotropicHalfSpace(glass))

	angles := []float64{0, 30, 45, 60}
	for _, deg := range angles {
		kx := 1.0 * math.Sin(deg*math.Pi/180)
		j, err := s.Jones(kx, k0For500nm)
		require.NoError(t, err)

		rs, ts, rp, tp := fresnel(1.0, 1.55, kx)
		assert.InDelta(t, cmplx.Abs(rs), cmplx.Abs(j.R[1][1]), 1e-10, "r_ss at %g deg", deg)
		assert.InDelta(t, cmplx.Abs(ts), cmplx.Abs(j.T[1][1]), 1e-10, "t_ss at %g deg", deg)
		assert.InDelta(t, cmplx.Abs(rp), cmplx.Abs(j.R[0][0]), 1e-10, "r_pp at %g deg", deg)
		assert.InDelta(t, cmplx.Abs(tp), cmplx.Abs(j.T[0][0]), 1e-10, "t_pp at %g deg", deg)

		// No cross-polarization at an isotropic interface.
		assert.InDelta(t, 0, cmplx.Abs(j.R[0][1]), 1e-12)
		assert.InDelta(t, 0, cmplx.Abs(j.T[1][0]), 1e-12)

		// Energy conservation with the transmission correction.
		corr := s.PowerTransmissionCorrection(kx, k0For500nm)
		rPow, _ := PowerCoefficient(j, "r_ss")
		tPow, _ := PowerCoefficient(j, "t_ss")
		assert.InDelta(t, 1, rPow+corr*tPow, 1e-10, "s power at %g deg", deg)
	}
}

func TestBrewsterAngle(t *testing.T) {
	t.Parallel()

	air := optics.NewIsotropicMaterial(1.0)
	glass := optics.NewIsotropicMaterial(1.5)
	s := NewStructure(NewIsotropicHalfSpace(air), nil, NewIsotropicHalfSpace(glass))

	brewster := math.Atan(1.5)
	j, err := s.Jones(math.Sin(brewster), k0For500nm)
	require.NoError(t, err)

	rpp, _ := PowerCoefficient(j, "r_pp")
	rss, _ := PowerCoefficient(j, "r_ss")
	assert.InDelta(t, 0, rpp, 1e-12, "p reflection vanishes at Brewster incidence")
	assert.Greater(t, rss, 0.05)
}

// airy returns |r|² and |t|² of an isotropic slab n1|n2|n1 of
// thickness d at normal incidence.
func airy(n1, n2 complex128, d float64, k0 float64) (rPow, tPow float64) {
	r12 := (n1 - n2) / (n1 + n2)
	r21 := -r12
	t12 := 2 * n1 / (n1 + n2)
	t21 := 2 * n2 / (n1 + n2)
	beta := complex(k0*d, 0) * n2
	ph := cmplx.Exp(2i * beta)
	r := (r12 + r21*ph) / (1 + r12*r21*ph)
	tt := t12 * t21 * cmplx.Exp(1i*beta) / (1 + r12*r21*ph)
	return cmplx.Abs(r) * cmplx.Abs(r), cmplx.Abs(tt) * cmplx.Abs(tt)
}

func TestIsotropicSlabAiry(t *testing.T) {
	t.Parallel()

	air := optics.NewIsotropicMaterial(1.0)
	film := optics.NewIsotropicMaterial(2.3)
	s := NewStructure(
		NewIsotropicHalfSpace(air),
		[]Layer{NewHomogeneousLayer(film, 120e-9)},
		NewIsotropicHalfSpace(air),
	)

	for _, lbda := range []float64{450e-9, 550e-9, 650e-9} {
		k0 := 2 * math.Pi / lbda
		j, err := s.Jones(0, k0)
		require.NoError(t, err)

		wantR, wantT := airy(1.0, 2.3, 120e-9, k0)
		gotR, _ := PowerCoefficient(j, "r_ss")
		gotT, _ := PowerCoefficient(j, "t_ss")
		assert.InDelta(t, wantR, gotR, 1e-9, "R at %g nm", lbda*1e9)
		assert.InDelta(t, wantT, gotT, 1e-9, "T at %g nm", lbda*1e9)
		assert.InDelta(t, 1, gotR+gotT, 1e-9)
	}
}

func TestUniaxialSlabOrdinaryAndExtraordinary(t *testing.T) {
	t.Parallel()

	// Optic axis along x: at normal incidence s light (Ey) sees the
	// ordinary index, p light (Ex) the extraordinary one.
	const (
		no = 1.5
		ne = 1.7
		d  = 800e-9
	)
	lc := optics.Rotated(
		optics.NewUniaxialMaterial(no, ne),
		optics.RotationVTheta([3]float64{0, 1, 0}, math.Pi/2),
	)
	match := optics.NewIsotropicMaterial(no)
	s := NewStructure(
		NewIsotropicHalfSpace(match),
		[]Layer{NewHomogeneousLayer(lc, d)},
		NewIsotropicHalfSpace(match),
	)

	j, err := s.Jones(0, k0For500nm)
	require.NoError(t, err)

	// s is index matched: full transmission, no reflection.
	tss, _ := PowerCoefficient(j, "t_ss")
	rss, _ := PowerCoefficient(j, "r_ss")
	assert.InDelta(t, 1, tss, 1e-10)
	assert.InDelta(t, 0, rss, 1e-10)

	// p sees an n_o | n_e | n_o etalon.
	wantR, wantT := airy(no, ne, d, k0For500nm)
	rpp, _ := PowerCoefficient(j, "r_pp")
	tpp, _ := PowerCoefficient(j, "t_pp")
	assert.InDelta(t, wantR, rpp, 1e-9)
	assert.InDelta(t, wantT, tpp, 1e-9)

	// No coupling between the eigenpolarizations.
	tsp, _ := PowerCoefficient(j, "t_sp")
	assert.InDelta(t, 0, tsp, 1e-12)
}

func TestZeroTwistMatchesHomogeneous(t *testing.T) {
	t.Parallel()

	lc := optics.Rotated(
		optics.NewUniaxialMaterial(1.5, 1.6),
		optics.RotationVTheta([3]float64{0, 1, 0}, math.Pi/2),
	)
	glass := optics.NewIsotropicMaterial(1.55)

	twisted := NewStructure(
		NewIsotropicHalfSpace(glass),
		[]Layer{NewInhomogeneousLayer(NewTwistedMaterial(lc, 325e-9, 0, 40))},
		NewIsotropicHalfSpace(glass),
	)
	uniform := NewStructure(
		NewIsotropicHalfSpace(glass),
		[]Layer{NewHomogeneousLayer(lc, 325e-9)},
		NewIsotropicHalfSpace(glass),
	)

	jt, err := twisted.Jones(0, k0For500nm)
	require.NoError(t, err)
	ju, err := uniform.Jones(0, k0For500nm)
	require.NoError(t, err)

	for _, name := range []string{"r_pp", "r_ss", "t_pp", "t_ss", "t_sp", "r_ps"} {
		want, _ := PowerCoefficient(ju, name)
		got, _ := PowerCoefficient(jt, name)
		assert.InDelta(t, want, got, 1e-9, name)
	}
}

func TestRepeatedLayersMatchesExplicit(t *testing.T) {
	t.Parallel()

	air := optics.NewIsotropicMaterial(1.0)
	hi := optics.NewIsotropicMaterial(2.3)
	lo := optics.NewIsotropicMaterial(1.38)
	pair := []Layer{
		NewHomogeneousLayer(hi, 60e-9),
		NewHomogeneousLayer(lo, 90e-9),
	}

	repeated := NewStructure(
		NewIsotropicHalfSpace(air),
		[]Layer{NewRepeatedLayers(pair, 3)},
		NewIsotropicHalfSpace(air),
	)
	var explicit []Layer
	for i := 0; i < 3; i++ {
		explicit = append(explicit, pair...)
	}
	unrolled := NewStructure(NewIsotropicHalfSpace(air), explicit, NewIsotropicHalfSpace(air))

	jr, err := repeated.Jones(0.4, k0For500nm)
	require.NoError(t, err)
	je, err := unrolled.Jones(0.4, k0For500nm)
	require.NoError(t, err)

	for i := 0; i < 2; i++ {
		for j := 0; j < 2; j++ {
			assert.InDelta(t, 0, cmplx.Abs(jr.R[i][j]-je.R[i][j]), 1e-10)
			assert.InDelta(t, 0, cmplx.Abs(jr.T[i][j]-je.T[i][j]), 1e-10)
		}
	}
}

func TestAnisotropicHalfSpaceMatchesIsotropic(t *testing.T) {
	t.Parallel()

	glass := optics.NewIsotropicMaterial(1.55)
	film := optics.NewIsotropicMaterial(2.0)
	layers := []Layer{NewHomogeneousLayer(film, 200e-9)}

	iso := NewStructure(NewIsotropicHalfSpace(glass), layers, NewIsotropicHalfSpace(glass))
	aniso := NewStructure(NewAnisotropicHalfSpace(glass), layers, NewAnisotropicHalfSpace(glass))

	for _, kx := range []float64{0, 0.5} {
		ji, err := iso.Jones(kx, k0For500nm)
		require.NoError(t, err)
		ja, err := aniso.Jones(kx, k0For500nm)
		require.NoError(t, err)

		// Mode normalization differs between the two constructions, so
		// compare powers rather than amplitudes.
		for _, name := range []string{"r_pp", "r_ss", "t_pp", "t_ss"} {
			want, _ := PowerCoefficient(ji, name)
			got, _ := PowerCoefficient(ja, name)
			assert.InDelta(t, want, got, 1e-7, "%s at Kx=%g", name, kx)
		}
	}
}

func TestCircularBasisPreservesPower(t *testing.T) {
	t.Parallel()

	lc := optics.Rotated(
		optics.NewUniaxialMaterial(1.5, 1.6),
		optics.RotationVTheta([3]float64{0, 1, 0}, math.Pi/2),
	)
	glass := optics.NewIsotropicMaterial(1.55)
	s := NewStructure(
		NewIsotropicHalfSpace(glass),
		[]Layer{NewInhomogeneousLayer(NewTwistedMaterial(lc, 325e-9, math.Pi, 40))},
		NewIsotropicHalfSpace(glass),
	)

	j, err := s.Jones(0, 2*math.Pi/1.0e-6)
	require.NoError(t, err)
	jc := j.Circular()

	sum := func(m [2][2]complex128) (s float64) {
		for i := 0; i < 2; i++ {
			for k := 0; k < 2; k++ {
				v := cmplx.Abs(m[i][k])
				s += v * v
			}
		}
		return
	}
	assert.InDelta(t, sum(j.R), sum(jc.R), 1e-12)
	assert.InDelta(t, sum(j.T), sum(jc.T), 1e-12)

	// Unpolarized totals are basis independent by construction.
	r1, t1 := j.UnpolarizedPower()
	r2, t2 := jc.UnpolarizedPower()
	assert.InDelta(t, r1, r2, 1e-12)
	assert.InDelta(t, t1, t2, 1e-12)
}

func TestParseCoefficient(t *testing.T) {
	t.Parallel()

	c, err := ParseCoefficient("t_sp")
	require.NoError(t, err)
	assert.Equal(t, Coefficient{Transmission: true, Out: 1, In: 0}, c)

	c, err = ParseCoefficient("r_RR")
	require.NoError(t, err)
	assert.Equal(t, Coefficient{Circular: true, Out: 1, In: 1}, c)

	for _, bad := range []string{"", "x_pp", "r_pL", "rpp", "r_qq"} {
		_, err := ParseCoefficient(bad)
		assert.Error(t, err, "name %q", bad)
	}
}
