package stack

import (
	"fmt"
	"math"
	"math/cmplx"

	"github.com/514687572h/Berreman4x4/internal/cmat"
)

// Structure is a complete optical stack: an entry half-space, a list
// of layers from front to back, and an exit half-space.
type Structure struct {
	Front  HalfSpace
	Layers []Layer
	Back   HalfSpace
}

// NewStructure assembles a structure.
func NewStructure(front HalfSpace, layers []Layer, back HalfSpace) *Structure {
	return &Structure{Front: front, Layers: layers, Back: back}
}

// Matrix returns the 4×4 structure matrix T = L_f⁻¹ · Π Pᵢ⁻¹ · L_b,
// mapping exit-side mode amplitudes to entry-side mode amplitudes.
func (s *Structure) Matrix(Kx, k0 float64) (cmat.Matrix4, error) {
	t, err := s.Front.TransitionMatrix(Kx, k0, true)
	if err != nil {
		return cmat.Matrix4{}, fmt.Errorf("front half-space: %w", err)
	}
	for i, l := range s.Layers {
		p, err := l.PropagationMatrix(Kx, k0, true)
		if err != nil {
			return cmat.Matrix4{}, fmt.Errorf("layer %d: %w", i, err)
		}
		t = t.Mul(p)
	}
	lb, err := s.Back.TransitionMatrix(Kx, k0, false)
	if err != nil {
		return cmat.Matrix4{}, fmt.Errorf("back half-space: %w", err)
	}
	return t.Mul(lb), nil
}

// JonesPair holds the reflection and transmission Jones matrices of a
// structure in the (p, s) basis: row/column 0 is p, 1 is s, and
// element (i, j) maps incident polarization j to outgoing i.
type JonesPair struct {
	R cmat.Matrix2
	T cmat.Matrix2
}

// Jones solves the structure at one incidence and wavenumber.
//
// Mode amplitudes order (is, rs, ip, rp): the incident/transmitted
// sub-matrix T_it sits at rows and columns {2, 0} and the
// reflected/transmitted block T_rt at rows {3, 1}; then t = T_it⁻¹
// and r = T_rt·t.
func (s *Structure) Jones(Kx, k0 float64) (JonesPair, error) {
	t, err := s.Matrix(Kx, k0)
	if err != nil {
		return JonesPair{}, err
	}
	tit := cmat.Matrix2{
		{t[2][2], t[2][0]},
		{t[0][2], t[0][0]},
	}
	tti, ok := tit.Inverse()
	if !ok {
		return JonesPair{}, fmt.Errorf("structure matrix is singular at Kx=%g k0=%g", Kx, k0)
	}
	trt := cmat.Matrix2{
		{t[3][2], t[3][0]},
		{t[1][2], t[1][0]},
	}
	return JonesPair{R: trt.Mul(tti), T: tti}, nil
}

// PowerTransmissionCorrection returns the factor turning |t|² into
// power transmission when entry and exit media differ:
// Re(n_b·cosΦ_b) / Re(n_f·cosΦ_f). It is 1 for identical isotropic
// half-spaces and defaults to 1 when either half-space is not
// isotropic.
func (s *Structure) PowerTransmissionCorrection(Kx, k0 float64) float64 {
	front, okF := s.Front.(*IsotropicHalfSpace)
	back, okB := s.Back.(*IsotropicHalfSpace)
	if !okF || !okB {
		return 1
	}
	num := real(back.KzFromKx(Kx, k0))
	den := real(front.KzFromKx(Kx, k0))
	if den == 0 {
		return 1
	}
	return num / den
}

// Basis change between linear (p, s) and circular (L, R) Jones
// vectors. cirC maps circular components to (p, s) for waves along
// +z; cirD is its counterpart for the reversed, reflected direction.
var (
	cirC = cmat.Matrix2{{1, 1}, {1i, -1i}}.Scale(complex(1/math.Sqrt2, 0))
	cirD = cmat.Matrix2{{1, 1}, {-1i, 1i}}.Scale(complex(1/math.Sqrt2, 0))
	// The matrices are unitary; the inverses are conjugate transposes.
	cirCInv = cmat.Matrix2{{1, -1i}, {1, 1i}}.Scale(complex(1/math.Sqrt2, 0))
	cirDInv = cmat.Matrix2{{1, 1i}, {1, -1i}}.Scale(complex(1/math.Sqrt2, 0))
)

// Circular converts the Jones matrices to the circular basis (L, R):
// row/column 0 is left, 1 is right circular. Handedness is defined
// relative to the propagation direction, so the reflected beam uses
// the reversed-direction basis.
func (j JonesPair) Circular() JonesPair {
	return JonesPair{
		R: cirDInv.Mul(j.R).Mul(cirC),
		T: cirCInv.Mul(j.T).Mul(cirC),
	}
}

// Coefficient identifies one power coefficient of a Jones pair, such
// as r_pp, t_sp, r_RR or t_LL.
type Coefficient struct {
	Transmission bool
	Circular     bool
	Out, In      int
}

// ParseCoefficient parses names of the form "r_ps" or "t_RL": first
// letter r or t, then outgoing and incident polarization, either both
// linear (p, s) or both circular (L, R).
func ParseCoefficient(name string) (Coefficient, error) {
	if len(name) != 4 || name[1] != '_' {
		return Coefficient{}, fmt.Errorf("invalid coefficient name %q", name)
	}
	var c Coefficient
	switch name[0] {
	case 'r':
	case 't':
		c.Transmission = true
	default:
		return Coefficient{}, fmt.Errorf("invalid coefficient name %q: want r_ or t_ prefix", name)
	}
	idx := func(ch byte) (int, bool, error) {
		switch ch {
		case 'p':
			return 0, false, nil
		case 's':
			return 1, false, nil
		case 'L':
			return 0, true, nil
		case 'R':
			return 1, true, nil
		}
		return 0, false, fmt.Errorf("invalid polarization %q in %q", string(ch), name)
	}
	var circOut, circIn bool
	var err error
	if c.Out, circOut, err = idx(name[2]); err != nil {
		return Coefficient{}, err
	}
	if c.In, circIn, err = idx(name[3]); err != nil {
		return Coefficient{}, err
	}
	if circOut != circIn {
		return Coefficient{}, fmt.Errorf("mixed bases in coefficient %q", name)
	}
	c.Circular = circOut
	return c, nil
}

// Extract returns the power coefficient |element|² from a Jones pair
// given in the linear basis.
func (c Coefficient) Extract(j JonesPair) float64 {
	if c.Circular {
		j = j.Circular()
	}
	m := j.R
	if c.Transmission {
		m = j.T
	}
	v := cmplx.Abs(m[c.Out][c.In])
	return v * v
}

// PowerCoefficient is shorthand for parsing and extracting in one
// call.
func PowerCoefficient(j JonesPair, name string) (float64, error) {
	c, err := ParseCoefficient(name)
	if err != nil {
		return 0, err
	}
	return c.Extract(j), nil
}

// UnpolarizedPower returns the reflection and transmission of
// unpolarized light: half the sum of each matrix's squared entries.
func (j JonesPair) UnpolarizedPower() (r, t float64) {
	for a := 0; a < 2; a++ {
		for b := 0; b < 2; b++ {
			vr := cmplx.Abs(j.R[a][b])
			vt := cmplx.Abs(j.T[a][b])
			r += vr * vr / 2
			t += vt * vt / 2
		}
	}
	return r, t
}
