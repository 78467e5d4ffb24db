package stack

import (
	"fmt"
	"math"
	"math/cmplx"
	"sort"

	"github.com/514687572h/Berreman4x4/internal/cmat"
	"github.com/514687572h/Berreman4x4/internal/optics"
)

// HalfSpace is a semi-infinite entry or exit medium. Its transition
// matrix L maps mode amplitudes, ordered (incident s, reflected s,
// incident p, reflected p), to the field vector Ψ.
type HalfSpace interface {
	TransitionMatrix(Kx, k0 float64, inv bool) (cmat.Matrix4, error)
}

// IsotropicHalfSpace is a half-space of isotropic material, with
// closed-form transition matrices.
type IsotropicHalfSpace struct {
	Medium *optics.IsotropicMaterial
}

// NewIsotropicHalfSpace returns a half-space filled with m.
func NewIsotropicHalfSpace(m *optics.IsotropicMaterial) *IsotropicHalfSpace {
	return &IsotropicHalfSpace{Medium: m}
}

// KzFromKx returns the reduced normal wavenumber Kz = √(n² − Kx²).
func (h *IsotropicHalfSpace) KzFromKx(Kx, k0 float64) complex128 {
	n := h.Medium.RefractiveIndex(2 * math.Pi / k0)
	return cmplx.Sqrt(n*n - complex(Kx*Kx, 0))
}

func (h *IsotropicHalfSpace) TransitionMatrix(Kx, k0 float64, inv bool) (cmat.Matrix4, error) {
	n := h.Medium.RefractiveIndex(2 * math.Pi / k0)
	if n == 0 {
		return cmat.Matrix4{}, fmt.Errorf("half-space index is zero")
	}
	sinPhi := complex(Kx, 0) / n
	cosPhi := cmplx.Sqrt(1 - sinPhi*sinPhi)
	if cosPhi == 0 {
		return cmat.Matrix4{}, fmt.Errorf("grazing incidence: cos(phi) = 0")
	}

	if inv {
		return cmat.Matrix4{
			{0, 1, -1 / (n * cosPhi), 0},
			{0, 1, 1 / (n * cosPhi), 0},
			{1 / cosPhi, 0, 0, 1 / n},
			{1 / cosPhi, 0, 0, -1 / n},
		}.Scale(0.5), nil
	}
	return cmat.Matrix4{
		{0, 0, cosPhi, cosPhi},
		{1, 1, 0, 0},
		{-n * cosPhi, n * cosPhi, 0, 0},
		{0, 0, n, -n},
	}, nil
}

// AnisotropicHalfSpace is a half-space of arbitrary material. Its
// transition matrix comes from the modal decomposition of the
// Berreman matrix, with forward and backward modes told apart by
// their Poynting flux along z (or decay direction for evanescent
// modes).
type AnisotropicHalfSpace struct {
	Material optics.Material
}

// NewAnisotropicHalfSpace returns a half-space filled with m.
func NewAnisotropicHalfSpace(m optics.Material) *AnisotropicHalfSpace {
	return &AnisotropicHalfSpace{Material: m}
}

type halfSpaceMode struct {
	kz  complex128
	psi cmat.Vector4
}

func (h *AnisotropicHalfSpace) TransitionMatrix(Kx, k0 float64, inv bool) (cmat.Matrix4, error) {
	delta := DeltaMatrix(Kx, h.Material.Tensor(2*math.Pi/k0))
	values, vectors, err := delta.Eigen()
	if err != nil {
		return cmat.Matrix4{}, fmt.Errorf("half-space modes: %w", err)
	}

	var forward, backward []halfSpaceMode
	scale := delta.MaxNorm()
	for i := 0; i < 4; i++ {
		m := halfSpaceMode{kz: values[i], psi: vectors[i]}
		if isForwardMode(m, scale) {
			forward = append(forward, m)
		} else {
			backward = append(backward, m)
		}
	}
	if len(forward) != 2 || len(backward) != 2 {
		return cmat.Matrix4{}, fmt.Errorf("mode classification found %d forward, %d backward", len(forward), len(backward))
	}

	// Degenerate pairs (isotropic or accidentally degenerate media)
	// come back as arbitrary mixtures within the eigenspace; recombine
	// them into the pure s and p waves spanning it.
	purifyDegeneratePair(forward, scale)
	purifyDegeneratePair(backward, scale)

	// Put the s-like mode (dominant Ey) first in each pair, so column
	// order matches (is, rs, ip, rp).
	sortBySContent(forward)
	sortBySContent(backward)

	var l cmat.Matrix4
	cols := [4]cmat.Vector4{forward[0].psi, backward[0].psi, forward[1].psi, backward[1].psi}
	for j, c := range cols {
		for i := 0; i < 4; i++ {
			l[i][j] = c[i]
		}
	}
	if inv {
		li, ok := l.Inverse()
		if !ok {
			return cmat.Matrix4{}, fmt.Errorf("transition matrix is singular")
		}
		return li, nil
	}
	return l, nil
}

// isForwardMode reports whether a mode carries energy (or decays)
// toward +z. Ψ = (Ex, Ey, Hx, Hy): Sz ∝ Re(Ex·conj(Hy) − Ey·conj(Hx)).
func isForwardMode(m halfSpaceMode, scale float64) bool {
	sz := real(m.psi[0]*cmplx.Conj(m.psi[3]) - m.psi[1]*cmplx.Conj(m.psi[2]))
	if math.Abs(sz) > 1e-9*scale {
		return sz > 0
	}
	return imag(m.kz) > 0
}

// purifyDegeneratePair recombines two modes sharing one eigenvalue so
// that one has no Ex and the other no Ey. Non-degenerate pairs are
// left alone; their polarizations are fixed by the medium.
func purifyDegeneratePair(pair []halfSpaceMode, scale float64) {
	if len(pair) != 2 || cmplx.Abs(pair[0].kz-pair[1].kz) > 1e-8*(scale+1) {
		return
	}
	v1, v2 := pair[0].psi, pair[1].psi
	var s, p cmat.Vector4
	for i := 0; i < 4; i++ {
		s[i] = v2[0]*v1[i] - v1[0]*v2[i] // Ex cancels
		p[i] = v2[1]*v1[i] - v1[1]*v2[i] // Ey cancels
	}
	if n := vectorNorm(s); n > 1e-12 {
		for i := range s {
			s[i] /= complex(n, 0)
		}
		pair[0].psi = s
	}
	if n := vectorNorm(p); n > 1e-12 {
		for i := range p {
			p[i] /= complex(n, 0)
		}
		pair[1].psi = p
	}
}

func vectorNorm(v cmat.Vector4) float64 {
	var s float64
	for _, c := range v {
		s += real(c)*real(c) + imag(c)*imag(c)
	}
	return math.Sqrt(s)
}

func sortBySContent(modes []halfSpaceMode) {
	sort.SliceStable(modes, func(i, j int) bool {
		return sContent(modes[i]) > sContent(modes[j])
	})
}

func sContent(m halfSpaceMode) float64 {
	ex, ey := cmplx.Abs(m.psi[0]), cmplx.Abs(m.psi[1])
	return ey*ey - ex*ex
}
