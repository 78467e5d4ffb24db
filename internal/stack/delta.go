// Package stack implements the Berreman 4×4 transfer-matrix method
// for layered anisotropic media: half-spaces, homogeneous and
// inhomogeneous layers, and structures yielding reflection and
// transmission Jones matrices.
//
// The field vector is Ψ = (Ex, Ey, Hx, Hy) with H in reduced units
// (Z₀·H), propagating as dΨ/dz = i·k₀·Δ·Ψ. Kx is the reduced
// tangential wavenumber n·sin(Φ); k₀ = 2π/λ the vacuum wavenumber.
package stack

import (
	"github.com/514687572h/Berreman4x4/internal/cmat"
	"github.com/514687572h/Berreman4x4/internal/optics"
)

// DeltaMatrix builds the Berreman Δ matrix for a permittivity tensor
// and reduced tangential wavenumber. The first-order Maxwell system
// eliminates Ez and Hz against εzz.
func DeltaMatrix(Kx float64, eps optics.Tensor) cmat.Matrix4 {
	kx := complex(Kx, 0)
	ezz := eps[2][2]
	return cmat.Matrix4{
		{
			-kx * eps[2][0] / ezz,
			-kx * eps[2][1] / ezz,
			0,
			1 - kx*kx/ezz,
		},
		{0, 0, -1, 0},
		{
			eps[1][2]*eps[2][0]/ezz - eps[1][0],
			kx*kx - eps[1][1] + eps[1][2]*eps[2][1]/ezz,
			0,
			kx * eps[1][2] / ezz,
		},
		{
			eps[0][0] - eps[0][2]*eps[2][0]/ezz,
			eps[0][1] - eps[0][2]*eps[2][1]/ezz,
			0,
			-kx * eps[0][2] / ezz,
		},
	}
}
