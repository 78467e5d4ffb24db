// Package optics models optical materials: dispersion laws, isotropic
// and anisotropic permittivity tensors, and tensor rotations. All
// wavelengths are vacuum wavelengths in metres.
package optics

import "math/cmplx"

// DispersionLaw gives the complex refractive index of a medium as a
// function of vacuum wavelength.
type DispersionLaw interface {
	RefractiveIndex(lbda float64) complex128
}

// ConstantIndex is a non-dispersive law with a fixed index.
type ConstantIndex complex128

func (n ConstantIndex) RefractiveIndex(float64) complex128 { return complex128(n) }

// Sellmeier is the Sellmeier dispersion equation
// n² = 1 + Σ Bᵢ λ² / (λ² − Cᵢ), with Cᵢ in m².
type Sellmeier struct {
	B []float64
	C []float64
}

func (s Sellmeier) RefractiveIndex(lbda float64) complex128 {
	l2 := lbda * lbda
	n2 := 1.0
	for i := range s.B {
		n2 += s.B[i] * l2 / (l2 - s.C[i])
	}
	return cmplx.Sqrt(complex(n2, 0))
}

// Cauchy is the Cauchy dispersion equation n = A + B/λ² + C/λ⁴.
type Cauchy struct {
	A, B, C float64
}

func (c Cauchy) RefractiveIndex(lbda float64) complex128 {
	l2 := lbda * lbda
	return complex(c.A+c.B/l2+c.C/(l2*l2), 0)
}
