package optics

// Tensor is a complex relative-permittivity tensor.
type Tensor [3][3]complex128

// Rotated returns R ε Rᵀ.
func (e Tensor) Rotated(r Rotation) Tensor {
	var tmp, out Tensor
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			for k := 0; k < 3; k++ {
				tmp[i][j] += complex(r[i][k], 0) * e[k][j]
			}
		}
	}
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			for k := 0; k < 3; k++ {
				out[i][j] += tmp[i][k] * complex(r[j][k], 0)
			}
		}
	}
	return out
}

// Material produces the permittivity tensor of a medium at a given
// vacuum wavelength.
type Material interface {
	Tensor(lbda float64) Tensor
}

// IsotropicMaterial is an isotropic medium defined by a dispersion
// law. It doubles as the medium type for isotropic half-spaces, which
// need the scalar index as well as the tensor.
type IsotropicMaterial struct {
	Law DispersionLaw
}

// NewIsotropicMaterial returns an isotropic non-dispersive material
// with refractive index n.
func NewIsotropicMaterial(n float64) *IsotropicMaterial {
	return &IsotropicMaterial{Law: ConstantIndex(complex(n, 0))}
}

func (m *IsotropicMaterial) RefractiveIndex(lbda float64) complex128 {
	return m.Law.RefractiveIndex(lbda)
}

func (m *IsotropicMaterial) Tensor(lbda float64) Tensor {
	n := m.Law.RefractiveIndex(lbda)
	e := n * n
	return Tensor{{e, 0, 0}, {0, e, 0}, {0, 0, e}}
}

// UniaxialMaterial is a uniaxial medium with its extraordinary axis
// along z; rotate it to orient the axis elsewhere.
type UniaxialMaterial struct {
	Ordinary      DispersionLaw
	Extraordinary DispersionLaw
}

// NewUniaxialMaterial returns a non-dispersive uniaxial material with
// ordinary index no and extraordinary index ne.
func NewUniaxialMaterial(no, ne float64) *UniaxialMaterial {
	return &UniaxialMaterial{
		Ordinary:      ConstantIndex(complex(no, 0)),
		Extraordinary: ConstantIndex(complex(ne, 0)),
	}
}

func (m *UniaxialMaterial) Tensor(lbda float64) Tensor {
	no := m.Ordinary.RefractiveIndex(lbda)
	ne := m.Extraordinary.RefractiveIndex(lbda)
	return Tensor{{no * no, 0, 0}, {0, no * no, 0}, {0, 0, ne * ne}}
}

// BiaxialMaterial is a biaxial medium with principal indices along
// x, y, z.
type BiaxialMaterial struct {
	X, Y, Z DispersionLaw
}

// NewBiaxialMaterial returns a non-dispersive biaxial material.
func NewBiaxialMaterial(nx, ny, nz float64) *BiaxialMaterial {
	return &BiaxialMaterial{
		X: ConstantIndex(complex(nx, 0)),
		Y: ConstantIndex(complex(ny, 0)),
		Z: ConstantIndex(complex(nz, 0)),
	}
}

func (m *BiaxialMaterial) Tensor(lbda float64) Tensor {
	nx := m.X.RefractiveIndex(lbda)
	ny := m.Y.RefractiveIndex(lbda)
	nz := m.Z.RefractiveIndex(lbda)
	return Tensor{{nx * nx, 0, 0}, {0, ny * ny, 0}, {0, 0, nz * nz}}
}

// RotatedMaterial applies a fixed rotation to another material's
// tensor.
type RotatedMaterial struct {
	Base Material
	R    Rotation
}

// Rotated wraps m so that its tensor is expressed in the laboratory
// frame after the rotation r.
func Rotated(m Material, r Rotation) *RotatedMaterial {
	return &RotatedMaterial{Base: m, R: r}
}

func (m *RotatedMaterial) Tensor(lbda float64) Tensor {
	return m.Base.Tensor(lbda).Rotated(m.R)
}
