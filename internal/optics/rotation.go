package optics

import "math"

// Rotation is a real 3×3 rotation matrix.
type Rotation [3][3]float64

// IdentityRotation returns the identity rotation.
func IdentityRotation() Rotation {
	return Rotation{{1, 0, 0}, {0, 1, 0}, {0, 0, 1}}
}

// Mul returns the composed rotation r·s.
func (r Rotation) Mul(s Rotation) Rotation {
	var out Rotation
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			for k := 0; k < 3; k++ {
				out[i][j] += r[i][k] * s[k][j]
			}
		}
	}
	return out
}

// Transpose returns rᵀ, which for a rotation is also r⁻¹.
func (r Rotation) Transpose() Rotation {
	var out Rotation
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			out[i][j] = r[j][i]
		}
	}
	return out
}

// RotationVTheta returns the rotation of angle theta (radians) about
// the axis v, by Rodrigues' formula. v need not be normalized.
func RotationVTheta(v [3]float64, theta float64) Rotation {
	norm := math.Sqrt(v[0]*v[0] + v[1]*v[1] + v[2]*v[2])
	if norm == 0 {
		return IdentityRotation()
	}
	x, y, z := v[0]/norm, v[1]/norm, v[2]/norm
	c, s := math.Cos(theta), math.Sin(theta)
	t := 1 - c
	return Rotation{
		{t*x*x + c, t*x*y - s*z, t*x*z + s*y},
		{t*x*y + s*z, t*y*y + c, t*y*z - s*x},
		{t*x*z - s*y, t*y*z + s*x, t*z*z + c},
	}
}

// RotationZ returns the rotation of angle theta about the z axis.
func RotationZ(theta float64) Rotation {
	return RotationVTheta([3]float64{0, 0, 1}, theta)
}

// RotationEuler returns the rotation for Euler angles (phi, theta,
// psi) in the z-x-z convention.
func RotationEuler(phi, theta, psi float64) Rotation {
	return RotationZ(phi).Mul(RotationVTheta([3]float64{1, 0, 0}, theta)).Mul(RotationZ(psi))
}
