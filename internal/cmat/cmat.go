// Package cmat implements the small, fixed-size complex matrix
// arithmetic the transfer-matrix solver is built on. Matrices are
// value types so the per-wavelength hot loop allocates nothing.
package cmat

import "math/cmplx"

// Matrix2 is a 2×2 complex matrix in row-major order.
type Matrix2 [2][2]complex128

// Matrix4 is a 4×4 complex matrix in row-major order.
type Matrix4 [4][4]complex128

// Vector2 is a complex column vector of length 2.
type Vector2 [2]complex128

// Vector4 is a complex column vector of length 4.
type Vector4 [4]complex128

// Identity2 returns the 2×2 identity matrix.
func Identity2() Matrix2 {
	return Matrix2{{1, 0}, {0, 1}}
}

// Identity4 returns the 4×4 identity matrix.
func Identity4() Matrix4 {
	return Matrix4{{1, 0, 0, 0}, {0, 1, 0, 0}, {0, 0, 1, 0}, {0, 0, 0, 1}}
}

// Mul returns the matrix product a·b.
func (a Matrix2) Mul(b Matrix2) Matrix2 {
	var out Matrix2
	for i := 0; i < 2; i++ {
		for j := 0; j < 2; j++ {
			out[i][j] = a[i][0]*b[0][j] + a[i][1]*b[1][j]
		}
	}
	return out
}

// MulVec returns the product a·v.
func (a Matrix2) MulVec(v Vector2) Vector2 {
	return Vector2{
		a[0][0]*v[0] + a[0][1]*v[1],
		a[1][0]*v[0] + a[1][1]*v[1],
	}
}

// Scale returns s·a.
func (a Matrix2) Scale(s complex128) Matrix2 {
	for i := range a {
		for j := range a[i] {
			a[i][j] *= s
		}
	}
	return a
}

// Det returns the determinant of a.
func (a Matrix2) Det() complex128 {
	return a[0][0]*a[1][1] - a[0][1]*a[1][0]
}

// Trace returns the trace of a.
func (a Matrix2) Trace() complex128 {
	return a[0][0] + a[1][1]
}

// Inverse returns a⁻¹ and reports whether a is invertible.
func (a Matrix2) Inverse() (Matrix2, bool) {
	d := a.Det()
	if d == 0 {
		return Matrix2{}, false
	}
	return Matrix2{
		{a[1][1] / d, -a[0][1] / d},
		{-a[1][0] / d, a[0][0] / d},
	}, true
}

// Mul returns the matrix product a·b.
func (a Matrix4) Mul(b Matrix4) Matrix4 {
	var out Matrix4
	for i := 0; i < 4; i++ {
		for j := 0; j < 4; j++ {
			var s complex128
			for k := 0; k < 4; k++ {
				s += a[i][k] * b[k][j]
			}
			out[i][j] = s
		}
	}
	return out
}

// MulVec returns the product a·v.
func (a Matrix4) MulVec(v Vector4) Vector4 {
	var out Vector4
	for i := 0; i < 4; i++ {
		for k := 0; k < 4; k++ {
			out[i] += a[i][k] * v[k]
		}
	}
	return out
}

// Add returns a+b.
func (a Matrix4) Add(b Matrix4) Matrix4 {
	for i := range a {
		for j := range a[i] {
			a[i][j] += b[i][j]
		}
	}
	return a
}

// Scale returns s·a.
func (a Matrix4) Scale(s complex128) Matrix4 {
	for i := range a {
		for j := range a[i] {
			a[i][j] *= s
		}
	}
	return a
}

// Trace returns the trace of a.
func (a Matrix4) Trace() complex128 {
	return a[0][0] + a[1][1] + a[2][2] + a[3][3]
}

// Pow returns aⁿ for n ≥ 0 by binary exponentiation.
func (a Matrix4) Pow(n int) Matrix4 {
	out := Identity4()
	base := a
	for n > 0 {
		if n&1 == 1 {
			out = out.Mul(base)
		}
		base = base.Mul(base)
		n >>= 1
	}
	return out
}

// MaxNorm returns the largest element modulus of a.
func (a Matrix4) MaxNorm() float64 {
	var m float64
	for i := range a {
		for j := range a[i] {
			if v := cmplx.Abs(a[i][j]); v > m {
				m = v
			}
		}
	}
	return m
}

// Inverse returns a⁻¹ by Gauss-Jordan elimination with partial
// pivoting, and reports whether a is invertible.
func (a Matrix4) Inverse() (Matrix4, bool) {
	inv := Identity4()
	for col := 0; col < 4; col++ {
		// Pick the pivot row by largest modulus.
		pivot := col
		best := cmplx.Abs(a[col][col])
		for r := col + 1; r < 4; r++ {
			if v := cmplx.Abs(a[r][col]); v > best {
				best, pivot = v, r
			}
		}
		if best == 0 {
			return Matrix4{}, false
		}
		if pivot != col {
			a[col], a[pivot] = a[pivot], a[col]
			inv[col], inv[pivot] = inv[pivot], inv[col]
		}
		p := a[col][col]
		for j := 0; j < 4; j++ {
			a[col][j] /= p
			inv[col][j] /= p
		}
		for r := 0; r < 4; r++ {
			if r == col || a[r][col] == 0 {
				continue
			}
			f := a[r][col]
			for j := 0; j < 4; j++ {
				a[r][j] -= f * a[col][j]
				inv[r][j] -= f * inv[col][j]
			}
		}
	}
	return inv, true
}
