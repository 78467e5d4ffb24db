package cmat

// Expm returns the matrix exponential e^a.
//
// Scaling and squaring: a is halved until its largest element modulus
// is below 1/16, the exponential of the scaled matrix is summed as a
// truncated series (which converges to machine precision at that
// norm), and the result is squared back up.
func Expm(a Matrix4) Matrix4 {
	const (
		normLimit = 1.0 / 16.0
		terms     = 14
	)

	squarings := 0
	for norm := a.MaxNorm(); norm > normLimit; norm /= 2 {
		squarings++
	}
	a = a.Scale(complex(1/float64(uint64(1)<<squarings), 0))

	// Horner evaluation of the truncated series.
	out := Identity4()
	for k := terms; k >= 1; k-- {
		out = a.Mul(out).Scale(complex(1/float64(k), 0)).Add(Identity4())
	}

	for i := 0; i < squarings; i++ {
		out = out.Mul(out)
	}
	return out
}
