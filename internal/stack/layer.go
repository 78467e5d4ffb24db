package stack

import (
	"fmt"
	"math"

	"github.com/514687572h/Berreman4x4/internal/cmat"
	"github.com/514687572h/Berreman4x4/internal/optics"
)

// Propagator selects how exp(i·k₀·Δ·h) is evaluated for a
// homogeneous slab or slice.
type Propagator int

const (
	// PropagatorPade evaluates the matrix exponential by scaling and
	// squaring. It is exact to machine precision and the default.
	PropagatorPade Propagator = iota
	// PropagatorLinear keeps the first-order term I + i·k₀·Δ·h only.
	// Cheap, and adequate for very thin slices.
	PropagatorLinear
)

// hsPropagator returns the propagator exp(i·k₀·h·Δ) of a homogeneous
// slab of thickness h. Negative h yields the inverse.
func hsPropagator(delta cmat.Matrix4, h, k0 float64, method Propagator) cmat.Matrix4 {
	a := delta.Scale(complex(0, k0*h))
	if method == PropagatorLinear {
		return cmat.Identity4().Add(a)
	}
	return cmat.Expm(a)
}

// Layer is one slab of a structure. PropagationMatrix returns the
// matrix relating Ψ on the two faces; inv selects the back-to-front
// direction used when assembling a structure.
type Layer interface {
	PropagationMatrix(Kx, k0 float64, inv bool) (cmat.Matrix4, error)
}

// HomogeneousLayer is a slab of uniform material.
type HomogeneousLayer struct {
	Material  optics.Material
	Thickness float64
	Method    Propagator
}

// NewHomogeneousLayer returns a slab of material m with thickness h
// in metres.
func NewHomogeneousLayer(m optics.Material, h float64) *HomogeneousLayer {
	return &HomogeneousLayer{Material: m, Thickness: h}
}

func (l *HomogeneousLayer) PropagationMatrix(Kx, k0 float64, inv bool) (cmat.Matrix4, error) {
	if l.Thickness < 0 {
		return cmat.Matrix4{}, fmt.Errorf("negative layer thickness %g", l.Thickness)
	}
	h := l.Thickness
	if inv {
		h = -h
	}
	delta := DeltaMatrix(Kx, l.Material.Tensor(2*math.Pi/k0))
	return hsPropagator(delta, h, k0, l.Method), nil
}

// InhomogeneousMaterial is a material whose tensor varies continuously
// across a layer of known thickness.
type InhomogeneousMaterial interface {
	// TensorAt returns the permittivity tensor at depth z ∈ [0, D].
	TensorAt(z, lbda float64) optics.Tensor
	// Thickness returns the total thickness D.
	Thickness() float64
	// Slices returns the number of discretization slices to use.
	Slices() int
}

// TwistedMaterial rotates a base material about z by an angle growing
// linearly with depth: φ(z) = Twist·z/Thickness. A positive twist is
// a right-handed helix along +z.
type TwistedMaterial struct {
	Base      optics.Material
	Depth     float64
	Twist     float64
	Divisions int
}

// NewTwistedMaterial returns a twisted slab of material m: thickness
// h, total twist angle in radians, discretized over div slices.
func NewTwistedMaterial(m optics.Material, h, twist float64, div int) *TwistedMaterial {
	return &TwistedMaterial{Base: m, Depth: h, Twist: twist, Divisions: div}
}

func (t *TwistedMaterial) TensorAt(z, lbda float64) optics.Tensor {
	return t.Base.Tensor(lbda).Rotated(optics.RotationZ(t.Twist * z / t.Depth))
}

func (t *TwistedMaterial) Thickness() float64 { return t.Depth }

func (t *TwistedMaterial) Slices() int {
	if t.Divisions < 1 {
		return 1
	}
	return t.Divisions
}

// InhomogeneousLayer integrates a continuously varying material by
// the midpoint rule: each slice propagates with the tensor sampled at
// its centre.
type InhomogeneousLayer struct {
	Profile InhomogeneousMaterial
	Method  Propagator
}

// NewInhomogeneousLayer wraps an inhomogeneous material as a layer.
func NewInhomogeneousLayer(p InhomogeneousMaterial) *InhomogeneousLayer {
	return &InhomogeneousLayer{Profile: p}
}

func (l *InhomogeneousLayer) PropagationMatrix(Kx, k0 float64, inv bool) (cmat.Matrix4, error) {
	total := l.Profile.Thickness()
	if total < 0 {
		return cmat.Matrix4{}, fmt.Errorf("negative layer thickness %g", total)
	}
	n := l.Profile.Slices()
	lbda := 2 * math.Pi / k0
	h := total / float64(n)

	step := h
	if inv {
		step = -h
	}

	// Assemble slices in propagation order; the inverse product runs
	// front slice first, as Ψ_front = P₁⁻¹·…·Pₙ⁻¹·Ψ_back.
	out := cmat.Identity4()
	for i := 0; i < n; i++ {
		zMid := (float64(i) + 0.5) * h
		delta := DeltaMatrix(Kx, l.Profile.TensorAt(zMid, lbda))
		p := hsPropagator(delta, step, k0, l.Method)
		if inv {
			out = out.Mul(p)
		} else {
			out = p.Mul(out)
		}
	}
	return out, nil
}

// RepeatedLayers repeats a sub-stack Count times, raising the period
// matrix to the Count-th power by binary exponentiation.
type RepeatedLayers struct {
	Layers []Layer
	Count  int
}

// NewRepeatedLayers returns the sub-stack layers repeated n times.
func NewRepeatedLayers(layers []Layer, n int) *RepeatedLayers {
	return &RepeatedLayers{Layers: layers, Count: n}
}

func (r *RepeatedLayers) PropagationMatrix(Kx, k0 float64, inv bool) (cmat.Matrix4, error) {
	if r.Count < 0 {
		return cmat.Matrix4{}, fmt.Errorf("negative repetition count %d", r.Count)
	}
	period := cmat.Identity4()
	for _, l := range r.Layers {
		p, err := l.PropagationMatrix(Kx, k0, inv)
		if err != nil {
			return cmat.Matrix4{}, err
		}
		if inv {
			period = period.Mul(p)
		} else {
			period = p.Mul(period)
		}
	}
	return period.Pow(r.Count), nil
}
