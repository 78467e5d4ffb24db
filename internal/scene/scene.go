// Package scene defines the JSON description of an optical stack used
// by the API and the sweep CLI, and builds solver structures from it.
package scene

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"

	"github.com/514687572h/Berreman4x4/internal/optics"
	"github.com/514687572h/Berreman4x4/internal/stack"
)

// RotationSpec orients a material: angle about an axis.
type RotationSpec struct {
	Axis     [3]float64 `json:"axis"`
	AngleDeg float64    `json:"angle_deg"`
}

// SellmeierSpec carries Sellmeier coefficients, C in m².
type SellmeierSpec struct {
	B []float64 `json:"b"`
	C []float64 `json:"c"`
}

// MaterialSpec describes one material.
//
// Kinds: "isotropic" (index or sellmeier), "uniaxial" (ordinary,
// extraordinary), "biaxial" (nx, ny, nz). An optional rotation
// orients the principal axes in the laboratory frame.
type MaterialSpec struct {
	Kind          string         `json:"kind"`
	Index         float64        `json:"index,omitempty"`
	Sellmeier     *SellmeierSpec `json:"sellmeier,omitempty"`
	Ordinary      float64        `json:"ordinary,omitempty"`
	Extraordinary float64        `json:"extraordinary,omitempty"`
	NX            float64        `json:"nx,omitempty"`
	NY            float64        `json:"ny,omitempty"`
	NZ            float64        `json:"nz,omitempty"`
	Rotation      *RotationSpec  `json:"rotation,omitempty"`
}

// LayerSpec describes one layer.
//
// Types: "homogeneous" (material, thickness_m), "twisted" (material,
// thickness_m, twist_deg, divisions), "repeat" (count, layers).
type LayerSpec struct {
	Type       string        `json:"type"`
	Material   *MaterialSpec `json:"material,omitempty"`
	ThicknessM float64       `json:"thickness_m,omitempty"`
	TwistDeg   float64       `json:"twist_deg,omitempty"`
	Divisions  int           `json:"divisions,omitempty"`
	Count      int           `json:"count,omitempty"`
	Layers     []LayerSpec   `json:"layers,omitempty"`
}

// Scene is a full stack: isotropic entry and exit half-spaces around
// a list of layers.
type Scene struct {
	Name       string      `json:"name,omitempty"`
	FrontIndex float64     `json:"front_index"`
	BackIndex  float64     `json:"back_index"`
	Layers     []LayerSpec `json:"layers"`
}

func (m *MaterialSpec) build() (optics.Material, error) {
	var base optics.Material
	switch m.Kind {
	case "isotropic":
		switch {
		case m.Sellmeier != nil:
			if len(m.Sellmeier.B) == 0 || len(m.Sellmeier.B) != len(m.Sellmeier.C) {
				return nil, fmt.Errorf("sellmeier needs matching b and c coefficient lists")
			}
			base = &optics.IsotropicMaterial{Law: optics.Sellmeier{B: m.Sellmeier.B, C: m.Sellmeier.C}}
		case m.Index > 0:
			base = optics.NewIsotropicMaterial(m.Index)
		default:
			return nil, fmt.Errorf("isotropic material needs index or sellmeier")
		}
	case "uniaxial":
		if m.Ordinary <= 0 || m.Extraordinary <= 0 {
			return nil, fmt.Errorf("uniaxial material needs ordinary and extraordinary indices")
		}
		base = optics.NewUniaxialMaterial(m.Ordinary, m.Extraordinary)
	case "biaxial":
		if m.NX <= 0 || m.NY <= 0 || m.NZ <= 0 {
			return nil, fmt.Errorf("biaxial material needs nx, ny and nz")
		}
		base = optics.NewBiaxialMaterial(m.NX, m.NY, m.NZ)
	default:
		return nil, fmt.Errorf("unknown material kind %q", m.Kind)
	}

	if m.Rotation != nil {
		r := optics.RotationVTheta(m.Rotation.Axis, m.Rotation.AngleDeg*math.Pi/180)
		base = optics.Rotated(base, r)
	}
	return base, nil
}

// BuildOptions override solver knobs for every layer in a scene. The
// zero value keeps each layer's own settings.
type BuildOptions struct {
	// Divisions overrides the slice count of inhomogeneous layers
	// when positive.
	Divisions int
	// Propagator selects the slab propagator for all layers.
	Propagator stack.Propagator
}

func (l *LayerSpec) build(opts BuildOptions) (stack.Layer, error) {
	switch l.Type {
	case "homogeneous":
		if l.Material == nil {
			return nil, fmt.Errorf("homogeneous layer needs a material")
		}
		if l.ThicknessM <= 0 {
			return nil, fmt.Errorf("homogeneous layer needs thickness_m > 0")
		}
		m, err := l.Material.build()
		if err != nil {
			return nil, err
		}
		hl := stack.NewHomogeneousLayer(m, l.ThicknessM)
		hl.Method = opts.Propagator
		return hl, nil
	case "twisted":
		if l.Material == nil {
			return nil, fmt.Errorf("twisted layer needs a material")
		}
		if l.ThicknessM <= 0 {
			return nil, fmt.Errorf("twisted layer needs thickness_m > 0")
		}
		m, err := l.Material.build()
		if err != nil {
			return nil, err
		}
		div := l.Divisions
		if opts.Divisions > 0 {
			div = opts.Divisions
		}
		if div <= 0 {
			div = 40
		}
		tm := stack.NewTwistedMaterial(m, l.ThicknessM, l.TwistDeg*math.Pi/180, div)
		il := stack.NewInhomogeneousLayer(tm)
		il.Method = opts.Propagator
		return il, nil
	case "repeat":
		if l.Count < 1 {
			return nil, fmt.Errorf("repeat layer needs count >= 1")
		}
		if len(l.Layers) == 0 {
			return nil, fmt.Errorf("repeat layer needs sub-layers")
		}
		var subs []stack.Layer
		for i := range l.Layers {
			sub, err := l.Layers[i].build(opts)
			if err != nil {
				return nil, fmt.Errorf("sub-layer %d: %w", i, err)
			}
			subs = append(subs, sub)
		}
		return stack.NewRepeatedLayers(subs, l.Count), nil
	default:
		return nil, fmt.Errorf("unknown layer type %q", l.Type)
	}
}

// Build assembles the solver structure described by the scene with
// default solver settings.
func (s *Scene) Build() (*stack.Structure, error) {
	return s.BuildWithOptions(BuildOptions{})
}

// BuildWithOptions assembles the structure, applying the given solver
// overrides to every layer.
func (s *Scene) BuildWithOptions(opts BuildOptions) (*stack.Structure, error) {
	if s.FrontIndex <= 0 || s.BackIndex <= 0 {
		return nil, fmt.Errorf("scene needs front_index and back_index > 0")
	}
	var layers []stack.Layer
	for i := range s.Layers {
		l, err := s.Layers[i].build(opts)
		if err != nil {
			return nil, fmt.Errorf("layer %d: %w", i, err)
		}
		layers = append(layers, l)
	}
	return stack.NewStructure(
		stack.NewIsotropicHalfSpace(optics.NewIsotropicMaterial(s.FrontIndex)),
		layers,
		stack.NewIsotropicHalfSpace(optics.NewIsotropicMaterial(s.BackIndex)),
	), nil
}

// KxForIncidence converts an incidence angle in the entry medium,
// in degrees, to the reduced tangential wavenumber Kx.
func (s *Scene) KxForIncidence(deg float64) float64 {
	return s.FrontIndex * math.Sin(deg*math.Pi/180)
}

// Load reads a scene from a JSON file.
func Load(path string) (*Scene, error) {
	clean := filepath.Clean(path)
	if ext := filepath.Ext(clean); ext != ".json" {
		return nil, fmt.Errorf("scene file must have .json extension, got %q", ext)
	}
	data, err := os.ReadFile(clean)
	if err != nil {
		return nil, fmt.Errorf("read scene: %w", err)
	}
	var s Scene
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parse scene: %w", err)
	}
	return &s, nil
}

// Cholesteric returns the canned right-handed cholesteric scene used
// by the examples: glass half-spaces, 25 half-pitch repetitions of a
// 0.65 µm pitch liquid-crystal helix.
func Cholesteric() *Scene {
	return &Scene{
		Name:       "cholesteric",
		FrontIndex: 1.55,
		BackIndex:  1.55,
		Layers: []LayerSpec{{
			Type:  "repeat",
			Count: 25,
			Layers: []LayerSpec{{
				Type: "twisted",
				Material: &MaterialSpec{
					Kind:          "uniaxial",
					Ordinary:      1.5,
					Extraordinary: 1.6,
					Rotation:      &RotationSpec{Axis: [3]float64{0, 1, 0}, AngleDeg: 90},
				},
				ThicknessM: 0.65e-6 / 2,
				TwistDeg:   180,
				Divisions:  40,
			}},
		}},
	}
}
