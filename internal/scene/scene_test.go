package scene

import (
	"encoding/json"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/514687572h/Berreman4x4/internal/stack"
)

func TestCholestericSceneBuilds(t *testing.T) {
	t.Parallel()

	s := Cholesteric()
	structure, err := s.Build()
	require.NoError(t, err)
	require.Len(t, structure.Layers, 1)

	// The built structure must reproduce the stop-band physics.
	j, err := structure.Jones(0, 2*math.Pi/(0.65e-6*1.55))
	require.NoError(t, err)
	rRR, err := stack.PowerCoefficient(j, "r_RR")
	require.NoError(t, err)
	assert.Greater(t, rRR, 0.9)
}

func TestBuildWithOptionsOverridesSolverKnobs(t *testing.T) {
	t.Parallel()

	s := Cholesteric()
	structure, err := s.BuildWithOptions(BuildOptions{Divisions: 80})
	require.NoError(t, err)

	// A finer slicing must agree with the default one.
	k0 := 2 * math.Pi / (0.65e-6 * 1.55)
	jFine, err := structure.Jones(0, k0)
	require.NoError(t, err)
	coarse, err := s.Build()
	require.NoError(t, err)
	jCoarse, err := coarse.Jones(0, k0)
	require.NoError(t, err)

	fine, err := stack.PowerCoefficient(jFine, "r_RR")
	require.NoError(t, err)
	def, err := stack.PowerCoefficient(jCoarse, "r_RR")
	require.NoError(t, err)
	assert.InDelta(t, def, fine, 1e-2)
}

func TestSceneRoundTrip(t *testing.T) {
	t.Parallel()

	s := Cholesteric()
	data, err := json.MarshalIndent(s, "", "  ")
	require.NoError(t, err)

	file := filepath.Join(t.TempDir(), "scene.json")
	require.NoError(t, os.WriteFile(file, data, 0o644))

	loaded, err := Load(file)
	require.NoError(t, err)
	if diff := cmp.Diff(s, loaded); diff != "" {
		t.Errorf("scene round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadRejectsNonJSON(t *testing.T) {
	t.Parallel()

	_, err := Load("scene.yaml")
	assert.Error(t, err)
}

func TestKxForIncidence(t *testing.T) {
	t.Parallel()

	s := &Scene{FrontIndex: 1.5, BackIndex: 1.5}
	assert.InDelta(t, 0, s.KxForIncidence(0), 1e-15)
	assert.InDelta(t, 1.5*math.Sin(math.Pi/4), s.KxForIncidence(45), 1e-12)
}

func TestBuildErrors(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name  string
		scene Scene
	}{
		{"missing half-space index", Scene{Layers: []LayerSpec{}}},
		{"unknown material kind", Scene{
			FrontIndex: 1, BackIndex: 1,
			Layers: []LayerSpec{{Type: "homogeneous", ThicknessM: 1e-7, Material: &MaterialSpec{Kind: "metal"}}},
		}},
		{"unknown layer type", Scene{
			FrontIndex: 1, BackIndex: 1,
			Layers: []LayerSpec{{Type: "gradient"}},
		}},
		{"zero thickness", Scene{
			FrontIndex: 1, BackIndex: 1,
			Layers: []LayerSpec{{Type: "homogeneous", Material: &MaterialSpec{Kind: "isotropic", Index: 1.5}}},
		}},
		{"repeat without sublayers", Scene{
			FrontIndex: 1, BackIndex: 1,
			Layers: []LayerSpec{{Type: "repeat", Count: 3}},
		}},
		{"uniaxial missing index", Scene{
			FrontIndex: 1, BackIndex: 1,
			Layers: []LayerSpec{{Type: "twisted", ThicknessM: 1e-7, Material: &MaterialSpec{Kind: "uniaxial", Ordinary: 1.5}}},
		}},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			_, err := tc.scene.Build()
			assert.Error(t, err)
		})
	}
}

func TestSellmeierMaterial(t *testing.T) {
	t.Parallel()

	s := Scene{
		FrontIndex: 1, BackIndex: 1,
		Layers: []LayerSpec{{
			Type:       "homogeneous",
			ThicknessM: 100e-9,
			Material: &MaterialSpec{
				Kind: "isotropic",
				Sellmeier: &SellmeierSpec{
					B: []float64{1.03961212, 0.231792344, 1.01046945},
					C: []float64{6.00069867e-15, 2.00179144e-14, 1.03560653e-10},
				},
			},
		}},
	}
	structure, err := s.Build()
	require.NoError(t, err)

	j, err := structure.Jones(0, 2*math.Pi/587.6e-9)
	require.NoError(t, err)
	r, _ := stack.PowerCoefficient(j, "r_ss")
	tr, _ := stack.PowerCoefficient(j, "t_ss")
	assert.InDelta(t, 1, r+tr, 1e-9)
}
