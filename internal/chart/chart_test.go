package chart

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func demoSpec() *Spec {
	return &Spec{
		Title:  "Right-handed cholesteric, 12.5 pitches",
		XLabel: "Wavelength (m)",
		YLabel: "Power",
		X:      []float64{0.8e-6, 0.9e-6, 1.0e-6, 1.1e-6, 1.2e-6},
		Series: []Series{
			{Name: "R_RR", Values: []float64{0.1, 0.3, 0.95, 0.2, 0.05}},
			{Name: "T_RR", Values: []float64{0.9, 0.7, 0.05, 0.8, 0.95}},
		},
		Band: &Band{XMin: 0.975e-6, XMax: 1.04e-6, YMax: 0.975},
	}
}

func TestSavePNG(t *testing.T) {
	t.Parallel()

	file := filepath.Join(t.TempDir(), "spectrum.png")
	require.NoError(t, SavePNG(demoSpec(), file))

	info, err := os.Stat(file)
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(0))
}

func TestRenderHTML(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	require.NoError(t, RenderHTML(demoSpec(), &buf))

	html := buf.String()
	assert.Contains(t, html, "R_RR")
	assert.Contains(t, html, "T_RR")
	assert.Contains(t, html, "echarts")
}

func TestValidation(t *testing.T) {
	t.Parallel()

	s := demoSpec()
	s.Series[0].Values = s.Series[0].Values[:2]
	assert.Error(t, SavePNG(s, filepath.Join(t.TempDir(), "bad.png")))

	var buf bytes.Buffer
	assert.Error(t, RenderHTML(&Spec{Title: "empty"}, &buf))
}
