// Package config holds the JSON sweep configuration. Fields are
// pointers so a partial file overrides only what it names; merge over
// Default for the effective settings.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/514687572h/Berreman4x4/internal/scene"
	"github.com/514687572h/Berreman4x4/internal/stack"
)

// SweepConfig are the tunable sweep parameters.
type SweepConfig struct {
	LambdaMinM   *float64 `json:"lambda_min_m,omitempty"`
	LambdaMaxM   *float64 `json:"lambda_max_m,omitempty"`
	Points       *int     `json:"points,omitempty"`
	IncidenceDeg *float64 `json:"incidence_deg,omitempty"`
	Workers      *int     `json:"workers,omitempty"`

	// Coefficients selects the power coefficient series to report,
	// e.g. ["r_RR", "t_RR"].
	Coefficients []string `json:"coefficients,omitempty"`

	// Solver knobs. Divisions overrides the slice count of
	// inhomogeneous layers; Propagator is "pade" or "linear".
	Divisions  *int    `json:"divisions,omitempty"`
	Propagator *string `json:"propagator,omitempty"`

	// Default output paths, overridable by CLI flags.
	OutputCSV  *string `json:"output_csv,omitempty"`
	OutputPNG  *string `json:"output_png,omitempty"`
	OutputHTML *string `json:"output_html,omitempty"`
}

func ptrFloat64(v float64) *float64 { return &v }
func ptrInt(v int) *int             { return &v }

// Default returns the sweep settings of the cholesteric reference
// example: 0.8–1.2 µm over 100 points at normal incidence.
func Default() *SweepConfig {
	return &SweepConfig{
		LambdaMinM:   ptrFloat64(0.8e-6),
		LambdaMaxM:   ptrFloat64(1.2e-6),
		Points:       ptrInt(100),
		IncidenceDeg: ptrFloat64(0),
		Workers:      ptrInt(0),
		Coefficients: []string{"r_RR", "t_RR", "t_LL", "r_LL"},
	}
}

// Merge overlays non-nil fields of o onto c.
func (c *SweepConfig) Merge(o *SweepConfig) {
	if o == nil {
		return
	}
	if o.LambdaMinM != nil {
		c.LambdaMinM = o.LambdaMinM
	}
	if o.LambdaMaxM != nil {
		c.LambdaMaxM = o.LambdaMaxM
	}
	if o.Points != nil {
		c.Points = o.Points
	}
	if o.IncidenceDeg != nil {
		c.IncidenceDeg = o.IncidenceDeg
	}
	if o.Workers != nil {
		c.Workers = o.Workers
	}
	if len(o.Coefficients) > 0 {
		c.Coefficients = o.Coefficients
	}
	if o.Divisions != nil {
		c.Divisions = o.Divisions
	}
	if o.Propagator != nil {
		c.Propagator = o.Propagator
	}
	if o.OutputCSV != nil {
		c.OutputCSV = o.OutputCSV
	}
	if o.OutputPNG != nil {
		c.OutputPNG = o.OutputPNG
	}
	if o.OutputHTML != nil {
		c.OutputHTML = o.OutputHTML
	}
}

// Validate checks the effective configuration for usable values.
func (c *SweepConfig) Validate() error {
	if c.LambdaMinM == nil || c.LambdaMaxM == nil || c.Points == nil {
		return fmt.Errorf("wavelength range and point count are required")
	}
	if *c.LambdaMinM <= 0 || *c.LambdaMaxM <= *c.LambdaMinM {
		return fmt.Errorf("need 0 < lambda_min_m < lambda_max_m, got [%g, %g]", *c.LambdaMinM, *c.LambdaMaxM)
	}
	if *c.Points < 2 {
		return fmt.Errorf("need at least 2 sweep points, got %d", *c.Points)
	}
	if c.IncidenceDeg != nil && (*c.IncidenceDeg < 0 || *c.IncidenceDeg >= 90) {
		return fmt.Errorf("incidence_deg must be in [0, 90), got %g", *c.IncidenceDeg)
	}
	if c.Divisions != nil && *c.Divisions < 1 {
		return fmt.Errorf("divisions must be >= 1, got %d", *c.Divisions)
	}
	if c.Propagator != nil && *c.Propagator != "pade" && *c.Propagator != "linear" {
		return fmt.Errorf("propagator must be \"pade\" or \"linear\", got %q", *c.Propagator)
	}
	return nil
}

// BuildOptions translates the solver knobs into scene build overrides.
func (c *SweepConfig) BuildOptions() scene.BuildOptions {
	var opts scene.BuildOptions
	if c.Divisions != nil {
		opts.Divisions = *c.Divisions
	}
	if c.Propagator != nil && *c.Propagator == "linear" {
		opts.Propagator = stack.PropagatorLinear
	}
	return opts
}

// Load reads a partial SweepConfig from a JSON file. The file must
// have a .json extension and stay under 1 MB.
func Load(path string) (*SweepConfig, error) {
	clean := filepath.Clean(path)
	if ext := filepath.Ext(clean); ext != ".json" {
		return nil, fmt.Errorf("config file must have .json extension, got %q", ext)
	}
	info, err := os.Stat(clean)
	if err != nil {
		return nil, fmt.Errorf("stat config file: %w", err)
	}
	const maxFileSize = 1 << 20
	if info.Size() > maxFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", info.Size(), maxFileSize)
	}
	data, err := os.ReadFile(clean)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}
	var c SweepConfig
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("parse config file: %w", err)
	}
	return &c, nil
}
