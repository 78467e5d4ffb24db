// Command cholesteric reproduces the reference right-handed
// cholesteric liquid crystal example: 25 half-pitch repetitions of a
// twisted uniaxial slab between glass half-spaces, swept over the
// near infrared. Right circular light is reflected inside the stop
// band while left circular light passes through.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"math"
	"math/cmplx"
	"os"

	"github.com/514687572h/Berreman4x4/internal/chart"
	"github.com/514687572h/Berreman4x4/internal/optics"
	"github.com/514687572h/Berreman4x4/internal/spectrum"
	"github.com/514687572h/Berreman4x4/internal/stack"
	"github.com/514687572h/Berreman4x4/internal/units"
)

var (
	points  = flag.Int("points", 100, "Number of wavelength grid points")
	workers = flag.Int("workers", 0, "Sweep worker count (0 = GOMAXPROCS)")
	pngOut  = flag.String("png", "cholesteric.png", "Output PNG path (empty to skip)")
	htmlOut = flag.String("html", "", "Output HTML chart path (empty to skip)")
	csvOut  = flag.String("csv", "", "Output CSV path (empty to skip)")
	unit    = flag.String("unit", units.UM, "Chart wavelength unit: "+units.GetValidUnitsString())
)

func main() {
	flag.Parse()

	if !units.IsValid(*unit) {
		log.Fatalf("invalid unit %q, want one of: %s", *unit, units.GetValidUnitsString())
	}

	const (
		nGlass  = 1.55
		no, ne  = 1.5, 1.6
		pitch   = 0.65e-6
		repeats = 25
	)

	glass := optics.NewIsotropicMaterial(nGlass)

	// Uniaxial slab with the optic axis rotated from z to x, twisted
	// through half a turn per half pitch. Repeating the half-pitch
	// cell keeps the helix continuous.
	lc := optics.Rotated(
		optics.NewUniaxialMaterial(no, ne),
		optics.RotationVTheta([3]float64{0, 1, 0}, math.Pi/2),
	)
	cell := stack.NewInhomogeneousLayer(stack.NewTwistedMaterial(lc, pitch/2, math.Pi, 40))
	s := stack.NewStructure(
		stack.NewIsotropicHalfSpace(glass),
		[]stack.Layer{stack.NewRepeatedLayers([]stack.Layer{cell}, repeats)},
		stack.NewIsotropicHalfSpace(glass),
	)

	nMed := (no + ne) / 2
	dn := ne - no
	h := float64(repeats) * pitch / 2
	rTh := math.Pow(math.Tanh(dn/nMed*math.Pi*h/pitch), 2)
	bandLo, bandHi := pitch*no, pitch*ne
	lambdaB := pitch * nMed

	fmt.Printf("Cholesteric helix: pitch %.3g m, %d half-pitch cells, thickness %.3g m\n", pitch, repeats, h)
	fmt.Printf("Stop band: [%.4g, %.4g] m, Bragg wavelength %.4g m\n", bandLo, bandHi, lambdaB)
	fmt.Printf("Analytic peak reflectance tanh²(Δn/n·πh/p) = %.4f\n", rTh)

	lbdas := spectrum.Linspace(0.8e-6, 1.2e-6, *points)
	pts, err := spectrum.Sweep(context.Background(), s, 0, lbdas, *workers)
	if err != nil {
		log.Fatalf("sweep failed: %v", err)
	}

	printEigenDiagnostics(pts, lambdaB)

	names := []string{"r_RR", "t_RR", "t_LL", "r_LL"}
	linear := []string{"r_pp", "t_pp", "r_sp", "t_sp"}
	series := make(map[string][]float64, len(names)+len(linear))
	for _, name := range append(append([]string{}, names...), linear...) {
		series[name], err = spectrum.Series(pts, name)
		if err != nil {
			log.Fatalf("extract %s: %v", name, err)
		}
	}

	rNP, tNP := spectrum.Unpolarized(pts)
	mid := spectrum.ArgClosest(pts, lambdaB)
	fmt.Printf("\nAt λ = %.4g m:\n", pts[mid].Lambda)
	fmt.Printf("  linear:      R_pp %.4f  T_pp %.4f  R_sp %.4f  T_sp %.4f\n",
		series["r_pp"][mid], series["t_pp"][mid], series["r_sp"][mid], series["t_sp"][mid])
	fmt.Printf("  circular:    R_RR %.4f  T_RR %.4f  R_LL %.4f  T_LL %.4f\n",
		series["r_RR"][mid], series["t_RR"][mid], series["r_LL"][mid], series["t_LL"][mid])
	fmt.Printf("  unpolarized: R_np %.4f  T_np %.4f\n", rNP[mid], tNP[mid])

	x := spectrum.Wavelengths(pts)
	for i := range x {
		x[i] = units.FromMeters(x[i], *unit)
	}
	spec := &chart.Spec{
		Title:  fmt.Sprintf("Right-handed Cholesteric Liquid Crystal, %.1f helix pitches", float64(repeats)/2),
		XLabel: units.Label(*unit),
		YLabel: "Power coefficient",
		X:      x,
		Band: &chart.Band{
			XMin: units.FromMeters(bandLo, *unit),
			XMax: units.FromMeters(bandHi, *unit),
			YMax: rTh,
		},
	}
	for _, name := range names {
		spec.Series = append(spec.Series, chart.Series{Name: name, Values: series[name]})
	}

	if *pngOut != "" {
		if err := chart.SavePNG(spec, *pngOut); err != nil {
			log.Fatalf("write %s: %v", *pngOut, err)
		}
		fmt.Printf("Wrote %s\n", *pngOut)
	}
	if *htmlOut != "" {
		f, err := os.Create(*htmlOut)
		if err != nil {
			log.Fatalf("create %s: %v", *htmlOut, err)
		}
		if err := chart.RenderHTML(spec, f); err != nil {
			log.Fatalf("write %s: %v", *htmlOut, err)
		}
		f.Close()
		fmt.Printf("Wrote %s\n", *htmlOut)
	}
	if *csvOut != "" {
		f, err := os.Create(*csvOut)
		if err != nil {
			log.Fatalf("create %s: %v", *csvOut, err)
		}
		if err := spectrum.WriteCSV(f, pts, append(append([]string{}, names...), linear...)); err != nil {
			log.Fatalf("write %s: %v", *csvOut, err)
		}
		f.Close()
		fmt.Printf("Wrote %s\n", *csvOut)
	}
}

// printEigenDiagnostics decomposes the transmission Jones matrix in
// the middle of the stop band. One eigenvalue should be near unit
// modulus (the passing circular polarization) and one near zero (the
// reflected one), with near-circular eigenvectors.
func printEigenDiagnostics(pts []spectrum.Point, lambdaB float64) {
	p := pts[spectrum.ArgClosest(pts, lambdaB)]
	vals, vecs := p.Jones.T.Eigen()

	fmt.Printf("\nTransmission eigenmodes at λ = %.4g m:\n", p.Lambda)
	for i := 0; i < 2; i++ {
		mod := cmplx.Abs(vals[i])
		fmt.Printf("  eigenvalue %v, power transmission %.4f\n", vals[i], mod*mod)

		v := vecs[i]
		if cmplx.Abs(v[0]) < 1e-12 {
			fmt.Printf("  eigenvector is pure s polarized\n")
			continue
		}
		// Normalize to the p component; the s/p ratio of a circular
		// state has unit modulus and a ±90° phase.
		ratio := v[1] / v[0]
		fmt.Printf("  eigenvector (p, s) = (1, %v)\n", ratio)
		fmt.Printf("  |s/p| = %.4f, phase(s/p) = %+.1f°\n",
			cmplx.Abs(ratio), cmplx.Phase(ratio)*180/math.Pi)
	}
}
