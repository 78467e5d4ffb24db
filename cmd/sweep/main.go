// Command sweep computes a wavelength sweep over a scene described in
// JSON and writes the selected power coefficients as CSV, PNG or HTML.
// The canned "cholesteric" scene is available without a file. With
// -db the run is also persisted to the results database.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/514687572h/Berreman4x4/db"
	"github.com/514687572h/Berreman4x4/internal/chart"
	"github.com/514687572h/Berreman4x4/internal/config"
	"github.com/514687572h/Berreman4x4/internal/scene"
	"github.com/514687572h/Berreman4x4/internal/spectrum"
	"github.com/514687572h/Berreman4x4/internal/units"
)

var (
	scenePath     = flag.String("scene", "cholesteric", "Scene JSON file, or \"cholesteric\" for the built-in example")
	configPath    = flag.String("config", "", "Sweep config JSON file (optional)")
	coefficients  = flag.String("coefficients", "", "Comma-separated coefficient names overriding the config, e.g. r_pp,t_pp")
	csvOut        = flag.String("csv", "", "Output CSV path (empty to skip)")
	pngOut        = flag.String("png", "", "Output PNG path (empty to skip)")
	htmlOut       = flag.String("html", "", "Output HTML chart path (empty to skip)")
	unit          = flag.String("unit", units.M, "Chart wavelength unit: "+units.GetValidUnitsString())
	dbPath        = flag.String("db", "", "Persist the run to this sqlite database (empty to skip)")
	migrationsDir = flag.String("migrations", "migrations", "Path to the schema migrations directory")
)

func main() {
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if !units.IsValid(*unit) {
		log.Fatalf("invalid unit %q, want one of: %s", *unit, units.GetValidUnitsString())
	}

	sc, err := loadScene(*scenePath)
	if err != nil {
		log.Fatalf("load scene: %v", err)
	}

	cfg := config.Default()
	if *configPath != "" {
		part, err := config.Load(*configPath)
		if err != nil {
			log.Fatalf("load config: %v", err)
		}
		cfg.Merge(part)
	}
	if *coefficients != "" {
		cfg.Coefficients = strings.Split(*coefficients, ",")
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid config: %v", err)
	}

	structure, err := sc.BuildWithOptions(cfg.BuildOptions())
	if err != nil {
		log.Fatalf("build scene: %v", err)
	}

	csvPath := pathOr(*csvOut, cfg.OutputCSV)
	pngPath := pathOr(*pngOut, cfg.OutputPNG)
	htmlPath := pathOr(*htmlOut, cfg.OutputHTML)

	kx := sc.KxForIncidence(*cfg.IncidenceDeg)
	lbdas := spectrum.Linspace(*cfg.LambdaMinM, *cfg.LambdaMaxM, *cfg.Points)
	log.Printf("sweeping scene %q: %d points in [%g, %g] m at Kx=%g",
		sc.Name, len(lbdas), *cfg.LambdaMinM, *cfg.LambdaMaxM, kx)

	pts, err := spectrum.Sweep(ctx, structure, kx, lbdas, *cfg.Workers)
	if err != nil {
		log.Fatalf("sweep failed: %v", err)
	}

	series := map[string][]float64{}
	for _, name := range cfg.Coefficients {
		series[name], err = spectrum.Series(pts, name)
		if err != nil {
			log.Fatalf("extract %s: %v", name, err)
		}
	}

	if csvPath != "" {
		f, err := os.Create(csvPath)
		if err != nil {
			log.Fatalf("create %s: %v", csvPath, err)
		}
		if err := spectrum.WriteCSV(f, pts, cfg.Coefficients); err != nil {
			log.Fatalf("write %s: %v", csvPath, err)
		}
		f.Close()
		log.Printf("wrote %s", csvPath)
	}

	if pngPath != "" || htmlPath != "" {
		x := spectrum.Wavelengths(pts)
		for i := range x {
			x[i] = units.FromMeters(x[i], *unit)
		}
		spec := &chart.Spec{
			Title:  fmt.Sprintf("%s (Kx=%g)", sc.Name, kx),
			XLabel: units.Label(*unit),
			YLabel: "Power coefficient",
			X:      x,
		}
		for _, name := range cfg.Coefficients {
			spec.Series = append(spec.Series, chart.Series{Name: name, Values: series[name]})
		}
		if pngPath != "" {
			if err := chart.SavePNG(spec, pngPath); err != nil {
				log.Fatalf("write %s: %v", pngPath, err)
			}
			log.Printf("wrote %s", pngPath)
		}
		if htmlPath != "" {
			f, err := os.Create(htmlPath)
			if err != nil {
				log.Fatalf("create %s: %v", htmlPath, err)
			}
			if err := chart.RenderHTML(spec, f); err != nil {
				log.Fatalf("write %s: %v", htmlPath, err)
			}
			f.Close()
			log.Printf("wrote %s", htmlPath)
		}
	}

	if *dbPath != "" {
		if err := persist(sc, cfg, kx, lbdas, series); err != nil {
			log.Fatalf("persist run: %v", err)
		}
	}
}

// pathOr prefers the CLI flag over the config default.
func pathOr(flagValue string, cfgValue *string) string {
	if flagValue != "" {
		return flagValue
	}
	if cfgValue != nil {
		return *cfgValue
	}
	return ""
}

func loadScene(path string) (*scene.Scene, error) {
	if path == "cholesteric" {
		return scene.Cholesteric(), nil
	}
	return scene.Load(path)
}

func persist(sc *scene.Scene, cfg *config.SweepConfig, kx float64, lbdas []float64, series map[string][]float64) error {
	database, err := db.NewDB(*dbPath)
	if err != nil {
		return err
	}
	defer database.Close()

	if err := database.MigrateUp(*migrationsDir); err != nil {
		return err
	}

	sceneJSON, err := json.Marshal(sc)
	if err != nil {
		return err
	}
	id, err := database.CreateRun(db.SweepRun{
		SceneName:  sc.Name,
		SceneJSON:  string(sceneJSON),
		Kx:         kx,
		LambdaMinM: *cfg.LambdaMinM,
		LambdaMaxM: *cfg.LambdaMaxM,
		Points:     *cfg.Points,
	})
	if err != nil {
		return err
	}
	if err := database.StoreSeries(id, db.SeriesSet{Lambda: lbdas, Series: series}); err != nil {
		return err
	}
	log.Printf("stored run %s in %s", id, *dbPath)
	return nil
}
