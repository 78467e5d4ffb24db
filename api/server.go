package api

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/514687572h/Berreman4x4/db"
	"github.com/514687572h/Berreman4x4/internal/chart"
	"github.com/514687572h/Berreman4x4/internal/config"
	"github.com/514687572h/Berreman4x4/internal/monitoring"
	"github.com/514687572h/Berreman4x4/internal/scene"
	"github.com/514687572h/Berreman4x4/internal/spectrum"
	"github.com/514687572h/Berreman4x4/internal/stack"
)

type Server struct {
	db *db.DB

	// SweepTimeout bounds a single sweep computation.
	SweepTimeout time.Duration
}

func NewServer(database *db.DB) *Server {
	return &Server{
		db:           database,
		SweepTimeout: 2 * time.Minute,
	}
}

func (s *Server) homeHandler(w http.ResponseWriter, r *http.Request) {
	w.Write([]byte("Welcome to the Spectrum Server!"))
}

// ServeMux returns the API routes, intended to be mounted under /api.
func (s *Server) ServeMux() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/sweeps", s.sweepsHandler)
	mux.HandleFunc("/sweeps/", s.sweepHandler)
	mux.HandleFunc("/", s.homeHandler)
	return mux
}

// ChartMux returns the chart routes, intended to be mounted under
// /charts.
func (s *Server) ChartMux() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/sweeps/", s.chartHandler)
	return mux
}

// sweepRequest is the body of POST /api/sweeps.
type sweepRequest struct {
	Scene  *scene.Scene        `json:"scene"`
	Config *config.SweepConfig `json:"config,omitempty"`
}

type sweepResponse struct {
	Run    db.SweepRun   `json:"run"`
	Series *db.SeriesSet `json:"series,omitempty"`
}

func (s *Server) sweepsHandler(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.listSweeps(w, r)
	case http.MethodPost:
		s.createSweep(w, r)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func (s *Server) listSweeps(w http.ResponseWriter, r *http.Request) {
	runs, err := s.db.Runs()
	if err != nil {
		http.Error(w, fmt.Sprintf("Failed to list sweeps: %v", err), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, runs)
}

func (s *Server) createSweep(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, 1<<20))
	if err != nil {
		http.Error(w, fmt.Sprintf("Failed to read request: %v", err), http.StatusBadRequest)
		return
	}

	var req sweepRequest
	if err := json.Unmarshal(body, &req); err != nil {
		http.Error(w, fmt.Sprintf("Failed to parse request: %v", err), http.StatusBadRequest)
		return
	}
	if req.Scene == nil {
		http.Error(w, "Request must include a scene", http.StatusBadRequest)
		return
	}

	cfg := config.Default()
	cfg.Merge(req.Config)
	if err := cfg.Validate(); err != nil {
		http.Error(w, fmt.Sprintf("Invalid sweep config: %v", err), http.StatusBadRequest)
		return
	}

	for _, name := range cfg.Coefficients {
		if _, err := stack.ParseCoefficient(name); err != nil {
			http.Error(w, fmt.Sprintf("Invalid coefficient: %v", err), http.StatusBadRequest)
			return
		}
	}

	structure, err := req.Scene.BuildWithOptions(cfg.BuildOptions())
	if err != nil {
		http.Error(w, fmt.Sprintf("Invalid scene: %v", err), http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), s.SweepTimeout)
	defer cancel()

	kx := req.Scene.KxForIncidence(*cfg.IncidenceDeg)
	lbdas := spectrum.Linspace(*cfg.LambdaMinM, *cfg.LambdaMaxM, *cfg.Points)
	points, err := spectrum.Sweep(ctx, structure, kx, lbdas, *cfg.Workers)
	if err != nil {
		http.Error(w, fmt.Sprintf("Sweep failed: %v", err), http.StatusInternalServerError)
		return
	}

	set := db.SeriesSet{Lambda: lbdas, Series: map[string][]float64{}}
	for _, name := range cfg.Coefficients {
		values, err := spectrum.Series(points, name)
		if err != nil {
			http.Error(w, fmt.Sprintf("Failed to extract series: %v", err), http.StatusInternalServerError)
			return
		}
		set.Series[name] = values
	}

	sceneJSON, err := json.Marshal(req.Scene)
	if err != nil {
		http.Error(w, fmt.Sprintf("Failed to encode scene: %v", err), http.StatusInternalServerError)
		return
	}

	run := db.SweepRun{
		SceneName:  req.Scene.Name,
		SceneJSON:  string(sceneJSON),
		Kx:         kx,
		LambdaMinM: *cfg.LambdaMinM,
		LambdaMaxM: *cfg.LambdaMaxM,
		Points:     *cfg.Points,
	}
	id, err := s.db.CreateRun(run)
	if err != nil {
		http.Error(w, fmt.Sprintf("Failed to store sweep: %v", err), http.StatusInternalServerError)
		return
	}
	if err := s.db.StoreSeries(id, set); err != nil {
		http.Error(w, fmt.Sprintf("Failed to store series: %v", err), http.StatusInternalServerError)
		return
	}

	monitoring.Logf("computed sweep %s: scene=%q points=%d kx=%g", id, run.SceneName, run.Points, kx)

	stored, err := s.db.Run(id)
	if err != nil {
		http.Error(w, fmt.Sprintf("Failed to read back sweep: %v", err), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusCreated, sweepResponse{Run: *stored, Series: &set})
}

func (s *Server) sweepHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	id := strings.TrimPrefix(r.URL.Path, "/sweeps/")
	if id == "" || strings.Contains(id, "/") {
		http.NotFound(w, r)
		return
	}

	run, err := s.db.Run(id)
	if errors.Is(err, sql.ErrNoRows) {
		http.NotFound(w, r)
		return
	}
	if err != nil {
		http.Error(w, fmt.Sprintf("Failed to load sweep: %v", err), http.StatusInternalServerError)
		return
	}

	set, err := s.db.Series(id)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		http.Error(w, fmt.Sprintf("Failed to load series: %v", err), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, sweepResponse{Run: *run, Series: set})
}

func (s *Server) chartHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	id := strings.TrimPrefix(r.URL.Path, "/sweeps/")
	if id == "" || strings.Contains(id, "/") {
		http.NotFound(w, r)
		return
	}

	run, err := s.db.Run(id)
	if errors.Is(err, sql.ErrNoRows) {
		http.NotFound(w, r)
		return
	}
	if err != nil {
		http.Error(w, fmt.Sprintf("Failed to load sweep: %v", err), http.StatusInternalServerError)
		return
	}
	set, err := s.db.Series(id)
	if errors.Is(err, sql.ErrNoRows) {
		http.Error(w, "Sweep has no stored series", http.StatusNotFound)
		return
	}
	if err != nil {
		http.Error(w, fmt.Sprintf("Failed to load series: %v", err), http.StatusInternalServerError)
		return
	}

	spec := chart.Spec{
		Title:  fmt.Sprintf("%s (Kx=%g)", run.SceneName, run.Kx),
		XLabel: "Wavelength (m)",
		YLabel: "Power coefficient",
		X:      set.Lambda,
	}
	for _, name := range sortedNames(set.Series) {
		spec.Series = append(spec.Series, chart.Series{Name: name, Values: set.Series[name]})
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := chart.RenderHTML(&spec, w); err != nil {
		monitoring.Logf("failed to render chart for sweep %s: %v", id, err)
	}
}

func sortedNames(series map[string][]float64) []string {
	names := make([]string, 0, len(series))
	for name := range series {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		monitoring.Logf("failed to encode response: %v", err)
	}
}
