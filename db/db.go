package db

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

type DB struct {
	*sql.DB
}

func NewDB(path string) (*DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// Serialize writers; modernc sqlite returns SQLITE_BUSY otherwise.
	db.SetMaxOpenConns(1)
	return &DB{db}, nil
}

// SweepRun is one stored spectrum sweep: the scene it was computed
// from, the incidence, and the wavelength grid.
type SweepRun struct {
	ID         string    `json:"id"`
	Created    time.Time `json:"created"`
	SceneName  string    `json:"scene_name"`
	SceneJSON  string    `json:"scene_json,omitempty"`
	Kx         float64   `json:"kx"`
	LambdaMinM float64   `json:"lambda_min_m"`
	LambdaMaxM float64   `json:"lambda_max_m"`
	Points     int       `json:"points"`
}

// SeriesSet maps a coefficient name such as "r_RR" to its value at
// each wavelength of the grid.
type SeriesSet struct {
	Lambda []float64            `json:"lambda_m"`
	Series map[string][]float64 `json:"series"`
}

// CreateRun stores a new sweep run and returns its generated id.
func (db *DB) CreateRun(run SweepRun) (string, error) {
	id := uuid.NewString()
	_, err := db.Exec(`
		INSERT INTO sweep_runs (id, scene_name, scene_json, kx, lambda_min_m, lambda_max_m, points)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		id, run.SceneName, run.SceneJSON, run.Kx, run.LambdaMinM, run.LambdaMaxM, run.Points)
	if err != nil {
		return "", fmt.Errorf("insert sweep run: %w", err)
	}
	return id, nil
}

// StoreSeries records the computed coefficient series of a run. The
// lambda grid must match run.Points in length.
func (db *DB) StoreSeries(runID string, set SeriesSet) error {
	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT INTO sweep_points (run_id, idx, lambda_m, name, value)
		VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for name, values := range set.Series {
		if len(values) != len(set.Lambda) {
			return fmt.Errorf("series %q has %d values for %d wavelengths", name, len(values), len(set.Lambda))
		}
		for i, v := range values {
			if _, err := stmt.Exec(runID, i, set.Lambda[i], name, v); err != nil {
				return fmt.Errorf("insert sweep point: %w", err)
			}
		}
	}
	return tx.Commit()
}

// Runs lists stored sweep runs, most recent first, without the scene
// body.
func (db *DB) Runs() ([]SweepRun, error) {
	rows, err := db.Query(`
		SELECT id, created, scene_name, kx, lambda_min_m, lambda_max_m, points
		FROM sweep_runs ORDER BY created DESC, id LIMIT 500`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []SweepRun
	for rows.Next() {
		var r SweepRun
		if err := rows.Scan(&r.ID, &r.Created, &r.SceneName, &r.Kx, &r.LambdaMinM, &r.LambdaMaxM, &r.Points); err != nil {
			return nil, err
		}
		runs = append(runs, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return runs, nil
}

// Run fetches a single sweep run including its scene body.
func (db *DB) Run(id string) (*SweepRun, error) {
	var r SweepRun
	err := db.QueryRow(`
		SELECT id, created, scene_name, scene_json, kx, lambda_min_m, lambda_max_m, points
		FROM sweep_runs WHERE id = ?`, id).
		Scan(&r.ID, &r.Created, &r.SceneName, &r.SceneJSON, &r.Kx, &r.LambdaMinM, &r.LambdaMaxM, &r.Points)
	if err != nil {
		return nil, err
	}
	return &r, nil
}

// Series reads back the stored coefficient series of a run, ordered
// by grid index.
func (db *DB) Series(runID string) (*SeriesSet, error) {
	rows, err := db.Query(`
		SELECT idx, lambda_m, name, value
		FROM sweep_points WHERE run_id = ? ORDER BY name, idx`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	set := &SeriesSet{Series: map[string][]float64{}}
	for rows.Next() {
		var (
			idx    int
			lambda float64
			name   string
			value  float64
		)
		if err := rows.Scan(&idx, &lambda, &name, &value); err != nil {
			return nil, err
		}
		if len(set.Lambda) <= idx {
			set.Lambda = append(set.Lambda, lambda)
		}
		set.Series[name] = append(set.Series[name], value)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(set.Series) == 0 {
		return nil, sql.ErrNoRows
	}
	return set, nil
}

func (r *SweepRun) String() string {
	b, _ := json.Marshal(r)
	return string(b)
}
