package db

import (
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := NewDB(filepath.Join(t.TempDir(), "spectra.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, db.MigrateUp("../migrations"))
	return db
}

func TestMigrateUpIsIdempotent(t *testing.T) {
	db := openTestDB(t)
	require.NoError(t, db.MigrateUp("../migrations"))

	version, dirty, err := db.MigrateVersion("../migrations")
	require.NoError(t, err)
	assert.False(t, dirty)
	assert.Equal(t, uint(1), version)
}

func TestCreateAndFetchRun(t *testing.T) {
	db := openTestDB(t)

	id, err := db.CreateRun(SweepRun{
		SceneName:  "cholesteric",
		SceneJSON:  `{"name":"cholesteric"}`,
		Kx:         0,
		LambdaMinM: 0.8e-6,
		LambdaMaxM: 1.2e-6,
		Points:     100,
	})
	require.NoError(t, err)
	require.NotEmpty(t, id)

	run, err := db.Run(id)
	require.NoError(t, err)
	assert.Equal(t, "cholesteric", run.SceneName)
	assert.Equal(t, 100, run.Points)
	assert.Equal(t, `{"name":"cholesteric"}`, run.SceneJSON)
	assert.False(t, run.Created.IsZero())

	runs, err := db.Runs()
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, id, runs[0].ID)
	assert.Empty(t, runs[0].SceneJSON)
}

func TestRunNotFound(t *testing.T) {
	db := openTestDB(t)
	_, err := db.Run("no-such-id")
	assert.ErrorIs(t, err, sql.ErrNoRows)
}

func TestStoreAndReadSeries(t *testing.T) {
	db := openTestDB(t)

	id, err := db.CreateRun(SweepRun{
		SceneName:  "slab",
		LambdaMinM: 0.8e-6,
		LambdaMaxM: 1.0e-6,
		Points:     3,
	})
	require.NoError(t, err)

	want := SeriesSet{
		Lambda: []float64{0.8e-6, 0.9e-6, 1.0e-6},
		Series: map[string][]float64{
			"r_RR": {0.9, 0.95, 0.2},
			"t_RR": {0.1, 0.05, 0.8},
		},
	}
	require.NoError(t, db.StoreSeries(id, want))

	got, err := db.Series(id)
	require.NoError(t, err)
	assert.Equal(t, want.Lambda, got.Lambda)
	assert.Equal(t, want.Series, got.Series)
}

func TestStoreSeriesRejectsLengthMismatch(t *testing.T) {
	db := openTestDB(t)

	id, err := db.CreateRun(SweepRun{SceneName: "slab", LambdaMinM: 1, LambdaMaxM: 2, Points: 2})
	require.NoError(t, err)

	err = db.StoreSeries(id, SeriesSet{
		Lambda: []float64{1, 2},
		Series: map[string][]float64{"r_pp": {0.5}},
	})
	assert.Error(t, err)

	// The rejected transaction must not leave partial rows behind.
	_, err = db.Series(id)
	assert.ErrorIs(t, err, sql.ErrNoRows)
}
