package stats

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/baldhumanity/evo-go/evo"
)

func summary(gen int, best float64) evo.GenerationSummary {
	return evo.GenerationSummary{
		Generation:             gen,
		Mean:                   best / 2,
		MeanStdev:              0.1,
		MeanBest:               best * 0.75,
		Best:                   best,
		Species:                3,
		Reported:               10,
		Organisms:              11,
		NewSpecies:             1,
		ExtinctSpecies:         1,
		GensWithoutImprovement: gen % 2,
		Elapsed:                time.Duration(gen) * time.Millisecond,
	}
}

func backends(t *testing.T) map[string]Store {
	t.Helper()
	return map[string]Store{
		"memory": NewMemoryStore(),
		"sqlite": NewSQLiteStore(filepath.Join(t.TempDir(), "stats.db")),
	}
}

func TestStoreRoundTrip(t *testing.T) {
	for name, store := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			require.NoError(t, store.Init(ctx))
			defer store.Close()

			started := time.Unix(1700000000, 0)
			run := Run{ID: "run-a", Label: "xor", Started: started}
			require.NoError(t, store.SaveRun(ctx, run))
			require.NoError(t, store.SaveRun(ctx, Run{ID: "run-b", Label: "later", Started: started.Add(time.Hour)}))

			got, ok, err := store.GetRun(ctx, "run-a")
			require.NoError(t, err)
			require.True(t, ok)
			assert.Equal(t, "xor", got.Label)
			assert.True(t, started.Equal(got.Started))

			_, ok, err = store.GetRun(ctx, "missing")
			require.NoError(t, err)
			assert.False(t, ok)

			runs, err := store.Runs(ctx)
			require.NoError(t, err)
			require.Len(t, runs, 2)
			assert.Equal(t, "run-a", runs[0].ID)
			assert.Equal(t, "run-b", runs[1].ID)

			_, ok, err = store.Generations(ctx, "run-a")
			require.NoError(t, err)
			assert.False(t, ok)

			require.NoError(t, store.AppendGenerations(ctx, "run-a", []evo.GenerationSummary{summary(2, 4), summary(1, 2)}))
			require.NoError(t, store.AppendGenerations(ctx, "run-a", []evo.GenerationSummary{summary(2, 8)}))

			gens, ok, err := store.Generations(ctx, "run-a")
			require.NoError(t, err)
			require.True(t, ok)
			require.Len(t, gens, 2)
			assert.Equal(t, summary(1, 2), gens[0])
			assert.Equal(t, summary(2, 8), gens[1], "a generation written twice keeps the last summary")

			err = store.AppendGenerations(ctx, "missing", []evo.GenerationSummary{summary(1, 1)})
			assert.Error(t, err)
		})
	}
}

func TestSQLiteStoreRequiresInit(t *testing.T) {
	store := NewSQLiteStore(filepath.Join(t.TempDir(), "stats.db"))
	err := store.SaveRun(context.Background(), Run{ID: "x"})
	assert.ErrorIs(t, err, ErrNotInitialized)
	assert.NoError(t, store.Close())
}

func TestSQLiteStorePersists(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "stats.db")

	store := NewSQLiteStore(path)
	require.NoError(t, store.Init(ctx))
	require.NoError(t, store.SaveRun(ctx, Run{ID: "r", Label: "l", Started: time.Unix(10, 0)}))
	require.NoError(t, store.AppendGenerations(ctx, "r", []evo.GenerationSummary{summary(1, 1)}))
	require.NoError(t, store.Close())

	reopened := NewSQLiteStore(path)
	require.NoError(t, reopened.Init(ctx))
	defer reopened.Close()

	gens, ok, err := reopened.Generations(ctx, "r")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, []evo.GenerationSummary{summary(1, 1)}, gens)
}

func TestNewStore(t *testing.T) {
	s, err := NewStore("", "")
	require.NoError(t, err)
	assert.IsType(t, &MemoryStore{}, s)

	s, err = NewStore("sqlite", filepath.Join(t.TempDir(), "x.db"))
	require.NoError(t, err)
	assert.IsType(t, &SQLiteStore{}, s)

	_, err = NewStore("sqlite", "")
	assert.Error(t, err)

	_, err = NewStore("redis", "")
	assert.Error(t, err)
}

func TestRecorderFlush(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	require.NoError(t, store.Init(ctx))

	rec, err := NewRecorder(store, "test")
	require.NoError(t, err)
	assert.Len(t, rec.Run().ID, 36)

	rec.ObserveGeneration(summary(1, 1))
	rec.ObserveGeneration(summary(2, 2))
	require.NoError(t, rec.Flush(ctx))

	run, ok, err := store.GetRun(ctx, rec.Run().ID)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "test", run.Label)

	rec.ObserveGeneration(summary(3, 3))
	require.NoError(t, rec.Flush(ctx))
	require.NoError(t, rec.Flush(ctx))

	gens, ok, err := store.Generations(ctx, rec.Run().ID)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, rec.History(), gens)
}

func TestRecorderWithoutStore(t *testing.T) {
	rec, err := NewRecorder(nil, "")
	require.NoError(t, err)
	rec.ObserveGeneration(summary(1, 1))
	require.NoError(t, rec.Flush(context.Background()))
	assert.Len(t, rec.History(), 1)
}

func TestRecorderObservesPool(t *testing.T) {
	rec, err := NewRecorder(NewMemoryStore(), "float")
	require.NoError(t, err)

	pool, err := evo.NewPool[float64](evo.DefaultFloatBreeder(), evo.DefaultPoolConfig(10),
		evo.WithRand(evo.NewRand(1)), evo.WithObserver(rec))
	require.NoError(t, err)

	_, err = pool.Run(5, 100, func(x float64) float64 { return x })
	require.NoError(t, err)

	history := rec.History()
	require.Len(t, history, 5)
	assert.Equal(t, 5, history[4].Generation)
}

func TestMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m, err := NewMetrics(reg, "evo")
	require.NoError(t, err)

	m.ObserveGeneration(summary(1, 2))
	m.ObserveGeneration(summary(2, 6))

	assert.Equal(t, 2.0, testutil.ToFloat64(m.generations))
	assert.Equal(t, 6.0, testutil.ToFloat64(m.bestScore))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.speciesCreated))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.species))

	expected := `
# HELP evo_best_score Score of the pool champion.
# TYPE evo_best_score gauge
evo_best_score 6
`
	require.NoError(t, testutil.GatherAndCompare(reg, strings.NewReader(expected), "evo_best_score"))

	_, err = NewMetrics(reg, "evo")
	assert.Error(t, err, "registering the same collectors twice fails")
}

func TestPlotHistory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fitness.png")
	history := []evo.GenerationSummary{summary(1, 1), summary(2, 3), summary(3, 4)}

	require.NoError(t, PlotHistory(history, "fitness", path))
	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Positive(t, info.Size())

	assert.Error(t, PlotHistory(nil, "empty", path))
}
