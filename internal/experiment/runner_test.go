package experiment

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/cwbudde/rngevo/internal/metrics"
	"github.com/cwbudde/rngevo/internal/store"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func smallSweep() Config {
	cfg := DefaultConfig()
	cfg.Objectives = []string{"sphere", "rastrigin"}
	cfg.Strategies = []string{"mt19937", "sobol", "lattice"}
	cfg.Runs = 2
	cfg.Dim = 3
	cfg.Budget = 400
	cfg.Workers = 3
	cfg.Engine.Limit = 5
	return cfg
}

func TestSweepIsReproducible(t *testing.T) {
	cfg := smallSweep()

	first, err := NewRunner(cfg, nil, nil).Sweep(context.Background())
	require.NoError(t, err)
	second, err := NewRunner(cfg, nil, nil).Sweep(context.Background())
	require.NoError(t, err)

	require.Len(t, first, 12)
	for i := range first {
		require.Equal(t, first[i].Objective, second[i].Objective)
		require.Equal(t, first[i].Strategy, second[i].Strategy)
		require.Equal(t, first[i].Seed, second[i].Seed)
		require.Equal(t, first[i].BestScore, second[i].BestScore)
		require.Equal(t, first[i].Best, second[i].Best)
	}
}

func TestSweepPersistsAndInstruments(t *testing.T) {
	cfg := smallSweep()
	cfg.Objectives = []string{"sphere"}
	cfg.Strategies = []string{"halton"}

	st, err := store.NewFSStore(t.TempDir())
	require.NoError(t, err)
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)

	records, err := NewRunner(cfg, st, m).Sweep(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 2)

	engine := cfg.EngineConfig()
	for _, rec := range records {
		loaded, err := st.LoadRun(rec.ID)
		require.NoError(t, err)
		require.Equal(t, rec.BestScore, loaded.BestScore)

		history, err := store.ReadHistory(st.BaseDir(), rec.ID)
		require.NoError(t, err)
		require.Len(t, history, engine.Generations+2)
		require.Equal(t, rec.BestScore, history[len(history)-1])
	}

	perRun := engine.PopSize * (engine.Generations + 2)
	require.Equal(t, float64(2*perRun), testutil.ToFloat64(m.EvaluationCounter("sphere", "halton")))
}

func TestSweepMayflyWritesHistory(t *testing.T) {
	cfg := smallSweep()
	cfg.Algorithm = "mayfly"
	cfg.Objectives = []string{"sphere"}
	cfg.Strategies = []string{"pcg"}
	cfg.Runs = 1

	st, err := store.NewFSStore(t.TempDir())
	require.NoError(t, err)
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)

	records, err := NewRunner(cfg, st, m).Sweep(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 1)
	require.Equal(t, "mayfly", records[0].Algorithm)

	history, err := store.ReadHistory(st.BaseDir(), records[0].ID)
	require.NoError(t, err)
	require.NotEmpty(t, history)
	require.Equal(t, float64(records[0].Evaluations), testutil.ToFloat64(m.EvaluationCounter("sphere", "pcg")))
}

func TestFailedRunLeavesNoDirectory(t *testing.T) {
	cfg := smallSweep()
	cfg.Objectives = []string{"sphere"}
	cfg.Strategies = []string{"pcg"}
	cfg.Runs = 1
	// Squares of coordinates this large overflow, so the best score is +Inf
	// and the run cannot be persisted.
	cfg.Engine.Limit = 1e300

	dir := t.TempDir()
	st, err := store.NewFSStore(dir)
	require.NoError(t, err)

	_, err = NewRunner(cfg, st, nil).Sweep(context.Background())
	require.Error(t, err)

	entries, err := os.ReadDir(filepath.Join(dir, "runs"))
	if !os.IsNotExist(err) {
		require.NoError(t, err)
		require.Empty(t, entries)
	}

	infos, err := st.ListRuns()
	require.NoError(t, err)
	require.Empty(t, infos)
}

func TestSweepCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewRunner(smallSweep(), nil, nil).Sweep(ctx)
	require.ErrorIs(t, err, context.Canceled)
}

func TestSweepRejectsInvalidConfig(t *testing.T) {
	cfg := smallSweep()
	cfg.Strategies = []string{"numpy"}

	_, err := NewRunner(cfg, nil, nil).Sweep(context.Background())
	require.Error(t, err)
}
