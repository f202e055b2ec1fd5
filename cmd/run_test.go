package main

import (
	"path/filepath"
	"testing"

	"github.com/cwbudde/rngevo/internal/store"
)

func TestSingleRunConfig(t *testing.T) {
	objective, strategy, algorithm = "rastrigin", "sobol", "evolutionary"
	dim, popSize, budget, seed = 4, 8, 400, 7
	limit, crossoverProb, smallScale, bigScale, bigJumpProb = 5.12, 0.5, 0.1, 10, 0.02

	cfg := singleRunConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Expected valid config, got %v", err)
	}

	jobs := cfg.Jobs()
	if len(jobs) != 1 {
		t.Fatalf("Expected 1 job, got %d", len(jobs))
	}
	if jobs[0].Seed != 7 || jobs[0].Objective != "rastrigin" || jobs[0].Strategy != "sobol" {
		t.Errorf("Unexpected job: %+v", jobs[0])
	}

	engine := cfg.EngineConfig()
	if engine.Generations != 50 {
		t.Errorf("Expected 50 generations for budget 400 and population 8, got %d", engine.Generations)
	}
}

func TestRunOptimization_SavesRun(t *testing.T) {
	dir := t.TempDir()

	objective, strategy, algorithm = "sphere", "pcg", "evolutionary"
	dim, popSize, budget, seed = 2, 6, 120, 1
	limit, crossoverProb, smallScale, bigScale, bigJumpProb = 10, 0.5, 0.1, 10, 0.02
	runDataDir = dir
	metricsFile = filepath.Join(dir, "run.prom")
	defer func() {
		runDataDir = ""
		metricsFile = ""
	}()

	if err := runOptimization(nil, nil); err != nil {
		t.Fatalf("runOptimization failed: %v", err)
	}

	runStore, err := store.NewFSStore(dir)
	if err != nil {
		t.Fatalf("Failed to open store: %v", err)
	}
	infos, err := runStore.ListRuns()
	if err != nil {
		t.Fatalf("ListRuns failed: %v", err)
	}
	if len(infos) != 1 {
		t.Fatalf("Expected 1 saved run, got %d", len(infos))
	}

	history, err := store.ReadHistory(dir, infos[0].ID)
	if err != nil {
		t.Fatalf("ReadHistory failed: %v", err)
	}
	// 120 evaluations / 6 = 20 generations, plus generation 0 and the final step
	if len(history) != 22 {
		t.Errorf("Expected 22 trace entries, got %d", len(history))
	}
}

func TestRunOptimization_InvalidStrategy(t *testing.T) {
	objective, strategy, algorithm = "sphere", "dice", "evolutionary"
	dim, popSize, budget = 2, 6, 120
	limit = 10
	defer func() { strategy = "mt19937" }()

	if err := runOptimization(nil, nil); err == nil {
		t.Error("Expected error for unknown strategy")
	}
}
