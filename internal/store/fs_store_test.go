package store

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/cwbudde/rngevo/internal/evo"
)

// setupTestStore creates a temporary directory and returns an FSStore for testing.
func setupTestStore(t *testing.T) (*FSStore, string) {
	t.Helper()

	tempDir := t.TempDir()
	store, err := NewFSStore(tempDir)
	if err != nil {
		t.Fatalf("Failed to create test store: %v", err)
	}

	return store, tempDir
}

// createTestRecord creates a run record with test data.
func createTestRecord() *RunRecord {
	return &RunRecord{
		ID:          NewRunID(),
		Objective:   "sphere",
		Strategy:    "sobol",
		Algorithm:   "evolutionary",
		RunIndex:    3,
		Seed:        45,
		Dim:         3,
		BestScore:   0.0234,
		Best:        []float64{0.1, -0.05, 0.09},
		Generations: 501,
		Evaluations: 5020,
		Duration:    1500 * time.Millisecond,
		Timestamp:   time.Now(),
		Config:      evo.DefaultConfig(),
	}
}

func TestNewFSStore(t *testing.T) {
	tempDir := filepath.Join(t.TempDir(), "nested", "data")

	store, err := NewFSStore(tempDir)
	if err != nil {
		t.Fatalf("NewFSStore failed: %v", err)
	}
	if store.BaseDir() != tempDir {
		t.Errorf("Expected base dir %s, got %s", tempDir, store.BaseDir())
	}

	if _, err := os.Stat(tempDir); os.IsNotExist(err) {
		t.Fatal("Base directory was not created")
	}
}

func TestSaveRun(t *testing.T) {
	store, tempDir := setupTestStore(t)
	record := createTestRecord()

	if err := store.SaveRun(record); err != nil {
		t.Fatalf("SaveRun failed: %v", err)
	}

	expectedPath := filepath.Join(tempDir, "runs", record.ID, "run.json")
	if _, err := os.Stat(expectedPath); os.IsNotExist(err) {
		t.Fatalf("Run file was not created at %s", expectedPath)
	}

	tempPath := expectedPath + ".tmp"
	if _, err := os.Stat(tempPath); !os.IsNotExist(err) {
		t.Errorf("Temp file should not exist after save: %s", tempPath)
	}
}

func TestSaveRun_Nil(t *testing.T) {
	store, _ := setupTestStore(t)

	if err := store.SaveRun(nil); err == nil {
		t.Fatal("Expected error for nil record")
	}
}

func TestSaveRun_Invalid(t *testing.T) {
	store, tempDir := setupTestStore(t)
	record := createTestRecord()
	record.Best = record.Best[:2]

	err := store.SaveRun(record)
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("Expected ValidationError, got %T: %v", err, err)
	}
	if verr.Field != "Best" {
		t.Errorf("Expected field Best, got %s", verr.Field)
	}

	if _, err := os.Stat(filepath.Join(tempDir, "runs", record.ID)); !os.IsNotExist(err) {
		t.Error("Invalid record must not create a run directory")
	}
}

func TestSaveRun_InfiniteScore(t *testing.T) {
	store, tempDir := setupTestStore(t)
	record := createTestRecord()
	record.BestScore = math.Inf(1)

	err := store.SaveRun(record)
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("Expected ValidationError, got %T: %v", err, err)
	}
	if verr.Field != "BestScore" {
		t.Errorf("Expected field BestScore, got %s", verr.Field)
	}

	if _, err := os.Stat(filepath.Join(tempDir, "runs", record.ID, "run.json")); !os.IsNotExist(err) {
		t.Error("Record with infinite score must not be written")
	}
}

func TestSaveRun_Overwrite(t *testing.T) {
	store, _ := setupTestStore(t)

	record := createTestRecord()
	record.BestScore = 0.5
	if err := store.SaveRun(record); err != nil {
		t.Fatalf("First save failed: %v", err)
	}

	record.BestScore = 0.1
	if err := store.SaveRun(record); err != nil {
		t.Fatalf("Second save failed: %v", err)
	}

	loaded, err := store.LoadRun(record.ID)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if loaded.BestScore != 0.1 {
		t.Errorf("Expected BestScore=0.1, got %f", loaded.BestScore)
	}
}

func TestLoadRun(t *testing.T) {
	store, _ := setupTestStore(t)
	original := createTestRecord()

	if err := store.SaveRun(original); err != nil {
		t.Fatalf("SaveRun failed: %v", err)
	}

	loaded, err := store.LoadRun(original.ID)
	if err != nil {
		t.Fatalf("LoadRun failed: %v", err)
	}

	if loaded.ID != original.ID {
		t.Errorf("ID mismatch: expected %s, got %s", original.ID, loaded.ID)
	}
	if loaded.BestScore != original.BestScore {
		t.Errorf("BestScore mismatch: expected %f, got %f", original.BestScore, loaded.BestScore)
	}
	if loaded.Seed != original.Seed {
		t.Errorf("Seed mismatch: expected %d, got %d", original.Seed, loaded.Seed)
	}
	if len(loaded.Best) != len(original.Best) {
		t.Errorf("Best length mismatch: expected %d, got %d", len(original.Best), len(loaded.Best))
	}
	if loaded.Duration != original.Duration {
		t.Errorf("Duration mismatch: expected %v, got %v", original.Duration, loaded.Duration)
	}
	if loaded.Config != original.Config {
		t.Errorf("Config mismatch: expected %+v, got %+v", original.Config, loaded.Config)
	}
}

func TestLoadRun_NotFound(t *testing.T) {
	store, _ := setupTestStore(t)

	_, err := store.LoadRun("nonexistent-run")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected NotFoundError, got %T: %v", err, err)
	}
}

func TestLoadRun_EmptyID(t *testing.T) {
	store, _ := setupTestStore(t)

	if _, err := store.LoadRun(""); err == nil {
		t.Fatal("Expected error for empty run ID")
	}
}

func TestListRuns_Empty(t *testing.T) {
	store, _ := setupTestStore(t)

	infos, err := store.ListRuns()
	if err != nil {
		t.Fatalf("ListRuns failed: %v", err)
	}
	if len(infos) != 0 {
		t.Errorf("Expected empty list, got %d runs", len(infos))
	}
}

func TestListRuns_OrderedByTimestamp(t *testing.T) {
	store, _ := setupTestStore(t)

	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	var ids []string
	for i, offset := range []time.Duration{2 * time.Hour, 0, time.Hour} {
		record := createTestRecord()
		record.RunIndex = i
		record.Timestamp = base.Add(offset)
		if err := store.SaveRun(record); err != nil {
			t.Fatalf("Failed to save run %d: %v", i, err)
		}
		ids = append(ids, record.ID)
	}

	infos, err := store.ListRuns()
	if err != nil {
		t.Fatalf("ListRuns failed: %v", err)
	}
	if len(infos) != 3 {
		t.Fatalf("Expected 3 runs, got %d", len(infos))
	}

	want := []string{ids[1], ids[2], ids[0]}
	for i, info := range infos {
		if info.ID != want[i] {
			t.Errorf("Position %d: expected %s, got %s", i, want[i], info.ID)
		}
	}

	records, err := store.LoadAll()
	if err != nil {
		t.Fatalf("LoadAll failed: %v", err)
	}
	for i, r := range records {
		if r.ID != want[i] {
			t.Errorf("LoadAll position %d: expected %s, got %s", i, want[i], r.ID)
		}
	}
}

func TestListRuns_SkipsInvalidDirectories(t *testing.T) {
	store, tempDir := setupTestStore(t)

	record := createTestRecord()
	if err := store.SaveRun(record); err != nil {
		t.Fatalf("Failed to save valid run: %v", err)
	}

	// Directory without run.json
	if err := os.MkdirAll(filepath.Join(tempDir, "runs", "invalid-run"), 0755); err != nil {
		t.Fatalf("Failed to create invalid run directory: %v", err)
	}

	// Corrupted run.json
	corruptDir := filepath.Join(tempDir, "runs", "corrupt-run")
	if err := os.MkdirAll(corruptDir, 0755); err != nil {
		t.Fatalf("Failed to create corrupt run directory: %v", err)
	}
	if err := os.WriteFile(filepath.Join(corruptDir, "run.json"), []byte("{not json"), 0644); err != nil {
		t.Fatalf("Failed to write corrupt run file: %v", err)
	}

	// Non-directory file in runs directory
	if err := os.WriteFile(filepath.Join(tempDir, "runs", "dummy.txt"), []byte("test"), 0644); err != nil {
		t.Fatalf("Failed to create dummy file: %v", err)
	}

	infos, err := store.ListRuns()
	if err != nil {
		t.Fatalf("ListRuns failed: %v", err)
	}
	if len(infos) != 1 {
		t.Fatalf("Expected 1 run, got %d", len(infos))
	}
	if infos[0].ID != record.ID {
		t.Errorf("Expected ID %s, got %s", record.ID, infos[0].ID)
	}
}

func TestDeleteRun(t *testing.T) {
	store, _ := setupTestStore(t)
	record := createTestRecord()

	if err := store.SaveRun(record); err != nil {
		t.Fatalf("SaveRun failed: %v", err)
	}
	tw, err := NewTraceWriter(store.BaseDir(), record.ID)
	if err != nil {
		t.Fatalf("NewTraceWriter failed: %v", err)
	}
	if err := tw.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	if err := store.DeleteRun(record.ID); err != nil {
		t.Fatalf("DeleteRun failed: %v", err)
	}

	if _, err := store.LoadRun(record.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected NotFoundError, got %T: %v", err, err)
	}
	if _, err := os.Stat(store.RunDir(record.ID)); !os.IsNotExist(err) {
		t.Error("Run directory should be removed together with its trace")
	}
}

func TestDeleteRun_NotFound(t *testing.T) {
	store, _ := setupTestStore(t)

	err := store.DeleteRun("nonexistent-run")
	var notFound *NotFoundError
	if !errors.As(err, &notFound) {
		t.Fatalf("Expected NotFoundError, got %T: %v", err, err)
	}
	if notFound.ID != "nonexistent-run" {
		t.Errorf("Expected ID in error, got %q", notFound.ID)
	}
}

func TestDeleteRun_EmptyID(t *testing.T) {
	store, _ := setupTestStore(t)

	if err := store.DeleteRun(""); err == nil {
		t.Fatal("Expected error for empty run ID")
	}
}

func TestConcurrentSave(t *testing.T) {
	store, _ := setupTestStore(t)

	const numRuns = 10
	var wg sync.WaitGroup
	for i := 0; i < numRuns; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			record := createTestRecord()
			record.RunIndex = idx
			if err := store.SaveRun(record); err != nil {
				t.Errorf("Concurrent save failed for run %d: %v", idx, err)
			}
		}(i)
	}
	wg.Wait()

	infos, err := store.ListRuns()
	if err != nil {
		t.Fatalf("ListRuns failed: %v", err)
	}
	if len(infos) != numRuns {
		t.Errorf("Expected %d runs, got %d", numRuns, len(infos))
	}
}

func TestStoreInterface(t *testing.T) {
	var _ Store = (*FSStore)(nil)
}
