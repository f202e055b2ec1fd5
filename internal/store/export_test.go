package store

import (
	"bytes"
	"encoding/csv"
	"testing"
	"time"
)

func TestWriteResultsCSV(t *testing.T) {
	a := createTestRecord()
	b := createTestRecord()
	b.Strategy = "mt19937"
	b.BestScore = 1.5
	b.Duration = 250 * time.Millisecond

	var buf bytes.Buffer
	if err := WriteResultsCSV(&buf, []*RunRecord{a, b}); err != nil {
		t.Fatalf("WriteResultsCSV failed: %v", err)
	}

	rows, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("Output is not valid CSV: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("Expected header + 2 rows, got %d rows", len(rows))
	}
	if rows[0][0] != "id" || rows[0][7] != "best_score" {
		t.Errorf("Unexpected header: %v", rows[0])
	}
	if rows[2][2] != "mt19937" || rows[2][7] != "1.5" || rows[2][10] != "0.25" {
		t.Errorf("Unexpected row: %v", rows[2])
	}
	if rows[1][4] != "3" || rows[1][5] != "45" {
		t.Errorf("Expected run 3 with seed 45, got %v", rows[1])
	}
}

func TestWriteConvergenceCSV(t *testing.T) {
	series := []Convergence{
		{Objective: "sphere", Strategy: "sobol", RunIndex: 0, History: []float64{4, 2, 1}},
		{Objective: "sphere", Strategy: "pcg", RunIndex: 1, History: []float64{3}},
	}

	var buf bytes.Buffer
	if err := WriteConvergenceCSV(&buf, series); err != nil {
		t.Fatalf("WriteConvergenceCSV failed: %v", err)
	}

	rows, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("Output is not valid CSV: %v", err)
	}
	want := [][]string{
		{"objective", "strategy", "run", "generation", "best_score"},
		{"sphere", "sobol", "0", "0", "4"},
		{"sphere", "sobol", "0", "1", "2"},
		{"sphere", "sobol", "0", "2", "1"},
		{"sphere", "pcg", "1", "0", "3"},
	}
	if len(rows) != len(want) {
		t.Fatalf("Expected %d rows, got %d", len(want), len(rows))
	}
	for i := range want {
		for j := range want[i] {
			if rows[i][j] != want[i][j] {
				t.Errorf("Row %d col %d: expected %s, got %s", i, j, want[i][j], rows[i][j])
			}
		}
	}
}
