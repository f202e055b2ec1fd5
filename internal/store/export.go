package store

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
)

// Convergence is one run's best-score history tagged with its experiment cell.
type Convergence struct {
	Objective string
	Strategy  string
	RunIndex  int
	History   []float64
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// WriteResultsCSV writes one row per record.
func WriteResultsCSV(w io.Writer, records []*RunRecord) error {
	writer := csv.NewWriter(w)

	header := []string{
		"id", "objective", "strategy", "algorithm", "run", "seed", "dim",
		"best_score", "generations", "evaluations", "duration_seconds",
	}
	if err := writer.Write(header); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	for _, r := range records {
		row := []string{
			r.ID,
			r.Objective,
			r.Strategy,
			r.Algorithm,
			strconv.Itoa(r.RunIndex),
			strconv.FormatInt(r.Seed, 10),
			strconv.Itoa(r.Dim),
			formatFloat(r.BestScore),
			strconv.Itoa(r.Generations),
			strconv.Itoa(r.Evaluations),
			formatFloat(r.Duration.Seconds()),
		}
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("failed to write CSV row for run %s: %w", r.ID, err)
		}
	}

	writer.Flush()
	return writer.Error()
}

// WriteConvergenceCSV writes the histories in long format: one row per
// (run, generation).
func WriteConvergenceCSV(w io.Writer, series []Convergence) error {
	writer := csv.NewWriter(w)

	if err := writer.Write([]string{"objective", "strategy", "run", "generation", "best_score"}); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	for _, s := range series {
		run := strconv.Itoa(s.RunIndex)
		for gen, score := range s.History {
			row := []string{s.Objective, s.Strategy, run, strconv.Itoa(gen), formatFloat(score)}
			if err := writer.Write(row); err != nil {
				return fmt.Errorf("failed to write CSV row: %w", err)
			}
		}
	}

	writer.Flush()
	return writer.Error()
}
