package store

import (
	"fmt"
	"math"
	"time"

	"github.com/cwbudde/rngevo/internal/evo"
	"github.com/google/uuid"
)

// RunRecord is the persisted outcome of one optimisation run.
//
// A record identifies the experiment cell it belongs to by (Objective,
// Strategy, RunIndex). Runs that share a RunIndex share a Seed, so records of
// different strategies can be compared pairwise.
type RunRecord struct {
	// ID is the unique identifier for this run
	ID string `json:"id"`

	// Objective is the benchmark function name
	Objective string `json:"objective"`

	// Strategy is the sampling strategy name
	Strategy string `json:"strategy"`

	// Algorithm is the optimizer name (evolutionary, mayfly)
	Algorithm string `json:"algorithm"`

	RunIndex int   `json:"runIndex"`
	Seed     int64 `json:"seed"`
	Dim      int   `json:"dim"`

	// BestScore is the lowest objective value found
	BestScore float64 `json:"bestScore"`

	// Best is the candidate that produced BestScore
	Best []float64 `json:"best"`

	Generations int           `json:"generations"`
	Evaluations int           `json:"evaluations"`
	Duration    time.Duration `json:"duration"`

	// Timestamp records when the run finished
	Timestamp time.Time `json:"timestamp"`

	// Config holds the engine hyperparameters the run used.
	Config evo.Config `json:"config"`
}

// RunInfo contains metadata about a run without the best candidate.
// Used for listing runs efficiently.
type RunInfo struct {
	ID          string        `json:"id"`
	Objective   string        `json:"objective"`
	Strategy    string        `json:"strategy"`
	Algorithm   string        `json:"algorithm"`
	RunIndex    int           `json:"runIndex"`
	Seed        int64         `json:"seed"`
	BestScore   float64       `json:"bestScore"`
	Evaluations int           `json:"evaluations"`
	Duration    time.Duration `json:"duration"`
	Timestamp   time.Time     `json:"timestamp"`
}

// NewRunID returns a fresh random run identifier.
func NewRunID() string {
	return uuid.NewString()
}

// NewRunRecord creates a record from an optimizer result.
func NewRunRecord(objective, strategy, algorithm string, runIndex int, seed int64, cfg evo.Config, res *evo.Result, duration time.Duration) *RunRecord {
	return &RunRecord{
		ID:          NewRunID(),
		Objective:   objective,
		Strategy:    strategy,
		Algorithm:   algorithm,
		RunIndex:    runIndex,
		Seed:        seed,
		Dim:         len(res.Best),
		BestScore:   res.BestScore,
		Best:        res.Best,
		Generations: res.Generations,
		Evaluations: res.Evaluations,
		Duration:    duration,
		Timestamp:   time.Now(),
		Config:      cfg,
	}
}

// ToInfo converts a full RunRecord to RunInfo (metadata only).
func (r *RunRecord) ToInfo() RunInfo {
	return RunInfo{
		ID:          r.ID,
		Objective:   r.Objective,
		Strategy:    r.Strategy,
		Algorithm:   r.Algorithm,
		RunIndex:    r.RunIndex,
		Seed:        r.Seed,
		BestScore:   r.BestScore,
		Evaluations: r.Evaluations,
		Duration:    r.Duration,
		Timestamp:   r.Timestamp,
	}
}

// Validate checks if the record has valid data.
// Returns an error if any required field is missing or invalid.
func (r *RunRecord) Validate() error {
	if r.ID == "" {
		return &ValidationError{Field: "ID", Reason: "cannot be empty"}
	}
	if _, err := uuid.Parse(r.ID); err != nil {
		return &ValidationError{Field: "ID", Reason: "must be a UUID"}
	}
	if r.Objective == "" {
		return &ValidationError{Field: "Objective", Reason: "cannot be empty"}
	}
	if r.Strategy == "" {
		return &ValidationError{Field: "Strategy", Reason: "cannot be empty"}
	}
	if r.Algorithm == "" {
		return &ValidationError{Field: "Algorithm", Reason: "cannot be empty"}
	}
	if r.RunIndex < 0 {
		return &ValidationError{Field: "RunIndex", Reason: "cannot be negative"}
	}
	if r.Dim <= 0 {
		return &ValidationError{Field: "Dim", Reason: "must be positive"}
	}
	if len(r.Best) != r.Dim {
		return &ValidationError{
			Field:  "Best",
			Reason: fmt.Sprintf("length mismatch: expected %d components, got %d", r.Dim, len(r.Best)),
		}
	}
	if math.IsNaN(r.BestScore) {
		return &ValidationError{Field: "BestScore", Reason: "cannot be NaN"}
	}
	if math.IsInf(r.BestScore, 0) {
		return &ValidationError{Field: "BestScore", Reason: "must be finite"}
	}
	if r.Generations < 0 {
		return &ValidationError{Field: "Generations", Reason: "cannot be negative"}
	}
	if r.Evaluations <= 0 {
		return &ValidationError{Field: "Evaluations", Reason: "must be positive"}
	}
	if r.Timestamp.IsZero() {
		return &ValidationError{Field: "Timestamp", Reason: "cannot be zero"}
	}
	if err := r.Config.Validate(); err != nil {
		return &ValidationError{Field: "Config", Reason: err.Error()}
	}
	return nil
}

// ValidationError represents a run record validation error.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return "validation error: " + e.Field + " " + e.Reason
}
