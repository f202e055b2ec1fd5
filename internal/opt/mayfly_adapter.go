package opt

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/cwbudde/mayfly"
	"github.com/cwbudde/rngevo/internal/evo"
	"github.com/cwbudde/rngevo/internal/sampling"
)

// MayflyAdapter wraps the external Mayfly library to conform to our Optimizer interface
type MayflyAdapter struct {
	maxIters int
	popSize  int
	limit    float64
	budget   int // 0 means unlimited
}

// NewMayfly creates a new Mayfly optimizer adapter
func NewMayfly(maxIters, popSize int, limit float64) *MayflyAdapter {
	return &MayflyAdapter{
		maxIters: maxIters,
		popSize:  popSize,
		limit:    limit,
	}
}

// Name implements Optimizer.
func (m *MayflyAdapter) Name() string { return Mayfly }

// Run executes the Mayfly optimization using the external library. The
// library's random source is driven by sampler, so the sampling strategy
// applies to the baseline as well.
func (m *MayflyAdapter) Run(objective evo.Objective, sampler sampling.Sampler) (*evo.Result, error) {
	if objective == nil || sampler == nil {
		return nil, fmt.Errorf("%w: objective and sampler are required", evo.ErrInvalidConfiguration)
	}
	if m.popSize < mayflyMinPop {
		return nil, fmt.Errorf("%w: mayfly needs at least %d mayflies, got %d", evo.ErrInvalidConfiguration, mayflyMinPop, m.popSize)
	}

	tr := &tracker{objective: objective, period: m.popSize, budget: m.budget, best: math.Inf(1)}

	config := mayfly.NewDefaultConfig()
	config.ObjectiveFunc = tr.eval
	config.ProblemSize = sampler.Dim()
	config.MaxIterations = m.maxIters
	config.NPop = m.popSize
	config.LowerBound = -m.limit
	config.UpperBound = m.limit
	config.Rand = rand.New(sampling.NewSource(sampler))

	if _, err := mayfly.Optimize(config); err != nil {
		return nil, fmt.Errorf("mayfly: %w", err)
	}
	if tr.err != nil {
		return nil, tr.err
	}
	if tr.position == nil {
		return nil, fmt.Errorf("mayfly: objective was never evaluated")
	}

	history := tr.history
	if tr.calls%tr.period != 0 {
		history = append(history, tr.best)
	}
	return &evo.Result{
		BestScore:   tr.best,
		Best:        tr.position,
		History:     history,
		Generations: len(history) - 1,
		Evaluations: tr.calls,
	}, nil
}

// tracker wraps the objective to record the best-so-far score once per period
// evaluations, enforce the budget and hold on to the first error.
type tracker struct {
	objective evo.Objective
	period    int
	budget    int

	calls    int
	best     float64
	position evo.Candidate
	history  []float64
	err      error
}

func (t *tracker) eval(x []float64) float64 {
	if t.err != nil || (t.budget > 0 && t.calls >= t.budget) {
		return math.Inf(1)
	}

	score, err := t.objective(x)
	if err != nil {
		t.err = err
		return math.Inf(1)
	}
	t.calls++
	if score < t.best || t.position == nil {
		t.best = score
		t.position = evo.Candidate(x).Clone()
	}
	if t.calls%t.period == 0 {
		t.history = append(t.history, t.best)
	}
	return score
}
