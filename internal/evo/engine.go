package evo

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/cwbudde/rngevo/internal/sampling"
)

// GenerationStats is reported to observers after every generation.
type GenerationStats struct {
	Generation     int
	Best           float64 // best score over all generations so far
	GenerationBest float64 // best score of this generation's population
	Evaluations    int     // objective calls so far
}

// Result is the outcome of a run.
type Result struct {
	BestScore   float64
	Best        Candidate
	History     []float64 // best score after each generation, generation 0 first
	Generations int       // generations run after generation 0
	Evaluations int
}

// Option customises an Engine.
type Option func(*Engine)

// WithObserver registers fn to be called synchronously after each generation,
// including generation 0.
func WithObserver(fn func(GenerationStats)) Option {
	return func(e *Engine) {
		if fn != nil {
			e.observers = append(e.observers, fn)
		}
	}
}

// Engine owns the state of one run. It is not safe for concurrent use.
type Engine struct {
	cfg       Config
	objective Objective
	sampler   sampling.Sampler
	mutation  Mutation
	observers []func(GenerationStats)

	initial     Population
	population  []Scored
	best        Scored
	history     []float64
	generation  int
	evaluations int
	started     bool
}

// New validates the configuration and the initial population and returns an
// engine ready for Init. The sampler's dimension is the problem dimension.
func New(cfg Config, objective Objective, initial Population, sampler sampling.Sampler, opts ...Option) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if objective == nil {
		return nil, fmt.Errorf("%w: objective is nil", ErrInvalidConfiguration)
	}
	if sampler == nil {
		return nil, fmt.Errorf("%w: sampler is nil", ErrInvalidConfiguration)
	}
	if sampler.Dim() <= 0 {
		return nil, fmt.Errorf("%w: dimension %d", ErrInvalidConfiguration, sampler.Dim())
	}
	if err := checkPopulation(initial, cfg.PopSize, sampler.Dim(), cfg.Limit); err != nil {
		return nil, err
	}

	pop := make(Population, len(initial))
	for i, x := range initial {
		pop[i] = x.Clone()
	}

	e := &Engine{
		cfg:       cfg,
		objective: objective,
		sampler:   sampler,
		mutation:  NewMutation(cfg),
		initial:   pop,
		history:   make([]float64, 0, cfg.Generations+2),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// Init evaluates the initial population (generation 0) and returns its best
// member.
func (e *Engine) Init() (Scored, error) {
	if e.started {
		return Scored{}, errors.New("evo: engine already initialised")
	}

	scored, err := evaluate(e.objective, e.initial)
	if err != nil {
		return Scored{}, err
	}
	e.evaluations += len(scored)
	e.population = scored
	e.best = bestOf(scored)
	e.history = append(e.history, e.best.Score)
	e.started = true
	e.initial = nil

	e.notify(e.best.Score)
	return e.best, nil
}

// Step runs one generation: selection, crossover, mutation and evaluation.
func (e *Engine) Step() error {
	if !e.started {
		return errors.New("evo: Step called before Init")
	}

	selected, err := tournament(e.sampler, e.population, e.cfg.PopSize)
	if err != nil {
		return fmt.Errorf("selection: %w", err)
	}
	crossed, err := crossover(e.sampler, selected, e.cfg.CrossoverProb)
	if err != nil {
		return fmt.Errorf("crossover: %w", err)
	}
	mutated, err := e.mutation.applyAll(e.sampler, crossed)
	if err != nil {
		return fmt.Errorf("mutation: %w", err)
	}

	scored, err := evaluate(e.objective, mutated)
	if err != nil {
		return err
	}
	e.evaluations += len(scored)
	e.population = scored
	e.generation++

	genBest := bestOf(scored)
	if genBest.Score < e.best.Score {
		e.best = genBest
	}
	e.history = append(e.history, e.best.Score)

	e.notify(genBest.Score)
	return nil
}

// Run evaluates generation 0 and then runs Generations+1 further generations.
// The returned history therefore has Generations+2 entries.
func (e *Engine) Run() (*Result, error) {
	if _, err := e.Init(); err != nil {
		return nil, err
	}
	for t := 0; t <= e.cfg.Generations; t++ {
		if err := e.Step(); err != nil {
			return nil, err
		}
	}

	slog.Debug("Evolution complete",
		"strategy", e.sampler.Strategy(),
		"generations", e.generation,
		"evaluations", e.evaluations,
		"best_score", e.best.Score,
	)
	return e.Result(), nil
}

// Best returns the incumbent: the best candidate seen in any generation.
func (e *Engine) Best() Scored {
	return Scored{Score: e.best.Score, Candidate: e.best.Candidate.Clone()}
}

// Generation returns the number of generations run after generation 0.
func (e *Engine) Generation() int {
	return e.generation
}

// History returns a copy of the best-score history.
func (e *Engine) History() []float64 {
	return append([]float64{}, e.history...)
}

// Result snapshots the current run state.
func (e *Engine) Result() *Result {
	return &Result{
		BestScore:   e.best.Score,
		Best:        e.best.Candidate.Clone(),
		History:     e.History(),
		Generations: e.generation,
		Evaluations: e.evaluations,
	}
}

func (e *Engine) notify(generationBest float64) {
	if len(e.observers) == 0 {
		return
	}
	stats := GenerationStats{
		Generation:     e.generation,
		Best:           e.best.Score,
		GenerationBest: generationBest,
		Evaluations:    e.evaluations,
	}
	for _, fn := range e.observers {
		fn(stats)
	}
}
