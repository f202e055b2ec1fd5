package opt

import (
	"github.com/cwbudde/rngevo/internal/evo"
	"github.com/cwbudde/rngevo/internal/sampling"
)

// EvolutionaryAdapter runs evo.Engine from a sampler-drawn initial population.
type EvolutionaryAdapter struct {
	cfg  evo.Config
	opts []evo.Option
}

// NewEvolutionary creates an evolutionary optimizer. opts are passed to every
// engine it builds.
func NewEvolutionary(cfg evo.Config, opts ...evo.Option) *EvolutionaryAdapter {
	return &EvolutionaryAdapter{cfg: cfg, opts: opts}
}

// Name implements Optimizer.
func (a *EvolutionaryAdapter) Name() string { return Evolutionary }

// Run draws U initial candidates in [-L, L) and runs the engine to completion.
func (a *EvolutionaryAdapter) Run(objective evo.Objective, sampler sampling.Sampler) (*evo.Result, error) {
	initial, err := evo.InitialPopulation(sampler, a.cfg.PopSize, a.cfg.Limit)
	if err != nil {
		return nil, err
	}

	engine, err := evo.New(a.cfg, objective, initial, sampler, a.opts...)
	if err != nil {
		return nil, err
	}
	return engine.Run()
}
