package opt

import (
	"fmt"

	"github.com/cwbudde/rngevo/internal/evo"
	"github.com/cwbudde/rngevo/internal/sampling"
)

// Optimizer defines an optimization algorithm interface
type Optimizer interface {
	// Name identifies the algorithm in run records and metrics.
	Name() string

	// Run minimises objective over [-L, L]^D, where D is sampler.Dim().
	// Every random decision is taken from sampler.
	Run(objective evo.Objective, sampler sampling.Sampler) (*evo.Result, error)
}

// Algorithm names accepted by New.
const (
	Evolutionary = "evolutionary"
	Mayfly       = "mayfly"
)

// mayflyMinPop is the smallest population the mayfly library accepts.
const mayflyMinPop = 20

// New builds the named optimizer from the engine configuration. The mayfly
// baseline gets the same evaluation budget as the evolutionary engine.
func New(name string, cfg evo.Config, opts ...evo.Option) (Optimizer, error) {
	switch name {
	case Evolutionary, "":
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
		return NewEvolutionary(cfg, opts...), nil
	case Mayfly:
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
		budget := cfg.PopSize * (cfg.Generations + 2)
		popSize := max(cfg.PopSize, mayflyMinPop)
		m := NewMayfly(max(budget/popSize, 1), popSize, cfg.Limit)
		m.budget = budget
		return m, nil
	default:
		return nil, fmt.Errorf("unknown algorithm %q (available: %s, %s)", name, Evolutionary, Mayfly)
	}
}
