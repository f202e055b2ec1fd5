// Package evo implements a generational evolutionary optimiser for box-bounded
// minimisation: binary tournament selection, conditional one-point crossover
// and bimodal uniform mutation with a hard clamp to [-Limit, Limit].
//
// Every stochastic decision goes through a sampling.Sampler, so a run is fully
// determined by its configuration, initial population, objective and sampler.
package evo

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/cwbudde/rngevo/internal/sampling"
	"github.com/go-playground/validator/v10"
)

// ErrInvalidConfiguration is returned by New and Config.Validate.
var ErrInvalidConfiguration = errors.New("invalid configuration")

// Candidate is one point of the search space. Operators never modify a
// Candidate in place; they allocate new ones.
type Candidate []float64

// Clone returns an independent copy of c.
func (c Candidate) Clone() Candidate {
	out := make(Candidate, len(c))
	copy(out, c)
	return out
}

// Population is an ordered set of candidates.
type Population []Candidate

// Scored pairs a candidate with its objective value. Lower is better.
type Scored struct {
	Score     float64
	Candidate Candidate
}

// Objective is the function being minimised. It must be a pure function of x.
type Objective func(x []float64) (float64, error)

// Func adapts an infallible objective.
func Func(f func([]float64) float64) Objective {
	return func(x []float64) (float64, error) {
		return f(x), nil
	}
}

// Config holds the engine's numeric hyperparameters.
type Config struct {
	// PopSize is the number of candidates per generation (U).
	PopSize int `json:"popSize" yaml:"pop_size" validate:"gte=1"`

	// SmallScale is the half-width of the default perturbation range.
	SmallScale float64 `json:"smallScale" yaml:"small_scale" validate:"gte=0"`

	// BigScale is the half-width used for big-jump mutations.
	BigScale float64 `json:"bigScale" yaml:"big_scale" validate:"gte=0"`

	// BigJumpProb is the probability of using BigScale for an individual.
	BigJumpProb float64 `json:"bigJumpProb" yaml:"big_jump_prob" validate:"gte=0,lte=1"`

	// CrossoverProb is the probability of attempting crossover for an individual.
	CrossoverProb float64 `json:"crossoverProb" yaml:"crossover_prob" validate:"gte=0,lte=1"`

	// Generations is t_max. The engine runs Generations+1 generations after
	// evaluating the initial population.
	Generations int `json:"generations" yaml:"generations" validate:"gte=0"`

	// Limit is the box bound L; every component stays in [-Limit, Limit].
	Limit float64 `json:"limit" yaml:"limit" validate:"gt=0"`
}

// DefaultConfig returns the baseline settings: 10 individuals, a 50000
// evaluation budget and a box of [-100, 100].
func DefaultConfig() Config {
	return Config{
		PopSize:       10,
		SmallScale:    0.1,
		BigScale:      10,
		BigJumpProb:   0.02,
		CrossoverProb: 0.5,
		Generations:   GenerationsForBudget(50000, 10),
		Limit:         100,
	}
}

// GenerationsForBudget converts an evaluation budget into t_max.
func GenerationsForBudget(evaluations, popSize int) int {
	if popSize <= 0 || evaluations <= 0 {
		return 0
	}
	return evaluations / popSize
}

var validate = validator.New()

// Validate checks the hyperparameters.
func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]string, len(verrs))
			for i, fe := range verrs {
				msgs[i] = fmt.Sprintf("%s must satisfy %s (got %v)", fe.Field(), constraint(fe), fe.Value())
			}
			return fmt.Errorf("%w: %s", ErrInvalidConfiguration, strings.Join(msgs, "; "))
		}
		return fmt.Errorf("%w: %v", ErrInvalidConfiguration, err)
	}
	return nil
}

func constraint(fe validator.FieldError) string {
	if fe.Param() == "" {
		return fe.Tag()
	}
	return fe.Tag() + "=" + fe.Param()
}

// InitialPopulation draws size candidates uniformly in [-limit, limit) with s.
func InitialPopulation(s sampling.Sampler, size int, limit float64) (Population, error) {
	if size <= 0 {
		return nil, fmt.Errorf("%w: population size %d", ErrInvalidConfiguration, size)
	}
	pop := make(Population, size)
	for i := range pop {
		x, err := s.DrawVector(-limit, limit)
		if err != nil {
			return nil, err
		}
		pop[i] = x
	}
	return pop, nil
}

func checkPopulation(pop Population, size, dim int, limit float64) error {
	if len(pop) != size {
		return fmt.Errorf("%w: initial population has %d candidates, want %d", ErrInvalidConfiguration, len(pop), size)
	}
	for i, x := range pop {
		if len(x) != dim {
			return fmt.Errorf("%w: candidate %d has length %d, want %d", ErrInvalidConfiguration, i, len(x), dim)
		}
		for j, v := range x {
			if math.IsNaN(v) || v < -limit || v > limit {
				return fmt.Errorf("%w: candidate %d component %d = %v outside [-%v, %v]", ErrInvalidConfiguration, i, j, v, limit, limit)
			}
		}
	}
	return nil
}
