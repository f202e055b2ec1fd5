// Package experiment runs sweeps of independent optimisation runs over
// objectives and sampling strategies and summarises their outcomes.
package experiment

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/cwbudde/rngevo/internal/bench"
	"github.com/cwbudde/rngevo/internal/evo"
	"github.com/cwbudde/rngevo/internal/opt"
	"github.com/cwbudde/rngevo/internal/sampling"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Config describes a sweep: every objective is run with every strategy,
// Runs times each.
type Config struct {
	Objectives []string `yaml:"objectives" validate:"min=1,dive,required"`
	Strategies []string `yaml:"strategies" validate:"min=1,dive,required"`
	Algorithm  string   `yaml:"algorithm" validate:"oneof=evolutionary mayfly"`

	Runs     int   `yaml:"runs" validate:"gte=1"`
	BaseSeed int64 `yaml:"base_seed"`
	Dim      int   `yaml:"dim" validate:"gte=1"`

	// Budget is the number of objective evaluations per run. When positive
	// it overrides Engine.Generations.
	Budget int `yaml:"budget" validate:"gte=0"`

	Workers     int    `yaml:"workers" validate:"gte=1"`
	DataDir     string `yaml:"data_dir"`
	MetricsFile string `yaml:"metrics_file"`

	Engine evo.Config `yaml:"engine"`
}

// DefaultConfig is the baseline sweep: 5 runs in dimension 10 with
// 50000 evaluations each.
func DefaultConfig() Config {
	return Config{
		Objectives: []string{"sphere", "rastrigin"},
		Strategies: []string{
			string(sampling.MT19937), string(sampling.PCG),
			string(sampling.Sobol), string(sampling.Halton),
		},
		Algorithm: opt.Evolutionary,
		Runs:      5,
		BaseSeed:  0,
		Dim:       10,
		Budget:    50000,
		Workers:   4,
		DataDir:   "./data",
		Engine:    evo.DefaultConfig(),
	}
}

// Load starts from the defaults and overlays the YAML file at path, if any.
// A missing file leaves the defaults in place.
func Load(path string) (Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil && !os.IsNotExist(err) {
			return cfg, fmt.Errorf("load config file: %w", err)
		}
		if err == nil {
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return cfg, fmt.Errorf("parse config file %s: %w", path, err)
			}
		}
	}

	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

var validate = validator.New()

// Validate checks field constraints, resolves every objective and strategy
// name and validates the effective engine configuration.
func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]string, len(verrs))
			for i, fe := range verrs {
				msgs[i] = fmt.Sprintf("%s failed %s", fe.Namespace(), fe.Tag())
			}
			return errors.New(strings.Join(msgs, "; "))
		}
		return err
	}

	for _, name := range c.Objectives {
		if _, err := bench.Lookup(name); err != nil {
			return err
		}
	}
	for _, name := range c.Strategies {
		if _, err := sampling.ParseStrategy(name); err != nil {
			return err
		}
	}
	return c.EngineConfig().Validate()
}

// EngineConfig returns Engine with Generations derived from Budget.
func (c Config) EngineConfig() evo.Config {
	cfg := c.Engine
	if c.Budget > 0 {
		cfg.Generations = evo.GenerationsForBudget(c.Budget, cfg.PopSize)
	}
	return cfg
}

// Job identifies one run of a sweep.
type Job struct {
	Objective string
	Strategy  string
	RunIndex  int
	Seed      int64
}

// Jobs expands the sweep. Run i uses seed BaseSeed+i for every objective and
// strategy, so strategies are compared on paired seeds.
func (c Config) Jobs() []Job {
	jobs := make([]Job, 0, len(c.Objectives)*len(c.Strategies)*c.Runs)
	for _, objective := range c.Objectives {
		for _, strategy := range c.Strategies {
			for i := 0; i < c.Runs; i++ {
				jobs = append(jobs, Job{
					Objective: objective,
					Strategy:  strategy,
					RunIndex:  i,
					Seed:      c.BaseSeed + int64(i),
				})
			}
		}
	}
	return jobs
}
