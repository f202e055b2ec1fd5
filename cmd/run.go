package main

import (
	"fmt"
	"log/slog"

	"github.com/cwbudde/rngevo/internal/evo"
	"github.com/cwbudde/rngevo/internal/experiment"
	"github.com/cwbudde/rngevo/internal/metrics"
	"github.com/cwbudde/rngevo/internal/opt"
	"github.com/cwbudde/rngevo/internal/sampling"
	"github.com/cwbudde/rngevo/internal/store"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
)

var (
	objective     string
	strategy      string
	algorithm     string
	dim           int
	popSize       int
	budget        int
	seed          int64
	limit         float64
	crossoverProb float64
	smallScale    float64
	bigScale      float64
	bigJumpProb   float64
	runDataDir    string
	metricsFile   string
	progressEvery int
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a single optimization",
	Long: `Runs one optimization of a benchmark objective with the chosen sampling
strategy and prints the best score. With --data-dir the run record and its
convergence trace are saved.`,
	RunE: runOptimization,
}

func init() {
	defaults := evo.DefaultConfig()

	runCmd.Flags().StringVar(&objective, "objective", "sphere", "Benchmark objective (see 'strategies')")
	runCmd.Flags().StringVar(&strategy, "strategy", string(sampling.MT19937), "Sampling strategy")
	runCmd.Flags().StringVar(&algorithm, "algorithm", opt.Evolutionary, "Optimizer: evolutionary, mayfly")
	runCmd.Flags().IntVar(&dim, "dim", 10, "Problem dimension")
	runCmd.Flags().IntVar(&popSize, "pop", defaults.PopSize, "Population size")
	runCmd.Flags().IntVar(&budget, "budget", 50000, "Objective evaluation budget")
	runCmd.Flags().Int64Var(&seed, "seed", 0, "Sampler seed")
	runCmd.Flags().Float64Var(&limit, "limit", defaults.Limit, "Box bound L: search space is [-L, L]^D")
	runCmd.Flags().Float64Var(&crossoverProb, "pc", defaults.CrossoverProb, "Crossover probability")
	runCmd.Flags().Float64Var(&smallScale, "small", defaults.SmallScale, "Small mutation scale")
	runCmd.Flags().Float64Var(&bigScale, "big", defaults.BigScale, "Big-jump mutation scale")
	runCmd.Flags().Float64Var(&bigJumpProb, "p-big", defaults.BigJumpProb, "Big-jump probability")
	runCmd.Flags().StringVar(&runDataDir, "data-dir", "", "Save the run under this directory (empty = don't save)")
	runCmd.Flags().StringVar(&metricsFile, "metrics-file", "", "Write Prometheus metrics to this textfile")
	runCmd.Flags().IntVar(&progressEvery, "progress-every", 0, "Log progress every N generations (0 = off)")

	rootCmd.AddCommand(runCmd)
}

// singleRunConfig builds a one-run sweep from the command-line flags.
func singleRunConfig() experiment.Config {
	cfg := experiment.DefaultConfig()
	cfg.Objectives = []string{objective}
	cfg.Strategies = []string{strategy}
	cfg.Algorithm = algorithm
	cfg.Runs = 1
	cfg.BaseSeed = seed
	cfg.Dim = dim
	cfg.Budget = budget
	cfg.Workers = 1
	cfg.DataDir = runDataDir
	cfg.MetricsFile = metricsFile
	cfg.Engine = evo.Config{
		PopSize:       popSize,
		SmallScale:    smallScale,
		BigScale:      bigScale,
		BigJumpProb:   bigJumpProb,
		CrossoverProb: crossoverProb,
		Limit:         limit,
	}
	return cfg
}

func runOptimization(cmd *cobra.Command, args []string) error {
	cfg := singleRunConfig()
	if err := cfg.Validate(); err != nil {
		return err
	}

	slog.Info("Starting optimization",
		"objective", objective,
		"strategy", strategy,
		"algorithm", algorithm,
		"dim", dim,
		"budget", budget,
		"seed", seed,
	)

	var st *store.FSStore
	if cfg.DataDir != "" {
		var err error
		st, err = store.NewFSStore(cfg.DataDir)
		if err != nil {
			return fmt.Errorf("failed to create run store: %w", err)
		}
	}

	reg := prometheus.NewRegistry()
	runner := experiment.NewRunner(cfg, st, metrics.New(reg))
	runner.LogProgress(progressEvery)

	rec, err := runner.Run(cfg.Jobs()[0])
	if err != nil {
		return err
	}

	if cfg.MetricsFile != "" {
		if err := metrics.WriteTextfile(reg, cfg.MetricsFile); err != nil {
			return err
		}
	}

	fmt.Printf("%s/%s seed %d: best %.6g after %d evaluations (%s)\n",
		rec.Objective, rec.Strategy, rec.Seed, rec.BestScore, rec.Evaluations, rec.Duration)
	if st != nil {
		fmt.Printf("Saved run %s\n", rec.ID)
	}
	return nil
}
