package experiment

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/cwbudde/rngevo/internal/bench"
	"github.com/cwbudde/rngevo/internal/evo"
	"github.com/cwbudde/rngevo/internal/metrics"
	"github.com/cwbudde/rngevo/internal/opt"
	"github.com/cwbudde/rngevo/internal/sampling"
	"github.com/cwbudde/rngevo/internal/store"
	"golang.org/x/sync/errgroup"
)

// Runner executes sweeps. The store and metrics are optional.
type Runner struct {
	cfg     Config
	store   *store.FSStore
	metrics *metrics.RunMetrics

	progressEvery int
}

// NewRunner creates a runner. Pass nil for st to skip persistence and nil
// for m to skip instrumentation.
func NewRunner(cfg Config, st *store.FSStore, m *metrics.RunMetrics) *Runner {
	return &Runner{cfg: cfg, store: st, metrics: m}
}

// LogProgress makes every run log its best score each n generations.
// n <= 0 disables progress logging.
func (r *Runner) LogProgress(n int) {
	r.progressEvery = n
}

// Sweep runs every job of the configuration with at most Workers runs in
// flight. Each run owns its sampler. The first failing run cancels the
// remaining ones; records are returned in job order.
func (r *Runner) Sweep(ctx context.Context) ([]*store.RunRecord, error) {
	if err := r.cfg.Validate(); err != nil {
		return nil, err
	}

	jobs := r.cfg.Jobs()
	records := make([]*store.RunRecord, len(jobs))

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(r.cfg.Workers)

	slog.Info("Starting sweep",
		"runs", len(jobs),
		"workers", r.cfg.Workers,
		"algorithm", r.cfg.Algorithm,
	)
	start := time.Now()

	for i, job := range jobs {
		if gCtx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gCtx.Err(); err != nil {
				return err
			}
			rec, err := r.Run(job)
			if err != nil {
				return fmt.Errorf("%s/%s run %d: %w", job.Objective, job.Strategy, job.RunIndex, err)
			}
			records[i] = rec
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	slog.Info("Sweep complete", "runs", len(jobs), "elapsed", time.Since(start))
	return records, nil
}

// Run executes one job synchronously and persists it when a store is set.
func (r *Runner) Run(job Job) (*store.RunRecord, error) {
	fn, err := bench.Lookup(job.Objective)
	if err != nil {
		return nil, err
	}
	strategy, err := sampling.ParseStrategy(job.Strategy)
	if err != nil {
		return nil, err
	}
	sampler, err := sampling.New(strategy, r.cfg.Dim, job.Seed)
	if err != nil {
		return nil, err
	}

	engineCfg := r.cfg.EngineConfig()
	id := store.NewRunID()

	var observers []evo.Option
	observed := false
	observers = append(observers, evo.WithObserver(func(evo.GenerationStats) { observed = true }))

	var trace *store.TraceWriter
	saved := false
	if r.store != nil {
		trace, err = store.NewTraceWriter(r.store.BaseDir(), id)
		if err != nil {
			return nil, err
		}
		// A failed run leaves no partial directory behind.
		defer func() {
			trace.Close()
			if !saved {
				r.discard(id)
			}
		}()
		observers = append(observers, evo.WithObserver(trace.Observer()))
	}
	if r.metrics != nil {
		observers = append(observers, evo.WithObserver(r.metrics.Observer(job.Objective, job.Strategy)))
	}
	if every := r.progressEvery; every > 0 {
		observers = append(observers, evo.WithObserver(func(gs evo.GenerationStats) {
			if gs.Generation%every == 0 {
				slog.Info("Progress",
					"run_id", id,
					"generation", gs.Generation,
					"best_score", gs.Best,
					"evaluations", gs.Evaluations,
				)
			}
		}))
	}

	optimizer, err := opt.New(r.cfg.Algorithm, engineCfg, observers...)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	res, runErr := optimizer.Run(evo.Func(fn.Eval), sampler)
	elapsed := time.Since(start)

	if r.metrics != nil {
		// Optimizers without generation callbacks are counted here instead.
		evaluations := 0
		if runErr == nil && !observed {
			evaluations = res.Evaluations
		}
		r.metrics.RecordRun(job.Objective, job.Strategy, elapsed, evaluations, runErr)
	}
	if runErr != nil {
		return nil, runErr
	}

	rec := store.NewRunRecord(job.Objective, job.Strategy, optimizer.Name(), job.RunIndex, job.Seed, engineCfg, res, elapsed)
	rec.ID = id

	if r.store != nil {
		if !observed {
			if err := trace.WriteHistory(res.History); err != nil {
				return nil, err
			}
		}
		if err := trace.Close(); err != nil {
			return nil, err
		}
		if err := r.store.SaveRun(rec); err != nil {
			return nil, err
		}
		saved = true
	}

	slog.Info("Run complete",
		"run_id", rec.ID,
		"objective", job.Objective,
		"strategy", job.Strategy,
		"run", job.RunIndex,
		"seed", job.Seed,
		"best_score", rec.BestScore,
		"evaluations", rec.Evaluations,
		"elapsed", elapsed,
	)
	return rec, nil
}

func (r *Runner) discard(id string) {
	if err := os.RemoveAll(r.store.RunDir(id)); err != nil {
		slog.Warn("Failed to remove run directory", "run_id", id, "error", err)
	}
}
