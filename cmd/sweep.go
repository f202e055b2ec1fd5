package main

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	"github.com/cwbudde/rngevo/internal/experiment"
	"github.com/cwbudde/rngevo/internal/metrics"
	"github.com/cwbudde/rngevo/internal/store"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
)

var (
	sweepConfigPath  string
	sweepMetricsFile string
	sweepWorkers     int
	sweepNoSave      bool
)

var sweepCmd = &cobra.Command{
	Use:   "sweep",
	Short: "Run every objective with every strategy several times",
	Long: `Runs the experiment described by a YAML file (defaults apply to omitted
fields), saves every run and prints per-strategy statistics of the best scores
together with a Kruskal-Wallis test across strategies.`,
	RunE: runSweep,
}

func init() {
	sweepCmd.Flags().StringVar(&sweepConfigPath, "config", "", "Sweep configuration file (YAML)")
	sweepCmd.Flags().StringVar(&sweepMetricsFile, "metrics-file", "", "Override metrics_file from the config")
	sweepCmd.Flags().IntVar(&sweepWorkers, "workers", 0, "Override workers from the config")
	sweepCmd.Flags().BoolVar(&sweepNoSave, "no-save", false, "Do not persist runs")
	sweepCmd.Flags().IntVar(&progressEvery, "progress-every", 0, "Log progress every N generations (0 = off)")

	rootCmd.AddCommand(sweepCmd)
}

func runSweep(cmd *cobra.Command, args []string) error {
	cfg, err := experiment.Load(sweepConfigPath)
	if err != nil {
		return err
	}
	if sweepMetricsFile != "" {
		cfg.MetricsFile = sweepMetricsFile
	}
	if sweepWorkers > 0 {
		cfg.Workers = sweepWorkers
	}

	var st *store.FSStore
	if !sweepNoSave && cfg.DataDir != "" {
		st, err = store.NewFSStore(cfg.DataDir)
		if err != nil {
			return fmt.Errorf("failed to create run store: %w", err)
		}
	}

	reg := prometheus.NewRegistry()
	runner := experiment.NewRunner(cfg, st, metrics.New(reg))
	runner.LogProgress(progressEvery)

	records, err := runner.Sweep(cmd.Context())
	if err != nil {
		return err
	}

	if cfg.MetricsFile != "" {
		if err := metrics.WriteTextfile(reg, cfg.MetricsFile); err != nil {
			return err
		}
	}

	return printSummary(os.Stdout, records)
}

func printSummary(out io.Writer, records []*store.RunRecord) error {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "OBJECTIVE\tSTRATEGY\tRUNS\tMIN\tMEDIAN\tMAX\tMEAN\tSTD\tTIME MEAN\tTIME STD")
	fmt.Fprintln(w, "---------\t--------\t----\t---\t------\t---\t----\t---\t---------\t--------")
	for _, s := range experiment.Summarize(records) {
		fmt.Fprintf(w, "%s\t%s\t%d\t%.3f\t%.3f\t%.3f\t%.3f\t%.3f\t%s\t%s\n",
			s.Objective, s.Strategy, s.Runs, s.Min, s.Median, s.Max, s.Mean, s.Std,
			s.MeanDuration.Round(time.Millisecond), s.StdDuration.Round(time.Millisecond))
	}
	if err := w.Flush(); err != nil {
		return err
	}

	comparisons := experiment.Compare(records)
	if len(comparisons) == 0 {
		return nil
	}

	fmt.Fprintln(out)
	w = tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "OBJECTIVE\tSTRATEGIES\tH\tP-VALUE")
	fmt.Fprintln(w, "---------\t----------\t-\t-------")
	for _, c := range comparisons {
		fmt.Fprintf(w, "%s\t%d\t%.4f\t%.4g\n", c.Objective, len(c.Strategies), c.H, c.PValue)
	}
	return w.Flush()
}
