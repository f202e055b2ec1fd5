package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"text/tabwriter"
	"time"

	"github.com/cwbudde/rngevo/internal/store"
	"github.com/spf13/cobra"
)

var (
	runsDataDir   string
	keepLast      int
	olderThanDays int
	forceClean    bool
	exportFormat  string
	exportOut     string
)

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "Manage saved runs",
	Long:  `Manage saved optimization runs: list, inspect, export and clean them.`,
}

var listRunsCmd = &cobra.Command{
	Use:   "list",
	Short: "List all saved runs",
	Long:  `Display all runs with metadata including run ID, timestamp, objective, strategy, best score and size on disk.`,
	RunE:  runListRuns,
}

var showRunCmd = &cobra.Command{
	Use:   "show <run-id>",
	Short: "Show one run in detail",
	Args:  cobra.ExactArgs(1),
	RunE:  runShowRun,
}

var cleanRunsCmd = &cobra.Command{
	Use:   "clean",
	Short: "Clean old runs",
	Long: `Delete old runs based on retention policy.
You can keep only the newest N runs or delete runs older than N days.`,
	RunE: runCleanRuns,
}

var exportRunsCmd = &cobra.Command{
	Use:   "export",
	Short: "Export saved runs as CSV",
	Long: `Export run results (one row per run) or convergence histories (one row
per run and generation) as CSV.`,
	RunE: runExportRuns,
}

func init() {
	rootCmd.AddCommand(runsCmd)

	runsCmd.AddCommand(listRunsCmd)
	runsCmd.AddCommand(showRunCmd)
	runsCmd.AddCommand(cleanRunsCmd)
	runsCmd.AddCommand(exportRunsCmd)

	runsCmd.PersistentFlags().StringVar(&runsDataDir, "data-dir", "./data", "Base directory for run storage")

	cleanRunsCmd.Flags().IntVar(&keepLast, "keep-last", 0, "Keep only the newest N runs (0 = keep all)")
	cleanRunsCmd.Flags().IntVar(&olderThanDays, "older-than", 0, "Delete runs older than N days (0 = no age limit)")
	cleanRunsCmd.Flags().BoolVarP(&forceClean, "force", "f", false, "Skip confirmation prompt")

	exportRunsCmd.Flags().StringVar(&exportFormat, "format", "results", "What to export: results, convergence")
	exportRunsCmd.Flags().StringVarP(&exportOut, "out", "o", "", "Output file (default stdout)")
}

func shortID(id string) string {
	if len(id) > 12 {
		return id[:12] + "..."
	}
	return id
}

func runListRuns(cmd *cobra.Command, args []string) error {
	runStore, err := store.NewFSStore(runsDataDir)
	if err != nil {
		return fmt.Errorf("failed to create run store: %w", err)
	}

	infos, err := runStore.ListRuns()
	if err != nil {
		return fmt.Errorf("failed to list runs: %w", err)
	}

	if len(infos) == 0 {
		fmt.Println("No runs found.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "RUN ID\tTIMESTAMP\tOBJECTIVE\tSTRATEGY\tRUN\tBEST SCORE\tSIZE")
	fmt.Fprintln(w, "------\t---------\t---------\t--------\t---\t----------\t----")

	for _, info := range infos {
		size, err := getDirSize(runStore.RunDir(info.ID))
		sizeStr := "unknown"
		if err == nil {
			sizeStr = formatBytes(size)
		}

		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\t%.6g\t%s\n",
			shortID(info.ID),
			info.Timestamp.Format("2006-01-02 15:04:05"),
			info.Objective,
			info.Strategy,
			info.RunIndex,
			info.BestScore,
			sizeStr,
		)
	}

	w.Flush()

	fmt.Printf("\nTotal runs: %d\n", len(infos))
	return nil
}

func runShowRun(cmd *cobra.Command, args []string) error {
	runStore, err := store.NewFSStore(runsDataDir)
	if err != nil {
		return fmt.Errorf("failed to create run store: %w", err)
	}

	rec, err := runStore.LoadRun(args[0])
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "ID\t%s\n", rec.ID)
	fmt.Fprintf(w, "Objective\t%s\n", rec.Objective)
	fmt.Fprintf(w, "Strategy\t%s\n", rec.Strategy)
	fmt.Fprintf(w, "Algorithm\t%s\n", rec.Algorithm)
	fmt.Fprintf(w, "Run / seed\t%d / %d\n", rec.RunIndex, rec.Seed)
	fmt.Fprintf(w, "Dimension\t%d\n", rec.Dim)
	fmt.Fprintf(w, "Best score\t%.10g\n", rec.BestScore)
	fmt.Fprintf(w, "Generations\t%d\n", rec.Generations)
	fmt.Fprintf(w, "Evaluations\t%d\n", rec.Evaluations)
	fmt.Fprintf(w, "Duration\t%s\n", rec.Duration)
	fmt.Fprintf(w, "Timestamp\t%s\n", rec.Timestamp.Format(time.RFC3339))
	fmt.Fprintf(w, "Config\t%+v\n", rec.Config)
	fmt.Fprintf(w, "Best\t%v\n", rec.Best)

	history, err := store.ReadHistory(runsDataDir, rec.ID)
	switch {
	case err == nil && len(history) > 0:
		fmt.Fprintf(w, "Trace\t%d generations, %.6g -> %.6g\n", len(history), history[0], history[len(history)-1])
	case errors.Is(err, store.ErrNotFound):
		fmt.Fprintf(w, "Trace\tnone\n")
	case err != nil:
		slog.Warn("Failed to read trace", "run_id", rec.ID, "error", err)
	}
	return w.Flush()
}

func runCleanRuns(cmd *cobra.Command, args []string) error {
	if keepLast == 0 && olderThanDays == 0 {
		return fmt.Errorf("must specify either --keep-last or --older-than")
	}

	runStore, err := store.NewFSStore(runsDataDir)
	if err != nil {
		return fmt.Errorf("failed to create run store: %w", err)
	}

	infos, err := runStore.ListRuns()
	if err != nil {
		return fmt.Errorf("failed to list runs: %w", err)
	}

	if len(infos) == 0 {
		fmt.Println("No runs to clean.")
		return nil
	}

	toDelete := selectRunsForDeletion(infos, keepLast, olderThanDays, time.Now())

	if len(toDelete) == 0 {
		fmt.Println("No runs match deletion criteria.")
		return nil
	}

	fmt.Printf("Found %d run(s) to delete:\n", len(toDelete))
	for _, info := range toDelete {
		fmt.Printf("  - %s (%s/%s run %d, %s)\n",
			shortID(info.ID),
			info.Objective,
			info.Strategy,
			info.RunIndex,
			info.Timestamp.Format("2006-01-02 15:04:05"),
		)
	}

	if !forceClean {
		fmt.Print("\nProceed with deletion? [y/N]: ")
		var response string
		fmt.Scanln(&response)
		if response != "y" && response != "Y" {
			fmt.Println("Aborted.")
			return nil
		}
	}

	deleted := 0
	failed := 0
	for _, info := range toDelete {
		if err := runStore.DeleteRun(info.ID); err != nil {
			slog.Error("Failed to delete run", "run_id", info.ID, "error", err)
			failed++
		} else {
			slog.Info("Deleted run", "run_id", info.ID)
			deleted++
		}
	}

	fmt.Printf("\nDeleted %d run(s), %d failed.\n", deleted, failed)
	return nil
}

// selectRunsForDeletion applies the retention policy: runs older than
// olderThanDays, plus everything but the newest keepLast runs.
func selectRunsForDeletion(infos []store.RunInfo, keepLast int, olderThanDays int, now time.Time) []store.RunInfo {
	var toDelete []store.RunInfo
	selected := make(map[string]bool)

	if olderThanDays > 0 {
		cutoff := now.AddDate(0, 0, -olderThanDays)
		for _, info := range infos {
			if info.Timestamp.Before(cutoff) {
				toDelete = append(toDelete, info)
				selected[info.ID] = true
			}
		}
	}

	if keepLast > 0 && len(infos) > keepLast {
		sorted := make([]store.RunInfo, len(infos))
		copy(sorted, infos)
		sort.SliceStable(sorted, func(i, j int) bool {
			return sorted[i].Timestamp.Before(sorted[j].Timestamp)
		})

		for _, info := range sorted[:len(sorted)-keepLast] {
			if !selected[info.ID] {
				toDelete = append(toDelete, info)
				selected[info.ID] = true
			}
		}
	}

	return toDelete
}

func runExportRuns(cmd *cobra.Command, args []string) error {
	runStore, err := store.NewFSStore(runsDataDir)
	if err != nil {
		return fmt.Errorf("failed to create run store: %w", err)
	}

	records, err := runStore.LoadAll()
	if err != nil {
		return fmt.Errorf("failed to load runs: %w", err)
	}

	var out io.Writer = os.Stdout
	if exportOut != "" {
		f, err := os.Create(exportOut)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer f.Close()
		out = f
	}

	switch exportFormat {
	case "results":
		err = store.WriteResultsCSV(out, records)
	case "convergence":
		err = exportConvergence(out, records)
	default:
		return fmt.Errorf("unknown export format %q (results, convergence)", exportFormat)
	}
	if err != nil {
		return err
	}

	slog.Info("Exported runs", "format", exportFormat, "runs", len(records))
	return nil
}

func exportConvergence(out io.Writer, records []*store.RunRecord) error {
	series := make([]store.Convergence, 0, len(records))
	for _, rec := range records {
		history, err := store.ReadHistory(runsDataDir, rec.ID)
		if errors.Is(err, store.ErrNotFound) {
			slog.Warn("Run has no trace", "run_id", rec.ID)
			continue
		}
		if err != nil {
			return err
		}
		series = append(series, store.Convergence{
			Objective: rec.Objective,
			Strategy:  rec.Strategy,
			RunIndex:  rec.RunIndex,
			History:   history,
		})
	}
	return store.WriteConvergenceCSV(out, series)
}

// getDirSize calculates the total size of a directory
func getDirSize(path string) (int64, error) {
	var size int64
	err := filepath.Walk(path, func(_ string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() {
			size += info.Size()
		}
		return nil
	})
	return size, err
}

// formatBytes formats bytes as human-readable string
func formatBytes(bytes int64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(bytes)/float64(div), "KMGTPE"[exp])
}
