package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/cwbudde/rngevo/internal/bench"
	"github.com/cwbudde/rngevo/internal/sampling"
	"github.com/spf13/cobra"
)

var strategiesCmd = &cobra.Command{
	Use:   "strategies",
	Short: "List sampling strategies and benchmark objectives",
	RunE:  runListStrategies,
}

func init() {
	rootCmd.AddCommand(strategiesCmd)
}

func runListStrategies(cmd *cobra.Command, args []string) error {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "STRATEGY\tKIND")
	fmt.Fprintln(w, "--------\t----")
	for _, s := range sampling.Strategies() {
		kind := "pseudorandom"
		if s.IsQuasiRandom() {
			kind = "quasi-random"
		}
		fmt.Fprintf(w, "%s\t%s\n", s, kind)
	}
	w.Flush()

	fmt.Println()
	w = tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "OBJECTIVE\tOPTIMUM (D=2)")
	fmt.Fprintln(w, "---------\t-------------")
	for _, name := range bench.Names() {
		f, err := bench.Lookup(name)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "%s\t%v\n", name, f.Optimum(2))
	}
	return w.Flush()
}
