package main

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"policyscan/internal/report"
	"policyscan/internal/schema"
)

// statsCmd recomputes aggregate statistics from an existing result artifact.
var statsCmd = &cobra.Command{
	Use:   "stats [results.csv]",
	Short: "Print summary statistics for a results file",
	Long: `Reads a results artifact written by analyze or summary and prints the
aggregate view: error breakdown, risk distribution, average compliance
score, and per-indicator compliance rates.`,
	Args: cobra.ExactArgs(1),
	RunE: runStats,
}

func init() {
	rootCmd.AddCommand(statsCmd)
}

func runStats(cmd *cobra.Command, args []string) error {
	rows, err := report.ReadSnapshot(args[0])
	if err != nil {
		return fmt.Errorf("failed to read results: %w", err)
	}
	printSummary(os.Stdout, report.Summarize(rows))
	return nil
}

// printSummary renders the terminal statistics block shared by the
// analyze-adjacent stats command and the offline summary command.
func printSummary(w io.Writer, s report.Summary) {
	fmt.Fprintln(w)
	fmt.Fprintln(w, strings.Repeat("=", 50))
	fmt.Fprintln(w, "ANALYSIS SUMMARY")
	fmt.Fprintln(w, strings.Repeat("=", 50))
	fmt.Fprintf(w, "Total apps analyzed: %d\n", s.Total)

	if s.Errors > 0 {
		kinds := make([]string, 0, len(s.ErrorCounts))
		for kind := range s.ErrorCounts {
			kinds = append(kinds, kind)
		}
		sort.Strings(kinds)
		fmt.Fprintf(w, "Errors: %d\n", s.Errors)
		for _, kind := range kinds {
			fmt.Fprintf(w, "  %s: %d\n", kind, s.ErrorCounts[kind])
		}
	}

	if s.Classified > 0 {
		for _, level := range []schema.RiskLevel{schema.RiskLow, schema.RiskMedium, schema.RiskHigh} {
			if count := s.RiskCounts[level]; count > 0 {
				fmt.Fprintf(w, "%s risk: %d apps (%.1f%%)\n",
					level, count, float64(count)/float64(s.Classified)*100)
			}
		}
	}

	fmt.Fprintf(w, "\nAverage compliance score: %.2f/9\n", s.AverageScore)

	fmt.Fprintln(w, "\nCompliance rates by indicator:")
	for _, col := range schema.IndicatorColumns() {
		fmt.Fprintf(w, "  %s: %.1f%% compliant\n", col, s.ComplianceRates[col]*100)
	}
}
