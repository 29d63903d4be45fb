package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"policyscan/internal/dataset"
	"policyscan/internal/heuristic"
	"policyscan/internal/report"
)

// summaryCmd scores questionnaire-style datasets without calling a
// classifier. Useful when the dataset carries vendor-completed privacy
// questionnaires instead of raw policy text.
var summaryCmd = &cobra.Command{
	Use:   "summary [input.csv] [output.csv]",
	Short: "Score privacy questionnaire answers offline",
	Long: `Derives the nine compliance indicators from structured questionnaire
columns ("What data is collected?", "FamilyPolicy", "misc_hasAds", and
friends) using keyword heuristics. No classifier backend or API key is
required.

The output artifact uses the same column layout as analyze, so stats can
read either one.`,
	Args: cobra.ExactArgs(2),
	RunE: runSummary,
}

func init() {
	rootCmd.AddCommand(summaryCmd)
}

func runSummary(cmd *cobra.Command, args []string) error {
	inputPath, outputPath := args[0], args[1]

	fmt.Printf("Loading data from %s...\n", inputPath)
	table, err := dataset.LoadTable(inputPath)
	if err != nil {
		return err
	}
	fmt.Printf("Found %d apps to analyze\n", table.Len())

	logger.Info("Scoring questionnaire dataset",
		zap.String("input", inputPath),
		zap.String("output", outputPath),
		zap.Int("rows", table.Len()))

	rows := heuristic.EvaluateAll(table)
	if err := report.WriteSnapshot(outputPath, rows); err != nil {
		return fmt.Errorf("failed to write results: %w", err)
	}
	fmt.Printf("\nResults saved to %s\n", outputPath)

	printSummary(os.Stdout, report.Summarize(rows))
	return nil
}
