package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"policyscan/internal/batch"
	"policyscan/internal/classify"
	"policyscan/internal/dataset"
	"policyscan/internal/logging"
)

var (
	policyColumn string
	idColumn     string
	nameColumn   string
	resumeFrom   int
	batchDelay   time.Duration
	recordLimit  int
)

// analyzeCmd runs the batch classification pipeline over a CSV dataset.
var analyzeCmd = &cobra.Command{
	Use:   "analyze [input.csv] [output.csv]",
	Short: "Classify every policy in a CSV dataset",
	Long: `Reads policy texts from the input CSV, classifies each one against the
nine compliance indicators, and writes flat result rows to the output CSV.

The output file is checkpointed every 50 records, so an interrupted run can
be resumed without losing progress:

  policyscan analyze policies.csv results.csv --resume-from 500

Rows whose policy text is shorter than 100 characters are recorded with
error=empty_or_short_policy and never sent to the classifier.`,
	Args: cobra.ExactArgs(2),
	RunE: runAnalyze,
}

func init() {
	analyzeCmd.Flags().StringVar(&policyColumn, "policy-column", "policy_text", "Column name containing policy text")
	analyzeCmd.Flags().StringVar(&idColumn, "id-column", "app_id", "Column name containing the app identifier")
	analyzeCmd.Flags().StringVar(&nameColumn, "name-column", "app_name", "Column name containing the app name")
	analyzeCmd.Flags().IntVar(&resumeFrom, "resume-from", 0, "Resume processing from a record index (for crash recovery)")
	analyzeCmd.Flags().DurationVar(&batchDelay, "delay", 500*time.Millisecond, "Delay between classifier calls")
	analyzeCmd.Flags().IntVar(&recordLimit, "limit", 0, "Classify at most this many records (0 = all)")
	rootCmd.AddCommand(analyzeCmd)
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	inputPath, outputPath := args[0], args[1]

	if err := cfg.Validate(); err != nil {
		return err
	}

	// Flags win over config only when the caller actually set them.
	cols := dataset.Columns{
		Policy: cfg.Dataset.PolicyColumn,
		ID:     cfg.Dataset.IDColumn,
		Name:   cfg.Dataset.NameColumn,
	}
	if cmd.Flags().Changed("policy-column") {
		cols.Policy = policyColumn
	}
	if cmd.Flags().Changed("id-column") {
		cols.ID = idColumn
	}
	if cmd.Flags().Changed("name-column") {
		cols.Name = nameColumn
	}
	delay := cfg.GetBatchDelay()
	if cmd.Flags().Changed("delay") {
		delay = batchDelay
	}

	ctx, cancel := signalContext()
	defer cancel()

	ctx, runID, flushUsage, err := withUsageTracking(ctx, "classify_batch")
	if err != nil {
		return err
	}
	defer flushUsage()

	client, err := classify.NewClientFromConfig(ctx, cfg)
	if err != nil {
		return err
	}
	if closer, ok := client.(io.Closer); ok {
		defer closer.Close()
	}
	analyzer := classify.NewAnalyzer(client, classify.AnalyzerOptions{
		MaxPolicyChars:    cfg.Classifier.MaxPolicyChars,
		RateLimitCooldown: cfg.GetRateLimitCooldown(),
		MaxRetries:        cfg.Classifier.MaxRetries,
	})

	records, err := dataset.Load(inputPath, cols)
	if err != nil {
		return err
	}
	if recordLimit > 0 && len(records) > recordLimit {
		records = records[:recordLimit]
	}

	var audit *logging.AuditTrail
	if cfg.Batch.AuditTrail != "" {
		audit, err = logging.OpenAuditTrail(cfg.Batch.AuditTrail, runID)
		if err != nil {
			return err
		}
		defer audit.Close()
	}

	logger.Info("Starting batch analysis",
		zap.String("run_id", runID),
		zap.String("input", inputPath),
		zap.String("output", outputPath),
		zap.String("model", analyzer.Model()),
		zap.Int("records", len(records)),
		zap.Int("resume_from", resumeFrom))

	fmt.Printf("Initializing privacy policy analyzer with model: %s\n", analyzer.Model())
	fmt.Printf("Processing %d policies from %s\n", len(records), inputPath)
	fmt.Printf("Results will be saved to %s\n", outputPath)

	runner := batch.New(analyzer, batch.Options{
		Delay:           delay,
		CheckpointEvery: cfg.Batch.CheckpointEvery,
		MinPolicyChars:  cfg.Batch.MinPolicyChars,
		ResumeFrom:      resumeFrom,
	}, audit)

	res, err := runner.Run(ctx, records, outputPath)
	if errors.Is(err, context.Canceled) {
		fmt.Printf("\nInterrupted. Partial results saved to %s (%d rows)\n", outputPath, res.Total)
		fmt.Printf("Resume with: policyscan analyze %s %s --resume-from %d\n", inputPath, outputPath, res.Total)
		return nil
	}
	if err != nil {
		return fmt.Errorf("batch run aborted: %w", err)
	}

	fmt.Printf("\nResults saved to %s\n", outputPath)
	fmt.Printf("Processed %d policies\n", res.Total)
	if res.Errors > 0 {
		fmt.Printf("Warning: %d policies had errors\n", res.Errors)
	}
	return nil
}
