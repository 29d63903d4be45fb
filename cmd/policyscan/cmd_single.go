package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"policyscan/internal/classify"
	"policyscan/internal/report"
)

var singleJSON bool

// singleCmd classifies one policy text file and prints the result.
var singleCmd = &cobra.Command{
	Use:   "single [policy.txt]",
	Short: "Classify a single policy text file",
	Long: `Reads one policy document from a plain text file and prints the
classification. The app identifier is the file name without its extension.

By default the result is printed as flat key/value lines. With --json the
nested result is printed instead, keeping the coppa_analysis and
gdpr_analysis sub-objects intact.`,
	Args: cobra.ExactArgs(1),
	RunE: runSingle,
}

func init() {
	singleCmd.Flags().BoolVar(&singleJSON, "json", false, "Print the nested JSON result")
	rootCmd.AddCommand(singleCmd)
}

func runSingle(cmd *cobra.Command, args []string) error {
	inputPath := args[0]

	if err := cfg.Validate(); err != nil {
		return err
	}

	raw, err := os.ReadFile(inputPath)
	if err != nil {
		return fmt.Errorf("failed to read policy file: %w", err)
	}
	appID := strings.TrimSuffix(filepath.Base(inputPath), filepath.Ext(inputPath))

	ctx, cancel := signalContext()
	defer cancel()

	ctx, _, flushUsage, err := withUsageTracking(ctx, "classify_single")
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

	fmt.Printf("Analyzing single policy from %s\n", inputPath)

	result, analysisErr := analyzer.Analyze(ctx, appID, string(raw))
	if analysisErr != nil {
		logger.Error("Single analysis failed", zap.String("app_id", appID), zap.Error(analysisErr))
		// Mirror the batch artifact contract rather than failing the
		// process: the caller gets the canonical error shape.
		if singleJSON {
			doc := struct {
				AppID string `json:"app_id"`
				Error string `json:"error"`
			}{AppID: appID, Error: report.ErrAnalysisFailed}
			out, err := json.MarshalIndent(doc, "", "  ")
			if err != nil {
				return err
			}
			fmt.Println(string(out))
			return nil
		}
		fmt.Println("\nAnalysis Results:")
		fmt.Println(strings.Repeat("-", 50))
		fmt.Printf("error: %s\n", report.ErrAnalysisFailed)
		return nil
	}

	if singleJSON {
		out, err := json.MarshalIndent(report.NewSingleDocument(appID, result), "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(out))
		return nil
	}

	fmt.Println("\nAnalysis Results:")
	fmt.Println(strings.Repeat("-", 50))
	return report.RenderKeyValues(os.Stdout, report.Flatten(appID, "", result))
}
