package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"policyscan/internal/config"
	"policyscan/internal/logging"
	"policyscan/internal/usage"
)

var (
	// Global flags
	verbose    bool
	configPath string
	apiKey     string
	provider   string
	model      string

	// Logger for the CLI surface; per-category file logs are handled by
	// internal/logging.
	logger *zap.Logger
	cfg    *config.Config
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "policyscan",
	Short: "Privacy-policy compliance classifier for K-12 edtech apps",
	Long: `policyscan scores privacy policies against nine child-privacy
compliance indicators (COPPA / GDPR orientation) using an LLM backend with
strict structured output.

Input datasets are flat CSV files; results land in a flat CSV artifact that
is checkpointed throughout the run and safe to resume after interruption.

Set OPENAI_API_KEY or GEMINI_API_KEY, then:
  policyscan analyze policies.csv results.csv`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		zapCfg := zap.NewProductionConfig()
		zapCfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
		if verbose {
			zapCfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		var err error
		logger, err = zapCfg.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}

		cfg, err = config.Load(configPath)
		if err != nil {
			return err
		}
		if apiKey != "" {
			cfg.Classifier.APIKey = apiKey
		}
		if provider != "" {
			cfg.Classifier.Provider = provider
		}
		if model != "" {
			cfg.Classifier.Model = model
		}

		level := cfg.Logging.Level
		if verbose || cfg.Logging.Debug {
			level = "debug"
		}
		return logging.Initialize(cfg.Logging.Directory, logging.Options{
			Enabled:    true,
			Level:      level,
			JSONFormat: cfg.Logging.JSONFormat,
		})
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
		logging.CloseAll()
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", filepath.Join(".policyscan", "config.yaml"), "Config file path")
	rootCmd.PersistentFlags().StringVar(&apiKey, "api-key", "", "Classifier API key (or set OPENAI_API_KEY / GEMINI_API_KEY)")
	rootCmd.PersistentFlags().StringVar(&provider, "provider", "", "Classifier provider: openai or gemini")
	rootCmd.PersistentFlags().StringVar(&model, "model", "", "Model override (default: the provider's default)")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// signalContext returns a context cancelled by SIGINT/SIGTERM so long runs
// can checkpoint and exit cleanly.
func signalContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		defer signal.Stop(sigCh)
		select {
		case <-sigCh:
			logger.Info("Received shutdown signal")
			cancel()
		case <-ctx.Done():
		}
	}()

	return ctx, cancel
}

// withUsageTracking attaches a run identity and, when enabled, the token
// usage tracker to the context. The returned func flushes the tracker.
func withUsageTracking(ctx context.Context, operation string) (context.Context, string, func(), error) {
	runID := usage.NewRunID()
	ctx = usage.WithRun(ctx, runID, operation)

	if !cfg.Usage.Enabled {
		return ctx, runID, func() {}, nil
	}

	tracker, err := usage.NewTracker(cfg.Usage.Path)
	if err != nil {
		return ctx, runID, nil, fmt.Errorf("failed to open usage tracker: %w", err)
	}
	logger.Debug("Usage tracking enabled",
		zap.String("run_id", runID),
		zap.String("path", cfg.Usage.Path))

	flush := func() {
		if err := tracker.Close(); err != nil {
			logger.Warn("Failed to flush usage tracker", zap.Error(err))
		}
	}
	return usage.NewContext(ctx, tracker), runID, flush, nil
}
