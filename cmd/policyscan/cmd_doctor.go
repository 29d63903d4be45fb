package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"policyscan/internal/classify"
	"policyscan/internal/schema"
)

// doctorProbePolicy is a minimal but classifiable policy snippet. Long
// enough for a real verdict, short enough to cost almost nothing.
const doctorProbePolicy = `We collect your email address and usage data to provide and improve the
service. We do not sell your data. You may request deletion of your account
data at any time by contacting support.`

const doctorTimeout = 60 * time.Second

// doctorCmd verifies that classifier backends are reachable and behaving.
var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check classifier backend connectivity",
	Long: `Probes every provider with a configured API key by classifying a tiny
built-in policy snippet and validating the response against the output
schema. Providers are probed concurrently.`,
	Args: cobra.NoArgs,
	RunE: runDoctor,
}

func init() {
	rootCmd.AddCommand(doctorCmd)
}

type probeTarget struct {
	provider string
	apiKey   string
}

type probeResult struct {
	model   string
	latency time.Duration
	err     error
}

func runDoctor(cmd *cobra.Command, args []string) error {
	targets := probeTargets()
	if len(targets) == 0 {
		fmt.Println("❌ ERROR: no API key found")
		fmt.Println("Set OPENAI_API_KEY or GEMINI_API_KEY, or put one in the config file.")
		return fmt.Errorf("no classifier backend configured")
	}

	for _, t := range targets {
		fmt.Printf("✅ %s API key loaded\n", t.provider)
		fmt.Printf("   Key starts with: %s\n", maskKey(t.apiKey))
		fmt.Printf("   Key length: %d characters\n", len(t.apiKey))
	}

	baseCtx, cancel := signalContext()
	defer cancel()

	baseCtx, _, flushUsage, err := withUsageTracking(baseCtx, "probe")
	if err != nil {
		return err
	}
	defer flushUsage()

	ctx, cancelProbes := context.WithTimeout(baseCtx, doctorTimeout)
	defer cancelProbes()

	fmt.Println("\nProbing classifier backends...")

	results := make([]probeResult, len(targets))
	g, gctx := errgroup.WithContext(ctx)
	for i, t := range targets {
		g.Go(func() error {
			results[i] = probeProvider(gctx, t)
			// Probe failures are results, not group failures.
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	failed := 0
	for i, t := range targets {
		res := results[i]
		if res.err != nil {
			failed++
			logger.Warn("Backend probe failed",
				zap.String("provider", t.provider), zap.Error(res.err))
			fmt.Printf("❌ %s: %v\n", t.provider, res.err)
			continue
		}
		fmt.Printf("✅ %s: responded in %s (model %s, output passed validation)\n",
			t.provider, res.latency.Round(time.Millisecond), res.model)
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d backend probes failed", failed, len(targets))
	}
	fmt.Println("\n🎉 Everything is configured correctly! You're ready to analyze privacy policies.")
	return nil
}

// probeTargets resolves which providers have a usable key: the configured
// provider first, then any other provider with a key in the environment.
func probeTargets() []probeTarget {
	envKeys := map[string]string{
		"openai": os.Getenv("OPENAI_API_KEY"),
		"gemini": os.Getenv("GEMINI_API_KEY"),
	}

	var targets []probeTarget
	seen := map[string]bool{}
	if cfg.Classifier.APIKey != "" {
		targets = append(targets, probeTarget{cfg.Classifier.Provider, cfg.Classifier.APIKey})
		seen[cfg.Classifier.Provider] = true
	}
	for _, provider := range []string{"openai", "gemini"} {
		if !seen[provider] && envKeys[provider] != "" {
			targets = append(targets, probeTarget{provider, envKeys[provider]})
		}
	}
	return targets
}

// probeProvider classifies the built-in snippet against one backend and
// validates the payload end to end.
func probeProvider(ctx context.Context, t probeTarget) probeResult {
	probeCfg := *cfg
	probeCfg.Classifier.Provider = t.provider
	probeCfg.Classifier.APIKey = t.apiKey
	if t.provider != cfg.Classifier.Provider {
		// The configured model belongs to the configured provider.
		probeCfg.Classifier.Model = ""
	}

	client, err := classify.NewClientFromConfig(ctx, &probeCfg)
	if err != nil {
		return probeResult{err: err}
	}
	if closer, ok := client.(io.Closer); ok {
		defer closer.Close()
	}

	start := time.Now()
	raw, err := client.Classify(ctx, classify.SystemPrompt, classify.BuildUserPrompt(doctorProbePolicy))
	latency := time.Since(start)
	if err != nil {
		return probeResult{model: client.GetModel(), latency: latency, err: err}
	}
	if _, err := schema.Validate([]byte(raw)); err != nil {
		return probeResult{model: client.GetModel(), latency: latency,
			err: fmt.Errorf("backend responded but output failed validation: %w", err)}
	}
	return probeResult{model: client.GetModel(), latency: latency}
}

func maskKey(key string) string {
	runes := []rune(key)
	if len(runes) <= 15 {
		return key
	}
	return string(runes[:15]) + "..."
}
