package classify

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sethvargo/go-retry"

	"policyscan/internal/logging"
	"policyscan/internal/schema"
)

// TruncationMarker is appended when policy text exceeds the character limit.
const TruncationMarker = "\n\n[TRUNCATED]"

// AnalyzerOptions tunes truncation and rate-limit retries.
type AnalyzerOptions struct {
	// MaxPolicyChars caps policy text length in characters before the
	// prompt is built. Longer documents are cut and marked.
	MaxPolicyChars int
	// RateLimitCooldown is the wait between rate-limited attempts.
	RateLimitCooldown time.Duration
	// MaxRetries bounds rate-limit retries. Zero retries until the context
	// is cancelled, which matches how long batch runs have always behaved.
	MaxRetries int
}

// DefaultAnalyzerOptions returns the limits classification was tuned with.
func DefaultAnalyzerOptions() AnalyzerOptions {
	return AnalyzerOptions{
		MaxPolicyChars:    100000,
		RateLimitCooldown: 60 * time.Second,
		MaxRetries:        0,
	}
}

// Analyzer classifies one policy at a time: truncate, prompt, wait out rate
// limits, then validate the response against the result schema.
type Analyzer struct {
	client Client
	opts   AnalyzerOptions
}

// NewAnalyzer wraps a provider client with the classification pipeline.
func NewAnalyzer(client Client, opts AnalyzerOptions) *Analyzer {
	def := DefaultAnalyzerOptions()
	if opts.MaxPolicyChars <= 0 {
		opts.MaxPolicyChars = def.MaxPolicyChars
	}
	if opts.RateLimitCooldown <= 0 {
		opts.RateLimitCooldown = def.RateLimitCooldown
	}
	return &Analyzer{client: client, opts: opts}
}

// Model returns the model of the underlying client.
func (a *Analyzer) Model() string {
	return a.client.GetModel()
}

// Analyze classifies one policy document and returns the validated result.
// Rate-limited attempts repeat after the cooldown until they succeed, the
// retry ceiling is reached, or ctx is done. Any other failure is permanent
// on first occurrence; the caller decides how to record it.
func (a *Analyzer) Analyze(ctx context.Context, appID, policyText string) (*schema.ClassificationResult, error) {
	log := logging.Get(logging.CategoryAPI)

	// Character truncation, not byte truncation: policies scraped from
	// international app stores are full of multi-byte text.
	runes := []rune(policyText)
	if len(runes) > a.opts.MaxPolicyChars {
		policyText = string(runes[:a.opts.MaxPolicyChars]) + TruncationMarker
		log.Warn("Policy for app %s truncated to %d chars", appID, a.opts.MaxPolicyChars)
	}

	userPrompt := BuildUserPrompt(policyText)

	backoff := retry.NewConstant(a.opts.RateLimitCooldown)
	if a.opts.MaxRetries > 0 {
		backoff = retry.WithMaxRetries(uint64(a.opts.MaxRetries), backoff)
	}

	var raw string
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		out, err := a.client.Classify(ctx, SystemPrompt, userPrompt)
		if err != nil {
			var rateErr *RateLimitError
			if errors.As(err, &rateErr) {
				log.Warn("Rate limit hit for app %s, waiting %s before retry", appID, a.opts.RateLimitCooldown)
				return retry.RetryableError(err)
			}
			return err
		}
		raw = out
		return nil
	})
	if err != nil {
		log.Error("Classification failed for app %s: %v", appID, err)
		return nil, err
	}

	result, err := schema.Validate([]byte(raw))
	if err != nil {
		log.Error("Response validation failed for app %s: %v", appID, err)
		return nil, fmt.Errorf("invalid classifier response: %w", err)
	}

	log.Info("Successfully analyzed policy for app %s (score=%d risk=%s)", appID, result.Score(), result.RiskLevel())
	return result, nil
}
