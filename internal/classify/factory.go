package classify

import (
	"context"
	"fmt"
	"os"
	"strings"

	"policyscan/internal/config"
)

// DetectProvider checks environment variables for a usable API key.
// Priority: OPENAI > GEMINI, matching the config loader's env overrides.
func DetectProvider() (provider, apiKey string, err error) {
	providers := []struct {
		envVar   string
		provider string
	}{
		{"OPENAI_API_KEY", "openai"},
		{"GEMINI_API_KEY", "gemini"},
	}

	for _, p := range providers {
		if key := os.Getenv(p.envVar); key != "" {
			return p.provider, key, nil
		}
	}

	return "", "", fmt.Errorf("no API key found; set one of: OPENAI_API_KEY, GEMINI_API_KEY")
}

// NewClientFromConfig creates a provider client from resolved configuration.
// An empty model keeps the provider's default.
func NewClientFromConfig(ctx context.Context, cfg *config.Config) (Client, error) {
	cc := cfg.Classifier
	if cc.APIKey == "" {
		return nil, fmt.Errorf("no API key configured for provider %q", cc.Provider)
	}

	switch cc.Provider {
	case "openai":
		clientCfg := DefaultOpenAIConfig(cc.APIKey)
		if cc.BaseURL != "" {
			clientCfg.BaseURL = cc.BaseURL
		}
		if cc.Model != "" {
			clientCfg.Model = cc.Model
		}
		clientCfg.Timeout = cfg.GetClassifierTimeout()
		return NewOpenAIClientWithConfig(clientCfg), nil

	case "gemini":
		clientCfg := DefaultGeminiConfig(cc.APIKey)
		if cc.Model != "" {
			clientCfg.Model = cc.Model
		}
		clientCfg.Timeout = cfg.GetClassifierTimeout()
		return NewGeminiClientWithConfig(ctx, clientCfg)

	default:
		return nil, fmt.Errorf("unknown provider: %s (valid: %s)", cc.Provider, strings.Join(config.ValidProviders, ", "))
	}
}
