package classify

import (
	"context"
	"strings"
	"testing"

	"policyscan/internal/config"
)

func clearProviderEnv(t *testing.T) {
	t.Helper()
	t.Setenv("OPENAI_API_KEY", "")
	t.Setenv("GEMINI_API_KEY", "")
}

func TestDetectProvider_PrefersOpenAI(t *testing.T) {
	clearProviderEnv(t)
	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("GEMINI_API_KEY", "gm-test")

	provider, key, err := DetectProvider()
	if err != nil {
		t.Fatalf("DetectProvider failed: %v", err)
	}
	if provider != "openai" || key != "sk-test" {
		t.Errorf("Expected openai/sk-test, got %s/%s", provider, key)
	}
}

func TestDetectProvider_FallsBackToGemini(t *testing.T) {
	clearProviderEnv(t)
	t.Setenv("GEMINI_API_KEY", "gm-test")

	provider, key, err := DetectProvider()
	if err != nil {
		t.Fatalf("DetectProvider failed: %v", err)
	}
	if provider != "gemini" || key != "gm-test" {
		t.Errorf("Expected gemini/gm-test, got %s/%s", provider, key)
	}
}

func TestDetectProvider_NoKeys(t *testing.T) {
	clearProviderEnv(t)

	if _, _, err := DetectProvider(); err == nil {
		t.Fatal("Expected error when no API key is set")
	}
}

func TestNewClientFromConfig_OpenAI(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Classifier.APIKey = "sk-test"
	cfg.Classifier.Model = "gpt-4o-mini"

	client, err := NewClientFromConfig(context.Background(), cfg)
	if err != nil {
		t.Fatalf("NewClientFromConfig failed: %v", err)
	}
	if _, ok := client.(*OpenAIClient); !ok {
		t.Fatalf("Expected *OpenAIClient, got %T", client)
	}
	if client.GetModel() != "gpt-4o-mini" {
		t.Errorf("Expected model override gpt-4o-mini, got %s", client.GetModel())
	}
}

func TestNewClientFromConfig_OpenAIDefaultModel(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Classifier.APIKey = "sk-test"

	client, err := NewClientFromConfig(context.Background(), cfg)
	if err != nil {
		t.Fatalf("NewClientFromConfig failed: %v", err)
	}
	if client.GetModel() != "gpt-5-nano" {
		t.Errorf("Expected provider default gpt-5-nano, got %s", client.GetModel())
	}
}

func TestNewClientFromConfig_Gemini(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Classifier.Provider = "gemini"
	cfg.Classifier.APIKey = "gm-test"

	client, err := NewClientFromConfig(context.Background(), cfg)
	if err != nil {
		t.Fatalf("NewClientFromConfig failed: %v", err)
	}
	gc, ok := client.(*GeminiClient)
	if !ok {
		t.Fatalf("Expected *GeminiClient, got %T", client)
	}
	defer gc.Close()
	if gc.GetModel() != "gemini-2.5-flash" {
		t.Errorf("Expected provider default gemini-2.5-flash, got %s", gc.GetModel())
	}
}

func TestNewClientFromConfig_MissingKey(t *testing.T) {
	cfg := config.DefaultConfig()

	if _, err := NewClientFromConfig(context.Background(), cfg); err == nil {
		t.Fatal("Expected error without API key")
	}
}

func TestNewClientFromConfig_UnknownProvider(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Classifier.Provider = "cohere"
	cfg.Classifier.APIKey = "test"

	_, err := NewClientFromConfig(context.Background(), cfg)
	if err == nil {
		t.Fatal("Expected error for unknown provider")
	}
	if !strings.Contains(err.Error(), "unknown provider") {
		t.Errorf("Unexpected error: %v", err)
	}
}
