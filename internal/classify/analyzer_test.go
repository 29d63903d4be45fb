package classify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"policyscan/internal/schema"
)

// stubClient scripts Classify responses per attempt and records prompts.
type stubClient struct {
	model   string
	calls   int
	prompts []string
	fn      func(call int) (string, error)
}

func (s *stubClient) Classify(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	s.calls++
	s.prompts = append(s.prompts, userPrompt)
	return s.fn(s.calls)
}

func (s *stubClient) SetModel(model string) { s.model = model }
func (s *stubClient) GetModel() string      { return s.model }

func validDocument(t *testing.T) string {
	t.Helper()
	raw, err := json.Marshal(schema.EmptyResult())
	if err != nil {
		t.Fatalf("marshal empty result: %v", err)
	}
	return string(raw)
}

func fastOptions() AnalyzerOptions {
	return AnalyzerOptions{
		MaxPolicyChars:    100000,
		RateLimitCooldown: time.Millisecond,
	}
}

func TestAnalyzer_Analyze_Success(t *testing.T) {
	doc := validDocument(t)
	stub := &stubClient{fn: func(int) (string, error) { return doc, nil }}

	result, err := NewAnalyzer(stub, fastOptions()).Analyze(context.Background(), "app_1", "a long enough policy text")
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}
	if result.Score() != 0 {
		t.Errorf("Expected score 0 for all-false document, got %d", result.Score())
	}
	if result.RiskLevel() != schema.RiskHigh {
		t.Errorf("Expected HIGH risk, got %s", result.RiskLevel())
	}
	if stub.calls != 1 {
		t.Errorf("Expected 1 call, got %d", stub.calls)
	}
	if !strings.HasPrefix(stub.prompts[0], "Analyze this privacy policy:\n\n") {
		t.Errorf("Unexpected user prompt prefix: %.60q", stub.prompts[0])
	}
}

func TestAnalyzer_Analyze_TruncatesAtBoundary(t *testing.T) {
	doc := validDocument(t)

	t.Run("at the limit stays intact", func(t *testing.T) {
		stub := &stubClient{fn: func(int) (string, error) { return doc, nil }}
		text := strings.Repeat("a", 100000)

		if _, err := NewAnalyzer(stub, fastOptions()).Analyze(context.Background(), "app_1", text); err != nil {
			t.Fatalf("Analyze failed: %v", err)
		}
		if strings.Contains(stub.prompts[0], TruncationMarker) {
			t.Error("Text at exactly the limit must not be truncated")
		}
	})

	t.Run("one past the limit is cut and marked", func(t *testing.T) {
		stub := &stubClient{fn: func(int) (string, error) { return doc, nil }}
		text := strings.Repeat("a", 100001)

		if _, err := NewAnalyzer(stub, fastOptions()).Analyze(context.Background(), "app_1", text); err != nil {
			t.Fatalf("Analyze failed: %v", err)
		}
		prompt := stub.prompts[0]
		if !strings.HasSuffix(prompt, TruncationMarker) {
			t.Fatal("Expected truncation marker suffix")
		}
		wantLen := len("Analyze this privacy policy:\n\n") + 100000 + len(TruncationMarker)
		if len(prompt) != wantLen {
			t.Errorf("Expected prompt length %d, got %d", wantLen, len(prompt))
		}
	})
}

func TestAnalyzer_Analyze_RetriesRateLimitsUntilSuccess(t *testing.T) {
	doc := validDocument(t)
	stub := &stubClient{fn: func(call int) (string, error) {
		if call < 3 {
			return "", &RateLimitError{Provider: "openai"}
		}
		return doc, nil
	}}

	result, err := NewAnalyzer(stub, fastOptions()).Analyze(context.Background(), "app_1", "policy text")
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}
	if result == nil {
		t.Fatal("Expected result after retries")
	}
	if stub.calls != 3 {
		t.Errorf("Expected 3 attempts, got %d", stub.calls)
	}
}

func TestAnalyzer_Analyze_IdenticalPromptAcrossRetries(t *testing.T) {
	// Truncation happens once, before the retry loop; every attempt must
	// send the same prompt.
	doc := validDocument(t)
	stub := &stubClient{fn: func(call int) (string, error) {
		if call == 1 {
			return "", &RateLimitError{Provider: "openai"}
		}
		return doc, nil
	}}

	opts := fastOptions()
	opts.MaxPolicyChars = 50
	text := strings.Repeat("x", 80)

	if _, err := NewAnalyzer(stub, opts).Analyze(context.Background(), "app_1", text); err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}
	if len(stub.prompts) != 2 {
		t.Fatalf("Expected 2 prompts, got %d", len(stub.prompts))
	}
	if stub.prompts[0] != stub.prompts[1] {
		t.Error("Retry sent a different prompt than the first attempt")
	}
	if !strings.HasSuffix(stub.prompts[0], TruncationMarker) {
		t.Error("Expected truncated prompt")
	}
}

func TestAnalyzer_Analyze_RetryCeiling(t *testing.T) {
	stub := &stubClient{fn: func(int) (string, error) {
		return "", &RateLimitError{Provider: "openai"}
	}}

	opts := fastOptions()
	opts.MaxRetries = 2

	_, err := NewAnalyzer(stub, opts).Analyze(context.Background(), "app_1", "policy text")
	if err == nil {
		t.Fatal("Expected error once the retry ceiling is hit")
	}
	var rateErr *RateLimitError
	if !errors.As(err, &rateErr) {
		t.Fatalf("Expected *RateLimitError in chain, got %v", err)
	}
	if stub.calls != 3 {
		t.Errorf("Expected 3 attempts (initial + 2 retries), got %d", stub.calls)
	}
}

func TestAnalyzer_Analyze_PermanentErrorsAreNotRetried(t *testing.T) {
	stub := &stubClient{fn: func(int) (string, error) {
		return "", fmt.Errorf("API request failed with status 500")
	}}

	_, err := NewAnalyzer(stub, fastOptions()).Analyze(context.Background(), "app_1", "policy text")
	if err == nil {
		t.Fatal("Expected error")
	}
	if stub.calls != 1 {
		t.Errorf("Expected 1 attempt for a permanent error, got %d", stub.calls)
	}
}

func TestAnalyzer_Analyze_RejectsInvalidResponse(t *testing.T) {
	stub := &stubClient{fn: func(int) (string, error) {
		return `{"unexpected": true}`, nil
	}}

	_, err := NewAnalyzer(stub, fastOptions()).Analyze(context.Background(), "app_1", "policy text")
	if err == nil {
		t.Fatal("Expected validation error")
	}
	if !strings.Contains(err.Error(), "invalid classifier response") {
		t.Errorf("Unexpected error: %v", err)
	}
	if stub.calls != 1 {
		t.Errorf("Validation failures must not be retried, got %d attempts", stub.calls)
	}
}

func TestAnalyzer_Analyze_CancelledContextStopsRetries(t *testing.T) {
	stub := &stubClient{fn: func(int) (string, error) {
		return "", &RateLimitError{Provider: "openai"}
	}}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	opts := fastOptions()
	opts.RateLimitCooldown = time.Hour

	_, err := NewAnalyzer(stub, opts).Analyze(ctx, "app_1", "policy text")
	if err == nil {
		t.Fatal("Expected error with cancelled context")
	}
	if stub.calls > 1 {
		t.Errorf("Expected at most 1 attempt with cancelled context, got %d", stub.calls)
	}
}

func TestBuildUserPrompt(t *testing.T) {
	got := BuildUserPrompt("some policy")
	if got != "Analyze this privacy policy:\n\nsome policy" {
		t.Errorf("Unexpected prompt: %q", got)
	}
}
