package classify

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"policyscan/internal/usage"
)

func TestOpenAIClient_Classify_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("Expected POST, got %s", r.Method)
		}
		if r.Header.Get("Authorization") != "Bearer test-key" {
			t.Error("Expected test-key authorization")
		}

		var body map[string]interface{}
		json.NewDecoder(r.Body).Decode(&body)

		if body["model"] != "gpt-5-nano" {
			t.Errorf("Expected model gpt-5-nano, got %v", body["model"])
		}
		// gpt-5-nano rejects the temperature parameter
		if _, ok := body["temperature"]; ok {
			t.Error("Expected temperature to be omitted for nano models")
		}

		messages, ok := body["messages"].([]interface{})
		if !ok || len(messages) != 2 {
			t.Fatalf("Expected 2 messages, got %v", body["messages"])
		}
		first, _ := messages[0].(map[string]interface{})
		if first["role"] != "system" {
			t.Errorf("Expected first message role system, got %v", first["role"])
		}

		rf, ok := body["response_format"].(map[string]interface{})
		if !ok || rf["type"] != "json_schema" {
			t.Fatalf("Expected json_schema response_format, got %v", body["response_format"])
		}
		js, _ := rf["json_schema"].(map[string]interface{})
		if js["name"] != "policy_analysis" {
			t.Errorf("Expected schema name policy_analysis, got %v", js["name"])
		}
		if js["strict"] != true {
			t.Error("Expected strict schema enforcement")
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{
			"choices": [
				{
					"message": {
						"content": "{\"verdict\": \"raw\"}"
					}
				}
			],
			"usage": {"prompt_tokens": 12, "completion_tokens": 7, "total_tokens": 19}
		}`))
	}))
	defer server.Close()

	client := NewOpenAIClient("test-key")
	client.baseURL = server.URL

	resp, err := client.Classify(context.Background(), "system prompt", "user prompt")
	if err != nil {
		t.Fatalf("Classify failed: %v", err)
	}
	if resp != `{"verdict": "raw"}` {
		t.Errorf("Unexpected response: %s", resp)
	}
}

func TestOpenAIClient_Classify_TemperatureForNonNanoModels(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]interface{}
		json.NewDecoder(r.Body).Decode(&body)

		if body["temperature"] != 0.1 {
			t.Errorf("Expected temperature 0.1, got %v", body["temperature"])
		}

		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"choices": [{"message": {"content": "ok"}}]}`))
	}))
	defer server.Close()

	client := NewOpenAIClient("test-key")
	client.baseURL = server.URL
	client.SetModel("gpt-4o-mini")

	if _, err := client.Classify(context.Background(), "sys", "user"); err != nil {
		t.Fatalf("Classify failed: %v", err)
	}
}

func TestOpenAIClient_Classify_RateLimit(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte(`{"error": {"message": "slow down"}}`))
	}))
	defer server.Close()

	client := NewOpenAIClient("test-key")
	client.baseURL = server.URL

	_, err := client.Classify(context.Background(), "sys", "user")
	if err == nil {
		t.Fatal("Expected error on 429")
	}
	var rateErr *RateLimitError
	if !errors.As(err, &rateErr) {
		t.Fatalf("Expected *RateLimitError, got %T: %v", err, err)
	}
	if rateErr.Provider != "openai" {
		t.Errorf("Expected provider openai, got %s", rateErr.Provider)
	}
}

func TestOpenAIClient_Classify_ServerErrorIsPermanent(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`boom`))
	}))
	defer server.Close()

	client := NewOpenAIClient("test-key")
	client.baseURL = server.URL

	_, err := client.Classify(context.Background(), "sys", "user")
	if err == nil {
		t.Fatal("Expected error on 500")
	}
	var rateErr *RateLimitError
	if errors.As(err, &rateErr) {
		t.Fatal("500 must not be classified as a rate limit")
	}
}

func TestOpenAIClient_Classify_NoChoices(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"choices": []}`))
	}))
	defer server.Close()

	client := NewOpenAIClient("test-key")
	client.baseURL = server.URL

	if _, err := client.Classify(context.Background(), "sys", "user"); err == nil {
		t.Fatal("Expected error when no choices returned")
	}
}

func TestOpenAIClient_Classify_MissingAPIKey(t *testing.T) {
	client := NewOpenAIClient("")

	if _, err := client.Classify(context.Background(), "sys", "user"); err == nil {
		t.Fatal("Expected error without API key")
	}
}

func TestOpenAIClient_Classify_TracksUsage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{
			"choices": [{"message": {"content": "ok"}}],
			"usage": {"prompt_tokens": 100, "completion_tokens": 40, "total_tokens": 140}
		}`))
	}))
	defer server.Close()

	client := NewOpenAIClient("test-key")
	client.baseURL = server.URL

	tracker, err := usage.NewTracker(filepath.Join(t.TempDir(), "usage.json"))
	if err != nil {
		t.Fatalf("NewTracker: %v", err)
	}
	defer tracker.Close()

	ctx := usage.NewContext(context.Background(), tracker)
	if _, err := client.Classify(ctx, "sys", "user"); err != nil {
		t.Fatalf("Classify failed: %v", err)
	}

	stats := tracker.Stats()
	if stats.Total.Input != 100 || stats.Total.Output != 40 {
		t.Errorf("Expected 100/40 tokens tracked, got %+v", stats.Total)
	}
	if got := stats.ByProvider["openai"]; got.Total != 140 {
		t.Errorf("Expected 140 total for openai, got %+v", got)
	}
}

func TestOpenAIClient_SetModel(t *testing.T) {
	client := NewOpenAIClient("test-key")

	if client.GetModel() != "gpt-5-nano" {
		t.Errorf("Expected default model gpt-5-nano, got %s", client.GetModel())
	}

	client.SetModel("gpt-4o-mini")
	if client.GetModel() != "gpt-4o-mini" {
		t.Errorf("Expected model gpt-4o-mini, got %s", client.GetModel())
	}
}

func TestModelSupportsTemperature(t *testing.T) {
	cases := []struct {
		model string
		want  bool
	}{
		{"gpt-5-nano", false},
		{"GPT-5-NANO", false},
		{"gpt-4o-mini", true},
		{"gemini-2.5-flash", true},
	}
	for _, tc := range cases {
		if got := modelSupportsTemperature(tc.model); got != tc.want {
			t.Errorf("modelSupportsTemperature(%q) = %v, want %v", tc.model, got, tc.want)
		}
	}
}
