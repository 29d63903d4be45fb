package classify

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"google.golang.org/genai"

	"policyscan/internal/logging"
	"policyscan/internal/schema"
	"policyscan/internal/usage"
)

// GeminiClient implements Client for the Gemini API via the GenAI SDK.
type GeminiClient struct {
	client      *genai.Client
	model       string
	timeout     time.Duration
	mu          sync.Mutex
	lastRequest time.Time
}

// DefaultGeminiConfig returns sensible defaults. BaseURL is unused; the SDK
// manages the endpoint.
func DefaultGeminiConfig(apiKey string) Config {
	return Config{
		APIKey:  apiKey,
		Model:   "gemini-2.5-flash",
		Timeout: 2 * time.Minute,
	}
}

// NewGeminiClient creates a new Gemini client.
func NewGeminiClient(ctx context.Context, apiKey string) (*GeminiClient, error) {
	config := DefaultGeminiConfig(apiKey)
	return NewGeminiClientWithConfig(ctx, config)
}

// NewGeminiClientWithConfig creates a new Gemini client with custom config.
func NewGeminiClientWithConfig(ctx context.Context, config Config) (*GeminiClient, error) {
	if config.APIKey == "" {
		return nil, fmt.Errorf("API key not configured")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey: config.APIKey,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}

	return &GeminiClient{
		client:  client,
		model:   config.Model,
		timeout: config.Timeout,
	}, nil
}

// Classify sends one schema-constrained generation request and returns the
// raw JSON document the model produced.
func (c *GeminiClient) Classify(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	// Auto-apply timeout if context has no deadline (centralized timeout handling)
	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	startTime := time.Now()
	logging.Get(logging.CategoryAPI).Debug("[Gemini] Classify: model=%s system_len=%d user_len=%d", c.model, len(systemPrompt), len(userPrompt))

	// Request pacing
	c.mu.Lock()
	elapsed := time.Since(c.lastRequest)
	if elapsed < 100*time.Millisecond {
		time.Sleep(100*time.Millisecond - elapsed)
	}
	c.lastRequest = time.Now()
	c.mu.Unlock()

	genCfg := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(systemPrompt, genai.RoleUser),
		ResponseMIMEType:  "application/json",
		ResponseSchema:    geminiResponseSchema(),
	}
	if modelSupportsTemperature(c.model) {
		genCfg.Temperature = genai.Ptr[float32](0.1)
	}

	contents := []*genai.Content{
		genai.NewContentFromText(userPrompt, genai.RoleUser),
	}

	resp, err := c.client.Models.GenerateContent(ctx, c.model, contents, genCfg)
	if err != nil {
		if isGeminiRateLimit(err) {
			logging.Get(logging.CategoryAPI).Warn("[Gemini] Classify: rate limited (429) after %v", time.Since(startTime))
			return "", &RateLimitError{Provider: "gemini", Message: err.Error()}
		}
		return "", fmt.Errorf("GenAI generate failed: %w", err)
	}

	content := strings.TrimSpace(resp.Text())
	if content == "" {
		logging.Get(logging.CategoryAPI).Error("[Gemini] Classify: no completion returned")
		return "", fmt.Errorf("no completion returned")
	}

	if tracker := usage.FromContext(ctx); tracker != nil && resp.UsageMetadata != nil {
		tracker.Track(ctx, c.model, "gemini",
			int(resp.UsageMetadata.PromptTokenCount),
			int(resp.UsageMetadata.CandidatesTokenCount))
	}

	logging.Get(logging.CategoryAPI).Info("[Gemini] Classify: completed in %v response_len=%d", time.Since(startTime), len(content))
	return content, nil
}

// SetModel changes the model used for classification.
func (c *GeminiClient) SetModel(model string) {
	c.model = model
}

// GetModel returns the current model.
func (c *GeminiClient) GetModel() string {
	return c.model
}

// Close closes the underlying GenAI client. The GenAI SDK's Client exposes
// no close operation, so this is a successful no-op kept for io.Closer.
func (c *GeminiClient) Close() error {
	return nil
}

func isGeminiRateLimit(err error) bool {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.Code == http.StatusTooManyRequests
	}
	// The SDK does not always surface a typed error.
	msg := err.Error()
	return strings.Contains(msg, "429") || strings.Contains(msg, "RESOURCE_EXHAUSTED")
}

var (
	geminiSchemaOnce sync.Once
	geminiSchema     *genai.Schema
)

// geminiResponseSchema translates the canonical response schema into the
// SDK's typed schema, built once.
func geminiResponseSchema() *genai.Schema {
	geminiSchemaOnce.Do(func() {
		geminiSchema = schemaFromMap(schema.ResponseSchema())
	})
	return geminiSchema
}

// schemaFromMap handles the subset of JSON Schema the response schema uses:
// scalar types, ["integer","null"] unions, enums, arrays, and objects with
// required properties. additionalProperties has no SDK equivalent and is
// dropped; Validate still rejects extra fields on the way back in.
func schemaFromMap(m map[string]interface{}) *genai.Schema {
	s := &genai.Schema{}

	if desc, ok := m["description"].(string); ok {
		s.Description = desc
	}

	switch t := m["type"].(type) {
	case string:
		s.Type = geminiType(t)
	case []string:
		for _, name := range t {
			if name == "null" {
				s.Nullable = genai.Ptr(true)
				continue
			}
			s.Type = geminiType(name)
		}
	}

	if enum, ok := m["enum"].([]string); ok {
		s.Enum = append(s.Enum, enum...)
	}

	if items, ok := m["items"].(map[string]interface{}); ok {
		s.Items = schemaFromMap(items)
	}

	if props, ok := m["properties"].(map[string]interface{}); ok {
		s.Properties = make(map[string]*genai.Schema, len(props))
		for name, raw := range props {
			if child, ok := raw.(map[string]interface{}); ok {
				s.Properties[name] = schemaFromMap(child)
			}
		}
	}

	if required, ok := m["required"].([]string); ok {
		s.Required = append(s.Required, required...)
	}

	return s
}

func geminiType(name string) genai.Type {
	switch name {
	case "object":
		return genai.TypeObject
	case "array":
		return genai.TypeArray
	case "string":
		return genai.TypeString
	case "boolean":
		return genai.TypeBoolean
	case "integer":
		return genai.TypeInteger
	case "number":
		return genai.TypeNumber
	default:
		return genai.TypeUnspecified
	}
}
