package classify

import "fmt"

// RateLimitError marks a provider 429 so the Analyzer can distinguish
// retryable throttling from permanent failures.
type RateLimitError struct {
	Provider string
	Message  string
}

func (e *RateLimitError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("%s: rate limit exceeded (429)", e.Provider)
	}
	return fmt.Sprintf("%s: rate limit exceeded (429): %s", e.Provider, e.Message)
}
