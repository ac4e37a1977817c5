package llm

import "fmt"

// ProviderError wraps a failure from a specific provider. The chain surfaces
// the first provider's error when every provider fails, so callers see a
// stable error identity regardless of how many fallbacks were attempted.
type ProviderError struct {
	Provider string
	Cause    error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("provider %s: %v", e.Provider, e.Cause)
}

func (e *ProviderError) Unwrap() error {
	return e.Cause
}

// APIError is an error object returned by an OpenAI-compatible endpoint,
// either with a non-2xx status or embedded in a 200 response body.
type APIError struct {
	StatusCode int
	Type       string `json:"type"`
	Message    string `json:"message"`
	Code       string `json:"code"`
}

func (e *APIError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("api error (status %d): %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("api error: %s", e.Message)
}
