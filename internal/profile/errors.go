package profile

import "fmt"

// ExtractionError indicates the model failed to produce a usable profile
// from a user's materials. It wraps the underlying provider or decode error.
type ExtractionError struct {
	Message string
	Cause   error
}

func (e *ExtractionError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *ExtractionError) Unwrap() error {
	return e.Cause
}
