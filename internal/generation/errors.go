package generation

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/philipposk/ThatJob/internal/types"
)

// InvalidAlignmentError is returned when a request carries an alignment value
// outside the enumerated tiers. Out-of-range values are rejected, never
// clamped to the nearest tier.
type InvalidAlignmentError struct {
	Level types.AlignmentLevel
}

func (e *InvalidAlignmentError) Error() string {
	return fmt.Sprintf("invalid alignment level %d: must be one of 10, 30, 50, 70, 90", int(e.Level))
}

// JobNotFoundError is returned when the referenced job posting does not exist
// or belongs to another user.
type JobNotFoundError struct {
	ID uuid.UUID
}

func (e *JobNotFoundError) Error() string {
	return fmt.Sprintf("job posting %s not found", e.ID)
}

// GenerationError indicates the model failed to produce a usable document.
// A generation never yields silently empty content; it yields this error.
type GenerationError struct {
	Message string
	Cause   error
}

func (e *GenerationError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *GenerationError) Unwrap() error {
	return e.Cause
}
