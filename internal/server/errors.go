package server

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/philipposk/ThatJob/internal/analyze"
	"github.com/philipposk/ThatJob/internal/db"
	"github.com/philipposk/ThatJob/internal/generation"
	"github.com/philipposk/ThatJob/internal/profile"
)

// ErrInvalidCredentials indicates invalid login credentials.
type ErrInvalidCredentials struct{}

func (e *ErrInvalidCredentials) Error() string {
	return "invalid email or password"
}

// ErrValidation indicates request validation failure.
type ErrValidation struct {
	Field   string
	Message string
}

func (e *ErrValidation) Error() string {
	return fmt.Sprintf("validation error: %s - %s", e.Field, e.Message)
}

// HTTPStatus maps a domain error to its HTTP status code.
func HTTPStatus(err error) int {
	var (
		alignErr    *generation.InvalidAlignmentError
		notFound    *generation.JobNotFoundError
		genErr      *generation.GenerationError
		extractErr  *profile.ExtractionError
		analyzeErr  *analyze.Error
		validateErr *ErrValidation
		credsErr    *ErrInvalidCredentials
	)
	switch {
	case errors.As(err, &alignErr), errors.As(err, &validateErr):
		return http.StatusBadRequest
	case errors.As(err, &credsErr):
		return http.StatusUnauthorized
	case errors.As(err, &notFound):
		return http.StatusNotFound
	case errors.Is(err, db.ErrEmailTaken):
		return http.StatusConflict
	case errors.As(err, &genErr), errors.As(err, &extractErr), errors.As(err, &analyzeErr):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
