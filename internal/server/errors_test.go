package server

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/philipposk/ThatJob/internal/db"
	"github.com/philipposk/ThatJob/internal/generation"
	"github.com/philipposk/ThatJob/internal/profile"
)

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"invalid alignment", &generation.InvalidAlignmentError{Level: 60}, http.StatusBadRequest},
		{"validation", &ErrValidation{Field: "email", Message: "required"}, http.StatusBadRequest},
		{"bad credentials", &ErrInvalidCredentials{}, http.StatusUnauthorized},
		{"job not found", &generation.JobNotFoundError{ID: uuid.New()}, http.StatusNotFound},
		{"email taken", db.ErrEmailTaken, http.StatusConflict},
		{"wrapped email taken", fmt.Errorf("register: %w", db.ErrEmailTaken), http.StatusConflict},
		{"generation failure", &generation.GenerationError{Message: "model unavailable"}, http.StatusBadGateway},
		{"extraction failure", &profile.ExtractionError{Message: "model unavailable"}, http.StatusBadGateway},
		{"unknown", errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, HTTPStatus(tt.err))
		})
	}
}
