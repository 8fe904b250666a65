package api

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/lionscraft/docpythia/pkg/services"
)

func TestMapServiceError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code int
	}{
		{"not found", services.ErrNotFound, http.StatusNotFound},
		{"frozen", services.ErrFrozen, http.StatusConflict},
		{"already exists", services.ErrAlreadyExists, http.StatusConflict},
		{"invalid input", services.ErrInvalidInput, http.StatusBadRequest},
		{"validation error", services.NewValidationError("page", "required"), http.StatusBadRequest},
		{"unknown error", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			he := mapServiceError(tt.err)
			assert.Equal(t, tt.code, he.Code)
		})
	}
}
