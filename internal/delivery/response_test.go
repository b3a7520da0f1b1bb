package delivery

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"catalog_service/internal/domain"
)

func TestStatusFromError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"validation failure", &domain.ValidationError{Fields: map[string]string{"name": "is required"}}, http.StatusBadRequest},
		{"invalid reference", &domain.ReferenceError{Field: "category"}, http.StatusBadRequest},
		{"malformed id", domain.ErrInvalidID, http.StatusBadRequest},
		{"not owned", domain.ErrNotOwned, http.StatusNotFound},
		{"absent", domain.ErrNotFound, http.StatusNotFound},
		{"email taken", domain.ErrEmailTaken, http.StatusConflict},
		{"bad credentials", domain.ErrBadCredentials, http.StatusUnauthorized},
		{"wrapped not owned", fmt.Errorf("delete: %w", domain.ErrNotOwned), http.StatusNotFound},
		{"unknown", errors.New("connection reset"), http.StatusInternalServerError},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, statusFromError(tc.err))
		})
	}
}

func TestNewPagination(t *testing.T) {
	p := NewPagination(2, 10, 25)

	assert.Equal(t, 2, p.CurrentPage)
	assert.Equal(t, 3, p.TotalPages)
	assert.Equal(t, 25, p.TotalItems)
	assert.Equal(t, 10, p.ItemsPerPage)
}

func TestNewPagination_Empty(t *testing.T) {
	p := NewPagination(1, 10, 0)

	assert.Equal(t, 0, p.TotalPages)
	assert.Equal(t, 0, p.TotalItems)
}
