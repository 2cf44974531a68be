package util

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHTTPError(t *testing.T) {
	t.Parallel()

	err := NewHTTPError(http.StatusTeapot, "short and stout")
	assert.Contains(t, err.Error(), "short and stout")
	assert.True(t, IsClientError(err))

	same := NewHTTPError(http.StatusTeapot, "different message")
	assert.ErrorIs(t, err, same)

	other := NewHTTPError(http.StatusBadRequest, "")
	assert.NotErrorIs(t, err, other)
}

func TestStatusFor(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, http.StatusOK},
		{"http error carries status", NewHTTPError(http.StatusConflict, "conflict"), http.StatusConflict},
		{"wrapped http error", WrapError(NewHTTPError(http.StatusForbidden, "no"), "auth"), http.StatusForbidden},
		{"not found", ErrNotFound, http.StatusNotFound},
		{"route not found", NewRouteNotFoundError("GET", "/x"), http.StatusNotFound},
		{"payload too large", ErrPayloadTooLarge, http.StatusRequestEntityTooLarge},
		{"invalid input", NewBodyError("malformed"), http.StatusBadRequest},
		{"timeout", ErrTimeout, http.StatusRequestTimeout},
		{"opaque", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tt.want, StatusFor(tt.err))
		})
	}
}
