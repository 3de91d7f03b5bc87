package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatusOf(t *testing.T) {
	tests := []struct {
		kind Kind
		want int
	}{
		{KindValidation, http.StatusBadRequest},
		{KindUnauthorized, http.StatusUnauthorized},
		{KindForbidden, http.StatusForbidden},
		{KindNotFound, http.StatusNotFound},
		{KindConflict, http.StatusConflict},
		{KindInvalidState, http.StatusUnprocessableEntity},
		{KindInternal, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(string(tt.kind), func(t *testing.T) {
			assert.Equal(t, tt.want, StatusOf(New(tt.kind, "boom")))
		})
	}
}

func TestStatusOfPlainError(t *testing.T) {
	assert.Equal(t, http.StatusInternalServerError, StatusOf(errors.New("boom")))
}

func TestKindOfWrapped(t *testing.T) {
	inner := New(KindConflict, "already exists")
	wrapped := fmt.Errorf("creating user: %w", inner)
	assert.Equal(t, KindConflict, KindOf(wrapped))
	assert.Equal(t, http.StatusConflict, StatusOf(wrapped))
}

func TestMessageOf(t *testing.T) {
	assert.Equal(t, "squad is full", MessageOf(New(KindConflict, "squad is full")))
	assert.Equal(t, "internal server error", MessageOf(errors.New("pq: connection refused")))
	assert.Equal(t, "internal server error", MessageOf(Internal(errors.New("pq: connection refused"))))
}

func TestUnwrap(t *testing.T) {
	cause := errors.New("row not found")
	err := Wrap(KindNotFound, "user not found", cause)
	assert.True(t, errors.Is(err, cause))
}
