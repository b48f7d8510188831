package apperror

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Kind
	}{
		{"plain error", errors.New("boom"), KindInternal},
		{"not found", NotFound("Request not found"), KindNotFound},
		{"wrapped conflict", fmt.Errorf("create department: %w", Conflict(`Department "HR" already exists`)), KindConflict},
		{"invalid state", InvalidState("Can only delete pending requests"), KindInvalidState},
		{"forbidden", Forbidden("Unauthorized"), KindForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, KindOf(tt.err))
		})
	}
}

func TestErrorMessageAndUnwrap(t *testing.T) {
	cause := errors.New("connection refused")
	err := Internal("load request", cause)

	assert.Equal(t, "load request: connection refused", err.Error())
	assert.ErrorIs(t, err, cause)
	assert.True(t, Is(err, KindInternal))
	assert.False(t, Is(err, KindNotFound))
}

func TestWithCode(t *testing.T) {
	err := NotFound("Department not found").WithCode(103000)
	assert.Equal(t, 103000, err.Code)
	assert.Equal(t, "not_found", err.Kind.String())
}
