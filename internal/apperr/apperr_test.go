package apperr

import (
	"errors"
	"fmt"
	"testing"
)

func TestConstructorsWrapSentinels(t *testing.T) {
	tests := []struct {
		err      error
		sentinel error
		message  string
	}{
		{NotFound("item %d", 7), ErrNotFound, "item 7: not found"},
		{InvalidState("audit %d is closed", 3), ErrInvalidState, "audit 3 is closed: invalid state"},
		{Validation("name is required"), ErrValidation, "name is required: validation failed"},
		{Conflict("item code %q already exists", "IT-001"), ErrConflict, `item code "IT-001" already exists: conflict`},
	}

	for _, tt := range tests {
		if !errors.Is(tt.err, tt.sentinel) {
			t.Errorf("%v should match %v", tt.err, tt.sentinel)
		}
		if tt.err.Error() != tt.message {
			t.Errorf("message: got %q, want %q", tt.err.Error(), tt.message)
		}
	}
}

func TestCategoriesAreDistinct(t *testing.T) {
	if errors.Is(NotFound("x"), ErrConflict) {
		t.Error("not-found must not match conflict")
	}
	if errors.Is(Validation("x"), ErrInvalidState) {
		t.Error("validation must not match invalid state")
	}
}

func TestDoubleWrapSurvives(t *testing.T) {
	inner := NotFound("item %d", 7)
	outer := fmt.Errorf("scan failed: %w", inner)
	if !errors.Is(outer, ErrNotFound) {
		t.Error("wrapping should preserve the category")
	}
}
