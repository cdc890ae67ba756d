package auth

import (
	"errors"
	"testing"
)

func TestAssertOwner(t *testing.T) {
	if err := AssertOwner("user-1", "user-1"); err != nil {
		t.Fatalf("same identity should pass: %v", err)
	}

	if err := AssertOwner("user-2", "user-1"); !errors.Is(err, ErrNotOwner) {
		t.Fatalf("expected ErrNotOwner got %v", err)
	}

	// An unresolved acting identity never owns anything, not even a resource
	// whose owner field is itself empty.
	if err := AssertOwner("", ""); !errors.Is(err, ErrNotOwner) {
		t.Fatalf("expected ErrNotOwner for empty ids got %v", err)
	}
}
