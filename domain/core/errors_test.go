package core

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestErrorConstructors(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		sentinel error
		contains string
	}{
		{
			name:     "duplicate key",
			err:      NewDuplicateKeyError("ITA", 12),
			sentinel: ErrDuplicateKey,
			contains: `"ITA" at row 12`,
		},
		{
			name:     "missing field",
			err:      NewMissingFieldError("Country Code"),
			sentinel: ErrMissingField,
			contains: `"Country Code"`,
		},
		{
			name:     "imputation",
			err:      NewImputationError("no numeric columns remain"),
			sentinel: ErrImputation,
			contains: "no numeric columns",
		},
		{
			name:     "clustering",
			err:      NewClusteringError("kmeans", "need at least 2 clusters"),
			sentinel: ErrClusteringLibrary,
			contains: "kmeans",
		},
		{
			name:     "wrapped clustering",
			err:      WrapClusteringError("dbscan", fmt.Errorf("library failure")),
			sentinel: ErrClusteringLibrary,
			contains: "dbscan: library failure",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if !errors.Is(tt.err, tt.sentinel) {
				t.Fatalf("expected %v in chain of %v", tt.sentinel, tt.err)
			}
			if !strings.Contains(tt.err.Error(), tt.contains) {
				t.Fatalf("expected %q in %q", tt.contains, tt.err.Error())
			}
		})
	}
}

func TestErrorHelpers(t *testing.T) {
	wrapped := fmt.Errorf("outer: %w", ErrPrecomputeRequired)
	if !IsPrecomputeRequiredError(wrapped) {
		t.Error("helper should see through wrapping")
	}
	if IsClusteringError(wrapped) {
		t.Error("helper matched the wrong sentinel")
	}
	if !IsDuplicateKeyError(NewDuplicateKeyError("X", 1)) {
		t.Error("duplicate key helper failed")
	}
	if !IsImputationError(NewImputationError("reason")) {
		t.Error("imputation helper failed")
	}
}

func TestSessionID(t *testing.T) {
	a, b := NewSessionID(), NewSessionID()
	if a == b {
		t.Fatal("session IDs must be unique")
	}
	if ID(a).IsEmpty() {
		t.Fatal("session ID should not be empty")
	}
}
