package core

import (
	"errors"
	"fmt"
)

// Domain errors - centralized error definitions
var (
	// Ingestion errors
	ErrDuplicateKey = errors.New("duplicate entity key")
	ErrMissingField = errors.New("required field not present")
	ErrEmptyTable   = errors.New("table has no rows")

	// Preprocessing errors
	ErrImputation = errors.New("imputation failed")

	// Analysis errors
	ErrPrecomputeRequired = errors.New("principal components not computed")
	ErrClusteringLibrary  = errors.New("clustering failure")
)

// Error constructors with context
func NewDuplicateKeyError(key string, row int) error {
	return fmt.Errorf("%w: %q at row %d", ErrDuplicateKey, key, row)
}

func NewMissingFieldError(field string) error {
	return fmt.Errorf("%w: %q", ErrMissingField, field)
}

func NewImputationError(reason string) error {
	return fmt.Errorf("%w: %s", ErrImputation, reason)
}

func NewClusteringError(procedure string, reason string) error {
	return fmt.Errorf("%w: %s: %s", ErrClusteringLibrary, procedure, reason)
}

func WrapClusteringError(procedure string, err error) error {
	return fmt.Errorf("%w: %s: %v", ErrClusteringLibrary, procedure, err)
}

// Error checking helpers
func IsDuplicateKeyError(err error) bool {
	return errors.Is(err, ErrDuplicateKey)
}

func IsImputationError(err error) bool {
	return errors.Is(err, ErrImputation)
}

func IsPrecomputeRequiredError(err error) bool {
	return errors.Is(err, ErrPrecomputeRequired)
}

func IsClusteringError(err error) bool {
	return errors.Is(err, ErrClusteringLibrary)
}
