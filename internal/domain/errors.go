package domain

import "errors"

var (
	// ErrNotFound marks lookups whose subject does not exist. Distinct
	// from ErrInvalidInput: a well-formed ID with no matching row is
	// not a caller mistake.
	ErrNotFound = errors.New("record not found")

	// ErrInvalidInput marks caller mistakes: malformed IDs, bad date
	// ranges, uncompilable screen expressions.
	ErrInvalidInput = errors.New("invalid input")
)
