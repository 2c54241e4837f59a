// Package common defines shared sentinel errors and small helpers used across
// the jobkeeper client layers. Callers should use errors.Is to match these
// values.
package common

import "errors"

var (
	// Repository/service lookups.
	ErrNotFound = errors.New("not found")

	// Validation errors.
	ErrValidation = errors.New("validation error")
)
