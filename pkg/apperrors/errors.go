// Package apperrors defines sentinel errors shared across the engine.
// Handlers map these onto HTTP status codes at the boundary.
package apperrors

import "errors"

var (
	ErrNotFound         = errors.New("not found")
	ErrConflict         = errors.New("conflict")
	ErrValidation       = errors.New("validation failed")
	ErrUnauthorized     = errors.New("unauthorized")
	ErrGenerationFailed = errors.New("generation failed")
)
