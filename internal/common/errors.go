// Package common defines shared constants and sentinel errors used across
// the newsdesk service layers. Callers should use errors.Is to match these
// values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound = errors.New("not found")

	// Service-level errors.
	ErrorUnauthorized = errors.New("unauthorized")

	// Validation errors (malformed identifiers, missing required fields).
	ErrorValidation = errors.New("validation error")

	// Auth errors (invalid, malformed or mis-scoped token).
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenScope   = errors.New("token scope mismatch")

	// Token lifecycle errors.
	ErrTokenExpired = errors.New("token expired")
)
