// Package common defines shared constants and sentinel errors used across
// the MindSpend client layers. Callers should use errors.Is to match these
// values.
package common

import "errors"

var (
	// Collaborator-reported errors, folded at the API client boundary.
	ErrNotFound           = errors.New("not found")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrAlreadyExists      = errors.New("already exists")
	ErrUnavailable        = errors.New("service unavailable")

	// Local precondition failures, short-circuited before any network call.
	ErrNotAuthenticated = errors.New("not authenticated")
	ErrTooManyAttempts  = errors.New("too many attempts")

	// Session-flow errors.
	ErrPasswordVerification = errors.New("current password verification failed")
	ErrNoPendingRegistration = errors.New("no pending registration")
)
