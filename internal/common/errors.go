// Package common defines shared sentinel errors and small helpers used across
// the jobkeeper client layers. Callers should use errors.Is to match these
// values.
package common

import "errors"

var (
	// Identity errors. Expected, user-facing outcomes.
	ErrAlreadyRegistered  = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrNotAuthenticated   = errors.New("not authenticated")

	// Persistence errors. Always caught at the service boundary.
	ErrPersistenceRead  = errors.New("persistence read failure")
	ErrPersistenceWrite = errors.New("persistence write failure")

	// Remote feed errors.
	ErrMalformedFeed   = errors.New("malformed remote feed")
	ErrFeedUnavailable = errors.New("remote feed unavailable")

	// Ledger errors.
	ErrAlreadyApplied = errors.New("already applied to this job")
	ErrNotFound       = errors.New("not found")
)
