package services

import "errors"

// Sentinel errors mapped to the HTTP taxonomy at the request boundary.
var (
	// ErrNotFound covers both a missing row and a row owned by someone
	// else, so ownership mismatch is indistinguishable from non-existence.
	ErrNotFound = errors.New("not found")

	ErrEmailTaken = errors.New("email already registered")

	// ErrInvalidCredentials is returned for unknown users and wrong
	// passwords alike to prevent user enumeration.
	ErrInvalidCredentials = errors.New("authentication failed")

	ErrAccountDisabled = errors.New("account disabled")
)
