package domain

import "errors"

// Sentinel errors for the user domain. Use errors.Is() to check these.
var (
	// ErrUserNotFound indicates the requested user profile does not exist.
	ErrUserNotFound = errors.New("user not found")

	// ErrNotProfileOwner indicates the caller tried to modify a profile
	// other than their own.
	ErrNotProfileOwner = errors.New("not the profile owner")
)
