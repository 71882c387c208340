package domain

import "errors"

// Sentinel errors for the auth domain. Use errors.Is() to check these.
var (
	// ErrEmailTaken indicates an account with the same email already exists.
	ErrEmailTaken = errors.New("email already registered")

	// ErrInvalidCredentials indicates an unknown email or a wrong password.
	// Deliberately undifferentiated so responses do not leak which one failed.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrInvalidRefreshToken indicates an expired, revoked, or unknown refresh token.
	ErrInvalidRefreshToken = errors.New("invalid refresh token")

	// ErrAccountNotFound indicates a lookup by ID matched no account.
	ErrAccountNotFound = errors.New("account not found")
)
