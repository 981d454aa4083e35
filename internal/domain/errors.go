package domain

import "errors"

// Common domain errors used across the application.
var (
	// ErrValidation is returned when a domain entity fails validation.
	// This is often wrapped with a more specific error message.
	ErrValidation = errors.New("validation failed")

	// ErrInvalidUserName is returned when a user name is empty or too long.
	ErrInvalidUserName = errors.New("invalid user name")

	// ErrInvalidEmail is returned when an email address is malformed.
	ErrInvalidEmail = errors.New("invalid email format")

	// ErrInvalidRoleName is returned when a role name is empty or too long.
	ErrInvalidRoleName = errors.New("invalid role name")

	// ErrEmptyClaimType is returned when a claim has no type.
	ErrEmptyClaimType = errors.New("claim type cannot be empty")

	// ErrInvalidLogin is returned when a login lacks its provider or key.
	ErrInvalidLogin = errors.New("login provider and key are required")
)
