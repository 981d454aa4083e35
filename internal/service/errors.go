package service

import "errors"

// Service errors - sentinel errors used across the managers.
// Callers check for them with errors.Is().
var (
	// ErrStoresNotRegistered is returned by Registry.NewScope when no store
	// factories were installed for the key type.
	ErrStoresNotRegistered = errors.New("identity stores not registered")

	// ErrLockoutNotEnabled is returned when lockout policy is applied to a
	// user whose lockout is disabled.
	ErrLockoutNotEnabled = errors.New("lockout is not enabled for this user")
)
