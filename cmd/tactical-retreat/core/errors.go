package core

import "errors"

// Recoverable conditions. None of these are allowed to take the host down;
// the worst outcome is the feature behaving as disabled for one engagement.
var (
	// ErrConfigurationUnavailable means the settings source could not be
	// read. Callers substitute DefaultSettings.
	ErrConfigurationUnavailable = errors.New("configuration unavailable")

	// ErrSpeedUnreadable means a unit's authoritative burn level was missing
	// or out of range. The hull-size estimate is used instead.
	ErrSpeedUnreadable = errors.New("speed unreadable")

	// ErrReleaseTargetMissing means the reserve pool refused a released
	// unit. The unit is still marked released.
	ErrReleaseTargetMissing = errors.New("release target missing")
)

// Integration errors. These indicate the engagement lifecycle is wired
// incorrectly and are always returned to the caller.
var (
	ErrInvalidStateTransition = errors.New("invalid state transition")
	ErrNegativeDelta          = errors.New("negative time delta")
)

// Reserve pool errors
var (
	ErrUnitNotFound  = errors.New("unit not in reserve")
	ErrDuplicateUnit = errors.New("unit already in reserve")
	ErrUnitLost      = errors.New("unit no longer exists")
)
