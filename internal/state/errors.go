package state

import "errors"

// Domain-specific errors for state lookups.
// Use errors.Is() to check for these errors in calling code.
var (
	// ErrZoneNotFound is returned when no cached zone carries the
	// requested zone number.
	ErrZoneNotFound = errors.New("state: zone not found")

	// ErrInstallationNotFound is returned when no cached installation
	// matches the requested identifier.
	ErrInstallationNotFound = errors.New("state: installation not found")

	// ErrNoData is returned by readers before the first snapshot has
	// been applied.
	ErrNoData = errors.New("state: no installation data yet")
)
