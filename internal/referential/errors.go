package referential

import "errors"

// Domain-specific errors for referential translation.
// Use errors.Is() to check for these errors in calling code.
var (
	// ErrTableUnavailable is returned when a command requires index
	// translation but no referential table has been received yet.
	ErrTableUnavailable = errors.New("referential: table not yet available")

	// ErrBadPayload is returned when a referential payload cannot be
	// decompressed or parsed. The previous table, if any, stays in place.
	ErrBadPayload = errors.New("referential: malformed payload")
)
