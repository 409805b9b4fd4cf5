package ledger

import "errors"

// Standard ledger errors. Callers match them with errors.Is; operations wrap
// them with context about the failing argument.
var (
	// ErrNotFound is returned when a mutation references an unknown trade or
	// trader id.
	ErrNotFound = errors.New("not found")

	// ErrInvalidArgument is returned for non-positive prices or quantities and
	// for close quantities exceeding the remaining quantity.
	ErrInvalidArgument = errors.New("invalid argument")
)
