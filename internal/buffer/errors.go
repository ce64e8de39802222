package buffer

import "errors"

// Position and range validation failures. Both signal caller bugs, not
// recoverable conditions.
var (
	// ErrOutOfRange reports a position outside the buffer's content bounds.
	ErrOutOfRange = errors.New("position out of range")

	// ErrInvalidRange reports a malformed range (start after end).
	ErrInvalidRange = errors.New("invalid range")
)
