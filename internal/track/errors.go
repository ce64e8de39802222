package track

import "errors"

// All of these signal caller misuse. None are retried or recovered from;
// they propagate to the caller as hard failures.
var (
	// ErrNestedBatch reports BeginBatch while a batch is already active.
	ErrNestedBatch = errors.New("nested batch")

	// ErrAlreadyTracked reports AttachTracker on a buffer that already
	// has a tracker.
	ErrAlreadyTracked = errors.New("buffer already has a tracker")

	// ErrOrder reports tracker/peer setup calls in the wrong order.
	ErrOrder = errors.New("tracker must be attached before peer views are created")

	// ErrUnsupportedOperation reports an Apply call with an operation
	// kind other than insert, delete or replace.
	ErrUnsupportedOperation = errors.New("unsupported operation")
)
