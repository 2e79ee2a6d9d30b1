package buddy

import "errors"

var (
	// ErrOutOfRange is returned by AllocatePages when the requested order is
	// outside [0, LastOrder].
	ErrOutOfRange = errors.New("buddy: order out of range")

	// ErrNoBlock is returned by AllocatePages when no block of a suitable
	// order could be located or synthesized by splitting.
	ErrNoBlock = errors.New("buddy: no free block available")
)
