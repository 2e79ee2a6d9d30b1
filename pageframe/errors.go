package pageframe

import "errors"

var (
	// ErrInvalidFrameCount indicates a zero or otherwise unusable frame count was requested.
	ErrInvalidFrameCount = errors.New("pageframe: frame count must be positive")

	// ErrPageShiftTooSmall indicates a page shift too small to hold the intrusive free-list link.
	ErrPageShiftTooSmall = errors.New("pageframe: page shift must be large enough for an 8-byte link")

	// ErrBackingUnavailable indicates the requested backing store could not be created.
	ErrBackingUnavailable = errors.New("pageframe: backing store unavailable")

	errMmapUnsupported = errors.New("pageframe: mmap backing not supported on this platform")
)
