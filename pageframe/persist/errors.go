package persist

import "errors"

// ErrNoBackingArena is returned by Flush when the tracker was attached to a
// registry with no backing bytes to sync (a nil or empty arena).
var ErrNoBackingArena = errors.New("persist: registry has no backing arena to flush")
