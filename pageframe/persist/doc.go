// Package persist tracks which byte ranges of a pageframe.Registry's arena
// have been modified by allocator activity, and flushes them to a
// backing file with msync.
//
// A Tracker implements buddy.DirtyTracker: attach it to an Allocator with
// buddy.WithDirtyTracker, and every split, merge, alloc, and free reports
// the pages it touched. Flush later coalesces the accumulated ranges and
// syncs each one, so a crash between flushes loses at most the pages
// touched since the last call.
//
// WARNING: Tracker is NOT goroutine-safe.
package persist
