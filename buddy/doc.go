// Package buddy implements a binary buddy page allocator for a kernel's
// physical memory manager.
//
// # Overview
//
// The allocator manages a contiguous population of fixed-size physical page
// frames (provided by package pageframe), organized into power-of-two
// blocks across orders 0 through LastOrder (1 page up to 2^LastOrder pages
// per block). It exposes three operations — InsertFreePages, AllocatePages,
// and FreePages — and preserves the buddy invariant that adjacent free
// buddies of equal order are always coalesced.
//
// # Free Lists
//
// Each order maintains one sorted-by-PFN singly-linked list of free block
// heads. The "next" link for a free block lives inside the block's own
// body (see pageframe.Page.NextFree), so the free-list costs zero auxiliary
// memory. Keeping the lists sorted makes the buddy-merge check O(1): two
// free buddies of the same order are always adjacent in that order's list.
//
// # Failure Semantics
//
// AllocatePages fails softly: an out-of-range order or total exhaustion
// returns an error (ErrOutOfRange, ErrNoBlock), never a panic. FreePages
// and the split/merge internals instead panic on caller or allocator bugs
// (out-of-range order, misaligned PFN, double-insert, remove-missing,
// overflow on insert range) — these indicate corruption that must not be
// silently tolerated.
//
// # Thread Safety
//
// Allocator is NOT goroutine-safe. Callers must serialize access, exactly
// as pageframe.Registry requires of its own callers.
package buddy
