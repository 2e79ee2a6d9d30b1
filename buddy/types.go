package buddy

import "github.com/Redd-Hibb/stacsos/pageframe"

// LastOrder is the maximum supported block order: a block at LastOrder
// spans 2^LastOrder pages.
const LastOrder = 16

// AllocFlags controls optional behavior of AllocatePages. Flags are
// bitwise-combinable; only FlagZero currently has a defined effect.
type AllocFlags uint8

const (
	// FlagNone requests no special behavior.
	FlagNone AllocFlags = 0

	// FlagZero requests that the returned block's body be zero-filled
	// before AllocatePages returns.
	FlagZero AllocFlags = 1 << 0
)

// DirtyTracker is notified whenever the allocator mutates the bytes backing
// a block's free-list metadata. It exists purely for durability bookkeeping
// (see package pageframe/persist) — the allocator's own correctness never
// depends on it, and a nil DirtyTracker is the common case.
type DirtyTracker interface {
	// MarkDirty records that pageCount pages starting at pfn have changed.
	MarkDirty(pfn uint64, pageCount uint64)
}

// Stats holds diagnostic counters accumulated by an Allocator. They never
// influence allocation decisions.
type Stats struct {
	// TotalFree is the current number of free pages across all orders.
	TotalFree uint64

	AllocCount uint64
	FreeCount  uint64
	SplitCount uint64
	MergeCount uint64
}

// Allocator is a binary buddy page allocator over the frames of a single
// pageframe.Registry.
//
// WARNING: Allocator is NOT goroutine-safe.
type Allocator struct {
	reg   *pageframe.Registry
	dirty DirtyTracker

	freeList [LastOrder + 1]*pageframe.Page

	totalFree uint64
	stats     Stats
}

// Option configures an Allocator at construction time.
type Option func(*Allocator)

// WithDirtyTracker attaches a DirtyTracker that is notified on every block
// mutation (split, merge, alloc, free, and raw bulk insert).
func WithDirtyTracker(t DirtyTracker) Option {
	return func(a *Allocator) {
		a.dirty = t
	}
}

// WithRestoredState reconstructs an Allocator's free lists and counters from
// a previous snapshot, letting a caller reopen a registry backed by
// persistent storage without replaying every AllocatePages/FreePages call
// that produced its state. heads holds one PFN per order, or -1 for an
// empty order.
func WithRestoredState(totalFree uint64, stats Stats, heads [LastOrder + 1]int64) Option {
	return func(a *Allocator) {
		a.totalFree = totalFree
		a.stats = stats
		for order, pfn := range heads {
			if pfn >= 0 {
				a.freeList[order] = a.reg.GetFromPFN(uint64(pfn))
			}
		}
	}
}

// FreeListHeads returns the head PFN of each order's free list, or -1 for an
// empty order. It is the counterpart to WithRestoredState, letting a caller
// snapshot the allocator's structure for later reopening.
func (a *Allocator) FreeListHeads() [LastOrder + 1]int64 {
	var heads [LastOrder + 1]int64
	for order, head := range a.freeList {
		if head == nil {
			heads[order] = -1
		} else {
			heads[order] = int64(head.PFN())
		}
	}
	return heads
}

// NewAllocator creates an empty Allocator over reg. It holds no free pages
// until InsertFreePages is called.
func NewAllocator(reg *pageframe.Registry, opts ...Option) *Allocator {
	a := &Allocator{reg: reg}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// pagesPerBlock returns the number of pages spanned by a block of the given
// order.
func pagesPerBlock(order int) uint64 {
	return uint64(1) << uint(order)
}

// blockAligned reports whether pfn is a legal start for a block of the
// given order, i.e. pfn is a multiple of 2^order.
func blockAligned(order int, pfn uint64) bool {
	return pfn&(pagesPerBlock(order)-1) == 0
}

// markDirty forwards to the attached DirtyTracker, if any.
func (a *Allocator) markDirty(pfn uint64, pageCount uint64) {
	if a.dirty != nil {
		a.dirty.MarkDirty(pfn, pageCount)
	}
}

// Stats returns a snapshot of the allocator's diagnostic counters.
func (a *Allocator) Stats() Stats {
	s := a.stats
	s.TotalFree = a.totalFree
	return s
}

// FreeBlockCounts returns, for each order, the number of free blocks
// currently on that order's list.
func (a *Allocator) FreeBlockCounts() [LastOrder + 1]int {
	var counts [LastOrder + 1]int
	for order, head := range a.freeList {
		for cur := head; cur != nil; cur = cur.NextFree() {
			counts[order]++
		}
	}
	return counts
}
