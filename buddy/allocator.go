package buddy

import (
	"fmt"
	"io"
	"math"

	"github.com/Redd-Hibb/stacsos/pageframe"
)

// AllocatePages locates or synthesizes a free block of exactly 2^order
// pages and removes it from the free lists.
//
// An out-of-range order or total exhaustion is a recoverable failure:
// AllocatePages returns (nil, ErrOutOfRange) or (nil, ErrNoBlock)
// respectively, never a panic.
func (a *Allocator) AllocatePages(order int, flags AllocFlags) (*pageframe.Page, error) {
	if order < 0 || order > LastOrder {
		return nil, ErrOutOfRange
	}

	chosen := a.iterativeSplit(order)
	if chosen == nil {
		return nil, ErrNoBlock
	}

	a.removeFreeBlock(order, chosen)
	a.totalFree -= pagesPerBlock(order)
	a.stats.AllocCount++
	a.markDirty(chosen.PFN(), pagesPerBlock(order))

	if flags&FlagZero != 0 {
		clear(a.reg.BlockBytes(chosen.PFN(), order))
	}

	return chosen, nil
}

// FreePages returns a previously-allocated block of exactly 2^order pages
// to the allocator, then iteratively merges it with any free buddy.
//
// block must be the exact head of a block previously returned by
// AllocatePages (or InsertFreePages) at this order. Violating that
// contract — an out-of-range order, a misaligned PFN, or a double-free — is
// a fatal error: FreePages panics rather than silently corrupting the free
// lists.
func (a *Allocator) FreePages(block *pageframe.Page, order int) {
	assertf(order >= 0 && order <= LastOrder, "FreePages: order %d out of range", order)
	assertf(blockAligned(order, block.PFN()), "FreePages: pfn %d misaligned for order %d", block.PFN(), order)

	a.insertFreeBlock(order, block)
	a.totalFree += pagesPerBlock(order)
	a.stats.FreeCount++
	a.markDirty(block.PFN(), pagesPerBlock(order))

	a.iterativeMerge(order, block)
}

// InsertFreePages populates the allocator with an arbitrary contiguous run
// of free pages, in three phases designed to avoid repeated O(n) merges:
//
//  1. Prefix-align: consume pages one aligned block at a time (through
//     FreePages, so seams still coalesce) until rangeStart's PFN is
//     LastOrder-aligned.
//  2. Bulk: insert LastOrder blocks directly (no merge is possible, since
//     no larger order exists).
//  3. Suffix: drain the remainder, largest order first (through FreePages
//     again, so it can merge with the immediately-preceding insertion).
func (a *Allocator) InsertFreePages(rangeStart *pageframe.Page, pageCount uint64) {
	if pageCount == 0 {
		return
	}

	pfn := rangeStart.PFN()
	assertf(pageCount <= math.MaxUint64-pfn, "InsertFreePages: range [%d, +%d) overflows", pfn, pageCount)

	order := 0
	lsb := uint64(1)
	for pageCount >= lsb && order < LastOrder {
		if pfn&lsb != 0 {
			a.FreePages(a.reg.GetFromPFN(pfn), order)
			pageCount -= lsb
			pfn += lsb
		}
		lsb <<= 1
		order++
	}

	maxBlockSize := pagesPerBlock(LastOrder)
	for pageCount > maxBlockSize {
		a.insertFreeBlock(LastOrder, a.reg.GetFromPFN(pfn))
		a.totalFree += maxBlockSize
		a.markDirty(pfn, maxBlockSize)
		pageCount -= maxBlockSize
		pfn += maxBlockSize
	}

	// Drain the remainder highest-order-first. The remainder left by the
	// bulk phase can equal maxBlockSize exactly (an already-aligned range
	// whose length is a multiple of it) — testing order LastOrder itself,
	// rather than starting one order below it, is what lets that case
	// still surface a block instead of silently vanishing.
	for order := LastOrder; order >= 0; order-- {
		bit := pagesPerBlock(order)
		if pageCount&bit != 0 {
			a.FreePages(a.reg.GetFromPFN(pfn), order)
			pfn += bit
		}
	}
}

// Dump writes a human-readable listing of every free block, grouped by
// order, in list (ascending PFN) order.
func (a *Allocator) Dump(w io.Writer) {
	fmt.Fprintln(w, "*** buddy page allocator - free list ***")
	for order := 0; order <= LastOrder; order++ {
		fmt.Fprintf(w, "[%02d] ", order)

		blockBytes := pagesPerBlock(order) << a.reg.PageShift()
		for cur := a.freeList[order]; cur != nil; cur = cur.NextFree() {
			base := cur.BaseAddress()
			fmt.Fprintf(w, "%#x--%#x ", base, base+blockBytes-1)
		}
		fmt.Fprintln(w)
	}
}
