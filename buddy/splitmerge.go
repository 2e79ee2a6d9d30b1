package buddy

import "github.com/Redd-Hibb/stacsos/pageframe"

// buddyOf returns the buddy of block at the given order: the block at the
// same order whose PFN differs from block's by exactly the order's block
// size.
func (a *Allocator) buddyOf(order int, block *pageframe.Page) *pageframe.Page {
	return a.reg.GetFromPFN(block.PFN() ^ pagesPerBlock(order))
}

// splitBlock removes block from order n and inserts the two order-(n-1)
// buddies it divides into.
func (a *Allocator) splitBlock(order int, block *pageframe.Page) {
	assertf(order > 0, "splitBlock: order %d must be > 0", order)

	a.removeFreeBlock(order, block)

	next := a.reg.GetFromPFN(block.PFN() + pagesPerBlock(order-1))
	a.insertBuddies(order-1, block, next)

	a.stats.SplitCount++
	a.markDirty(block.PFN(), pagesPerBlock(order))
}

// mergeBuddies checks whether block's buddy at the given order is also
// free, and if so coalesces them into a single order-(n+1) block. It
// returns the merged block's head, or nil if no merge occurred.
//
// The check is O(1): because each order's free list is sorted by PFN, two
// free buddies are always adjacent, so "first.NextFree() == second" is
// exactly the condition "the buddy is free at the same order".
func (a *Allocator) mergeBuddies(order int, block *pageframe.Page) *pageframe.Page {
	assertf(order >= 0 && order < LastOrder, "mergeBuddies: order %d out of range", order)

	buddy := a.buddyOf(order, block)

	first, second := block, buddy
	if buddy.PFN() < block.PFN() {
		first, second = buddy, block
	}

	if first.NextFree() != second {
		return nil
	}

	a.removeBuddies(order, first)
	a.insertFreeBlock(order+1, first)

	a.stats.MergeCount++
	a.markDirty(first.PFN(), pagesPerBlock(order+1))

	return first
}

// iterativeSplit locates or synthesizes a free block at targetOrder: if the
// order's list is already nonempty, its head is used directly; otherwise
// the smallest higher order with a nonempty list is split down one order at
// a time. It returns nil if no order up to LastOrder has any free block.
//
// Splitting is iterative, not recursive, to bound stack depth.
func (a *Allocator) iterativeSplit(targetOrder int) *pageframe.Page {
	assertf(targetOrder >= 0 && targetOrder <= LastOrder, "iterativeSplit: order %d out of range", targetOrder)

	if a.freeList[targetOrder] != nil {
		return a.freeList[targetOrder]
	}

	order := targetOrder + 1
	for order <= LastOrder && a.freeList[order] == nil {
		order++
	}
	if order > LastOrder {
		return nil
	}

	for order > targetOrder {
		a.splitBlock(order, a.freeList[order])
		order--
	}
	return a.freeList[targetOrder]
}

// iterativeMerge repeatedly merges block with its buddy, walking up through
// orders, until a merge fails or LastOrder is reached.
//
// Merging is iterative, not recursive, to bound stack depth.
func (a *Allocator) iterativeMerge(order int, block *pageframe.Page) {
	for block != nil && order < LastOrder {
		block = a.mergeBuddies(order, block)
		order++
	}
}
