package buddy

import "github.com/Redd-Hibb/stacsos/pageframe"

// insertFreeBlock inserts block into the order-n free list, keeping the
// list sorted by ascending PFN.
//
// The list is deliberately kept sorted so that two free buddies always sit
// adjacent in their order's list — this is what makes the merge check in
// mergeBuddies O(1) instead of requiring a scan.
func (a *Allocator) insertFreeBlock(order int, block *pageframe.Page) {
	assertf(order >= 0 && order <= LastOrder, "insertFreeBlock: order %d out of range", order)
	assertf(blockAligned(order, block.PFN()), "insertFreeBlock: pfn %d misaligned for order %d", block.PFN(), order)

	var prev *pageframe.Page
	cur := a.freeList[order]
	for cur != nil && cur.PFN() < block.PFN() {
		prev = cur
		cur = cur.NextFree()
	}
	assertf(cur != block, "insertFreeBlock: double insert of pfn %d at order %d", block.PFN(), order)

	block.SetNextFree(cur)
	if prev == nil {
		a.freeList[order] = block
	} else {
		prev.SetNextFree(block)
	}
}

// removeFreeBlock removes block from the order-n free list.
func (a *Allocator) removeFreeBlock(order int, block *pageframe.Page) {
	assertf(order >= 0 && order <= LastOrder, "removeFreeBlock: order %d out of range", order)
	assertf(blockAligned(order, block.PFN()), "removeFreeBlock: pfn %d misaligned for order %d", block.PFN(), order)

	var prev *pageframe.Page
	cur := a.freeList[order]
	for cur != nil && cur != block {
		prev = cur
		cur = cur.NextFree()
	}
	assertf(cur == block, "removeFreeBlock: pfn %d not present at order %d", block.PFN(), order)

	if prev == nil {
		a.freeList[order] = block.NextFree()
	} else {
		prev.SetNextFree(block.NextFree())
	}
	block.SetNextFree(nil)
}

// insertBuddies inserts an adjacent pair of buddies into the order-n free
// list in one pass, keeping first immediately before second. first must
// have the lower PFN.
func (a *Allocator) insertBuddies(order int, first, second *pageframe.Page) {
	assertf(order >= 0 && order <= LastOrder, "insertBuddies: order %d out of range", order)
	assertf(blockAligned(order, first.PFN()), "insertBuddies: pfn %d misaligned for order %d", first.PFN(), order)
	assertf(blockAligned(order, second.PFN()), "insertBuddies: pfn %d misaligned for order %d", second.PFN(), order)

	var prev *pageframe.Page
	cur := a.freeList[order]
	for cur != nil && cur.PFN() < first.PFN() {
		prev = cur
		cur = cur.NextFree()
	}
	assertf(cur != first && cur != second, "insertBuddies: double insert at pfn %d/%d order %d", first.PFN(), second.PFN(), order)

	first.SetNextFree(second)
	second.SetNextFree(cur)
	if prev == nil {
		a.freeList[order] = first
	} else {
		prev.SetNextFree(first)
	}
}

// removeBuddies removes an adjacent pair of buddies from the order-n free
// list, given the lower-PFN member of the pair. It asserts that the pair is
// actually adjacent in the list, i.e. both buddies are currently free.
func (a *Allocator) removeBuddies(order int, first *pageframe.Page) {
	assertf(order >= 0 && order <= LastOrder, "removeBuddies: order %d out of range", order)
	assertf(blockAligned(order, first.PFN()), "removeBuddies: pfn %d misaligned for order %d", first.PFN(), order)

	var prev *pageframe.Page
	cur := a.freeList[order]
	for cur != nil && cur != first {
		prev = cur
		cur = cur.NextFree()
	}
	assertf(cur == first, "removeBuddies: pfn %d not present at order %d", first.PFN(), order)

	second := first.NextFree()
	assertf(second != nil, "removeBuddies: pfn %d has no adjacent buddy at order %d", first.PFN(), order)
	assertf(blockAligned(order, second.PFN()), "removeBuddies: buddy pfn %d misaligned for order %d", second.PFN(), order)
	assertf(second.PFN() == first.PFN()+pagesPerBlock(order), "removeBuddies: pfn %d follows pfn %d but is not its buddy at order %d", second.PFN(), first.PFN(), order)

	if prev == nil {
		a.freeList[order] = second.NextFree()
	} else {
		prev.SetNextFree(second.NextFree())
	}
	second.SetNextFree(nil)
	first.SetNextFree(nil)
}
