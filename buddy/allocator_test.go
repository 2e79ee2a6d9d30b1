package buddy

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Redd-Hibb/stacsos/pageframe"
)

// newTestAllocator builds an Allocator over a registry with frameCount
// frames and a small synthetic page size, just large enough to hold the
// intrusive free-list link.
func newTestAllocator(t testing.TB, frameCount uint64) (*Allocator, *pageframe.Registry) {
	t.Helper()
	reg, err := pageframe.New(frameCount, pageframe.WithPageShift(6))
	require.NoError(t, err)
	return NewAllocator(reg), reg
}

func TestAllocatePages_OutOfRangeOrderReturnsNil(t *testing.T) {
	a, _ := newTestAllocator(t, 8)

	p, err := a.AllocatePages(-1, FlagNone)
	require.Nil(t, p)
	require.ErrorIs(t, err, ErrOutOfRange)

	p, err = a.AllocatePages(LastOrder+1, FlagNone)
	require.Nil(t, p)
	require.ErrorIs(t, err, ErrOutOfRange)

	require.Zero(t, a.Stats().AllocCount, "an out-of-range request must not be counted as an allocation")
}

func TestAllocatePages_ExhaustionReturnsNil(t *testing.T) {
	// Frame count is padded past the single inserted page so that the
	// merge attempt InsertFreePages triggers can resolve its buddy's PFN
	// (an untouched, never-freed frame) without going out of range.
	a, reg := newTestAllocator(t, 4)
	a.InsertFreePages(reg.GetFromPFN(0), 1)

	first, err := a.AllocatePages(0, FlagNone)
	require.NoError(t, err)
	require.Equal(t, uint64(0), first.PFN())

	second, err := a.AllocatePages(0, FlagNone)
	require.Nil(t, second)
	require.ErrorIs(t, err, ErrNoBlock)
}

func TestCascadeSplit(t *testing.T) {
	frameCount := uint64(1) << LastOrder
	a, reg := newTestAllocator(t, frameCount)
	a.InsertFreePages(reg.GetFromPFN(0), frameCount)

	p, err := a.AllocatePages(0, FlagNone)
	require.NoError(t, err)
	require.Equal(t, uint64(0), p.PFN())

	for order := 0; order < LastOrder; order++ {
		require.NotNilf(t, a.freeList[order], "expected a free block at order %d", order)
		require.Equal(t, uint64(1)<<uint(order), a.freeList[order].PFN())
		require.Nil(t, a.freeList[order].NextFree(), "order %d should hold exactly one block", order)
	}
	require.Nil(t, a.freeList[LastOrder], "order LastOrder must be fully drained by the cascade split")
}

func TestExactMerge_ReversesCascadeSplit(t *testing.T) {
	frameCount := uint64(1) << LastOrder
	a, reg := newTestAllocator(t, frameCount)
	a.InsertFreePages(reg.GetFromPFN(0), frameCount)

	p, err := a.AllocatePages(0, FlagNone)
	require.NoError(t, err)

	a.FreePages(p, 0)

	for order := 0; order < LastOrder; order++ {
		require.Nilf(t, a.freeList[order], "order %d should be empty after the merge cascades", order)
	}
	require.NotNil(t, a.freeList[LastOrder])
	require.Equal(t, uint64(0), a.freeList[LastOrder].PFN())
	require.Nil(t, a.freeList[LastOrder].NextFree())
}

func TestUnalignedInsertion(t *testing.T) {
	a, reg := newTestAllocator(t, 16)
	a.InsertFreePages(reg.GetFromPFN(3), 7)

	require.NotNil(t, a.freeList[0])
	require.Equal(t, uint64(3), a.freeList[0].PFN())
	require.Nil(t, a.freeList[0].NextFree())

	require.NotNil(t, a.freeList[1])
	require.Equal(t, uint64(8), a.freeList[1].PFN())
	require.Nil(t, a.freeList[1].NextFree())

	require.NotNil(t, a.freeList[2])
	require.Equal(t, uint64(4), a.freeList[2].PFN())
	require.Nil(t, a.freeList[2].NextFree())

	require.Nil(t, a.freeList[3])

	assertInvariants(t, a)
}

func TestOverLastOrderRange(t *testing.T) {
	frameCount := uint64(3) << LastOrder
	a, reg := newTestAllocator(t, frameCount)
	a.InsertFreePages(reg.GetFromPFN(0), frameCount)

	require.NotNil(t, a.freeList[LastOrder])
	var pfns []uint64
	for cur := a.freeList[LastOrder]; cur != nil; cur = cur.NextFree() {
		pfns = append(pfns, cur.PFN())
	}
	require.Equal(t, []uint64{0, 1 << LastOrder, 2 << LastOrder}, pfns)

	for order := 0; order < LastOrder; order++ {
		require.Nilf(t, a.freeList[order], "order %d must be empty for an exact multiple of the max block size", order)
	}
}

func TestZeroFlag_ZeroesDirtyMemory(t *testing.T) {
	// Padded past the inserted range for the same reason as the exhaustion
	// test above: freeing the order-2 block probes its buddy's PFN.
	a, reg := newTestAllocator(t, 8)
	a.InsertFreePages(reg.GetFromPFN(0), 4)

	dirty, err := a.AllocatePages(2, FlagNone)
	require.NoError(t, err)
	block := reg.BlockBytes(dirty.PFN(), 2)
	for i := range block {
		block[i] = 0xFF
	}
	a.FreePages(dirty, 2)

	clean, err := a.AllocatePages(2, FlagZero)
	require.NoError(t, err)
	for _, b := range reg.BlockBytes(clean.PFN(), 2) {
		require.Zero(t, b)
	}
}

func TestFreeBothBuddies_EitherOrder_MergesToParent(t *testing.T) {
	t.Run("merge-triggered-from-lower-pfn", func(t *testing.T) {
		a, reg := newTestAllocator(t, 4)
		first := reg.GetFromPFN(0)
		second := reg.GetFromPFN(1)

		a.insertFreeBlock(0, first)
		a.insertFreeBlock(0, second)
		a.iterativeMerge(0, first)

		require.Nil(t, a.freeList[0])
		require.NotNil(t, a.freeList[1])
		require.Equal(t, uint64(0), a.freeList[1].PFN())
	})

	t.Run("merge-triggered-from-higher-pfn", func(t *testing.T) {
		a, reg := newTestAllocator(t, 4)
		first := reg.GetFromPFN(0)
		second := reg.GetFromPFN(1)

		a.insertFreeBlock(0, first)
		a.insertFreeBlock(0, second)
		a.iterativeMerge(0, second)

		require.Nil(t, a.freeList[0])
		require.NotNil(t, a.freeList[1])
		require.Equal(t, uint64(0), a.freeList[1].PFN())
	})
}

func TestInsertFreePages_ZeroCountIsNoOp(t *testing.T) {
	a, reg := newTestAllocator(t, 8)
	a.InsertFreePages(reg.GetFromPFN(0), 0)

	for order := 0; order <= LastOrder; order++ {
		require.Nil(t, a.freeList[order])
	}
	require.Zero(t, a.Stats().TotalFree)
}

func TestDump_ListsFreeBlockExtents(t *testing.T) {
	a, reg := newTestAllocator(t, 4)
	a.InsertFreePages(reg.GetFromPFN(0), 2)

	var buf bytes.Buffer
	a.Dump(&buf)

	require.Contains(t, buf.String(), "*** buddy page allocator - free list ***")
	require.Contains(t, buf.String(), "[01] 0x0--0x7f")
}

func TestFreePages_MisalignedBlockPanics(t *testing.T) {
	a, reg := newTestAllocator(t, 8)
	require.Panics(t, func() {
		a.FreePages(reg.GetFromPFN(1), 1)
	})
}

func TestFreePages_OutOfRangeOrderPanics(t *testing.T) {
	a, reg := newTestAllocator(t, 8)
	require.Panics(t, func() {
		a.FreePages(reg.GetFromPFN(0), LastOrder+1)
	})
}

// assertInvariants checks the universal free-list invariants against a's
// current state.
func assertInvariants(t testing.TB, a *Allocator) {
	t.Helper()
	seen := map[uint64]bool{}
	for order := 0; order <= LastOrder; order++ {
		var lastPFN uint64
		first := true
		for cur := a.freeList[order]; cur != nil; cur = cur.NextFree() {
			require.Truef(t, blockAligned(order, cur.PFN()), "pfn %d not aligned to order %d", cur.PFN(), order)
			require.Falsef(t, seen[cur.PFN()], "pfn %d appears in more than one free block", cur.PFN())
			seen[cur.PFN()] = true
			if !first {
				require.Greaterf(t, cur.PFN(), lastPFN, "order %d list is not strictly ascending", order)
			}
			if order < LastOrder {
				buddyPFN := cur.PFN() ^ pagesPerBlock(order)
				if next := cur.NextFree(); next != nil {
					require.NotEqualf(t, buddyPFN, next.PFN(), "adjacent free buddies at order %d were not coalesced", order)
				}
			}
			lastPFN = cur.PFN()
			first = false
		}
	}
}
