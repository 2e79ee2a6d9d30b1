package persist

import (
	"context"
	"sort"

	"github.com/Redd-Hibb/stacsos/pageframe"
)

// defaultRangeCapacity is the pre-allocated capacity for dirty ranges,
// sized for a typical burst of allocator activity between flushes.
const defaultRangeCapacity = 64

// byteRange is a dirty span of the registry's arena, in absolute byte
// offsets.
type byteRange struct {
	off uint64
	len uint64
}

// Tracker accumulates page ranges reported dirty by an allocator and
// flushes them to reg's backing arena with msync.
//
// NOT thread-safe. Only one goroutine should use a Tracker at a time.
type Tracker struct {
	reg    *pageframe.Registry
	ranges []byteRange
}

// NewTracker creates a Tracker over reg. It satisfies buddy.DirtyTracker, so
// it can be passed directly to buddy.WithDirtyTracker.
func NewTracker(reg *pageframe.Registry) *Tracker {
	return &Tracker{
		reg:    reg,
		ranges: make([]byteRange, 0, defaultRangeCapacity),
	}
}

// MarkDirty records that pageCount pages starting at pfn have changed. It
// only appends to a slice and never touches the arena itself.
func (t *Tracker) MarkDirty(pfn uint64, pageCount uint64) {
	pageSize := t.reg.PageSize()
	t.ranges = append(t.ranges, byteRange{
		off: pfn * pageSize,
		len: pageCount * pageSize,
	})
}

// Reset discards all tracked ranges without flushing them.
func (t *Tracker) Reset() {
	t.ranges = t.ranges[:0]
}

// PendingRanges reports how many dirty ranges are queued for the next
// Flush, before coalescing.
func (t *Tracker) PendingRanges() int {
	return len(t.ranges)
}

// Flush coalesces the accumulated dirty ranges into a minimal set of
// non-overlapping spans and syncs each one to the registry's backing store.
//
// The context is checked between ranges; if it is cancelled mid-flush, some
// ranges may already be synced while others are not, and the unflushed
// ranges remain queued for the next call.
func (t *Tracker) Flush(ctx context.Context) error {
	if len(t.ranges) == 0 {
		return nil
	}

	data := t.reg.Bytes()
	if len(data) == 0 {
		return ErrNoBackingArena
	}

	if err := ctx.Err(); err != nil {
		return err
	}

	coalesced := t.coalesce()
	for i, r := range coalesced {
		if err := ctx.Err(); err != nil {
			t.ranges = append(t.ranges[:0], coalesced[i:]...)
			return err
		}

		start := r.off
		end := r.off + r.len
		if end > uint64(len(data)) {
			end = uint64(len(data))
		}
		if start >= end {
			continue
		}
		if err := syncRange(data[start:end]); err != nil {
			return err
		}
	}

	t.ranges = t.ranges[:0]
	return nil
}

// coalesce sorts and merges overlapping or adjacent ranges, page-aligning
// each one first so the platform sync call always receives whole pages.
func (t *Tracker) coalesce() []byteRange {
	if len(t.ranges) == 0 {
		return nil
	}

	pageSize := t.reg.PageSize()
	aligned := make([]byteRange, len(t.ranges))
	for i, r := range t.ranges {
		start := (r.off / pageSize) * pageSize
		end := r.off + r.len
		if end%pageSize != 0 {
			end = (end/pageSize + 1) * pageSize
		}
		aligned[i] = byteRange{off: start, len: end - start}
	}

	sort.Slice(aligned, func(i, j int) bool {
		return aligned[i].off < aligned[j].off
	})

	merged := make([]byteRange, 0, len(aligned))
	current := aligned[0]
	for _, next := range aligned[1:] {
		if next.off <= current.off+current.len {
			end := current.off + current.len
			if nextEnd := next.off + next.len; nextEnd > end {
				end = nextEnd
			}
			current.len = end - current.off
			continue
		}
		merged = append(merged, current)
		current = next
	}
	merged = append(merged, current)

	return merged
}
