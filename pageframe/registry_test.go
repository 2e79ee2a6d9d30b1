package pageframe

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNew_RejectsZeroFrameCount(t *testing.T) {
	_, err := New(0)
	require.ErrorIs(t, err, ErrInvalidFrameCount)
}

func TestNew_RejectsSmallPageShift(t *testing.T) {
	_, err := New(16, WithPageShift(2))
	require.ErrorIs(t, err, ErrPageShiftTooSmall)
}

func TestGetFromPFN_IsStableAcrossCalls(t *testing.T) {
	reg, err := New(64, WithPageShift(6))
	require.NoError(t, err)

	a := reg.GetFromPFN(5)
	b := reg.GetFromPFN(5)
	require.Same(t, a, b, "GetFromPFN must return the identical *Page for the same PFN")
}

func TestGetFromPFN_PanicsOutOfRange(t *testing.T) {
	reg, err := New(4, WithPageShift(6))
	require.NoError(t, err)

	require.Panics(t, func() {
		reg.GetFromPFN(4)
	})
}

func TestPage_BaseAddress(t *testing.T) {
	reg, err := New(8, WithPageShift(6))
	require.NoError(t, err)

	p := reg.GetFromPFN(3)
	require.Equal(t, uint64(3*64), p.BaseAddress())
}

func TestPage_NextFreeRoundTrip(t *testing.T) {
	reg, err := New(8, WithPageShift(6))
	require.NoError(t, err)

	a := reg.GetFromPFN(1)
	b := reg.GetFromPFN(2)

	require.Nil(t, a.NextFree(), "fresh page body reads as no next-free pointer set")

	a.SetNextFree(b)
	require.Same(t, b, a.NextFree())

	a.SetNextFree(nil)
	require.Nil(t, a.NextFree())
}

func TestBlockBytes_SpansWholeBlock(t *testing.T) {
	reg, err := New(16, WithPageShift(6))
	require.NoError(t, err)

	block := reg.BlockBytes(4, 2) // order 2 => 4 pages, starting at pfn 4
	require.Len(t, block, 4*64)
}

func TestMmapBacking_ReopenPreservesIntrusiveLinks(t *testing.T) {
	path := t.TempDir() + "/arena.bin"

	reg, err := New(8, WithPageShift(6), WithMmapBacking(path))
	require.NoError(t, err)

	reg.GetFromPFN(3).SetNextFree(reg.GetFromPFN(5))
	require.NoError(t, reg.Close())

	reopened, err := New(8, WithPageShift(6), WithMmapBacking(path))
	require.NoError(t, err)
	defer reopened.Close()

	require.Equal(t, uint64(5), reopened.GetFromPFN(3).NextFree().PFN(),
		"a link written before Close must survive reopening the same backing file")
}
