//go:build unix

package persist

import "golang.org/x/sys/unix"

// syncRange flushes a memory-mapped byte range to its backing file with
// msync. On Unix, msync handles arbitrary sub-slices of a mapping directly.
func syncRange(data []byte) error {
	if len(data) == 0 {
		return nil
	}
	return unix.Msync(data, unix.MS_SYNC)
}
