//go:build !unix

package persist

// syncRange is a no-op on platforms without mmap backing support: registries
// on these platforms are always heap-allocated (see pageframe.WithMmapBacking),
// so there is no memory-mapped file to sync.
func syncRange(_ []byte) error {
	return nil
}
