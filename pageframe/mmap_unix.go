//go:build unix

package pageframe

import (
	"fmt"
	"os"

	"golang.org/x/sys/unix"
)

// mmapArena maps size bytes of the file at path into memory, creating and
// growing the file as needed. The returned closer unmaps the region.
// preexisting reports whether the file already held at least size bytes
// before this call — i.e. whether its contents (including any intrusive
// free-list links from a prior session) should be trusted rather than
// treated as a freshly zeroed arena.
func mmapArena(path string, size uint64) (data []byte, preexisting bool, closer func() error, err error) {
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0o644)
	if err != nil {
		return nil, false, nil, err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, false, nil, err
	}
	preexisting = uint64(info.Size()) >= size
	if !preexisting {
		if err := f.Truncate(int64(size)); err != nil {
			return nil, false, nil, fmt.Errorf("mmap arena: truncate: %w", err)
		}
	}

	data, err = unix.Mmap(int(f.Fd()), 0, int(size), unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)
	if err != nil {
		return nil, false, nil, fmt.Errorf("mmap arena: mmap: %w", err)
	}

	closer = func() error {
		if data == nil {
			return nil
		}
		return unix.Munmap(data)
	}
	return data, preexisting, closer, nil
}
