//go:build unix

package mmap

import (
	"fmt"
	"os"

	"golang.org/x/sys/unix"
)

func mmap(f *os.File, size int, opt Options) ([]byte, error) {
	b, err := unix.Mmap(int(f.Fd()), 0, size, unix.PROT_READ, unix.MAP_SHARED)
	if err != nil {
		return nil, err
	}

	advice := -1
	if opt.Has(SequentialAccess) {
		advice = unix.MADV_SEQUENTIAL
	} else if opt.Has(RandomAccess) {
		advice = unix.MADV_RANDOM
	}
	if advice >= 0 {
		// ENOSYS: the mapping still works without the hint.
		if err := unix.Madvise(b, advice); err != nil && err != unix.ENOSYS {
			unix.Munmap(b)
			return nil, fmt.Errorf("madvise: %w", err)
		}
	}
	return b, nil
}

func munmap(b []byte) error {
	return unix.Munmap(b)
}
