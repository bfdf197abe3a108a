//go:build !unix

package mmap

import "os"

// No mapping: File reads through the descriptor.
func mmap(*os.File, int, Options) ([]byte, error) {
	return nil, nil
}

func munmap([]byte) error {
	return nil
}
