// Package mmap maps MDF4 files into memory read-only so that data blocks can
// be served without copying.
package mmap

import (
	"errors"
	"io"
	"os"
)

type Options uint

const (
	// SequentialAccess is a hint requesting aggressive read-ahead.
	// Incompatible with RandomAccess. Maps to MADV_SEQUENTIAL on Unix.
	SequentialAccess Options = 1 << 0

	// RandomAccess is a hint that read ahead is less useful than normally.
	// Maps to MADV_RANDOM on Unix.
	RandomAccess Options = 1 << 1
)

func (o Options) Has(v Options) bool {
	return o&v != 0
}

// File is a read-only view of a file. It implements io.ReaderAt.
type File struct {
	f    *os.File
	data []byte // nil when the platform has no mapping or the file is empty
	size int64
}

// Open opens path and maps it into memory. Where mapping is unavailable the
// returned File reads through the file descriptor instead.
func Open(path string, opt Options) (*File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	fi, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, err
	}
	size := fi.Size()
	if size > MaxSize {
		f.Close()
		return nil, errors.New("mmap: file too large")
	}

	m := &File{f: f, size: size}
	if size > 0 {
		if m.data, err = mmap(f, int(size), opt); err != nil {
			f.Close()
			return nil, err
		}
	}
	return m, nil
}

// ReadAt implements io.ReaderAt.
func (m *File) ReadAt(p []byte, off int64) (int, error) {
	if m.f == nil {
		return 0, os.ErrClosed
	}
	if m.data == nil {
		if m.size == 0 {
			return 0, io.EOF
		}
		return m.f.ReadAt(p, off)
	}
	if off < 0 {
		return 0, errors.New("mmap: negative offset")
	}
	if off >= m.size {
		return 0, io.EOF
	}
	n := copy(p, m.data[off:])
	if n < len(p) {
		return n, io.EOF
	}
	return n, nil
}

// Size returns the file size.
func (m *File) Size() int64 {
	return m.size
}

// Mapped reports whether the file is served from a memory mapping.
func (m *File) Mapped() bool {
	return m.data != nil
}

// Close unmaps and closes the file.
func (m *File) Close() error {
	if m.f == nil {
		return nil
	}
	var err error
	if m.data != nil {
		err = munmap(m.data)
		m.data = nil
	}
	if cerr := m.f.Close(); err == nil {
		err = cerr
	}
	m.f = nil
	return err
}
