package data

import (
	"fmt"
	"io"
	"os"
)

// Source is a contiguous view of a data tree's bytes.
type Source struct {
	r        io.ReaderAt
	size     int64
	stage    Stage
	zeroCopy bool
}

// Open defragments tree into a contiguous Source. src is the file the tree
// was read from. A single uncompressed leaf is served directly from src;
// any other tree is copied into a stage from stager.
func Open(tree Node, src io.ReaderAt, stager Stager) (*Source, error) {
	if src == nil {
		return nil, ErrNoSource
	}
	if tree == nil {
		return &Source{}, nil
	}

	if leaf, ok := tree.(*Leaf); ok && !leaf.Compressed() {
		return &Source{
			r:        io.NewSectionReader(src, leaf.DataPos, int64(leaf.Size)),
			size:     int64(leaf.Size),
			zeroCopy: true,
		}, nil
	}

	if stager == nil {
		stager = TempFileStager{}
	}
	stage, err := stager.NewStage()
	if err != nil {
		return nil, fmt.Errorf("creating stage: %w", err)
	}

	var size int64
	err = Walk(tree, func(l *Leaf) error {
		n, err := l.CopyTo(stage, src)
		size += n
		return err
	})
	if err != nil {
		stage.Close()
		return nil, fmt.Errorf("staging data tree at 0x%x: %w", tree.Index(), err)
	}

	return &Source{r: stage, size: size, stage: stage}, nil
}

// ReadAt implements io.ReaderAt over the contiguous bytes.
func (s *Source) ReadAt(p []byte, off int64) (int, error) {
	if off >= s.size {
		return 0, io.EOF
	}
	if s.r == nil {
		return 0, os.ErrClosed
	}
	if remaining := s.size - off; int64(len(p)) > remaining {
		n, err := s.r.ReadAt(p[:remaining], off)
		if err == nil {
			err = io.EOF
		}
		return n, err
	}
	return s.r.ReadAt(p, off)
}

// Size returns the number of contiguous bytes.
func (s *Source) Size() int64 {
	return s.size
}

// ZeroCopy reports whether the source reads straight from the original file.
func (s *Source) ZeroCopy() bool {
	return s.zeroCopy
}

// Staged reports whether the source is backed by a stage.
func (s *Source) Staged() bool {
	return s.stage != nil
}

// Close releases the stage, if any. It is safe to call more than once.
func (s *Source) Close() error {
	if s.stage == nil {
		return nil
	}
	st := s.stage
	s.stage = nil
	s.r = nil
	return st.Close()
}

// ReadAll returns the bytes of tree as one slice, for small trees such as
// VLSD signal data that are kept in memory anyway.
func ReadAll(tree Node, src io.ReaderAt) ([]byte, error) {
	if src == nil {
		return nil, ErrNoSource
	}
	if leaf, ok := tree.(*Leaf); ok {
		return leaf.ReadAll(src)
	}
	// Declared sizes are not trusted for preallocation.
	var out []byte
	err := Walk(tree, func(l *Leaf) error {
		b, err := l.ReadAll(src)
		out = append(out, b...)
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
