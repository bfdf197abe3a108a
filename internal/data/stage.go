package data

import (
	"io"
	"os"
	"sync/atomic"

	"github.com/robert-malhotra/go-mdf/internal/binary"
)

// Stage is a scratch byte store that receives appended bytes and is then read back.
type Stage interface {
	io.Writer
	io.ReaderAt
	io.Closer
}

// Stager creates stages.
type Stager interface {
	NewStage() (Stage, error)
}

// TempFileStager stages to an anonymous temporary file in Dir
// (os.TempDir when empty).
type TempFileStager struct {
	Dir string
}

// NewStage creates a temporary file and unlinks it right away where the
// platform allows, so nothing is left behind if the process dies.
func (s TempFileStager) NewStage() (Stage, error) {
	f, err := os.CreateTemp(s.Dir, "mdf-stage-*")
	if err != nil {
		return nil, err
	}
	st := &fileStage{File: f, name: f.Name()}
	if os.Remove(st.name) == nil {
		st.removed = true
	}
	return st, nil
}

type fileStage struct {
	*os.File
	name    string
	removed bool
}

func (s *fileStage) Close() error {
	err := s.File.Close()
	if !s.removed {
		if rmErr := os.Remove(s.name); err == nil {
			err = rmErr
		}
	}
	return err
}

// MemoryStager stages in memory.
type MemoryStager struct{}

func (MemoryStager) NewStage() (Stage, error) {
	return &memoryStage{}, nil
}

type memoryStage struct {
	binary.Buffer
}

func (s *memoryStage) Close() error {
	s.Buffer = binary.Buffer{}
	return nil
}

// CountingStager wraps a Stager and counts the stages it creates and
// the stages still open.
type CountingStager struct {
	Stager Stager

	created atomic.Int64
	open    atomic.Int64
}

func (c *CountingStager) NewStage() (Stage, error) {
	st, err := c.Stager.NewStage()
	if err != nil {
		return nil, err
	}
	c.created.Add(1)
	c.open.Add(1)
	return &countedStage{Stage: st, owner: c}, nil
}

// Created returns the number of stages created.
func (c *CountingStager) Created() int64 { return c.created.Load() }

// Open returns the number of stages created and not yet closed.
func (c *CountingStager) Open() int64 { return c.open.Load() }

type countedStage struct {
	Stage
	owner  *CountingStager
	closed bool
}

func (s *countedStage) Close() error {
	if !s.closed {
		s.closed = true
		s.owner.open.Add(-1)
	}
	return s.Stage.Close()
}
