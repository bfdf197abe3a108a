package mdf

import (
	"io"
	"log/slog"
	"math"

	"github.com/robert-malhotra/go-mdf/internal/data"
	"github.com/robert-malhotra/go-mdf/internal/filter"
)

// Stager creates the scratch stores a fragmented data region is joined into.
type Stager = data.Stager

// CountingStager wraps a Stager and counts the stages it hands out.
type CountingStager = data.CountingStager

// TempFileStager returns a Stager backed by anonymous temporary files in dir
// (the system temp dir when empty). This is the default.
func TempFileStager(dir string) Stager {
	return data.TempFileStager{Dir: dir}
}

// MemoryStager returns a Stager that keeps staged bytes in memory.
func MemoryStager() Stager {
	return data.MemoryStager{}
}

// NewCountingStager wraps s.
func NewCountingStager(s Stager) *CountingStager {
	return &CountingStager{Stager: s}
}

// Option configures reading and populating a data group.
type Option func(*options)

type options struct {
	log      *slog.Logger
	stager   Stager
	maxDepth int
}

func defaultOptions() *options {
	return &options{
		log:      slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.Level(math.MaxInt)})),
		stager:   data.TempFileStager{},
		maxDepth: data.DefaultMaxDepth,
	}
}

func newOptions(opts []Option) *options {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// WithLogger sets the logger. By default nothing is logged.
func WithLogger(log *slog.Logger) Option {
	return func(o *options) {
		if log != nil {
			o.log = log
		}
	}
}

// WithStager sets where fragmented data regions are staged.
func WithStager(s Stager) Option {
	return func(o *options) {
		if s != nil {
			o.stager = s
		}
	}
}

// WithMaxDepth bounds the nesting of DL/HL blocks accepted when reading a
// data tree.
func WithMaxDepth(depth int) Option {
	return func(o *options) {
		if depth > 0 {
			o.maxDepth = depth
		}
	}
}

// ZipType selects the DZ compression algorithm.
type ZipType = filter.ZipType

const (
	ZipDeflate          = filter.ZipDeflate
	ZipTransposeDeflate = filter.ZipTransposeDeflate
)

// WriteOption configures a Writer.
type WriteOption func(*writeOptions)

type writeOptions struct {
	fragmentSize int
	compress     bool
	zipType      ZipType
	level        int
}

func defaultWriteOptions() *writeOptions {
	return &writeOptions{level: -1}
}

// WithFragmentSize splits data regions into DT (or DZ) blocks of at most
// size bytes listed by a DL block. 0 writes a single block.
func WithFragmentSize(size int) WriteOption {
	return func(o *writeOptions) {
		if size >= 0 {
			o.fragmentSize = size
		}
	}
}

// WithCompression stores data regions as DZ blocks (1-9, -1 for the default
// level). Transposition uses the record size as column count.
func WithCompression(zip ZipType, level int) WriteOption {
	return func(o *writeOptions) {
		if level >= -1 && level <= 9 {
			o.compress = true
			o.zipType = zip
			o.level = level
		}
	}
}
