package mdf

import (
	"bytes"
	"io"
	"log/slog"
	"testing"

	"github.com/neilotoole/slogt"
	"github.com/stretchr/testify/require"

	"github.com/robert-malhotra/go-mdf/internal/binary"
)

func testLogger(t *testing.T) *slog.Logger {
	return slogt.New(t, slogt.Text())
}

func newTestWriter(t *testing.T, opts ...WriteOption) (*binary.Buffer, *Writer) {
	t.Helper()
	buf := &binary.Buffer{}
	w, err := NewWriter(buf, 0, opts...)
	require.NoError(t, err)
	return buf, w
}

type record struct {
	id     uint64
	sample uint64
	data   []byte
}

// collect subscribes to every channel group of dg and gathers the records
// in parse order.
func collect(dg *DataGroup) *[]record {
	var out []record
	for _, cg := range dg.ChannelGroups() {
		cg.Subscribe(func(cg *ChannelGroup, sample uint64, data []byte) {
			out = append(out, record{id: cg.RecordID(), sample: sample, data: bytes.Clone(data)})
		})
	}
	return &out
}

// spyReaderAt records the furthest byte read.
type spyReaderAt struct {
	r      io.ReaderAt
	maxEnd int64
}

func (s *spyReaderAt) ReadAt(p []byte, off int64) (int, error) {
	n, err := s.r.ReadAt(p, off)
	if end := off + int64(n); end > s.maxEnd {
		s.maxEnd = end
	}
	return n, err
}

// twoGroupDataGroup builds a data group with a 4 byte group (3 data bytes,
// 1 invalidation byte) and a 2 byte group, and appends n records to each,
// alternating. Every record with id prefix is 5 or 3 bytes.
func twoGroupDataGroup(t *testing.T, n int, opts ...Option) (*DataGroup, []record) {
	t.Helper()
	dg := NewDataGroup(opts...)

	a := dg.CreateChannelGroup()
	a.SetName("fast")
	a.SetRecordSize(3, 1)
	a.CreateChannel("t", Master, FloatLE, 0, 16)
	a.CreateChannel("speed", FixedLength, UintLE, 2, 8)

	b := dg.CreateChannelGroup()
	b.SetName("slow")
	b.SetRecordSize(2, 0)
	b.CreateChannel("temp", FixedLength, IntLE, 0, 16)

	var want []record
	for i := 0; i < n; i++ {
		ra := []byte{byte(i), 0xA0, byte(2 * i), 0x00}
		rb := []byte{0xB0, byte(i)}
		require.NoError(t, dg.AppendRecord(a, ra))
		require.NoError(t, dg.AppendRecord(b, rb))
		want = append(want,
			record{id: 1, sample: uint64(i), data: ra},
			record{id: 2, sample: uint64(i), data: rb})
	}
	return dg, want
}
