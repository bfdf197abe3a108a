package mdf

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/robert-malhotra/go-mdf/internal/binary"
	"github.com/robert-malhotra/go-mdf/internal/block"
)

// writeTestFile writes an identification block and an HD block whose first
// data group link is patched once the data groups are written by fn.
func writeTestFile(t *testing.T, version string, fn func(w *Writer) *DataGroup) *binary.Buffer {
	t.Helper()
	buf, w := newTestWriter(t)

	id := make([]byte, IDBlockSize)
	copy(id, "MDF     ")
	copy(id[8:], version)
	copy(id[16:], "go-mdf  ")
	_, err := buf.WriteAt(id, 0)
	require.NoError(t, err)

	hd, err := w.bw.Place(block.IDHeader, make([]int64, 6), make([]byte, 32))
	require.NoError(t, err)
	require.Equal(t, int64(HeaderOffset), hd)

	first := fn(w)
	if first != nil {
		require.NoError(t, binary.NewWriter(buf).At(hd+block.HeaderSize).WriteLink(first.Index()))
	}
	return buf
}

func TestReadDataGroupsFollowsChain(t *testing.T) {
	var second *DataGroup
	buf := writeTestFile(t, "4.10    ", func(w *Writer) *DataGroup {
		var err error
		second, _ = twoGroupDataGroup(t, 2)
		second.SetDescription("second")
		_, err = second.Write(w)
		require.NoError(t, err)

		first := NewDataGroup()
		first.CreateChannelGroup().SetRecordSize(1, 0)
		first.SetDescription("first")
		require.NoError(t, first.SetNext(second))
		_, err = first.Write(w)
		require.NoError(t, err)
		return first
	})

	version, err := Version(buf)
	require.NoError(t, err)
	require.Equal(t, "4.10", version)

	groups, err := ReadDataGroups(buf, WithLogger(testLogger(t)))
	require.NoError(t, err)
	require.Len(t, groups, 2)
	require.Equal(t, "first", groups[0].Description())
	require.Equal(t, "second", groups[1].Description())
	require.Equal(t, second.Index(), groups[0].Next())
	require.Zero(t, groups[1].Next())
	require.Equal(t, uint8(1), groups[1].RecordIDSize())
}

func TestReadDataGroupsEmptyFile(t *testing.T) {
	buf := writeTestFile(t, "4.20    ", func(*Writer) *DataGroup { return nil })
	groups, err := ReadDataGroups(buf)
	require.NoError(t, err)
	require.Empty(t, groups)
}

func TestVersionRejectsOtherFiles(t *testing.T) {
	buf := binary.NewBuffer([]byte("\x89HDF\r\n\x1a\n0000000000000000"))
	_, err := Version(buf)
	require.ErrorIs(t, err, ErrNotMDF)

	buf = writeTestFile(t, "3.30    ", func(*Writer) *DataGroup { return nil })
	_, err = Version(buf)
	require.ErrorIs(t, err, ErrNotMDF)

	_, err = Version(binary.NewBuffer([]byte("MDF")))
	require.Error(t, err)
}

func TestSetNext(t *testing.T) {
	dg := NewDataGroup()
	require.ErrorIs(t, dg.SetNext(NewDataGroup()), ErrInvalidArgument)
	require.NoError(t, dg.SetNext(nil))
}
