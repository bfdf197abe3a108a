package mdf

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/robert-malhotra/go-mdf/internal/binary"
)

func TestRawBytes(t *testing.T) {
	record := []byte{0x01, 0x02, 0x03, 0x04, 0x05}

	tests := []struct {
		name       string
		byteOffset uint32
		bitOffset  uint8
		bitCount   uint32
		want       []byte
	}{
		{"byte", 1, 0, 8, []byte{0x02}},
		{"word", 2, 0, 16, []byte{0x03, 0x04}},
		{"bits in one byte", 0, 3, 4, []byte{0x01}},
		{"bits across bytes", 3, 6, 4, []byte{0x04, 0x05}},
		{"past end", 4, 0, 16, nil},
		{"no bits", 0, 0, 0, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ch := &Channel{byteOffset: tt.byteOffset, bitCount: tt.bitCount}
			require.NoError(t, ch.SetBitOffset(tt.bitOffset))
			require.Equal(t, tt.want, ch.RawBytes(record))
		})
	}
}

func TestSetBitOffsetRejectsWholeBytes(t *testing.T) {
	ch := &Channel{}
	require.NoError(t, ch.SetBitOffset(7))
	require.ErrorIs(t, ch.SetBitOffset(8), ErrInvalidArgument)
	require.ErrorIs(t, ch.SetBitOffset(255), ErrInvalidArgument)
	require.Equal(t, uint8(7), ch.BitOffset())
}

func TestVLSDSignalData(t *testing.T) {
	for _, fragment := range []int{0, 12} {
		buf, w := newTestWriter(t, WithFragmentSize(fragment))
		dg := NewDataGroup()
		cg := dg.CreateChannelGroup()
		cg.SetRecordSize(8, 0)
		ch := cg.CreateChannel("frame", VariableLength, ByteArray, 0, 64)

		values := []string{"a", "", "hello", "variable length"}
		for _, v := range values {
			off, err := ch.AppendSignal([]byte(v))
			require.NoError(t, err)
			rec := make([]byte, 8)
			binary.Order.PutUint64(rec, off)
			require.NoError(t, dg.AppendRecord(cg, rec))
		}
		_, err := dg.Write(w)
		require.NoError(t, err)

		got, err := ReadDataGroup(buf, dg.Index(), WithStager(MemoryStager()))
		require.NoError(t, err)
		gch := got.ChannelGroups()[0].Channels()[0]
		require.Equal(t, VariableLength, gch.Type())
		require.NotNil(t, gch.signal)

		var seen []string
		got.ChannelGroups()[0].Subscribe(func(cg *ChannelGroup, sample uint64, record []byte) {
			off := binary.Order.Uint64(gch.RawBytes(record))
			v, err := gch.VLSD(off)
			require.NoError(t, err)
			seen = append(seen, string(v))
		})

		res, err := got.PopulateRecords(buf)
		require.NoError(t, err)
		require.Equal(t, uint64(len(values)), res.Records)
		require.Equal(t, values, seen)

		// Signal data is only held while records are parsed.
		_, err = gch.VLSD(0)
		require.ErrorIs(t, err, ErrNoSignalData)
	}
}

func TestVLSDBounds(t *testing.T) {
	ch := &Channel{typ: VariableLength}
	_, err := ch.AppendSignal([]byte("abc"))
	require.NoError(t, err)

	v, err := ch.VLSD(0)
	require.NoError(t, err)
	require.Equal(t, "abc", string(v))

	_, err = ch.VLSD(5)
	require.Error(t, err)
	_, err = ch.VLSD(100)
	require.Error(t, err)

	ch.pending[0] = 0xFF // length past the end
	_, err = ch.VLSD(0)
	require.Error(t, err)
}

func TestAppendSignalFixedChannel(t *testing.T) {
	ch := &Channel{name: "speed"}
	_, err := ch.AppendSignal([]byte("x"))
	require.ErrorIs(t, err, ErrInvalidArgument)
}

func TestVLSDChannelGroupRecords(t *testing.T) {
	buf, w := newTestWriter(t, WithFragmentSize(7))
	dg := NewDataGroup()
	fixed := dg.CreateChannelGroup()
	fixed.SetRecordSize(2, 0)
	vlsd := dg.CreateChannelGroup()
	vlsd.SetVLSD(true)

	require.NoError(t, dg.AppendRecord(fixed, []byte{1, 2}))
	require.NoError(t, dg.AppendRecord(vlsd, []byte("first")))
	require.NoError(t, dg.AppendRecord(fixed, []byte{3, 4}))
	require.NoError(t, dg.AppendRecord(vlsd, nil))
	require.NoError(t, dg.AppendRecord(vlsd, []byte("x")))
	_, err := dg.Write(w)
	require.NoError(t, err)

	got, err := ReadDataGroup(buf, dg.Index(), WithStager(MemoryStager()), WithLogger(testLogger(t)))
	require.NoError(t, err)
	require.True(t, got.ChannelGroups()[1].IsVLSD())
	records := collect(got)

	res, err := got.PopulateRecords(buf)
	require.NoError(t, err)
	require.Equal(t, StopNone, res.Stopped)
	require.Equal(t, []record{
		{id: 1, sample: 0, data: []byte{1, 2}},
		{id: 2, sample: 0, data: []byte("first")},
		{id: 1, sample: 1, data: []byte{3, 4}},
		{id: 2, sample: 1, data: []byte{}},
		{id: 2, sample: 2, data: []byte("x")},
	}, *records)
}

func TestChannelDescriptionRoundTrip(t *testing.T) {
	buf, w := newTestWriter(t)
	dg := NewDataGroup()
	cg := dg.CreateChannelGroup()
	cg.SetRecordSize(1, 0)
	ch := cg.CreateChannel("flag", FixedLength, UintLE, 0, 1)
	require.Empty(t, ch.Description())
	ch.SetDescription("engine on")
	_, err := dg.Write(w)
	require.NoError(t, err)

	got, err := ReadDataGroup(buf, dg.Index())
	require.NoError(t, err)
	gch := got.ChannelGroups()[0].Channels()[0]
	require.Equal(t, "flag", gch.Name())
	require.Equal(t, "engine on", gch.Description())
	require.Equal(t, uint32(1), gch.BitCount())
}
