package wire

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBufferWriteReadRoundTrip(t *testing.T) {
	buf := NewBuffer()
	require.NoError(t, buf.WriteU8(0xAB))
	require.NoError(t, buf.WriteU16(0x1234))
	require.NoError(t, buf.WriteU32(0xDEADBEEF))

	buf.SetCursor(0)
	u8, err := buf.ReadU8()
	require.NoError(t, err)
	assert.Equal(t, uint8(0xAB), u8)

	u16, err := buf.ReadU16()
	require.NoError(t, err)
	assert.Equal(t, uint16(0x1234), u16)

	u32, err := buf.ReadU32()
	require.NoError(t, err)
	assert.Equal(t, uint32(0xDEADBEEF), u32)
}

func TestBufferOutOfBounds(t *testing.T) {
	buf := NewBuffer()
	buf.SetCursor(Capacity - 1)
	_, err := buf.ReadU16()
	assert.ErrorIs(t, err, ErrWire)
	var oob *OutOfBoundsError
	assert.ErrorAs(t, err, &oob)
}

func TestBufferWriteU8OutOfBounds(t *testing.T) {
	buf := NewBuffer()
	buf.SetCursor(Capacity)
	err := buf.WriteU8(1)
	assert.Error(t, err)
}

func TestBufferPeekU8(t *testing.T) {
	buf := NewBuffer()
	require.NoError(t, buf.WriteU8(0x01))
	require.NoError(t, buf.WriteU8(0x02))

	v, err := buf.PeekU8(1)
	require.NoError(t, err)
	assert.Equal(t, uint8(0x02), v)
	assert.Equal(t, 2, buf.Cursor(), "peek must not move the cursor")

	_, err = buf.PeekU8(Capacity)
	assert.Error(t, err)
}

func TestBufferGetRange(t *testing.T) {
	buf := NewBuffer()
	require.NoError(t, buf.WriteBytes([]byte{1, 2, 3, 4, 5}))

	got, err := buf.GetRange(1, 3)
	require.NoError(t, err)
	assert.Equal(t, []byte{2, 3, 4}, got)

	_, err = buf.GetRange(510, 3)
	assert.Error(t, err, "start+len must not exceed capacity")
}

func TestBufferPatchU16(t *testing.T) {
	buf := NewBuffer()
	require.NoError(t, buf.WriteU16(0))
	require.NoError(t, buf.PatchU16(0, 0xBEEF))

	buf.SetCursor(0)
	v, err := buf.ReadU16()
	require.NoError(t, err)
	assert.Equal(t, uint16(0xBEEF), v)
}

func TestReadNameSimple(t *testing.T) {
	buf := NewBuffer()
	require.NoError(t, buf.WriteName("www.Example.com"))
	endCursor := buf.Cursor()

	buf.SetCursor(0)
	name, err := buf.ReadName()
	require.NoError(t, err)
	assert.Equal(t, "www.example.com", name, "names are lowercased")
	assert.Equal(t, endCursor, buf.Cursor(), "cursor lands just past the terminating zero byte")
}

func TestWriteNameRoot(t *testing.T) {
	buf := NewBuffer()
	require.NoError(t, buf.WriteName(""))
	assert.Equal(t, []byte{0}, buf.Bytes())
}

func TestWriteNameLabelTooLong(t *testing.T) {
	buf := NewBuffer()
	longLabel := make([]byte, 64)
	for i := range longLabel {
		longLabel[i] = 'a'
	}
	err := buf.WriteName(string(longLabel) + ".com")
	var tooLong *LabelTooLongError
	require.ErrorAs(t, err, &tooLong)
}

func TestReadNameCompressionPointer(t *testing.T) {
	buf := NewBuffer()
	// "example.com" at offset 0.
	require.NoError(t, buf.WriteName("example.com"))
	afterName := buf.Cursor()
	// A pointer back to offset 0.
	require.NoError(t, buf.WriteU8(0xC0))
	require.NoError(t, buf.WriteU8(0x00))

	buf.SetCursor(afterName)
	name, err := buf.ReadName()
	require.NoError(t, err)
	assert.Equal(t, "example.com", name)
	assert.Equal(t, afterName+2, buf.Cursor(), "cursor stops just past the 2-byte pointer")
}

func TestReadNamePointerChainBoundary(t *testing.T) {
	buf := NewBuffer()
	require.NoError(t, buf.WriteName("root"))

	// Build a chain of compression pointers, each one pointing at the prior.
	offsets := []int{0}
	for i := 0; i < 5; i++ {
		pos := buf.Cursor()
		target := offsets[len(offsets)-1]
		require.NoError(t, buf.WriteU8(0xC0|byte(target>>8)))
		require.NoError(t, buf.WriteU8(byte(target)))
		offsets = append(offsets, pos)
	}
	// offsets[5] is a chain of exactly 5 pointers to resolve from.
	buf.SetCursor(offsets[5])
	_, err := buf.ReadName()
	assert.NoError(t, err, "exactly 5 jumps must succeed")

	// Add one more pointer hop, making a chain of 6.
	pos := buf.Cursor()
	target := offsets[5]
	require.NoError(t, buf.WriteU8(0xC0|byte(target>>8)))
	require.NoError(t, buf.WriteU8(byte(target)))

	buf.SetCursor(pos)
	_, err = buf.ReadName()
	var loopErr *PointerLoopError
	assert.ErrorAs(t, err, &loopErr, "6 jumps must fail")
}

func TestReadNamePointerCycleDoesNotDiverge(t *testing.T) {
	buf := NewBuffer()
	// A name at offset 0 that points right back to offset 0.
	require.NoError(t, buf.WriteU8(0xC0))
	require.NoError(t, buf.WriteU8(0x00))

	buf.SetCursor(0)
	_, err := buf.ReadName()
	var loopErr *PointerLoopError
	assert.ErrorAs(t, err, &loopErr)
}

func TestReadNamePointerTargetAtOrAboveCapacityFails(t *testing.T) {
	buf := NewBuffer()
	require.NoError(t, buf.WriteU8(0xC0))
	require.NoError(t, buf.WriteU8(0x00)) // low byte; combined with top bits yields offset >= 512

	// Force the pointer's 14-bit offset to exactly Capacity.
	require.NoError(t, buf.PatchU16(0, 0xC000|uint16(Capacity)))

	buf.SetCursor(0)
	_, err := buf.ReadName()
	assert.Error(t, err)
}

func TestReadNameAtOffset511(t *testing.T) {
	buf := NewBuffer()
	buf.SetCursor(Capacity - 1)
	require.NoError(t, buf.WriteU8(0)) // root name, exactly at the last byte

	buf.SetCursor(Capacity - 1)
	name, err := buf.ReadName()
	require.NoError(t, err)
	assert.Equal(t, "", name)
}

func TestSkipOutOfBounds(t *testing.T) {
	buf := NewBuffer()
	buf.SetCursor(Capacity - 1)
	err := buf.Skip(5)
	assert.Error(t, err, "data_len causing overrun must fail")
}
