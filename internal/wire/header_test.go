package wire

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeDecodeHeaderRoundTrip(t *testing.T) {
	h := Header{
		ID:                  0x1234,
		RecursionDesired:    true,
		IsResponse:          true,
		RecursionAvailable:  true,
		AuthoritativeAnswer: false,
		ResponseCode:        RCodeNXDomain,
		QDCount:             1,
		ANCount:             2,
		NSCount:             3,
		ARCount:             4,
	}

	buf := NewBuffer()
	require.NoError(t, EncodeHeader(buf, h))
	assert.Equal(t, HeaderSize, buf.Cursor())

	buf.SetCursor(0)
	got, err := DecodeHeader(buf)
	require.NoError(t, err)

	assert.Equal(t, h.ID, got.ID)
	assert.Equal(t, h.RecursionDesired, got.RecursionDesired)
	assert.Equal(t, h.IsResponse, got.IsResponse)
	assert.Equal(t, h.RecursionAvailable, got.RecursionAvailable)
	assert.Equal(t, h.ResponseCode, got.ResponseCode)
	assert.Equal(t, h.QDCount, got.QDCount)
	assert.Equal(t, h.ANCount, got.ANCount)
	assert.Equal(t, h.NSCount, got.NSCount)
	assert.Equal(t, h.ARCount, got.ARCount)
}

func TestAuthedDataOccupiesByteBBitFiveOnly(t *testing.T) {
	h := Header{AuthedData: true, AuthoritativeAnswer: true}
	word := flagsWord(h)

	byteA := uint8(word >> 8)
	byteB := uint8(word)

	assert.Equal(t, uint8(0x04), byteA, "AuthoritativeAnswer occupies byte A bit 2 alone")
	assert.Equal(t, uint8(0x20), byteB, "AuthedData occupies byte B bit 5 alone, not byte A")
}

func TestResponseCodeOutOfRangeCoercesToNoError(t *testing.T) {
	buf := NewBuffer()
	require.NoError(t, buf.WriteU16(0)) // id
	require.NoError(t, buf.WriteU16(0x000F)) // rcode nibble = 15, out of range
	require.NoError(t, buf.WriteU16(0))
	require.NoError(t, buf.WriteU16(0))
	require.NoError(t, buf.WriteU16(0))
	require.NoError(t, buf.WriteU16(0))

	buf.SetCursor(0)
	h, err := DecodeHeader(buf)
	require.NoError(t, err)
	assert.Equal(t, RCodeNoError, h.ResponseCode)
}

func TestDecodeHeaderTooShortPropagatesError(t *testing.T) {
	buf := NewBuffer()
	require.NoError(t, buf.WriteU16(0x1234))
	require.NoError(t, buf.WriteU16(0x8180))
	// Missing the four count fields.

	buf.SetCursor(0)
	_, err := DecodeHeader(buf)
	assert.Error(t, err, "header decode must propagate buffer underflow")
}

func TestFlagsWordBitLayout(t *testing.T) {
	h := Header{
		RecursionDesired: true,
		IsResponse:       true,
		ResponseCode:     RCodeServFail,
	}
	word := flagsWord(h)
	assert.Equal(t, uint16(0x8102), word)
}
