package wire

import (
	"encoding/binary"
	"strings"
)

// Capacity is the fixed size of a DNS-over-UDP message buffer (§6: message
// size capped at 512 bytes both directions).
const Capacity = 512

// Buffer is a fixed-capacity positional byte buffer with big-endian integer
// and compressed-name primitives. It owns its bytes; the cursor is mutable.
// All read/write primitives reject access at or beyond the 512-byte capacity.
// A Buffer is built for one message direction per logical operation and is
// never shared between packets.
type Buffer struct {
	data   [Capacity]byte
	extent int // number of meaningful bytes: input length on decode, high-water mark on encode
	cursor int
}

// NewBuffer returns an empty buffer ready for encoding.
func NewBuffer() *Buffer {
	return &Buffer{}
}

// FromBytes returns a buffer primed for decoding the given message.
// The message must not exceed the 512-byte capacity.
func FromBytes(msg []byte) (*Buffer, error) {
	if len(msg) > Capacity {
		return nil, outOfBounds("FromBytes", len(msg))
	}
	b := &Buffer{extent: len(msg)}
	copy(b.data[:], msg)
	return b, nil
}

// Cursor returns the current read/write position.
func (b *Buffer) Cursor() int { return b.cursor }

// SetCursor repositions the cursor for a fresh decode/encode pass over
// the same underlying bytes.
func (b *Buffer) SetCursor(pos int) { b.cursor = pos }

// Bytes returns the meaningful portion of the buffer: the decoded message
// length on a decode buffer, or everything written so far on an encode
// buffer.
func (b *Buffer) Bytes() []byte {
	out := make([]byte, b.extent)
	copy(out, b.data[:b.extent])
	return out
}

func (b *Buffer) touch(pos int) {
	if pos > b.extent {
		b.extent = pos
	}
}

// ReadU8 reads one big-endian byte and advances the cursor.
func (b *Buffer) ReadU8() (uint8, error) {
	if b.cursor+1 > Capacity {
		return 0, outOfBounds("read_u8", b.cursor)
	}
	v := b.data[b.cursor]
	b.cursor++
	return v, nil
}

// ReadU16 reads a big-endian uint16 and advances the cursor.
func (b *Buffer) ReadU16() (uint16, error) {
	if b.cursor+2 > Capacity {
		return 0, outOfBounds("read_u16", b.cursor)
	}
	v := binary.BigEndian.Uint16(b.data[b.cursor : b.cursor+2])
	b.cursor += 2
	return v, nil
}

// ReadU32 reads a big-endian uint32 and advances the cursor.
func (b *Buffer) ReadU32() (uint32, error) {
	if b.cursor+4 > Capacity {
		return 0, outOfBounds("read_u32", b.cursor)
	}
	v := binary.BigEndian.Uint32(b.data[b.cursor : b.cursor+4])
	b.cursor += 4
	return v, nil
}

// WriteU8 writes one big-endian byte and advances the cursor.
func (b *Buffer) WriteU8(v uint8) error {
	if b.cursor+1 > Capacity {
		return outOfBounds("write_u8", b.cursor)
	}
	b.data[b.cursor] = v
	b.cursor++
	b.touch(b.cursor)
	return nil
}

// WriteU16 writes a big-endian uint16 and advances the cursor.
func (b *Buffer) WriteU16(v uint16) error {
	if b.cursor+2 > Capacity {
		return outOfBounds("write_u16", b.cursor)
	}
	binary.BigEndian.PutUint16(b.data[b.cursor:b.cursor+2], v)
	b.cursor += 2
	b.touch(b.cursor)
	return nil
}

// WriteU32 writes a big-endian uint32 and advances the cursor.
func (b *Buffer) WriteU32(v uint32) error {
	if b.cursor+4 > Capacity {
		return outOfBounds("write_u32", b.cursor)
	}
	binary.BigEndian.PutUint32(b.data[b.cursor:b.cursor+4], v)
	b.cursor += 4
	b.touch(b.cursor)
	return nil
}

// WriteBytes writes raw bytes and advances the cursor.
func (b *Buffer) WriteBytes(p []byte) error {
	if b.cursor+len(p) > Capacity {
		return outOfBounds("write_bytes", b.cursor)
	}
	copy(b.data[b.cursor:], p)
	b.cursor += len(p)
	b.touch(b.cursor)
	return nil
}

// Skip advances the cursor by n bytes without inspecting them, used to
// pass over RDATA for record types the caller does not parse.
func (b *Buffer) Skip(n int) error {
	if b.cursor+n > Capacity || b.cursor+n < 0 {
		return outOfBounds("skip", b.cursor)
	}
	b.cursor += n
	return nil
}

// ReadBytes reads n raw bytes at the cursor and advances past them.
func (b *Buffer) ReadBytes(n int) ([]byte, error) {
	if b.cursor+n > Capacity {
		return nil, outOfBounds("read_bytes", b.cursor)
	}
	out := make([]byte, n)
	copy(out, b.data[b.cursor:b.cursor+n])
	b.cursor += n
	return out, nil
}

// Rollback resets both the cursor and the high-water mark to pos, undoing
// a partial write (e.g. a record that didn't fit within capacity).
func (b *Buffer) Rollback(pos int) {
	b.cursor = pos
	b.extent = pos
}

// PeekU8 performs an absolute, bounds-checked read without moving the cursor.
func (b *Buffer) PeekU8(pos int) (uint8, error) {
	if pos < 0 || pos+1 > Capacity {
		return 0, outOfBounds("peek_u8", pos)
	}
	return b.data[pos], nil
}

// GetRange performs an absolute, bounds-checked slice read.
func (b *Buffer) GetRange(start, length int) ([]byte, error) {
	if start < 0 || length < 0 || start+length > Capacity {
		return nil, outOfBounds("get_range", start)
	}
	out := make([]byte, length)
	copy(out, b.data[start:start+length])
	return out, nil
}

// PatchU16 overwrites a 16-bit value at an absolute position, used for
// deferred length/offset fixups. It does not move the cursor.
func (b *Buffer) PatchU16(pos int, value uint16) error {
	if pos < 0 || pos+2 > Capacity {
		return outOfBounds("patch_u16", pos)
	}
	binary.BigEndian.PutUint16(b.data[pos:pos+2], value)
	return nil
}

// ReadName decodes a possibly-compressed domain name starting at the cursor
// into a lowercase, dot-joined string, per the §4.1 name decoding protocol.
func (b *Buffer) ReadName() (string, error) {
	pos := b.cursor
	jumps := 0
	jumped := false
	var labels []string

	for {
		if jumps > 5 {
			return "", &PointerLoopError{Jumps: jumps}
		}
		if pos < 0 || pos+1 > Capacity {
			return "", outOfBounds("read_qname", pos)
		}
		lengthByte := b.data[pos]

		if lengthByte&0xC0 == 0xC0 {
			if pos+2 > Capacity {
				return "", outOfBounds("read_qname pointer", pos)
			}
			offset := int(lengthByte&0x3F)<<8 | int(b.data[pos+1])
			if offset >= Capacity {
				return "", outOfBounds("read_qname pointer target", offset)
			}
			if !jumped {
				b.cursor = pos + 2
				jumped = true
			}
			pos = offset
			jumps++
			continue
		}

		if lengthByte&0xC0 != 0 {
			return "", malformed("reserved qname label length bits set")
		}

		pos++
		if lengthByte == 0 {
			if !jumped {
				b.cursor = pos
			}
			break
		}

		length := int(lengthByte)
		if pos+length > Capacity {
			return "", outOfBounds("read_qname label", pos)
		}
		labels = append(labels, strings.ToLower(string(b.data[pos:pos+length])))
		pos += length
	}

	return strings.Join(labels, "."), nil
}

// WriteName encodes an uncompressed domain name as a sequence of
// length-prefixed labels followed by a zero byte. No pointer compression is
// emitted (§4.1, §9 "name compression on emit is deferred").
func (b *Buffer) WriteName(name string) error {
	name = strings.TrimSuffix(name, ".")
	if name == "" {
		return b.WriteU8(0)
	}

	for _, label := range strings.Split(name, ".") {
		if len(label) > 63 {
			return &LabelTooLongError{Label: label}
		}
		if err := b.WriteU8(uint8(len(label))); err != nil {
			return err
		}
		if err := b.WriteBytes([]byte(label)); err != nil {
			return err
		}
	}
	return b.WriteU8(0)
}
