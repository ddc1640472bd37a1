package wire

import "encoding/binary"

// Packet is a complete DNS message (§3): a header plus the four ordered
// record sections. Every Packet exclusively owns its sections and their
// records; there is no cross-packet sharing.
type Packet struct {
	Header      Header
	Questions   []Question
	Answers     []Record
	Authorities []Record
	Additionals []Record
}

// Decode reads a complete packet from msg (§4.5). Sections are read in
// header-declared order — questions, answers, authorities, additionals —
// with no reordering.
func Decode(msg []byte) (Packet, error) {
	buf, err := FromBytes(msg)
	if err != nil {
		return Packet{}, err
	}

	h, err := DecodeHeader(buf)
	if err != nil {
		return Packet{}, err
	}

	p := Packet{Header: h}

	p.Questions = make([]Question, 0, h.QDCount)
	for i := uint16(0); i < h.QDCount; i++ {
		q, err := DecodeQuestion(buf)
		if err != nil {
			return Packet{}, err
		}
		p.Questions = append(p.Questions, q)
	}

	if p.Answers, err = decodeRecords(buf, h.ANCount); err != nil {
		return Packet{}, err
	}
	if p.Authorities, err = decodeRecords(buf, h.NSCount); err != nil {
		return Packet{}, err
	}
	if p.Additionals, err = decodeRecords(buf, h.ARCount); err != nil {
		return Packet{}, err
	}
	return p, nil
}

func decodeRecords(buf *Buffer, count uint16) ([]Record, error) {
	records := make([]Record, 0, count)
	for i := uint16(0); i < count; i++ {
		r, err := DecodeRecord(buf)
		if err != nil {
			return nil, err
		}
		records = append(records, r)
	}
	return records, nil
}

// Encode serializes the packet to wire format, overwriting the header's four
// section counters from the actual section lengths first (§3, §4.5). It
// fails if the encoded message would exceed the 512-byte capacity; see
// EncodeTruncated for the best-effort alternative the query handler uses.
func (p Packet) Encode() ([]byte, error) {
	buf := NewBuffer()
	if err := p.encodeHeaderAndQuestions(buf); err != nil {
		return nil, err
	}
	for _, r := range p.Answers {
		if err := EncodeRecord(buf, r); err != nil {
			return nil, err
		}
	}
	for _, r := range p.Authorities {
		if err := EncodeRecord(buf, r); err != nil {
			return nil, err
		}
	}
	for _, r := range p.Additionals {
		if err := EncodeRecord(buf, r); err != nil {
			return nil, err
		}
	}
	return buf.Bytes(), nil
}

func (p Packet) encodeHeaderAndQuestions(buf *Buffer) error {
	h := p.Header
	h.QDCount = uint16(len(p.Questions))
	h.ANCount = uint16(len(p.Answers))
	h.NSCount = uint16(len(p.Authorities))
	h.ARCount = uint16(len(p.Additionals))

	if err := EncodeHeader(buf, h); err != nil {
		return err
	}
	for _, q := range p.Questions {
		if err := EncodeQuestion(buf, q); err != nil {
			return err
		}
	}
	return nil
}

// EncodeTruncated serializes the packet like Encode, but if the message
// would overflow the 512-byte capacity it stops at the last fully
// serialized record boundary, patches the section counters down to what was
// actually written, and sets the header's truncated bit instead of failing
// (§4.7).
func (p Packet) EncodeTruncated() ([]byte, error) {
	buf := NewBuffer()
	if err := p.encodeHeaderAndQuestions(buf); err != nil {
		return nil, err
	}

	writtenAN, truncated := encodeRecordsBestEffort(buf, p.Answers)
	writtenNS, writtenAR := 0, 0
	if !truncated {
		writtenNS, truncated = encodeRecordsBestEffort(buf, p.Authorities)
	}
	if !truncated {
		writtenAR, truncated = encodeRecordsBestEffort(buf, p.Additionals)
	}
	if !truncated {
		return buf.Bytes(), nil
	}

	if err := buf.PatchU16(headerANCountOffset, uint16(writtenAN)); err != nil {
		return nil, err
	}
	if err := buf.PatchU16(headerNSCountOffset, uint16(writtenNS)); err != nil {
		return nil, err
	}
	if err := buf.PatchU16(headerARCountOffset, uint16(writtenAR)); err != nil {
		return nil, err
	}

	word, err := buf.GetRange(headerFlagsOffset, 2)
	if err != nil {
		return nil, err
	}
	if err := buf.PatchU16(headerFlagsOffset, binary.BigEndian.Uint16(word)|truncatedBit); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

// encodeRecordsBestEffort writes as many records as fit within capacity,
// rolling back the partial write of the first one that doesn't.
func encodeRecordsBestEffort(buf *Buffer, records []Record) (written int, truncated bool) {
	for _, r := range records {
		mark := buf.Cursor()
		if err := EncodeRecord(buf, r); err != nil {
			buf.Rollback(mark)
			return written, true
		}
		written++
	}
	return written, false
}
