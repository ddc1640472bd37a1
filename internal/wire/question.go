package wire

import "fmt"

// ClassIN is the only DNS record class this implementation emits; it is
// read and discarded on decode (§3: "Class is always IN on emission and
// ignored on decode").
const ClassIN = 1

// RRType identifies a DNS question or resource-record type (§3 "Query
// Type"). The recognized codes have names; any other 16-bit value is a
// legitimate UNKNOWN type that round-trips through its numeric code exactly.
type RRType uint16

const (
	TypeA     RRType = 1
	TypeNS    RRType = 2
	TypeCNAME RRType = 5
	TypeMX    RRType = 15
	TypeAAAA  RRType = 28
)

// Known reports whether t is one of the recognized query/record types.
func (t RRType) Known() bool {
	switch t {
	case TypeA, TypeNS, TypeCNAME, TypeMX, TypeAAAA:
		return true
	default:
		return false
	}
}

func (t RRType) String() string {
	switch t {
	case TypeA:
		return "A"
	case TypeNS:
		return "NS"
	case TypeCNAME:
		return "CNAME"
	case TypeMX:
		return "MX"
	case TypeAAAA:
		return "AAAA"
	default:
		return fmt.Sprintf("UNKNOWN(%d)", uint16(t))
	}
}

// Question is a single DNS question section entry (§4.3).
type Question struct {
	Name  string
	QType RRType
}

// DecodeQuestion reads a qname, a 16-bit type, and a 16-bit class (discarded)
// from the cursor.
func DecodeQuestion(buf *Buffer) (Question, error) {
	name, err := buf.ReadName()
	if err != nil {
		return Question{}, err
	}
	if buf.extent-buf.cursor < 4 {
		return Question{}, malformed("decode question: truncated type/class")
	}
	t, err := buf.ReadU16()
	if err != nil {
		return Question{}, malformed("decode question type")
	}
	if _, err := buf.ReadU16(); err != nil { // class, discarded
		return Question{}, malformed("decode question class")
	}
	return Question{Name: name, QType: RRType(t)}, nil
}

// EncodeQuestion writes the qname, the type, and the literal class IN.
func EncodeQuestion(buf *Buffer, q Question) error {
	if err := buf.WriteName(q.Name); err != nil {
		return err
	}
	if err := buf.WriteU16(uint16(q.QType)); err != nil {
		return err
	}
	return buf.WriteU16(ClassIN)
}
