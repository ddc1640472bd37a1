package wire

import (
	"fmt"
	"net"
)

// RRHeader carries the fields common to every resource-record variant (§3):
// every variant carries a domain name and a TTL.
type RRHeader struct {
	Domain string
	TTL    uint32
}

// Record is the tagged-variant interface implemented by every resource
// record kind this codec understands (§9: "modeled as a tagged variant
// enumerating A / NS / CNAME / MX / AAAA / UNKNOWN"; dispatch on record type
// at decode/encode is exhaustive, no inheritance required).
type Record interface {
	Header() RRHeader
	Type() RRType
}

// ARecord is an IPv4 address record.
type ARecord struct {
	H    RRHeader
	Addr net.IP
}

func (r *ARecord) Header() RRHeader { return r.H }
func (r *ARecord) Type() RRType     { return TypeA }

// NSRecord is an authoritative name server record.
type NSRecord struct {
	H    RRHeader
	Host string
}

func (r *NSRecord) Header() RRHeader { return r.H }
func (r *NSRecord) Type() RRType     { return TypeNS }

// CNAMERecord is a canonical-name alias record.
type CNAMERecord struct {
	H    RRHeader
	Host string
}

func (r *CNAMERecord) Header() RRHeader { return r.H }
func (r *CNAMERecord) Type() RRType     { return TypeCNAME }

// MXRecord is a mail-exchange record.
type MXRecord struct {
	H        RRHeader
	Priority uint16
	Host     string
}

func (r *MXRecord) Header() RRHeader { return r.H }
func (r *MXRecord) Type() RRType     { return TypeMX }

// AAAARecord is an IPv6 address record.
type AAAARecord struct {
	H    RRHeader
	Addr net.IP
}

func (r *AAAARecord) Header() RRHeader { return r.H }
func (r *AAAARecord) Type() RRType     { return TypeAAAA }

// UnknownRecord preserves enough metadata to round-trip an unrecognized
// record type in length but not RDATA bytes (§3).
type UnknownRecord struct {
	H       RRHeader
	RawType RRType
	DataLen uint16
}

func (r *UnknownRecord) Header() RRHeader { return r.H }
func (r *UnknownRecord) Type() RRType     { return r.RawType }

// DecodeRecord reads one resource record from the cursor and dispatches on
// its type (§4.4). The cursor always ends up advanced by exactly the
// declared data_len: for NS/CNAME/MX that's a consequence of trusting the
// qname decoder to consume the right number of bytes, and for UNKNOWN it is
// enforced directly via Skip.
func DecodeRecord(buf *Buffer) (Record, error) {
	domain, err := buf.ReadName()
	if err != nil {
		return nil, err
	}
	rawType, err := buf.ReadU16()
	if err != nil {
		return nil, malformed("decode record type")
	}
	if _, err := buf.ReadU16(); err != nil { // class, discarded
		return nil, malformed("decode record class")
	}
	ttl, err := buf.ReadU32()
	if err != nil {
		return nil, malformed("decode record ttl")
	}
	dataLen, err := buf.ReadU16()
	if err != nil {
		return nil, malformed("decode record data_len")
	}

	h := RRHeader{Domain: domain, TTL: ttl}
	rtype := RRType(rawType)

	switch rtype {
	case TypeA:
		if dataLen != 4 {
			return nil, malformed("A record data_len must be 4, got %d", dataLen)
		}
		b, err := buf.ReadBytes(4)
		if err != nil {
			return nil, err
		}
		return &ARecord{H: h, Addr: net.IP(b)}, nil

	case TypeAAAA:
		if dataLen != 16 {
			return nil, malformed("AAAA record data_len must be 16, got %d", dataLen)
		}
		b, err := buf.ReadBytes(16)
		if err != nil {
			return nil, err
		}
		return &AAAARecord{H: h, Addr: net.IP(b)}, nil

	case TypeNS:
		host, err := buf.ReadName()
		if err != nil {
			return nil, err
		}
		return &NSRecord{H: h, Host: host}, nil

	case TypeCNAME:
		host, err := buf.ReadName()
		if err != nil {
			return nil, err
		}
		return &CNAMERecord{H: h, Host: host}, nil

	case TypeMX:
		priority, err := buf.ReadU16()
		if err != nil {
			return nil, malformed("decode MX priority")
		}
		host, err := buf.ReadName()
		if err != nil {
			return nil, err
		}
		return &MXRecord{H: h, Priority: priority, Host: host}, nil

	default:
		if err := buf.Skip(int(dataLen)); err != nil {
			return nil, err
		}
		return &UnknownRecord{H: h, RawType: rtype, DataLen: dataLen}, nil
	}
}

// EncodeRecord writes one resource record to the cursor (§4.4). The query
// handler leaves UNKNOWN records out of every reply it builds, so the
// encoder no-ops them entirely rather than re-synthesize RDATA it never
// kept.
func EncodeRecord(buf *Buffer, r Record) error {
	if _, ok := r.(*UnknownRecord); ok {
		return nil
	}

	h := r.Header()
	if err := buf.WriteName(h.Domain); err != nil {
		return err
	}
	if err := buf.WriteU16(uint16(r.Type())); err != nil {
		return err
	}
	if err := buf.WriteU16(ClassIN); err != nil {
		return err
	}
	if err := buf.WriteU32(h.TTL); err != nil {
		return err
	}

	switch v := r.(type) {
	case *ARecord:
		ip4 := v.Addr.To4()
		if ip4 == nil {
			return fmt.Errorf("encode A record: not an IPv4 address: %w", ErrWire)
		}
		if err := buf.WriteU16(4); err != nil {
			return err
		}
		return buf.WriteBytes(ip4)

	case *AAAARecord:
		ip16 := v.Addr.To16()
		if ip16 == nil {
			return fmt.Errorf("encode AAAA record: not an IPv6 address: %w", ErrWire)
		}
		if err := buf.WriteU16(16); err != nil {
			return err
		}
		return buf.WriteBytes(ip16)

	case *NSRecord:
		return encodeNamedRData(buf, func() error { return buf.WriteName(v.Host) })

	case *CNAMERecord:
		return encodeNamedRData(buf, func() error { return buf.WriteName(v.Host) })

	case *MXRecord:
		return encodeNamedRData(buf, func() error {
			if err := buf.WriteU16(v.Priority); err != nil {
				return err
			}
			return buf.WriteName(v.Host)
		})

	default:
		return fmt.Errorf("encode record: unsupported type %s: %w", r.Type(), ErrWire)
	}
}

// encodeNamedRData implements the §4.4 placeholder-length pattern: remember
// the cursor, write a zero placeholder length, write the RDATA, then patch
// the placeholder with (current cursor - placeholder - 2).
func encodeNamedRData(buf *Buffer, writeRData func() error) error {
	lenPos := buf.Cursor()
	if err := buf.WriteU16(0); err != nil {
		return err
	}
	start := buf.Cursor()
	if err := writeRData(); err != nil {
		return err
	}
	return buf.PatchU16(lenPos, uint16(buf.Cursor()-start))
}
