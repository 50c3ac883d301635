//
// SPDX-License-Identifier: GPL-3.0-or-later
//

package dnswalk

import (
	"encoding/binary"
	"errors"
	"net"
)

// RCodeNameError is the response code signalling that the queried
// name does not exist (NXDOMAIN).
const RCodeNameError = 3

// Errors emitted while parsing and validating responses.
var (
	// ErrInvalidResponse means the message is not a response or its
	// transaction ID does not match the query's.
	ErrInvalidResponse = errors.New("invalid DNS response")

	// ErrTruncatedResponse means the response has the TC bit set: the
	// full message did not fit in one datagram and this package has no
	// larger transport to retry over.
	ErrTruncatedResponse = errors.New("truncated DNS response")

	// ErrNoData means the response does not carry the record the
	// caller asked for.
	ErrNoData = errors.New("no answer from DNS server")
)

// Header is the fixed 12-byte prefix of a DNS message with every
// field individually unpacked.
type Header struct {
	// ID is the transaction ID.
	ID uint16

	// QR is set on responses and clear on queries.
	QR bool

	// Opcode is the kind of query.
	Opcode uint8

	// AA is set when the responding server is authoritative for the
	// zone of the queried name.
	AA bool

	// TC is set when the message was truncated by the transport.
	TC bool

	// RD is set when the query asks for recursion.
	RD bool

	// RA is set when the server offers recursion.
	RA bool

	// RCode is the response code.
	RCode uint8

	// QDCount, ANCount, NSCount and ARCount are the number of entries
	// in the question, answer, authority and additional sections.
	QDCount uint16
	ANCount uint16
	NSCount uint16
	ARCount uint16
}

// ParseHeader unpacks the fixed header at the start of msg.
func ParseHeader(msg []byte) (Header, error) {
	if len(msg) < headerSize {
		return Header{}, ErrMalformedMessage
	}
	flags := binary.BigEndian.Uint16(msg[2:4])
	return Header{
		ID:      binary.BigEndian.Uint16(msg[0:2]),
		QR:      flags&0x8000 != 0,
		Opcode:  uint8(flags>>11) & 0x0f,
		AA:      flags&0x0400 != 0,
		TC:      flags&0x0200 != 0,
		RD:      flags&0x0100 != 0,
		RA:      flags&0x0080 != 0,
		RCode:   uint8(flags & 0x0f),
		QDCount: binary.BigEndian.Uint16(msg[4:6]),
		ANCount: binary.BigEndian.Uint16(msg[6:8]),
		NSCount: binary.BigEndian.Uint16(msg[8:10]),
		ARCount: binary.BigEndian.Uint16(msg[10:12]),
	}, nil
}

// Record is one resource record inside a parsed message.
//
// The RDATA is kept as an offset into the whole message rather than as
// a copied slice because it may contain compressed names that point
// back into earlier parts of the message.
type Record struct {
	// Name is the record's own name.
	Name string

	// Type is the record type.
	Type uint16

	// Class is the record class.
	Class uint16

	// TTL is the record time-to-live in seconds.
	TTL uint32

	msg     []byte
	dataOff int
	dataLen int
}

// Data returns the record's RDATA bytes.
func (r Record) Data() []byte {
	return r.msg[r.dataOff : r.dataOff+r.dataLen]
}

// A returns the record's 4-byte RDATA formatted as a dotted quad.
func (r Record) A() (string, error) {
	if r.Type != TypeA || r.dataLen != net.IPv4len {
		return "", ErrMalformedMessage
	}
	return net.IP(r.Data()).String(), nil
}

// CNAME returns the canonical name carried in the record's RDATA.
func (r Record) CNAME() (string, error) {
	if r.Type != TypeCNAME {
		return "", ErrMalformedMessage
	}
	return r.dataName(r.dataOff)
}

// MX returns the mail exchange name carried in the record's RDATA,
// which starts with a 2-byte preference field we skip.
func (r Record) MX() (string, error) {
	if r.Type != TypeMX || r.dataLen < 3 {
		return "", ErrMalformedMessage
	}
	return r.dataName(r.dataOff + 2)
}

// NS returns the nameserver name carried in the record's RDATA. This
// is distinct from the record's own Name, which is the zone the
// nameserver is responsible for.
func (r Record) NS() (string, error) {
	if r.Type != TypeNS {
		return "", ErrMalformedMessage
	}
	return r.dataName(r.dataOff)
}

// dataName decodes a name at off inside the record's RDATA. The name
// as it appears there must end within the declared data length;
// compression pointers may still reach backward outside the RDATA,
// which is how compressed responses are laid out.
func (r Record) dataName(off int) (string, error) {
	name, next, err := DecodeName(r.msg, off)
	if err != nil {
		return "", err
	}
	if next > r.dataOff+r.dataLen {
		return "", ErrMalformedMessage
	}
	return name, nil
}

// parseRecord decodes the record starting at off inside msg and
// returns it along with the offset just past its RDATA.
func parseRecord(msg []byte, off int) (Record, int, error) {
	name, off, err := DecodeName(msg, off)
	if err != nil {
		return Record{}, 0, err
	}
	if off+10 > len(msg) {
		return Record{}, 0, ErrMalformedMessage
	}
	rec := Record{
		Name:    name,
		Type:    binary.BigEndian.Uint16(msg[off : off+2]),
		Class:   binary.BigEndian.Uint16(msg[off+2 : off+4]),
		TTL:     binary.BigEndian.Uint32(msg[off+4 : off+8]),
		msg:     msg,
		dataOff: off + 10,
		dataLen: int(binary.BigEndian.Uint16(msg[off+8 : off+10])),
	}
	if rec.dataOff+rec.dataLen > len(msg) {
		return Record{}, 0, ErrMalformedMessage
	}
	return rec, rec.dataOff + rec.dataLen, nil
}

// questionEnd returns the offset just past the question starting at off:
// the end of the decoded qname plus the qtype and qclass fields.
func questionEnd(msg []byte, off int) (int, error) {
	_, off, err := DecodeName(msg, off)
	if err != nil {
		return 0, err
	}
	if off+4 > len(msg) {
		return 0, ErrMalformedMessage
	}
	return off + 4, nil
}

// Response is a parsed DNS response.
//
// Construct using [ParseResponse].
type Response struct {
	// Header is the unpacked message header.
	Header Header

	// Answer, Authority and Additional are the three record sections.
	Answer     []Record
	Authority  []Record
	Additional []Record
}

// ParseResponse parses msg as the response to the query with the given
// transaction ID.
//
// The caller's ID must match the response's: matching the two is what
// pairs a reply datagram with the query that prompted it. A truncated
// response yields [ErrTruncatedResponse]; anything structurally broken
// yields [ErrMalformedMessage].
func ParseResponse(id uint16, msg []byte) (*Response, error) {
	header, err := ParseHeader(msg)
	if err != nil {
		return nil, err
	}

	// 1. make sure the message is actually a response
	if !header.QR {
		return nil, ErrInvalidResponse
	}

	// 2. make sure the response ID matches the query ID
	if header.ID != id {
		return nil, ErrInvalidResponse
	}

	// 3. refuse truncated responses rather than parsing half a message
	if header.TC {
		return nil, ErrTruncatedResponse
	}

	// 4. skip the question section
	off := headerSize
	for range header.QDCount {
		if off, err = questionEnd(msg, off); err != nil {
			return nil, err
		}
	}

	// 5. collect the three record sections
	resp := &Response{Header: header}
	for _, section := range []struct {
		count uint16
		out   *[]Record
	}{
		{header.ANCount, &resp.Answer},
		{header.NSCount, &resp.Authority},
		{header.ARCount, &resp.Additional},
	} {
		for range section.count {
			var rec Record
			if rec, off, err = parseRecord(msg, off); err != nil {
				return nil, err
			}
			*section.out = append(*section.out, rec)
		}
	}
	return resp, nil
}

// FirstA returns the address of the first A record in the answer
// section as a dotted quad.
func (r *Response) FirstA() (string, error) {
	for _, rec := range r.Answer {
		if rec.Type == TypeA && rec.Class == ClassINET {
			return rec.A()
		}
	}
	return "", ErrNoData
}

// FirstCNAME returns the target of the first CNAME record in the
// answer section.
func (r *Response) FirstCNAME() (string, error) {
	for _, rec := range r.Answer {
		if rec.Type == TypeCNAME && rec.Class == ClassINET {
			return rec.CNAME()
		}
	}
	return "", ErrNoData
}

// FirstMX returns the mail exchange name of the first MX record in
// the answer section.
func (r *Response) FirstMX() (string, error) {
	for _, rec := range r.Answer {
		if rec.Type == TypeMX && rec.Class == ClassINET {
			return rec.MX()
		}
	}
	return "", ErrNoData
}

// NameServers returns the nameserver names carried by NS records in
// the authority section, in message order.
func (r *Response) NameServers() ([]string, error) {
	var out []string
	for _, rec := range r.Authority {
		if rec.Type != TypeNS || rec.Class != ClassINET {
			continue
		}
		name, err := rec.NS()
		if err != nil {
			return nil, err
		}
		out = append(out, name)
	}
	return out, nil
}

// HasSOA reports whether the authority section carries an SOA record,
// which signals a name error for the queried name.
func (r *Response) HasSOA() bool {
	for _, rec := range r.Authority {
		if rec.Type == TypeSOA && rec.Class == ClassINET {
			return true
		}
	}
	return false
}
