//
// SPDX-License-Identifier: GPL-3.0-or-later
//

package dnswalk

import (
	"encoding/binary"

	"github.com/miekg/dns"
	"golang.org/x/net/idna"
)

// Record types understood by this package.
const (
	TypeA     uint16 = 1
	TypeNS    uint16 = 2
	TypeCNAME uint16 = 5
	TypeSOA   uint16 = 6
	TypeMX    uint16 = 15
)

// ClassINET is the Internet record class.
const ClassINET uint16 = 1

// headerSize is the size of the fixed DNS message header.
const headerSize = 12

// Query is one iterative DNS query for an address or a mail exchange.
//
// Construct using [NewQuery] or set the MANDATORY fields.
type Query struct {
	// ID is the OPTIONAL transaction ID used to match the response
	// against the query. [NewQuery] randomizes it; tests that need
	// deterministic output set it explicitly.
	ID uint16

	// Name is the MANDATORY domain name to query.
	Name string

	// WantMX OPTIONALLY selects a mail-exchange (MX) query instead
	// of an address (A) query.
	WantMX bool
}

// NewQuery constructs a new [*Query] with a randomized transaction ID.
func NewQuery(name string, wantMX bool) *Query {
	return &Query{
		ID:     dns.Id(),
		Name:   name,
		WantMX: wantMX,
	}
}

// Type returns the query type: [TypeMX] when WantMX is set, [TypeA] otherwise.
func (q *Query) Type() uint16 {
	if q.WantMX {
		return TypeMX
	}
	return TypeA
}

// Pack serializes the query into wire form.
//
// The header does not request recursion: the walk from the root is
// driven explicitly by [*Resolver], one hop at a time. The output is
// byte-identical across calls with the same fields.
func (q *Query) Pack() ([]byte, error) {
	// IDNA encode the domain name.
	punyName, err := idna.Lookup.ToASCII(q.Name)
	if err != nil {
		return nil, err
	}

	qname, err := EncodeName(punyName)
	if err != nil {
		return nil, err
	}

	// Header: flags zero, QDCOUNT one, every other count zero.
	out := make([]byte, headerSize, headerSize+len(qname)+4)
	binary.BigEndian.PutUint16(out[0:2], q.ID)
	binary.BigEndian.PutUint16(out[4:6], 1)

	// Question: qname, qtype, qclass.
	out = append(out, qname...)
	out = binary.BigEndian.AppendUint16(out, q.Type())
	out = binary.BigEndian.AppendUint16(out, ClassINET)
	return out, nil
}
