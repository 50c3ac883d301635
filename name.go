//
// SPDX-License-Identifier: GPL-3.0-or-later
//

package dnswalk

import (
	"errors"
	"strings"
)

const (
	// maxLabelSize is the maximum size of a single name label.
	maxLabelSize = 63

	// maxNameSize is the maximum size of a whole name in wire form.
	maxNameSize = 255

	// maxPointerHops bounds how many compression pointers we follow
	// while decoding a single name, so that a hostile message cannot
	// keep us dereferencing forever.
	maxPointerHops = 128
)

// Errors emitted by [EncodeName] and [DecodeName].
var (
	// ErrInvalidName means a domain name cannot be represented in wire form.
	ErrInvalidName = errors.New("invalid domain name")

	// ErrMalformedMessage means a message is truncated or contains an
	// invalid compression pointer.
	ErrMalformedMessage = errors.New("malformed DNS message")
)

// EncodeName encodes a dotted domain name into RFC 1035 wire form: each
// label prefixed by its one-byte length, terminated by a zero-length
// label. A trailing root dot is accepted and ignored.
//
// Returns [ErrInvalidName] if any label is empty or longer than 63
// bytes, or if the whole encoding exceeds 255 bytes.
func EncodeName(name string) ([]byte, error) {
	name = strings.TrimSuffix(name, ".")
	out := make([]byte, 0, len(name)+2)
	for _, label := range strings.Split(name, ".") {
		if len(label) < 1 || len(label) > maxLabelSize {
			return nil, ErrInvalidName
		}
		out = append(out, byte(len(label)))
		out = append(out, label...)
	}
	out = append(out, 0)
	if len(out) > maxNameSize {
		return nil, ErrInvalidName
	}
	return out, nil
}

// DecodeName decodes the wire-form name starting at off inside msg and
// returns it in dotted form along with the offset just past the name as
// it appears at off.
//
// Compression pointers (top two bits of the length byte set) are
// followed, but only backward: each pointer target must be strictly
// less than the position of the pointer itself. The returned offset
// accounts for exactly two bytes per pointer, never for the size of
// the region the pointer dereferences, so sequential parsing resumes
// after the pointer.
//
// Returns [ErrMalformedMessage] on truncation, on a forward or cyclic
// pointer, or when the pointer-hop budget is exhausted.
func DecodeName(msg []byte, off int) (string, int, error) {
	var (
		labels []string
		next   = -1 // resume offset, fixed by the first pointer taken
		hops   = 0
	)
	for {
		if off < 0 || off >= len(msg) {
			return "", 0, ErrMalformedMessage
		}
		size := int(msg[off])
		switch {
		// 1. the zero-length label terminates the name
		case size == 0:
			if next < 0 {
				next = off + 1
			}
			return strings.Join(labels, "."), next, nil

		// 2. a two-byte pointer replaces the rest of the name with a
		// backward reference into the same message
		case size&0xc0 == 0xc0:
			if off+1 >= len(msg) {
				return "", 0, ErrMalformedMessage
			}
			target := (size&0x3f)<<8 | int(msg[off+1])
			if target >= off {
				return "", 0, ErrMalformedMessage
			}
			if hops++; hops > maxPointerHops {
				return "", 0, ErrMalformedMessage
			}
			if next < 0 {
				next = off + 2
			}
			off = target

		// 3. the 0x40 and 0x80 length prefixes are reserved
		case size&0xc0 != 0:
			return "", 0, ErrMalformedMessage

		// 4. a literal label
		default:
			if off+1+size > len(msg) {
				return "", 0, ErrMalformedMessage
			}
			labels = append(labels, string(msg[off+1:off+1+size]))
			off += 1 + size
		}
	}
}
