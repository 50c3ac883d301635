//
// SPDX-License-Identifier: GPL-3.0-or-later
//

package dnswalk

import (
	"strings"
	"testing"

	"github.com/bassosimone/runtimex"
	"github.com/stretchr/testify/require"
)

func TestEncodeName(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []byte
		err      error
	}{
		{
			name:  "SimpleName",
			input: "www.example.com",
			expected: []byte{
				3, 'w', 'w', 'w',
				7, 'e', 'x', 'a', 'm', 'p', 'l', 'e',
				3, 'c', 'o', 'm',
				0,
			},
		},

		{
			name:  "FullyQualifiedName",
			input: "www.example.com.",
			expected: []byte{
				3, 'w', 'w', 'w',
				7, 'e', 'x', 'a', 'm', 'p', 'l', 'e',
				3, 'c', 'o', 'm',
				0,
			},
		},

		{
			name:     "SingleLabel",
			input:    "localhost",
			expected: append([]byte{9}, append([]byte("localhost"), 0)...),
		},

		{
			name:  "LongestValidLabel",
			input: strings.Repeat("a", 63) + ".example",
			expected: append(
				append([]byte{63}, strings.Repeat("a", 63)...),
				append([]byte{7}, append([]byte("example"), 0)...)...,
			),
		},

		{
			name:  "LabelTooLong",
			input: strings.Repeat("a", 64) + ".example",
			err:   ErrInvalidName,
		},

		{
			name:  "EmptyLabel",
			input: "www..example.com",
			err:   ErrInvalidName,
		},

		{
			name:  "EmptyName",
			input: "",
			err:   ErrInvalidName,
		},

		{
			name: "TotalEncodingTooLong",
			// four 63-byte labels encode to 4*64+1 = 257 bytes
			input: strings.Repeat(strings.Repeat("a", 63)+".", 4),
			err:   ErrInvalidName,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := EncodeName(tt.input)
			if tt.err != nil {
				require.ErrorIs(t, err, tt.err)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.expected, out)
		})
	}
}

func TestEncodeNameDeterministic(t *testing.T) {
	first := runtimex.PanicOnError1(EncodeName("www.example.com"))
	second := runtimex.PanicOnError1(EncodeName("www.example.com"))
	require.Equal(t, first, second)
}

func TestNameRoundTrip(t *testing.T) {
	names := []string{
		"www.example.com",
		"localhost",
		"a.b.c.d.e.f",
		strings.Repeat("x", 63) + ".example.org",
	}
	for _, name := range names {
		t.Run(name, func(t *testing.T) {
			encoded := runtimex.PanicOnError1(EncodeName(name))
			decoded, next, err := DecodeName(encoded, 0)
			require.NoError(t, err)
			require.Equal(t, name, decoded)
			require.Equal(t, len(encoded), next)
		})
	}
}

func TestDecodeNameCompression(t *testing.T) {
	// A buffer containing "example.com" at offset 0 and, at offset 13,
	// "www" followed by a pointer back to offset 0.
	buf := []byte{
		7, 'e', 'x', 'a', 'm', 'p', 'l', 'e',
		3, 'c', 'o', 'm',
		0,
		3, 'w', 'w', 'w',
		0xc0, 0x00,
	}

	name, next, err := DecodeName(buf, 13)
	require.NoError(t, err)
	require.Equal(t, "www.example.com", name)

	// the next offset is right past the two pointer bytes, not past
	// the region the pointer dereferences
	require.Equal(t, 17+2, next)
}

func TestDecodeNameChainedPointers(t *testing.T) {
	// "com" at 0, a pointer-terminated "example" at 5, and at 15 a
	// "www" whose pointer goes through both.
	buf := []byte{
		3, 'c', 'o', 'm',
		0,
		7, 'e', 'x', 'a', 'm', 'p', 'l', 'e',
		0xc0, 0x00,
		3, 'w', 'w', 'w',
		0xc0, 0x05,
	}

	name, next, err := DecodeName(buf, 15)
	require.NoError(t, err)
	require.Equal(t, "www.example.com", name)
	require.Equal(t, 21, next)
}

func TestDecodeNamePointerBudget(t *testing.T) {
	// A chain of strictly-backward pointers, each targeting the
	// previous one, ending at a root label: every hop is individually
	// legal, so only the hop budget stops the walk.
	buf := []byte{0, 0}
	for i := 1; i <= maxPointerHops+1; i++ {
		target := 2 * (i - 1)
		buf = append(buf, 0xc0|byte(target>>8), byte(target))
	}

	// exactly at the budget the name still decodes
	name, next, err := DecodeName(buf, 2*maxPointerHops)
	require.NoError(t, err)
	require.Equal(t, "", name)
	require.Equal(t, 2*maxPointerHops+2, next)

	// one extra hop exhausts the budget
	_, _, err = DecodeName(buf, 2*(maxPointerHops+1))
	require.ErrorIs(t, err, ErrMalformedMessage)
}

func TestDecodeNameMalformed(t *testing.T) {
	tests := []struct {
		name string
		buf  []byte
		off  int
	}{
		{
			name: "EmptyBuffer",
			buf:  nil,
			off:  0,
		},

		{
			name: "OffsetPastEnd",
			buf:  []byte{0},
			off:  7,
		},

		{
			name: "LabelPastEnd",
			buf:  []byte{5, 'a', 'b'},
			off:  0,
		},

		{
			name: "MissingTerminator",
			buf:  []byte{3, 'w', 'w', 'w'},
			off:  0,
		},

		{
			name: "TruncatedPointer",
			buf:  []byte{0xc0},
			off:  0,
		},

		{
			name: "SelfPointer",
			buf:  []byte{0xc0, 0x00},
			off:  0,
		},

		{
			name: "ForwardPointer",
			buf:  []byte{0xc0, 0x04, 0, 0, 3, 'w', 'w', 'w', 0},
			off:  0,
		},

		{
			name: "PointerCycle",
			buf:  []byte{3, 'w', 'w', 'w', 0xc0, 0x04, 0xc0, 0x00},
			off:  6,
		},

		{
			name: "ReservedLengthPrefix",
			buf:  []byte{0x40, 'a', 0},
			off:  0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := DecodeName(tt.buf, tt.off)
			require.ErrorIs(t, err, ErrMalformedMessage)
		})
	}
}
