// Package bitvec encodes per-sample presence vectors as compact base64 strings.
//
// A vector of n booleans is packed most-significant-bit first into
// ceil(n/8) bytes and then encoded with standard base64. Bit i lives in
// byte i/8 at position 7-i%8:
//
//	[true, false, true]  ->  0b1010_0000  ->  "oA=="
//
// The upstream network generator emits one such string per gene of interest
// and node; the viewer decodes them with the number of conditions as length.
package bitvec

import (
	"encoding/base64"
)

// Decode unpacks encoded into exactly count booleans.
//
// An empty string decodes to count false values. Bits beyond count are
// ignored and positions past the end of the decoded bytes read as false.
// Malformed base64 is treated like an absent vector.
func Decode(encoded string, count int) []bool {
	if count <= 0 {
		return []bool{}
	}
	bits := make([]bool, count)
	if encoded == "" {
		return bits
	}

	raw, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return bits
	}

	for i := range bits {
		b := i / 8
		if b >= len(raw) {
			break
		}
		bits[i] = raw[b]&(1<<(7-i%8)) != 0
	}
	return bits
}

// Encode packs bits MSB-first and returns the standard base64 encoding.
// Encode(nil) returns the empty string.
func Encode(bits []bool) string {
	if len(bits) == 0 {
		return ""
	}
	raw := make([]byte, (len(bits)+7)/8)
	for i, set := range bits {
		if set {
			raw[i/8] |= 1 << (7 - i%8)
		}
	}
	return base64.StdEncoding.EncodeToString(raw)
}

// Count returns the number of set bits.
func Count(bits []bool) int {
	n := 0
	for _, b := range bits {
		if b {
			n++
		}
	}
	return n
}

// Any reports whether at least one bit is set.
func Any(bits []bool) bool {
	for _, b := range bits {
		if b {
			return true
		}
	}
	return false
}
