package otp

import (
	"errors"
	"strings"
)

const alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ234567"

// ErrInvalidEncoding is returned by DecodeStrict when the input contains a
// character outside the base32 alphabet.
var ErrInvalidEncoding = errors.New("otp: invalid base32 encoding")

// Encode renders b as unpadded, upper case base32.
func Encode(b []byte) string {
	var (
		sb    strings.Builder
		value uint32
		bits  uint
	)
	sb.Grow((len(b)*8 + 4) / 5)

	for _, c := range b {
		value = value<<8 | uint32(c)
		bits += 8
		for bits >= 5 {
			sb.WriteByte(alphabet[(value>>(bits-5))&31])
			bits -= 5
		}
	}

	if bits > 0 {
		sb.WriteByte(alphabet[(value<<(5-bits))&31])
	}

	return sb.String()
}

// Decode is the lenient decoder used for stored secrets. Input is case
// insensitive and trailing '=' are ignored. A character outside the alphabet
// is folded in as -1 (all bits set), so it yields wrong bytes instead of an
// error. Secrets written by Encode always decode unchanged.
func Decode(s string) []byte {
	out, _ := decode(s, false)
	return out
}

// DecodeStrict behaves like Decode but rejects characters outside the
// alphabet with ErrInvalidEncoding.
func DecodeStrict(s string) ([]byte, error) {
	return decode(s, true)
}

func decode(s string, strict bool) ([]byte, error) {
	s = strings.ToUpper(strings.TrimRight(s, "="))

	var (
		value uint32
		bits  uint
	)
	out := make([]byte, 0, len(s)*5/8)

	for i := 0; i < len(s); i++ {
		idx := int32(strings.IndexByte(alphabet, s[i]))
		if idx < 0 && strict {
			return nil, ErrInvalidEncoding
		}

		value = value<<5 | uint32(idx)
		bits += 5
		if bits >= 8 {
			out = append(out, byte(value>>(bits-8)))
			bits -= 8
		}
	}

	return out, nil
}
