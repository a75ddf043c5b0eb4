package otp

import (
	"crypto/hmac"
	"crypto/sha1" //nolint:gosec // RFC 6238 default PRF
	"crypto/subtle"
	"encoding/binary"
	"fmt"
	"time"
)

const (
	// Period is the width of one time step.
	Period = 30 * time.Second
	// Digits is the length of a generated code.
	Digits = 6
	// DefaultWindow accepts the previous and the next step besides the current one.
	DefaultWindow = 1

	modulo = 1_000_000
)

// TimeStep returns floor(unix(t) / 30). Instants before the epoch map to 0.
func TimeStep(t time.Time) uint64 {
	sec := t.Unix()
	if sec < 0 {
		return 0
	}
	return uint64(sec) / uint64(Period/time.Second)
}

// GenerateTOTP derives the 6 digit code for secret at the given time step.
func GenerateTOTP(secret []byte, step uint64) string {
	var msg [8]byte
	binary.BigEndian.PutUint64(msg[:], step)

	mac := hmac.New(sha1.New, secret)
	mac.Write(msg[:])
	sum := mac.Sum(nil)

	offset := sum[len(sum)-1] & 0x0F
	code := binary.BigEndian.Uint32(sum[offset:offset+4]) & 0x7FFFFFFF

	return fmt.Sprintf("%0*d", Digits, code%modulo)
}

// VerifyTOTP reports whether code matches secretBase32 at any step within
// window steps of now. Malformed secrets or codes never verify.
func VerifyTOTP(code, secretBase32 string, window int, now time.Time) bool {
	if len(code) != Digits || !isDigits(code) || secretBase32 == "" {
		return false
	}
	if window < 0 {
		window = 0
	}

	secret, err := DecodeStrict(secretBase32)
	if err != nil || len(secret) == 0 {
		return false
	}

	current := int64(TimeStep(now))
	matched := 0
	for i := -window; i <= window; i++ {
		step := current + int64(i)
		if step < 0 {
			continue
		}
		// the whole window is scanned
		matched |= subtle.ConstantTimeCompare([]byte(GenerateTOTP(secret, uint64(step))), []byte(code))
	}

	return matched == 1
}

func isDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
