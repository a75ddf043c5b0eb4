package uid

import (
	"crypto/rand"
	"encoding/base64"
)

// Token generates unguessable URL safe strings from crypto/rand.
type Token struct {
	size int
}

// NewToken returns a generator of size random bytes, at least 16.
func NewToken(size int) *Token {
	if size < 16 {
		size = 16
	}
	return &Token{size: size}
}

// Generate panics only when the system random source fails.
func (t *Token) Generate() string {
	b := make([]byte, t.size)
	if _, err := rand.Read(b); err != nil {
		panic("uid: crypto/rand unavailable: " + err.Error())
	}
	return base64.RawURLEncoding.EncodeToString(b)
}
