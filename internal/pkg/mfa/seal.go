package mfa

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/binary"
	"errors"
	"fmt"
)

// Encryptor seals and opens secrets bound to a Scope.
type Encryptor interface {
	Encrypt(plaintext []byte, scope Scope) ([]byte, error)
	Decrypt(ciphertext []byte, scope Scope) ([]byte, error)
}

// KeyRing resolves AES-256 keys by version. Current is used for sealing,
// Key for opening values sealed under an older version.
type KeyRing interface {
	Current() uint16
	Key(version uint16) ([]byte, error)
}

var (
	ErrKeyNotFound       = errors.New("mfa: key version not found")
	ErrInvalidKeyLength  = errors.New("mfa: key must be 32 bytes")
	ErrEmptyPlaintext    = errors.New("mfa: plaintext is empty")
	ErrMalformedSealed   = errors.New("mfa: malformed ciphertext")
	ErrOpenFailed        = errors.New("mfa: decrypt failed")
	ErrKeyRingNotDefined = errors.New("mfa: key ring not configured")
)

const (
	keySize   = 32
	nonceSize = 12
	headerLen = 2 + nonceSize
)

// AESGCM seals values as [key version uint16][nonce][ciphertext+tag].
type AESGCM struct {
	keys KeyRing
}

func NewAESGCM(keys KeyRing) *AESGCM {
	return &AESGCM{keys: keys}
}

func (a *AESGCM) Encrypt(plaintext []byte, scope Scope) ([]byte, error) {
	if a == nil || a.keys == nil {
		return nil, ErrKeyRingNotDefined
	}
	if len(plaintext) == 0 {
		return nil, ErrEmptyPlaintext
	}

	version := a.keys.Current()
	aead, err := a.aead(version)
	if err != nil {
		return nil, err
	}

	out := make([]byte, headerLen, headerLen+len(plaintext)+aead.Overhead())
	binary.BigEndian.PutUint16(out[:2], version)
	if _, err := rand.Read(out[2:headerLen]); err != nil {
		return nil, fmt.Errorf("mfa: nonce: %w", err)
	}

	return aead.Seal(out, out[2:headerLen], plaintext, aad(scope)), nil
}

func (a *AESGCM) Decrypt(ciphertext []byte, scope Scope) ([]byte, error) {
	if a == nil || a.keys == nil {
		return nil, ErrKeyRingNotDefined
	}
	if len(ciphertext) <= headerLen {
		return nil, ErrMalformedSealed
	}

	aead, err := a.aead(binary.BigEndian.Uint16(ciphertext[:2]))
	if err != nil {
		return nil, err
	}

	plain, err := aead.Open(nil, ciphertext[2:headerLen], ciphertext[headerLen:], aad(scope))
	if err != nil {
		return nil, ErrOpenFailed
	}
	return plain, nil
}

// KeyVersion reports which key sealed ciphertext.
func KeyVersion(ciphertext []byte) (uint16, error) {
	if len(ciphertext) < 2 {
		return 0, ErrMalformedSealed
	}
	return binary.BigEndian.Uint16(ciphertext[:2]), nil
}

func (a *AESGCM) aead(version uint16) (cipher.AEAD, error) {
	key, err := a.keys.Key(version)
	if err != nil {
		return nil, err
	}
	if len(key) != keySize {
		return nil, ErrInvalidKeyLength
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("mfa: cipher: %w", err)
	}
	return cipher.NewGCM(block)
}

func aad(s Scope) []byte {
	sum := sha256.Sum256(fmt.Appendf(nil, "uid=%d\npurpose=%s\n", s.UserID, s.Purpose))
	return sum[:]
}

// StaticKeyRing is a KeyRing backed by keys loaded from configuration.
type StaticKeyRing struct {
	current uint16
	keys    map[uint16][]byte
}

// NewStaticKeyRing copies keys and validates that current exists and every
// key has the AES-256 length.
func NewStaticKeyRing(current uint16, keys map[uint16][]byte) (*StaticKeyRing, error) {
	ring := &StaticKeyRing{current: current, keys: make(map[uint16][]byte, len(keys))}
	for v, k := range keys {
		if len(k) != keySize {
			return nil, fmt.Errorf("%w: version %d has %d bytes", ErrInvalidKeyLength, v, len(k))
		}
		ring.keys[v] = append([]byte(nil), k...)
	}
	if _, ok := ring.keys[current]; !ok {
		return nil, fmt.Errorf("%w: current version %d", ErrKeyNotFound, current)
	}
	return ring, nil
}

func (r *StaticKeyRing) Current() uint16 { return r.current }

func (r *StaticKeyRing) Key(version uint16) ([]byte, error) {
	k, ok := r.keys[version]
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrKeyNotFound, version)
	}
	return k, nil
}
