package hash

import (
	"fmt"
	"strings"
)

// Hash produces a stored form of a secret and checks candidates against it.
type Hash interface {
	Hash(str string) ([]byte, error)
	Verify(hashed, str string) bool
}

const (
	AlgorithmBcrypt   = "bcrypt"
	AlgorithmArgon2id = "argon2id"
)

// Password hashes new passwords with the configured algorithm and verifies
// stored hashes of either algorithm, detected by their prefix.
type Password struct {
	primary  Hash
	bcrypt   *Bcrypt
	argon2id *Argon2id
}

// NewPassword builds a Password hasher. An empty algorithm selects bcrypt.
func NewPassword(algorithm string, bcryptCost int, pepper string) (*Password, error) {
	p := &Password{
		bcrypt:   NewBcrypt(bcryptCost, pepper),
		argon2id: NewArgon2id(pepper),
	}

	switch strings.ToLower(strings.TrimSpace(algorithm)) {
	case "", AlgorithmBcrypt:
		p.primary = p.bcrypt
	case AlgorithmArgon2id:
		p.primary = p.argon2id
	default:
		return nil, fmt.Errorf("hash: unsupported password algorithm %q", algorithm)
	}

	return p, nil
}

func (p *Password) Hash(str string) ([]byte, error) {
	return p.primary.Hash(str)
}

func (p *Password) Verify(hashed, str string) bool {
	if strings.HasPrefix(hashed, argon2idPrefix) {
		return p.argon2id.Verify(hashed, str)
	}
	return p.bcrypt.Verify(hashed, str)
}
