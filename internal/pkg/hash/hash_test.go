package hash

import (
	"strings"
	"testing"
)

func TestPasswordHashers(t *testing.T) {
	cases := []struct {
		name      string
		algorithm string
		prefix    string
	}{
		{name: "default is bcrypt", algorithm: "", prefix: "$2a$"},
		{name: "bcrypt", algorithm: "bcrypt", prefix: "$2a$"},
		{name: "argon2id", algorithm: "ARGON2ID", prefix: argon2idPrefix},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			// Arrange
			p, err := NewPassword(tc.algorithm, 4, "pepper")
			if err != nil {
				t.Fatalf("NewPassword: %v", err)
			}

			// Act
			hashed, err := p.Hash("Secret123!")
			if err != nil {
				t.Fatalf("Hash: %v", err)
			}

			// Assert
			if !strings.HasPrefix(string(hashed), tc.prefix) {
				t.Fatalf("expected prefix %q, got %q", tc.prefix, hashed)
			}
			if !p.Verify(string(hashed), "Secret123!") {
				t.Fatalf("expected password to verify")
			}
			if p.Verify(string(hashed), "Secret123?") {
				t.Fatalf("expected wrong password to fail")
			}
		})
	}
}

func TestPasswordVerifiesEitherFormat(t *testing.T) {
	bc, _ := NewPassword("bcrypt", 4, "")
	ar, _ := NewPassword("argon2id", 4, "")

	old, err := bc.Hash("pw")
	if err != nil {
		t.Fatalf("Hash: %v", err)
	}
	if !ar.Verify(string(old), "pw") {
		t.Fatalf("argon2id configured hasher must still verify bcrypt hashes")
	}
}

func TestNewPasswordUnknownAlgorithm(t *testing.T) {
	if _, err := NewPassword("md5", 4, ""); err == nil {
		t.Fatalf("expected error for unsupported algorithm")
	}
}

func TestHMACSHA256(t *testing.T) {
	h := NewHMACSHA256("secret")

	a, _ := h.Hash("AB12CD34")
	b, _ := h.Hash("AB12CD34")
	other, _ := NewHMACSHA256("other").Hash("AB12CD34")

	if string(a) != string(b) {
		t.Fatalf("expected deterministic output")
	}
	if len(a) != 64 {
		t.Fatalf("expected 64 hex characters, got %d", len(a))
	}
	if string(a) == string(other) {
		t.Fatalf("expected key to change the output")
	}
	if !h.Verify(string(a), "AB12CD34") || h.Verify(string(a), "AB12CD35") {
		t.Fatalf("unexpected Verify result")
	}
}
