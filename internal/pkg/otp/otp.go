package otp

import (
	"crypto/rand"
	"time"
)

// SecretSize is the length in bytes of a freshly generated shared secret.
const SecretSize = 20

// OTP defines the contract for TOTP operations.
type OTP interface {
	// Generate creates a secret and provisioning URI for an account name.
	Generate(accountName string) (secret string, uri string, err error)
	// Validate checks whether a code is valid at the given time.
	Validate(code, secret string, at time.Time) bool
	// GenerateCode creates a TOTP code for the given secret and time.
	GenerateCode(secret string, at time.Time) (string, error)
}

// TOTP implements OTP with SHA1, 6 digits and a 30 second period.
type TOTP struct {
	issuer string
	window int
}

// NewTOTP returns a TOTP that labels secrets with issuer and accepts codes
// within window steps. An empty issuer falls back to DefaultIssuer and a
// negative window to DefaultWindow.
func NewTOTP(issuer string, window int) *TOTP {
	if issuer == "" {
		issuer = DefaultIssuer
	}
	if window < 0 {
		window = DefaultWindow
	}

	return &TOTP{issuer: issuer, window: window}
}

// Issuer returns the label shown in authenticator apps.
func (o *TOTP) Issuer() string {
	return o.issuer
}

func (o *TOTP) Generate(accountName string) (string, string, error) {
	buf := make([]byte, SecretSize)
	if _, err := rand.Read(buf); err != nil {
		return "", "", err
	}

	secret := Encode(buf)
	return secret, ProvisioningURI(o.issuer, accountName, secret), nil
}

func (o *TOTP) Validate(code, secret string, at time.Time) bool {
	return VerifyTOTP(code, secret, o.window, at)
}

func (o *TOTP) GenerateCode(secret string, at time.Time) (string, error) {
	key, err := DecodeStrict(secret)
	if err != nil {
		return "", err
	}

	return GenerateTOTP(key, TimeStep(at)), nil
}
