package mfa

// Purpose names what a ciphertext protects. It is bound into the AAD so a
// value sealed for one purpose cannot be opened as another.
type Purpose string

// PurposeOTPSeed marks the TOTP shared secret of an account.
const PurposeOTPSeed Purpose = "otp_seed"

// Scope binds a ciphertext to its owner and purpose.
type Scope struct {
	UserID  int64
	Purpose Purpose
}
