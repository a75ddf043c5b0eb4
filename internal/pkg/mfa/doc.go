// Package mfa holds the cryptographic helpers of the second factor: sealing
// shared secrets at rest and minting single-use backup codes.
package mfa
