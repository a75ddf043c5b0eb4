// Package otp implements time-based one-time passwords (RFC 6238) on top of
// HOTP (RFC 4226) with HMAC-SHA1, together with the base32 codec used to
// exchange shared secrets with authenticator apps.
//
// The functions in this package are pure: they take the secret, the time
// step or the reference time explicitly and never read the clock.
package otp
