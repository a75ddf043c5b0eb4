// Package clock lets business logic read "now" through an interface so tests
// can pin time, which TOTP verification depends on.
package clock
