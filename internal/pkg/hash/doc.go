// Package hash hashes and verifies secrets: account passwords with bcrypt or
// Argon2id, and lookup tokens (backup codes, challenge tokens) with a keyed
// HMAC so they can be matched by equality in storage.
package hash
