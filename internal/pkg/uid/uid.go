// Package uid generates identifiers: numeric primary keys, request
// correlation ids and opaque bearer tokens.
package uid

// NumberID generates unique int64 identifiers.
type NumberID interface {
	Generate() int64
}

// StringID generates unique string identifiers.
type StringID interface {
	Generate() string
}
