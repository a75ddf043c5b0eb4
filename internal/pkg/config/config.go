// Package config exposes typed, read-only access to the service settings.
package config

import (
	"io"
	"time"
)

// Config is the read side of the service configuration. Missing keys yield
// the zero value of the requested type.
type Config interface {
	io.Closer

	IsSet(key string) bool
	GetString(key string) string
	GetBool(key string) bool
	GetInt(key string) int
	GetInt64(key string) int64
	GetUint16(key string) uint16
	GetFloat64(key string) float64

	// GetSecond and GetMinute read an integer and scale it to a duration.
	GetSecond(key string) time.Duration
	GetMinute(key string) time.Duration

	// GetBinary decodes a standard base64 value.
	GetBinary(key string) []byte
	// GetArray splits "a, b,c" into trimmed, non-empty items.
	GetArray(key string) []string
	// GetMap parses "k1:v1,k2:v2".
	GetMap(key string) map[string]string
}
