// Package stacktrace trims panic stacks down to the frames of this module.
package stacktrace

import (
	"fmt"
	"runtime"
	"strings"
)

// Internal returns "internal/<path>.go:<line>" for each caller frame that
// lives under an internal/ directory, skipping skip frames above the caller.
func Internal(skip int) []string {
	pcs := make([]uintptr, 64)
	n := runtime.Callers(skip+2, pcs)
	frames := runtime.CallersFrames(pcs[:n])

	var out []string
	for {
		f, more := frames.Next()
		if i := strings.Index(f.File, "/internal/"); i >= 0 {
			out = append(out, fmt.Sprintf("%s:%d", f.File[i+1:], f.Line))
		}
		if !more {
			break
		}
	}
	return out
}
