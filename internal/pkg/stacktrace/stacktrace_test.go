package stacktrace

import (
	"strings"
	"testing"
)

func TestInternal(t *testing.T) {
	frames := Internal(0)

	if len(frames) == 0 {
		t.Fatalf("expected at least the test frame")
	}
	if !strings.HasPrefix(frames[0], "internal/pkg/stacktrace/stacktrace_test.go:") {
		t.Fatalf("unexpected first frame %q", frames[0])
	}
}
