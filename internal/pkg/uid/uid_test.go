package uid

import (
	"testing"

	"github.com/google/uuid"
)

func TestSnowflakeUniqueAndIncreasing(t *testing.T) {
	gen, err := NewSnowflake(1)
	if err != nil {
		t.Fatalf("NewSnowflake: %v", err)
	}

	prev := int64(0)
	for i := 0; i < 1000; i++ {
		id := gen.Generate()
		if id <= prev {
			t.Fatalf("expected increasing ids, got %d after %d", id, prev)
		}
		prev = id
	}
}

func TestSnowflakeInvalidNode(t *testing.T) {
	if _, err := NewSnowflake(4096); err == nil {
		t.Fatalf("expected error for out of range node")
	}
}

func TestUUIDVersion(t *testing.T) {
	id, err := uuid.Parse(NewUUID().Generate())
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if id.Version() != 7 {
		t.Fatalf("expected version 7, got %d", id.Version())
	}
}

func TestToken(t *testing.T) {
	gen := NewToken(8)

	a, b := gen.Generate(), gen.Generate()
	if a == b {
		t.Fatalf("expected distinct tokens")
	}
	if len(a) != 22 {
		t.Fatalf("expected 22 characters for 16 bytes, got %d", len(a))
	}
}
