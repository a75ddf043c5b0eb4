package idempotency

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	tcredis "github.com/testcontainers/testcontainers-go/modules/redis"
)

func newTracker(t *testing.T) *Tracker {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping redis container test in short mode")
	}

	ctx := context.Background()
	ctr, err := tcredis.Run(ctx, "redis:7-alpine")
	if err != nil {
		t.Fatalf("start redis: %v", err)
	}
	t.Cleanup(func() { _ = ctr.Terminate(context.Background()) })

	uri, err := ctr.ConnectionString(ctx)
	if err != nil {
		t.Fatalf("connection string: %v", err)
	}
	opt, err := redis.ParseURL(uri)
	if err != nil {
		t.Fatalf("parse url: %v", err)
	}
	client := redis.NewClient(opt)
	t.Cleanup(func() { _ = client.Close() })

	return New(client)
}

func TestExecRunsOnce(t *testing.T) {
	// Arrange
	tr := newTracker(t)
	ctx := context.Background()
	calls := 0
	fn := func(context.Context) error { calls++; return nil }

	// Act
	first := tr.Exec(ctx, "event:1", fn)
	second := tr.Exec(ctx, "event:1", fn)

	// Assert
	if first != nil {
		t.Fatalf("first Exec: %v", first)
	}
	if !errors.Is(second, ErrCompleted) {
		t.Fatalf("expected ErrCompleted, got %v", second)
	}
	if calls != 1 {
		t.Fatalf("expected one call, got %d", calls)
	}
}

func TestExecFailedState(t *testing.T) {
	tr := newTracker(t)
	ctx := context.Background()
	boom := errors.New("boom")

	if err := tr.Exec(ctx, "event:2", func(context.Context) error { return boom }); !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}
	if err := tr.Exec(ctx, "event:2", func(context.Context) error { return nil }); !errors.Is(err, ErrFailed) {
		t.Fatalf("expected ErrFailed, got %v", err)
	}
	if err := tr.Exec(ctx, "event:2", func(context.Context) error { return nil }, WithRetryFailed()); err != nil {
		t.Fatalf("expected retry to succeed, got %v", err)
	}
}

func TestAcquireInProgressAndRelease(t *testing.T) {
	tr := newTracker(t)
	ctx := context.Background()

	if s, err := tr.Acquire(ctx, "k", time.Minute); err != nil || s != StateNone {
		t.Fatalf("first acquire: %v %v", s, err)
	}
	if s, err := tr.Acquire(ctx, "k", time.Minute); err != nil || s != StateInProgress {
		t.Fatalf("second acquire: %v %v", s, err)
	}
	if err := tr.Release(ctx, "k"); err != nil {
		t.Fatalf("release: %v", err)
	}
	if s, err := tr.Acquire(ctx, "k", time.Minute); err != nil || s != StateNone {
		t.Fatalf("acquire after release: %v %v", s, err)
	}
}
