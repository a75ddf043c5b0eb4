package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shandysiswandi/cenety/internal/pkg/goerror"
	"github.com/shandysiswandi/cenety/internal/pkg/instrument"
	"github.com/shandysiswandi/cenety/internal/twofactor/entity"
	"github.com/testcontainers/testcontainers-go"
	tcredis "github.com/testcontainers/testcontainers-go/modules/redis"
)

func newTestCache(t *testing.T) *Cache {
	t.Helper()

	if testing.Short() {
		t.Skip("skipping container test in short mode")
	}

	ctx := context.Background()
	ctr, err := tcredis.Run(ctx, "redis:7-alpine")
	if err != nil {
		t.Fatalf("start redis: %v", err)
	}
	t.Cleanup(func() { _ = testcontainers.TerminateContainer(ctr) })

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

	return NewCache(client, instrument.NewNoop())
}

func TestChallengeRoundTrip(t *testing.T) {
	c := newTestCache(t)
	ctx := context.Background()

	// Arrange
	want := entity.SignInChallenge{UserID: 42, Email: "jane@example.com"}

	// Act
	if err := c.SaveChallenge(ctx, "h1", want, time.Minute); err != nil {
		t.Fatalf("SaveChallenge() error = %v", err)
	}
	got, err := c.GetChallenge(ctx, "h1")

	// Assert
	if err != nil {
		t.Fatalf("GetChallenge() error = %v", err)
	}
	if *got != want {
		t.Fatalf("GetChallenge() = %+v, want %+v", *got, want)
	}

	if err := c.DeleteChallenge(ctx, "h1"); err != nil {
		t.Fatalf("DeleteChallenge() error = %v", err)
	}
	if _, err := c.GetChallenge(ctx, "h1"); !errors.Is(err, goerror.ErrNotFound) {
		t.Fatalf("GetChallenge() after delete error = %v, want ErrNotFound", err)
	}
}

func TestChallengeExpires(t *testing.T) {
	c := newTestCache(t)
	ctx := context.Background()

	if err := c.SaveChallenge(ctx, "h2", entity.SignInChallenge{UserID: 1}, 500*time.Millisecond); err != nil {
		t.Fatalf("SaveChallenge() error = %v", err)
	}

	time.Sleep(1200 * time.Millisecond)

	if _, err := c.GetChallenge(ctx, "h2"); !errors.Is(err, goerror.ErrNotFound) {
		t.Fatalf("GetChallenge() after ttl error = %v, want ErrNotFound", err)
	}
}
