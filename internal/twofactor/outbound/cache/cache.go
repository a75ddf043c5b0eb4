package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shandysiswandi/cenety/internal/pkg/goerror"
	"github.com/shandysiswandi/cenety/internal/pkg/instrument"
	"github.com/shandysiswandi/cenety/internal/twofactor/entity"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const challengePrefix = "twofactor:challenge:"

// Cache keeps sign-in challenges in Redis, keyed by the hash of the token
// handed to the client.
type Cache struct {
	client redis.UniversalClient
	ins    instrument.Instrumentation
}

func NewCache(client redis.UniversalClient, ins instrument.Instrumentation) *Cache {
	return &Cache{client: client, ins: ins}
}

func (c *Cache) SaveChallenge(ctx context.Context, tokenHash string, ch entity.SignInChallenge, ttl time.Duration) (err error) {
	ctx, span := c.startSpan(ctx, "SaveChallenge")
	defer func() { c.endSpan(span, err) }()

	data, err := json.Marshal(ch)
	if err != nil {
		return err
	}

	return c.client.Set(ctx, challengePrefix+tokenHash, data, ttl).Err()
}

func (c *Cache) GetChallenge(ctx context.Context, tokenHash string) (_ *entity.SignInChallenge, err error) {
	ctx, span := c.startSpan(ctx, "GetChallenge")
	defer func() { c.endSpan(span, err) }()

	data, err := c.client.Get(ctx, challengePrefix+tokenHash).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, goerror.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	var ch entity.SignInChallenge
	if err := json.Unmarshal(data, &ch); err != nil {
		return nil, err
	}

	return &ch, nil
}

func (c *Cache) DeleteChallenge(ctx context.Context, tokenHash string) (err error) {
	ctx, span := c.startSpan(ctx, "DeleteChallenge")
	defer func() { c.endSpan(span, err) }()

	return c.client.Del(ctx, challengePrefix+tokenHash).Err()
}

func (c *Cache) startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	return c.ins.Tracer("twofactor.outbound.cache").Start(ctx, name)
}

func (c *Cache) endSpan(span trace.Span, err error) {
	if err != nil && !errors.Is(err, goerror.ErrNotFound) {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}
