// Package idempotency runs an operation at most once per key, tracking its
// state in Redis so that redelivered messages and retried requests observe
// the earlier outcome instead of repeating side effects.
package idempotency

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

var (
	ErrInProgress   = errors.New("idempotency: operation already in progress")
	ErrCompleted    = errors.New("idempotency: operation already completed")
	ErrFailed       = errors.New("idempotency: operation already failed")
	ErrUnknownState = errors.New("idempotency: unknown state")
)

type State string

const (
	StateNone       State = ""
	StateInProgress State = "in_progress"
	StateCompleted  State = "completed"
	StateFailed     State = "failed"
)

var stateErrors = map[State]error{
	StateInProgress: ErrInProgress,
	StateCompleted:  ErrCompleted,
	StateFailed:     ErrFailed,
}

// Idempotency is satisfied by *Tracker.
type Idempotency interface {
	Exec(ctx context.Context, key string, fn func(context.Context) error, opts ...Option) error
}

type Tracker struct {
	client redis.UniversalClient
	prefix string
}

func New(client redis.UniversalClient) *Tracker {
	return &Tracker{client: client, prefix: "idempotency:"}
}

type options struct {
	lock time.Duration
	ttl  time.Duration
	// retryFailed lets a key whose previous run failed run again.
	retryFailed bool
}

type Option func(*options)

// WithLock bounds how long an in-progress marker survives a crashed run.
func WithLock(d time.Duration) Option {
	return func(o *options) { o.lock = d }
}

// WithTTL is how long the final state is remembered.
func WithTTL(d time.Duration) Option {
	return func(o *options) { o.ttl = d }
}

func WithRetryFailed() Option {
	return func(o *options) { o.retryFailed = true }
}

// Acquire marks key in progress. It returns StateNone when the caller owns
// the key, otherwise the state recorded by an earlier run.
func (t *Tracker) Acquire(ctx context.Context, key string, lock time.Duration) (State, error) {
	k := t.prefix + key

	for range 2 {
		ok, err := t.client.SetNX(ctx, k, string(StateInProgress), lock).Result()
		if err != nil {
			return StateNone, err
		}
		if ok {
			return StateNone, nil
		}

		v, err := t.client.Get(ctx, k).Result()
		if errors.Is(err, redis.Nil) {
			// expired between SETNX and GET
			continue
		}
		if err != nil {
			return StateNone, err
		}

		if s := State(v); stateErrors[s] != nil {
			return s, nil
		}
		return StateNone, ErrUnknownState
	}
	return StateNone, ErrInProgress
}

func (t *Tracker) mark(ctx context.Context, key string, s State, ttl time.Duration) error {
	return t.client.Set(ctx, t.prefix+key, string(s), ttl).Err()
}

// Release forgets key so the operation may run again.
func (t *Tracker) Release(ctx context.Context, key string) error {
	return t.client.Del(ctx, t.prefix+key).Err()
}

// Exec runs fn unless key has been seen within the TTL, in which case the
// matching sentinel error is returned.
func (t *Tracker) Exec(ctx context.Context, key string, fn func(context.Context) error, opts ...Option) error {
	o := options{lock: time.Minute, ttl: 24 * time.Hour}
	for _, opt := range opts {
		opt(&o)
	}

	state, err := t.Acquire(ctx, key, o.lock)
	if err != nil {
		return err
	}
	if state == StateFailed && o.retryFailed {
		if err := t.mark(ctx, key, StateInProgress, o.lock); err != nil {
			return err
		}
		state = StateNone
	}
	if state != StateNone {
		return stateErrors[state]
	}

	if err := fn(ctx); err != nil {
		return errors.Join(err, t.mark(ctx, key, StateFailed, o.ttl))
	}
	return t.mark(ctx, key, StateCompleted, o.ttl)
}
