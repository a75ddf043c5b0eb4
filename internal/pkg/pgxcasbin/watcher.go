package pgxcasbin

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/casbin/casbin/v3"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sethvargo/go-retry"
	"go.uber.org/atomic"
)

const defaultChannel = "casbin_policy_changed"

type message struct {
	// ID is the instance that changed the policy.
	ID string `json:"id"`
}

// Watcher implements persist.Watcher. Any change triggers a full reload on
// the other instances; the sending instance has already applied it.
type Watcher struct {
	pool     *pgxpool.Pool
	channel  string
	localID  string
	callback atomic.Value
	closed   *atomic.Bool
	cancel   context.CancelFunc
}

func NewWatcher(ctx context.Context, pool *pgxpool.Pool, channel string) *Watcher {
	if channel == "" {
		channel = defaultChannel
	}

	listenCtx, cancel := context.WithCancel(ctx)
	w := &Watcher{
		pool:     pool,
		channel:  channel,
		localID:  uuid.NewString(),
		closed:   atomic.NewBool(false),
		cancel:   cancel,
	}
	w.callback.Store(func(string) {})

	go func() {
		b := retry.WithCappedDuration(5*time.Second, retry.NewFibonacci(200*time.Millisecond))
		err := retry.Do(listenCtx, b, func(ctx context.Context) error {
			if err := w.listen(ctx); err != nil && ctx.Err() == nil {
				slog.Error("casbin watcher lost its listener", "channel", w.channel, "error", err)
				return retry.RetryableError(err)
			}
			return nil
		})
		if err != nil && !errors.Is(err, context.Canceled) {
			slog.Error("casbin watcher stopped", "error", err)
		}
	}()

	return w
}

// ReloadCallback reloads e's policy from the adapter.
func ReloadCallback(e casbin.IEnforcer) func(string) {
	return func(string) {
		if err := e.LoadPolicy(); err != nil {
			slog.Error("casbin watcher failed to reload policy", "error", err)
		}
	}
}

func (w *Watcher) SetUpdateCallback(fn func(string)) error {
	w.callback.Store(fn)
	return nil
}

// Update announces a policy change to the other instances.
func (w *Watcher) Update() error {
	if w.closed.Load() {
		return nil
	}
	b, err := json.Marshal(message{ID: w.localID})
	if err != nil {
		return err
	}
	_, err = w.pool.Exec(context.Background(), "SELECT pg_notify($1, $2)", w.channel, string(b))
	return err
}

func (w *Watcher) Close() {
	if w.closed.CompareAndSwap(false, true) {
		w.cancel()
	}
}

func (w *Watcher) listen(ctx context.Context) error {
	conn, err := w.pool.Acquire(ctx)
	if err != nil {
		return err
	}
	defer conn.Release()

	if _, err := conn.Exec(ctx, fmt.Sprintf("LISTEN %q", w.channel)); err != nil {
		return err
	}

	for {
		n, err := conn.Conn().WaitForNotification(ctx)
		if err != nil {
			return err
		}

		var m message
		if err := json.Unmarshal([]byte(n.Payload), &m); err != nil {
			slog.Warn("casbin watcher ignored malformed payload", "payload", n.Payload)
			continue
		}
		if m.ID == w.localID {
			continue
		}
		if fn, ok := w.callback.Load().(func(string)); ok {
			fn(n.Payload)
		}
	}
}
