// Package goroutine runs background work with a concurrency cap and a
// graceful drain on shutdown.
package goroutine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/shandysiswandi/cenety/internal/pkg/stacktrace"
)

// DefaultLimit is used when NewManager receives a non-positive limit.
const DefaultLimit = 256

// Manager starts tasks in goroutines, at most limit at a time, and collects
// their errors until Wait.
type Manager struct {
	wg    sync.WaitGroup
	slots chan struct{}

	mu     sync.Mutex
	errs   []error
	closed bool
}

func NewManager(limit int) *Manager {
	if limit < 1 {
		limit = DefaultLimit
	}
	return &Manager{slots: make(chan struct{}, limit)}
}

// Go runs f in a new goroutine with a context detached from ctx's
// cancellation but carrying its values, so work handed off by a request
// outlives the request. It returns false when the manager is closed or
// saturated and f was dropped. A panic in f is recorded as an error.
func (m *Manager) Go(ctx context.Context, f func(ctx context.Context) error) bool {
	if m == nil {
		return false
	}

	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		slog.WarnContext(ctx, "goroutine manager closed, task dropped")
		return false
	}

	select {
	case m.slots <- struct{}{}:
	default:
		m.mu.Unlock()
		slog.WarnContext(ctx, "goroutine limit reached, task dropped", "limit", cap(m.slots))
		return false
	}
	m.wg.Add(1)
	m.mu.Unlock()

	taskCtx := context.WithoutCancel(ctx)
	go func() {
		defer func() {
			<-m.slots
			m.wg.Done()
		}()
		if err := run(taskCtx, f); err != nil {
			m.record(err)
		}
	}()

	return true
}

// Wait stops accepting tasks, waits for running ones and returns their
// joined errors.
func (m *Manager) Wait() error {
	if m == nil {
		return nil
	}

	m.mu.Lock()
	m.closed = true
	m.mu.Unlock()

	m.wg.Wait()

	m.mu.Lock()
	defer m.mu.Unlock()
	return errors.Join(m.errs...)
}

func (m *Manager) record(err error) {
	m.mu.Lock()
	m.errs = append(m.errs, err)
	m.mu.Unlock()
}

func run(ctx context.Context, f func(ctx context.Context) error) (err error) {
	defer func() {
		if rvr := recover(); rvr != nil {
			frames := stacktrace.Internal(2)
			slog.ErrorContext(ctx, "panic in background task", "panic", rvr, "stack", frames)
			err = fmt.Errorf("goroutine: panic: %v", rvr)
		}
	}()
	return f(ctx)
}
