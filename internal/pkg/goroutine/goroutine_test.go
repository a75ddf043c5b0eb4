package goroutine

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"testing"
)

func TestManagerCollectsErrors(t *testing.T) {
	// Arrange
	m := NewManager(4)
	boom := errors.New("boom")
	var ran atomic.Int32

	// Act
	for i := 0; i < 3; i++ {
		m.Go(context.Background(), func(context.Context) error {
			ran.Add(1)
			return nil
		})
	}
	m.Go(context.Background(), func(context.Context) error { return boom })
	err := m.Wait()

	// Assert
	if ran.Load() != 3 {
		t.Fatalf("expected 3 tasks to run, got %d", ran.Load())
	}
	if !errors.Is(err, boom) {
		t.Fatalf("expected boom in %v", err)
	}
}

func TestManagerRecoversPanic(t *testing.T) {
	m := NewManager(1)
	m.Go(context.Background(), func(context.Context) error { panic("bad") })

	err := m.Wait()
	if err == nil || !strings.Contains(err.Error(), "panic: bad") {
		t.Fatalf("expected panic error, got %v", err)
	}
}

func TestManagerDetachesCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	release := make(chan struct{})
	var ctxErr atomic.Value

	m := NewManager(1)
	m.Go(ctx, func(taskCtx context.Context) error {
		<-release
		ctxErr.Store(taskCtx.Err() == nil)
		return nil
	})
	cancel()
	close(release)
	_ = m.Wait()

	if ok, _ := ctxErr.Load().(bool); !ok {
		t.Fatalf("task context must not be canceled with its parent")
	}
}

func TestManagerRejectsWhenSaturatedOrClosed(t *testing.T) {
	m := NewManager(1)
	block := make(chan struct{})

	if !m.Go(context.Background(), func(context.Context) error { <-block; return nil }) {
		t.Fatalf("first task should be accepted")
	}
	if m.Go(context.Background(), func(context.Context) error { return nil }) {
		t.Fatalf("second task should be dropped while saturated")
	}
	close(block)
	_ = m.Wait()

	if m.Go(context.Background(), func(context.Context) error { return nil }) {
		t.Fatalf("closed manager should drop tasks")
	}
}
