package messaging

import (
	"context"
	"strconv"
	"sync"
	"time"
)

// Memory is an in-process broker. Every group subscribed to a topic gets
// each message once; a failed handler call is retried up to maxAttempts.
type Memory struct {
	mu     sync.RWMutex
	subs   map[string][]chan Message
	seq    uint64
	closed bool
}

const memoryMaxAttempts = 3

func NewMemory() *Memory {
	return &Memory{subs: make(map[string][]chan Message)}
}

func (m *Memory) Publish(ctx context.Context, topic string, msg Message) error {
	if topic == "" {
		return ErrTopicRequired
	}

	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return ErrClosed
	}
	m.seq++
	msg.ID = strconv.FormatUint(m.seq, 10)
	if msg.Timestamp.IsZero() {
		msg.Timestamp = time.Now()
	}
	subs := append([]chan Message(nil), m.subs[topic]...)
	m.mu.Unlock()

	for _, ch := range subs {
		select {
		case ch <- msg:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return nil
}

func (m *Memory) Consume(ctx context.Context, topic string, h Handler, opts ...ConsumeOption) error {
	if err := validateConsume(ctx, topic, h); err != nil {
		return err
	}
	co := newConsumeOptions(opts)

	ch := make(chan Message, 64)
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return ErrClosed
	}
	m.subs[topic] = append(m.subs[topic], ch)
	m.mu.Unlock()

	defer m.unsubscribe(topic, ch)

	var wg sync.WaitGroup
	for range co.concurrency {
		wg.Go(func() {
			for {
				select {
				case <-ctx.Done():
					return
				case msg := <-ch:
					for range memoryMaxAttempts {
						if handle(ctx, DriverMemory, h, msg) == nil {
							break
						}
					}
				}
			}
		})
	}
	wg.Wait()
	return ctx.Err()
}

func (m *Memory) unsubscribe(topic string, ch chan Message) {
	m.mu.Lock()
	defer m.mu.Unlock()

	subs := m.subs[topic]
	for i := range subs {
		if subs[i] == ch {
			m.subs[topic] = append(subs[:i], subs[i+1:]...)
			return
		}
	}
}

func (m *Memory) Close() error {
	m.mu.Lock()
	m.closed = true
	m.mu.Unlock()
	return nil
}
