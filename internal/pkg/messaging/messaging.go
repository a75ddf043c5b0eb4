// Package messaging publishes and consumes events over a pluggable broker:
// NATS, NSQ, Kafka, Google Pub/Sub or an in-process bus.
//
// Delivery is at-least-once. A handler returning nil acknowledges the
// message; an error asks the broker to redeliver it where the broker
// supports that.
package messaging

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/shandysiswandi/cenety/internal/pkg/stacktrace"
)

var (
	ErrTopicRequired   = errors.New("messaging: topic is required")
	ErrHandlerRequired = errors.New("messaging: handler is required")
	ErrGroupRequired   = errors.New("messaging: consumer group is required")
	ErrClosed          = errors.New("messaging: client is closed")
)

// Messaging is a broker client.
type Messaging interface {
	io.Closer
	Publish(ctx context.Context, topic string, msg Message) error
	// Consume blocks until ctx is done or the subscription fails.
	Consume(ctx context.Context, topic string, h Handler, opts ...ConsumeOption) error
}

type Handler func(ctx context.Context, msg Message) error

type Message struct {
	// ID is assigned by the broker on receipt when it has one.
	ID        string
	Key       []byte
	Body      []byte
	Headers   map[string]string
	Timestamp time.Time
}

type consumeOptions struct {
	// group is the Kafka group id, NSQ channel, NATS queue group or Pub/Sub
	// subscription, depending on the driver.
	group       string
	concurrency int
}

type ConsumeOption func(*consumeOptions)

func WithGroup(group string) ConsumeOption {
	return func(o *consumeOptions) { o.group = group }
}

func WithConcurrency(n int) ConsumeOption {
	return func(o *consumeOptions) { o.concurrency = n }
}

func newConsumeOptions(opts []ConsumeOption) consumeOptions {
	co := consumeOptions{concurrency: 1}
	for _, opt := range opts {
		opt(&co)
	}
	if co.concurrency <= 0 {
		co.concurrency = 1
	}
	return co
}

func validateConsume(ctx context.Context, topic string, h Handler) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if topic == "" {
		return ErrTopicRequired
	}
	if h == nil {
		return ErrHandlerRequired
	}
	return nil
}

// handle runs h and turns a panic into an error so the message is
// redelivered instead of crashing the consumer.
func handle(ctx context.Context, driver string, h Handler, msg Message) (err error) {
	defer func() {
		if rvr := recover(); rvr != nil {
			slog.ErrorContext(ctx, "panic in messaging handler",
				"driver", driver, "panic", rvr, "stack", stacktrace.Internal(1))
			err = fmt.Errorf("messaging: panic in %s handler: %v", driver, rvr)
		}
	}()
	return h(ctx, msg)
}
