package messaging

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"
)

func TestNewFromDriver(t *testing.T) {
	if _, err := NewFromDriver(context.Background(), "carrier-pigeon", FactoryOptions{}); !errors.Is(err, ErrUnknownDriver) {
		t.Fatalf("expected ErrUnknownDriver, got %v", err)
	}

	m, err := NewFromDriver(context.Background(), DriverMemory, FactoryOptions{})
	if err != nil {
		t.Fatalf("memory driver: %v", err)
	}
	if _, ok := m.(*Memory); !ok {
		t.Fatalf("expected *Memory, got %T", m)
	}
}

func TestDriverConfigValidation(t *testing.T) {
	if _, err := NewKafka(KafkaConfig{}); !errors.Is(err, ErrKafkaBrokersRequired) {
		t.Fatalf("kafka: %v", err)
	}
	if _, err := NewNATS(NATSConfig{}); !errors.Is(err, ErrNATSURLRequired) {
		t.Fatalf("nats: %v", err)
	}
	if _, err := NewPubSub(context.Background(), PubSubConfig{}); !errors.Is(err, ErrPubSubProjectRequired) {
		t.Fatalf("pubsub: %v", err)
	}

	n, err := NewNSQ(NSQConfig{})
	if err != nil {
		t.Fatalf("nsq: %v", err)
	}
	if err := n.Publish(context.Background(), "t", Message{}); !errors.Is(err, ErrNSQProducerRequired) {
		t.Fatalf("nsq publish: %v", err)
	}
	h := func(context.Context, Message) error { return nil }
	if err := n.Consume(context.Background(), "t", h); !errors.Is(err, ErrGroupRequired) {
		t.Fatalf("nsq consume: %v", err)
	}
}

func TestMemoryDeliversAndRetries(t *testing.T) {
	// Arrange
	m := NewMemory()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var calls atomic.Int32
	got := make(chan Message, 1)
	done := make(chan error, 1)
	go func() {
		done <- m.Consume(ctx, "security.events", func(_ context.Context, msg Message) error {
			if calls.Add(1) == 1 {
				return errors.New("transient")
			}
			got <- msg
			return nil
		})
	}()

	// wait for the subscription to register
	deadline := time.Now().Add(time.Second)
	for {
		m.mu.RLock()
		n := len(m.subs["security.events"])
		m.mu.RUnlock()
		if n == 1 {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("consumer never subscribed")
		}
		time.Sleep(5 * time.Millisecond)
	}

	// Act
	if err := m.Publish(ctx, "security.events", Message{Body: []byte(`{"a":1}`)}); err != nil {
		t.Fatalf("Publish: %v", err)
	}

	// Assert
	select {
	case msg := <-got:
		if string(msg.Body) != `{"a":1}` || msg.ID != "1" {
			t.Fatalf("unexpected message %+v", msg)
		}
	case <-time.After(time.Second):
		t.Fatal("message not delivered")
	}
	if calls.Load() != 2 {
		t.Fatalf("expected a retry, got %d calls", calls.Load())
	}

	cancel()
	if err := <-done; !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestMemoryClosed(t *testing.T) {
	m := NewMemory()
	_ = m.Close()
	if err := m.Publish(context.Background(), "t", Message{}); !errors.Is(err, ErrClosed) {
		t.Fatalf("expected ErrClosed, got %v", err)
	}
}

func TestHandleRecoversPanic(t *testing.T) {
	err := handle(context.Background(), DriverMemory, func(context.Context, Message) error {
		panic("boom")
	}, Message{})
	if err == nil {
		t.Fatal("expected error from panicking handler")
	}
}
