package mq

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/shandysiswandi/cenety/internal/pkg/instrument"
	"github.com/shandysiswandi/cenety/internal/pkg/messaging"
	"github.com/shandysiswandi/cenety/internal/shared/event"
	"github.com/shandysiswandi/cenety/internal/twofactor/entity"
	"github.com/shandysiswandi/cenety/internal/twofactor/usecase"
)

func TestPublishSecurityEvent(t *testing.T) {
	// Arrange
	bus := messaging.NewMemory()
	t.Cleanup(func() { _ = bus.Close() })

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	got := make(chan messaging.Message, 1)
	go func() {
		_ = bus.Consume(ctx, event.SecurityEventDestination, func(_ context.Context, msg messaging.Message) error {
			got <- msg
			return nil
		})
	}()
	time.Sleep(50 * time.Millisecond)

	pub := NewMessaging(bus, instrument.NewNoop())
	at := time.Date(2025, 5, 1, 10, 0, 0, 0, time.UTC)

	// Act
	err := pub.PublishSecurityEvent(instrument.SetCorrelationID(ctx, "corr-1"), usecase.SecurityEvent{
		ID:         "evt-1",
		UserID:     7,
		Email:      "jane@example.com",
		Action:     entity.AuditActionTwoFactorEnabled,
		OccurredAt: at,
	})

	// Assert
	if err != nil {
		t.Fatalf("PublishSecurityEvent() error = %v", err)
	}

	select {
	case msg := <-got:
		if msg.Headers[keyOfCorrelationID] != "corr-1" {
			t.Fatalf("correlation header = %q, want corr-1", msg.Headers[keyOfCorrelationID])
		}
		var body event.SecurityEventMessage
		if err := json.Unmarshal(msg.Body, &body); err != nil {
			t.Fatalf("unmarshal body: %v", err)
		}
		if body.Action != "TWO_FACTOR_ENABLED" || body.UserID != 7 || !body.OccurredAt.Equal(at) {
			t.Fatalf("body = %+v", body)
		}
	case <-ctx.Done():
		t.Fatal("message was not delivered")
	}
}
