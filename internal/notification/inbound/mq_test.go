package inbound

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/shandysiswandi/cenety/internal/notification/usecase"
	"github.com/shandysiswandi/cenety/internal/pkg/config"
	"github.com/shandysiswandi/cenety/internal/pkg/goroutine"
	"github.com/shandysiswandi/cenety/internal/pkg/instrument"
	"github.com/shandysiswandi/cenety/internal/pkg/messaging"
	"github.com/shandysiswandi/cenety/internal/pkg/uid"
	"github.com/shandysiswandi/cenety/internal/shared/event"
)

type fakeUC struct {
	got chan usecase.ConsumeSecurityEventInput
	cID chan string
	err error
}

func (f *fakeUC) ConsumeSecurityEvent(ctx context.Context, in usecase.ConsumeSecurityEventInput) error {
	f.got <- in
	f.cID <- instrument.GetCorrelationID(ctx)
	return f.err
}

func newFakeUC() *fakeUC {
	return &fakeUC{got: make(chan usecase.ConsumeSecurityEventInput, 16), cID: make(chan string, 16)}
}

func TestSecurityEventNotification(t *testing.T) {
	// Arrange
	uc := newFakeUC()
	h := &MQHandler{uc: uc, uuid: uid.NewUUID(), ins: instrument.NewNoop()}
	body, _ := json.Marshal(event.SecurityEventMessage{
		ID:     "evt-9",
		UserID: 4,
		Email:  "jane@example.com",
		Action: "TWO_FACTOR_ENABLED",
	})

	// Act
	err := h.SecurityEventNotification(context.Background(), messaging.Message{
		Body:    body,
		Headers: map[string]string{"cID": "corr-1"},
	})

	// Assert
	if err != nil {
		t.Fatalf("handler error = %v", err)
	}
	in := <-uc.got
	if in.EventID != "evt-9" || in.UserID != 4 || in.Action != "TWO_FACTOR_ENABLED" {
		t.Fatalf("input = %+v", in)
	}
	if cid := <-uc.cID; cid != "corr-1" {
		t.Fatalf("correlation id = %q", cid)
	}
}

func TestSecurityEventNotificationMalformed(t *testing.T) {
	uc := newFakeUC()
	h := &MQHandler{uc: uc, uuid: uid.NewUUID(), ins: instrument.NewNoop()}

	err := h.SecurityEventNotification(context.Background(), messaging.Message{Body: []byte("{not json")})

	if err != nil {
		t.Fatalf("handler error = %v, want ack", err)
	}
	if len(uc.got) != 0 {
		t.Fatal("malformed payload reached the usecase")
	}
}

func TestSecurityEventNotificationFailure(t *testing.T) {
	uc := newFakeUC()
	uc.err = errors.New("smtp down")
	h := &MQHandler{uc: uc, uuid: uid.NewUUID(), ins: instrument.NewNoop()}
	body, _ := json.Marshal(event.SecurityEventMessage{ID: "evt-1"})

	err := h.SecurityEventNotification(context.Background(), messaging.Message{Body: body})

	if err == nil {
		t.Fatal("handler error = nil, want redelivery")
	}
	if cid := <-uc.cID; cid == "" {
		t.Fatal("correlation id was not generated")
	}
}

func TestRegisterMQConsumer(t *testing.T) {
	cfg, err := config.NewViperFromBytes("yaml", []byte(`
modules:
  notification:
    consumer_names: security_event_notification
    concurrency: 2
`))
	if err != nil {
		t.Fatalf("config: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	bus := messaging.NewMemory()
	gm := goroutine.NewManager(4)
	uc := newFakeUC()

	RegisterMQConsumer(ctx, cfg, gm, bus, uid.NewUUID(), uc, instrument.NewNoop())

	body, _ := json.Marshal(event.SecurityEventMessage{ID: "evt-2", UserID: 1, Email: "a@example.com", Action: "AUDIT_EXPORTED"})

	var got usecase.ConsumeSecurityEventInput
	deadline := time.After(5 * time.Second)
wait:
	for {
		// The subscription starts asynchronously, publish until it is there.
		if err := bus.Publish(ctx, event.SecurityEventDestination, messaging.Message{Body: body}); err != nil {
			t.Fatalf("publish: %v", err)
		}
		select {
		case got = <-uc.got:
			break wait
		case <-time.After(50 * time.Millisecond):
		case <-deadline:
			t.Fatal("consumer never received the event")
		}
	}

	cancel()
	if err := gm.Wait(); err != nil {
		t.Fatalf("consumer stopped with error: %v", err)
	}

	if got.EventID != "evt-2" || got.Action != "AUDIT_EXPORTED" {
		t.Fatalf("input = %+v", got)
	}
}
