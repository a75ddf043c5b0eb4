package usecase

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/shandysiswandi/cenety/internal/pkg/clock"
	"github.com/shandysiswandi/cenety/internal/pkg/config"
	"github.com/shandysiswandi/cenety/internal/pkg/idempotency"
	"github.com/shandysiswandi/cenety/internal/pkg/instrument"
	"github.com/shandysiswandi/cenety/internal/pkg/validator"
)

type sentMail struct {
	to, subject, html, text string
}

type fakeMail struct {
	mu   sync.Mutex
	sent []sentMail
	fail error
}

func (f *fakeMail) SendAlert(_ context.Context, to, subject, htmlBody, textBody string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail != nil {
		return f.fail
	}
	f.sent = append(f.sent, sentMail{to: to, subject: subject, html: htmlBody, text: textBody})
	return nil
}

type fakeIdempotency struct {
	mu   sync.Mutex
	done map[string]bool
}

func (f *fakeIdempotency) Exec(ctx context.Context, key string, fn func(context.Context) error, _ ...idempotency.Option) error {
	f.mu.Lock()
	if f.done[key] {
		f.mu.Unlock()
		return idempotency.ErrCompleted
	}
	f.mu.Unlock()

	if err := fn(ctx); err != nil {
		return err
	}

	f.mu.Lock()
	f.done[key] = true
	f.mu.Unlock()
	return nil
}

func newTestUsecase(t *testing.T) (*Usecase, *fakeMail) {
	t.Helper()

	v, err := validator.NewV10Validator()
	if err != nil {
		t.Fatalf("validator: %v", err)
	}
	cfg, err := config.NewViperFromBytes("yaml", []byte(`
app:
  web: https://app.example.com
  support_email: help@example.com
`))
	if err != nil {
		t.Fatalf("config: %v", err)
	}

	m := &fakeMail{}
	uc := NewNotification(Dependency{
		RepoMail:    m,
		Idempotency: &fakeIdempotency{done: map[string]bool{}},
		Config:      cfg,
		Clock:       clock.NewFixed(time.Date(2025, 3, 3, 22, 6, 7, 0, time.UTC)),
		Validator:   v,
		Instrument:  instrument.NewNoop(),
	})
	return uc, m
}

func validEvent() ConsumeSecurityEventInput {
	return ConsumeSecurityEventInput{
		EventID:    "evt-1",
		UserID:     1,
		Email:      "jane@example.com",
		Action:     "TWO_FACTOR_DISABLED",
		OccurredAt: time.Date(2025, 3, 3, 22, 0, 0, 0, time.UTC),
	}
}

func TestConsumeSecurityEvent(t *testing.T) {
	// Arrange
	uc, m := newTestUsecase(t)
	in := validEvent()
	in.Details = map[string]string{"admin_id": "900"}

	// Act
	err := uc.ConsumeSecurityEvent(context.Background(), in)

	// Assert
	if err != nil {
		t.Fatalf("ConsumeSecurityEvent() error = %v", err)
	}
	if len(m.sent) != 1 {
		t.Fatalf("sent = %d, want 1", len(m.sent))
	}
	got := m.sent[0]
	if got.to != "jane@example.com" || got.subject != "Two-factor authentication was disabled" {
		t.Fatalf("mail = %+v", got)
	}
	for _, want := range []string{"https://app.example.com/settings/security", "help@example.com", "admin_id: 900", "Mon, 03 Mar 2025 22:00:00 UTC"} {
		if !strings.Contains(got.html, want) {
			t.Fatalf("html body misses %q:\n%s", want, got.html)
		}
	}
	if !strings.Contains(got.text, "admin_id: 900") {
		t.Fatalf("text body = %q", got.text)
	}
}

func TestConsumeSecurityEventDeduplicates(t *testing.T) {
	uc, m := newTestUsecase(t)

	for range 3 {
		if err := uc.ConsumeSecurityEvent(context.Background(), validEvent()); err != nil {
			t.Fatalf("ConsumeSecurityEvent() error = %v", err)
		}
	}

	if len(m.sent) != 1 {
		t.Fatalf("sent = %d, want 1", len(m.sent))
	}
}

func TestConsumeSecurityEventDropped(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*ConsumeSecurityEventInput)
	}{
		{"unknown action", func(in *ConsumeSecurityEventInput) { in.Action = "PASSWORD_CHANGED" }},
		{"missing email", func(in *ConsumeSecurityEventInput) { in.Email = "" }},
		{"missing id", func(in *ConsumeSecurityEventInput) { in.EventID = "" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			uc, m := newTestUsecase(t)
			in := validEvent()
			tt.mutate(&in)

			err := uc.ConsumeSecurityEvent(context.Background(), in)

			if err != nil {
				t.Fatalf("ConsumeSecurityEvent() error = %v, want nil", err)
			}
			if len(m.sent) != 0 {
				t.Fatalf("sent = %d, want 0", len(m.sent))
			}
		})
	}
}

func TestConsumeSecurityEventRetriesFailedDelivery(t *testing.T) {
	uc, m := newTestUsecase(t)
	m.fail = errors.New("smtp down")

	first := uc.ConsumeSecurityEvent(context.Background(), validEvent())
	m.fail = nil
	second := uc.ConsumeSecurityEvent(context.Background(), validEvent())

	if first == nil {
		t.Fatal("first delivery error = nil, want smtp failure")
	}
	if second != nil {
		t.Fatalf("redelivery error = %v", second)
	}
	if len(m.sent) != 1 {
		t.Fatalf("sent = %d, want 1", len(m.sent))
	}
}
