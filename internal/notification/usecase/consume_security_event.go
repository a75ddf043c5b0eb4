package usecase

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"maps"
	"slices"
	"strings"
	"time"

	"github.com/shandysiswandi/cenety/internal/notification/entity"
	"github.com/shandysiswandi/cenety/internal/pkg/idempotency"
)

const (
	alertDedupTTL  = 24 * time.Hour
	alertSendLock  = time.Minute
	alertKeyPrefix = "notification:security-event:"
)

type ConsumeSecurityEventInput struct {
	EventID    string `validate:"required"`
	UserID     int64  `validate:"required,gt=0"`
	Email      string `validate:"required,email"`
	Action     string `validate:"required"`
	Details    map[string]string
	OccurredAt time.Time
}

// ConsumeSecurityEvent mails the account owner about a security action.
// Each event id is mailed at most once. Invalid events are dropped, a
// failed delivery is returned so the broker redelivers it.
func (s *Usecase) ConsumeSecurityEvent(ctx context.Context, in ConsumeSecurityEventInput) error {
	ctx, span := s.startSpan(ctx, "ConsumeSecurityEvent")
	defer span.End()

	if err := s.validator.Validate(in); err != nil {
		slog.ErrorContext(ctx, "Validation failed", "event_id", in.EventID, "error", err)
		return nil
	}

	alert, ok := entity.AlertFor(in.Action)
	if !ok {
		slog.InfoContext(ctx, "no alert for security action", "event_id", in.EventID, "action", in.Action)
		return nil
	}

	err := s.idemp.Exec(ctx, alertKeyPrefix+in.EventID, func(ctx context.Context) error {
		return s.sendAlert(ctx, in, alert)
	}, idempotency.WithLock(alertSendLock), idempotency.WithTTL(alertDedupTTL), idempotency.WithRetryFailed())

	switch {
	case errors.Is(err, idempotency.ErrCompleted), errors.Is(err, idempotency.ErrInProgress):
		slog.InfoContext(ctx, "security alert already handled", "event_id", in.EventID)
		return nil
	case err != nil:
		slog.ErrorContext(ctx, "failed to send security alert", "event_id", in.EventID, "user_id", in.UserID, "error", err)
		return err
	}

	return nil
}

func (s *Usecase) sendAlert(ctx context.Context, in ConsumeSecurityEventInput, alert entity.Alert) error {
	occurred := in.OccurredAt
	if occurred.IsZero() {
		occurred = s.clock.Now()
	}

	data := s.baseEmailTemplateData()
	data["heading"] = alert.Heading
	data["summary"] = alert.Summary
	data["occurred_at"] = occurred.UTC().Format(time.RFC1123)
	data["details"] = in.Details

	var html bytes.Buffer
	if err := s.html.Execute(&html, data); err != nil {
		return err
	}

	return s.repoMail.SendAlert(ctx, in.Email, alert.Subject, html.String(), alertText(alert, occurred, in.Details))
}

func alertText(alert entity.Alert, at time.Time, details map[string]string) string {
	var sb strings.Builder
	sb.WriteString(alert.Heading + "\n\n" + alert.Summary + "\n\nWhen: " + at.UTC().Format(time.RFC1123) + "\n")
	for _, k := range slices.Sorted(maps.Keys(details)) {
		sb.WriteString(k + ": " + details[k] + "\n")
	}
	return sb.String()
}
