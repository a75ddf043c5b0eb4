package inbound

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/shandysiswandi/cenety/internal/notification/usecase"
	"github.com/shandysiswandi/cenety/internal/pkg/instrument"
	"github.com/shandysiswandi/cenety/internal/pkg/messaging"
	"github.com/shandysiswandi/cenety/internal/pkg/uid"
	"github.com/shandysiswandi/cenety/internal/shared/event"
)

const keyOfCorrelationID string = "cID"

type MQHandler struct {
	uc   uc
	uuid uid.StringID
	ins  instrument.Instrumentation
}

func (h *MQHandler) ensureCorrelationID(ctx context.Context, headers map[string]string) context.Context {
	if cid := headers[keyOfCorrelationID]; cid != "" {
		return instrument.SetCorrelationID(ctx, cid)
	}
	return instrument.SetCorrelationID(ctx, h.uuid.Generate())
}

func (h *MQHandler) SecurityEventNotification(ctx context.Context, msg messaging.Message) error {
	ctx = h.ensureCorrelationID(ctx, msg.Headers)

	ctx, span := h.ins.Tracer("notification.inbound.mq").Start(ctx, "SecurityEventNotification")
	defer span.End()

	slog.InfoContext(ctx, "consume: security event notification", "msg_id", msg.ID)

	var payload event.SecurityEventMessage
	if err := json.Unmarshal(msg.Body, &payload); err != nil {
		slog.ErrorContext(ctx, "failed to parse message body of security event notification", "msg_body", string(msg.Body), "error", err)
		return nil
	}

	if err := h.uc.ConsumeSecurityEvent(ctx, usecase.ConsumeSecurityEventInput{
		EventID:    payload.ID,
		UserID:     payload.UserID,
		Email:      payload.Email,
		Action:     payload.Action,
		Details:    payload.Details,
		OccurredAt: payload.OccurredAt,
	}); err != nil {
		slog.ErrorContext(ctx, "failed to consume security event", "event_id", payload.ID, "error", err)
		return err
	}

	return nil
}
