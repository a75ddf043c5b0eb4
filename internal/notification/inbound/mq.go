package inbound

import (
	"context"
	"errors"
	"log/slog"
	"slices"

	"github.com/shandysiswandi/cenety/internal/notification/usecase"
	"github.com/shandysiswandi/cenety/internal/pkg/config"
	"github.com/shandysiswandi/cenety/internal/pkg/goroutine"
	"github.com/shandysiswandi/cenety/internal/pkg/instrument"
	"github.com/shandysiswandi/cenety/internal/pkg/messaging"
	"github.com/shandysiswandi/cenety/internal/pkg/uid"
	"github.com/shandysiswandi/cenety/internal/shared/event"
)

type uc interface {
	ConsumeSecurityEvent(ctx context.Context, in usecase.ConsumeSecurityEventInput) error
}

// RegisterMQConsumer starts the consumers listed in
// modules.notification.consumer_names, or all of them when the list is empty.
func RegisterMQConsumer(
	ctx context.Context,
	cfg config.Config,
	routine *goroutine.Manager,
	messenger messaging.Messaging,
	uuid uid.StringID,
	uc uc,
	ins instrument.Instrumentation,
) {
	mqHandler := &MQHandler{uc: uc, uuid: uuid, ins: ins}

	enabled := cfg.GetArray("modules.notification.consumer_names")
	concurrency := cfg.GetInt("modules.notification.concurrency")

	consumers := []struct {
		name    string
		topic   string // destination where publisher sent message
		handler messaging.Handler
	}{
		{
			name:    event.SecurityEventConsumerNotification,
			topic:   event.SecurityEventDestination,
			handler: mqHandler.SecurityEventNotification,
		},
	}

	for _, consumer := range consumers {
		if len(enabled) > 0 && !slices.Contains(enabled, consumer.name) {
			continue
		}

		// Manager tasks ignore cancellation. Consume on ctx so shutdown stops it.
		ok := routine.Go(ctx, func(context.Context) error {
			slog.InfoContext(ctx, "Running job for handling consumer", "consumer", consumer.name)
			err := messenger.Consume(ctx,
				consumer.topic,
				consumer.handler,
				messaging.WithGroup(consumer.name),
				messaging.WithConcurrency(concurrency),
			)
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		})
		if !ok {
			slog.WarnContext(ctx, "consumer not started", "consumer", consumer.name)
		}
	}
}
