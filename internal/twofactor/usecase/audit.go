package usecase

import (
	"context"
	"log/slog"

	"github.com/shandysiswandi/cenety/internal/pkg/valueobject"
	"github.com/shandysiswandi/cenety/internal/twofactor/entity"
)

// recordAudit appends an audit entry and publishes the matching security
// event in the background. A failure there never fails the caller.
func (s *Usecase) recordAudit(ctx context.Context, userID int64, email string, action entity.AuditAction, details map[string]string) {
	now := s.clock.Now()

	entry := entity.AuditLog{
		ID:        s.uid.Generate(),
		UserID:    userID,
		Action:    action,
		Details:   make(valueobject.JSONMap, len(details)),
		CreatedAt: now,
	}
	for k, v := range details {
		entry.Details[k] = v
	}

	evt := SecurityEvent{
		ID:         s.uuid.Generate(),
		UserID:     userID,
		Email:      email,
		Action:     action,
		Details:    details,
		OccurredAt: now,
	}

	ok := s.goroutine.Go(ctx, func(ctx context.Context) error {
		if err := s.repoDB.CreateAuditLog(ctx, entry); err != nil {
			slog.ErrorContext(ctx, "failed to repo create audit log", "user_id", userID, "action", action.String(), "error", err)
			return err
		}

		if err := s.repoMessaging.PublishSecurityEvent(ctx, evt); err != nil {
			slog.ErrorContext(ctx, "failed to publish security event", "user_id", userID, "action", action.String(), "error", err)
			return err
		}

		return nil
	})
	if !ok {
		slog.WarnContext(ctx, "audit entry dropped", "user_id", userID, "action", action.String())
	}
}

func (s *Usecase) recordLoginAttempt(ctx context.Context, in entity.LoginAttempt) {
	in.ID = s.uid.Generate()
	in.CreatedAt = s.clock.Now()

	ok := s.goroutine.Go(ctx, func(ctx context.Context) error {
		if err := s.repoDB.CreateLoginAttempt(ctx, in); err != nil {
			slog.ErrorContext(ctx, "failed to repo create login attempt", "user_id", in.UserID, "error", err)
			return err
		}
		return nil
	})
	if !ok {
		slog.WarnContext(ctx, "login attempt dropped", "user_id", in.UserID)
	}
}
