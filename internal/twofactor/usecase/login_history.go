package usecase

import (
	"context"
	"log/slog"

	"github.com/shandysiswandi/cenety/internal/pkg/goerror"
	"github.com/shandysiswandi/cenety/internal/twofactor/entity"
)

const (
	defaultHistoryLimit = 50
	maxHistoryLimit     = 100
)

type LoginHistoryInput struct {
	Limit int `validate:"gte=0"`
}

func (s *Usecase) LoginHistory(ctx context.Context, in LoginHistoryInput) ([]entity.LoginAttempt, error) {
	ctx, span := s.startSpan(ctx, "LoginHistory")
	defer span.End()

	clm, err := s.authenticated(ctx)
	if err != nil {
		return nil, err
	}

	if err := s.validator.Validate(in); err != nil {
		return nil, goerror.NewInvalidInput(err)
	}

	limit := in.Limit
	if limit == 0 {
		limit = defaultHistoryLimit
	}
	limit = min(limit, maxHistoryLimit)

	attempts, err := s.repoDB.ListLoginAttempts(ctx, clm.UserID, limit)
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo list login attempts", "user_id", clm.UserID, "error", err)
		return nil, goerror.NewServer(err)
	}

	return attempts, nil
}
