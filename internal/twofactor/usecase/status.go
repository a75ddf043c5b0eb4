package usecase

import (
	"context"
	"errors"
	"log/slog"

	"github.com/shandysiswandi/cenety/internal/pkg/goerror"
	"github.com/shandysiswandi/cenety/internal/twofactor/entity"
)

// Status reports the 2FA state of the caller. An account that never ran
// setup is reported as disabled.
func (s *Usecase) Status(ctx context.Context) (*entity.Status, error) {
	ctx, span := s.startSpan(ctx, "Status")
	defer span.End()

	clm, err := s.authenticated(ctx)
	if err != nil {
		return nil, err
	}

	tf, err := s.repoDB.GetTwoFactor(ctx, clm.UserID)
	if errors.Is(err, goerror.ErrNotFound) {
		return &entity.Status{}, nil
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo get two factor", "user_id", clm.UserID, "error", err)
		return nil, goerror.NewServer(err)
	}

	remaining, err := s.repoDB.CountBackupCodes(ctx, clm.UserID)
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo count backup codes", "user_id", clm.UserID, "error", err)
		return nil, goerror.NewServer(err)
	}

	return &entity.Status{
		Enabled:              tf.Enabled,
		HasSecret:            tf.HasSecret(),
		HasBackupCodes:       remaining > 0,
		BackupCodesRemaining: remaining,
	}, nil
}
