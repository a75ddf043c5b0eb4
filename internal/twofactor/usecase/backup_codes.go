package usecase

import (
	"context"
	"errors"
	"log/slog"
	"strconv"

	"github.com/shandysiswandi/cenety/internal/pkg/goerror"
	"github.com/shandysiswandi/cenety/internal/twofactor/entity"
)

type RegenerateBackupCodesOutput struct {
	BackupCodes []string
}

// RegenerateBackupCodes replaces the whole set, unused codes included.
func (s *Usecase) RegenerateBackupCodes(ctx context.Context) (*RegenerateBackupCodesOutput, error) {
	ctx, span := s.startSpan(ctx, "RegenerateBackupCodes")
	defer span.End()

	clm, err := s.authenticated(ctx)
	if err != nil {
		return nil, err
	}

	tf, err := s.repoDB.GetTwoFactor(ctx, clm.UserID)
	if err != nil && !errors.Is(err, goerror.ErrNotFound) {
		slog.ErrorContext(ctx, "failed to repo get two factor", "user_id", clm.UserID, "error", err)
		return nil, goerror.NewServer(err)
	}
	if tf.State() != entity.StateEnabled {
		return nil, goerror.NewBusiness("2FA is not enabled", goerror.CodeForbidden)
	}

	plain, hashed, err := s.newBackupCodes(ctx, clm.UserID)
	if err != nil {
		return nil, err
	}

	if err := s.repoDB.ReplaceBackupCodes(ctx, clm.UserID, hashed); err != nil {
		slog.ErrorContext(ctx, "failed to repo replace backup codes", "user_id", clm.UserID, "error", err)
		return nil, goerror.NewServer(err)
	}

	s.recordAudit(ctx, clm.UserID, clm.Email, entity.AuditActionBackupCodesRegenerated, map[string]string{
		"count": strconv.Itoa(len(plain)),
	})

	return &RegenerateBackupCodesOutput{BackupCodes: plain}, nil
}
