package usecase

import (
	"context"
	"errors"
	"log/slog"

	"github.com/shandysiswandi/cenety/internal/pkg/goerror"
	"github.com/shandysiswandi/cenety/internal/twofactor/entity"
)

type DisableInput struct {
	Password string `validate:"required"`
}

// Disable turns 2FA off after the owner re-enters their password. The secret
// and every backup code are destroyed, so enabling again needs a new setup.
func (s *Usecase) Disable(ctx context.Context, in DisableInput) error {
	ctx, span := s.startSpan(ctx, "Disable")
	defer span.End()

	clm, err := s.authenticated(ctx)
	if err != nil {
		return err
	}

	if err := s.validator.Validate(in); err != nil {
		return goerror.NewInvalidInput(err)
	}

	user, err := s.repoDB.GetUserByID(ctx, clm.UserID)
	if errors.Is(err, goerror.ErrNotFound) {
		slog.WarnContext(ctx, "authenticated user not found", "user_id", clm.UserID)
		return errNotAuthenticated
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo get user by id", "user_id", clm.UserID, "error", err)
		return goerror.NewServer(err)
	}

	if !s.password.Verify(user.Password, in.Password) {
		slog.WarnContext(ctx, "password re-authentication failed", "user_id", user.ID)
		return errInvalidPassword
	}

	cleared, err := s.clearTwoFactor(ctx, user.ID)
	if err != nil {
		return err
	}
	if cleared {
		s.recordAudit(ctx, user.ID, user.Email, entity.AuditActionTwoFactorDisabled, nil)
	}

	return nil
}

// clearTwoFactor reports false when the account had nothing to clear.
func (s *Usecase) clearTwoFactor(ctx context.Context, userID int64) (bool, error) {
	err := s.repoDB.ClearTwoFactor(ctx, userID)
	if errors.Is(err, goerror.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo clear two factor", "user_id", userID, "error", err)
		return false, goerror.NewServer(err)
	}
	return true, nil
}
