package usecase

import (
	"context"
	"errors"
	"log/slog"

	"github.com/shandysiswandi/cenety/internal/pkg/goerror"
	"github.com/shandysiswandi/cenety/internal/twofactor/entity"
)

type EnableInput struct {
	Code string `validate:"required,otp_code"`
}

// Enable confirms a pending setup with a code from the authenticator app.
// A wrong code leaves the account as it was.
func (s *Usecase) Enable(ctx context.Context, in EnableInput) error {
	ctx, span := s.startSpan(ctx, "Enable")
	defer span.End()

	clm, err := s.authenticated(ctx)
	if err != nil {
		return err
	}

	if err := s.validator.Validate(in); err != nil {
		return goerror.NewInvalidInput(err)
	}

	tf, err := s.repoDB.GetTwoFactor(ctx, clm.UserID)
	if errors.Is(err, goerror.ErrNotFound) || (err == nil && !tf.HasSecret()) {
		slog.WarnContext(ctx, "two factor setup not found", "user_id", clm.UserID)
		return errSetupNotFound
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo get two factor", "user_id", clm.UserID, "error", err)
		return goerror.NewServer(err)
	}

	secret, err := s.openSecret(ctx, tf)
	if err != nil {
		return err
	}

	if !s.totp.Validate(in.Code, secret, s.clock.Now()) {
		slog.WarnContext(ctx, "invalid totp code on enable", "user_id", clm.UserID)
		return errInvalidCode
	}

	err = s.repoDB.EnableTwoFactor(ctx, clm.UserID)
	if errors.Is(err, goerror.ErrNotFound) {
		slog.WarnContext(ctx, "two factor cleared before enable", "user_id", clm.UserID)
		return errSetupNotFound
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo enable two factor", "user_id", clm.UserID, "error", err)
		return goerror.NewServer(err)
	}

	s.recordAudit(ctx, clm.UserID, clm.Email, entity.AuditActionTwoFactorEnabled, map[string]string{"method": "totp"})

	return nil
}
