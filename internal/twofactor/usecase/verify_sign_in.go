package usecase

import (
	"context"
	"errors"
	"log/slog"

	"github.com/shandysiswandi/cenety/internal/pkg/goerror"
	"github.com/shandysiswandi/cenety/internal/pkg/mfa"
)

const (
	MethodTOTP       = "totp"
	MethodBackupCode = "backup_code"
)

type VerifySignInInput struct {
	UserID int64  `validate:"required,gt=0"`
	Code   string `validate:"required,second_factor"`
}

type VerifySignInOutput struct {
	Method string
}

// VerifySignIn checks the second factor of a user at login. A matching
// backup code is consumed; any other code is checked as a TOTP.
func (s *Usecase) VerifySignIn(ctx context.Context, in VerifySignInInput) (*VerifySignInOutput, error) {
	ctx, span := s.startSpan(ctx, "VerifySignIn")
	defer span.End()

	if err := s.validator.Validate(in); err != nil {
		return nil, goerror.NewInvalidInput(err)
	}

	tf, err := s.repoDB.GetTwoFactor(ctx, in.UserID)
	if errors.Is(err, goerror.ErrNotFound) {
		slog.WarnContext(ctx, "two factor not configured", "user_id", in.UserID)
		return nil, goerror.NewBusiness("2FA not configured for this user", goerror.CodeNotFound)
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo get two factor", "user_id", in.UserID, "error", err)
		return nil, goerror.NewServer(err)
	}

	if !tf.Enabled {
		slog.WarnContext(ctx, "two factor not enabled", "user_id", in.UserID)
		return nil, goerror.NewBusiness("2FA is not enabled for this user", goerror.CodeForbidden)
	}

	codeHash, err := s.hmac.Hash(mfa.NormalizeBackupCode(in.Code))
	if err != nil {
		slog.ErrorContext(ctx, "failed to hash backup code", "user_id", in.UserID, "error", err)
		return nil, goerror.NewServer(err)
	}

	consumed, err := s.repoDB.ConsumeBackupCode(ctx, in.UserID, string(codeHash))
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo consume backup code", "user_id", in.UserID, "error", err)
		return nil, goerror.NewServer(err)
	}
	if consumed {
		slog.InfoContext(ctx, "backup code consumed", "user_id", in.UserID)
		return &VerifySignInOutput{Method: MethodBackupCode}, nil
	}

	secret, err := s.openSecret(ctx, tf)
	if err != nil {
		return nil, err
	}

	if !s.totp.Validate(in.Code, secret, s.clock.Now()) {
		slog.WarnContext(ctx, "invalid second factor at sign in", "user_id", in.UserID)
		return nil, errInvalidCode
	}

	return &VerifySignInOutput{Method: MethodTOTP}, nil
}
