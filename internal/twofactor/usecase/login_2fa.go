package usecase

import (
	"context"
	"errors"
	"log/slog"

	"github.com/shandysiswandi/cenety/internal/pkg/goerror"
	"github.com/shandysiswandi/cenety/internal/twofactor/entity"
)

type Login2FAInput struct {
	ChallengeToken string `validate:"required"`
	Code           string `validate:"required,second_factor"`
	IPAddress      string
	UserAgent      string
}

type Login2FAOutput struct {
	AccessToken string
	Method      string
}

// Login2FA redeems a login challenge with a TOTP or backup code. The
// challenge survives a wrong code until it expires.
func (s *Usecase) Login2FA(ctx context.Context, in Login2FAInput) (*Login2FAOutput, error) {
	ctx, span := s.startSpan(ctx, "Login2FA")
	defer span.End()

	if err := s.validator.Validate(in); err != nil {
		return nil, goerror.NewInvalidInput(err)
	}

	tokenHash, err := s.hmac.Hash(in.ChallengeToken)
	if err != nil {
		slog.ErrorContext(ctx, "failed to hash challenge token", "error", err)
		return nil, goerror.NewServer(err)
	}

	ch, err := s.repoCache.GetChallenge(ctx, string(tokenHash))
	if errors.Is(err, goerror.ErrNotFound) {
		slog.WarnContext(ctx, "login challenge not found")
		return nil, goerror.NewBusiness("Invalid or expired challenge", goerror.CodeUnauthorized)
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to cache get challenge", "error", err)
		return nil, goerror.NewServer(err)
	}

	attempt := entity.LoginAttempt{
		UserID:        ch.UserID,
		IPAddress:     in.IPAddress,
		UserAgent:     in.UserAgent,
		TwoFactorUsed: true,
	}

	verified, err := s.VerifySignIn(ctx, VerifySignInInput{UserID: ch.UserID, Code: in.Code})
	if err != nil {
		if errors.Is(err, errInvalidCode) {
			attempt.FailureReason = entity.FailureReasonInvalidCode
			s.recordLoginAttempt(ctx, attempt)
		}
		return nil, err
	}

	// The code is already spent. A challenge left behind expires with its TTL.
	if err := s.repoCache.DeleteChallenge(ctx, string(tokenHash)); err != nil {
		slog.WarnContext(ctx, "failed to cache delete challenge", "user_id", ch.UserID, "error", err)
	}

	access, err := s.jwt.Generate(ch.UserID, ch.Email)
	if err != nil {
		slog.ErrorContext(ctx, "failed to generate access token", "user_id", ch.UserID, "error", err)
		return nil, goerror.NewServer(err)
	}

	attempt.Success = true
	s.recordLoginAttempt(ctx, attempt)

	return &Login2FAOutput{AccessToken: access, Method: verified.Method}, nil
}
