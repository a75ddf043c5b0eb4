package usecase

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/shandysiswandi/cenety/internal/pkg/goerror"
	"github.com/shandysiswandi/cenety/internal/twofactor/entity"
)

const defaultChallengeTTL = 5 * time.Minute

var errInvalidCredentials = goerror.NewBusiness("Invalid email or password", goerror.CodeUnauthorized)

type LoginInput struct {
	Email     string `validate:"required,email"`
	Password  string `validate:"required"`
	IPAddress string
	UserAgent string
}

type LoginOutput struct {
	AccessToken       string
	TwoFactorRequired bool
	ChallengeToken    string
}

// Login checks the password. Accounts with 2FA enabled get a short lived
// challenge token to redeem at Login2FA instead of an access token.
func (s *Usecase) Login(ctx context.Context, in LoginInput) (*LoginOutput, error) {
	ctx, span := s.startSpan(ctx, "Login")
	defer span.End()

	in.Email = strings.TrimSpace(in.Email)
	if err := s.validator.Validate(in); err != nil {
		return nil, goerror.NewInvalidInput(err)
	}

	user, err := s.repoDB.GetUserByEmail(ctx, in.Email)
	if errors.Is(err, goerror.ErrNotFound) {
		slog.WarnContext(ctx, "login with unknown email")
		return nil, errInvalidCredentials
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo get user by email", "error", err)
		return nil, goerror.NewServer(err)
	}

	attempt := entity.LoginAttempt{UserID: user.ID, IPAddress: in.IPAddress, UserAgent: in.UserAgent}

	if !s.password.Verify(user.Password, in.Password) {
		slog.WarnContext(ctx, "login with invalid password", "user_id", user.ID)
		attempt.FailureReason = entity.FailureReasonInvalidPassword
		s.recordLoginAttempt(ctx, attempt)
		return nil, errInvalidCredentials
	}

	tf, err := s.repoDB.GetTwoFactor(ctx, user.ID)
	if err != nil && !errors.Is(err, goerror.ErrNotFound) {
		slog.ErrorContext(ctx, "failed to repo get two factor", "user_id", user.ID, "error", err)
		return nil, goerror.NewServer(err)
	}

	if tf.State() == entity.StateEnabled {
		token, err := s.newChallenge(ctx, user)
		if err != nil {
			return nil, err
		}
		return &LoginOutput{TwoFactorRequired: true, ChallengeToken: token}, nil
	}

	access, err := s.jwt.Generate(user.ID, user.Email)
	if err != nil {
		slog.ErrorContext(ctx, "failed to generate access token", "user_id", user.ID, "error", err)
		return nil, goerror.NewServer(err)
	}

	attempt.Success = true
	s.recordLoginAttempt(ctx, attempt)

	return &LoginOutput{AccessToken: access}, nil
}

func (s *Usecase) newChallenge(ctx context.Context, user *entity.User) (string, error) {
	token := s.token.Generate()

	tokenHash, err := s.hmac.Hash(token)
	if err != nil {
		slog.ErrorContext(ctx, "failed to hash challenge token", "user_id", user.ID, "error", err)
		return "", goerror.NewServer(err)
	}

	ttl := s.durationOr("modules.twofactor.challenge_ttl_minutes", defaultChallengeTTL)
	if err := s.repoCache.SaveChallenge(ctx, string(tokenHash), entity.SignInChallenge{
		UserID: user.ID,
		Email:  user.Email,
	}, ttl); err != nil {
		slog.ErrorContext(ctx, "failed to cache save challenge", "user_id", user.ID, "error", err)
		return "", goerror.NewServer(err)
	}

	return token, nil
}
