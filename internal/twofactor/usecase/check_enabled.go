package usecase

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/shandysiswandi/cenety/internal/pkg/goerror"
)

type CheckEnabledByEmailInput struct {
	Email string `validate:"required,email"`
}

type CheckEnabledByEmailOutput struct {
	Enabled bool
	UserID  int64
}

// CheckEnabledByEmail tells a sign-in form whether to ask for a second
// factor. Unknown emails are reported as not enabled.
func (s *Usecase) CheckEnabledByEmail(ctx context.Context, in CheckEnabledByEmailInput) (*CheckEnabledByEmailOutput, error) {
	ctx, span := s.startSpan(ctx, "CheckEnabledByEmail")
	defer span.End()

	in.Email = strings.TrimSpace(in.Email)
	if err := s.validator.Validate(in); err != nil {
		return nil, goerror.NewInvalidInput(err)
	}

	user, err := s.repoDB.GetUserByEmail(ctx, in.Email)
	if errors.Is(err, goerror.ErrNotFound) {
		return &CheckEnabledByEmailOutput{}, nil
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo get user by email", "error", err)
		return nil, goerror.NewServer(err)
	}

	tf, err := s.repoDB.GetTwoFactor(ctx, user.ID)
	if errors.Is(err, goerror.ErrNotFound) {
		return &CheckEnabledByEmailOutput{UserID: user.ID}, nil
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo get two factor", "user_id", user.ID, "error", err)
		return nil, goerror.NewServer(err)
	}

	return &CheckEnabledByEmailOutput{Enabled: tf.Enabled, UserID: user.ID}, nil
}
