package usecase

import (
	"context"
	"errors"
	"log/slog"
	"strconv"

	"github.com/shandysiswandi/cenety/internal/pkg/goerror"
	"github.com/shandysiswandi/cenety/internal/twofactor/entity"
)

type AdminResetInput struct {
	UserID int64 `validate:"required,gt=0"`
}

// AdminReset clears the 2FA of another account, for owners who lost both
// their device and their backup codes.
func (s *Usecase) AdminReset(ctx context.Context, in AdminResetInput) error {
	ctx, span := s.startSpan(ctx, "AdminReset")
	defer span.End()

	clm, err := s.authenticatedAndAuthorized(ctx, "twofactor", "reset")
	if err != nil {
		return err
	}

	if err := s.validator.Validate(in); err != nil {
		return goerror.NewInvalidInput(err)
	}

	user, err := s.repoDB.GetUserByID(ctx, in.UserID)
	if errors.Is(err, goerror.ErrNotFound) {
		return goerror.NewBusiness("User not found", goerror.CodeNotFound)
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo get user by id", "user_id", in.UserID, "error", err)
		return goerror.NewServer(err)
	}

	cleared, err := s.clearTwoFactor(ctx, user.ID)
	if err != nil {
		return err
	}
	if !cleared {
		return goerror.NewBusiness("2FA not configured for this user", goerror.CodeNotFound)
	}

	slog.InfoContext(ctx, "two factor reset by administrator", "user_id", user.ID, "admin_id", clm.UserID)
	s.recordAudit(ctx, user.ID, user.Email, entity.AuditActionTwoFactorReset, map[string]string{
		"admin_id": strconv.FormatInt(clm.UserID, 10),
	})

	return nil
}
