package inbound

import (
	"context"
	"net/http"

	"github.com/shandysiswandi/cenety/internal/pkg/router"
	"github.com/shandysiswandi/cenety/internal/twofactor/entity"
	"github.com/shandysiswandi/cenety/internal/twofactor/usecase"
)

type uc interface {
	Login(ctx context.Context, in usecase.LoginInput) (*usecase.LoginOutput, error)
	Login2FA(ctx context.Context, in usecase.Login2FAInput) (*usecase.Login2FAOutput, error)
	CheckEnabledByEmail(ctx context.Context, in usecase.CheckEnabledByEmailInput) (*usecase.CheckEnabledByEmailOutput, error)

	Status(ctx context.Context) (*entity.Status, error)
	Setup(ctx context.Context) (*usecase.SetupOutput, error)
	Enable(ctx context.Context, in usecase.EnableInput) error
	Disable(ctx context.Context, in usecase.DisableInput) error
	RegenerateBackupCodes(ctx context.Context) (*usecase.RegenerateBackupCodesOutput, error)

	LoginHistory(ctx context.Context, in usecase.LoginHistoryInput) ([]entity.LoginAttempt, error)
	AuditExport(ctx context.Context) (*usecase.AuditExportOutput, error)

	AdminReset(ctx context.Context, in usecase.AdminResetInput) error
}

// PublicRoutes skip bearer authentication.
var PublicRoutes = map[string][]string{
	http.MethodPost: {
		"/api/v1/auth/login",
		"/api/v1/auth/login/2fa",
		"/api/v1/auth/2fa/check",
	},
}

func RegisterHTTPEndpoint(r *router.Router, uc uc) {
	end := &HTTPEndpoint{uc: uc}

	// Sign in
	r.POST("/api/v1/auth/login", end.Login)
	r.POST("/api/v1/auth/login/2fa", end.Login2FA)
	r.POST("/api/v1/auth/2fa/check", end.CheckEnabled)

	// Enrollment (need authenticated)
	r.GET("/api/v1/2fa/status", end.Status)
	r.POST("/api/v1/2fa/setup", end.Setup)
	r.POST("/api/v1/2fa/enable", end.Enable)
	r.POST("/api/v1/2fa/disable", end.Disable)
	r.POST("/api/v1/2fa/backup-codes/regenerate", end.RegenerateBackupCodes)

	// Security (need authenticated)
	r.GET("/api/v1/security/login-history", end.LoginHistory)
	r.POST("/api/v1/security/audit-logs/export", end.AuditExport)

	// Administration (need authenticated & authorization)
	r.POST("/api/v1/admin/users/:id/2fa/reset", end.AdminReset)
}
