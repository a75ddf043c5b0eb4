package inbound

import (
	"github.com/shandysiswandi/cenety/internal/pkg/router"
	"github.com/shandysiswandi/cenety/internal/twofactor/usecase"
)

// HTTPEndpoint exposes HTTP handlers for sign in and two-factor management.
type HTTPEndpoint struct {
	uc uc
}

// Login checks credentials and returns a token or a 2FA challenge.
// @Summary Authenticate user
// @Description Validates credentials. Accounts with 2FA enabled receive a challenge token instead of an access token.
// @Tags Authentication
// @Accept json
// @Produce json
// @Param request body LoginRequest true "Login payload"
// @Success 200 {object} router.successResponse{data=LoginResponse} "Authentication result"
// @Failure 400 {object} router.errorResponse "Invalid request body"
// @Failure 401 {object} router.errorResponse "Invalid email or password"
// @Failure 422 {object} router.errorResponse "Validation error"
// @Failure 500 {object} router.errorResponse "Internal server error"
// @Router /api/v1/auth/login [post]
func (h *HTTPEndpoint) Login(r *router.Request) (any, error) {
	var req LoginRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	resp, err := h.uc.Login(r.Context(), usecase.LoginInput{
		Email:     req.Email,
		Password:  req.Password,
		IPAddress: r.ClientIP(),
		UserAgent: r.UserAgent(),
	})
	if err != nil {
		return nil, err
	}

	return LoginResponse{
		TwoFactorRequired: resp.TwoFactorRequired,
		ChallengeToken:    resp.ChallengeToken,
		AccessToken:       resp.AccessToken,
	}, nil
}

// Login2FA redeems a login challenge with a TOTP or backup code.
// @Summary Complete 2FA login
// @Description Verifies a 6 digit TOTP or an 8 character backup code for a login challenge.
// @Tags Authentication
// @Accept json
// @Produce json
// @Param request body Login2FARequest true "2FA login payload"
// @Success 200 {object} router.successResponse{data=Login2FAResponse} "Authentication result"
// @Failure 400 {object} router.errorResponse "Invalid request body"
// @Failure 401 {object} router.errorResponse "Invalid verification code"
// @Failure 422 {object} router.errorResponse "Validation error"
// @Failure 500 {object} router.errorResponse "Internal server error"
// @Router /api/v1/auth/login/2fa [post]
func (h *HTTPEndpoint) Login2FA(r *router.Request) (any, error) {
	var req Login2FARequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	resp, err := h.uc.Login2FA(r.Context(), usecase.Login2FAInput{
		ChallengeToken: req.ChallengeToken,
		Code:           req.Code,
		IPAddress:      r.ClientIP(),
		UserAgent:      r.UserAgent(),
	})
	if err != nil {
		return nil, err
	}

	return Login2FAResponse{AccessToken: resp.AccessToken, Method: resp.Method}, nil
}

// CheckEnabled tells a sign-in form whether to ask for a second factor.
// @Summary Check 2FA by email
// @Tags Authentication
// @Accept json
// @Produce json
// @Param request body CheckEnabledRequest true "Email"
// @Success 200 {object} router.successResponse{data=CheckEnabledResponse}
// @Failure 422 {object} router.errorResponse "Validation error"
// @Router /api/v1/auth/2fa/check [post]
func (h *HTTPEndpoint) CheckEnabled(r *router.Request) (any, error) {
	var req CheckEnabledRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	resp, err := h.uc.CheckEnabledByEmail(r.Context(), usecase.CheckEnabledByEmailInput{Email: req.Email})
	if err != nil {
		return nil, err
	}

	return CheckEnabledResponse{Enabled: resp.Enabled, UserID: resp.UserID}, nil
}

// Status returns the 2FA state of the caller.
// @Summary 2FA status
// @Tags Two Factor
// @Produce json
// @Security BearerAuth
// @Success 200 {object} router.successResponse{data=StatusResponse}
// @Failure 401 {object} router.errorResponse "Authentication required"
// @Router /api/v1/2fa/status [get]
func (h *HTTPEndpoint) Status(r *router.Request) (any, error) {
	resp, err := h.uc.Status(r.Context())
	if err != nil {
		return nil, err
	}

	return StatusResponse{
		Enabled:              resp.Enabled,
		HasSecret:            resp.HasSecret,
		HasBackupCodes:       resp.HasBackupCodes,
		BackupCodesRemaining: resp.BackupCodesRemaining,
	}, nil
}

// Setup starts enrollment and returns the secret, QR code and backup codes.
// @Summary Start 2FA setup
// @Description Generates a new secret and backup codes. Any previous setup is replaced and 2FA stays off until enabled.
// @Tags Two Factor
// @Produce json
// @Security BearerAuth
// @Success 200 {object} router.successResponse{data=SetupResponse}
// @Failure 401 {object} router.errorResponse "Authentication required"
// @Failure 500 {object} router.errorResponse "Internal server error"
// @Router /api/v1/2fa/setup [post]
func (h *HTTPEndpoint) Setup(r *router.Request) (any, error) {
	resp, err := h.uc.Setup(r.Context())
	if err != nil {
		return nil, err
	}

	return SetupResponse{
		Secret:      resp.Secret,
		URI:         resp.URI,
		QRCode:      resp.QRCode,
		BackupCodes: resp.BackupCodes,
	}, nil
}

// Enable confirms the setup with a code from the authenticator app.
// @Summary Enable 2FA
// @Tags Two Factor
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body EnableRequest true "TOTP code"
// @Success 200 {object} router.successResponse
// @Failure 401 {object} router.errorResponse "Invalid verification code"
// @Failure 404 {object} router.errorResponse "2FA setup not found"
// @Failure 422 {object} router.errorResponse "Validation error"
// @Router /api/v1/2fa/enable [post]
func (h *HTTPEndpoint) Enable(r *router.Request) (any, error) {
	var req EnableRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	if err := h.uc.Enable(r.Context(), usecase.EnableInput{Code: req.Code}); err != nil {
		return nil, err
	}

	return EnableResponse{}, nil
}

// Disable turns 2FA off after checking the account password.
// @Summary Disable 2FA
// @Tags Two Factor
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body DisableRequest true "Current password"
// @Success 200 {object} router.successResponse
// @Failure 401 {object} router.errorResponse "Invalid password"
// @Failure 422 {object} router.errorResponse "Validation error"
// @Router /api/v1/2fa/disable [post]
func (h *HTTPEndpoint) Disable(r *router.Request) (any, error) {
	var req DisableRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	if err := h.uc.Disable(r.Context(), usecase.DisableInput{Password: req.Password}); err != nil {
		return nil, err
	}

	return DisableResponse{}, nil
}

// RegenerateBackupCodes replaces every backup code of the caller.
// @Summary Regenerate backup codes
// @Tags Two Factor
// @Produce json
// @Security BearerAuth
// @Success 200 {object} router.successResponse{data=BackupCodesResponse}
// @Failure 403 {object} router.errorResponse "2FA is not enabled"
// @Router /api/v1/2fa/backup-codes/regenerate [post]
func (h *HTTPEndpoint) RegenerateBackupCodes(r *router.Request) (any, error) {
	resp, err := h.uc.RegenerateBackupCodes(r.Context())
	if err != nil {
		return nil, err
	}

	return BackupCodesResponse{BackupCodes: resp.BackupCodes}, nil
}

// LoginHistory lists the recent sign-in attempts of the caller.
// @Summary Login history
// @Tags Security
// @Produce json
// @Security BearerAuth
// @Param limit query int false "Max entries (default 50, max 100)"
// @Success 200 {object} router.successResponse{data=[]LoginAttemptResponse}
// @Router /api/v1/security/login-history [get]
func (h *HTTPEndpoint) LoginHistory(r *router.Request) (any, error) {
	limit, err := r.GetQueryInt("limit")
	if err != nil {
		return nil, err
	}

	attempts, err := h.uc.LoginHistory(r.Context(), usecase.LoginHistoryInput{Limit: limit})
	if err != nil {
		return nil, err
	}

	resp := make(LoginHistoryResponse, 0, len(attempts))
	for _, a := range attempts {
		resp = append(resp, LoginAttemptResponse{
			ID:            a.ID,
			IPAddress:     a.IPAddress,
			UserAgent:     a.UserAgent,
			Success:       a.Success,
			FailureReason: a.FailureReason,
			TwoFactorUsed: a.TwoFactorUsed,
			CreatedAt:     a.CreatedAt,
		})
	}

	return resp, nil
}

// AuditExport exports the audit trail of the caller as CSV.
// @Summary Export audit logs
// @Tags Security
// @Produce json
// @Security BearerAuth
// @Success 201 {object} router.successResponse{data=AuditExportResponse}
// @Failure 429 {object} router.errorResponse "Export was just requested"
// @Router /api/v1/security/audit-logs/export [post]
func (h *HTTPEndpoint) AuditExport(r *router.Request) (any, error) {
	resp, err := h.uc.AuditExport(r.Context())
	if err != nil {
		return nil, err
	}

	return AuditExportResponse{URL: resp.URL, Key: resp.Key, ExpiresAt: resp.ExpiresAt}, nil
}

// AdminReset clears the 2FA of a user.
// @Summary Reset 2FA of a user
// @Tags Administration
// @Security BearerAuth
// @Param id path int true "User ID"
// @Success 204
// @Failure 403 {object} router.errorResponse "Account not allowed"
// @Failure 404 {object} router.errorResponse "User not found"
// @Router /api/v1/admin/users/{id}/2fa/reset [post]
func (h *HTTPEndpoint) AdminReset(r *router.Request) (any, error) {
	id, err := r.GetParamInt64("id")
	if err != nil {
		return nil, err
	}

	if err := h.uc.AdminReset(r.Context(), usecase.AdminResetInput{UserID: id}); err != nil {
		return nil, err
	}

	return AdminResetResponse{}, nil
}
