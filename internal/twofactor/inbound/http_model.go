package inbound

import (
	"net/http"
	"time"
)

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginResponse struct {
	TwoFactorRequired bool   `json:"two_factor_required,omitempty"`
	ChallengeToken    string `json:"challenge_token,omitempty"`
	AccessToken       string `json:"access_token,omitempty"`
}

type Login2FARequest struct {
	ChallengeToken string `json:"challenge_token"`
	Code           string `json:"code"`
}

type Login2FAResponse struct {
	AccessToken string `json:"access_token"`
	Method      string `json:"method"`
}

type CheckEnabledRequest struct {
	Email string `json:"email"`
}

type CheckEnabledResponse struct {
	Enabled bool  `json:"enabled"`
	UserID  int64 `json:"user_id,omitempty,string"`
}

type StatusResponse struct {
	Enabled              bool `json:"enabled"`
	HasSecret            bool `json:"has_secret"`
	HasBackupCodes       bool `json:"has_backup_codes"`
	BackupCodesRemaining int  `json:"backup_codes_remaining"`
}

type SetupResponse struct {
	Secret      string   `json:"secret"`
	URI         string   `json:"uri"`
	QRCode      string   `json:"qr_code"`
	BackupCodes []string `json:"backup_codes"`
}

func (SetupResponse) Message() string {
	return "Scan the QR code and confirm with a code from your authenticator app."
}

type EnableRequest struct {
	Code string `json:"code"`
}

type EnableResponse struct{}

func (EnableResponse) Message() string { return "Two-factor authentication enabled" }

type DisableRequest struct {
	Password string `json:"password"`
}

type DisableResponse struct{}

func (DisableResponse) Message() string { return "Two-factor authentication disabled" }

type BackupCodesResponse struct {
	BackupCodes []string `json:"backup_codes"`
}

func (BackupCodesResponse) Message() string {
	return "New backup codes generated. Previous codes no longer work."
}

type LoginAttemptResponse struct {
	ID            int64     `json:"id,string"`
	IPAddress     string    `json:"ip_address"`
	UserAgent     string    `json:"user_agent"`
	Success       bool      `json:"success"`
	FailureReason string    `json:"failure_reason,omitempty"`
	TwoFactorUsed bool      `json:"two_factor_used"`
	CreatedAt     time.Time `json:"created_at"`
}

type LoginHistoryResponse []LoginAttemptResponse

func (l LoginHistoryResponse) Meta() map[string]any {
	return map[string]any{"count": len(l)}
}

type AuditExportResponse struct {
	URL       string    `json:"url"`
	Key       string    `json:"key"`
	ExpiresAt time.Time `json:"expires_at"`
}

func (AuditExportResponse) StatusCode() int { return http.StatusCreated }

type AdminResetResponse struct{}

func (AdminResetResponse) StatusCode() int { return http.StatusNoContent }
