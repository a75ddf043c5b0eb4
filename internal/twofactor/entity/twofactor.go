package entity

import (
	"time"

	"github.com/shandysiswandi/cenety/internal/pkg/valueobject"
)

type User struct {
	ID       int64
	Email    string
	Password string
	FullName string
}

// TwoFactor is the per-account 2FA row. Secret holds the sealed base32
// secret and is empty once 2FA is disabled.
type TwoFactor struct {
	UserID     int64
	Secret     []byte
	KeyVersion int16
	Enabled    bool
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

func (tf *TwoFactor) HasSecret() bool {
	return tf != nil && len(tf.Secret) > 0
}

func (tf *TwoFactor) State() State {
	switch {
	case tf == nil || !tf.HasSecret():
		return StateNotConfigured
	case tf.Enabled:
		return StateEnabled
	default:
		return StatePendingVerification
	}
}

type BackupCode struct {
	ID       int64
	UserID   int64
	CodeHash string
}

type AuditLog struct {
	ID        int64
	UserID    int64
	Action    AuditAction
	Details   valueobject.JSONMap
	CreatedAt time.Time
}

type LoginAttempt struct {
	ID            int64
	UserID        int64
	IPAddress     string
	UserAgent     string
	Success       bool
	FailureReason string
	TwoFactorUsed bool
	CreatedAt     time.Time
}

// SignInChallenge is what a login challenge token resolves to while the
// second factor is pending.
type SignInChallenge struct {
	UserID int64  `json:"user_id"`
	Email  string `json:"email"`
}

type Status struct {
	Enabled              bool
	HasSecret            bool
	HasBackupCodes       bool
	BackupCodesRemaining int
}
