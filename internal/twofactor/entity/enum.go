package entity

type AuditAction int16

const (
	// AuditActionUnknown is an action that is not set or not recognized.
	AuditActionUnknown AuditAction = 0

	// AuditActionTwoFactorEnabled is recorded when a pending setup is confirmed with a valid code.
	AuditActionTwoFactorEnabled AuditAction = 1

	// AuditActionTwoFactorDisabled is recorded when the owner turns 2FA off after re-authenticating.
	AuditActionTwoFactorDisabled AuditAction = 2

	// AuditActionBackupCodesRegenerated is recorded when the backup code set is replaced.
	AuditActionBackupCodesRegenerated AuditAction = 3

	// AuditActionTwoFactorReset is recorded when an administrator clears the 2FA of an account.
	AuditActionTwoFactorReset AuditAction = 4

	// AuditActionAuditExported is recorded when the owner downloads their audit log.
	AuditActionAuditExported AuditAction = 5
)

func (a AuditAction) String() string {
	switch a {
	case AuditActionTwoFactorEnabled:
		return "TWO_FACTOR_ENABLED"
	case AuditActionTwoFactorDisabled:
		return "TWO_FACTOR_DISABLED"
	case AuditActionBackupCodesRegenerated:
		return "BACKUP_CODES_REGENERATED"
	case AuditActionTwoFactorReset:
		return "TWO_FACTOR_RESET"
	case AuditActionAuditExported:
		return "AUDIT_EXPORTED"
	default:
		return "UNKNOWN"
	}
}

// Ensure maps values read from storage onto a known action.
func (a AuditAction) Ensure() AuditAction {
	switch a {
	case AuditActionTwoFactorEnabled,
		AuditActionTwoFactorDisabled,
		AuditActionBackupCodesRegenerated,
		AuditActionTwoFactorReset,
		AuditActionAuditExported:
		return a
	default:
		return AuditActionUnknown
	}
}

// State is the enrollment state of an account.
type State int

const (
	StateNotConfigured State = iota
	StatePendingVerification
	StateEnabled
)

func (s State) String() string {
	switch s {
	case StatePendingVerification:
		return "PendingVerification"
	case StateEnabled:
		return "Enabled"
	default:
		return "NotConfigured"
	}
}

// Login failure reasons recorded in the login history.
const (
	FailureReasonInvalidPassword = "invalid_password"
	FailureReasonInvalidCode     = "invalid_two_factor_code"
)
