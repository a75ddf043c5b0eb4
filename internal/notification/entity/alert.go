package entity

// Alert is the e-mail sent to an account owner for one security action.
type Alert struct {
	Subject string
	Heading string
	Summary string
}

var alerts = map[string]Alert{
	"TWO_FACTOR_ENABLED": {
		Subject: "Two-factor authentication was enabled",
		Heading: "Two-factor authentication is on",
		Summary: "Signing in to your account now needs a code from your authenticator app.",
	},
	"TWO_FACTOR_DISABLED": {
		Subject: "Two-factor authentication was disabled",
		Heading: "Two-factor authentication is off",
		Summary: "Your account no longer asks for a second factor when signing in.",
	},
	"BACKUP_CODES_REGENERATED": {
		Subject: "New backup codes were generated",
		Heading: "Your backup codes changed",
		Summary: "A new set of backup codes was created. Codes from before no longer work.",
	},
	"TWO_FACTOR_RESET": {
		Subject: "Two-factor authentication was reset",
		Heading: "An administrator reset your two-factor authentication",
		Summary: "Set up two-factor authentication again from your security settings.",
	},
	"AUDIT_EXPORTED": {
		Subject: "Your security log was exported",
		Heading: "Security log export",
		Summary: "A copy of your security log was exported from your account.",
	},
}

// AlertFor returns the alert of a security action, or false when the
// action does not warrant one.
func AlertFor(action string) (Alert, bool) {
	a, ok := alerts[action]
	return a, ok
}
