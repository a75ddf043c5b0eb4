package otp

import (
	"net/url"
	"strings"
)

// DefaultIssuer labels accounts in authenticator apps when no issuer is configured.
const DefaultIssuer = "Cenety"

var componentUnescaper = strings.NewReplacer(
	"+", "%20",
	"%21", "!",
	"%27", "'",
	"%28", "(",
	"%29", ")",
	"%2A", "*",
)

// ProvisioningURI builds the otpauth:// URI understood by authenticator apps.
// The algorithm, digit count and period are fixed.
func ProvisioningURI(issuer, email, secret string) string {
	if strings.TrimSpace(issuer) == "" {
		issuer = DefaultIssuer
	}
	iss := escapeComponent(issuer)

	var sb strings.Builder
	sb.WriteString("otpauth://totp/")
	sb.WriteString(iss)
	sb.WriteByte(':')
	sb.WriteString(escapeComponent(email))
	sb.WriteString("?secret=")
	sb.WriteString(secret)
	sb.WriteString("&issuer=")
	sb.WriteString(iss)
	sb.WriteString("&algorithm=SHA1&digits=6&period=30")

	return sb.String()
}

// escapeComponent percent-encodes s with the same reserved set as the
// ECMAScript encodeURIComponent function.
func escapeComponent(s string) string {
	return componentUnescaper.Replace(url.QueryEscape(s))
}
