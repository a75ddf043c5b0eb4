package otp

import (
	"strings"
	"testing"
	"time"
)

func TestProvisioningURI(t *testing.T) {
	cases := []struct {
		name   string
		issuer string
		email  string
		want   string
	}{
		{
			name:   "plain",
			issuer: "Cenety",
			email:  "jane@example.com",
			want:   "otpauth://totp/Cenety:jane%40example.com?secret=JBSWY3DPEHPK3PXP&issuer=Cenety&algorithm=SHA1&digits=6&period=30",
		},
		{
			name:   "default issuer",
			issuer: " ",
			email:  "a@b.c",
			want:   "otpauth://totp/Cenety:a%40b.c?secret=JBSWY3DPEHPK3PXP&issuer=Cenety&algorithm=SHA1&digits=6&period=30",
		},
		{
			name:   "escaped issuer and plus address",
			issuer: "Acme Billing",
			email:  "jane+2fa@example.com",
			want:   "otpauth://totp/Acme%20Billing:jane%2B2fa%40example.com?secret=JBSWY3DPEHPK3PXP&issuer=Acme%20Billing&algorithm=SHA1&digits=6&period=30",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := ProvisioningURI(tc.issuer, tc.email, scenarioSecret); got != tc.want {
				t.Fatalf("ProvisioningURI() =\n%s\nwant\n%s", got, tc.want)
			}
		})
	}
}

func TestTOTPGenerateAndValidate(t *testing.T) {
	// Arrange
	svc := NewTOTP("", DefaultWindow)
	now := time.Unix(1700000000, 0)

	// Act
	secret, uri, err := svc.Generate("jane@example.com")
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	code, err := svc.GenerateCode(secret, now)
	if err != nil {
		t.Fatalf("GenerateCode: %v", err)
	}

	// Assert
	if len(secret) != 32 || strings.ContainsRune(secret, '=') {
		t.Fatalf("unexpected secret %q", secret)
	}
	if !strings.HasPrefix(uri, "otpauth://totp/Cenety:jane%40example.com?secret="+secret+"&") {
		t.Fatalf("unexpected uri %q", uri)
	}
	if !svc.Validate(code, secret, now) {
		t.Fatalf("expected generated code to validate")
	}
	if svc.Validate(code, secret, now.Add(3*time.Minute)) {
		t.Fatalf("expected code to expire outside the window")
	}
}

func TestQRCode(t *testing.T) {
	uri := ProvisioningURI("Cenety", "jane@example.com", scenarioSecret)

	got, err := QRCode(uri, 0)
	if err != nil {
		t.Fatalf("QRCode: %v", err)
	}
	if !strings.HasPrefix(got, "data:image/png;base64,") {
		t.Fatalf("unexpected data url prefix: %.40s", got)
	}
}
