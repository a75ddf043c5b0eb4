package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

const sample = `
app:
  name: cenety
  maintenance: true
modules:
  twofactor:
    issuer: "Acme"
    challenge_ttl_minutes: 5
mfa:
  keys: " 1:a2V5 , 2:b3RoZXI= "
  secret: "aGVsbG8="
jwt:
  audiences: "web, mobile,,"
`

func TestNewViperFromBytes(t *testing.T) {
	// Arrange
	cfg, err := NewViperFromBytes("yaml", []byte(sample))
	if err != nil {
		t.Fatalf("NewViperFromBytes: %v", err)
	}

	// Act and Assert
	if got := cfg.GetString("modules.twofactor.issuer"); got != "Acme" {
		t.Fatalf("issuer = %q", got)
	}
	if got := cfg.GetMinute("modules.twofactor.challenge_ttl_minutes"); got != 5*time.Minute {
		t.Fatalf("ttl = %s", got)
	}
	if !cfg.GetBool("app.maintenance") {
		t.Fatalf("expected maintenance on")
	}
	if got := string(cfg.GetBinary("mfa.secret")); got != "hello" {
		t.Fatalf("binary = %q", got)
	}
	if got := cfg.GetArray("jwt.audiences"); len(got) != 2 || got[0] != "web" || got[1] != "mobile" {
		t.Fatalf("array = %v", got)
	}
	if got := cfg.GetMap("mfa.keys"); got["1"] != "a2V5" || got["2"] != "b3RoZXI=" {
		t.Fatalf("map = %v", got)
	}
	if cfg.IsSet("missing.key") {
		t.Fatalf("expected missing key to be unset")
	}
}

func TestEnvOverride(t *testing.T) {
	t.Setenv("CENETY_MODULES_TWOFACTOR_ISSUER", "FromEnv")

	cfg, err := NewViperFromBytes("yaml", []byte(sample))
	if err != nil {
		t.Fatalf("NewViperFromBytes: %v", err)
	}

	if got := cfg.GetString("modules.twofactor.issuer"); got != "FromEnv" {
		t.Fatalf("issuer = %q, want FromEnv", got)
	}
}

func TestNewViperFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(sample), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}

	cfg, err := NewViper(path)
	if err != nil {
		t.Fatalf("NewViper: %v", err)
	}
	defer cfg.Close()

	if got := cfg.GetString("app.name"); got != "cenety" {
		t.Fatalf("app.name = %q", got)
	}
}

func TestNewViperFromBytesRequiresType(t *testing.T) {
	if _, err := NewViperFromBytes(" ", nil); err == nil {
		t.Fatalf("expected error")
	}
}
