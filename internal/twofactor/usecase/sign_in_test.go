package usecase

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/shandysiswandi/cenety/internal/pkg/goerror"
	"github.com/shandysiswandi/cenety/internal/twofactor/entity"
)

func TestVerifySignIn(t *testing.T) {
	ctx := context.Background()

	t.Run("not configured", func(t *testing.T) {
		h := newHarness(t)

		_, err := h.uc.VerifySignIn(ctx, VerifySignInInput{UserID: 1, Code: "123456"})

		assertBusiness(t, err, "2FA not configured for this user", goerror.CodeNotFound)
	})

	t.Run("pending verification", func(t *testing.T) {
		h := newHarness(t)
		out, err := h.uc.Setup(h.as(1))
		if err != nil {
			t.Fatalf("Setup() error = %v", err)
		}

		_, err = h.uc.VerifySignIn(ctx, VerifySignInInput{UserID: 1, Code: out.BackupCodes[0]})

		assertBusiness(t, err, "2FA is not enabled for this user", goerror.CodeForbidden)
		if len(h.db.codes[1]) != 10 {
			t.Fatal("backup code consumed while 2FA was not enabled")
		}
	})

	t.Run("totp", func(t *testing.T) {
		h := newHarness(t)
		out := h.enroll(t, 1)
		code, _ := h.totp.GenerateCode(out.Secret, h.clock.Now().Add(30*time.Second))

		got, err := h.uc.VerifySignIn(ctx, VerifySignInInput{UserID: 1, Code: code})

		if err != nil {
			t.Fatalf("VerifySignIn() error = %v", err)
		}
		if got.Method != MethodTOTP {
			t.Fatalf("method = %q, want %q", got.Method, MethodTOTP)
		}
	})

	t.Run("wrong code", func(t *testing.T) {
		h := newHarness(t)
		out := h.enroll(t, 1)
		code, _ := h.totp.GenerateCode(out.Secret, h.clock.Now().Add(2*time.Minute))

		_, err := h.uc.VerifySignIn(ctx, VerifySignInInput{UserID: 1, Code: code})

		assertBusiness(t, err, "Invalid verification code", goerror.CodeUnauthorized)
	})

	t.Run("malformed code", func(t *testing.T) {
		h := newHarness(t)
		h.enroll(t, 1)

		_, err := h.uc.VerifySignIn(ctx, VerifySignInInput{UserID: 1, Code: "12-34-56"})

		if goerror.CodeOf(err) != goerror.CodeInvalidInput {
			t.Fatalf("error code = %s, want invalid input", goerror.CodeOf(err))
		}
	})
}

func TestBackupCodeIsSingleUse(t *testing.T) {
	// Arrange
	h := newHarness(t)
	out := h.enroll(t, 1)
	code := strings.ToLower(out.BackupCodes[4])

	// Act
	first, err := h.uc.VerifySignIn(context.Background(), VerifySignInInput{UserID: 1, Code: code})
	_, again := h.uc.VerifySignIn(context.Background(), VerifySignInInput{UserID: 1, Code: out.BackupCodes[4]})

	// Assert
	if err != nil {
		t.Fatalf("VerifySignIn() error = %v", err)
	}
	if first.Method != MethodBackupCode {
		t.Fatalf("method = %q, want %q", first.Method, MethodBackupCode)
	}
	assertBusiness(t, again, "Invalid verification code", goerror.CodeUnauthorized)
	if len(h.db.codes[1]) != 9 {
		t.Fatalf("remaining codes = %d, want 9", len(h.db.codes[1]))
	}
}

func TestBackupCodeConcurrentUse(t *testing.T) {
	h := newHarness(t)
	out := h.enroll(t, 1)

	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		wins int
	)
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := h.uc.VerifySignIn(context.Background(), VerifySignInInput{UserID: 1, Code: out.BackupCodes[0]}); err == nil {
				mu.Lock()
				wins++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if wins != 1 {
		t.Fatalf("successful redemptions = %d, want 1", wins)
	}
}

func TestBackupCodeOfAnotherUser(t *testing.T) {
	h := newHarness(t)
	jane := h.enroll(t, 1)
	h.enroll(t, 2)

	_, err := h.uc.VerifySignIn(context.Background(), VerifySignInInput{UserID: 2, Code: jane.BackupCodes[0]})

	assertBusiness(t, err, "Invalid verification code", goerror.CodeUnauthorized)
	if len(h.db.codes[1]) != 10 {
		t.Fatal("code of another user was consumed")
	}
}

func TestCheckEnabledByEmail(t *testing.T) {
	h := newHarness(t)
	h.enroll(t, 1)
	ctx := context.Background()

	tests := []struct {
		email string
		want  CheckEnabledByEmailOutput
	}{
		{"jane@example.com", CheckEnabledByEmailOutput{Enabled: true, UserID: 1}},
		{"  JANE@example.com ", CheckEnabledByEmailOutput{Enabled: true, UserID: 1}},
		{"john@example.com", CheckEnabledByEmailOutput{UserID: 2}},
		{"nobody@example.com", CheckEnabledByEmailOutput{}},
	}

	for _, tt := range tests {
		t.Run(tt.email, func(t *testing.T) {
			got, err := h.uc.CheckEnabledByEmail(ctx, CheckEnabledByEmailInput{Email: tt.email})
			if err != nil {
				t.Fatalf("CheckEnabledByEmail() error = %v", err)
			}
			if *got != tt.want {
				t.Fatalf("got %+v, want %+v", *got, tt.want)
			}
		})
	}

	if _, err := h.uc.CheckEnabledByEmail(ctx, CheckEnabledByEmailInput{Email: "not-an-email"}); goerror.CodeOf(err) != goerror.CodeInvalidInput {
		t.Fatalf("invalid email error code = %s", goerror.CodeOf(err))
	}
}

func TestLoginWithoutTwoFactor(t *testing.T) {
	// Arrange
	h := newHarness(t)

	// Act
	out, err := h.uc.Login(context.Background(), LoginInput{
		Email:     "john@example.com",
		Password:  testPassword,
		IPAddress: "10.0.0.2",
		UserAgent: "curl/8",
	})
	h.flush(t)

	// Assert
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}
	if out.TwoFactorRequired || out.ChallengeToken != "" || out.AccessToken == "" {
		t.Fatalf("Login() = %+v, want an access token only", out)
	}
	if len(h.db.attempts) != 1 || !h.db.attempts[0].Success || h.db.attempts[0].IPAddress != "10.0.0.2" {
		t.Fatalf("attempts = %+v", h.db.attempts)
	}
}

func TestLoginInvalidCredentials(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	_, unknown := h.uc.Login(ctx, LoginInput{Email: "ghost@example.com", Password: testPassword})
	_, wrong := h.uc.Login(ctx, LoginInput{Email: "jane@example.com", Password: "nope"})
	h.flush(t)

	assertBusiness(t, unknown, "Invalid email or password", goerror.CodeUnauthorized)
	assertBusiness(t, wrong, "Invalid email or password", goerror.CodeUnauthorized)

	want := entity.LoginAttempt{UserID: 1, FailureReason: entity.FailureReasonInvalidPassword}
	if len(h.db.attempts) != 1 {
		t.Fatalf("attempts = %d, want 1", len(h.db.attempts))
	}
	got := h.db.attempts[0]
	if got.UserID != want.UserID || got.Success || got.FailureReason != want.FailureReason {
		t.Fatalf("attempt = %+v", got)
	}
}

func TestLoginWithTwoFactor(t *testing.T) {
	// Arrange
	h := newHarness(t)
	enrolled := h.enroll(t, 1)
	ctx := context.Background()

	// Act
	login, err := h.uc.Login(ctx, LoginInput{Email: "jane@example.com", Password: testPassword})
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}

	stale, _ := h.totp.GenerateCode(enrolled.Secret, h.clock.Now().Add(-5*time.Minute))
	_, wrong := h.uc.Login2FA(ctx, Login2FAInput{ChallengeToken: login.ChallengeToken, Code: stale})

	code, _ := h.totp.GenerateCode(enrolled.Secret, h.clock.Now())
	out, err := h.uc.Login2FA(ctx, Login2FAInput{ChallengeToken: login.ChallengeToken, Code: code})
	if err != nil {
		t.Fatalf("Login2FA() error = %v", err)
	}
	_, reused := h.uc.Login2FA(ctx, Login2FAInput{ChallengeToken: login.ChallengeToken, Code: code})
	h.flush(t)

	// Assert
	if !login.TwoFactorRequired || login.AccessToken != "" || login.ChallengeToken == "" {
		t.Fatalf("Login() = %+v, want a challenge", login)
	}
	assertBusiness(t, wrong, "Invalid verification code", goerror.CodeUnauthorized)
	assertBusiness(t, reused, "Invalid or expired challenge", goerror.CodeUnauthorized)

	if out.Method != MethodTOTP || out.AccessToken == "" {
		t.Fatalf("Login2FA() = %+v", out)
	}
	if len(h.cache.data) != 0 {
		t.Fatal("challenge kept after a successful login")
	}

	if len(h.db.attempts) != 2 {
		t.Fatalf("attempts = %+v, want a failure then a success", h.db.attempts)
	}
	for i, a := range h.db.attempts {
		if !a.TwoFactorUsed || a.UserID != 1 {
			t.Fatalf("attempt %d = %+v", i, a)
		}
	}
}

func TestLogin2FAWithBackupCode(t *testing.T) {
	h := newHarness(t)
	enrolled := h.enroll(t, 1)
	ctx := context.Background()

	login, err := h.uc.Login(ctx, LoginInput{Email: "jane@example.com", Password: testPassword})
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}

	out, err := h.uc.Login2FA(ctx, Login2FAInput{ChallengeToken: login.ChallengeToken, Code: enrolled.BackupCodes[9]})

	if err != nil {
		t.Fatalf("Login2FA() error = %v", err)
	}
	if out.Method != MethodBackupCode {
		t.Fatalf("method = %q, want %q", out.Method, MethodBackupCode)
	}
}

func TestLogin2FAChallengeCleanupFailure(t *testing.T) {
	// Arrange
	h := newHarness(t)
	enrolled := h.enroll(t, 1)
	ctx := context.Background()

	login, err := h.uc.Login(ctx, LoginInput{Email: "jane@example.com", Password: testPassword})
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}
	h.cache.failDelete = errors.New("redis down")

	// Act
	out, err := h.uc.Login2FA(ctx, Login2FAInput{ChallengeToken: login.ChallengeToken, Code: enrolled.BackupCodes[0]})

	// Assert
	if err != nil {
		t.Fatalf("Login2FA() error = %v", err)
	}
	if out.AccessToken == "" || out.Method != MethodBackupCode {
		t.Fatalf("Login2FA() = %+v", out)
	}
	if n, _ := h.db.CountBackupCodes(ctx, 1); n != 9 {
		t.Fatalf("remaining backup codes = %d, want 9", n)
	}
}

func TestLogin2FAUnknownChallenge(t *testing.T) {
	h := newHarness(t)

	_, err := h.uc.Login2FA(context.Background(), Login2FAInput{ChallengeToken: "made-up", Code: "123456"})

	assertBusiness(t, err, "Invalid or expired challenge", goerror.CodeUnauthorized)
}
