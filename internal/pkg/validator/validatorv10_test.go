package validator

import (
	"errors"
	"testing"
)

type enableInput struct {
	Code string `validate:"required,otp_code"`
}

type signInInput struct {
	ChallengeToken string `validate:"required"`
	Code           string `validate:"required,second_factor"`
}

func newValidator(t *testing.T) *V10Validator {
	t.Helper()

	v, err := NewV10Validator()
	if err != nil {
		t.Fatalf("NewV10Validator: %v", err)
	}
	return v
}

func TestValidateCustomTags(t *testing.T) {
	v := newValidator(t)

	cases := []struct {
		name    string
		in      any
		wantErr bool
	}{
		{name: "otp ok", in: enableInput{Code: "012345"}},
		{name: "otp letters", in: enableInput{Code: "01234a"}, wantErr: true},
		{name: "otp short", in: enableInput{Code: "12345"}, wantErr: true},
		{name: "second factor totp", in: signInInput{ChallengeToken: "t", Code: "123456"}},
		{name: "second factor backup lower", in: signInInput{ChallengeToken: "t", Code: "ab12cd34"}},
		{name: "second factor junk", in: signInInput{ChallengeToken: "t", Code: "zz"}, wantErr: true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := v.Validate(tc.in)
			if (err != nil) != tc.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tc.wantErr)
			}
		})
	}
}

func TestValidateFieldNames(t *testing.T) {
	// Arrange
	v := newValidator(t)

	// Act
	err := v.Validate(signInInput{})

	// Assert
	var verr V10ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected V10ValidationError, got %T", err)
	}
	if _, ok := verr.Values()["challenge_token"]; !ok {
		t.Fatalf("expected challenge_token key, got %v", verr)
	}
	if _, ok := verr.Values()["code"]; !ok {
		t.Fatalf("expected code key, got %v", verr)
	}
}

func TestSnake(t *testing.T) {
	cases := map[string]string{
		"UserID":         "user_id",
		"ChallengeToken": "challenge_token",
		"HTTPServer":     "http_server",
		"Code":           "code",
	}
	for in, want := range cases {
		if got := snake(in); got != want {
			t.Fatalf("snake(%q) = %q, want %q", in, got, want)
		}
	}
}
