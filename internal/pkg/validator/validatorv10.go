package validator

import (
	"encoding/json"
	"errors"
	"regexp"
	"strings"
	"unicode"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	enTranslations "github.com/go-playground/validator/v10/translations/en"
)

var (
	reOTPCode    = regexp.MustCompile(`^[0-9]{6}$`)
	reBackupCode = regexp.MustCompile(`^[0-9A-Fa-f]{8}$`)
)

var ErrTranslatorNotFound = errors.New("validator: english translator not found")

// V10ValidationError maps snake_case field names to messages.
type V10ValidationError map[string]string

func (vs V10ValidationError) Error() string {
	if len(vs) == 0 {
		return "validation error"
	}
	b, _ := json.Marshal(map[string]string(vs))
	return string(b)
}

func (vs V10ValidationError) Values() map[string]string {
	return vs
}

// V10Validator is a Validator with English messages and the custom tags
// otp_code (6 digits), backup_code (8 hex characters) and second_factor
// (either of the two).
type V10Validator struct {
	validate   *validator.Validate
	translator ut.Translator
}

func NewV10Validator() (*V10Validator, error) {
	v := validator.New(validator.WithRequiredStructEnabled())

	lang := en.New()
	trans, ok := ut.New(lang, lang).GetTranslator("en")
	if !ok {
		return nil, ErrTranslatorNotFound
	}
	if err := enTranslations.RegisterDefaultTranslations(v, trans); err != nil {
		return nil, err
	}

	rules := []struct {
		tag   string
		msg   string
		check func(string) bool
	}{
		{"otp_code", "{0} must be a 6 digit code", reOTPCode.MatchString},
		{"backup_code", "{0} must be an 8 character backup code", reBackupCode.MatchString},
		{"second_factor", "{0} must be a 6 digit code or an 8 character backup code", func(s string) bool {
			return reOTPCode.MatchString(s) || reBackupCode.MatchString(s)
		}},
	}
	for _, r := range rules {
		if err := register(v, trans, r.tag, r.msg, r.check); err != nil {
			return nil, err
		}
	}

	return &V10Validator{validate: v, translator: trans}, nil
}

func (v *V10Validator) Validate(data any) error {
	err := v.validate.Struct(data)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}

	out := make(V10ValidationError, len(fieldErrs))
	for _, fe := range fieldErrs {
		out[snake(fe.Field())] = fe.Translate(v.translator)
	}
	return out
}

func register(v *validator.Validate, trans ut.Translator, tag, msg string, check func(string) bool) error {
	err := v.RegisterValidation(tag, func(fl validator.FieldLevel) bool {
		s, ok := fl.Field().Interface().(string)
		return ok && check(strings.TrimSpace(s))
	})
	if err != nil {
		return err
	}

	return v.RegisterTranslation(tag, trans,
		func(t ut.Translator) error { return t.Add(tag, msg, false) },
		func(t ut.Translator, fe validator.FieldError) string {
			s, err := t.T(fe.Tag(), fe.Field())
			if err != nil {
				return fe.Error()
			}
			return s
		},
	)
}

// snake turns UserID into user_id and ChallengeToken into challenge_token.
func snake(s string) string {
	r := []rune(s)
	var b strings.Builder
	b.Grow(len(s) + 4)

	for i, c := range r {
		if i > 0 && unicode.IsUpper(c) {
			prev := r[i-1]
			nextLower := i+1 < len(r) && unicode.IsLower(r[i+1])
			if unicode.IsLower(prev) || unicode.IsDigit(prev) || (unicode.IsUpper(prev) && nextLower) {
				b.WriteByte('_')
			}
		}
		b.WriteRune(unicode.ToLower(c))
	}
	return b.String()
}
