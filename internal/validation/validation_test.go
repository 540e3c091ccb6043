package validation

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validInput() RegistrationInput {
	return RegistrationInput{
		Name:                 "Maria",
		Email:                "maria@example.com",
		Age:                  "30",
		Phone:                "123",
		Password:             "abcdef",
		PasswordConfirmation: "abcdef",
	}
}

func kindOf(t *testing.T, err error) Kind {
	t.Helper()
	var verr *Error
	require.True(t, errors.As(err, &verr), "expected *validation.Error, got %v", err)
	return verr.Kind
}

func TestValidateRegistration(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*RegistrationInput)
		want   Kind
	}{
		{"valid", func(*RegistrationInput) {}, ""},
		{"empty name", func(in *RegistrationInput) { in.Name = "" }, KindMissingFields},
		{"whitespace email", func(in *RegistrationInput) { in.Email = "   " }, KindMissingFields},
		{"empty age", func(in *RegistrationInput) { in.Age = "" }, KindMissingFields},
		{"empty phone", func(in *RegistrationInput) { in.Phone = "\t" }, KindMissingFields},
		{"empty password", func(in *RegistrationInput) { in.Password = "" }, KindMissingFields},
		{"invalid email", func(in *RegistrationInput) { in.Email = "maria.example.com" }, KindInvalidEmail},
		{"short password", func(in *RegistrationInput) { in.Password, in.PasswordConfirmation = "abcde", "abcde" }, KindWeakPassword},
		{"mismatch", func(in *RegistrationInput) { in.PasswordConfirmation = "abcdeg" }, KindPasswordMismatch},
		{"empty confirmation is a mismatch", func(in *RegistrationInput) { in.PasswordConfirmation = "" }, KindPasswordMismatch},
		{"missing wins over invalid email", func(in *RegistrationInput) { in.Name = ""; in.Email = "bad" }, KindMissingFields},
		{"invalid email wins over weak password", func(in *RegistrationInput) { in.Email = "bad"; in.Password = "a" }, KindInvalidEmail},
		{"weak password wins over mismatch", func(in *RegistrationInput) { in.Password = "abc"; in.PasswordConfirmation = "xyz" }, KindWeakPassword},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := validInput()
			tt.mutate(&in)
			err := ValidateRegistration(in)
			if tt.want == "" {
				assert.NoError(t, err)
				return
			}
			assert.Equal(t, tt.want, kindOf(t, err))
		})
	}
}

func TestValidEmail(t *testing.T) {
	accepted := []string{
		"a@b.co",
		"maria@example.com",
		"first.last+tag@sub.domain.org",
		"user@domain.c",
	}
	rejected := []string{
		"",
		"plainaddress",
		"@example.com",
		"user@",
		"user@domain",
		"user@@domain.com",
		"us er@domain.com",
		"user@domain .com",
		"user@.",
		"a\u00a0b@example.com",
		"a\vb@example.com",
		"ana@exa\u2003mple.com",
		"ana@example.com\u2028",
		"ana\u0085@example.com",
	}
	for _, e := range accepted {
		assert.True(t, ValidEmail(e), "expected %q to be accepted", e)
	}
	for _, e := range rejected {
		assert.False(t, ValidEmail(e), "expected %q to be rejected", e)
	}
}

func TestInvalidEmailOnlyFromEmailRule(t *testing.T) {
	for _, e := range []string{"x@y.z", "maria@example.com"} {
		in := validInput()
		in.Email = e
		assert.NoError(t, ValidateRegistration(in))
	}
	for _, e := range []string{"x@y", "no-at.com", "a b@c.d"} {
		in := validInput()
		in.Email = e
		assert.Equal(t, KindInvalidEmail, kindOf(t, ValidateRegistration(in)))
	}
}

func TestPasswordLengthBoundary(t *testing.T) {
	in := validInput()
	in.Password = strings.Repeat("a", MinPasswordLength-1)
	in.PasswordConfirmation = in.Password
	assert.Equal(t, KindWeakPassword, kindOf(t, ValidateRegistration(in)))

	in.Password = strings.Repeat("a", MinPasswordLength)
	in.PasswordConfirmation = in.Password
	assert.NoError(t, ValidateRegistration(in))

	// multibyte characters count once
	in.Password = strings.Repeat("ç", MinPasswordLength-1)
	in.PasswordConfirmation = in.Password
	assert.Equal(t, KindWeakPassword, kindOf(t, ValidateRegistration(in)))

	in.Password = strings.Repeat("ç", MinPasswordLength)
	in.PasswordConfirmation = in.Password
	assert.NoError(t, ValidateRegistration(in))
}

func TestPasswordMismatch(t *testing.T) {
	in := validInput()
	in.Password = "abcdef"
	in.PasswordConfirmation = "abcdeg"
	assert.Equal(t, KindPasswordMismatch, kindOf(t, ValidateRegistration(in)))
}

func TestValidateLogin(t *testing.T) {
	assert.NoError(t, ValidateLogin(LoginInput{Email: "anything", Password: "x"}))
	assert.Equal(t, KindMissingFields, kindOf(t, ValidateLogin(LoginInput{Email: "", Password: "x"})))
	assert.Equal(t, KindMissingFields, kindOf(t, ValidateLogin(LoginInput{Email: "a@b.c", Password: "  "})))
}

func TestValidatePasswordReset(t *testing.T) {
	assert.NoError(t, ValidatePasswordReset("a@b.c"))
	assert.Equal(t, KindMissingFields, kindOf(t, ValidatePasswordReset(" ")))
}

func TestErrorIs(t *testing.T) {
	err := ValidateLogin(LoginInput{})
	assert.True(t, errors.Is(err, &Error{Kind: KindMissingFields}))
	assert.False(t, errors.Is(err, &Error{Kind: KindWeakPassword}))
	assert.Contains(t, err.Error(), "required fields")
}
