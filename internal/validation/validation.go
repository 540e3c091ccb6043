// Package validation checks the well-formedness of credentials and profile
// fields before anything is sent to the identity provider.
package validation

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// MinPasswordLength is the shortest password accepted at registration.
const MinPasswordLength = 6

// Kind identifies which rule rejected the input.
type Kind string

const (
	KindMissingFields    Kind = "missing_fields"
	KindInvalidEmail     Kind = "invalid_email"
	KindWeakPassword     Kind = "weak_password"
	KindPasswordMismatch Kind = "password_mismatch"
)

// Error is returned when input fails validation. It never reaches the network layer.
type Error struct {
	Kind Kind
}

func (e *Error) Error() string {
	switch e.Kind {
	case KindMissingFields:
		return "validation failed: required fields are missing"
	case KindInvalidEmail:
		return "validation failed: invalid email address"
	case KindWeakPassword:
		return "validation failed: password is too short"
	case KindPasswordMismatch:
		return "validation failed: passwords do not match"
	default:
		return "validation failed"
	}
}

// Is reports a match against another *Error of the same kind, so callers can
// write errors.Is(err, &validation.Error{Kind: validation.KindWeakPassword}).
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

// emailPattern is local-part@domain.tld with no whitespace. RE2's \s is ASCII
// only, so vertical tab and Unicode separators are listed too.
var emailPattern = regexp.MustCompile(`^[^\s\v\p{Z}\x{85}@]+@[^\s\v\p{Z}\x{85}@]+\.[^\s\v\p{Z}\x{85}@]+$`)

// RegistrationInput holds the raw, untrimmed registration form values.
type RegistrationInput struct {
	Name                 string
	Email                string
	Age                  string
	Phone                string
	Password             string
	PasswordConfirmation string
}

// LoginInput holds the raw login form values.
type LoginInput struct {
	Email    string
	Password string
}

// rule pairs a check with the kind reported when it fails.
type rule struct {
	kind  Kind
	check func() bool
}

// apply evaluates rules in order and stops at the first failure.
func apply(rules ...rule) error {
	for _, r := range rules {
		if !r.check() {
			return &Error{Kind: r.kind}
		}
	}
	return nil
}

func required(kind Kind, values ...string) rule {
	return rule{
		kind: kind,
		check: func() bool {
			for _, v := range values {
				if strings.TrimSpace(v) == "" {
					return false
				}
			}
			return true
		},
	}
}

// ValidEmail reports whether s has the local-part@domain.tld shape.
func ValidEmail(s string) bool {
	return emailPattern.MatchString(s)
}

// PasswordLongEnough counts characters, not bytes.
func PasswordLongEnough(password string) bool {
	return utf8.RuneCountInString(password) >= MinPasswordLength
}

// ValidateRegistration returns nil or an *Error for the first failing rule:
// missing fields, email shape, password length, confirmation match.
func ValidateRegistration(in RegistrationInput) error {
	return apply(
		required(KindMissingFields, in.Name, in.Email, in.Age, in.Phone, in.Password),
		rule{kind: KindInvalidEmail, check: func() bool { return ValidEmail(in.Email) }},
		rule{kind: KindWeakPassword, check: func() bool { return PasswordLongEnough(in.Password) }},
		rule{kind: KindPasswordMismatch, check: func() bool { return in.Password == in.PasswordConfirmation }},
	)
}

// ValidateLogin only checks that email and password are present.
func ValidateLogin(in LoginInput) error {
	return apply(required(KindMissingFields, in.Email, in.Password))
}

// ValidatePasswordReset only checks that an email is present.
func ValidatePasswordReset(email string) error {
	return apply(required(KindMissingFields, email))
}
