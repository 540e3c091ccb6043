package identity

import (
	"errors"
	"fmt"
	"strings"
)

// Provider error codes. The first six form the vocabulary the translator knows.
const (
	CodeEmailAlreadyInUse  = "email-already-in-use"
	CodeWeakPassword       = "weak-password"
	CodeInvalidEmail       = "invalid-email"
	CodeUserNotFound       = "user-not-found"
	CodeWrongPassword      = "wrong-password"
	CodeTooManyRequests    = "too-many-requests"
	CodeInvalidCredential  = "invalid-credential"
	CodeUserDisabled       = "user-disabled"
	CodeNoCurrentUser      = "no-current-user"
	CodeNetworkRequestFail = "network-request-failed"
	CodeInternal           = "internal-error"
)

// Error is a provider-originated failure: a code from the vocabulary above
// plus the provider's free-text message.
type Error struct {
	Code    string
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Message == "" {
		return "identity provider: " + e.Code
	}
	return fmt.Sprintf("identity provider: %s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// NewError builds an *Error.
func NewError(code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// NormalizeCode strips the "auth/" namespace used by Firebase SDKs and lowercases.
func NormalizeCode(code string) string {
	code = strings.ToLower(strings.TrimSpace(code))
	return strings.TrimPrefix(code, "auth/")
}

// CodeOf extracts the provider code from err, or CodeInternal when err is not an *Error.
func CodeOf(err error) string {
	var perr *Error
	if errors.As(err, &perr) {
		return NormalizeCode(perr.Code)
	}
	return CodeInternal
}
