package auth

import (
	"fmt"

	"github.com/brizzai/auth-profile/internal/identity"
)

// Error is a provider-originated failure. Message is already translated for
// display; Code is the normalized provider code.
type Error struct {
	Code    string
	Message string
	Err     error
}

func (e *Error) Error() string { return e.Message }

func (e *Error) Unwrap() error { return e.Err }

// Step names the registration stage that failed after the identity was created.
type Step string

const (
	StepUpdateProfile Step = "update_profile"
	StepCreateProfile Step = "create_profile"
)

// IncompleteRegistrationError is returned when the identity exists but a later
// registration step failed. Nothing is rolled back: Identity stays usable and
// Err is the *Error or *profile.StorageError that stopped the flow.
type IncompleteRegistrationError struct {
	Identity identity.Identity
	Step     Step
	Message  string
	Err      error
}

func (e *IncompleteRegistrationError) Error() string {
	return fmt.Sprintf("registration incomplete for %s at %s: %s", e.Identity.ID, e.Step, e.Message)
}

func (e *IncompleteRegistrationError) Unwrap() error { return e.Err }
