// Package identity defines the authenticated-user snapshot and the contract of
// the external identity provider that issues it.
package identity

import (
	"context"
	"errors"
)

// Identity is the provider-issued user record. Empty Email or DisplayName
// means the provider has none.
type Identity struct {
	ID          string `json:"id" yaml:"id"`
	Email       string `json:"email,omitempty" yaml:"email,omitempty"`
	DisplayName string `json:"displayName,omitempty" yaml:"display_name,omitempty"`
}

// Clone returns a copy that callers may keep without aliasing provider state.
func (i *Identity) Clone() *Identity {
	if i == nil {
		return nil
	}
	c := *i
	return &c
}

// Result is what a credential exchange or account creation returns.
type Result struct {
	Identity     Identity
	IDToken      string
	RefreshToken string
}

// ProfileUpdate carries the identity fields a caller may change.
type ProfileUpdate struct {
	DisplayName string
}

// ChangeFunc receives the new identity, or nil when the session ends.
type ChangeFunc func(*Identity)

// ChangeSource is the provider's change-notification channel.
type ChangeSource interface {
	// OnChange registers fn for every future transition and returns an
	// idempotent unsubscribe function.
	OnChange(fn ChangeFunc) (unsubscribe func())
}

// Provider is the external identity service consumed by the auth operations.
// Every error returned by a Provider call should be an *Error.
type Provider interface {
	ChangeSource

	SignIn(ctx context.Context, email, password string) (*Result, error)
	SignUp(ctx context.Context, email, password string) (*Result, error)
	SignOut(ctx context.Context) error
	UpdateProfile(ctx context.Context, id Identity, update ProfileUpdate) error
	SendPasswordReset(ctx context.Context, email string) error
	// Current returns the provider's own signed-in identity, or nil. It is
	// updated before the change notification is published.
	Current() *Identity
}

// ErrNoSession is returned when an operation needs a signed-in user and there is none.
var ErrNoSession = errors.New("no authenticated user")
