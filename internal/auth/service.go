// Package auth implements the login, registration and logout flows on top of
// an identity provider, the session store and the profile repository.
//
// Operations never write the session directly. The session follows the
// provider's own change notifications, which may arrive before the call that
// triggered them returns.
package auth

import (
	"context"
	"time"

	"github.com/brizzai/auth-profile/internal/identity"
	"github.com/brizzai/auth-profile/internal/logger"
	"github.com/brizzai/auth-profile/internal/profile"
	"github.com/brizzai/auth-profile/internal/session"
	"github.com/brizzai/auth-profile/internal/translator"
	"github.com/brizzai/auth-profile/internal/validation"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// ServiceParams holds the collaborators of a Service
type ServiceParams struct {
	fx.In

	Provider   identity.Provider
	Session    *session.Store
	Profiles   *profile.Repository
	Translator *translator.Translator
}

// Service exposes the auth operations
type Service struct {
	provider identity.Provider
	session  *session.Store
	profiles *profile.Repository
	messages *translator.Translator
	now      func() time.Time
}

// NewService creates a new Service
func NewService(params ServiceParams) *Service {
	return &Service{
		provider: params.Provider,
		session:  params.Session,
		profiles: params.Profiles,
		messages: params.Translator,
		now:      time.Now,
	}
}

// RegisterRequest is the registration form. Age and Phone are stored as
// entered; Extra holds additional primitive profile fields.
type RegisterRequest struct {
	Name                 string
	Email                string
	Password             string
	PasswordConfirmation string
	Age                  string
	Phone                string
	Extra                map[string]any
}

// Login exchanges credentials for an identity. Validation failures return a
// *validation.Error without contacting the provider.
func (s *Service) Login(ctx context.Context, email, password string) (*identity.Identity, error) {
	if err := validation.ValidateLogin(validation.LoginInput{Email: email, Password: password}); err != nil {
		return nil, err
	}

	res, err := s.provider.SignIn(ctx, email, password)
	if err != nil {
		return nil, s.providerError("login", err)
	}
	logger.Info("User logged in", zap.String("identity_id", res.Identity.ID))
	return res.Identity.Clone(), nil
}

// Register creates the identity, sets its display name and writes the profile
// record, in that order. A failure after the identity exists returns
// *IncompleteRegistrationError.
func (s *Service) Register(ctx context.Context, req RegisterRequest) (*identity.Identity, error) {
	err := validation.ValidateRegistration(validation.RegistrationInput{
		Name:                 req.Name,
		Email:                req.Email,
		Age:                  req.Age,
		Phone:                req.Phone,
		Password:             req.Password,
		PasswordConfirmation: req.PasswordConfirmation,
	})
	if err != nil {
		return nil, err
	}
	// extra fields are checked before the identity exists
	if err := profile.CheckExtra(req.Extra); err != nil {
		return nil, &profile.StorageError{Op: "create", Collection: profile.UsersCollection, Err: err}
	}

	res, err := s.provider.SignUp(ctx, req.Email, req.Password)
	if err != nil {
		return nil, s.providerError("register", err)
	}
	id := res.Identity

	if err := s.provider.UpdateProfile(ctx, id, identity.ProfileUpdate{DisplayName: req.Name}); err != nil {
		aerr := s.providerError("update profile", err)
		return nil, s.incomplete(id, StepUpdateProfile, aerr.Message, aerr)
	}
	id.DisplayName = req.Name

	rec := profile.Record{
		IdentityID: id.ID,
		Name:       req.Name,
		Email:      req.Email,
		Age:        req.Age,
		Phone:      req.Phone,
		CreatedAt:  s.now().UTC(),
		Extra:      req.Extra,
	}
	if _, err := s.profiles.CreateProfile(ctx, rec); err != nil {
		return nil, s.incomplete(id, StepCreateProfile, s.messages.Message(translator.KeyStorageFailure), err)
	}

	logger.Info("User registered", zap.String("identity_id", id.ID), logger.Email("email", id.Email))
	return &id, nil
}

func (s *Service) incomplete(id identity.Identity, step Step, message string, err error) error {
	logger.Error("Registration left incomplete",
		zap.String("identity_id", id.ID),
		zap.String("step", string(step)),
		zap.Error(err),
	)
	return &IncompleteRegistrationError{Identity: id, Step: step, Message: message, Err: err}
}

// Logout ends the provider session. On failure the session is left as it was.
func (s *Service) Logout(ctx context.Context) error {
	if err := s.provider.SignOut(ctx); err != nil {
		return s.providerError("logout", err)
	}
	logger.Info("User logged out")
	return nil
}

// ResetPassword asks the provider to send a password reset email.
func (s *Service) ResetPassword(ctx context.Context, email string) error {
	if err := validation.ValidatePasswordReset(email); err != nil {
		return err
	}
	if err := s.provider.SendPasswordReset(ctx, email); err != nil {
		return s.providerError("reset password", err)
	}
	return nil
}

// UpdateDisplayName changes the display name of the signed-in identity. The
// provider's own current user is read, so it works right after Login returns
// even before the session store has observed the sign-in.
func (s *Service) UpdateDisplayName(ctx context.Context, name string) error {
	current := s.provider.Current()
	if current == nil {
		return &Error{
			Code:    identity.CodeNoCurrentUser,
			Message: s.messages.Message(translator.KeyNoCurrentUser),
			Err:     identity.ErrNoSession,
		}
	}
	if err := s.provider.UpdateProfile(ctx, *current, identity.ProfileUpdate{DisplayName: name}); err != nil {
		return s.providerError("update profile", err)
	}
	return nil
}

// CurrentIdentity returns a copy of the signed-in identity, or nil.
func (s *Service) CurrentIdentity() *identity.Identity {
	return s.session.Current()
}

// SubscribeToIdentity registers fn for every future identity change.
func (s *Service) SubscribeToIdentity(fn identity.ChangeFunc) (unsubscribe func()) {
	return s.session.OnChange(fn)
}

// ListProfiles returns every stored profile record.
func (s *Service) ListProfiles(ctx context.Context) ([]profile.Record, error) {
	return s.profiles.ListProfiles(ctx)
}

// Messages returns the translator used for user-facing text.
func (s *Service) Messages() *translator.Translator {
	return s.messages
}

func (s *Service) providerError(op string, err error) *Error {
	code := identity.CodeOf(err)
	logger.Warn("Identity provider call failed",
		zap.String("op", op),
		zap.String("code", code),
		zap.Error(err),
	)
	return &Error{Code: code, Message: s.messages.TranslateError(err), Err: err}
}
