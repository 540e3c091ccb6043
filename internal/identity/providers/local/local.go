// Package local is an in-process identity provider backed by bcrypt password
// hashes. Accounts live in memory, or in a YAML file when opened with Open.
// Sessions are never persisted.
package local

import (
	"context"
	"strings"
	"sync"

	"github.com/brizzai/auth-profile/internal/identity"
	"github.com/brizzai/auth-profile/internal/logger"
	"github.com/brizzai/auth-profile/internal/notify"
	"github.com/brizzai/auth-profile/internal/validation"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// MaxFailedAttempts is how many wrong passwords an account tolerates before
// sign-in is refused with too-many-requests until the next success or reset.
const MaxFailedAttempts = 5

type account struct {
	id          string
	email       string
	displayName string
	hash        []byte
	failures    int
	disabled    bool
}

type Option func(*Provider)

// WithCost sets the bcrypt cost. Tests use bcrypt.MinCost.
func WithCost(cost int) Option {
	return func(p *Provider) { p.cost = cost }
}

type Provider struct {
	cost int
	path string
	hub  *notify.Hub[*identity.Identity]

	mu       sync.Mutex
	accounts map[string]*account // by normalized email
	current  *identity.Identity
	outbox   []string
}

var _ identity.Provider = (*Provider)(nil)

func New(opts ...Option) *Provider {
	p := &Provider{
		cost:     bcrypt.DefaultCost,
		hub:      notify.NewHub[*identity.Identity]("local"),
		accounts: map[string]*account{},
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (p *Provider) OnChange(fn identity.ChangeFunc) func() {
	return p.hub.Subscribe(fn)
}

// Wait blocks until pending change notifications are delivered.
func (p *Provider) Wait() {
	p.hub.Wait()
}

// Current returns a copy of the signed-in identity, or nil.
func (p *Provider) Current() *identity.Identity {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.current.Clone()
}

// setCurrent must be called with p.mu held so notifications keep state order.
func (p *Provider) setCurrent(id *identity.Identity) {
	p.current = id
	p.hub.Publish(id.Clone())
}

func (p *Provider) SignUp(_ context.Context, email, password string) (*identity.Result, error) {
	key := normalizeEmail(email)
	if !validation.ValidEmail(key) {
		return nil, identity.NewError(identity.CodeInvalidEmail, "the email address is badly formatted")
	}
	if !validation.PasswordLongEnough(password) {
		return nil, identity.NewError(identity.CodeWeakPassword, "password should be at least 6 characters")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), p.cost)
	if err != nil {
		return nil, &identity.Error{Code: identity.CodeInternal, Message: "failed to hash password", Err: err}
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if _, exists := p.accounts[key]; exists {
		return nil, identity.NewError(identity.CodeEmailAlreadyInUse, "the email address is already in use by another account")
	}
	acc := &account{id: uuid.NewString(), email: key, hash: hash}
	p.accounts[key] = acc
	if err := p.save(); err != nil {
		delete(p.accounts, key)
		return nil, &identity.Error{Code: identity.CodeInternal, Message: "failed to store account", Err: err}
	}
	logger.Info("Local account created", zap.String("identity_id", acc.id), logger.Email("email", key))

	id := acc.identity()
	p.setCurrent(id)
	return &identity.Result{Identity: *id}, nil
}

func (p *Provider) SignIn(_ context.Context, email, password string) (*identity.Result, error) {
	key := normalizeEmail(email)

	p.mu.Lock()
	defer p.mu.Unlock()
	acc, ok := p.accounts[key]
	switch {
	case !ok:
		return nil, identity.NewError(identity.CodeUserNotFound, "there is no user record corresponding to this identifier")
	case acc.disabled:
		return nil, identity.NewError(identity.CodeUserDisabled, "the user account has been disabled")
	case acc.failures >= MaxFailedAttempts:
		return nil, identity.NewError(identity.CodeTooManyRequests, "access to this account has been temporarily disabled due to many failed login attempts")
	}

	if err := bcrypt.CompareHashAndPassword(acc.hash, []byte(password)); err != nil {
		acc.failures++
		logger.Debug("Local sign-in rejected", zap.String("identity_id", acc.id), zap.Int("failures", acc.failures))
		return nil, identity.NewError(identity.CodeWrongPassword, "the password is invalid")
	}
	acc.failures = 0

	id := acc.identity()
	p.setCurrent(id)
	return &identity.Result{Identity: *id}, nil
}

func (p *Provider) SignOut(context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.setCurrent(nil)
	return nil
}

func (p *Provider) UpdateProfile(_ context.Context, id identity.Identity, update identity.ProfileUpdate) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.current == nil || p.current.ID != id.ID {
		return &identity.Error{Code: identity.CodeNoCurrentUser, Message: "no signed-in user for this identity", Err: identity.ErrNoSession}
	}
	acc := p.accounts[p.current.Email]
	acc.displayName = update.DisplayName
	if err := p.save(); err != nil {
		return &identity.Error{Code: identity.CodeInternal, Message: "failed to store account", Err: err}
	}
	p.setCurrent(acc.identity())
	return nil
}

// SendPasswordReset records the request in the outbox and clears the
// failed-attempt lock. No mail is sent.
func (p *Provider) SendPasswordReset(_ context.Context, email string) error {
	key := normalizeEmail(email)

	p.mu.Lock()
	defer p.mu.Unlock()
	acc, ok := p.accounts[key]
	if !ok {
		return identity.NewError(identity.CodeUserNotFound, "there is no user record corresponding to this identifier")
	}
	acc.failures = 0
	p.outbox = append(p.outbox, key)
	logger.Info("Password reset requested", logger.Email("email", key))
	return nil
}

// Outbox lists the addresses password resets were requested for.
func (p *Provider) Outbox() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.outbox...)
}

// Disable blocks further sign-ins for email.
func (p *Provider) Disable(email string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	acc, ok := p.accounts[normalizeEmail(email)]
	if ok {
		acc.disabled = true
		if err := p.save(); err != nil {
			logger.Error("Failed to persist disabled account", zap.Error(err))
		}
	}
	return ok
}

func (p *Provider) Close() {
	p.hub.Close()
}

func (a *account) identity() *identity.Identity {
	return &identity.Identity{ID: a.id, Email: a.email, DisplayName: a.displayName}
}
