// Package firebase is an identity provider speaking the Identity Toolkit REST API.
package firebase

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/brizzai/auth-profile/internal/identity"
	"github.com/brizzai/auth-profile/internal/logger"
	"github.com/brizzai/auth-profile/internal/notify"
	"github.com/brizzai/auth-profile/internal/requester"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
)

const DefaultBaseURL = "https://identitytoolkit.googleapis.com/v1"

type Config struct {
	APIKey         string
	BaseURL        string
	TokenURL       string
	ProjectID      string
	VerifyIDTokens bool
	Timeout        time.Duration
}

type Option func(*Provider)

// WithVerifier replaces the ID token verifier, enabling verification.
func WithVerifier(v IDTokenVerifier) Option {
	return func(p *Provider) { p.verifier = v }
}

func WithHTTPClient(c *http.Client) Option {
	return func(p *Provider) { p.httpClient = c }
}

// Provider keeps the session in memory only.
type Provider struct {
	apiKey     string
	tokenURL   string
	httpClient *http.Client
	req        *requester.HTTPRequester
	verifier   IDTokenVerifier
	hub        *notify.Hub[*identity.Identity]

	mu      sync.RWMutex
	current *identity.Identity
	idToken string
	tokens  oauth2.TokenSource
}

var _ identity.Provider = (*Provider)(nil)

func New(cfg Config, opts ...Option) *Provider {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.TokenURL == "" {
		cfg.TokenURL = DefaultTokenURL
	}
	p := &Provider{
		apiKey:     cfg.APIKey,
		tokenURL:   cfg.TokenURL,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		hub:        notify.NewHub[*identity.Identity]("firebase"),
	}
	if cfg.VerifyIDTokens {
		p.verifier = newVerifier(cfg.ProjectID)
	}
	for _, opt := range opts {
		opt(p)
	}
	p.req = requester.NewHTTPRequester(cfg.BaseURL, requester.APIKeyAuth{Key: cfg.APIKey},
		requester.WithHTTPClient(p.httpClient))
	return p
}

func (p *Provider) OnChange(fn identity.ChangeFunc) func() {
	return p.hub.Subscribe(fn)
}

// Wait blocks until pending change notifications are delivered.
func (p *Provider) Wait() {
	p.hub.Wait()
}

func (p *Provider) SignIn(ctx context.Context, email, password string) (*identity.Result, error) {
	return p.exchange(ctx, "/accounts:signInWithPassword", email, password)
}

func (p *Provider) SignUp(ctx context.Context, email, password string) (*identity.Result, error) {
	return p.exchange(ctx, "/accounts:signUp", email, password)
}

func (p *Provider) exchange(ctx context.Context, path, email, password string) (*identity.Result, error) {
	var resp accountResponse
	body := credentialsRequest{Email: email, Password: password, ReturnSecureToken: true}
	if _, err := p.req.Do(ctx, http.MethodPost, path, nil, body, &resp); err != nil {
		perr := toProviderError(err)
		logger.Debug("Identity provider rejected request",
			zap.String("path", path),
			logger.Email("email", email),
			zap.String("code", identity.CodeOf(perr)),
		)
		return nil, perr
	}
	if err := p.verify(ctx, resp.IDToken, resp.LocalID); err != nil {
		return nil, err
	}

	id := &identity.Identity{ID: resp.LocalID, Email: resp.Email, DisplayName: resp.DisplayName}
	tokens := p.newSessionTokens(resp)

	p.mu.Lock()
	p.current = id
	p.idToken = resp.IDToken
	p.tokens = tokens
	p.hub.Publish(id.Clone())
	p.mu.Unlock()

	return &identity.Result{Identity: *id, IDToken: resp.IDToken, RefreshToken: resp.RefreshToken}, nil
}

// Current returns a copy of the signed-in identity, or nil.
func (p *Provider) Current() *identity.Identity {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.current.Clone()
}

// SignOut drops the in-memory session. The REST API has no server-side sign-out.
func (p *Provider) SignOut(context.Context) error {
	p.mu.Lock()
	p.current = nil
	p.idToken = ""
	p.tokens = nil
	p.hub.Publish(nil)
	p.mu.Unlock()
	return nil
}

func (p *Provider) UpdateProfile(ctx context.Context, id identity.Identity, update identity.ProfileUpdate) error {
	p.mu.RLock()
	current := p.current.Clone()
	idToken := p.idToken
	src := p.tokens
	p.mu.RUnlock()

	if current == nil || current.ID != id.ID {
		return &identity.Error{Code: identity.CodeNoCurrentUser, Message: "no signed-in user for this identity", Err: identity.ErrNoSession}
	}
	if src != nil {
		if tok, err := src.Token(); err == nil {
			idToken = tok.AccessToken
		}
	}

	var resp accountResponse
	body := updateRequest{IDToken: idToken, DisplayName: update.DisplayName, ReturnSecureToken: false}
	if _, err := p.req.Do(ctx, http.MethodPost, "/accounts:update", nil, body, &resp); err != nil {
		return toProviderError(err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.current == nil || p.current.ID != id.ID {
		// signed out while the update was in flight
		return nil
	}
	p.current.DisplayName = update.DisplayName
	if resp.Email != "" {
		p.current.Email = resp.Email
	}
	p.hub.Publish(p.current.Clone())
	return nil
}

func (p *Provider) SendPasswordReset(ctx context.Context, email string) error {
	body := oobRequest{RequestType: "PASSWORD_RESET", Email: email}
	if _, err := p.req.Do(ctx, http.MethodPost, "/accounts:sendOobCode", nil, body, nil); err != nil {
		return toProviderError(err)
	}
	return nil
}

// Close stops change delivery.
func (p *Provider) Close() {
	p.hub.Close()
}
