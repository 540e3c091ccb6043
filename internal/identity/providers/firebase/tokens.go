package firebase

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/brizzai/auth-profile/internal/identity"
	"github.com/coreos/go-oidc/v3/oidc"
	"golang.org/x/oauth2"
)

const (
	DefaultTokenURL = "https://securetoken.googleapis.com/v1/token"
	jwksURL         = "https://www.googleapis.com/service_accounts/v1/jwk/securetoken@system.gserviceaccount.com"
	issuerPrefix    = "https://securetoken.google.com/"
)

// IDTokenVerifier checks a raw ID token. *oidc.IDTokenVerifier satisfies it.
type IDTokenVerifier interface {
	Verify(ctx context.Context, rawIDToken string) (*oidc.IDToken, error)
}

func newVerifier(projectID string) *oidc.IDTokenVerifier {
	keySet := oidc.NewRemoteKeySet(context.Background(), jwksURL)
	return oidc.NewVerifier(issuerPrefix+projectID, keySet, &oidc.Config{ClientID: projectID})
}

// verify checks the token signature and that it belongs to localID.
func (p *Provider) verify(ctx context.Context, rawIDToken, localID string) error {
	if p.verifier == nil {
		return nil
	}
	tok, err := p.verifier.Verify(ctx, rawIDToken)
	if err != nil {
		return &identity.Error{Code: identity.CodeInvalidCredential, Message: "id token verification failed", Err: err}
	}
	if tok.Subject != localID {
		return &identity.Error{
			Code:    identity.CodeInvalidCredential,
			Message: fmt.Sprintf("id token subject %q does not match account", tok.Subject),
		}
	}
	return nil
}

func (p *Provider) oauthConfig() *oauth2.Config {
	return &oauth2.Config{
		Endpoint: oauth2.Endpoint{
			TokenURL:  p.tokenURL + "?key=" + p.apiKey,
			AuthStyle: oauth2.AuthStyleInParams,
		},
	}
}

// newSessionTokens builds a refreshing token source from a sign-in response.
// The secure token endpoint returns the new ID token as access_token.
func (p *Provider) newSessionTokens(resp accountResponse) oauth2.TokenSource {
	tok := &oauth2.Token{
		AccessToken:  resp.IDToken,
		TokenType:    "Bearer",
		RefreshToken: resp.RefreshToken,
	}
	if secs, err := strconv.Atoi(resp.ExpiresIn); err == nil && secs > 0 {
		tok.Expiry = time.Now().Add(time.Duration(secs) * time.Second)
	}
	ctx := context.WithValue(context.Background(), oauth2.HTTPClient, p.httpClient)
	return oauth2.ReuseTokenSource(tok, p.oauthConfig().TokenSource(ctx, tok))
}

// sessionTokenSource follows the provider's current session.
type sessionTokenSource struct {
	p *Provider
}

func (s sessionTokenSource) Token() (*oauth2.Token, error) {
	s.p.mu.RLock()
	src := s.p.tokens
	s.p.mu.RUnlock()
	if src == nil {
		return nil, identity.ErrNoSession
	}
	return src.Token()
}

// TokenSource yields the signed-in user's ID token as a bearer token,
// refreshing it through the secure token endpoint when it expires.
func (p *Provider) TokenSource() oauth2.TokenSource {
	return sessionTokenSource{p: p}
}
