package requester

import (
	"errors"
	"fmt"
	"net/http"

	"golang.org/x/oauth2"
)

// ErrNoToken is returned when a bearer token source has nothing to offer yet.
var ErrNoToken = errors.New("no access token available")

// AuthManager handles request authentication
type AuthManager interface {
	ApplyAuth(req *http.Request) error
}

// NoAuth leaves requests untouched
type NoAuth struct{}

func (NoAuth) ApplyAuth(*http.Request) error { return nil }

// APIKeyAuth sends the key as a query parameter, or as a header when Header is set
type APIKeyAuth struct {
	Key    string
	Param  string
	Header string
}

// ApplyAuth adds the API key to the request
func (a APIKeyAuth) ApplyAuth(req *http.Request) error {
	if a.Key == "" {
		return fmt.Errorf("api key is empty")
	}
	if a.Header != "" {
		req.Header.Set(a.Header, a.Key)
		return nil
	}
	param := a.Param
	if param == "" {
		param = "key"
	}
	q := req.URL.Query()
	q.Set(param, a.Key)
	req.URL.RawQuery = q.Encode()
	return nil
}

// TokenSourceAuth sets an Authorization header from an oauth2 token source
type TokenSourceAuth struct {
	Source oauth2.TokenSource
}

// ApplyAuth fetches a token and sets the Authorization header
func (a TokenSourceAuth) ApplyAuth(req *http.Request) error {
	if a.Source == nil {
		return ErrNoToken
	}
	tok, err := a.Source.Token()
	if err != nil {
		return fmt.Errorf("failed to get access token: %w", err)
	}
	if tok == nil || tok.AccessToken == "" {
		return ErrNoToken
	}
	tok.SetAuthHeader(req)
	return nil
}
