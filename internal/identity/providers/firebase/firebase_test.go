package firebase

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"

	"github.com/brizzai/auth-profile/internal/identity"
	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeToolkit mimics the Identity Toolkit accounts endpoints.
type fakeToolkit struct {
	t *testing.T

	mu       sync.Mutex
	accounts map[string]string // email -> password
	names    map[string]string // email -> display name
	requests []string
	resets    []string
	refresh   int
	expiresIn string
}

func newFakeToolkit(t *testing.T) (*fakeToolkit, *httptest.Server) {
	f := &fakeToolkit{t: t, accounts: map[string]string{}, names: map[string]string{}, expiresIn: "3600"}
	server := httptest.NewServer(f)
	t.Cleanup(server.Close)
	return f, server
}

func writeError(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusBadRequest)
	_ = json.NewEncoder(w).Encode(map[string]any{"error": map[string]any{"code": 400, "message": message}})
}

func (f *fakeToolkit) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	w.Header().Set("Content-Type", "application/json")

	if r.URL.Path == "/token" {
		f.refresh++
		_ = r.ParseForm()
		assert.Equal(f.t, "refresh_token", r.PostForm.Get("grant_type"))
		_ = json.NewEncoder(w).Encode(map[string]any{
			"access_token":  "refreshed-token",
			"token_type":    "Bearer",
			"expires_in":    3600,
			"refresh_token": "refresh-2",
		})
		return
	}

	assert.Equal(f.t, "test-key", r.URL.Query().Get("key"))
	f.requests = append(f.requests, r.URL.Path)
	data, _ := io.ReadAll(r.Body)
	var body map[string]any
	_ = json.Unmarshal(data, &body)
	email, _ := body["email"].(string)
	password, _ := body["password"].(string)

	switch r.URL.Path {
	case "/accounts:signUp":
		if _, ok := f.accounts[email]; ok {
			writeError(w, "EMAIL_EXISTS")
			return
		}
		if len(password) < 6 {
			writeError(w, "WEAK_PASSWORD : Password should be at least 6 characters")
			return
		}
		f.accounts[email] = password
		f.writeAccount(w, email)
	case "/accounts:signInWithPassword":
		stored, ok := f.accounts[email]
		switch {
		case !ok:
			writeError(w, "EMAIL_NOT_FOUND")
		case stored != password:
			writeError(w, "INVALID_PASSWORD")
		default:
			f.writeAccount(w, email)
		}
	case "/accounts:update":
		token, _ := body["idToken"].(string)
		email := strings.TrimPrefix(token, "token-")
		f.names[email], _ = body["displayName"].(string)
		_ = json.NewEncoder(w).Encode(map[string]any{"localId": "uid-" + email, "email": email, "displayName": f.names[email]})
	case "/accounts:sendOobCode":
		assert.Equal(f.t, "PASSWORD_RESET", body["requestType"])
		if _, ok := f.accounts[email]; !ok {
			writeError(w, "EMAIL_NOT_FOUND")
			return
		}
		f.resets = append(f.resets, email)
		_ = json.NewEncoder(w).Encode(map[string]any{"email": email})
	default:
		http.NotFound(w, r)
	}
}

func (f *fakeToolkit) writeAccount(w http.ResponseWriter, email string) {
	_ = json.NewEncoder(w).Encode(accountResponse{
		LocalID:      "uid-" + email,
		Email:        email,
		DisplayName:  f.names[email],
		IDToken:      "token-" + email,
		RefreshToken: "refresh-1",
		ExpiresIn:    f.expiresIn,
	})
}

func (f *fakeToolkit) locked(fn func()) {
	f.mu.Lock()
	defer f.mu.Unlock()
	fn()
}

func newTestProvider(t *testing.T, opts ...Option) (*Provider, *fakeToolkit) {
	t.Helper()
	fake, server := newFakeToolkit(t)
	p := New(Config{APIKey: "test-key", BaseURL: server.URL, TokenURL: server.URL + "/token"}, opts...)
	t.Cleanup(p.Close)
	return p, fake
}

type recorder struct {
	mu  sync.Mutex
	got []*identity.Identity
}

func (r *recorder) record(id *identity.Identity) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.got = append(r.got, id)
}

func (r *recorder) all() []*identity.Identity {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]*identity.Identity(nil), r.got...)
}

func TestProvider_SignUpSignInSignOut(t *testing.T) {
	ctx := context.Background()
	p, _ := newTestProvider(t)
	rec := &recorder{}
	p.OnChange(rec.record)

	res, err := p.SignUp(ctx, "maria@example.com", "secret1")
	require.NoError(t, err)
	assert.Equal(t, "uid-maria@example.com", res.Identity.ID)
	assert.Equal(t, "token-maria@example.com", res.IDToken)

	require.NoError(t, p.SignOut(ctx))
	assert.Nil(t, p.Current())

	res, err = p.SignIn(ctx, "maria@example.com", "secret1")
	require.NoError(t, err)
	assert.Equal(t, "maria@example.com", res.Identity.Email)
	require.NotNil(t, p.Current())
	assert.Equal(t, res.Identity.ID, p.Current().ID)

	p.Wait()
	got := rec.all()
	require.Len(t, got, 3)
	assert.Equal(t, "uid-maria@example.com", got[0].ID)
	assert.Nil(t, got[1])
	assert.Equal(t, "uid-maria@example.com", got[2].ID)
}

func TestProvider_ErrorMapping(t *testing.T) {
	ctx := context.Background()
	p, _ := newTestProvider(t)
	_, err := p.SignUp(ctx, "maria@example.com", "secret1")
	require.NoError(t, err)

	tests := []struct {
		name     string
		call     func() error
		wantCode string
		wantMsg  string
	}{
		{
			name:     "duplicate email",
			call:     func() error { _, err := p.SignUp(ctx, "maria@example.com", "secret1"); return err },
			wantCode: identity.CodeEmailAlreadyInUse,
		},
		{
			name:     "weak password keeps server detail",
			call:     func() error { _, err := p.SignUp(ctx, "joao@example.com", "123"); return err },
			wantCode: identity.CodeWeakPassword,
			wantMsg:  "Password should be at least 6 characters",
		},
		{
			name:     "unknown user",
			call:     func() error { _, err := p.SignIn(ctx, "nobody@example.com", "secret1"); return err },
			wantCode: identity.CodeUserNotFound,
		},
		{
			name:     "wrong password",
			call:     func() error { _, err := p.SignIn(ctx, "maria@example.com", "nope123"); return err },
			wantCode: identity.CodeWrongPassword,
		},
		{
			name:     "reset for unknown user",
			call:     func() error { return p.SendPasswordReset(ctx, "nobody@example.com") },
			wantCode: identity.CodeUserNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.call()
			var perr *identity.Error
			require.True(t, errors.As(err, &perr), "got %v", err)
			assert.Equal(t, tt.wantCode, perr.Code)
			if tt.wantMsg != "" {
				assert.Equal(t, tt.wantMsg, perr.Message)
			}
		})
	}
}

func TestProvider_NetworkFailure(t *testing.T) {
	p := New(Config{APIKey: "k", BaseURL: "http://127.0.0.1:1"})
	defer p.Close()

	_, err := p.SignIn(context.Background(), "maria@example.com", "secret1")
	assert.Equal(t, identity.CodeNetworkRequestFail, identity.CodeOf(err))
}

func TestProvider_UpdateProfile(t *testing.T) {
	ctx := context.Background()
	p, fake := newTestProvider(t)
	rec := &recorder{}

	err := p.UpdateProfile(ctx, identity.Identity{ID: "uid-x"}, identity.ProfileUpdate{DisplayName: "X"})
	assert.Equal(t, identity.CodeNoCurrentUser, identity.CodeOf(err))
	assert.True(t, errors.Is(err, identity.ErrNoSession))

	res, err := p.SignUp(ctx, "maria@example.com", "secret1")
	require.NoError(t, err)
	p.Wait()
	p.OnChange(rec.record)

	require.NoError(t, p.UpdateProfile(ctx, res.Identity, identity.ProfileUpdate{DisplayName: "Maria"}))
	p.Wait()

	got := rec.all()
	require.Len(t, got, 1)
	assert.Equal(t, "Maria", got[0].DisplayName)
	fake.locked(func() { assert.Equal(t, "Maria", fake.names["maria@example.com"]) })
}

func TestProvider_SendPasswordReset(t *testing.T) {
	ctx := context.Background()
	p, fake := newTestProvider(t)
	_, err := p.SignUp(ctx, "maria@example.com", "secret1")
	require.NoError(t, err)

	require.NoError(t, p.SendPasswordReset(ctx, "maria@example.com"))
	fake.locked(func() { assert.Equal(t, []string{"maria@example.com"}, fake.resets) })
}

func TestProvider_TokenSource(t *testing.T) {
	ctx := context.Background()
	p, fake := newTestProvider(t)
	src := p.TokenSource()

	_, err := src.Token()
	assert.True(t, errors.Is(err, identity.ErrNoSession))

	// one second is inside the oauth2 expiry delta, so the first use refreshes
	fake.mu.Lock()
	fake.expiresIn = "1"
	fake.mu.Unlock()
	_, err = p.SignUp(ctx, "maria@example.com", "secret1")
	require.NoError(t, err)

	tok, err := src.Token()
	require.NoError(t, err)
	assert.Equal(t, "refreshed-token", tok.AccessToken)
	fake.locked(func() { assert.Equal(t, 1, fake.refresh) })

	require.NoError(t, p.SignOut(ctx))
	_, err = src.Token()
	assert.True(t, errors.Is(err, identity.ErrNoSession))
}

func TestProvider_TokenSourceReusesValidToken(t *testing.T) {
	ctx := context.Background()
	p, fake := newTestProvider(t)
	_, err := p.SignUp(ctx, "maria@example.com", "secret1")
	require.NoError(t, err)

	tok, err := p.TokenSource().Token()
	require.NoError(t, err)
	assert.Equal(t, "token-maria@example.com", tok.AccessToken)
	fake.locked(func() { assert.Equal(t, 0, fake.refresh) })
}

type fakeVerifier struct {
	subject string
	err     error
}

func (v fakeVerifier) Verify(context.Context, string) (*oidc.IDToken, error) {
	if v.err != nil {
		return nil, v.err
	}
	return &oidc.IDToken{Subject: v.subject}, nil
}

func TestProvider_IDTokenVerification(t *testing.T) {
	ctx := context.Background()

	t.Run("accepts matching subject", func(t *testing.T) {
		p, _ := newTestProvider(t, WithVerifier(fakeVerifier{subject: "uid-maria@example.com"}))
		_, err := p.SignUp(ctx, "maria@example.com", "secret1")
		require.NoError(t, err)
	})

	t.Run("rejects bad signature without starting a session", func(t *testing.T) {
		p, _ := newTestProvider(t, WithVerifier(fakeVerifier{err: errors.New("bad signature")}))
		rec := &recorder{}
		p.OnChange(rec.record)

		_, err := p.SignUp(ctx, "maria@example.com", "secret1")
		assert.Equal(t, identity.CodeInvalidCredential, identity.CodeOf(err))
		p.Wait()
		assert.Empty(t, rec.all())
	})

	t.Run("rejects foreign subject", func(t *testing.T) {
		p, _ := newTestProvider(t, WithVerifier(fakeVerifier{subject: "someone-else"}))
		_, err := p.SignUp(ctx, "maria@example.com", "secret1")
		assert.Equal(t, identity.CodeInvalidCredential, identity.CodeOf(err))
	})
}

func TestToProviderError(t *testing.T) {
	err := toProviderError(&url.Error{Op: "Post", URL: "x", Err: errors.New("refused")})
	assert.Equal(t, identity.CodeNetworkRequestFail, identity.CodeOf(err))
}
