package firebase

import (
	"encoding/json"
	"errors"
	"strings"

	"github.com/brizzai/auth-profile/internal/identity"
	"github.com/brizzai/auth-profile/internal/requester"
)

type credentialsRequest struct {
	Email             string `json:"email"`
	Password          string `json:"password"`
	ReturnSecureToken bool   `json:"returnSecureToken"`
}

type updateRequest struct {
	IDToken           string `json:"idToken"`
	DisplayName       string `json:"displayName"`
	ReturnSecureToken bool   `json:"returnSecureToken"`
}

type oobRequest struct {
	RequestType string `json:"requestType"`
	Email       string `json:"email"`
}

type accountResponse struct {
	LocalID      string `json:"localId"`
	Email        string `json:"email"`
	DisplayName  string `json:"displayName"`
	IDToken      string `json:"idToken"`
	RefreshToken string `json:"refreshToken"`
	ExpiresIn    string `json:"expiresIn"`
}

type errorResponse struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// serverCodes maps Identity Toolkit error messages to provider codes.
var serverCodes = map[string]string{
	"EMAIL_EXISTS":                identity.CodeEmailAlreadyInUse,
	"WEAK_PASSWORD":               identity.CodeWeakPassword,
	"INVALID_EMAIL":               identity.CodeInvalidEmail,
	"MISSING_EMAIL":               identity.CodeInvalidEmail,
	"EMAIL_NOT_FOUND":             identity.CodeUserNotFound,
	"USER_NOT_FOUND":              identity.CodeUserNotFound,
	"INVALID_PASSWORD":            identity.CodeWrongPassword,
	"TOO_MANY_ATTEMPTS_TRY_LATER": identity.CodeTooManyRequests,
	"INVALID_LOGIN_CREDENTIALS":   identity.CodeInvalidCredential,
	"INVALID_ID_TOKEN":            identity.CodeInvalidCredential,
	"USER_DISABLED":               identity.CodeUserDisabled,
}

// toProviderError converts a transport or server failure into *identity.Error.
// Server messages look like "WEAK_PASSWORD : Password should be at least 6 characters".
func toProviderError(err error) error {
	var statusErr *requester.StatusError
	if !errors.As(err, &statusErr) {
		return &identity.Error{Code: identity.CodeNetworkRequestFail, Message: err.Error(), Err: err}
	}

	var body errorResponse
	if jsonErr := json.Unmarshal(statusErr.Body, &body); jsonErr != nil || body.Error.Message == "" {
		return &identity.Error{Code: identity.CodeInternal, Message: statusErr.Error(), Err: err}
	}

	server, detail, _ := strings.Cut(body.Error.Message, " : ")
	server = strings.TrimSpace(server)
	if detail == "" {
		detail = server
	}
	code, ok := serverCodes[server]
	if !ok {
		code = strings.ToLower(strings.ReplaceAll(server, "_", "-"))
	}
	return &identity.Error{Code: code, Message: detail, Err: err}
}
