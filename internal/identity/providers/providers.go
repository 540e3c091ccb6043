// Package providers selects the identity provider named by configuration.
package providers

import (
	"errors"
	"fmt"

	"github.com/brizzai/auth-profile/internal/config"
	"github.com/brizzai/auth-profile/internal/identity"
	"github.com/brizzai/auth-profile/internal/identity/providers/firebase"
	"github.com/brizzai/auth-profile/internal/identity/providers/local"
)

var ErrUnsupportedProvider = errors.New("unsupported identity provider")

// New builds the provider for cfg.Kind.
func New(cfg config.ProviderConfig) (identity.Provider, error) {
	switch cfg.Kind {
	case config.ProviderKindFirebase:
		return firebase.New(firebase.Config{
			APIKey:         cfg.APIKey,
			BaseURL:        cfg.BaseURL,
			ProjectID:      cfg.ProjectID,
			VerifyIDTokens: cfg.VerifyIDTokens,
			Timeout:        cfg.Timeout,
		}), nil
	case config.ProviderKindLocal, "":
		if cfg.AccountsFile != "" {
			p, err := local.Open(cfg.AccountsFile)
			if err != nil {
				return nil, err
			}
			return p, nil
		}
		return local.New(), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedProvider, cfg.Kind)
	}
}
