package translator

import (
	"github.com/brizzai/auth-profile/internal/config"
	"go.uber.org/fx"
)

// NewFromConfig builds a translator for the configured locale
func NewFromConfig(cfg *config.Config) (*Translator, error) {
	return New(cfg.Messages.Locale)
}

// Module provides the translator
var Module = fx.Module("translator",
	fx.Provide(NewFromConfig),
)
