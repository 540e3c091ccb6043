package providers

import (
	"context"

	"github.com/brizzai/auth-profile/internal/config"
	"github.com/brizzai/auth-profile/internal/identity"
	"github.com/brizzai/auth-profile/internal/logger"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type closer interface {
	Close()
}

func newFromConfig(lc fx.Lifecycle, cfg *config.Config) (identity.Provider, error) {
	p, err := New(cfg.Provider)
	if err != nil {
		return nil, err
	}
	logger.Info("Identity provider ready", zap.String("kind", string(cfg.Provider.Kind)))
	if c, ok := p.(closer); ok {
		lc.Append(fx.StopHook(func(context.Context) { c.Close() }))
	}
	return p, nil
}

func changeSource(p identity.Provider) identity.ChangeSource {
	return p
}

// Module provides the configured identity provider and its change channel
var Module = fx.Module("identity_provider",
	fx.Provide(
		newFromConfig,
		changeSource,
	),
)
