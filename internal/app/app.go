// Package app composes the identity provider, session, profile storage and
// auth operations into one fx application.
package app

import (
	"context"
	"fmt"

	"github.com/brizzai/auth-profile/internal/auth"
	"github.com/brizzai/auth-profile/internal/config"
	"github.com/brizzai/auth-profile/internal/identity/providers"
	"github.com/brizzai/auth-profile/internal/logger"
	"github.com/brizzai/auth-profile/internal/profile"
	"github.com/brizzai/auth-profile/internal/session"
	"github.com/brizzai/auth-profile/internal/translator"
	"go.uber.org/fx"
)

// Options returns every module of the application for cfg.
func Options(cfg *config.Config) fx.Option {
	return fx.Options(
		fx.WithLogger(logger.FxEventLogger),
		fx.Supply(cfg),
		translator.Module,
		providers.Module,
		fx.Module("store", fx.Provide(provideDocumentStore)),
		session.Module,
		profile.Module,
		auth.Module,
	)
}

// App is a started-or-startable application exposing the auth service.
type App struct {
	fx   *fx.App
	Auth *auth.Service
}

// New builds the dependency graph. Nothing runs until Start.
func New(cfg *config.Config, opts ...fx.Option) (*App, error) {
	a := &App{}
	all := append([]fx.Option{Options(cfg), fx.Populate(&a.Auth)}, opts...)
	a.fx = fx.New(all...)
	if err := a.fx.Err(); err != nil {
		return nil, fmt.Errorf("failed to build application: %w", err)
	}
	return a, nil
}

// Start runs the lifecycle start hooks.
func (a *App) Start(ctx context.Context) error {
	return a.fx.Start(ctx)
}

// Stop runs the lifecycle stop hooks in reverse order.
func (a *App) Stop(ctx context.Context) error {
	return a.fx.Stop(ctx)
}
