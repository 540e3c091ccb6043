package app

import (
	"context"
	"fmt"

	"github.com/brizzai/auth-profile/internal/config"
	"github.com/brizzai/auth-profile/internal/identity"
	"github.com/brizzai/auth-profile/internal/logger"
	"github.com/brizzai/auth-profile/internal/requester"
	"github.com/brizzai/auth-profile/internal/store"
	"github.com/brizzai/auth-profile/internal/store/firestore"
	"github.com/brizzai/auth-profile/internal/store/memory"
	"github.com/brizzai/auth-profile/internal/store/mongostore"
	"github.com/brizzai/auth-profile/internal/store/sqlitestore"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
)

// tokenSourcer is implemented by providers that can authorize store requests
// as the signed-in user.
type tokenSourcer interface {
	TokenSource() oauth2.TokenSource
}

// NewDocumentStore opens the backend selected by cfg.Driver.
func NewDocumentStore(ctx context.Context, cfg config.StoreConfig, provider identity.Provider) (store.DocumentStore, error) {
	switch cfg.Driver {
	case config.StoreDriverMemory, "":
		return memory.New(), nil
	case config.StoreDriverSQLite:
		s, err := sqlitestore.Open(cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		return s, nil
	case config.StoreDriverMongo:
		s, err := mongostore.Connect(ctx, mongostore.Config{
			ConnectionURL:   cfg.Mongo.URL,
			Database:        cfg.Mongo.Database,
			ConnectTimeout:  cfg.Mongo.ConnectTimeout,
			MaxPoolSize:     cfg.Mongo.MaxPoolSize,
			MinPoolSize:     cfg.Mongo.MinPoolSize,
			MaxConnIdleTime: cfg.Mongo.MaxConnIdleTime,
			RetryAttempts:   cfg.Mongo.RetryAttempts,
			RetryInterval:   cfg.Mongo.RetryInterval,
		})
		if err != nil {
			return nil, err
		}
		return s, nil
	case config.StoreDriverFirestore:
		ts, ok := provider.(tokenSourcer)
		if !ok {
			return nil, fmt.Errorf("firestore driver needs an identity provider that issues ID tokens")
		}
		s, err := firestore.New(firestore.Config{
			BaseURL:   cfg.Firestore.BaseURL,
			ProjectID: cfg.Firestore.ProjectID,
			Database:  cfg.Firestore.Database,
			PageSize:  cfg.Firestore.PageSize,
		}, requester.TokenSourceAuth{Source: ts.TokenSource()}, requester.WithTimeout(cfg.Firestore.Timeout))
		if err != nil {
			return nil, err
		}
		return s, nil
	default:
		return nil, fmt.Errorf("%w: %q", store.ErrUnsupportedDriver, cfg.Driver)
	}
}

func provideDocumentStore(lc fx.Lifecycle, cfg *config.Config, provider identity.Provider) (store.DocumentStore, error) {
	s, err := NewDocumentStore(context.Background(), cfg.Store, provider)
	if err != nil {
		return nil, fmt.Errorf("open document store: %w", err)
	}
	logger.Info("Document store ready", zap.String("driver", string(cfg.Store.Driver)))
	lc.Append(fx.StopHook(s.Close))
	return s, nil
}
