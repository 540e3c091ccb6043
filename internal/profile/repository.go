// Package profile persists and reads back the profile records kept next to
// each identity.
package profile

import (
	"context"

	"github.com/brizzai/auth-profile/internal/logger"
	"github.com/brizzai/auth-profile/internal/store"
	"go.uber.org/zap"
)

// Repository is a thin, error-typing layer over a document store.
type Repository struct {
	store store.DocumentStore
}

func NewRepository(s store.DocumentStore) *Repository {
	return &Repository{store: s}
}

// Create writes fields to collection and returns the new document ID.
// Every failure is a *StorageError.
func (r *Repository) Create(ctx context.Context, collection string, fields store.Fields) (string, error) {
	if collection == "" {
		return "", &StorageError{Op: "create", Collection: collection, Err: ErrEmptyCollection}
	}
	norm, err := store.Normalize(fields)
	if err != nil {
		return "", &StorageError{Op: "create", Collection: collection, Err: err}
	}

	id, err := r.store.Create(ctx, collection, norm)
	if err != nil {
		logger.Error("Failed to create document", zap.String("collection", collection), zap.Error(err))
		return "", &StorageError{Op: "create", Collection: collection, Err: err}
	}
	logger.Debug("Document created", zap.String("collection", collection), zap.String("document_id", id))
	return id, nil
}

// List returns every document in collection in store order.
func (r *Repository) List(ctx context.Context, collection string) ([]store.Document, error) {
	if collection == "" {
		return nil, &StorageError{Op: "list", Collection: collection, Err: ErrEmptyCollection}
	}
	docs, err := r.store.List(ctx, collection)
	if err != nil {
		logger.Error("Failed to list documents", zap.String("collection", collection), zap.Error(err))
		return nil, &StorageError{Op: "list", Collection: collection, Err: err}
	}
	return docs, nil
}

// CreateProfile stores rec in the users collection.
func (r *Repository) CreateProfile(ctx context.Context, rec Record) (string, error) {
	if err := CheckExtra(rec.Extra); err != nil {
		return "", &StorageError{Op: "create", Collection: UsersCollection, Err: err}
	}
	return r.Create(ctx, UsersCollection, rec.Fields())
}

// ListProfiles returns every record in the users collection.
func (r *Repository) ListProfiles(ctx context.Context) ([]Record, error) {
	docs, err := r.List(ctx, UsersCollection)
	if err != nil {
		return nil, err
	}
	out := make([]Record, 0, len(docs))
	for _, d := range docs {
		out = append(out, RecordFromDocument(d))
	}
	return out, nil
}
