// Package memory is an in-process DocumentStore for tests and offline use.
package memory

import (
	"context"
	"errors"
	"sync"

	"github.com/brizzai/auth-profile/internal/store"
	"github.com/google/uuid"
)

// ErrClosed is returned after Close.
var ErrClosed = errors.New("memory store is closed")

type entry struct {
	id     string
	fields store.Fields
}

// Store keeps documents per collection in insertion order.
type Store struct {
	mu          sync.RWMutex
	collections map[string][]entry
	closed      bool
}

func New() *Store {
	return &Store{collections: map[string][]entry{}}
}

func (s *Store) Create(_ context.Context, collection string, fields store.Fields) (string, error) {
	norm, err := store.Normalize(fields)
	if err != nil {
		return "", err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return "", ErrClosed
	}
	id := uuid.NewString()
	s.collections[collection] = append(s.collections[collection], entry{id: id, fields: norm})
	return id, nil
}

func (s *Store) List(_ context.Context, collection string) ([]store.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, ErrClosed
	}
	entries := s.collections[collection]
	docs := make([]store.Document, 0, len(entries))
	for _, e := range entries {
		docs = append(docs, store.Document{ID: e.id, Fields: e.fields.Clone()})
	}
	return docs, nil
}

func (s *Store) Close(context.Context) error {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
	return nil
}
