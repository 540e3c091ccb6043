// Package session caches the current identity and broadcasts its changes.
//
// The Store is the single source of truth for "who is signed in". Its only
// writer is one subscription on the provider's change channel; auth operations
// never write to it directly.
package session

import (
	"sync"

	"github.com/brizzai/auth-profile/internal/identity"
	"github.com/brizzai/auth-profile/internal/logger"
	"github.com/brizzai/auth-profile/internal/notify"
	"go.uber.org/zap"
)

// State is the session state machine position.
type State int

const (
	Anonymous State = iota
	Authenticated
)

func (s State) String() string {
	if s == Authenticated {
		return "authenticated"
	}
	return "anonymous"
}

// Store holds the last identity pushed by the provider.
type Store struct {
	source identity.ChangeSource
	hub    *notify.Hub[*identity.Identity]

	mu      sync.RWMutex
	current *identity.Identity
	stop    func()
}

// NewStore creates an empty store. Call Start to begin observing source.
func NewStore(source identity.ChangeSource) *Store {
	return &Store{
		source: source,
		hub:    notify.NewHub[*identity.Identity]("session"),
	}
}

// Start registers the store's subscription on the provider. Calling it again
// while started is a no-op.
func (s *Store) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stop != nil {
		return
	}
	s.stop = s.source.OnChange(s.apply)
	logger.Debug("Session store observing identity provider")
}

// Stop releases the provider subscription. Subscribers stay registered and
// receive nothing until Start is called again.
func (s *Store) Stop() {
	s.mu.Lock()
	stop := s.stop
	s.stop = nil
	s.mu.Unlock()
	if stop != nil {
		stop()
	}
}

// Close stops the store and drops every subscriber.
func (s *Store) Close() {
	s.Stop()
	s.hub.Close()
}

// apply is the only place current is written.
func (s *Store) apply(id *identity.Identity) {
	next := id.Clone()

	s.mu.Lock()
	prev := s.current
	s.current = next
	s.mu.Unlock()

	switch {
	case next == nil && prev != nil:
		logger.Info("Session ended", zap.String("identity_id", prev.ID))
	case next != nil && (prev == nil || prev.ID != next.ID):
		logger.Info("Session started",
			zap.String("identity_id", next.ID),
			logger.Email("email", next.Email),
		)
	case next != nil:
		logger.Debug("Session identity refreshed", zap.String("identity_id", next.ID))
	}

	s.hub.Publish(next)
}

// Current returns a copy of the current identity, or nil when nobody is signed in.
func (s *Store) Current() *identity.Identity {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current.Clone()
}

// State reports whether an identity is present.
func (s *Store) State() State {
	if s.Current() != nil {
		return Authenticated
	}
	return Anonymous
}

// OnChange registers fn for every future transition. Each subscriber gets its
// own copy of the identity. Callbacks run one at a time in provider order and
// must not call the provider themselves. The returned function is idempotent.
func (s *Store) OnChange(fn identity.ChangeFunc) (unsubscribe func()) {
	return s.hub.Subscribe(func(id *identity.Identity) {
		fn(id.Clone())
	})
}

// Wait blocks until every pending notification has been delivered.
func (s *Store) Wait() {
	s.hub.Wait()
}
