// Package notify provides an in-process publish/subscribe hub with ordered,
// serialized delivery.
//
// Published values are queued and delivered by a single dispatcher goroutine:
// every subscriber sees every value in publish order, and no two callbacks run
// at the same time. Publish never blocks on subscribers.
package notify

import (
	"sync"
	"sync/atomic"

	"github.com/brizzai/auth-profile/internal/logger"
	"go.uber.org/zap"
)

type subscription[T any] struct {
	fn     func(T)
	active atomic.Bool
	once   sync.Once
}

// Hub fans published values out to subscribers.
type Hub[T any] struct {
	name string

	mu      sync.Mutex
	idle    *sync.Cond
	subs    []*subscription[T]
	queue   []T
	running bool
	closed  bool
}

// NewHub creates a hub. name only appears in log entries.
func NewHub[T any](name string) *Hub[T] {
	h := &Hub[T]{name: name}
	h.idle = sync.NewCond(&h.mu)
	return h
}

// Subscribe registers fn for every value published after this call.
// The returned function removes the subscription; calling it more than once is a no-op.
func (h *Hub[T]) Subscribe(fn func(T)) (unsubscribe func()) {
	s := &subscription[T]{fn: fn}
	s.active.Store(true)

	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return func() {}
	}
	h.subs = append(h.subs, s)
	h.mu.Unlock()

	return func() {
		s.once.Do(func() {
			s.active.Store(false)
			h.remove(s)
		})
	}
}

func (h *Hub[T]) remove(target *subscription[T]) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for i, s := range h.subs {
		if s == target {
			h.subs = append(h.subs[:i:i], h.subs[i+1:]...)
			return
		}
	}
}

// Publish queues v for delivery. Values published after Close are dropped.
func (h *Hub[T]) Publish(v T) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}
	h.queue = append(h.queue, v)
	if !h.running {
		h.running = true
		go h.dispatch()
	}
}

func (h *Hub[T]) dispatch() {
	for {
		h.mu.Lock()
		if len(h.queue) == 0 {
			h.running = false
			h.idle.Broadcast()
			h.mu.Unlock()
			return
		}
		v := h.queue[0]
		var zero T
		h.queue[0] = zero
		h.queue = h.queue[1:]
		subs := make([]*subscription[T], len(h.subs))
		copy(subs, h.subs)
		h.mu.Unlock()

		for _, s := range subs {
			if s.active.Load() {
				h.deliver(s, v)
			}
		}
	}
}

func (h *Hub[T]) deliver(s *subscription[T], v T) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("Subscriber panicked",
				zap.String("hub", h.name),
				zap.Any("panic", r),
			)
		}
	}()
	s.fn(v)
}

// Wait blocks until every queued value has been delivered.
// It must not be called from inside a subscriber callback.
func (h *Hub[T]) Wait() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for h.running {
		h.idle.Wait()
	}
}

// Len returns the number of active subscriptions.
func (h *Hub[T]) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs)
}

// Close drops all subscriptions and pending values. It is idempotent.
func (h *Hub[T]) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}
	h.closed = true
	for _, s := range h.subs {
		s.active.Store(false)
	}
	h.subs = nil
	h.queue = nil
}
