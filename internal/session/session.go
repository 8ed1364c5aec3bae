// Package session keeps one cart per browser session and expires idle ones.
package session

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/fairyhunter13/storefront-cart/internal/cart"
	"github.com/fairyhunter13/storefront-cart/internal/obs"
	"github.com/fairyhunter13/storefront-cart/internal/view"
)

// DefaultSweepInterval replaces a non-positive sweep interval passed to Start.
const DefaultSweepInterval = time.Minute

// Session is one visitor's state. Fields other than ID must only be touched inside Do.
type Session struct {
	ID       string
	Cart     *cart.Store
	Drawer   view.Drawer
	Steppers *view.Steppers

	notice   string
	mu       sync.Mutex
	lastSeen atomic.Int64
}

func newSession(now time.Time) *Session {
	s := &Session{
		ID:       uuid.NewString(),
		Cart:     cart.New(),
		Steppers: view.NewSteppers(),
	}
	s.lastSeen.Store(now.UnixNano())
	return s
}

// Do runs fn with exclusive access to the session. Handlers run to completion
// one at a time, as click handlers on a single UI thread would.
func (s *Session) Do(fn func(*Session)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(s)
}

// Notify records a message for the visitor, shown on the next render.
func (s *Session) Notify(msg string) { s.notice = msg }

// TakeNotice returns and clears the pending message.
func (s *Session) TakeNotice() string {
	n := s.notice
	s.notice = ""
	return n
}

// Hooks observe session lifecycle.
type Hooks struct {
	Created func(*Session)
	Expired func(*Session)
}

// Registry maps session ids to sessions.
type Registry struct {
	mu    sync.RWMutex
	m     map[string]*Session
	idle  time.Duration
	hooks Hooks
	now   func() time.Time

	cancel context.CancelFunc
	done   chan struct{}
}

// NewRegistry returns a registry expiring sessions idle for longer than idle.
func NewRegistry(idle time.Duration, hooks Hooks) *Registry {
	return &Registry{m: make(map[string]*Session), idle: idle, hooks: hooks, now: time.Now}
}

// Get returns the session for id and marks it as seen.
func (r *Registry) Get(id string) (*Session, bool) {
	r.mu.RLock()
	s, ok := r.m[id]
	r.mu.RUnlock()
	if !ok {
		return nil, false
	}
	s.lastSeen.Store(r.now().UnixNano())
	return s, true
}

// Create starts a new session.
func (r *Registry) Create() *Session {
	s := newSession(r.now())
	r.mu.Lock()
	r.m[s.ID] = s
	r.mu.Unlock()
	if r.hooks.Created != nil {
		r.hooks.Created(s)
	}
	obs.Logger.Info("session_created", "session_id", s.ID)
	return s
}

// GetOrCreate returns the session for id, or a fresh one when id is unknown.
func (r *Registry) GetOrCreate(id string) (s *Session, created bool) {
	if id != "" {
		if s, ok := r.Get(id); ok {
			return s, false
		}
	}
	return r.Create(), true
}

// Len returns the number of live sessions.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.m)
}

// Sweep drops sessions idle longer than the configured timeout and returns how many went.
func (r *Registry) Sweep() int {
	cutoff := r.now().Add(-r.idle).UnixNano()
	var expired []*Session
	r.mu.Lock()
	for id, s := range r.m {
		if s.lastSeen.Load() < cutoff {
			delete(r.m, id)
			expired = append(expired, s)
		}
	}
	r.mu.Unlock()
	for _, s := range expired {
		if r.hooks.Expired != nil {
			r.hooks.Expired(s)
		}
		obs.Logger.Info("session_expired", "session_id", s.ID)
	}
	return len(expired)
}

// Start sweeps every interval in the background until ctx ends or Stop is called.
// A non-positive interval falls back to DefaultSweepInterval.
func (r *Registry) Start(parent context.Context, interval time.Duration) {
	if interval <= 0 {
		obs.Logger.Warn("session_sweep_interval_invalid", "interval", interval.String(), "fallback", DefaultSweepInterval.String())
		interval = DefaultSweepInterval
	}
	ctx, cancel := context.WithCancel(parent)
	r.cancel = cancel
	r.done = make(chan struct{})
	go func() {
		defer close(r.done)
		t := time.NewTicker(interval)
		defer t.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-t.C:
				r.Sweep()
			}
		}
	}()
}

// Stop halts the background sweeper and waits for it to exit.
func (r *Registry) Stop() {
	if r.cancel == nil {
		return
	}
	r.cancel()
	<-r.done
}
