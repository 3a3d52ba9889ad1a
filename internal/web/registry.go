package web

import (
	"sync"

	"github.com/andihoo/chrono/internal/domain"
	"github.com/google/uuid"
)

// entry serializes every action on one user session.
type entry struct {
	mu   sync.Mutex
	sess *domain.UserSession
}

// Registry maps bearer tokens to logged-in user sessions. It lives only in
// memory; a restart logs every client out while the store keeps their open
// records, which the next login adopts.
type Registry struct {
	mu      sync.RWMutex
	entries map[string]*entry
}

func NewRegistry() *Registry {
	return &Registry{entries: make(map[string]*entry)}
}

// Add stores sess under a fresh token.
func (r *Registry) Add(sess *domain.UserSession) string {
	token := uuid.NewString()
	r.mu.Lock()
	r.entries[token] = &entry{sess: sess}
	r.mu.Unlock()
	return token
}

func (r *Registry) Remove(token string) {
	r.mu.Lock()
	delete(r.entries, token)
	r.mu.Unlock()
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}

// With runs fn while holding the session's lock. It reports false when the
// token is unknown.
func (r *Registry) With(token string, fn func(sess *domain.UserSession) error) (bool, error) {
	r.mu.RLock()
	e, ok := r.entries[token]
	r.mu.RUnlock()
	if !ok {
		return false, nil
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return true, fn(e.sess)
}

// Each runs fn on every session, one at a time, under its lock.
func (r *Registry) Each(fn func(token string, sess *domain.UserSession)) {
	r.mu.RLock()
	snapshot := make(map[string]*entry, len(r.entries))
	for k, v := range r.entries {
		snapshot[k] = v
	}
	r.mu.RUnlock()

	for token, e := range snapshot {
		e.mu.Lock()
		fn(token, e.sess)
		e.mu.Unlock()
	}
}
