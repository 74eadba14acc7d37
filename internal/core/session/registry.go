package session

import (
	"sort"
	"sync"

	"github.com/mcpgate/mcpgate/internal/core/semaphore"
)

// Registry tracks the gateway's active sessions. It is created once at
// startup and handed to the acceptor explicitly; there is no shared
// module-level state. When a capacity is configured, admission is
// bounded by a counting semaphore and connections beyond it are
// rejected before any process is spawned.
type Registry struct {
	mu       sync.RWMutex
	sessions map[string]*Session

	// limiter is nil when the session count is unbounded.
	limiter *semaphore.Semaphore
}

// holder adapts a Session to the semaphore's Holder interface.
type holder struct {
	id string
}

func (h holder) ID() string { return h.id }

// NewRegistry creates a registry. maxSessions of 0 means unlimited.
func NewRegistry(maxSessions int) *Registry {
	r := &Registry{
		sessions: make(map[string]*Session),
	}
	if maxSessions > 0 {
		r.limiter = semaphore.New(maxSessions)
	}
	return r
}

// Admit registers a session, enforcing the capacity limit. Returns
// semaphore.ErrSemaphoreFull when the gateway is at capacity.
func (r *Registry) Admit(s *Session) error {
	if r.limiter != nil {
		if err := r.limiter.Acquire(holder{id: s.ID()}); err != nil {
			return err
		}
	}

	r.mu.Lock()
	r.sessions[s.ID()] = s
	r.mu.Unlock()
	return nil
}

// Remove deregisters a session and frees its capacity slot. Removing
// an unknown session is a no-op.
func (r *Registry) Remove(s *Session) {
	r.mu.Lock()
	_, known := r.sessions[s.ID()]
	delete(r.sessions, s.ID())
	r.mu.Unlock()

	if known && r.limiter != nil {
		_ = r.limiter.Release(holder{id: s.ID()})
	}
}

// Get returns the session with the given ID.
func (r *Registry) Get(id ID) (*Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.sessions[id.String()]
	if !ok {
		return nil, &ErrSessionNotFound{ID: id}
	}
	return s, nil
}

// Len returns the number of active sessions.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// Snapshot returns session snapshots ordered by creation time.
func (r *Registry) Snapshot() []Info {
	r.mu.RLock()
	infos := make([]Info, 0, len(r.sessions))
	for _, s := range r.sessions {
		infos = append(infos, s.Info())
	}
	r.mu.RUnlock()

	sort.Slice(infos, func(i, j int) bool {
		return infos[i].CreatedAt.Before(infos[j].CreatedAt)
	})
	return infos
}
