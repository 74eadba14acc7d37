// Package semaphore provides an in-memory counting semaphore used to
// bound the number of concurrent gateway sessions.
package semaphore

import (
	"sync"
)

// Holder identifies whoever occupies a slot; the session registry
// adapts sessions to it by their ID.
type Holder interface {
	ID() string
}

// Semaphore is a counting semaphore keyed by holder ID, so a
// double-acquire or a release without an acquire is detected rather
// than silently miscounted.
type Semaphore struct {
	capacity int
	holders  map[string]struct{}
	mu       sync.Mutex
}

// New creates a semaphore with the given capacity. A capacity below 1
// is clamped to 1.
func New(capacity int) *Semaphore {
	if capacity < 1 {
		capacity = 1
	}
	return &Semaphore{
		capacity: capacity,
		holders:  make(map[string]struct{}),
	}
}

// Acquire claims a slot for the given holder. Returns
// ErrSemaphoreFull when every slot is taken and ErrAlreadyHolder when
// the holder already occupies one.
func (s *Semaphore) Acquire(holder Holder) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	holderID := holder.ID()

	if _, held := s.holders[holderID]; held {
		return ErrAlreadyHolder{ID: holderID}
	}

	if len(s.holders) >= s.capacity {
		return ErrSemaphoreFull{
			Capacity: s.capacity,
			Current:  len(s.holders),
		}
	}

	s.holders[holderID] = struct{}{}
	return nil
}

// Release frees the holder's slot. Returns ErrNotHolder when the
// holder never acquired one.
func (s *Semaphore) Release(holder Holder) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	holderID := holder.ID()
	if _, held := s.holders[holderID]; !held {
		return ErrNotHolder{ID: holderID}
	}

	delete(s.holders, holderID)
	return nil
}

// IsHeld reports whether the holder currently occupies a slot.
func (s *Semaphore) IsHeld(holder Holder) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, held := s.holders[holder.ID()]
	return held
}

// Count returns the number of current holders.
func (s *Semaphore) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.holders)
}

// Available returns the number of available slots.
func (s *Semaphore) Available() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	available := s.capacity - len(s.holders)
	if available < 0 {
		return 0
	}
	return available
}

// Capacity returns the total capacity of the semaphore.
func (s *Semaphore) Capacity() int {
	return s.capacity
}
