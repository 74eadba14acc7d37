package session

import "fmt"

// ErrInvalidTransition is returned when an illegal state transition is
// attempted.
type ErrInvalidTransition struct {
	From Status
	To   Status
}

func (e *ErrInvalidTransition) Error() string {
	return fmt.Sprintf("invalid transition from %s to %s", e.From, e.To)
}

// ErrSessionNotFound is returned by the registry for unknown session IDs.
type ErrSessionNotFound struct {
	ID ID
}

func (e *ErrSessionNotFound) Error() string {
	return fmt.Sprintf("session not found: %s", e.ID)
}
