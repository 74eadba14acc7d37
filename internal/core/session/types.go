// Package session pairs one client connection with one tool server
// process and supervises the pair from launch to teardown.
package session

import (
	"time"

	"github.com/google/uuid"
)

// ID is the full UUID of a session.
type ID string

// GenerateID generates a new unique session ID.
func GenerateID() ID {
	return ID(uuid.New().String())
}

// String returns the string representation of the session ID.
func (id ID) String() string {
	return string(id)
}

// Short returns the first 8 characters of the session ID, used as the
// log prefix.
func (id ID) Short() string {
	if len(id) >= 8 {
		return string(id[:8])
	}
	return string(id)
}

// Status represents the current state of a session.
type Status string

const (
	// StatusStarting indicates the child process and pipes are being set up.
	StatusStarting Status = "starting"
	// StatusBridging indicates the three forwarding loops are running.
	StatusBridging Status = "bridging"
	// StatusDraining indicates a terminal event fired and teardown has begun.
	StatusDraining Status = "draining"
	// StatusTerminated indicates the child is reaped and all pipes are closed.
	StatusTerminated Status = "terminated"
)

// String returns the string representation of the status.
func (s Status) String() string {
	return string(s)
}

// IsTerminal returns true once a session can no longer change state.
func (s Status) IsTerminal() bool {
	return s == StatusTerminated
}

// Info is a point-in-time snapshot of a session, served by the admin
// endpoint. The token itself is never included.
type Info struct {
	ID        string    `json:"id"`
	Status    Status    `json:"status"`
	PID       int       `json:"pid"`
	HasToken  bool      `json:"has_token"`
	CreatedAt time.Time `json:"created_at"`
}
