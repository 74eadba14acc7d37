package session

import (
	"sync"
	"time"

	"github.com/mcpgate/mcpgate/internal/core/launcher"
	"github.com/mcpgate/mcpgate/internal/core/logger"
)

// Session is one client connection paired 1:1 with one tool server
// process. It exclusively owns the process handle and its three pipes;
// nothing is shared with other sessions.
type Session struct {
	id        string
	token     string
	process   *launcher.Process
	createdAt time.Time
	log       logger.Logger

	mu     sync.Mutex
	status Status

	terminateOnce sync.Once
}

// New creates a session in the starting state. The process may be nil
// until Attach is called; launch happens synchronously as part of
// session start.
func New(token string, log logger.Logger) *Session {
	id := GenerateID()
	return &Session{
		id:        id.String(),
		token:     token,
		createdAt: time.Now(),
		status:    StatusStarting,
		log:       log.With("session", id.Short()),
	}
}

// ID returns the full session identifier.
func (s *Session) ID() string {
	return s.id
}

// Short returns the truncated identifier used in logs.
func (s *Session) Short() string {
	return ID(s.id).Short()
}

// Token returns the raw access token carried on the connection. May
// be empty.
func (s *Session) Token() string {
	return s.token
}

// Logger returns the session-scoped logger.
func (s *Session) Logger() logger.Logger {
	return s.log
}

// Process returns the tool server process, or nil before Attach.
func (s *Session) Process() *launcher.Process {
	return s.process
}

// Attach hands the launched process to the session.
func (s *Session) Attach(process *launcher.Process) {
	s.process = process
}

// Status returns the current session status.
func (s *Session) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

// transition moves the session to a new state, enforcing the legal
// transition table.
func (s *Session) transition(to Status) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !isValidTransition(s.status, to) {
		return &ErrInvalidTransition{From: s.status, To: to}
	}

	s.log.Debug("state transitioned", "from", s.status, "to", to)
	s.status = to
	return nil
}

// isValidTransition checks if a state transition is allowed.
func isValidTransition(from, to Status) bool {
	validTransitions := map[Status][]Status{
		// starting→terminated covers launch failures that never bridge.
		StatusStarting: {StatusBridging, StatusTerminated},
		StatusBridging: {StatusDraining},
		StatusDraining: {StatusTerminated},
		// Terminal state cannot transition.
		StatusTerminated: {},
	}

	for _, allowed := range validTransitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

// Close releases the process pipes. It is kept separate from
// Terminate so the outbound loop can drain buffered child output to
// EOF after the process is gone; safe to call repeatedly or without a
// process.
func (s *Session) Close() {
	if s.process != nil {
		s.process.Close()
	}
}

// Info returns a snapshot for the admin surface.
func (s *Session) Info() Info {
	info := Info{
		ID:        s.id,
		Status:    s.Status(),
		HasToken:  s.token != "",
		CreatedAt: s.createdAt,
	}
	if s.process != nil {
		info.PID = s.process.Pid()
	}
	return info
}
