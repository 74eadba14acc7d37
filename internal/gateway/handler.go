package gateway

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/mcpgate/mcpgate/internal/core/launcher"
	"github.com/mcpgate/mcpgate/internal/core/logger"
	"github.com/mcpgate/mcpgate/internal/core/semaphore"
	"github.com/mcpgate/mcpgate/internal/core/session"
)

// handleStream accepts one streaming connection and runs it to
// completion. Every accepted GET materializes exactly one tool server
// process; HEAD is a liveness probe and spawns nothing.
func (s *Server) handleStream(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodHead:
		w.WriteHeader(http.StatusOK)
		return
	case http.MethodGet:
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	token := r.URL.Query().Get(TokenParam)
	if token != "" {
		s.log.Info("new connection", "token", logger.Redact(token))
	} else {
		s.log.Info("new connection, no token")
	}

	sess := session.New(token, s.log)

	if err := s.registry.Admit(sess); err != nil {
		var fullErr semaphore.ErrSemaphoreFull
		if errors.As(err, &fullErr) {
			s.log.Warn("connection rejected, session limit reached",
				"limit", fullErr.Capacity)
			http.Error(w, "session limit reached", http.StatusServiceUnavailable)
			return
		}
		http.Error(w, "failed to register session", http.StatusInternalServerError)
		return
	}
	defer s.registry.Remove(sess)

	process, err := s.launcher.Launch(r.Context(), token)
	if err != nil {
		// Launch failure happens before any stream bytes, so a
		// conventional error status is still possible.
		sess.Logger().Error("failed to launch tool server", "error", err)
		sess.Terminate(0)
		var launchErr *launcher.LaunchError
		if errors.As(err, &launchErr) {
			http.Error(w, "failed to start tool server", http.StatusInternalServerError)
			return
		}
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	sess.Attach(process)
	sess.Logger().Info("tool server started", "pid", process.Pid())

	// Streaming reply: no intermediary buffering, no caching, open
	// cross-origin. Headers go out before any body bytes exist.
	header := w.Header()
	header.Set("Content-Type", "text/event-stream")
	header.Set("Cache-Control", "no-cache")
	header.Set("Connection", "keep-alive")
	header.Set("Access-Control-Allow-Origin", "*")
	header.Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	// From here on failures surface to the client only as the stream
	// ending; the lifecycle manager handles everything locally.
	_ = s.runner.Run(r.Context(), sess, session.Client{
		Writer: w,
		Flush:  flusher,
		Reader: r.Body,
		Gone:   r.Context().Done(),
	})
}

// handleSessions serves a snapshot of active sessions for operator
// tooling. Tokens are reported only as present/absent.
func (s *Server) handleSessions(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(s.registry.Snapshot()); err != nil {
		s.log.Error("failed to encode session snapshot", "error", err)
	}
}

// handleHealth is a trivial liveness endpoint.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}
