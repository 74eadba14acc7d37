// Package gateway is the network entry point: it accepts streaming
// connections, authenticates them by forwarding their access token
// into a dedicated tool server process, and relays bytes between the
// two for the life of the connection.
package gateway

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/mcpgate/mcpgate/internal/core/config"
	"github.com/mcpgate/mcpgate/internal/core/launcher"
	"github.com/mcpgate/mcpgate/internal/core/logger"
	"github.com/mcpgate/mcpgate/internal/core/session"
)

// StreamPath is the fixed path clients connect to.
const StreamPath = "/sse"

// TokenParam is the query parameter carrying the access token.
const TokenParam = "access_token"

// Server ties the acceptor, the launcher, and the session registry
// together. The registry is injected at construction; nothing is kept
// at package scope.
type Server struct {
	addr     string
	registry *session.Registry
	launcher *launcher.Launcher
	runner   *session.Runner
	log      logger.Logger

	httpServer *http.Server
	listener   net.Listener
}

// New creates a gateway server from the given configuration.
func New(cfg *config.Config, registry *session.Registry, launch *launcher.Launcher, log logger.Logger) *Server {
	s := &Server{
		addr:     cfg.Addr(),
		registry: registry,
		launcher: launch,
		runner:   session.NewRunner(cfg.Shutdown.GracePeriod.Std()),
		log:      log,
	}

	mux := http.NewServeMux()
	mux.HandleFunc(StreamPath, s.handleStream)
	mux.HandleFunc("/sessions", s.handleSessions)
	mux.HandleFunc("/healthz", s.handleHealth)

	s.httpServer = &http.Server{
		Handler: mux,
		// No read/write timeouts: sessions stay open until the client
		// disconnects or the tool server exits.
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// Start binds the listener and begins serving in the background. It
// returns once the listener is accepting.
func (s *Server) Start() error {
	listener, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.addr, err)
	}
	s.listener = listener

	go func() {
		if err := s.httpServer.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.log.Error("server stopped", "error", err)
		}
	}()

	s.log.Info("gateway started", "addr", listener.Addr().String())
	return nil
}

// Addr returns the bound listener address, useful when binding port 0.
func (s *Server) Addr() net.Addr {
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

// Shutdown stops accepting connections and waits for in-flight
// sessions up to the context deadline, then closes the remaining
// connections. Closing a session's connection drives its lifecycle
// manager through the normal client-disconnect teardown.
func (s *Server) Shutdown(ctx context.Context) error {
	if err := s.httpServer.Shutdown(ctx); err != nil {
		return s.httpServer.Close()
	}
	return nil
}
