package session

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/mcpgate/mcpgate/internal/core/bridge"
	"github.com/mcpgate/mcpgate/internal/core/launcher"
)

// Client is the network-facing side of a session: the streaming
// response, the request body, and a signal that fires when the client
// goes away.
type Client struct {
	Writer io.Writer
	Flush  bridge.Flusher
	Reader io.Reader
	// Gone is closed when the client connection ends (for HTTP, the
	// request context's Done channel).
	Gone <-chan struct{}
}

// Runner supervises a session's forwarding loops and child process as
// a single unit.
type Runner struct {
	grace time.Duration
}

// NewRunner creates a Runner with the given graceful-termination
// window.
func NewRunner(grace time.Duration) *Runner {
	if grace <= 0 {
		grace = 5 * time.Second
	}
	return &Runner{grace: grace}
}

// Run bridges the session until the first terminal event (a loop
// finishing, the child exiting, or the client disconnecting), then
// tears the session down and waits for the remaining loops. It always
// leaves the session terminated.
func (r *Runner) Run(ctx context.Context, s *Session, client Client) error {
	process := s.Process()
	log := s.Logger()

	if err := s.transition(StatusBridging); err != nil {
		return err
	}

	results := bridge.Run(bridge.Streams{
		ClientWriter: client.Writer,
		ClientFlush:  client.Flush,
		ClientReader: client.Reader,
		Stdin:        process.Stdin(),
		Stdout:       process.Stdout(),
		Stderr:       process.Stderr(),
	}, log)

	// Race the three independent terminal signals. A one-directional
	// EOF does not imply the other loops will ever end on their own
	// (a half-closed stdin can hang forever), so the first signal
	// wins and forces teardown.
	var finished int
	select {
	case result := <-results:
		finished++
		if result.Err != nil {
			log.Error("forwarding error", "direction", result.Direction, "error", result.Err)
		} else {
			log.Debug("stream ended", "direction", result.Direction)
		}
	case <-process.Done():
		log.Debug("tool server exited")
	case <-client.Gone:
		log.Debug("client disconnected")
	}

	s.Terminate(r.grace)

	// The child is dead but its last writes may still sit in the pipe
	// buffers; the read ends stay open until the outbound and stderr
	// loops drain them to EOF. The inbound loop can stay blocked on a
	// still-connected client, so the wait is bounded; closing the
	// pipes afterwards errors out whatever is left, and the buffered
	// results channel lets stragglers finish on their own.
	deadline := time.After(2 * time.Second)
	for finished < 3 {
		select {
		case result := <-results:
			finished++
			if result.Err != nil {
				log.Debug("loop closed during draining", "direction", result.Direction, "error", result.Err)
			}
		case <-deadline:
			log.Debug("forwarding loop still blocked after teardown", "finished", finished)
			s.Close()
			return nil
		}
	}

	s.Close()
	return nil
}

// terminateOnce-backed teardown lives on the Session so that both the
// runner and any competing signal handler can call it; the second call
// is a no-op.
func (s *Session) Terminate(grace time.Duration) {
	s.terminateOnce.Do(func() {
		if s.Status() == StatusBridging {
			_ = s.transition(StatusDraining)
		}

		if s.process != nil {
			// Closing stdin first gives a well-behaved tool server
			// the chance to exit on end-of-stream before any signal.
			s.process.CloseStdin()

			// Teardown runs on its own context. The usual trigger is
			// the client disconnecting, which has already cancelled
			// the request context; inheriting it would skip the grace
			// wait and kill the child outright.
			if err := s.process.Stop(context.Background(), grace); err != nil {
				if errors.Is(err, launcher.ErrTerminationTimeout) {
					s.log.Warn("tool server ignored termination request, killed",
						"grace", grace)
				} else {
					s.log.Error("failed to stop tool server", "error", err)
				}
			}
		}

		_ = s.transition(StatusTerminated)
		s.log.Info("session terminated")
	})
}
