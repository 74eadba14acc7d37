// Package bridge moves bytes between a client stream and a tool
// server's stdio pipes. It is protocol-agnostic: nothing here frames,
// parses, or validates the traffic it relays.
package bridge

import (
	"bufio"
	"io"
	"strings"

	"github.com/mcpgate/mcpgate/internal/core/logger"
)

// Direction identifies one of the three forwarding loops.
type Direction string

const (
	// DirectionOutbound forwards tool server stdout to the client.
	DirectionOutbound Direction = "outbound"
	// DirectionInbound forwards the client's bytes to tool server stdin.
	DirectionInbound Direction = "inbound"
	// DirectionStderr drains tool server stderr into the session log.
	DirectionStderr Direction = "stderr"
)

// Result is the outcome of one forwarding loop. Err is nil for normal
// termination (EOF or an expected close during teardown).
type Result struct {
	Direction Direction
	Err       error
}

// Flusher is the subset of http.Flusher the outbound loop needs.
type Flusher interface {
	Flush()
}

// Streams collects the endpoints the three loops connect.
type Streams struct {
	// Client side.
	ClientWriter io.Writer // response body
	ClientFlush  Flusher   // may be nil when the transport needs no flushing
	ClientReader io.Reader // request body

	// Tool server side.
	Stdin  io.Writer
	Stdout io.Reader
	Stderr io.Reader
}

const copyBufferSize = 32 * 1024

// Run starts the three forwarding loops and returns a channel that
// delivers each loop's Result as it finishes. The channel is buffered;
// loops never block on delivery. Run does not stop the loops itself:
// the lifecycle manager ends them by closing the pipes they read from.
func Run(streams Streams, log logger.Logger) <-chan Result {
	results := make(chan Result, 3)

	go func() {
		results <- Result{DirectionOutbound, Outbound(streams.ClientWriter, streams.ClientFlush, streams.Stdout)}
	}()
	go func() {
		results <- Result{DirectionInbound, Inbound(streams.Stdin, streams.ClientReader)}
	}()
	go func() {
		results <- Result{DirectionStderr, Stderr(log, streams.Stderr)}
	}()

	return results
}

// Outbound copies tool server stdout to the client, flushing after
// every chunk so bytes reach the client as soon as the server produces
// them. EOF on stdout is normal termination.
func Outbound(dst io.Writer, flush Flusher, src io.Reader) error {
	buf := make([]byte, copyBufferSize)
	for {
		n, readErr := src.Read(buf)
		if n > 0 {
			if _, writeErr := dst.Write(buf[:n]); writeErr != nil {
				return normalizeCloseError(writeErr)
			}
			if flush != nil {
				flush.Flush()
			}
		}
		if readErr != nil {
			return normalizeCloseError(readErr)
		}
	}
}

// Inbound copies the client's request bytes to tool server stdin. The
// client disconnecting or finishing its body is normal termination.
func Inbound(dst io.Writer, src io.Reader) error {
	buf := make([]byte, copyBufferSize)
	for {
		n, readErr := src.Read(buf)
		if n > 0 {
			if _, writeErr := dst.Write(buf[:n]); writeErr != nil {
				return normalizeCloseError(writeErr)
			}
		}
		if readErr != nil {
			return normalizeCloseError(readErr)
		}
	}
}

// Stderr reads tool server stderr line by line into the session log.
// These bytes are operator diagnostics and are never forwarded to the
// client. A line of any length is logged rather than treated as an
// error; a chatty child must never take its session down.
func Stderr(log logger.Logger, src io.Reader) error {
	reader := bufio.NewReaderSize(src, copyBufferSize)
	for {
		line, err := reader.ReadString('\n')
		if trimmed := strings.TrimRight(line, "\r\n"); trimmed != "" {
			log.Info("server stderr", "line", trimmed)
		}
		if err != nil {
			return normalizeCloseError(err)
		}
	}
}
