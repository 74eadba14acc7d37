package session

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"runtime"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcpgate/mcpgate/internal/core/launcher"
	"github.com/mcpgate/mcpgate/internal/core/logger"
)

func skipOnWindows(t *testing.T) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("test relies on unix shell tools")
	}
}

// syncBuffer is a goroutine-safe response recorder.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func (b *syncBuffer) Flush() {}

// launchSession starts a child process and wraps it in a session.
func launchSession(t *testing.T, spec launcher.Spec, token string) *Session {
	t.Helper()
	s := New(token, logger.Nop())
	proc, err := launcher.New(spec, logger.Nop()).Launch(context.Background(), token)
	require.NoError(t, err)
	s.Attach(proc)
	return s
}

func TestRunner_ChildExitTerminates(t *testing.T) {
	skipOnWindows(t)

	s := launchSession(t, launcher.Spec{Command: "true"}, "")
	gone := make(chan struct{})

	response := &syncBuffer{}
	clientReader, clientWriter := io.Pipe()
	defer clientWriter.Close()

	runner := NewRunner(2 * time.Second)
	done := make(chan error, 1)
	go func() {
		done <- runner.Run(context.Background(), s, Client{
			Writer: response,
			Flush:  response,
			Reader: clientReader,
			Gone:   gone,
		})
	}()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(10 * time.Second):
		t.Fatal("runner did not return after child exit")
	}
	assert.Equal(t, StatusTerminated, s.Status())
	assert.True(t, s.Process().Exited())
}

func TestRunner_ClientDisconnectTerminates(t *testing.T) {
	skipOnWindows(t)

	s := launchSession(t, launcher.Spec{Command: "cat"}, "")
	gone := make(chan struct{})

	response := &syncBuffer{}
	clientReader, clientWriter := io.Pipe()
	defer clientWriter.Close()

	runner := NewRunner(2 * time.Second)
	done := make(chan error, 1)
	go func() {
		done <- runner.Run(context.Background(), s, Client{
			Writer: response,
			Flush:  response,
			Reader: clientReader,
			Gone:   gone,
		})
	}()

	// Simulate the client going away.
	close(gone)

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(10 * time.Second):
		t.Fatal("runner did not return after client disconnect")
	}
	assert.Equal(t, StatusTerminated, s.Status())
	assert.True(t, s.Process().Exited())
}

// erroringReader fails on the first read, simulating a broken client
// socket mid-stream.
type erroringReader struct{}

func (erroringReader) Read([]byte) (int, error) {
	return 0, fmt.Errorf("socket reset")
}

func TestRunner_ForwardErrorTerminates(t *testing.T) {
	skipOnWindows(t)

	s := launchSession(t, launcher.Spec{Command: "cat"}, "")

	response := &syncBuffer{}
	runner := NewRunner(2 * time.Second)

	done := make(chan error, 1)
	go func() {
		done <- runner.Run(context.Background(), s, Client{
			Writer: response,
			Flush:  response,
			Reader: erroringReader{},
			Gone:   make(chan struct{}),
		})
	}()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(10 * time.Second):
		t.Fatal("runner did not return after forwarding error")
	}
	assert.Equal(t, StatusTerminated, s.Status())
}

func TestRunner_EchoPreservesOrder(t *testing.T) {
	skipOnWindows(t)

	s := launchSession(t, launcher.Spec{Command: "cat"}, "")
	gone := make(chan struct{})

	response := &syncBuffer{}
	clientReader, clientWriter := io.Pipe()

	runner := NewRunner(2 * time.Second)
	done := make(chan error, 1)
	go func() {
		done <- runner.Run(context.Background(), s, Client{
			Writer: response,
			Flush:  response,
			Reader: clientReader,
			Gone:   gone,
		})
	}()

	const lines = 50
	var want strings.Builder
	for i := 0; i < lines; i++ {
		line := fmt.Sprintf("message-%03d\n", i)
		want.WriteString(line)
		_, err := clientWriter.Write([]byte(line))
		require.NoError(t, err)
	}

	// Wait until every byte has come back before ending the session,
	// then disconnect.
	require.Eventually(t, func() bool {
		return response.String() == want.String()
	}, 10*time.Second, 10*time.Millisecond, "echoed bytes must arrive in order")

	clientWriter.Close()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(10 * time.Second):
		t.Fatal("runner did not return")
	}
	assert.Equal(t, want.String(), response.String())
}

func TestRunner_EscalationBoundsTeardown(t *testing.T) {
	skipOnWindows(t)

	// A child that ignores SIGTERM and never reads stdin.
	s := launchSession(t, launcher.Spec{
		Command: "sh",
		Args:    []string{"-c", `trap '' TERM; while true; do sleep 0.1; done`},
	}, "")
	gone := make(chan struct{})

	response := &syncBuffer{}
	clientReader, clientWriter := io.Pipe()
	defer clientWriter.Close()

	const grace = 500 * time.Millisecond
	runner := NewRunner(grace)
	done := make(chan error, 1)
	go func() {
		done <- runner.Run(context.Background(), s, Client{
			Writer: response,
			Flush:  response,
			Reader: clientReader,
			Gone:   gone,
		})
	}()

	time.Sleep(200 * time.Millisecond) // let the trap install
	start := time.Now()
	close(gone)

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(10 * time.Second):
		t.Fatal("runner did not return despite escalation")
	}
	assert.Less(t, time.Since(start), grace+3*time.Second)
	assert.Equal(t, StatusTerminated, s.Status())
	assert.True(t, s.Process().Exited(), "child must be gone after escalation")
}

func TestRunner_DisconnectStopsChildGracefully(t *testing.T) {
	skipOnWindows(t)

	// A child that catches the termination signal and exits with a
	// distinctive code. If teardown escalated straight to a kill, the
	// trap would never run.
	s := launchSession(t, launcher.Spec{
		Command: "sh",
		Args:    []string{"-c", `trap 'exit 7' TERM; while true; do sleep 0.05; done`},
	}, "")
	gone := make(chan struct{})

	response := &syncBuffer{}
	clientReader, clientWriter := io.Pipe()
	defer clientWriter.Close()

	ctx, cancel := context.WithCancel(context.Background())
	runner := NewRunner(5 * time.Second)
	done := make(chan error, 1)
	go func() {
		done <- runner.Run(ctx, s, Client{
			Writer: response,
			Flush:  response,
			Reader: clientReader,
			Gone:   gone,
		})
	}()

	time.Sleep(200 * time.Millisecond) // let the trap install

	// A real disconnect cancels the request context and fires Gone at
	// the same time; teardown must still grant the grace period.
	cancel()
	close(gone)

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(10 * time.Second):
		t.Fatal("runner did not return after disconnect")
	}

	code, err := s.Process().ExitCode()
	require.NoError(t, err)
	assert.Equal(t, 7, code, "child must get the chance to exit on the termination signal")
}

func TestTerminate_Idempotent(t *testing.T) {
	skipOnWindows(t)

	s := launchSession(t, launcher.Spec{Command: "cat"}, "")
	defer s.Close()

	// Concurrent teardown from two signals must not panic or
	// double-close anything.
	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.Terminate(time.Second)
		}()
	}
	wg.Wait()

	assert.Equal(t, StatusTerminated, s.Status())
	assert.True(t, s.Process().Exited())

	// A third call after completion is still a no-op.
	s.Terminate(time.Second)
	assert.Equal(t, StatusTerminated, s.Status())
}

func TestTerminate_WithoutProcess(t *testing.T) {
	s := New("", logger.Nop())
	s.Terminate(time.Second)
	assert.Equal(t, StatusTerminated, s.Status())
}
