package launcher

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"sync"
	"time"
)

// Process is one running tool server owned by a single session. The
// session holds the only references to the three pipes and the process
// handle; nothing is shared across sessions.
type Process struct {
	id          string
	cmd         *exec.Cmd
	environment map[string]string

	stdin  *os.File
	stdout *os.File
	stderr *os.File

	startTime time.Time

	done     chan struct{}
	doneOnce sync.Once

	stdinOnce sync.Once
	closeOnce sync.Once

	mu      sync.Mutex
	waitErr error
}

// ID returns the unique identifier for this process.
func (p *Process) ID() string {
	return p.id
}

// Pid returns the OS process ID.
func (p *Process) Pid() int {
	return p.cmd.Process.Pid
}

// StartTime returns when the process was started.
func (p *Process) StartTime() time.Time {
	return p.startTime
}

// Environment returns a copy of the environment the process was
// started with.
func (p *Process) Environment() map[string]string {
	result := make(map[string]string, len(p.environment))
	for k, v := range p.environment {
		result[k] = v
	}
	return result
}

// Stdin returns the write end of the process's standard input.
func (p *Process) Stdin() io.Writer {
	return p.stdin
}

// Stdout returns the read end of the process's standard output.
func (p *Process) Stdout() io.Reader {
	return p.stdout
}

// Stderr returns the read end of the process's standard error.
func (p *Process) Stderr() io.Reader {
	return p.stderr
}

// Done is closed once the process has exited and been reaped.
func (p *Process) Done() <-chan struct{} {
	return p.done
}

// Exited reports whether the process has exited.
func (p *Process) Exited() bool {
	select {
	case <-p.done:
		return true
	default:
		return false
	}
}

// ExitCode returns the exit code, valid only after the process has
// exited.
func (p *Process) ExitCode() (int, error) {
	select {
	case <-p.done:
		if p.cmd.ProcessState != nil {
			return p.cmd.ProcessState.ExitCode(), nil
		}
		return -1, fmt.Errorf("process state not available")
	default:
		return -1, fmt.Errorf("process still running")
	}
}

// Wait blocks until the process exits or the context is cancelled.
func (p *Process) Wait(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-p.done:
		p.mu.Lock()
		defer p.mu.Unlock()
		return p.waitErr
	}
}

// CloseStdin closes the write end of the child's stdin, signalling
// end-of-stream. Safe to call more than once.
func (p *Process) CloseStdin() {
	p.stdinOnce.Do(func() {
		p.stdin.Close()
	})
}

// Stop asks the process to exit gracefully and waits up to grace for
// it to do so. If the process ignores the request it is killed and
// reaped; in that case Stop returns ErrTerminationTimeout so the
// caller can record the escalation. Stop is a no-op for a process that
// has already exited.
func (p *Process) Stop(ctx context.Context, grace time.Duration) error {
	if p.Exited() {
		return nil
	}

	if err := signalStop(p.cmd); err != nil {
		// The process may have exited between the check and the
		// signal; kill as a fallback to guarantee teardown.
		return p.Kill()
	}

	timer := time.NewTimer(grace)
	defer timer.Stop()

	select {
	case <-p.done:
		return nil
	case <-ctx.Done():
		if err := p.Kill(); err != nil {
			return err
		}
		return ctx.Err()
	case <-timer.C:
		if err := p.Kill(); err != nil {
			return err
		}
		return ErrTerminationTimeout
	}
}

// Kill forcefully terminates the process and blocks until it has been
// reaped. A just-killed process always exits promptly.
func (p *Process) Kill() error {
	if p.Exited() {
		return nil
	}
	if err := signalKill(p.cmd); err != nil && !p.Exited() {
		return fmt.Errorf("failed to kill process %d: %w", p.Pid(), err)
	}
	<-p.done
	return nil
}

// Close releases the parent's pipe ends. Safe to call more than once;
// the bridge loops observe EOF or a closed-pipe error and finish.
func (p *Process) Close() {
	p.closeOnce.Do(func() {
		p.CloseStdin()
		p.stdout.Close()
		p.stderr.Close()
	})
}

// monitor reaps the process and records its exit.
func (p *Process) monitor() {
	err := p.cmd.Wait()

	p.mu.Lock()
	p.waitErr = err
	p.mu.Unlock()

	p.doneOnce.Do(func() {
		close(p.done)
	})
}
