// Package launcher starts the per-session stdio tool server process.
// Every accepted connection gets its own child with a dedicated
// environment, so sessions never share credentials or state.
package launcher

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/mcpgate/mcpgate/internal/core/logger"
)

// Spec describes how to launch the tool server.
type Spec struct {
	// Command is the executable to run.
	Command string
	// Args are passed verbatim.
	Args []string
	// Env is overlaid on the gateway's inherited environment.
	Env map[string]string
	// TokenVar is the environment variable carrying the per-session
	// access token. It is only set when a token was supplied, and it
	// overrides any value from Env or the inherited environment.
	TokenVar string
}

// Launcher builds per-session environments and starts tool server
// processes. The launch spec can be swapped at runtime; the swap only
// affects sessions launched afterwards.
type Launcher struct {
	mu   sync.RWMutex
	spec Spec
	log  logger.Logger
}

// New creates a Launcher with the given spec.
func New(spec Spec, log logger.Logger) *Launcher {
	if log == nil {
		log = logger.Nop()
	}
	return &Launcher{spec: spec, log: log}
}

// Spec returns a copy of the current launch spec.
func (l *Launcher) Spec() Spec {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.spec
}

// SetSpec replaces the launch spec for future launches.
func (l *Launcher) SetSpec(spec Spec) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.spec = spec
}

// Launch starts one tool server process with the session token
// injected into its environment. The returned Process owns three open
// pipes (stdin write end, stdout and stderr read ends). On failure no
// pipe or process is left behind.
func (l *Launcher) Launch(ctx context.Context, token string) (*Process, error) {
	spec := l.Spec()
	if spec.Command == "" {
		return nil, &LaunchError{Command: spec.Command, Err: fmt.Errorf("no command configured")}
	}

	environment := BuildEnvironment(spec, token)

	stdinRead, stdinWrite, err := os.Pipe()
	if err != nil {
		return nil, &LaunchError{Command: spec.Command, Err: fmt.Errorf("stdin pipe: %w", err)}
	}
	stdoutRead, stdoutWrite, err := os.Pipe()
	if err != nil {
		stdinRead.Close()
		stdinWrite.Close()
		return nil, &LaunchError{Command: spec.Command, Err: fmt.Errorf("stdout pipe: %w", err)}
	}
	stderrRead, stderrWrite, err := os.Pipe()
	if err != nil {
		stdinRead.Close()
		stdinWrite.Close()
		stdoutRead.Close()
		stdoutWrite.Close()
		return nil, &LaunchError{Command: spec.Command, Err: fmt.Errorf("stderr pipe: %w", err)}
	}

	//nolint:gosec // the command comes from operator configuration, not the request
	cmd := exec.Command(spec.Command, spec.Args...)
	cmd.Stdin = stdinRead
	cmd.Stdout = stdoutWrite
	cmd.Stderr = stderrWrite
	cmd.Env = flattenEnvironment(environment)
	configureProcessGroup(cmd)

	if err := cmd.Start(); err != nil {
		stdinRead.Close()
		stdinWrite.Close()
		stdoutRead.Close()
		stdoutWrite.Close()
		stderrRead.Close()
		stderrWrite.Close()
		return nil, &LaunchError{Command: spec.Command, Err: err}
	}

	// The child holds its own copies of these ends now.
	stdinRead.Close()
	stdoutWrite.Close()
	stderrWrite.Close()

	proc := &Process{
		id:          uuid.New().String(),
		cmd:         cmd,
		environment: environment,
		stdin:       stdinWrite,
		stdout:      stdoutRead,
		stderr:      stderrRead,
		startTime:   time.Now(),
		done:        make(chan struct{}),
	}

	l.log.Debug("tool server started",
		"pid", cmd.Process.Pid,
		"command", spec.Command,
	)

	go proc.monitor()

	return proc, nil
}

// BuildEnvironment produces the full environment map for a session:
// the gateway's inherited environment, then the spec's base variables,
// then the token variable last so it always wins. An empty token
// leaves the token variable untouched.
func BuildEnvironment(spec Spec, token string) map[string]string {
	environment := MergeEnvironment(environToMap(os.Environ()), spec.Env)
	if token != "" && spec.TokenVar != "" {
		environment[spec.TokenVar] = token
	}
	return environment
}

// MergeEnvironment merges environment maps, with later maps overriding
// earlier ones.
func MergeEnvironment(envs ...map[string]string) map[string]string {
	result := make(map[string]string)
	for _, env := range envs {
		for k, v := range env {
			result[k] = v
		}
	}
	return result
}

// environToMap converts os.Environ-style "KEY=value" entries to a map.
func environToMap(environ []string) map[string]string {
	result := make(map[string]string, len(environ))
	for _, entry := range environ {
		key, value, ok := strings.Cut(entry, "=")
		if !ok {
			continue
		}
		result[key] = value
	}
	return result
}

// flattenEnvironment converts an environment map to the slice form
// os/exec expects.
func flattenEnvironment(environment map[string]string) []string {
	result := make([]string, 0, len(environment))
	for key, value := range environment {
		result = append(result, key+"="+value)
	}
	return result
}
