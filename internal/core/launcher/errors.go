package launcher

import (
	"errors"
	"fmt"
)

// LaunchError indicates the tool server process could not be started.
// It is fatal to the one session that tried to launch it.
type LaunchError struct {
	Command string
	Err     error
}

func (e *LaunchError) Error() string {
	return fmt.Sprintf("failed to launch %q: %v", e.Command, e.Err)
}

func (e *LaunchError) Unwrap() error {
	return e.Err
}

// ErrTerminationTimeout is returned by Process.Stop when the child
// ignored the graceful termination request and had to be killed. The
// session still ends; callers log this as a warning, not an error.
var ErrTerminationTimeout = errors.New("process did not exit within grace period")
