//go:build windows

package launcher

import (
	"fmt"
	"os/exec"
)

// signalStop stops the process on Windows. There is no SIGTERM
// equivalent for a non-console child, so this kills directly.
func signalStop(cmd *exec.Cmd) error {
	if err := cmd.Process.Kill(); err != nil {
		return fmt.Errorf("failed to stop process: %w", err)
	}
	return nil
}

// signalKill kills the process on Windows.
func signalKill(cmd *exec.Cmd) error {
	if err := cmd.Process.Kill(); err != nil {
		return fmt.Errorf("failed to kill process: %w", err)
	}
	return nil
}
