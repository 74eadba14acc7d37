//go:build !windows

package launcher

import (
	"fmt"
	"os/exec"
	"syscall"
)

// usesProcessGroup checks if the command was started in its own process group
func usesProcessGroup(cmd *exec.Cmd) bool {
	return cmd.SysProcAttr != nil && cmd.SysProcAttr.Setpgid
}

// signalStop sends SIGTERM to the process or its process group
func signalStop(cmd *exec.Cmd) error {
	if usesProcessGroup(cmd) {
		// Negative PID signals the whole group, reaching any
		// grandchildren the tool server spawned.
		if err := syscall.Kill(-cmd.Process.Pid, syscall.SIGTERM); err != nil {
			return fmt.Errorf("failed to send SIGTERM to process group: %w", err)
		}
		return nil
	}
	if err := cmd.Process.Signal(syscall.SIGTERM); err != nil {
		return fmt.Errorf("failed to send SIGTERM: %w", err)
	}
	return nil
}

// signalKill sends SIGKILL to the process or its process group
func signalKill(cmd *exec.Cmd) error {
	if usesProcessGroup(cmd) {
		if err := syscall.Kill(-cmd.Process.Pid, syscall.SIGKILL); err != nil {
			return fmt.Errorf("failed to kill process group: %w", err)
		}
		return nil
	}
	if err := cmd.Process.Kill(); err != nil {
		return fmt.Errorf("failed to kill process: %w", err)
	}
	return nil
}
