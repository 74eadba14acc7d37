//go:build !windows

package launcher

import (
	"os/exec"
	"syscall"
)

// configureProcessGroup puts the child in its own process group so
// termination signals reach anything it spawns.
func configureProcessGroup(cmd *exec.Cmd) {
	if cmd.SysProcAttr == nil {
		cmd.SysProcAttr = &syscall.SysProcAttr{}
	}
	cmd.SysProcAttr.Setpgid = true
}
