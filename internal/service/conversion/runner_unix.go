//go:build unix

package conversion

import (
	"os/exec"
	"syscall"
)

// killProcessGroup starts the converter in its own process group and makes
// cancellation kill the whole group, so forked helpers die with it.
func killProcessGroup(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
	cmd.Cancel = func() error {
		return syscall.Kill(-cmd.Process.Pid, syscall.SIGKILL)
	}
}
