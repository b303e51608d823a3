//go:build !windows

package xtender

import (
	"os"
	"os/exec"
	"syscall"
	"time"
)

func setSysProcAttr(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{
		Setpgid: true,
		Pgid:    0,
	}
}

func processTimeoutKill(process *os.Process) {
	go func(pid int) {
		// kill the process itself and the whole process group
		LogDebug(syscall.Kill(-pid, syscall.SIGTERM))
		time.Sleep(1 * time.Second)

		LogDebug(syscall.Kill(-pid, syscall.SIGINT))
		time.Sleep(1 * time.Second)

		LogDebug(syscall.Kill(-pid, syscall.SIGKILL))
	}(process.Pid)
}

// exitCodeFromState extracts the exit code of a finished process. ok is
// false when the process did not exit on its own.
func exitCodeFromState(cmd *exec.Cmd, waitErr error) (code int64, ok bool) {
	state := cmd.ProcessState
	if state == nil {
		return 0, false
	}

	if waitStatus, isWait := state.Sys().(syscall.WaitStatus); isWait {
		if waitStatus.Exited() {
			return int64(waitStatus.ExitStatus()), true
		}

		return 0, false
	}

	if waitErr == nil {
		return 0, true
	}

	return 0, false
}
