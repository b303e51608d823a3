//go:build windows

package xtender

import (
	"os"
	"os/exec"
)

// checks never run on windows, Execute refuses to start there, these
// stubs only keep the package compiling
func setSysProcAttr(_ *exec.Cmd) {
}

func processTimeoutKill(process *os.Process) {
	LogDebug(process.Kill())
}

func exitCodeFromState(cmd *exec.Cmd, waitErr error) (code int64, ok bool) {
	if cmd.ProcessState == nil {
		return 0, false
	}
	if waitErr == nil {
		return int64(cmd.ProcessState.ExitCode()), true
	}

	return 0, false
}
