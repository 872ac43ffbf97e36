//go:build windows

package supervisor

import (
	"os"
	"os/exec"
	"syscall"
)

// setProcGroupAttr detaches the proxy from the caller's console group.
func setProcGroupAttr(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{
		CreationFlags: syscall.CREATE_NEW_PROCESS_GROUP,
	}
}

// interrupt terminates the process; Windows has no SIGINT for child processes.
func interrupt(process *os.Process) error {
	return process.Kill()
}

func textBusy(error) bool {
	return false
}
