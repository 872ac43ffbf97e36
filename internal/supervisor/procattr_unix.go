//go:build !windows

package supervisor

import (
	"errors"
	"os"
	"os/exec"
	"syscall"
)

// setProcGroupAttr puts the proxy in its own process group so a Ctrl+C aimed
// at the caller's terminal does not reach it behind the supervisor's back.
func setProcGroupAttr(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{
		Setpgid: true,
	}
}

// interrupt asks the process to shut down.
func interrupt(process *os.Process) error {
	return process.Signal(os.Interrupt)
}

// textBusy reports an exec that raced with a writer still holding the binary open.
func textBusy(err error) bool {
	return errors.Is(err, syscall.ETXTBSY)
}
