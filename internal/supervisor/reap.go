package supervisor

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/mitchellh/go-ps"
)

// commLength is the longest executable name Linux reports for a process.
const commLength = 15

// TerminateByName kills every process running executable name, except the
// current process and the PIDs in keep. It returns how many were killed.
func TerminateByName(name string, keep ...int) (int, error) {
	processList, err := ps.Processes()
	if err != nil {
		return 0, fmt.Errorf("list processes: %w", err)
	}

	skip := make(map[int]struct{}, len(keep)+1)
	skip[os.Getpid()] = struct{}{}

	for _, pid := range keep {
		skip[pid] = struct{}{}
	}

	var killed int

	for _, process := range processList {
		if _, found := skip[process.Pid()]; found {
			continue
		}

		if !matchesExecutable(process.Executable(), name) {
			continue
		}

		if err = kill(process.Pid()); err != nil {
			return killed, err
		}

		killed++
	}

	return killed, nil
}

// TerminatePID kills pid if it still runs executable name.
// It reports whether a process was killed.
func TerminatePID(pid int, name string) (bool, error) {
	if pid <= 0 {
		return false, nil
	}

	process, err := ps.FindProcess(pid)
	if err != nil {
		return false, fmt.Errorf("find process %d: %w", pid, err)
	}

	if process == nil || !matchesExecutable(process.Executable(), name) {
		return false, nil
	}

	if err = kill(pid); err != nil {
		return false, err
	}

	return true, nil
}

func kill(pid int) error {
	runningProcess, err := os.FindProcess(pid)
	if err != nil {
		return err
	}

	if err = runningProcess.Kill(); err != nil && !errors.Is(err, os.ErrProcessDone) {
		return fmt.Errorf("kill process %d: %w", pid, err)
	}

	return nil
}

// matchesExecutable compares a reported executable name with name, allowing
// for the kernel truncating long names.
func matchesExecutable(executable, name string) bool {
	if executable == name {
		return true
	}

	return len(executable) == commLength && strings.HasPrefix(name, executable)
}
