package core

import (
	"fmt"

	"golang.org/x/sys/unix"
)

// ExitStatus is the observed termination of a child process. A process
// either exited on its own with a code or was killed by a signal; the two
// cases are reported differently and never conflated.
type ExitStatus struct {
	Code     int
	Signal   int
	Signaled bool
}

func statusFromWait(ws unix.WaitStatus) ExitStatus {
	if ws.Signaled() {
		return ExitStatus{Signal: int(ws.Signal()), Signaled: true}
	}
	return ExitStatus{Code: ws.ExitStatus()}
}

// Render formats the status the way the status builtin and the background
// completion reports present it.
func (s ExitStatus) Render() string {
	if s.Signaled {
		return fmt.Sprintf("terminated by signal %d", s.Signal)
	}
	return fmt.Sprintf("exited normally with code %d", s.Code)
}

// ExitCode collapses the status into a single code suitable for the shell's
// own exit. Signal deaths follow the usual 128+N convention.
func (s ExitStatus) ExitCode() int {
	if s.Signaled {
		return 128 + s.Signal
	}
	return s.Code
}
