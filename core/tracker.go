package core

import (
	"golang.org/x/sys/unix"

	"github.com/josephlewis42/picosh/core/logger"
)

// Reaped is one terminated background process and how it ended.
type Reaped struct {
	Record *ProcessRecord
	Status ExitStatus
}

// Tracker owns the set of outstanding background processes and performs all
// waiting for the shell: blocking for foreground children, non-blocking
// polls for background ones.
//
// Everything here runs on the shell's single control thread. Launching and
// reaping are strictly sequential within one loop iteration, so the
// outstanding set needs no locking.
type Tracker struct {
	outstanding []*ProcessRecord
	log         *logger.Logger
}

// NewTracker returns a tracker with an empty outstanding set.
func NewTracker(log *logger.Logger) *Tracker {
	if log == nil {
		log = logger.Nop()
	}
	return &Tracker{log: log}
}

// Add registers a background record for later reaping.
func (t *Tracker) Add(rec *ProcessRecord) {
	t.outstanding = append(t.outstanding, rec)
}

// Outstanding reports how many background processes have not been reaped.
func (t *Tracker) Outstanding() int {
	return len(t.outstanding)
}

// WaitForeground blocks until exactly rec's process terminates and returns
// its termination status. The record is consumed; it is never tracked.
func (t *Tracker) WaitForeground(rec *ProcessRecord) ExitStatus {
	status := waitBlocking(rec.PID)
	t.log.ProcessReaped(rec.PID, status.Render(), false)
	return status
}

// ReapBackground polls every outstanding record once without blocking,
// removes the ones that have terminated and returns their reports. Calling
// it with nothing outstanding is a no-op. The order of the reports among
// simultaneously terminated processes is whatever the OS gives us.
func (t *Tracker) ReapBackground() []Reaped {
	var reaped []Reaped
	kept := t.outstanding[:0]
	for _, rec := range t.outstanding {
		var ws unix.WaitStatus
		wpid, err := unix.Wait4(rec.PID, &ws, unix.WNOHANG, nil)
		switch {
		case err == unix.EINTR:
			kept = append(kept, rec)
		case err != nil:
			// ECHILD: someone already collected it. Drop the record
			// rather than poll a dead pid forever.
			t.log.ReapError(rec.PID, err)
		case wpid == 0:
			kept = append(kept, rec)
		default:
			status := statusFromWait(ws)
			t.log.ProcessReaped(rec.PID, status.Render(), true)
			reaped = append(reaped, Reaped{Record: rec, Status: status})
		}
	}
	t.outstanding = kept
	return reaped
}

// Drain blocks until every outstanding background process has terminated,
// reporting each one, and returns the reports in the order they were
// collected. The shell calls this exactly once, on its way out, so no child
// is left behind as a zombie.
func (t *Tracker) Drain() []Reaped {
	var reaped []Reaped
	for _, rec := range t.outstanding {
		status := waitBlocking(rec.PID)
		t.log.ProcessReaped(rec.PID, status.Render(), true)
		reaped = append(reaped, Reaped{Record: rec, Status: status})
	}
	t.outstanding = nil
	return reaped
}

func waitBlocking(pid int) ExitStatus {
	var ws unix.WaitStatus
	for {
		_, err := unix.Wait4(pid, &ws, 0, nil)
		if err == unix.EINTR {
			continue
		}
		if err != nil {
			// ECHILD or similar; nothing more to observe.
			return ExitStatus{Code: 1}
		}
		return statusFromWait(ws)
	}
}
