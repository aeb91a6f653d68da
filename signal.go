package ptyproc

import (
	"errors"
	"fmt"
	"syscall"
	"time"

	"golang.org/x/sys/unix"
)

// Signaling delivers signals to a child and drives the
// graceful-then-forceful termination sequence.
type Signaling struct {
	pid     int
	reaper  *Reaper
	timeout time.Duration
}

// NewSignaling returns a Signaling for pid, polling with the given
// per-stage timeout during Exit.
func NewSignaling(pid int, reaper *Reaper, timeout time.Duration) *Signaling {
	return &Signaling{pid: pid, reaper: reaper, timeout: timeout}
}

// Kill sends signum to the child pid. If the pid no longer exists and
// a terminal status has already been observed, this is not an error:
// delivering a signal to an already-reaped child is idempotent.
// Otherwise ESRCH is surfaced as ErrNoSuchProcess.
func (s *Signaling) Kill(signum syscall.Signal) error {
	err := unix.Kill(s.pid, signum)
	if err == nil {
		return nil
	}
	if err == unix.ESRCH {
		if alive, statErr := s.reaper.IsAlive(); statErr == nil && !alive {
			return nil
		}
		return fmt.Errorf("%w: pid %d", ErrNoSuchProcess, s.pid)
	}
	return fmt.Errorf("ptyproc: kill pid %d: %w", s.pid, err)
}

// SignalGroup sends signum to the child's process group, using the
// negative-pid convention. The child must be a process-group leader
// (ChildLauncher always starts one via Setsid) for this to reach any
// grandchildren it spawned.
func (s *Signaling) SignalGroup(signum syscall.Signal) error {
	if err := unix.Kill(-s.pid, signum); err != nil {
		if err == unix.ESRCH {
			return nil
		}
		return fmt.Errorf("ptyproc: kill -%d: %w", s.pid, err)
	}
	return nil
}

// Exit runs the graceful-then-forceful termination ladder: SIGHUP,
// then SIGCONT+SIGTERM, then (if force) SIGKILL with a blocking wait.
// Returns true once the child has been reaped; false if it is still
// alive and force was false, or if it was already reaped before Exit
// was called — the two cases are not distinguished in the boolean.
func (s *Signaling) Exit(force bool) (bool, error) {
	alive, err := s.reaper.IsAlive()
	if err != nil {
		return false, err
	}
	if !alive {
		return false, nil
	}

	if err := s.Kill(unix.SIGHUP); err != nil && !errors.Is(err, ErrNoSuchProcess) {
		return false, err
	}
	if reaped, err := s.pollUntilReaped(s.timeout); err != nil {
		return false, err
	} else if reaped {
		return true, nil
	}

	if err := s.Kill(unix.SIGCONT); err != nil && !errors.Is(err, ErrNoSuchProcess) {
		return false, err
	}
	if err := s.Kill(unix.SIGTERM); err != nil && !errors.Is(err, ErrNoSuchProcess) {
		return false, err
	}
	if reaped, err := s.pollUntilReaped(s.timeout); err != nil {
		return false, err
	} else if reaped {
		return true, nil
	}

	if !force {
		return false, nil
	}

	if err := s.Kill(unix.SIGKILL); err != nil && !errors.Is(err, ErrNoSuchProcess) {
		return false, err
	}
	if _, err := s.reaper.Wait(); err != nil {
		return false, err
	}
	return true, nil
}

// pollUntilReaped polls Status (non-blocking) every millisecond until
// a terminal status is observed or timeout elapses.
func (s *Signaling) pollUntilReaped(timeout time.Duration) (bool, error) {
	deadline := time.Now().Add(timeout)
	for {
		status, err := s.reaper.Status()
		if err != nil {
			return false, err
		}
		if status.IsTerminal() {
			return true, nil
		}
		if time.Now().After(deadline) {
			return false, nil
		}
		time.Sleep(time.Millisecond)
	}
}
