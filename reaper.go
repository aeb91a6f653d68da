package ptyproc

import (
	"sync"

	"golang.org/x/sys/unix"
)

// Reaper collects wait status for a single child pid, caching the
// first terminal status it observes so a pid is never waited on twice.
type Reaper struct {
	pid int

	mu       sync.Mutex
	terminal *ChildStatus // nil until Exited/Signaled has been observed
	last     ChildStatus  // most recent status of any kind
}

// NewReaper returns a Reaper for pid. pid must be a direct child of
// the calling process.
func NewReaper(pid int) *Reaper {
	return &Reaper{pid: pid, last: ChildStatus{Kind: Running}}
}

// Status issues a non-blocking wait (WNOHANG|WUNTRACED|WCONTINUED) and
// returns the resulting ChildStatus. Once a terminal status has been
// observed, Status returns the cached value without calling wait4
// again.
func (r *Reaper) Status() (ChildStatus, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.statusLocked(unix.WNOHANG | unix.WUNTRACED | unix.WCONTINUED)
}

// Wait blocks until the child exits or is terminated by a signal
// (Stopped/Continued transitions do not satisfy Wait). EINTR is
// surfaced to the caller rather than retried, so external cancellation
// (e.g. a signal handler) can unblock it.
func (r *Reaper) Wait() (ChildStatus, error) {
	for {
		r.mu.Lock()
		if r.terminal != nil {
			s := *r.terminal
			r.mu.Unlock()
			return s, nil
		}
		r.mu.Unlock()

		r.mu.Lock()
		s, err := r.statusLocked(0)
		r.mu.Unlock()
		if err != nil {
			return ChildStatus{}, err
		}
		if s.IsTerminal() {
			return s, nil
		}
		// Stopped/Continued: keep blocking for a terminal transition.
	}
}

// terminalReached reports whether a terminal status has been cached,
// without issuing a new wait. Used by PtyStream to decide whether a
// Linux EIO-on-read is a normal end-of-stream or a real fault.
func (r *Reaper) terminalReached() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.terminal != nil
}

// IsAlive reports whether the child is Running, Stopped, or Continued.
func (r *Reaper) IsAlive() (bool, error) {
	s, err := r.Status()
	if err != nil {
		return false, err
	}
	return !s.IsTerminal(), nil
}

// statusLocked must be called with r.mu held.
func (r *Reaper) statusLocked(options int) (ChildStatus, error) {
	if r.terminal != nil {
		return *r.terminal, nil
	}

	var ws unix.WaitStatus
	wpid, err := unix.Wait4(r.pid, &ws, options, nil)
	if err != nil {
		if err == unix.EINTR {
			return ChildStatus{}, err
		}
		// ECHILD after a terminal status was already cached is handled
		// above. A terminal r.last is always cached in r.terminal too,
		// so ECHILD here (e.g. the pid was reaped out-of-band) is
		// returned to the caller.
		if err == unix.ECHILD && r.last.IsTerminal() {
			r.terminal = &r.last
			return r.last, nil
		}
		return ChildStatus{}, err
	}
	if wpid == 0 {
		// WNOHANG and nothing changed.
		return r.last, nil
	}

	s := statusFromWaitStatus(ws)
	r.last = s
	if s.IsTerminal() {
		r.terminal = &s
	}
	return s, nil
}
