package ptyproc

import (
	"fmt"

	"golang.org/x/sys/unix"
)

// StatusKind tags the variant held by a ChildStatus.
type StatusKind int

const (
	// Running means no terminal or stop/continue transition has been
	// observed yet; a check that sees no change repeats the last
	// observed kind rather than reporting Running.
	Running StatusKind = iota
	// Exited means the child called exit() or returned from main.
	Exited
	// Signaled means the child was terminated by a signal.
	Signaled
	// Stopped means the child is job-control stopped (e.g. SIGTSTP).
	Stopped
	// Continued means the child resumed from a stop (SIGCONT).
	Continued
)

func (k StatusKind) String() string {
	switch k {
	case Running:
		return "Running"
	case Exited:
		return "Exited"
	case Signaled:
		return "Signaled"
	case Stopped:
		return "Stopped"
	case Continued:
		return "Continued"
	default:
		return "Unknown"
	}
}

// ChildStatus is the tagged-variant translation of a kernel wait status.
// Only the fields relevant to Kind are meaningful.
type ChildStatus struct {
	Kind       StatusKind
	ExitCode   int  // valid when Kind == Exited, 0..255
	Signum     int  // valid when Kind == Signaled or Stopped
	CoreDumped bool // valid when Kind == Signaled
}

// IsTerminal reports whether this status ends the child's lifecycle
// (Exited or Signaled); Stopped and Continued are not terminal.
func (s ChildStatus) IsTerminal() bool {
	return s.Kind == Exited || s.Kind == Signaled
}

func (s ChildStatus) String() string {
	switch s.Kind {
	case Exited:
		return fmt.Sprintf("Exited(%d)", s.ExitCode)
	case Signaled:
		return fmt.Sprintf("Signaled(%d, core_dumped=%t)", s.Signum, s.CoreDumped)
	case Stopped:
		return fmt.Sprintf("Stopped(%d)", s.Signum)
	default:
		return s.Kind.String()
	}
}

// statusFromWaitStatus translates a unix.WaitStatus as returned by
// unix.Wait4 into a ChildStatus. Precondition: the status reflects an
// actual state transition (the caller distinguishes "no change yet" by
// pid==0 from Wait4, not by calling this on a stale status).
func statusFromWaitStatus(ws unix.WaitStatus) ChildStatus {
	switch {
	case ws.Exited():
		return ChildStatus{Kind: Exited, ExitCode: ws.ExitStatus()}
	case ws.Signaled():
		return ChildStatus{Kind: Signaled, Signum: int(ws.Signal()), CoreDumped: ws.CoreDump()}
	case ws.Stopped():
		return ChildStatus{Kind: Stopped, Signum: int(ws.StopSignal())}
	case ws.Continued():
		return ChildStatus{Kind: Continued}
	default:
		return ChildStatus{Kind: Running}
	}
}
