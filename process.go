package ptyproc

import (
	"fmt"
	"os"
	"runtime"
	"sync"
	"time"

	"golang.org/x/sys/unix"
)

// defaultTerminateTimeout is the per-stage poll timeout Signaling.Exit
// waits before escalating.
const defaultTerminateTimeout = 100 * time.Millisecond

// PtyProcess is the facade composing PtyPair, Signaling, Reaper,
// TerminalControl and PtyStream over one spawned child.
//
// State machine: Spawned -> Running <-> Stopped <-> Continued ->
// (Exited | Signaled) -> Reaped. Terminal states are absorbing;
// Reaped is entered the moment a terminal ChildStatus is observed by
// the embedded Reaper, which this type consults rather than
// duplicating.
type PtyProcess struct {
	master   *os.File // kept referenced for the process's lifetime so masterFd stays open
	masterFd int
	pid      int

	term      *TerminalControl
	reaper    *Reaper
	signaling *Signaling

	mu               sync.Mutex // serializes writes to master across goroutines sharing one master fd
	eofByte          byte
	intrByte         byte
	lineTerminator   string
	terminateTimeout time.Duration
	origTermios      *unix.Termios // non-nil once EnterRawMode has stashed a snapshot

	closed bool
}

// newPtyProcess wires up a PtyProcess around an already-open master
// and a just-started child pid.
func newPtyProcess(master *os.File, pid int) (*PtyProcess, error) {
	if pid <= 0 {
		return nil, fmt.Errorf("ptyproc: invalid pid %d", pid)
	}
	p := &PtyProcess{
		master:           master,
		masterFd:         int(master.Fd()),
		pid:              pid,
		eofByte:          0x04,
		intrByte:         0x03,
		lineTerminator:   "\n",
		terminateTimeout: defaultTerminateTimeout,
	}
	p.term = NewTerminalControl(master.Fd())
	p.reaper = NewReaper(pid)
	p.signaling = NewSignaling(pid, p.reaper, p.terminateTimeout)

	// The finalizer is a safety net, never the documented path: if the
	// caller never calls Close, it best-effort terminates and reaps
	// within the configured timeout, then closes the master. It must
	// never panic.
	runtime.SetFinalizer(p, (*PtyProcess).finalize)
	return p, nil
}

// Pid returns the child's pid. Stable for the lifetime of the object.
func (p *PtyProcess) Pid() int { return p.pid }

// MasterRawFd returns the master fd. The caller must not close it;
// use GetStream for an independently closable handle.
func (p *PtyProcess) MasterRawFd() int { return p.masterFd }

// Terminal returns the TerminalControl bound to this process's master.
func (p *PtyProcess) Terminal() *TerminalControl { return p.term }

// Signal returns the Signaling bound to this process.
func (p *PtyProcess) Signal() *Signaling { return p.signaling }

// SetTerminateTimeout overrides the per-stage poll timeout Signal().Exit
// waits before escalating (default defaultTerminateTimeout). Must be
// called before the first Exit call to take effect.
func (p *PtyProcess) SetTerminateTimeout(d time.Duration) {
	p.terminateTimeout = d
	p.signaling = NewSignaling(p.pid, p.reaper, d)
}

// Reaper returns the Reaper bound to this process.
func (p *PtyProcess) Reaper() *Reaper { return p.reaper }

// Status is a convenience forward to Reaper().Status().
func (p *PtyProcess) Status() (ChildStatus, error) { return p.reaper.Status() }

// Wait is a convenience forward to Reaper().Wait().
func (p *PtyProcess) Wait() (ChildStatus, error) { return p.reaper.Wait() }

// IsAlive is a convenience forward to Reaper().IsAlive().
func (p *PtyProcess) IsAlive() (bool, error) { return p.reaper.IsAlive() }

// GetStream returns a new PtyStream over an independent dup of the
// master fd.
func (p *PtyProcess) GetStream() (*PtyStream, error) {
	return dupMasterStream(p.masterFd, p.reaper.terminalReached)
}

// EnterRawMode puts the pty into raw mode, stashing the prior termios
// inside the PtyProcess for RestoreMode.
func (p *PtyProcess) EnterRawMode() error {
	saved, err := p.term.EnterRawMode()
	if err != nil {
		return err
	}
	p.origTermios = saved
	return nil
}

// RestoreMode restores the termios snapshot captured by EnterRawMode,
// if any.
func (p *PtyProcess) RestoreMode() error {
	if p.origTermios == nil {
		return nil
	}
	return p.term.RestoreMode(p.origTermios)
}

// SetLineTerminator overrides the default "\n" appended by SendLine.
func (p *PtyProcess) SetLineTerminator(terminator string) { p.lineTerminator = terminator }

// SetEOFChar overrides the byte SendEOF writes (default 0x04).
func (p *PtyProcess) SetEOFChar(b byte) { p.eofByte = b }

// SetIntrChar overrides the byte SendIntr writes (default 0x03).
func (p *PtyProcess) SetIntrChar(b byte) { p.intrByte = b }

// Send writes data to the master, as if typed.
func (p *PtyProcess) Send(data []byte) (int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return 0, ErrClosed
	}
	n, err := unix.Write(p.masterFd, data)
	if err != nil {
		return n, err
	}
	return n, nil
}

// SendLine writes data followed by the configured line terminator
// (default "\n").
func (p *PtyProcess) SendLine(data []byte) (int, error) {
	return p.Send(append(append([]byte{}, data...), p.lineTerminator...))
}

// SendControl translates a 7-bit letter (e.g. 'c', 'd', 'z') to its
// corresponding control byte (e.g. 'c' -> 0x03) and writes it.
func (p *PtyProcess) SendControl(letter byte) (int, error) {
	upper := letter
	if upper >= 'a' && upper <= 'z' {
		upper -= 'a' - 'A'
	}
	return p.Send([]byte{upper & 0x1f})
}

// SendEOF writes the configured EOF byte (default 0x04).
func (p *PtyProcess) SendEOF() (int, error) { return p.Send([]byte{p.eofByte}) }

// SendIntr writes the configured INTR byte (default 0x03).
func (p *PtyProcess) SendIntr() (int, error) { return p.Send([]byte{p.intrByte}) }

// Close is the documented shutdown path: best-effort
// graceful-then-forceful termination within the configured timeout,
// then closes the master. Idempotent.
func (p *PtyProcess) Close() error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	p.mu.Unlock()

	if alive, err := p.reaper.IsAlive(); err == nil && alive {
		_, _ = p.signaling.Exit(true)
	}
	runtime.SetFinalizer(p, nil)
	return p.master.Close()
}

// finalize is the finalizer backstop: it must never panic and never
// surfaces an error.
func (p *PtyProcess) finalize() {
	defer func() { _ = recover() }()
	_ = p.Close()
}
