package ptyproc

import "errors"

// Error kinds callers can match against with errors.Is. Wrapped kernel
// errnos stay attached via %w so errors.Is/As on the underlying
// syscall error still works.
var (
	// ErrPtyAllocation covers any failure allocating or preparing the
	// master/slave pty pair: open, grant, unlock, or ptsname.
	ErrPtyAllocation = errors.New("ptyproc: pty allocation failed")

	// ErrSpawn covers fork or any pre-exec parent-side syscall failure.
	// Go's own exec machinery also folds a child-side exec failure
	// into this same Start() error, so there is no separate exec-only
	// error kind to distinguish.
	ErrSpawn = errors.New("ptyproc: spawn failed")

	// ErrTermios covers tcgetattr/tcsetattr/ioctl failures on mode changes.
	ErrTermios = errors.New("ptyproc: termios operation failed")

	// ErrNoSuchProcess is returned by Kill when the pid no longer exists
	// and no terminal status has been observed yet (so the absence is
	// unexpected rather than the normal post-reap state).
	ErrNoSuchProcess = errors.New("ptyproc: no such process")

	// ErrWouldBlock is returned by non-blocking reads/writes that would
	// otherwise block, distinguishing "no data yet" from a real EOF.
	ErrWouldBlock = errors.New("ptyproc: operation would block")

	// ErrClosed is returned by operations on a PtyStream or PtyProcess
	// after its file descriptor has been closed.
	ErrClosed = errors.New("ptyproc: use of closed pty")
)
