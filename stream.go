package ptyproc

import (
	"fmt"

	"golang.org/x/sys/unix"
)

// PtyStream owns one duplicated master fd. Closing a stream never
// closes the PtyProcess's own master fd — TryClone always hands out a
// fresh dup(2) of the underlying fd. A dup shares its open file
// description with the master, so the blocking mode is shared too (see
// SetBlocking).
type PtyStream struct {
	fd          int
	childExited func() bool
	closed      bool
}

// newPtyStream wraps fd (already owned exclusively by the new stream)
// and a predicate the stream consults to normalize Linux's EIO-on-
// read-after-slave-close into a clean EOF.
func newPtyStream(fd int, childExited func() bool) *PtyStream {
	return &PtyStream{fd: fd, childExited: childExited}
}

// dupMasterStream duplicates fd and returns a new stream over the
// duplicate, leaving fd itself untouched.
func dupMasterStream(fd int, childExited func() bool) (*PtyStream, error) {
	newFd, err := unix.Dup(fd)
	if err != nil {
		return nil, fmt.Errorf("ptyproc: dup master fd: %w", err)
	}
	if _, err := unix.FcntlInt(uintptr(newFd), unix.F_SETFD, unix.FD_CLOEXEC); err != nil {
		unix.Close(newFd)
		return nil, fmt.Errorf("ptyproc: fcntl F_SETFD on dup'd master: %w", err)
	}
	return newPtyStream(newFd, childExited), nil
}

// Fd returns the raw file descriptor. The caller must not close it
// directly; use Close.
func (s *PtyStream) Fd() int { return s.fd }

// SetBlocking toggles O_NONBLOCK on this stream's fd. O_NONBLOCK lives
// on the open file description that every dup of the master shares, so
// the change also applies to the PtyProcess's own master fd and to every
// other PtyStream over it; it is not per-stream state.
func (s *PtyStream) SetBlocking(blocking bool) error {
	if s.closed {
		return ErrClosed
	}
	return setNonblock(s.fd, !blocking)
}

// Read reads from the master. Non-blocking reads that would block
// return ErrWouldBlock rather than (0, nil), preserving standard
// stream semantics. A platform-specific helper normalizes Linux's
// EIO-on-read-after-slave-close into a clean end-of-stream, but only
// once the child has actually been observed to exit; otherwise EIO is
// a real fault and is surfaced.
func (s *PtyStream) Read(p []byte) (int, error) {
	if s.closed {
		return 0, ErrClosed
	}
	n, err := unix.Read(s.fd, p)
	if err != nil {
		if err == unix.EAGAIN {
			return 0, ErrWouldBlock
		}
		return normalizeReadError(n, err, s.childExited())
	}
	return n, nil
}

// Write writes to the master. A write after the slave has gone raises
// EIO; the library installs no SIGPIPE handler, so the error simply
// surfaces.
func (s *PtyStream) Write(p []byte) (int, error) {
	if s.closed {
		return 0, ErrClosed
	}
	n, err := unix.Write(s.fd, p)
	if err != nil {
		if err == unix.EAGAIN {
			return n, ErrWouldBlock
		}
		return n, err
	}
	return n, nil
}

// Flush is a no-op: buffering policy beyond what the kernel pty driver
// provides is out of scope.
func (s *PtyStream) Flush() error { return nil }

// TryClone duplicates this stream's fd, returning an independently
// closable PtyStream. The clone shares the blocking mode (see
// SetBlocking).
func (s *PtyStream) TryClone() (*PtyStream, error) {
	if s.closed {
		return nil, ErrClosed
	}
	return dupMasterStream(s.fd, s.childExited)
}

// Close closes this stream's fd. It does not affect the PtyProcess's
// own master fd or any other clone.
func (s *PtyStream) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	return unix.Close(s.fd)
}
