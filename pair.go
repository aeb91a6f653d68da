package ptyproc

import (
	"fmt"
	"os"
)

// PtyPair is a freshly allocated master/slave pseudoterminal pair.
// Both fds are close-on-exec on the parent side (Go's os.OpenFile sets
// FD_CLOEXEC on every fd it opens; the NetBSD/OpenBSD backend sets it
// explicitly); the slave's CLOEXEC bit is cleared by the os/exec
// machinery ChildLauncher.Spawn uses, exactly for the fd it duplicates
// into the child, since the slave must not be CLOEXEC inside the
// child before exec.
type PtyPair struct {
	Master *os.File
	Slave  *os.File
	// Path is the slave's device path (e.g. "/dev/pts/3"), resolved the
	// way ptsname/ptsname_r would.
	Path string
}

// OpenPtyPair opens the platform's pty multiplexer, grants and unlocks
// the slave, and resolves its path. Any failure along the way is
// wrapped in ErrPtyAllocation.
func OpenPtyPair() (*PtyPair, error) {
	master, slave, path, err := platformOpenPTY()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPtyAllocation, err)
	}
	return &PtyPair{Master: master, Slave: slave, Path: path}, nil
}

// Close closes both ends of the pair. Safe to call after the slave has
// already been handed off to a child and closed on the parent side —
// each *os.File tracks its own closed state, so Close is idempotent
// per field even if called more than once.
func (p *PtyPair) Close() error {
	var errs []error
	if p.Master != nil {
		if err := p.Master.Close(); err != nil {
			errs = append(errs, err)
		}
		p.Master = nil
	}
	if p.Slave != nil {
		if err := p.Slave.Close(); err != nil {
			errs = append(errs, err)
		}
		p.Slave = nil
	}
	if len(errs) > 0 {
		return errs[0]
	}
	return nil
}
