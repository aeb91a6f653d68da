package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
)

// sessionLock guards one pty session against a second ptysh instance
// racing it over the same lock path, using an advisory file lock that
// holds even if a prior instance died without cleaning up after itself.
type sessionLock struct {
	fl *flock.Flock
}

func lockPath(name string) (string, error) {
	dir := filepath.Join(os.TempDir(), "ptysh")
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return "", err
	}
	return filepath.Join(dir, name+".lock"), nil
}

// acquireSessionLock tries to take an exclusive, non-blocking lock for
// name, returning an error if another ptysh already holds it.
func acquireSessionLock(name string) (*sessionLock, error) {
	path, err := lockPath(name)
	if err != nil {
		return nil, err
	}
	fl := flock.New(path)
	ok, err := fl.TryLock()
	if err != nil {
		return nil, fmt.Errorf("ptysh: locking session %q: %w", name, err)
	}
	if !ok {
		return nil, fmt.Errorf("ptysh: session %q is already attached elsewhere", name)
	}
	return &sessionLock{fl: fl}, nil
}

func (l *sessionLock) release() error {
	return l.fl.Unlock()
}
