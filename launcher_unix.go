//go:build darwin || linux || freebsd || netbsd || openbsd || dragonfly

package ptyproc

import (
	"fmt"
	"os"
	"os/exec"
	"sort"
	"sync"
	"syscall"
)

// ChildLauncher spawns commands attached to a freshly allocated pty
// pair.
//
// The parent-side sequence below is built on os/exec.Cmd and
// syscall.SysProcAttr rather than a hand-rolled fork/exec: Go's
// runtime cannot safely fork a multi-threaded process and continue
// running arbitrary Go code in the child before exec (no goroutine
// scheduler, no allocator, no signal-safe window to do anything in),
// so os/exec's own forkAndExecInChild — restricted to a small,
// deliberately enumerated set of async-signal-safe syscalls — does
// this work inside the Go runtime's supervision instead. ChildLauncher
// configures it to start a new session, acquire the pty as its
// controlling terminal via Setctty, wire stdio to the slave, reset
// signal dispositions to default (os/exec always does this for the
// child), optionally chdir, then execve.
type ChildLauncher struct{}

// umaskMu serializes the Umask/Spawn critical section: syscall.Umask
// is process-wide, so concurrent spawns specifying different Umask
// values race against each other. The library does not attempt
// anything fancier here.
var umaskMu sync.Mutex

// Spawn opens a new PtyPair, starts spec as a session leader attached
// to its slave, and returns the resulting PtyProcess. On any
// pre-fork failure nothing leaks; on any post-fork parent-side
// failure the just-spawned child is killed and reaped before Spawn
// returns.
func (ChildLauncher) Spawn(spec CommandSpec) (*PtyProcess, error) {
	pair, err := OpenPtyPair()
	if err != nil {
		return nil, err
	}

	if spec.EchoOffAtStart {
		tc := NewTerminalControl(pair.Slave.Fd())
		if _, err := tc.SetEcho(false); err != nil {
			pair.Close()
			return nil, fmt.Errorf("%w: clear echo before start: %v", ErrSpawn, err)
		}
	}

	if (spec.InitialSize != WindowSize{}) {
		if err := NewTerminalControl(pair.Slave.Fd()).SetWindowSize(spec.InitialSize); err != nil {
			pair.Close()
			return nil, fmt.Errorf("%w: set initial window size: %v", ErrSpawn, err)
		}
	}

	cmd := exec.Command(spec.Path, spec.Args...)
	cmd.Dir = spec.Dir
	cmd.Env = buildEnv(spec.Env)
	cmd.Stdin = pair.Slave
	cmd.Stdout = pair.Slave
	cmd.Stderr = pair.Slave
	cmd.SysProcAttr = &syscall.SysProcAttr{
		Setsid:  true,
		Setctty: true,
		Ctty:    0, // fd 0 in the child is the slave (Stdin)
	}

	if spec.Umask != nil {
		umaskMu.Lock()
		old := syscall.Umask(*spec.Umask)
		err = cmd.Start()
		syscall.Umask(old)
		umaskMu.Unlock()
	} else {
		err = cmd.Start()
	}
	if err != nil {
		pair.Close()
		return nil, fmt.Errorf("%w: %v", ErrSpawn, err)
	}

	// Parent no longer needs the slave; the child holds its own copy
	// from the fork.
	pair.Slave.Close()
	pair.Slave = nil

	proc, err := newPtyProcess(pair.Master, cmd.Process.Pid)
	if err != nil {
		// Post-fork parent-side failure: kill+reap before returning.
		_ = cmd.Process.Kill()
		_, _ = cmd.Process.Wait()
		pair.Master.Close()
		return nil, fmt.Errorf("%w: %v", ErrSpawn, err)
	}
	return proc, nil
}

// buildEnv returns the child's environment: os.Environ() if env is
// nil, otherwise env flattened into "K=V" pairs in a stable order.
func buildEnv(env map[string]string) []string {
	if env == nil {
		return os.Environ()
	}
	keys := make([]string, 0, len(env))
	for k := range env {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make([]string, 0, len(env))
	for _, k := range keys {
		out = append(out, k+"="+env[k])
	}
	return out
}
