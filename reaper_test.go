package ptyproc

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sys/unix"
)

// A PtyProcess closed without an explicit Wait still leaves no
// zombie: Close drives Signaling.Exit, which does not return until a
// wait4 has collected the child's status, so the kernel has already
// released the pid.
func TestCloseLeavesNoZombie(t *testing.T) {
	proc, err := Spawn(DefaultCommandSpec(sleepPath, "3600"))
	require.NoError(t, err)

	pid := proc.Pid()
	require.NoError(t, proc.Close())

	var ws unix.WaitStatus
	_, err = unix.Wait4(pid, &ws, unix.WNOHANG, nil)
	assert.ErrorIs(t, err, unix.ECHILD, "pid must already be reaped, not merely killed")
}

// Stopped/Continued transitions are observable but not terminal.
func TestStoppedIsNotTerminal(t *testing.T) {
	proc, err := Spawn(DefaultCommandSpec(sleepPath, "3600"))
	require.NoError(t, err)
	defer proc.Close()

	require.NoError(t, proc.Signal().Kill(unix.SIGSTOP))

	var status ChildStatus
	require.Eventually(t, func() bool {
		status, err = proc.Status()
		return err == nil && status.Kind == Stopped
	}, time.Second, 5*time.Millisecond)

	assert.False(t, status.IsTerminal())

	alive, err := proc.IsAlive()
	require.NoError(t, err)
	assert.True(t, alive)

	require.NoError(t, proc.Signal().Kill(unix.SIGCONT))
}
