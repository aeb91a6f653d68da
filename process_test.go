package ptyproc

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const catPath = "/bin/cat"
const sleepPath = "/bin/sleep"
const truePath = "/bin/true"

// Spawn cat with echo on, terminate it, and verify both the local
// echo and cat's own echo show up before the child is reaped.
func TestCatEchoOnTerminate(t *testing.T) {
	spec := DefaultCommandSpec(catPath)
	spec.EchoOffAtStart = false

	proc, err := Spawn(spec)
	require.NoError(t, err)

	_, err = proc.Terminal().SetEcho(true)
	require.NoError(t, err)

	_, err = proc.Send([]byte("hello\n"))
	require.NoError(t, err)

	buf := make([]byte, 128)
	n := readWithDeadline(t, proc, buf, time.Second)
	assert.Equal(t, "hello\r\nhello\r\n", string(buf[:n]))

	reaped, err := proc.Signal().Exit(true)
	require.NoError(t, err)
	assert.True(t, reaped)

	status, err := proc.Status()
	require.NoError(t, err)
	assert.True(t, status.IsTerminal())
}

// Spawn cat with echo off and verify only cat's own output appears.
func TestCatEchoOff(t *testing.T) {
	spec := DefaultCommandSpec(catPath)
	spec.EchoOffAtStart = true

	proc, err := Spawn(spec)
	require.NoError(t, err)
	defer proc.Close()

	_, err = proc.Send([]byte("ping\n"))
	require.NoError(t, err)

	buf := make([]byte, 128)
	n := readWithDeadline(t, proc, buf, time.Second)
	assert.Equal(t, "ping\r\n", string(buf[:n]))

	eof, err := proc.Terminal().GetEOFChar()
	require.NoError(t, err)
	assert.Equal(t, byte(0x04), eof)
}

// SendControl('d') writes EOF, which closes cat's stdin and lets it exit.
func TestSendControlDClosesCat(t *testing.T) {
	proc, err := Spawn(DefaultCommandSpec(catPath))
	require.NoError(t, err)
	defer proc.Close()

	_, err = proc.SendControl('d')
	require.NoError(t, err)

	done := make(chan ChildStatus, 1)
	go func() {
		s, _ := proc.Wait()
		done <- s
	}()

	select {
	case s := <-done:
		assert.Equal(t, Exited, s.Kind)
		assert.Equal(t, 0, s.ExitCode)
	case <-time.After(time.Second):
		t.Fatal("wait did not return within 1s")
	}
}

// Window size set via SetWindowSize must read back unchanged.
func TestWindowSizeRoundTrip(t *testing.T) {
	proc, err := Spawn(DefaultCommandSpec(catPath))
	require.NoError(t, err)
	defer proc.Close()

	want := WindowSize{Rows: 24, Cols: 80, XPixel: 0, YPixel: 0}
	require.NoError(t, proc.Terminal().SetWindowSize(want))

	got, err := proc.Terminal().WindowSize()
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

// A child that ignores nothing should be reaped well within the
// termination ladder's timeout budget.
func TestKillPathSleepSignaled(t *testing.T) {
	proc, err := Spawn(DefaultCommandSpec(sleepPath, "3600"))
	require.NoError(t, err)
	defer proc.Close()

	alive, err := proc.IsAlive()
	require.NoError(t, err)
	assert.True(t, alive)

	start := time.Now()
	reaped, err := proc.Signal().Exit(false)
	require.NoError(t, err)
	assert.True(t, reaped)
	assert.LessOrEqual(t, time.Since(start), 2*defaultTerminateTimeout+500*time.Millisecond)

	status, err := proc.Status()
	require.NoError(t, err)
	assert.Equal(t, Signaled, status.Kind)
}

// Two independently spawned children must not see each other's input.
func TestDoubleSpawnIsolation(t *testing.T) {
	a, err := Spawn(DefaultCommandSpec(catPath))
	require.NoError(t, err)
	defer a.Close()

	b, err := Spawn(DefaultCommandSpec(catPath))
	require.NoError(t, err)
	defer b.Close()

	_, err = a.Send([]byte("only-a\n"))
	require.NoError(t, err)

	buf := make([]byte, 128)
	n := readWithDeadline(t, a, buf, time.Second)
	assert.Contains(t, string(buf[:n]), "only-a")

	bStream, err := b.GetStream()
	require.NoError(t, err)
	defer bStream.Close()
	require.NoError(t, bStream.SetBlocking(false))

	bBuf := make([]byte, 128)
	_, err = bStream.Read(bBuf)
	assert.ErrorIs(t, err, ErrWouldBlock, "b must not see bytes written to a")
}

// Waiting on an already-reaped child must return the same status
// instead of erroring or blocking forever.
func TestDoubleReapSafety(t *testing.T) {
	proc, err := Spawn(DefaultCommandSpec(truePath))
	require.NoError(t, err)
	defer proc.Close()

	s1, err := proc.Wait()
	require.NoError(t, err)

	s2, err := proc.Wait()
	require.NoError(t, err)

	assert.Equal(t, s1, s2)
}

// SetEcho must round-trip through IsEcho.
func TestSetEchoRoundTrip(t *testing.T) {
	proc, err := Spawn(DefaultCommandSpec(catPath))
	require.NoError(t, err)
	defer proc.Close()

	for _, want := range []bool{true, false, true} {
		_, err := proc.Terminal().SetEcho(want)
		require.NoError(t, err)
		got, err := proc.Terminal().IsEcho()
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
}

// readWithDeadline polls a fresh non-blocking stream until buf is
// filled, a real error occurs, or timeout passes. Used instead of a
// blocking read so a behavior mismatch produces a test failure rather
// than a hang.
func readWithDeadline(t *testing.T, proc *PtyProcess, buf []byte, timeout time.Duration) int {
	t.Helper()
	stream, err := proc.GetStream()
	require.NoError(t, err)
	defer stream.Close()
	require.NoError(t, stream.SetBlocking(false))

	deadline := time.Now().Add(timeout)
	total := 0
	for total < len(buf) && time.Now().Before(deadline) {
		n, err := stream.Read(buf[total:])
		if err == ErrWouldBlock {
			time.Sleep(5 * time.Millisecond)
			continue
		}
		total += n
		if err != nil {
			break
		}
	}
	return total
}
