// Package ptyproc gives a controlling program full command over a
// child process running under a Unix pseudoterminal: it allocates a
// pty pair, spawns an arbitrary command as the session leader attached
// to the slave, and exposes the master as a byte stream alongside
// terminal-mode control, signal delivery, and wait-status reaping.
//
// The package does not parse escape sequences, emulate a terminal, or
// buffer beyond what the kernel pty driver already does — it is a
// thin, synchronous wrapper around the underlying syscalls, left
// mechanism-only so callers can layer expect-style scripting, an
// async reactor, or anything else on top.
package ptyproc

// Spawn opens a pty pair and starts spec as its session leader,
// returning the composed PtyProcess facade. It is a convenience
// wrapper around ChildLauncher{}.Spawn.
func Spawn(spec CommandSpec) (*PtyProcess, error) {
	return ChildLauncher{}.Spawn(spec)
}
