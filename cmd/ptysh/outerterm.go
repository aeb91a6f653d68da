package main

import (
	"os"

	"github.com/containerd/console"
	"github.com/ctrlterm/ptyproc"
	"golang.org/x/sys/unix"
)

// outerTerm wraps the caller's own terminal (ptysh's stdin), which is
// outside ptyproc's scope entirely: ptyproc only ever speaks to the
// pty it allocated for the child. containerd/console handles the
// raw-mode and sizing ioctls for the outer terminal instead of
// hand-rolling them a second time here.
type outerTerm struct {
	con console.Console
}

func newOuterTerm() (*outerTerm, error) {
	con := console.Current()
	return &outerTerm{con: con}, nil
}

// size reads the outer terminal's current size to seed the inner
// pty's window size. Falls back to a direct TIOCGWINSZ on stdin if the
// console package's own Size() fails (e.g. stdin is a plain pipe
// wrapped in a console.Console that still answers ioctls).
func (o *outerTerm) size() (ptyproc.WindowSize, error) {
	ws, err := o.con.Size()
	if err != nil {
		raw, ioctlErr := unix.IoctlGetWinsize(int(o.fd()), unix.TIOCGWINSZ)
		if ioctlErr != nil {
			return ptyproc.WindowSize{}, err
		}
		return ptyproc.WindowSize{Rows: raw.Row, Cols: raw.Col, XPixel: raw.Xpixel, YPixel: raw.Ypixel}, nil
	}
	return ptyproc.WindowSize{Rows: uint16(ws.Height), Cols: uint16(ws.Width)}, nil
}

// setRaw puts the outer terminal into raw mode.
func (o *outerTerm) setRaw() error {
	return o.con.SetRaw()
}

// restore undoes setRaw.
func (o *outerTerm) restore() error {
	return o.con.Reset()
}

// fd returns the raw fd backing the outer terminal, used as a
// fallback when the console package's own ioctls aren't available.
func (o *outerTerm) fd() uintptr {
	return os.Stdin.Fd()
}
