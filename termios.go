package ptyproc

import (
	"fmt"

	"golang.org/x/sys/unix"
)

// TerminalControl queries and mutates the termios attributes of a pty
// slave, reached through the master fd. It is safe to construct
// directly around any open pty master fd; PtyProcess embeds one bound
// to its own master.
type TerminalControl struct {
	fd uintptr
}

// NewTerminalControl returns a TerminalControl operating on fd, which
// may be either end of a pty pair: the termios and window-size ioctls
// reach the same line discipline from both. PtyProcess binds one to its
// master; ChildLauncher.Spawn uses one on the slave before the child
// starts.
func NewTerminalControl(fd uintptr) *TerminalControl {
	return &TerminalControl{fd: fd}
}

func (t *TerminalControl) get() (*unix.Termios, error) {
	term, err := unix.IoctlGetTermios(int(t.fd), tcGetTermios)
	if err != nil {
		return nil, fmt.Errorf("%w: tcgetattr: %v", ErrTermios, err)
	}
	return term, nil
}

func (t *TerminalControl) set(term *unix.Termios, flush bool) error {
	req := uint(tcSetTermios)
	if flush {
		req = uint(tcSetTermiosFlush)
	}
	if err := unix.IoctlSetTermios(int(t.fd), req, term); err != nil {
		return fmt.Errorf("%w: tcsetattr: %v", ErrTermios, err)
	}
	return nil
}

// IsEcho reports whether ECHO is currently set.
func (t *TerminalControl) IsEcho() (bool, error) {
	term, err := t.get()
	if err != nil {
		return false, err
	}
	return term.Lflag&unix.ECHO != 0, nil
}

// SetEcho sets or clears ECHO, returning the previous value.
func (t *TerminalControl) SetEcho(on bool) (previous bool, err error) {
	term, err := t.get()
	if err != nil {
		return false, err
	}
	previous = term.Lflag&unix.ECHO != 0
	if on {
		term.Lflag |= unix.ECHO
	} else {
		term.Lflag &^= unix.ECHO
	}
	if err := t.set(term, false); err != nil {
		return previous, err
	}
	return previous, nil
}

// WindowSize reads the pty's current size via TIOCGWINSZ.
func (t *TerminalControl) WindowSize() (WindowSize, error) {
	ws, err := unix.IoctlGetWinsize(int(t.fd), unix.TIOCGWINSZ)
	if err != nil {
		return WindowSize{}, fmt.Errorf("%w: TIOCGWINSZ: %v", ErrTermios, err)
	}
	return WindowSize{Rows: ws.Row, Cols: ws.Col, XPixel: ws.Xpixel, YPixel: ws.Ypixel}, nil
}

// SetWindowSize writes the pty's size via TIOCSWINSZ.
func (t *TerminalControl) SetWindowSize(w WindowSize) error {
	ws := &unix.Winsize{Row: w.Rows, Col: w.Cols, Xpixel: w.XPixel, Ypixel: w.YPixel}
	if err := unix.IoctlSetWinsize(int(t.fd), unix.TIOCSWINSZ, ws); err != nil {
		return fmt.Errorf("%w: TIOCSWINSZ: %v", ErrTermios, err)
	}
	return nil
}

// controlChar reads c_cc[index].
func (t *TerminalControl) controlChar(index int) (byte, error) {
	term, err := t.get()
	if err != nil {
		return 0, err
	}
	return term.Cc[index], nil
}

// setControlChar writes c_cc[index] = value.
func (t *TerminalControl) setControlChar(index int, value byte) error {
	term, err := t.get()
	if err != nil {
		return err
	}
	term.Cc[index] = value
	return t.set(term, false)
}

// GetEOFChar returns c_cc[VEOF].
func (t *TerminalControl) GetEOFChar() (byte, error) { return t.controlChar(unix.VEOF) }

// SetEOFChar sets c_cc[VEOF].
func (t *TerminalControl) SetEOFChar(b byte) error { return t.setControlChar(unix.VEOF, b) }

// GetINTRChar returns c_cc[VINTR].
func (t *TerminalControl) GetINTRChar() (byte, error) { return t.controlChar(unix.VINTR) }

// SetINTRChar sets c_cc[VINTR].
func (t *TerminalControl) SetINTRChar(b byte) error { return t.setControlChar(unix.VINTR, b) }

// GetEOLChar returns c_cc[VEOL].
func (t *TerminalControl) GetEOLChar() (byte, error) { return t.controlChar(unix.VEOL) }

// SetEOLChar sets c_cc[VEOL].
func (t *TerminalControl) SetEOLChar(b byte) error { return t.setControlChar(unix.VEOL, b) }

// EnterRawMode snapshots the current termios and applies raw-mode
// flags, using TCSAFLUSH because disabling ICANON while input is
// already buffered in canonical form would otherwise be
// misinterpreted. Returns the pre-raw snapshot so the caller (normally
// PtyProcess) can pass it back to RestoreMode.
func (t *TerminalControl) EnterRawMode() (saved *unix.Termios, err error) {
	term, err := t.get()
	if err != nil {
		return nil, err
	}
	saved = new(unix.Termios)
	*saved = *term

	raw := *term
	raw.Iflag &^= unix.BRKINT | unix.ICRNL | unix.INPCK | unix.ISTRIP | unix.IXON
	raw.Oflag &^= unix.OPOST
	raw.Cflag |= unix.CS8
	raw.Lflag &^= unix.ICANON | unix.ECHO | unix.ISIG | unix.IEXTEN
	raw.Cc[unix.VMIN] = 1
	raw.Cc[unix.VTIME] = 0

	if err := t.set(&raw, true); err != nil {
		return nil, err
	}
	return saved, nil
}

// RestoreMode writes back a termios snapshot previously returned by
// EnterRawMode (or captured by the caller some other way).
func (t *TerminalControl) RestoreMode(saved *unix.Termios) error {
	if saved == nil {
		return nil
	}
	return t.set(saved, true)
}
