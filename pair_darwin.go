//go:build darwin

package ptyproc

import (
	"fmt"
	"os"
	"unsafe"

	"golang.org/x/sys/unix"
)

const devPtmx = "/dev/ptmx"

// platformOpenPTY opens a pty pair the BSD way: grantpt/unlockpt/
// ptsname are all done via ioctl on the master, there being no
// devpts-equivalent filesystem.
func platformOpenPTY() (master, slave *os.File, path string, err error) {
	m, err := os.OpenFile(devPtmx, os.O_RDWR, 0)
	if err != nil {
		return nil, nil, "", fmt.Errorf("open %s: %w", devPtmx, err)
	}

	if _, _, errno := unix.Syscall(unix.SYS_IOCTL, m.Fd(), uintptr(unix.TIOCPTYGRANT), 0); errno != 0 {
		m.Close()
		return nil, nil, "", fmt.Errorf("grantpt: %w", errno)
	}
	if _, _, errno := unix.Syscall(unix.SYS_IOCTL, m.Fd(), uintptr(unix.TIOCPTYUNLK), 0); errno != 0 {
		m.Close()
		return nil, nil, "", fmt.Errorf("unlockpt: %w", errno)
	}

	var nameBuf [128]byte
	if _, _, errno := unix.Syscall(unix.SYS_IOCTL, m.Fd(), uintptr(unix.TIOCPTYGNAME), uintptr(unsafe.Pointer(&nameBuf[0]))); errno != 0 {
		m.Close()
		return nil, nil, "", fmt.Errorf("ptsname: %w", errno)
	}

	slaveName := cString(nameBuf[:])
	s, err := os.OpenFile(slaveName, os.O_RDWR|unix.O_NOCTTY, 0)
	if err != nil {
		m.Close()
		return nil, nil, "", fmt.Errorf("open slave %s: %w", slaveName, err)
	}

	return m, s, slaveName, nil
}

const (
	tcGetTermios      = unix.TIOCGETA
	tcSetTermios      = unix.TIOCSETA
	tcSetTermiosFlush = unix.TIOCSETAF
)
