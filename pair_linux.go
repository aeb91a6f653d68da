//go:build linux

package ptyproc

import (
	"fmt"
	"os"
	"strconv"

	"golang.org/x/sys/unix"
)

const devPtmx = "/dev/ptmx"

// platformOpenPTY opens /dev/ptmx, unlocks the slave (grantpt is a
// no-op under the Linux devpts filesystem mount options this library
// assumes, matching glibc's posix_openpt), and resolves the slave's
// /dev/pts/N path via TIOCGPTN.
func platformOpenPTY() (master, slave *os.File, path string, err error) {
	m, err := os.OpenFile(devPtmx, os.O_RDWR, 0)
	if err != nil {
		return nil, nil, "", fmt.Errorf("open %s: %w", devPtmx, err)
	}

	if err := unix.IoctlSetPointerInt(int(m.Fd()), unix.TIOCSPTLCK, 0); err != nil {
		m.Close()
		return nil, nil, "", fmt.Errorf("unlockpt: %w", err)
	}

	n, err := unix.IoctlGetInt(int(m.Fd()), unix.TIOCGPTN)
	if err != nil {
		m.Close()
		return nil, nil, "", fmt.Errorf("ptsname: %w", err)
	}

	slaveName := "/dev/pts/" + strconv.Itoa(n)
	s, err := os.OpenFile(slaveName, os.O_RDWR|unix.O_NOCTTY, 0)
	if err != nil {
		m.Close()
		return nil, nil, "", fmt.Errorf("open slave %s: %w", slaveName, err)
	}

	return m, s, slaveName, nil
}

const (
	tcGetTermios = unix.TCGETS
	tcSetTermios = unix.TCSETS
	// tcSetTermiosFlush is used where canonical-mode toggles would
	// otherwise mis-interpret already-buffered input.
	tcSetTermiosFlush = unix.TCSETSF
)
