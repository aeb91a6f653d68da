//go:build freebsd || dragonfly

package ptyproc

import (
	"fmt"
	"os"
	"strconv"

	"golang.org/x/sys/unix"
)

const devPtmx = "/dev/ptmx"

// platformOpenPTY on FreeBSD/DragonFly: these kernels grew a
// Linux-compatible pts(4) driver, so /dev/ptmx + TIOCGPTN works the
// same way as Linux; unlike Linux there is no lock to release, so
// TIOCSPTLCK is skipped (matching libc's grantpt/unlockpt being no-ops
// here).
func platformOpenPTY() (master, slave *os.File, path string, err error) {
	m, err := os.OpenFile(devPtmx, os.O_RDWR, 0)
	if err != nil {
		return nil, nil, "", fmt.Errorf("open %s: %w", devPtmx, err)
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
	tcGetTermios      = unix.TIOCGETA
	tcSetTermios      = unix.TIOCSETA
	tcSetTermiosFlush = unix.TIOCSETAF
)
