//go:build netbsd || openbsd

package ptyproc

import (
	"fmt"
	"os"
	"unsafe"

	"golang.org/x/sys/unix"
)

const devPtm = "/dev/ptm"

// ptmget mirrors NetBSD/OpenBSD's struct ptmget from <util.h>: a single
// TIOCPTMGET ioctl on /dev/ptm hands back both fds and both device
// names, so there is no separate grant/unlock/ptsname step.
type ptmget struct {
	Cfd int32
	Sfd int32
	Cn  [16]byte
	Sn  [16]byte
}

const tiocptmget = 0x40287401

// platformOpenPTY on NetBSD/OpenBSD: opens /dev/ptm and issues
// TIOCPTMGET, which allocates the pair and returns both ends in one
// call.
func platformOpenPTY() (master, slave *os.File, path string, err error) {
	ptmFd, err := unix.Open(devPtm, unix.O_RDWR, 0)
	if err != nil {
		return nil, nil, "", fmt.Errorf("open %s: %w", devPtm, err)
	}
	defer unix.Close(ptmFd)

	var pm ptmget
	if _, _, errno := unix.Syscall(unix.SYS_IOCTL, uintptr(ptmFd), uintptr(tiocptmget), uintptr(unsafe.Pointer(&pm))); errno != 0 {
		return nil, nil, "", fmt.Errorf("TIOCPTMGET: %w", errno)
	}

	unix.CloseOnExec(int(pm.Cfd))
	unix.CloseOnExec(int(pm.Sfd))

	slaveName := cString(pm.Sn[:])
	return os.NewFile(uintptr(pm.Cfd), "/dev/ptm-master"), os.NewFile(uintptr(pm.Sfd), slaveName), slaveName, nil
}

const (
	tcGetTermios      = unix.TIOCGETA
	tcSetTermios      = unix.TIOCSETA
	tcSetTermiosFlush = unix.TIOCSETAF
)
