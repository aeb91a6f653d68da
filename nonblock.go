package ptyproc

import "golang.org/x/sys/unix"

// setNonblock flips O_NONBLOCK on fd without disturbing any other
// open-file-status flags. golang.org/x/sys/unix.SetNonblock does the
// fcntl(F_GETFL)/fcntl(F_SETFL) read-modify-write internally.
func setNonblock(fd int, nonblocking bool) error {
	return unix.SetNonblock(fd, nonblocking)
}
