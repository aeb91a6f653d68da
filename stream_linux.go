//go:build linux

package ptyproc

import "golang.org/x/sys/unix"

// normalizeReadError normalizes a Linux-specific quirk: a read from a
// master whose slave has closed returns EIO on Linux (rather than 0,
// as on BSD/macOS). That is only a clean end-of-stream once the child
// has actually been observed to exit; before that, EIO indicates a
// real fault (e.g. the slave was revoked) and must be surfaced.
func normalizeReadError(n int, err error, childExited bool) (int, error) {
	if err == unix.EIO && childExited {
		return 0, nil
	}
	return n, err
}
