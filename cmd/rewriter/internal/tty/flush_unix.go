//go:build darwin || dragonfly || freebsd || netbsd || openbsd || linux

package tty

import (
	"os"

	"golang.org/x/sys/unix"
)

// FlushStdinBuffer discards any data left in stdin by prior terminal queries.
//
// termenv reads OSC replies up to the ESC of the string terminator but leaves
// the trailing '\' in the canonical-mode line buffer, where it cannot be
// flushed. ICANON is switched off briefly so the pending bytes become
// readable, they are drained with non-blocking reads and the terminal is
// restored.
func FlushStdinBuffer() {
	//nolint:gosec // Stdin fd is always a small non-negative int.
	fd := int(os.Stdin.Fd())

	old, err := unix.IoctlGetTermios(fd, ioctlGetTermios)
	if err != nil {
		return
	}

	raw := *old
	raw.Lflag &^= unix.ECHO | unix.ICANON
	raw.Cc[unix.VMIN] = 0
	raw.Cc[unix.VTIME] = 0
	if err := unix.IoctlSetTermios(fd, ioctlSetTermios, &raw); err != nil {
		return
	}
	defer func() { _ = unix.IoctlSetTermios(fd, ioctlSetTermios, old) }()

	// fd 0 is non-blocking under the Go poller, so Read returns EAGAIN once
	// the buffer is empty.
	buf := make([]byte, 256)
	for {
		n, err := unix.Read(fd, buf)
		if n <= 0 || err != nil {
			break
		}
	}
}
