//go:build !(darwin || dragonfly || freebsd || netbsd || openbsd || linux)

package tty

// FlushStdinBuffer is a no-op where termios is unavailable.
func FlushStdinBuffer() {}
