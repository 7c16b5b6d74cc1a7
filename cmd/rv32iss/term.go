package main

import (
	"os"

	"golang.org/x/sys/unix"
)

// rawTerm puts stdin into non-canonical, unechoed mode so the debugger's
// single-keypress stepping ('n' to step, 'r' for registers, 'q' to quit;
// other keys are ignored) doesn't wait on a newline. Grounded on the teacher pack's
// only other terminal-driving example; asterisc itself never needs a TTY.
type rawTerm struct {
	saved unix.Termios
	fd    int
}

func enterRawTerm() (*rawTerm, error) {
	fd := int(os.Stdin.Fd())
	saved, err := unix.IoctlGetTermios(fd, unix.TCGETS)
	if err != nil {
		return nil, err
	}
	state := *saved
	state.Iflag &^= unix.IGNBRK | unix.BRKINT | unix.INLCR
	state.Lflag &^= unix.ECHO | unix.ECHONL | unix.ICANON | unix.IEXTEN
	state.Cflag &^= unix.CSIZE | unix.PARENB
	state.Cflag |= unix.CS8
	state.Cc[unix.VMIN] = 1
	state.Cc[unix.VTIME] = 0

	if err := unix.IoctlSetTermios(fd, unix.TCSETS, &state); err != nil {
		return nil, err
	}
	return &rawTerm{saved: *saved, fd: fd}, nil
}

func (t *rawTerm) restore() error {
	return unix.IoctlSetTermios(t.fd, unix.TCSETS, &t.saved)
}
