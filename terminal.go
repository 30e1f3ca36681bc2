package jcsh

import (
	"os"

	"golang.org/x/sys/unix"
)

// TerminalController transfers controlling-terminal ownership between
// the shell's process group and a job's.
type TerminalController struct {
	fd        int
	shellPgid int
}

func NewTerminalController(fd int) *TerminalController {
	pgid, _ := unix.Getpgid(os.Getpid())
	return &TerminalController{fd: fd, shellPgid: pgid}
}

func (t *TerminalController) ShellPgid() int { return t.shellPgid }

// GiveTo sets the terminal's foreground process group to pgid.
// ENOTTY/ENXIO (no controlling terminal) are benign and ignored.
func (t *TerminalController) GiveTo(pgid int) error {
	if err := unix.IoctlSetPointerInt(t.fd, unix.TIOCSPGRP, pgid); err != nil {
		if err == unix.ENOTTY || err == unix.ENXIO {
			return nil
		}
		return NewOsError("tcsetpgrp", err)
	}
	return nil
}

func (t *TerminalController) TakeBack() error {
	return t.GiveTo(t.shellPgid)
}

func (t *TerminalController) Foreground() (int, error) {
	pgid, err := unix.IoctlGetInt(t.fd, unix.TIOCGPGRP)
	if err != nil {
		return 0, NewOsError("tcgetpgrp", err)
	}
	return pgid, nil
}
