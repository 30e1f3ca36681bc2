package jcsh

import (
	"os"
	"sync"
)

// GlobalState holds the shell-wide scalars every builtin and the prompt
// expander need: the working directory, the directory `cd -` returns to,
// the shell's own pid as recorded at startup, the pid of the last
// background launch, and the last foreground exit status (read by the
// prompt's %? expansion and by tests).
type GlobalState struct {
	mu sync.RWMutex

	cwd         string
	previousDir string

	shellPID          int
	lastBackgroundPID int
	lastExitStatus    int
}

// NewGlobalState captures the process's working directory and pid at
// startup.
func NewGlobalState() *GlobalState {
	cwd, err := os.Getwd()
	if err != nil {
		cwd = "/"
	}
	return &GlobalState{
		cwd:         cwd,
		previousDir: cwd,
		shellPID:    os.Getpid(),
	}
}

// CWD returns the shell's current working directory.
func (gs *GlobalState) CWD() string {
	gs.mu.RLock()
	defer gs.mu.RUnlock()
	return gs.cwd
}

// PreviousDir returns the directory `cd -` switches back to.
func (gs *GlobalState) PreviousDir() string {
	gs.mu.RLock()
	defer gs.mu.RUnlock()
	return gs.previousDir
}

// SetCWD records a successful directory change, remembering the old
// value as the new PreviousDir.
func (gs *GlobalState) SetCWD(dir string) {
	gs.mu.Lock()
	defer gs.mu.Unlock()
	if dir == gs.cwd {
		return
	}
	gs.previousDir = gs.cwd
	gs.cwd = dir
}

// ShellPID returns the pid recorded when the shell started.
func (gs *GlobalState) ShellPID() int {
	gs.mu.RLock()
	defer gs.mu.RUnlock()
	return gs.shellPID
}

// SetLastBackgroundPID records the pid reported in the most recent
// background-launch announcement.
func (gs *GlobalState) SetLastBackgroundPID(pid int) {
	gs.mu.Lock()
	defer gs.mu.Unlock()
	gs.lastBackgroundPID = pid
}

// LastBackgroundPID returns the pid recorded by SetLastBackgroundPID.
func (gs *GlobalState) LastBackgroundPID() int {
	gs.mu.RLock()
	defer gs.mu.RUnlock()
	return gs.lastBackgroundPID
}

// SetLastExitStatus records the exit status of the most recently
// completed foreground command.
func (gs *GlobalState) SetLastExitStatus(status int) {
	gs.mu.Lock()
	defer gs.mu.Unlock()
	gs.lastExitStatus = status
}

// LastExitStatus returns the status recorded by SetLastExitStatus.
func (gs *GlobalState) LastExitStatus() int {
	gs.mu.RLock()
	defer gs.mu.RUnlock()
	return gs.lastExitStatus
}
