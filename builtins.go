package jcsh

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"strconv"
	"syscall"

	"golang.org/x/sys/unix"
)

// ErrQuit is returned by quit/exit; the REPL stops its loop so deferred
// cleanup runs before the process exits.
var ErrQuit = errors.New("quit")

// Builtins dispatches the shell's builtin commands.
type Builtins struct {
	table *JobTable
	term  *TerminalController
	state *GlobalState
}

func NewBuiltins(table *JobTable, term *TerminalController, state *GlobalState) *Builtins {
	return &Builtins{table: table, term: term, state: state}
}

var builtinNames = map[string]bool{
	"quit": true, "exit": true, "jobs": true,
	"fg": true, "bg": true,
	"slay": true, "halt": true, "cont": true,
	"cd": true, "help": true,
}

func IsBuiltin(name string) bool {
	return builtinNames[name]
}

// Dispatch runs the named builtin with args.
func (b *Builtins) Dispatch(name string, args []string) error {
	switch name {
	case "quit", "exit":
		return ErrQuit
	case "jobs":
		return b.jobs(args)
	case "fg":
		return b.fg(args)
	case "bg":
		return b.bg(args)
	case "slay":
		return b.signalTarget("slay", syscall.SIGKILL, args)
	case "halt":
		return b.signalTarget("halt", syscall.SIGSTOP, args)
	case "cont":
		return b.signalTarget("cont", syscall.SIGCONT, args)
	case "cd":
		return b.cd(args)
	case "help":
		return b.help()
	default:
		return NewUserError("%s: not a builtin", name)
	}
}

func (b *Builtins) jobs(_ []string) error {
	b.table.Lock()
	listing := b.table.Listing()
	b.table.Unlock()
	if listing != "" {
		fmt.Println(listing)
	}
	return nil
}

func (b *Builtins) fg(args []string) error {
	num, ok := parseNonNegInt(one(args))
	if !ok {
		return NewUserError("Usage: fg <jobid>.")
	}

	b.table.Lock()
	job, found := b.table.GetJob(num)
	if !found {
		b.table.Unlock()
		return NewUserError("fg %d:  No such job.", num)
	}
	if err := unix.Kill(-job.GroupID(), syscall.SIGCONT); err != nil && err != unix.ESRCH {
		b.table.Unlock()
		return NewOsError("kill", err)
	}
	job.continueStopped()
	job.SetState(Foreground)
	b.table.Synchronize(job)
	pgid := job.GroupID()
	b.table.Unlock()

	if err := b.term.GiveTo(pgid); err != nil {
		return err
	}
	defer b.term.TakeBack()

	waitForeground(b.table, job)

	b.table.Lock()
	terminated := job.AllTerminated()
	b.table.Unlock()
	if terminated {
		b.state.SetLastExitStatus(job.LastExitStatus())
	}
	return nil
}

func (b *Builtins) bg(args []string) error {
	num, ok := parseNonNegInt(one(args))
	if !ok {
		return NewUserError("Usage: bg <jobid>.")
	}

	b.table.Lock()
	defer b.table.Unlock()

	job, found := b.table.GetJob(num)
	if !found {
		return NewUserError("bg %d:  No such job.", num)
	}
	if err := unix.Kill(-job.GroupID(), syscall.SIGCONT); err != nil && err != unix.ESRCH {
		return NewOsError("kill", err)
	}
	job.continueStopped()
	job.SetState(Background)
	b.table.Synchronize(job)
	fmt.Printf("[%d] %s &\n", job.Num(), job.Command())
	return nil
}

// signalTarget implements slay/halt/cont: each sends a fixed signal to
// either a bare pid or a jobnum+idx pair.
func (b *Builtins) signalTarget(name string, sig syscall.Signal, args []string) error {
	b.table.Lock()
	pid, err := b.resolveTarget(name, args)
	b.table.Unlock()
	if err != nil {
		return err
	}

	if err := unix.Kill(pid, sig); err != nil && err != unix.ESRCH {
		return NewOsError("kill", err)
	}

	// Synchronize now rather than waiting for the reaper's SIGCHLD.
	b.table.Lock()
	if job := b.table.GetJobWithProcess(pid); job != nil {
		b.table.Synchronize(job)
	}
	b.table.Unlock()
	return nil
}

// resolveTarget finds the pid named by a slay/halt/cont argument list.
// Caller must hold the table lock.
func (b *Builtins) resolveTarget(name string, args []string) (int, error) {
	switch len(args) {
	case 1:
		pid, ok := parseNonNegInt(args[0])
		if !ok {
			return 0, NewUserError("Usage: %s <jobnum> <idx> | %s <pid>.", name, name)
		}
		if !b.table.ContainsProcess(pid) {
			return 0, NewUserError("No process with pid %d.", pid)
		}
		return pid, nil
	case 2:
		num, ok1 := parseNonNegInt(args[0])
		idx, ok2 := parseNonNegInt(args[1])
		if !ok1 || !ok2 {
			return 0, NewUserError("Usage: %s <jobnum> <idx> | %s <pid>.", name, name)
		}
		job, found := b.table.GetJob(num)
		if !found {
			return 0, NewUserError("%s %d:  No such job.", name, num)
		}
		procs := job.Processes()
		if idx < 0 || idx >= len(procs) {
			return 0, NewUserError("%s %d %d: No such process.", name, num, idx)
		}
		return procs[idx].Pid(), nil
	default:
		return 0, NewUserError("Usage: %s <jobnum> <idx> | %s <pid>.", name, name)
	}
}

func (b *Builtins) cd(args []string) error {
	target := one(args)
	if target == "" {
		target = os.Getenv("HOME")
	} else if target == "-" {
		target = b.state.PreviousDir()
	}
	if target == "" {
		return NewUserError("cd: no previous directory")
	}
	if err := os.Chdir(target); err != nil {
		return NewUserError("cd: %v", err)
	}
	resolved, err := os.Getwd()
	if err != nil {
		resolved = target
	}
	b.state.SetCWD(resolved)
	return nil
}

func (b *Builtins) help() error {
	names := make([]string, 0, len(builtinNames))
	for n := range builtinNames {
		names = append(names, n)
	}
	sort.Strings(names)
	fmt.Println("Built-in commands:")
	for _, n := range names {
		fmt.Printf("  %s\n", n)
	}
	return nil
}

func one(args []string) string {
	if len(args) == 0 {
		return ""
	}
	return args[0]
}

// parseNonNegInt accepts exactly the grammar every builtin's numeric
// argument follows: one or more ASCII digits, no sign, no trailing
// garbage.
func parseNonNegInt(s string) (int, bool) {
	if s == "" {
		return 0, false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return 0, false
		}
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, false
	}
	return n, true
}
