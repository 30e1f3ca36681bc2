package jcsh

import (
	"fmt"
	"os"
	"os/exec"
	"syscall"

	"golang.org/x/sys/unix"

	"jcsh/parser"
)

// Launcher runs a Pipeline as a new job in its own process group. It is
// the only component that forks children.
type Launcher struct {
	table *JobTable
	term  *TerminalController
	state *GlobalState
}

func NewLauncher(table *JobTable, term *TerminalController, state *GlobalState) *Launcher {
	return &Launcher{table: table, term: term, state: state}
}

type pipeEnds struct {
	r, w *os.File
}

// Launch starts every stage of p in a single new process group and either
// announces the background job or waits for foreground completion.
func (l *Launcher) Launch(p *parser.Pipeline) error {
	if len(p.Commands) == 0 {
		return nil
	}

	for _, c := range p.Commands {
		if _, err := exec.LookPath(c.Command); err != nil {
			return NewExecError(c.Command, err)
		}
	}

	var inFile, outFile *os.File
	if p.Input != "" {
		f, err := os.Open(p.Input)
		if err != nil {
			return NewOsError("open "+p.Input, err)
		}
		inFile = f
		defer f.Close()
	}
	if p.Output != "" {
		f, err := os.OpenFile(p.Output, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644)
		if err != nil {
			return NewOsError("open "+p.Output, err)
		}
		outFile = f
		defer f.Close()
	}

	n := len(p.Commands)
	pipes := make([]pipeEnds, n-1)
	for i := range pipes {
		r, w, err := os.Pipe()
		if err != nil {
			closePipes(pipes[:i])
			return NewOsError("pipe", err)
		}
		pipes[i] = pipeEnds{r, w}
	}

	cmds := make([]*exec.Cmd, n)
	for i, c := range p.Commands {
		cmd := exec.Command(c.Command, c.Tokens...)
		cmd.Dir = l.state.CWD()
		cmd.Env = os.Environ()

		switch {
		case i == 0 && inFile != nil:
			cmd.Stdin = inFile
		case i == 0:
			cmd.Stdin = os.Stdin
		default:
			cmd.Stdin = pipes[i-1].r
		}

		switch {
		case i == n-1 && outFile != nil:
			cmd.Stdout = outFile
		case i == n-1:
			cmd.Stdout = os.Stdout
		default:
			cmd.Stdout = pipes[i].w
		}

		cmd.Stderr = os.Stderr
		cmds[i] = cmd
	}

	state := Foreground
	if p.Background {
		state = Background
	}

	l.table.Lock()
	job := l.table.AddJob(state, formatCommandLine(p))

	pgid := 0
	var startErr error
	for i, cmd := range cmds {
		cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true, Pgid: pgid}
		if err := cmd.Start(); err != nil {
			startErr = NewOsError("start "+p.Commands[i].Command, err)
			break
		}

		pid := cmd.Process.Pid
		if pgid == 0 {
			pgid = pid
		}
		// Both sides setpgid so the assignment is race-free.
		_ = unix.Setpgid(pid, pgid)

		proc := NewProcess(p.Commands[i].Command, p.Commands[i].Tokens)
		l.table.RegisterProcess(job, proc, pid)
	}

	// Each child holds its own copies from the fork; the parent's must
	// close now or pipeline readers never see EOF.
	closePipes(pipes)

	if startErr != nil {
		for _, proc := range job.Processes() {
			_ = unix.Kill(proc.Pid(), syscall.SIGKILL)
		}
		if len(job.Processes()) == 0 {
			// Nothing ever attached; nothing for the reaper to reclaim.
			l.table.Discard(job)
		} else {
			// The killed members linger until reaped; demote now so the
			// next launch can take the foreground.
			job.SetState(Background)
		}
		l.table.Unlock()
		return startErr
	}
	l.table.Unlock()

	if p.Background {
		procs := job.Processes()
		l.state.SetLastBackgroundPID(procs[len(procs)-1].Pid())
		announceBackground(job)
		return nil
	}

	if err := l.term.GiveTo(pgid); err != nil {
		return err
	}
	defer l.term.TakeBack()

	waitForeground(l.table, job)

	l.table.Lock()
	terminated := job.AllTerminated()
	l.table.Unlock()
	if terminated {
		l.state.SetLastExitStatus(job.LastExitStatus())
	}
	return nil
}

// waitForeground blocks until job has been reclaimed or demoted to
// Background. Shared by the launcher and the fg builtin.
func waitForeground(table *JobTable, job *Job) {
	stop := make(chan struct{})
	defer close(stop)
	for {
		table.Lock()
		_, stillThere := table.GetJob(job.Num())
		done := !stillThere || job.State() != Foreground
		table.Unlock()
		if done {
			return
		}
		if !SuspendUntil(table.Changed(), stop) {
			return
		}
	}
}

func closePipes(pipes []pipeEnds) {
	for _, pe := range pipes {
		pe.r.Close()
		pe.w.Close()
	}
}

func announceBackground(job *Job) {
	fmt.Fprintf(os.Stdout, "[%d]", job.Num())
	for _, p := range job.Processes() {
		fmt.Fprintf(os.Stdout, " %d", p.Pid())
	}
	fmt.Fprintln(os.Stdout)
}

func formatCommandLine(p *parser.Pipeline) string {
	s := ""
	for i, c := range p.Commands {
		if i > 0 {
			s += " | "
		}
		s += c.Command
		for _, t := range c.Tokens {
			s += " " + t
		}
	}
	if p.Input != "" {
		s += " < " + p.Input
	}
	if p.Output != "" {
		s += " > " + p.Output
	}
	if p.Background {
		s += " &"
	}
	return s
}
