package jcsh

import "fmt"

// ProcState is the lifecycle state of a single Process.
type ProcState int

const (
	Running ProcState = iota
	Stopped
	Terminated
)

func (s ProcState) String() string {
	switch s {
	case Running:
		return "Running"
	case Stopped:
		return "Stopped"
	case Terminated:
		return "Terminated"
	default:
		return "Unknown"
	}
}

// Process is one stage of a pipeline. State is mutated by the reaper and,
// right after fg/bg send SIGCONT, by Job.continueStopped.
type Process struct {
	pid        int
	command    string
	args       []string
	state      ProcState
	exitStatus int
}

// NewProcess records the identity of a process about to be forked.
func NewProcess(command string, args []string) *Process {
	return &Process{command: command, args: args, state: Running}
}

func (p *Process) Pid() int         { return p.pid }
func (p *Process) Command() string  { return p.command }
func (p *Process) Args() []string   { return p.args }
func (p *Process) State() ProcState { return p.state }

// ExitStatus is the exit code, or 128+signal for a signal death.
// Meaningless before State() == Terminated.
func (p *Process) ExitStatus() int { return p.exitStatus }

func (p *Process) setPid(pid int) { p.pid = pid }

func (p *Process) setExitStatus(status int) { p.exitStatus = status }

// SetState applies a reaper-observed transition. Terminated is sticky.
func (p *Process) SetState(s ProcState) {
	if p.state == Terminated {
		return
	}
	p.state = s
}

func (p *Process) String() string {
	return fmt.Sprintf("%d %s %s", p.pid, p.state, p.command)
}

// JobState is the job-level state derived from its member processes.
type JobState int

const (
	Foreground JobState = iota
	Background
	Done
)

func (s JobState) String() string {
	switch s {
	case Foreground:
		return "Foreground"
	case Background:
		return "Background"
	case Done:
		return "Done"
	default:
		return "Unknown"
	}
}

// Job tracks one pipeline: an ordered sequence of Processes sharing a
// process group.
type Job struct {
	num       int
	pgid      int
	state     JobState
	processes []*Process
	command   string // original command line, for the jobs listing
}

func newJob(num int, state JobState, command string) *Job {
	return &Job{num: num, state: state, command: command}
}

func (j *Job) Num() int              { return j.num }
func (j *Job) GroupID() int          { return j.pgid }
func (j *Job) State() JobState       { return j.state }
func (j *Job) Processes() []*Process { return j.processes }
func (j *Job) Command() string       { return j.command }
func (j *Job) SetState(s JobState)   { j.state = s }

// AddProcess appends p in pipeline order; the first insertion fixes pgid.
func (j *Job) AddProcess(p *Process) {
	if len(j.processes) == 0 && j.pgid == 0 {
		j.pgid = p.Pid()
	}
	j.processes = append(j.processes, p)
}

func (j *Job) ContainsProcess(pid int) bool {
	return j.GetProcess(pid) != nil
}

func (j *Job) GetProcess(pid int) *Process {
	for _, p := range j.processes {
		if p.Pid() == pid {
			return p
		}
	}
	return nil
}

func (j *Job) AllTerminated() bool {
	if len(j.processes) == 0 {
		return false
	}
	for _, p := range j.processes {
		if p.State() != Terminated {
			return false
		}
	}
	return true
}

// AllStopped reports whether every non-terminated member is stopped.
func (j *Job) AllStopped() bool {
	live := false
	for _, p := range j.processes {
		if p.State() == Terminated {
			continue
		}
		live = true
		if p.State() != Stopped {
			return false
		}
	}
	return live
}

// continueStopped marks Stopped members Running after a SIGCONT; the
// kernel's continued notification arrives later and confirms it.
func (j *Job) continueStopped() {
	for _, p := range j.processes {
		if p.State() == Stopped {
			p.SetState(Running)
		}
	}
}

// LastExitStatus is the final pipeline stage's exit status.
func (j *Job) LastExitStatus() int {
	if len(j.processes) == 0 {
		return 0
	}
	return j.processes[len(j.processes)-1].ExitStatus()
}

func (j *Job) String() string {
	s := fmt.Sprintf("[%d] (%d) %s: %s", j.num, j.pgid, j.state, j.command)
	for _, p := range j.processes {
		s += fmt.Sprintf("\n\t%d %s %s", p.Pid(), p.State(), p.Command())
	}
	return s
}
