package jcsh

import (
	"log"
	"os"
	"syscall"

	"golang.org/x/sys/unix"
)

// Reaper is the async handler for SIGCHLD; it also forwards SIGINT/SIGTSTP
// to the foreground job, exits on SIGQUIT and discards SIGTTIN/SIGTTOU. It runs as a single dedicated
// goroutine so it is always the sole writer to the JobTable from the
// signal side; that goroutine plus JobTable's mutex is the idiomatic-Go
// substitute for blocking signals around a critical section.
type Reaper struct {
	facility *Facility
	table    *JobTable
	term     *TerminalController
}

// NewReaper wires a Reaper to the given signal facility, job table and
// terminal controller.
func NewReaper(f *Facility, t *JobTable, term *TerminalController) *Reaper {
	return &Reaper{facility: f, table: t, term: term}
}

// Run drains signals until stop is closed. Intended to be launched with
// `go reaper.Run(stop)` once at shell startup.
func (r *Reaper) Run(stop <-chan struct{}) {
	for {
		select {
		case sig, ok := <-r.facility.Signals():
			if !ok {
				return
			}
			r.handle(sig)
		case <-stop:
			return
		}
	}
}

func (r *Reaper) handle(sig os.Signal) {
	s, ok := sig.(syscall.Signal)
	if !ok {
		return
	}
	switch s {
	case syscall.SIGCHLD:
		r.reapAll()
	case syscall.SIGINT, syscall.SIGTSTP:
		r.forwardToForeground(s)
	case syscall.SIGQUIT:
		os.Exit(0)
	case syscall.SIGTTIN, syscall.SIGTTOU:
		// Received only so the shell itself never gets SIG_DFL-stopped
		// for touching the terminal; see signalset.go for why this has
		// to be a caught-and-discarded signal rather than SIG_IGN.
	}
}

// forwardToForeground sends sig to every member of the foreground job by
// sending once to its pgid; with no foreground job the signal is dropped,
// so a ^C at the prompt never kills the shell or a background job.
func (r *Reaper) forwardToForeground(sig syscall.Signal) {
	r.table.Lock()
	fg := r.table.GetForegroundJob()
	r.table.Unlock()
	if fg == nil {
		return
	}
	if err := unix.Kill(-fg.GroupID(), sig); err != nil {
		log.Printf("reaper: forward %s to job %d (pgid %d): %v", sig, fg.Num(), fg.GroupID(), err)
	}
}

// reapAll drains every waitable event with WNOHANG|WUNTRACED|WCONTINUED
// until wait4 reports none left, updating each
// affected Process's state and calling Synchronize on its owning Job.
func (r *Reaper) reapAll() {
	for {
		var status unix.WaitStatus
		pid, err := unix.Wait4(-1, &status, unix.WNOHANG|unix.WUNTRACED|unix.WCONTINUED, nil)
		if err == unix.ECHILD {
			return
		}
		if err != nil {
			if err == unix.EINTR {
				continue
			}
			log.Printf("reaper: wait4: %v", err)
			return
		}
		if pid <= 0 {
			return
		}

		r.table.Lock()
		job := r.table.GetJobWithProcess(pid)
		if job == nil {
			r.table.Unlock()
			continue
		}
		proc := job.GetProcess(pid)

		switch {
		case status.Exited():
			proc.setExitStatus(status.ExitStatus())
			proc.SetState(Terminated)
		case status.Signaled():
			proc.setExitStatus(128 + int(status.Signal()))
			proc.SetState(Terminated)
		case status.Stopped():
			proc.SetState(Stopped)
		case status.Continued():
			proc.SetState(Running)
		}

		wasForeground := job.State() == Foreground
		reclaimed := r.table.Synchronize(job)
		releasedTerminal := wasForeground && (reclaimed || job.State() == Background)
		r.table.Unlock()

		if releasedTerminal {
			if err := r.term.TakeBack(); err != nil {
				log.Printf("reaper: take back terminal: %v", err)
			}
		}
	}
}
