package jcsh

import "testing"

func TestProcessSetStateTerminatedSticky(t *testing.T) {
	p := NewProcess("sleep", []string{"30"})
	p.SetState(Stopped)
	if p.State() != Stopped {
		t.Fatalf("got %v, want Stopped", p.State())
	}
	p.SetState(Terminated)
	p.SetState(Running)
	if p.State() != Terminated {
		t.Fatalf("got %v, want Terminated to stick", p.State())
	}
}

func TestJobAddProcessFixesPgid(t *testing.T) {
	j := newJob(1, Foreground, "sleep 30")
	p1 := NewProcess("sleep", []string{"30"})
	p1.setPid(100)
	j.AddProcess(p1)

	p2 := NewProcess("wc", nil)
	p2.setPid(101)
	j.AddProcess(p2)

	if j.GroupID() != 100 {
		t.Fatalf("pgid = %d, want 100 (first process's pid)", j.GroupID())
	}
	if !j.ContainsProcess(101) {
		t.Fatal("expected job to contain pid 101")
	}
}

func TestJobAllTerminated(t *testing.T) {
	j := newJob(1, Foreground, "echo hi")
	if j.AllTerminated() {
		t.Fatal("empty job must not report AllTerminated")
	}

	p := NewProcess("echo", []string{"hi"})
	p.setPid(200)
	j.AddProcess(p)
	if j.AllTerminated() {
		t.Fatal("running process must not report AllTerminated")
	}

	p.SetState(Terminated)
	if !j.AllTerminated() {
		t.Fatal("all members terminated should report AllTerminated")
	}
}

func TestJobLastExitStatusIsFinalStage(t *testing.T) {
	j := newJob(1, Foreground, "true | false")
	p1 := NewProcess("true", nil)
	p1.setPid(1)
	p2 := NewProcess("false", nil)
	p2.setPid(2)
	j.AddProcess(p1)
	j.AddProcess(p2)

	p1.setExitStatus(0)
	p1.SetState(Terminated)
	p2.setExitStatus(1)
	p2.SetState(Terminated)

	if got := j.LastExitStatus(); got != 1 {
		t.Fatalf("LastExitStatus = %d, want 1 (the last stage's status)", got)
	}
}

func TestContinueStoppedResumesOnlyStoppedMembers(t *testing.T) {
	j := newJob(1, Background, "sleep 30 | cat | wc")
	running := NewProcess("sleep", []string{"30"})
	running.setPid(1)
	stopped := NewProcess("cat", nil)
	stopped.setPid(2)
	dead := NewProcess("wc", nil)
	dead.setPid(3)
	j.AddProcess(running)
	j.AddProcess(stopped)
	j.AddProcess(dead)

	stopped.SetState(Stopped)
	dead.SetState(Terminated)

	j.continueStopped()
	if running.State() != Running {
		t.Fatalf("running member: got %v, want Running (unchanged)", running.State())
	}
	if stopped.State() != Running {
		t.Fatalf("stopped member: got %v, want Running", stopped.State())
	}
	if dead.State() != Terminated {
		t.Fatalf("terminated member: got %v, want Terminated (sticky)", dead.State())
	}

	// Resuming an already-running job is a no-op.
	j.continueStopped()
	if running.State() != Running || stopped.State() != Running {
		t.Fatal("second continueStopped changed state")
	}
}

func TestJobAllStopped(t *testing.T) {
	j := newJob(1, Foreground, "sleep 30 | cat")
	p1 := NewProcess("sleep", []string{"30"})
	p1.setPid(1)
	p2 := NewProcess("cat", nil)
	p2.setPid(2)
	j.AddProcess(p1)
	j.AddProcess(p2)

	p1.SetState(Stopped)
	if j.AllStopped() {
		t.Fatal("not all members stopped yet")
	}

	p2.SetState(Stopped)
	if !j.AllStopped() {
		t.Fatal("expected AllStopped once every member is stopped")
	}

	p2.SetState(Terminated)
	if !j.AllStopped() {
		t.Fatal("a terminated member should not block AllStopped for the rest")
	}
}
