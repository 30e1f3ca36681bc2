package jcsh

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"jcsh/parser"
)

// newTestRig wires a JobTable, Reaper and Launcher together and starts
// the reaper goroutine, mirroring what cmd/jcsh/main.go does at startup.
// Every launcher test needs the reaper running or its SIGCHLD-driven
// reaping never happens and waitForeground blocks forever.
func newTestRig(t *testing.T) (*Launcher, *JobTable, *GlobalState, func()) {
	t.Helper()
	table := NewJobTable()
	term := NewTerminalController(int(os.Stdin.Fd()))
	state := NewGlobalState()
	facility := NewFacility()
	reaper := NewReaper(facility, table, term)
	stop := make(chan struct{})
	go reaper.Run(stop)

	launcher := NewLauncher(table, term, state)
	cleanup := func() {
		close(stop)
		facility.Stop()
	}
	return launcher, table, state, cleanup
}

func TestLaunchForegroundSingleCommand(t *testing.T) {
	launcher, table, _, cleanup := newTestRig(t)
	defer cleanup()

	pipeline := &parser.Pipeline{
		Commands: []parser.Command{{Command: "true"}},
	}
	if err := launcher.Launch(pipeline); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if n := table.Len(); n != 0 {
		t.Fatalf("table should be empty after a foreground job completes, got %d jobs", n)
	}
}

func TestLaunchSetsLastExitStatus(t *testing.T) {
	launcher, _, state, cleanup := newTestRig(t)
	defer cleanup()

	run := func(command string) int {
		pipeline := &parser.Pipeline{Commands: []parser.Command{{Command: command}}}
		if err := launcher.Launch(pipeline); err != nil {
			t.Fatalf("unexpected error launching %q: %v", command, err)
		}
		return state.LastExitStatus()
	}

	if got := run("true"); got != 0 {
		t.Fatalf("true: LastExitStatus = %d, want 0", got)
	}
	if got := run("false"); got != 1 {
		t.Fatalf("false: LastExitStatus = %d, want 1", got)
	}
}

func TestLaunchPipelineWithRedirection(t *testing.T) {
	launcher, _, _, cleanup := newTestRig(t)
	defer cleanup()

	out := filepath.Join(t.TempDir(), "wc.out")
	pipeline := &parser.Pipeline{
		Commands: []parser.Command{
			{Command: "echo", Tokens: []string{"one", "two", "three"}},
			{Command: "wc", Tokens: []string{"-w"}},
		},
		Output: out,
	}
	if err := launcher.Launch(pipeline); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("reading output file: %v", err)
	}
	if got := string(data); got != "3\n" && got != "       3\n" {
		t.Fatalf("got output %q, want a word count of 3", got)
	}
}

func TestLaunchBackgroundAnnouncesAndReaps(t *testing.T) {
	launcher, table, _, cleanup := newTestRig(t)
	defer cleanup()

	pipeline := &parser.Pipeline{
		Commands:   []parser.Command{{Command: "sleep", Tokens: []string{"0.2"}}},
		Background: true,
	}
	if err := launcher.Launch(pipeline); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if n := table.Len(); n != 1 {
		t.Fatalf("expected one background job right after launch, got %d", n)
	}

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if table.Len() == 0 {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("background job was never reaped")
}

func TestLaunchUnknownCommand(t *testing.T) {
	launcher, table, _, cleanup := newTestRig(t)
	defer cleanup()

	pipeline := &parser.Pipeline{
		Commands: []parser.Command{{Command: "nosuchprog-jcsh-test"}},
	}
	err := launcher.Launch(pipeline)
	if err == nil {
		t.Fatal("expected an ExecError for an unknown command")
	}
	if _, ok := err.(*ExecError); !ok {
		t.Fatalf("got error of type %T, want *ExecError", err)
	}

	if n := table.Len(); n != 0 {
		t.Fatalf("table must stay empty when no process was ever forked, got %d", n)
	}
}
