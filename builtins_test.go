package jcsh

import "testing"

func TestParseNonNegInt(t *testing.T) {
	cases := []struct {
		in   string
		want int
		ok   bool
	}{
		{"0", 0, true},
		{"42", 42, true},
		{"", 0, false},
		{"-1", 0, false},
		{"+1", 0, false},
		{"1abc", 0, false},
		{"abc", 0, false},
		{" 1", 0, false},
	}
	for _, c := range cases {
		got, ok := parseNonNegInt(c.in)
		if ok != c.ok || (ok && got != c.want) {
			t.Errorf("parseNonNegInt(%q) = (%d, %v), want (%d, %v)", c.in, got, ok, c.want, c.ok)
		}
	}
}

func newTestBuiltins() *Builtins {
	table := NewJobTable()
	term := NewTerminalController(0)
	state := NewGlobalState()
	return NewBuiltins(table, term, state)
}

func TestFgUsageError(t *testing.T) {
	b := newTestBuiltins()
	err := b.Dispatch("fg", nil)
	if err == nil {
		t.Fatal("expected a usage error for fg with no arguments")
	}
	if err.Error() != "Usage: fg <jobid>." {
		t.Fatalf("got %q, want the fg usage message", err.Error())
	}
}

func TestFgNoSuchJob(t *testing.T) {
	b := newTestBuiltins()
	err := b.Dispatch("fg", []string{"3"})
	if err == nil {
		t.Fatal("expected an error for a nonexistent job")
	}
	if err.Error() != "fg 3:  No such job." {
		t.Fatalf("got %q, want the exact diagnostic", err.Error())
	}
}

func TestSlayBarePidNotFound(t *testing.T) {
	b := newTestBuiltins()
	err := b.Dispatch("slay", []string{"12345"})
	if err == nil {
		t.Fatal("expected an error for an unknown pid")
	}
	if err.Error() != "No process with pid 12345." {
		t.Fatalf("got %q, want the exact diagnostic", err.Error())
	}
}

func TestSlayJobIndexOutOfRange(t *testing.T) {
	b := newTestBuiltins()
	b.table.Lock()
	job := b.table.AddJob(Background, "sleep 30")
	p := NewProcess("sleep", []string{"30"})
	b.table.RegisterProcess(job, p, 999)
	b.table.Unlock()

	if err := b.Dispatch("slay", []string{"1", "5"}); err == nil {
		t.Fatal("expected an out-of-range index error")
	}
}

func TestQuitReturnsSentinel(t *testing.T) {
	b := newTestBuiltins()
	if err := b.Dispatch("quit", nil); err != ErrQuit {
		t.Fatalf("got %v, want ErrQuit", err)
	}
	if err := b.Dispatch("exit", nil); err != ErrQuit {
		t.Fatalf("got %v, want ErrQuit", err)
	}
}

func TestIsBuiltin(t *testing.T) {
	for _, name := range []string{"quit", "exit", "jobs", "fg", "bg", "slay", "halt", "cont", "cd", "help"} {
		if !IsBuiltin(name) {
			t.Errorf("expected %q to be a builtin", name)
		}
	}
	if IsBuiltin("echo") {
		t.Error("echo is an external command, not a builtin")
	}
}
