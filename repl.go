package jcsh

import (
	"fmt"
	"os"

	"golang.org/x/term"

	"jcsh/linereader"
	"jcsh/parser"
)

// REPL is the read-parse-dispatch-report loop: read one line from
// the collaborator line reader, parse it, run it as a builtin or hand it
// to the launcher, report any error to stderr, and loop.
type REPL struct {
	reader   *linereader.Reader
	parser   *parser.Parser
	builtins *Builtins
	launcher *Launcher
	prompt   *Prompt
	termFd   int
}

// NewREPL wires every component the loop touches.
func NewREPL(reader *linereader.Reader, p *parser.Parser, builtins *Builtins, launcher *Launcher, prompt *Prompt, termFd int) *REPL {
	return &REPL{reader: reader, parser: p, builtins: builtins, launcher: launcher, prompt: prompt, termFd: termFd}
}

// Run loops until EOF or a quit/exit builtin. The pid check at the
// bottom of each iteration guards against a forked-but-not-exec'd child
// ever continuing this loop as if it were the shell; os/exec never
// exposes that window, but the guard costs nothing.
func (r *REPL) Run(shellPID int) error {
	for {
		r.reader.SetPrompt(r.prompt.Render())
		line, ok := r.reader.ReadLine()
		if !ok {
			return nil
		}

		if err := r.runLine(line); err != nil {
			if err == ErrQuit {
				return nil
			}
			fmt.Fprintln(os.Stderr, err)
		}

		if os.Getpid() != shellPID {
			// An error that unwound past a fork but before the
			// following exec must never let this loop continue
			// running as if it were the shell.
			os.Exit(0)
		}
	}
}

func (r *REPL) runLine(line string) error {
	pipeline, err := r.parser.Parse(line)
	if err != nil {
		return NewParseError(err)
	}
	if pipeline == nil {
		return nil
	}

	if len(pipeline.Commands) == 1 && IsBuiltin(pipeline.Commands[0].Command) {
		cmd := pipeline.Commands[0]
		return r.builtins.Dispatch(cmd.Command, cmd.Tokens)
	}

	return r.launchExternal(pipeline)
}

// launchExternal hands the pipeline to the launcher, restoring a known
// terminal state around it: a foreground job may leave the terminal in
// whatever mode it last set (raw, different echo flags, ...), and the
// line reader expects to be the sole owner of terminal mode whenever it's
// about to read a line.
func (r *REPL) launchExternal(pipeline *parser.Pipeline) error {
	if pipeline.Background {
		return r.launcher.Launch(pipeline)
	}

	saved, saveErr := term.GetState(r.termFd)
	err := r.launcher.Launch(pipeline)
	if saveErr == nil {
		_ = term.Restore(r.termFd, saved)
	}
	return err
}
