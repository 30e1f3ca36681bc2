// Command jcsh is a small POSIX-flavored job-control shell: it parses one
// pipeline at a time, runs it in its own process group, and lets the
// user move jobs between foreground, background and stopped with
// fg/bg/slay/halt/cont.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"golang.org/x/sys/unix"

	"jcsh"
	"jcsh/linereader"
	"jcsh/parser"
)

func main() {
	log.SetFlags(0)
	log.SetPrefix("jcsh: ")

	prompt := flag.String("prompt", "", "override the default prompt format string")
	flag.Parse()

	if *prompt != "" {
		os.Setenv("JCSH_PROMPT", *prompt)
	}

	if err := run(); err != nil {
		log.Println(err)
		os.Exit(1)
	}
}

func run() error {
	shellPID := os.Getpid()
	session := jcsh.NewSession()
	log.Printf("session %s started by uid %d at %s", session.SessionID, session.UserID, session.StartTime.Format("15:04:05"))

	state := jcsh.NewGlobalState()
	table := jcsh.NewJobTable()
	term := jcsh.NewTerminalController(unix.Stdin)

	facility := jcsh.NewFacility()
	defer facility.Stop()

	reaper := jcsh.NewReaper(facility, table, term)
	stop := make(chan struct{})
	defer close(stop)
	go reaper.Run(stop)

	builtins := jcsh.NewBuiltins(table, term, state)
	launcher := jcsh.NewLauncher(table, term, state)
	promptRenderer := jcsh.NewPrompt(state, table)
	completer := jcsh.NewCompleter(table)

	reader, err := linereader.Init(promptRenderer.Render(), completer)
	if err != nil {
		return jcsh.NewFatalError(err)
	}
	defer reader.Close()

	repl := jcsh.NewREPL(reader, parser.New(), builtins, launcher, promptRenderer, unix.Stdin)

	fmt.Println("jcsh - a job-control shell")
	return repl.Run(shellPID)
}
