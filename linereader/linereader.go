// Package linereader wraps github.com/chzyer/readline behind a small
// prompt-and-read surface: Init once, then ReadLine repeatedly until it
// reports EOF.
package linereader

import (
	"io"

	"github.com/chzyer/readline"
)

// AutoCompleter is satisfied by readline.AutoCompleter; declared here so
// callers outside this package don't need to import chzyer/readline
// themselves just to build one.
type AutoCompleter = readline.AutoCompleter

// Reader prompts for and reads one line at a time. History stays in
// memory only; no HistoryFile is configured.
type Reader struct {
	instance *readline.Instance
}

// Init constructs the underlying readline.Instance. Call once.
func Init(prompt string, completer AutoCompleter) (*Reader, error) {
	instance, err := readline.NewEx(&readline.Config{
		Prompt:          prompt,
		AutoComplete:    completer,
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		return nil, err
	}
	return &Reader{instance: instance}, nil
}

// SetPrompt updates the prompt shown before the next ReadLine.
func (r *Reader) SetPrompt(prompt string) {
	r.instance.SetPrompt(prompt)
}

// ReadLine reads one line; false on EOF. A bare ^C is reported as an
// empty, non-EOF line so the REPL just reprompts.
func (r *Reader) ReadLine() (string, bool) {
	line, err := r.instance.Readline()
	switch err {
	case nil:
		return line, true
	case readline.ErrInterrupt:
		return "", true
	case io.EOF:
		return "", false
	default:
		return "", false
	}
}

func (r *Reader) Close() error {
	return r.instance.Close()
}
