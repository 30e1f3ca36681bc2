package jcsh

import (
	"os"
	"strconv"
	"strings"
	"time"
)

var defaultPrompt = "\033[1;36m%u@%h\033[0m:\033[1;34m%w\033[0m (%j)$ "

// Prompt expands the shell's prompt format string. %j (live job count)
// and %? (last foreground job's exit status) surface the job table's
// state, the one thing this shell does that the prompt has reason to
// show.
type Prompt struct {
	state *GlobalState
	table *JobTable
}

// NewPrompt wires a Prompt to the state it reads for %w/%W and the job
// table it reads for %j.
func NewPrompt(state *GlobalState, table *JobTable) *Prompt {
	return &Prompt{state: state, table: table}
}

// Render expands the JCSH_PROMPT environment variable, falling back to
// the default format, against the shell's current state.
func (p *Prompt) Render() string {
	format := os.Getenv("JCSH_PROMPT")
	if format == "" {
		format = defaultPrompt
	}
	return p.expand(format)
}

func (p *Prompt) expand(format string) string {
	username := os.Getenv("USER")
	hostname, _ := os.Hostname()
	cwd := p.state.CWD()

	replacements := map[string]string{
		"%u": username,
		"%h": hostname,
		"%w": cwd,
		"%W": shortenPath(cwd),
		"%d": time.Now().Format("2006-01-02"),
		"%t": time.Now().Format("15:04:05"),
		"%j": strconv.Itoa(p.table.Len()),
		"%?": strconv.Itoa(p.state.LastExitStatus()),
		"%$": "$",
	}

	for key, value := range replacements {
		format = strings.ReplaceAll(format, key, value)
	}
	return format
}

func shortenPath(path string) string {
	home := os.Getenv("HOME")
	if home != "" && strings.HasPrefix(path, home) {
		return "~" + path[len(home):]
	}
	return path
}
