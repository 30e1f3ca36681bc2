package jcsh

import (
	"strconv"
	"strings"

	"github.com/chzyer/readline"
)

// NewCompleter completes builtin names at the start of a line and live
// job numbers as the argument to fg/bg/slay/halt/cont.
func NewCompleter(table *JobTable) readline.AutoCompleter {
	return readline.NewPrefixCompleter(
		readline.PcItem("quit"),
		readline.PcItem("exit"),
		readline.PcItem("jobs"),
		readline.PcItem("help"),
		readline.PcItem("cd"),
		readline.PcItem("fg", jobNumberItems(table)...),
		readline.PcItem("bg", jobNumberItems(table)...),
		readline.PcItem("slay", jobNumberItems(table)...),
		readline.PcItem("halt", jobNumberItems(table)...),
		readline.PcItem("cont", jobNumberItems(table)...),
	)
}

// jobNumberItems evaluates the live job numbers fresh each time completion
// is requested.
func jobNumberItems(table *JobTable) []readline.PrefixCompleterInterface {
	return []readline.PrefixCompleterInterface{
		readline.PcItemDynamic(func(string) []string {
			table.Lock()
			defer table.Unlock()
			return liveJobNumbers(table)
		}),
	}
}

func liveJobNumbers(table *JobTable) []string {
	var out []string
	for _, line := range strings.Split(table.Listing(), "\n") {
		line = strings.TrimSpace(line)
		if !strings.HasPrefix(line, "[") {
			continue
		}
		end := strings.Index(line, "]")
		if end < 1 {
			continue
		}
		if _, err := strconv.Atoi(line[1:end]); err == nil {
			out = append(out, line[1:end])
		}
	}
	return out
}
