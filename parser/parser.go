// Package parser turns a line of shell input into a Pipeline: an ordered
// sequence of Commands connected by pipes, with optional file redirections
// and an optional trailing background flag. The grammar is built on
// participle.
package parser

import (
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
)

// Command is one pipeline stage: the executable name plus its argv tail.
type Command struct {
	Command string
	Tokens  []string
}

// Pipeline is the parser's sole output type.
type Pipeline struct {
	Commands   []Command
	Input      string
	Output     string
	Background bool
}

// word is one shell token: a bareword or a single/double-quoted string.
type word struct {
	Bare   string `parser:"  @Ident"`
	Single string `parser:"| @Single"`
	Double string `parser:"| @Double"`
}

func (w *word) text() string {
	switch {
	case w.Single != "":
		return strings.Trim(w.Single, "'")
	case w.Double != "":
		return unquoteDouble(w.Double)
	default:
		return w.Bare
	}
}

func unquoteDouble(s string) string {
	s = strings.Trim(s, `"`)
	s = strings.ReplaceAll(s, `\"`, `"`)
	return s
}

// stage is one grammar production for a pipeline stage: a non-empty run of
// words.
type stage struct {
	Words []*word `parser:"@@+"`
}

// redirect captures a single trailing "< file", "> file" or ">> file".
// Op holds whichever operator literal matched; Parse below maps it onto
// Pipeline.Input/Output.
type redirect struct {
	Op     string `parser:"@(AppendOp | OutOp | InOp)"`
	Target *word  `parser:"@@"`
}

// line is the top-level grammar production: stages separated by "|",
// followed by zero or more redirects, followed by an optional "&".
type line struct {
	Stages     []*stage    `parser:"@@ ('|' @@)*"`
	Redirects  []*redirect `parser:"@@*"`
	Background bool        `parser:"@Amp?"`
}

var shellLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "whitespace", Pattern: `\s+`},
	{Name: "AppendOp", Pattern: `>>`},
	{Name: "OutOp", Pattern: `>`},
	{Name: "InOp", Pattern: `<`},
	{Name: "Pipe", Pattern: `\|`},
	{Name: "Amp", Pattern: `&`},
	{Name: "Double", Pattern: `"(\\.|[^"])*"`},
	{Name: "Single", Pattern: `'[^']*'`},
	{Name: "Ident", Pattern: `[^\s|<>&"']+`},
})

var shellParser = participle.MustBuild[line](
	participle.Lexer(shellLexer),
	participle.Elide("whitespace"),
	participle.UseLookahead(2),
)

// Parser turns lines into Pipelines. It holds no state of its own; a
// single instance is safe for reuse across an entire shell session.
type Parser struct{}

// New returns a ready-to-use Parser.
func New() *Parser {
	return &Parser{}
}

// Parse turns one line into a Pipeline. A blank or whitespace-only line yields
// (nil, nil): the REPL treats that as "nothing to do", not an error.
func (p *Parser) Parse(text string) (*Pipeline, error) {
	if strings.TrimSpace(text) == "" {
		return nil, nil
	}

	l, err := shellParser.ParseString("", text)
	if err != nil {
		return nil, err
	}

	out := &Pipeline{Background: l.Background}
	for _, st := range l.Stages {
		words := st.Words
		cmd := Command{Command: words[0].text()}
		for _, w := range words[1:] {
			cmd.Tokens = append(cmd.Tokens, w.text())
		}
		out.Commands = append(out.Commands, cmd)
	}

	for _, r := range l.Redirects {
		target := r.Target.text()
		if r.Op == "<" {
			out.Input = target
		} else {
			out.Output = target
		}
	}

	return out, nil
}
