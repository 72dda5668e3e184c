// Package cmdline turns a raw input line into command records.
package cmdline

import (
	"errors"
	"fmt"
	"strings"

	"github.com/kballard/go-shellquote"
)

var (
	ErrEmpty             = errors.New("empty command")
	ErrEmptyStage        = errors.New("missing command in pipeline")
	ErrTooManyStages     = errors.New("only two-stage pipelines are supported")
	ErrMissingRedirect   = errors.New("missing redirection target")
	ErrDuplicateRedirect = errors.New("duplicate redirection")
)

// CmdLine is one parsed command. Args[0] is always the program name.
type CmdLine struct {
	Name           string
	Args           []string
	InputRedirect  string
	OutputRedirect string
	Blocking       bool
	Next           *CmdLine
}

// Clone returns a deep copy of the command without its pipeline
// continuation.
func (c *CmdLine) Clone() *CmdLine {
	return &CmdLine{
		Name:           c.Name,
		Args:           append([]string(nil), c.Args...),
		InputRedirect:  c.InputRedirect,
		OutputRedirect: c.OutputRedirect,
		Blocking:       c.Blocking,
	}
}

func (c *CmdLine) String() string {
	s := shellquote.Join(c.Args...)
	if c.InputRedirect != "" {
		s += " < " + shellquote.Join(c.InputRedirect)
	}
	if c.OutputRedirect != "" {
		s += " > " + shellquote.Join(c.OutputRedirect)
	}
	if c.Next != nil {
		s += " | " + c.Next.String()
	}
	return s
}

// Parse splits a line into at most two pipeline stages. A trailing
// unquoted, unescaped '&' makes every stage non-blocking.
func Parse(line string) (*CmdLine, error) {
	line = strings.TrimSpace(line)
	if line == "" {
		return nil, ErrEmpty
	}

	words, blocking, err := splitWords(line)
	if err != nil {
		return nil, fmt.Errorf("error parsing command: %w", err)
	}
	if len(words) == 0 {
		return nil, ErrEmpty
	}

	stages := splitStages(words)
	if len(stages) > 2 {
		return nil, ErrTooManyStages
	}

	var head, prev *CmdLine
	for _, stage := range stages {
		cmd, err := parseStage(stage)
		if err != nil {
			return nil, err
		}
		cmd.Blocking = blocking
		if head == nil {
			head = cmd
		} else {
			prev.Next = cmd
		}
		prev = cmd
	}
	return head, nil
}

// splitWords tokenizes line. A trailing '&' is a background marker only
// when the text before it still tokenizes on its own; otherwise it was
// escaped or quoted and stays part of the last word.
func splitWords(line string) ([]string, bool, error) {
	if rest, ok := strings.CutSuffix(line, "&"); ok {
		if words, err := shellquote.Split(rest); err == nil {
			return words, false, nil
		}
	}
	words, err := shellquote.Split(line)
	return words, true, err
}

func splitStages(words []string) [][]string {
	stages := [][]string{nil}
	for _, w := range words {
		if w == "|" {
			stages = append(stages, nil)
			continue
		}
		stages[len(stages)-1] = append(stages[len(stages)-1], w)
	}
	return stages
}

func parseStage(words []string) (*CmdLine, error) {
	cmd := &CmdLine{}
	for i := 0; i < len(words); i++ {
		w := words[i]
		if w == "" || (w[0] != '<' && w[0] != '>') {
			cmd.Args = append(cmd.Args, w)
			continue
		}

		target := w[1:]
		if target == "" {
			if i+1 >= len(words) {
				return nil, fmt.Errorf("%w after %q", ErrMissingRedirect, w)
			}
			i++
			target = words[i]
		}

		dst := &cmd.OutputRedirect
		if w[0] == '<' {
			dst = &cmd.InputRedirect
		}
		if *dst != "" {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateRedirect, w[:1])
		}
		*dst = target
	}

	if len(cmd.Args) == 0 {
		return nil, ErrEmptyStage
	}
	cmd.Name = cmd.Args[0]
	return cmd, nil
}
