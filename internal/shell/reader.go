package shell

import (
	"os"

	"github.com/chzyer/readline"
	"github.com/mattn/go-isatty"

	"jobshell/internal/config"
)

// lineReader is the subset of *readline.Instance the loop needs.
type lineReader interface {
	Readline() (string, error)
	SetPrompt(prompt string)
	Close() error
}

// newReader builds a readline instance on the given streams. When in is
// not a terminal, readline leaves raw mode alone and reads plain lines of
// any length.
func newReader(cfg *config.Config, in, out, errOut *os.File) (*readline.Instance, error) {
	isTerminal := func() bool {
		return isatty.IsTerminal(in.Fd()) && isatty.IsTerminal(out.Fd())
	}
	return readline.NewEx(&readline.Config{
		Prompt:         "> ",
		HistoryFile:    cfg.HistoryFile,
		Stdin:          in,
		Stdout:         out,
		Stderr:         errOut,
		FuncIsTerminal: isTerminal,
	})
}
