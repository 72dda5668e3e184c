package shell

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/chzyer/readline"
	"github.com/mattn/go-isatty"

	"jobshell/internal/cmdline"
	"jobshell/internal/config"
	"jobshell/internal/executor"
	"jobshell/internal/history"
	"jobshell/internal/logging"
	"jobshell/internal/proctable"
	"jobshell/internal/signals"
)

type Shell struct {
	config     *config.Config
	logger     *slog.Logger
	history    *history.History
	table      *proctable.Table
	engine     *executor.Engine
	signals    *signals.Dispatcher
	reader     lineReader
	stdin      *os.File
	out        *os.File
	errOut     *os.File
	color      bool
	quitting   bool
	signalChan chan os.Signal
}

type Option func(*Shell)

// WithIO runs the shell on the given files instead of the process's
// standard streams.
func WithIO(in, out, errOut *os.File) Option {
	return func(s *Shell) {
		s.stdin = in
		s.out = out
		s.errOut = errOut
	}
}

func New(cfg *config.Config, logger *slog.Logger, opts ...Option) (*Shell, error) {
	if logger == nil {
		logger = logging.Discard()
	}
	table := proctable.New(proctable.WithLogger(logger))
	s := &Shell{
		config:     cfg,
		logger:     logger,
		history:    history.New(),
		table:      table,
		engine:     executor.New(table, logger),
		signals:    signals.New(table, logger),
		stdin:      os.Stdin,
		out:        os.Stdout,
		errOut:     os.Stderr,
		signalChan: make(chan os.Signal, 1),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.engine.Stdin = s.stdin
	s.engine.Stdout = s.out
	s.engine.Stderr = s.errOut

	r, err := newReader(cfg, s.stdin, s.out, s.errOut)
	if err != nil {
		return nil, fmt.Errorf("error initializing readline: %w", err)
	}
	s.reader = r
	s.color = cfg.Color && isatty.IsTerminal(s.out.Fd())
	return s, nil
}

// Run reads and executes lines until quit or end of input. It returns an
// error only when the shell cannot continue.
func (s *Shell) Run() error {
	s.setupSignalHandling()
	defer s.stopSignalHandling()
	defer s.close()

	for !s.quitting {
		prompt, err := s.prompt()
		if err != nil {
			return err
		}
		s.reader.SetPrompt(prompt)

		line, err := s.reader.Readline()
		if errors.Is(err, readline.ErrInterrupt) {
			continue
		} else if errors.Is(err, io.EOF) {
			return nil
		} else if err != nil {
			return fmt.Errorf("reading input: %w", err)
		}

		if err := s.Execute(line); err != nil {
			if errors.Is(err, executor.ErrFatal) {
				s.logger.Error("cannot continue", "error", err)
				return err
			}
			fmt.Fprintln(s.errOut, err)
		}
	}
	return nil
}

// Execute handles one input line: history expansion, built-ins, then
// external commands.
func (s *Shell) Execute(input string) error {
	line := strings.TrimSpace(input)
	if line == "" {
		return nil
	}

	expanded, handled, err := s.history.Expand(line, s.out)
	s.history.Record(line)
	if err != nil || handled {
		return err
	}
	if expanded != line {
		fmt.Fprintln(s.out, expanded)
	}

	cmd, err := cmdline.Parse(expanded)
	if err != nil {
		return err
	}

	if cmd.Next == nil {
		if ok, err := s.executeBuiltin(cmd.Args); ok {
			return err
		}
	}
	return s.engine.Execute(cmd)
}

func (s *Shell) prompt() (string, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("%w: getcwd: %v", executor.ErrFatal, err)
	}
	return cwd + "> ", nil
}

func (s *Shell) close() {
	for _, e := range s.table.Entries() {
		if e.Status != proctable.StatusTerminated {
			s.logger.Debug("leaving process behind", "pid", e.Pid, "command", e.Cmd.Name, "status", e.Status)
		}
	}
	s.table.Close()
	if err := s.reader.Close(); err != nil {
		s.logger.Debug("closing reader", "error", err)
	}
}
