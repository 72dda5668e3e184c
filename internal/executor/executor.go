// Package executor starts external commands and two-stage pipelines,
// wiring redirections and registering single commands in the process
// table.
package executor

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"

	"golang.org/x/sys/unix"

	"jobshell/internal/cmdline"
	"jobshell/internal/logging"
	"jobshell/internal/proctable"
)

var (
	// ErrFatal marks failures that leave the shell unable to start
	// processes at all.
	ErrFatal = errors.New("fatal")

	ErrPipelineOutputRedirect = errors.New("cannot redirect output in the middle of a pipeline")
	ErrPipelineInputRedirect  = errors.New("cannot redirect input at the end of a pipeline")
)

// SetupError is a failure to prepare or start one child. It affects only
// that command.
type SetupError struct {
	Op  string
	Err error
}

func (e *SetupError) Error() string {
	return fmt.Sprintf("%s failed: %v", e.Op, e.Err)
}

func (e *SetupError) Unwrap() error { return e.Err }

// IsBuiltin reports whether name is handled by the shell itself and must
// never be launched.
func IsBuiltin(name string) bool {
	switch name {
	case "procs", "cd", "quit":
		return true
	}
	return false
}

type Engine struct {
	table  *proctable.Table
	logger *slog.Logger

	Stdin  *os.File
	Stdout *os.File
	Stderr *os.File
}

func New(table *proctable.Table, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = logging.Discard()
	}
	return &Engine{
		table:  table,
		logger: logger,
		Stdin:  os.Stdin,
		Stdout: os.Stdout,
		Stderr: os.Stderr,
	}
}

// Execute runs cmd, or the pipeline it heads. Child setup failures are
// reported on Stderr and do not produce an error; only ErrFatal failures
// and pipeline shape errors are returned.
func (e *Engine) Execute(cmd *cmdline.CmdLine) error {
	if cmd.Next != nil {
		return e.Pipeline(cmd, cmd.Next)
	}
	if IsBuiltin(cmd.Name) {
		return nil
	}

	pid, err := e.spawn(cmd, e.Stdin, e.Stdout)
	if err != nil {
		return e.report(err)
	}

	e.table.Register(pid, cmd.Clone())
	if cmd.Blocking {
		e.wait(pid)
		e.table.MarkStatus(pid, proctable.StatusTerminated)
	}
	return nil
}

// Pipeline connects cmd1's stdout to cmd2's stdin. Neither stage is
// tracked in the process table.
func (e *Engine) Pipeline(cmd1, cmd2 *cmdline.CmdLine) error {
	if cmd1.OutputRedirect != "" {
		return ErrPipelineOutputRedirect
	}
	if cmd2.InputRedirect != "" {
		return ErrPipelineInputRedirect
	}

	r, w, err := os.Pipe()
	if err != nil {
		return fmt.Errorf("%w: pipe: %v", ErrFatal, err)
	}

	var pids []int
	pid1, err1 := e.spawn(cmd1, e.Stdin, w)
	if err1 == nil {
		pids = append(pids, pid1)
	}
	var err2 error
	if !errors.Is(err1, ErrFatal) {
		var pid2 int
		pid2, err2 = e.spawn(cmd2, r, e.Stdout)
		if err2 == nil {
			pids = append(pids, pid2)
		}
	}

	// Both ends must be closed here or the reader never sees EOF.
	r.Close()
	w.Close()

	for _, stageErr := range []error{err1, err2} {
		if stageErr == nil {
			continue
		}
		if err := e.report(stageErr); err != nil {
			return err
		}
	}

	if cmd2.Blocking {
		for _, pid := range pids {
			e.wait(pid)
		}
	}
	return nil
}

// spawn starts cmd with the given default streams, replacing them with
// the command's redirect targets when set. It returns the child's pid.
func (e *Engine) spawn(cmd *cmdline.CmdLine, stdin, stdout *os.File) (int, error) {
	if cmd.InputRedirect != "" {
		f, err := os.Open(cmd.InputRedirect)
		if err != nil {
			return 0, &SetupError{Op: "input redirection", Err: err}
		}
		defer f.Close()
		stdin = f
	}
	if cmd.OutputRedirect != "" {
		f, err := os.OpenFile(cmd.OutputRedirect, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644)
		if err != nil {
			return 0, &SetupError{Op: "output redirection", Err: err}
		}
		defer f.Close()
		stdout = f
	}

	c := exec.Command(cmd.Name, cmd.Args[1:]...)
	c.Stdin = stdin
	c.Stdout = stdout
	c.Stderr = e.Stderr

	if err := c.Start(); err != nil {
		if resourceExhausted(err) {
			return 0, fmt.Errorf("%w: fork: %v", ErrFatal, err)
		}
		return 0, &SetupError{Op: "exec", Err: err}
	}

	pid := c.Process.Pid
	// Waiting goes through wait4 on the pid from here on.
	c.Process.Release()

	e.logger.Debug("started", "pid", pid, "command", cmd.String())
	return pid, nil
}

// report prints child-confined failures and passes fatal ones through.
func (e *Engine) report(err error) error {
	var setupErr *SetupError
	if errors.As(err, &setupErr) {
		fmt.Fprintln(e.Stderr, setupErr)
		return nil
	}
	return err
}

// wait blocks until pid exits.
func (e *Engine) wait(pid int) {
	var ws unix.WaitStatus
	for {
		_, err := unix.Wait4(pid, &ws, 0, nil)
		if errors.Is(err, unix.EINTR) {
			continue
		}
		if err != nil {
			e.logger.Warn("wait failed", "pid", pid, "error", err)
			return
		}
		break
	}

	if ws.Signaled() {
		e.logger.Debug("process killed", "pid", pid, "signal", ws.Signal())
	} else {
		e.logger.Debug("process exited", "pid", pid, "code", ws.ExitStatus())
	}
}

func resourceExhausted(err error) bool {
	for _, errno := range []error{unix.EAGAIN, unix.ENOMEM, unix.ENFILE, unix.EMFILE} {
		if errors.Is(err, errno) {
			return true
		}
	}
	return false
}
