// Package signals implements the stop, wake and term built-ins.
package signals

import (
	"errors"
	"fmt"
	"log/slog"
	"strconv"

	"golang.org/x/sys/unix"

	"jobshell/internal/logging"
	"jobshell/internal/proctable"
)

var (
	ErrUsage       = errors.New("usage")
	ErrUnknownVerb = errors.New("unknown signal command")
)

type verb struct {
	signal unix.Signal
	status proctable.Status
}

var verbs = map[string]verb{
	"stop": {unix.SIGSTOP, proctable.StatusSuspended},
	"wake": {unix.SIGCONT, proctable.StatusRunning},
	"term": {unix.SIGINT, proctable.StatusTerminated},
}

// IsVerb reports whether name is one of the signal built-ins.
func IsVerb(name string) bool {
	_, ok := verbs[name]
	return ok
}

type Dispatcher struct {
	table  *proctable.Table
	kill   func(pid int, sig unix.Signal) error
	logger *slog.Logger
}

func New(table *proctable.Table, logger *slog.Logger) *Dispatcher {
	if logger == nil {
		logger = logging.Discard()
	}
	return &Dispatcher{
		table:  table,
		kill:   unix.Kill,
		logger: logger,
	}
}

// Dispatch sends the signal named by args[0] to the pid in args[1]. The
// table entry is updated only after the signal was delivered.
func (d *Dispatcher) Dispatch(args []string) error {
	if len(args) == 0 {
		return ErrUnknownVerb
	}
	name := args[0]
	v, ok := verbs[name]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownVerb, name)
	}

	if len(args) != 2 {
		return fmt.Errorf("%w: %s <process id>", ErrUsage, name)
	}
	pid, err := strconv.Atoi(args[1])
	if err != nil || pid <= 0 {
		return fmt.Errorf("%w: %s <process id>", ErrUsage, name)
	}

	if _, tracked := d.table.Lookup(pid); !tracked {
		d.logger.Debug("signal target not tracked", "pid", pid, "verb", name)
	}
	if err := d.kill(pid, v.signal); err != nil {
		return fmt.Errorf("%s failed: %w", name, err)
	}
	d.logger.Debug("signal sent", "pid", pid, "signal", v.signal)
	d.table.MarkStatus(pid, v.status)
	return nil
}
