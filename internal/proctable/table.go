// Package proctable tracks the child processes launched by the shell.
//
// Entries are kept in launch order. Status changes come from two places:
// the signal dispatcher marks user-initiated transitions eagerly, and
// ReconcileAll picks up everything else by polling the OS. A terminated
// entry stays in the table until ListAndPrune has shown it once.
package proctable

import (
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"jobshell/internal/cmdline"
	"jobshell/internal/logging"
)

// Entry is one tracked child. Cmd is a private copy owned by the entry.
type Entry struct {
	Pid    int
	Cmd    *cmdline.CmdLine
	Status Status
}

// Listing is a display snapshot of one entry.
type Listing struct {
	Pid    int
	Name   string
	Status Status
}

type Table struct {
	mu      sync.Mutex
	entries []*Entry
	waiter  Waiter
	logger  *slog.Logger
}

type Option func(*Table)

// WithWaiter replaces the OS poller, mainly for tests.
func WithWaiter(w Waiter) Option {
	return func(t *Table) { t.waiter = w }
}

func WithLogger(l *slog.Logger) Option {
	return func(t *Table) { t.logger = l }
}

func New(opts ...Option) *Table {
	t := &Table{
		waiter: UnixWaiter{},
		logger: logging.Discard(),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Register starts tracking pid as running. A stale entry with the same
// pid is replaced.
func (t *Table) Register(pid int, cmd *cmdline.CmdLine) *Entry {
	t.mu.Lock()
	defer t.mu.Unlock()

	if i := t.indexOf(pid); i >= 0 {
		t.remove(i)
	}
	e := &Entry{
		Pid:    pid,
		Cmd:    cmd,
		Status: StatusRunning,
	}
	t.entries = append(t.entries, e)
	return e
}

// MarkStatus sets the status of pid. Unknown pids are ignored.
func (t *Table) MarkStatus(pid int, status Status) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if i := t.indexOf(pid); i >= 0 {
		t.entries[i].Status = status
	}
}

// Lookup returns a copy of the entry for pid.
func (t *Table) Lookup(pid int) (Entry, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if i := t.indexOf(pid); i >= 0 {
		return *t.entries[i], true
	}
	return Entry{}, false
}

// Entries returns copies of all entries in launch order without polling.
func (t *Table) Entries() []Entry {
	t.mu.Lock()
	defer t.mu.Unlock()

	out := make([]Entry, len(t.entries))
	for i, e := range t.entries {
		out[i] = *e
	}
	return out
}

// ReconcileAll polls every live entry and applies pending OS events.
func (t *Table) ReconcileAll() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.reconcile()
}

func (t *Table) reconcile() {
	for _, e := range t.entries {
		if e.Status == StatusTerminated {
			continue
		}
		ev, err := t.waiter.Poll(e.Pid)
		if err != nil {
			t.logger.Warn("poll failed", "pid", e.Pid, "error", err)
			continue
		}
		if next := ev.apply(e.Status); next != e.Status {
			t.logger.Debug("reconciled", "pid", e.Pid, "from", e.Status, "to", next)
			e.Status = next
		}
	}
}

// ListAndPrune reconciles, snapshots every entry and drops the ones that
// are terminated, so each terminated process is listed exactly once.
func (t *Table) ListAndPrune() []Listing {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.reconcile()

	listings := make([]Listing, 0, len(t.entries))
	kept := t.entries[:0]
	for _, e := range t.entries {
		listings = append(listings, Listing{Pid: e.Pid, Name: e.Cmd.Name, Status: e.Status})
		if e.Status == StatusTerminated {
			t.reap(e.Pid)
			continue
		}
		kept = append(kept, e)
	}
	clear(t.entries[len(kept):])
	t.entries = kept
	return listings
}

// Close drops every entry, collecting any zombies that are ready.
func (t *Table) Close() {
	t.mu.Lock()
	defer t.mu.Unlock()

	for _, e := range t.entries {
		t.reap(e.Pid)
	}
	t.entries = nil
}

// reap collects an exited child if one is waiting. Entries marked
// terminated by a signal may not have exited yet; those stay zombies
// until shell exit.
func (t *Table) reap(pid int) {
	if _, err := t.waiter.Poll(pid); err != nil {
		t.logger.Debug("reap failed", "pid", pid, "error", err)
	}
}

func (t *Table) indexOf(pid int) int {
	for i, e := range t.entries {
		if e.Pid == pid {
			return i
		}
	}
	return -1
}

func (t *Table) remove(i int) {
	t.entries = append(t.entries[:i], t.entries[i+1:]...)
}

// Header is the first line printed by Format.
const Header = "PID\tCommand\t\tSTATUS"

// Format renders listings one per line under Header. style, if non-nil,
// decorates the status column.
func Format(listings []Listing, style func(Status) string) string {
	var b strings.Builder
	b.WriteString(Header)
	b.WriteByte('\n')
	for _, l := range listings {
		status := l.Status.String()
		if style != nil {
			status = style(l.Status)
		}
		fmt.Fprintf(&b, "%d\t%s\t\t%s\n", l.Pid, l.Name, status)
	}
	return b.String()
}
