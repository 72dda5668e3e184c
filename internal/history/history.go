// Package history keeps the last few accepted command lines and expands
// recall syntax (!!, !n) against them.
package history

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"
)

// Capacity is the number of lines kept. Older lines are evicted first.
const Capacity = 10

var (
	ErrNoHistory    = errors.New("no history")
	ErrInvalidIndex = errors.New("invalid history index")
)

type History struct {
	items [Capacity]string
	head  int
	size  int
	mu    sync.Mutex
}

func New() *History {
	return &History{}
}

// Record appends line unless it is empty or itself a history command.
func (h *History) Record(line string) {
	if !recordable(line) {
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	tail := (h.head + h.size) % Capacity
	h.items[tail] = line
	if h.size < Capacity {
		h.size++
	} else {
		h.head = (h.head + 1) % Capacity
	}
}

func recordable(line string) bool {
	return line != "" && line != "history" && !strings.HasPrefix(line, "!")
}

// GetAll returns the recorded lines, oldest first.
func (h *History) GetAll() []string {
	h.mu.Lock()
	defer h.mu.Unlock()

	out := make([]string, h.size)
	for i := range out {
		out[i] = h.items[(h.head+i)%Capacity]
	}
	return out
}

// Get returns the n-th line, 1-based, oldest first.
func (h *History) Get(n int) (string, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if n < 1 || n > h.size {
		return "", fmt.Errorf("%w: %d", ErrInvalidIndex, n)
	}
	return h.items[(h.head+n-1)%Capacity], nil
}

func (h *History) last() (string, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.size == 0 {
		return "", ErrNoHistory
	}
	return h.items[(h.head+h.size-1)%Capacity], nil
}

// Expand applies history syntax to line. "history" prints the buffer to w
// and reports handled; "!!" and "!<n>" return the recalled line, which the
// caller runs as if it had been typed. Any other line is returned as is.
// On error the original line is returned unexpanded.
func (h *History) Expand(line string, w io.Writer) (string, bool, error) {
	switch {
	case line == "history":
		h.print(w)
		return line, true, nil

	case line == "!!":
		recalled, err := h.last()
		if err != nil {
			return line, false, err
		}
		return recalled, false, nil

	case isIndexRecall(line):
		n, err := strconv.Atoi(line[1:])
		if err != nil {
			return line, false, fmt.Errorf("%w: %s", ErrInvalidIndex, line[1:])
		}
		recalled, err := h.Get(n)
		if err != nil {
			return line, false, err
		}
		if sendsSignal(recalled) {
			fmt.Fprintf(w, "warning: recalled command %q sends a signal to a process\n", recalled)
		}
		return recalled, false, nil
	}

	return line, false, nil
}

func (h *History) print(w io.Writer) {
	for i, cmd := range h.GetAll() {
		fmt.Fprintf(w, "%d: %s\n", i+1, cmd)
	}
}

func isIndexRecall(line string) bool {
	if len(line) < 2 || line[0] != '!' {
		return false
	}
	for _, r := range line[1:] {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func sendsSignal(line string) bool {
	for _, verb := range []string{"stop ", "wake ", "term "} {
		if strings.HasPrefix(line, verb) {
			return true
		}
	}
	return false
}
