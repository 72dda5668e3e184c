package proctable

import (
	"errors"

	"golang.org/x/sys/unix"
)

// Waiter polls the OS for state changes of a child without blocking.
type Waiter interface {
	Poll(pid int) (Event, error)
}

// UnixWaiter polls with wait4(2).
type UnixWaiter struct{}

func (UnixWaiter) Poll(pid int) (Event, error) {
	var ws unix.WaitStatus
	for {
		wpid, err := unix.Wait4(pid, &ws, unix.WNOHANG|unix.WUNTRACED|unix.WCONTINUED, nil)
		switch {
		case errors.Is(err, unix.EINTR):
			continue
		case errors.Is(err, unix.ECHILD):
			// Already reaped elsewhere, so it is gone.
			return EventExited, nil
		case err != nil:
			return EventNone, err
		case wpid == 0:
			return EventNone, nil
		}
		return eventFromStatus(ws), nil
	}
}

func eventFromStatus(ws unix.WaitStatus) Event {
	switch {
	case ws.Exited(), ws.Signaled():
		return EventExited
	case ws.Stopped():
		return EventStopped
	case ws.Continued():
		return EventContinued
	default:
		return EventNone
	}
}
