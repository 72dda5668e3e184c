package proctable

// Status is the lifecycle state of a tracked process.
type Status int

const (
	StatusRunning Status = iota
	StatusSuspended
	StatusTerminated
)

func (s Status) String() string {
	switch s {
	case StatusRunning:
		return "Running"
	case StatusSuspended:
		return "Suspended"
	case StatusTerminated:
		return "Terminated"
	default:
		return "Unknown"
	}
}

// Event is a state change reported by the OS for one child.
type Event int

const (
	EventNone Event = iota
	EventExited
	EventStopped
	EventContinued
)

// apply maps an OS event onto a status. EventNone leaves it unchanged.
func (e Event) apply(s Status) Status {
	switch e {
	case EventExited:
		return StatusTerminated
	case EventStopped:
		return StatusSuspended
	case EventContinued:
		return StatusRunning
	default:
		return s
	}
}
