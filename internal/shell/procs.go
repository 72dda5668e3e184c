package shell

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"

	"jobshell/internal/proctable"
)

var statusStyles = map[proctable.Status]lipgloss.Style{
	proctable.StatusRunning:    lipgloss.NewStyle().Foreground(lipgloss.Color("#10B981")),
	proctable.StatusSuspended:  lipgloss.NewStyle().Foreground(lipgloss.Color("#F59E0B")),
	proctable.StatusTerminated: lipgloss.NewStyle().Foreground(lipgloss.Color("#EF4444")),
}

func styleStatus(status proctable.Status) string {
	style, ok := statusStyles[status]
	if !ok {
		return status.String()
	}
	return style.Render(status.String())
}

// printProcs shows every tracked process and forgets the terminated ones.
func (s *Shell) printProcs() {
	var style func(proctable.Status) string
	if s.color {
		style = styleStatus
	}
	fmt.Fprint(s.out, proctable.Format(s.table.ListAndPrune(), style))
}
