package shell

import (
	"errors"
	"fmt"
	"os"

	"jobshell/internal/signals"
)

var errMissingDir = errors.New("cd: missing argument")

func (s *Shell) executeBuiltin(args []string) (bool, error) {
	switch {
	case args[0] == "quit":
		s.quitting = true
		return true, nil
	case args[0] == "cd":
		return true, s.changeDirectory(args[1:])
	case args[0] == "procs":
		s.printProcs()
		return true, nil
	case signals.IsVerb(args[0]):
		return true, s.signals.Dispatch(args)
	default:
		return false, nil
	}
}

func (s *Shell) changeDirectory(args []string) error {
	if len(args) == 0 {
		return errMissingDir
	}
	if err := os.Chdir(args[0]); err != nil {
		return fmt.Errorf("cd: %w", err)
	}
	return nil
}
