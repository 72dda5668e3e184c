package shell

import (
	"os/signal"
	"syscall"
)

// setupSignalHandling keeps terminal-generated signals from killing the
// shell while a foreground child runs. They must be caught, not ignored:
// an ignored disposition survives exec and would reach the children.
func (s *Shell) setupSignalHandling() {
	signal.Notify(s.signalChan, syscall.SIGINT, syscall.SIGTSTP, syscall.SIGQUIT)
	go s.handleSignals()
}

func (s *Shell) stopSignalHandling() {
	signal.Stop(s.signalChan)
	close(s.signalChan)
}

func (s *Shell) handleSignals() {
	for sig := range s.signalChan {
		s.logger.Debug("terminal signal ignored by shell", "signal", sig)
	}
}
