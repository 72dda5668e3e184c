package main

import (
	"flag"
	"fmt"
	"os"

	"jobshell/internal/config"
	"jobshell/internal/logging"
	"jobshell/internal/shell"
)

func main() {
	debug := flag.Bool("d", false, "Trace each started process (pid and command) on stderr")
	configFile := flag.String("config", config.DefaultFile(), "Path to YAML config file")
	flag.Parse()

	cfg, err := config.Load(*configFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}
	cfg.Debug = cfg.Debug || *debug

	logger := logging.NewLogger(cfg.LogFormat, cfg.LogLevel, cfg.Debug)

	s, err := shell.New(cfg, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error initializing shell: %v\n", err)
		os.Exit(1)
	}

	if err := s.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
