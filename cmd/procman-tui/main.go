package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/rs/zerolog"

	"procman/internal/app"
	"procman/internal/logging"
	"procman/internal/tui"
)

func main() {
	configPath := flag.String("config", "", "Path to a config file (yaml, json or toml)")
	local := flag.Bool("local", false, "Use an in-process engine instead of the daemon")
	logFile := flag.String("log-file", "", "Write logs to this file; the screen belongs to the UI")
	flag.Parse()

	ctrl := app.New(app.Options{ConfigPath: *configPath, Local: *local, Log: uiLogger(*logFile)})
	if err := tui.Run(ctrl); err != nil {
		fmt.Fprintf(os.Stderr, "tui exited with error: %v\n", err)
		os.Exit(1)
	}
}

func uiLogger(path string) zerolog.Logger {
	if path == "" {
		return zerolog.Nop()
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		fmt.Fprintf(os.Stderr, "open log file: %v\n", err)
		os.Exit(1)
	}
	log, err := logging.New("debug", f)
	if err != nil {
		return zerolog.Nop()
	}
	return log
}
