package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"procman/internal/config"
	"procman/internal/daemon"
	"procman/internal/logging"
)

func main() {
	configPath := flag.String("config", "", "Path to a config file (yaml, json or toml)")
	force := flag.Bool("force", false, "Stop an existing daemon before starting")
	logLevel := flag.String("log-level", "", "Log level; defaults to the config value")
	flag.Parse()

	cfg, cfgErr := config.Load(*configPath)
	level := *logLevel
	if level == "" {
		level = cfg.LogLevel
	}
	log, err := logging.New(level, os.Stderr)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	if cfgErr != nil {
		log.Fatal().Err(cfgErr).Str("path", *configPath).Msg("load config")
	}

	paths := daemon.PathsFor(cfg)
	if daemon.IsRunning(paths) {
		if !*force {
			pid, err := paths.RunningPID()
			if err != nil {
				log.Fatal().Err(err).Msg("daemon appears running but pid check failed")
			}
			log.Info().Int("pid", pid).Msg("daemon is already running; use --force to restart")
			return
		}
		log.Info().Msg("stopping existing daemon")
		if err := daemon.StopRunningDaemon(paths, true); err != nil {
			log.Fatal().Err(err).Msg("stop running daemon")
		}
	}

	srv, err := daemon.StartDaemon(cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("start daemon")
	}
	log.Info().Int("pid", os.Getpid()).Str("socket", paths.Socket).Msg("daemon started, press Ctrl+C to stop")

	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)
	<-sigc
	log.Info().Msg("stopping daemon")
	if err := srv.Close(); err != nil {
		log.Fatal().Err(err).Msg("shut down daemon")
	}
	log.Info().Msg("daemon stopped")
}
