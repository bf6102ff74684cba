package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/rs/zerolog"

	procmanv1 "procman/api/procman/v1"
	"procman/internal/daemon"
	"procman/internal/proc"
)

var (
	daemonIsRunning  = daemon.IsRunning
	dialDaemonClient = dialDaemon
	localPlatform    = func(log zerolog.Logger) proc.Platform {
		return proc.NewSystemPlatform(log)
	}
)

func dialDaemon(ctx context.Context, p daemon.Paths) (procmanv1.ProcManClient, io.Closer, error) {
	client, conn, err := daemon.Dial(ctx, p)
	if err != nil {
		return nil, nil, err
	}
	return client, conn, nil
}

func resetDaemonDeps() {
	daemonIsRunning = daemon.IsRunning
	dialDaemonClient = dialDaemon
	localPlatform = func(log zerolog.Logger) proc.Platform {
		return proc.NewSystemPlatform(log)
	}
}

// withClient runs fn against the daemon, or the in-process engine in local
// mode. A zero timeout falls back to the configured rpc_timeout.
func (a *App) withClient(ctx context.Context, timeout time.Duration, fn func(context.Context, procmanv1.ProcManClient) error) error {
	if a.cfgErr != nil {
		return a.cfgErr
	}
	if timeout == 0 {
		timeout = a.cfg.RPCTimeout
	}
	if timeout <= 0 {
		return errors.New("timeout must be greater than 0")
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	if a.local {
		a.ensureLocal()
		return fn(ctx, a.localClient)
	}

	paths := a.Paths()
	if !daemonIsRunning(paths) {
		return errors.New("daemon is not running")
	}

	client, conn, err := dialDaemonClient(ctx, paths)
	if err != nil {
		return fmt.Errorf("connect to daemon: %w", err)
	}
	if conn != nil {
		defer conn.Close()
	}

	return fn(ctx, client)
}
