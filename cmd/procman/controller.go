package main

import (
	"context"
	"fmt"
	"time"

	"procman/internal/app"
	"procman/internal/config"
	"procman/internal/daemon"
	"procman/internal/query"
	"procman/internal/tui"
)

// controllerAPI is the part of app.App the commands use.
type controllerAPI interface {
	tui.Controller
	Ping(ctx context.Context, timeout time.Duration) (string, error)
	Tree(ctx context.Context, params app.TreeParams) ([]*query.Node, error)
	Restart(ctx context.Context, params app.ActionParams) (app.ActionResult, error)
	Export(ctx context.Context, params app.ExportParams) (int, error)
	StopDaemon(force bool) error
	ConfigPath() string
	ConfigErr() error
	Config() config.Config
	Paths() daemon.Paths
}

var _ controllerAPI = (*app.App)(nil)

var controllerFactory = func() controllerAPI {
	return app.New(app.Options{ConfigPath: configPath, Local: localMode, Log: rootLog})
}

func controller() controllerAPI {
	return controllerFactory()
}

func seconds(n int) time.Duration {
	return time.Duration(n) * time.Second
}

// outcomeError turns a failed outcome into the command error.
func outcomeError(verb string, res app.ActionResult) error {
	if res.Outcome.OK() {
		return nil
	}
	return fmt.Errorf("%s pid %d: %s", verb, res.PID, res.Outcome.Reason)
}
