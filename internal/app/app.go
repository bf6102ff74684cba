package app

import (
	"sync"

	"github.com/rs/zerolog"

	procmanv1 "procman/api/procman/v1"
	"procman/internal/config"
	"procman/internal/daemon"
	"procman/internal/engine"
	"procman/internal/export"
	"procman/internal/proc"
)

// Options configures the top-level controller.
type Options struct {
	// ConfigPath points to the optional config file.
	ConfigPath string
	// Local runs an in-process engine instead of talking to the daemon.
	Local bool
	Log   zerolog.Logger
}

// App exposes high-level operations that the CLI/TUI can reuse.
type App struct {
	cfgPath string
	cfg     config.Config
	cfgErr  error
	local   bool
	log     zerolog.Logger

	localOnce   sync.Once
	localEngine *engine.Engine
	localClient procmanv1.ProcManClient
}

// New constructs the shared controller facade. A config that fails to load
// is reported by the first operation that needs it.
func New(opts Options) *App {
	cfg, err := config.Load(opts.ConfigPath)
	return &App{
		cfgPath: opts.ConfigPath,
		cfg:     cfg,
		cfgErr:  err,
		local:   opts.Local,
		log:     opts.Log,
	}
}

// ConfigPath returns the config file passed to New; empty means defaults and
// environment only.
func (a *App) ConfigPath() string {
	return a.cfgPath
}

// Paths returns the daemon socket, pid and lock files for the loaded config.
func (a *App) Paths() daemon.Paths {
	return daemon.PathsFor(a.cfg)
}

// ConfigErr reports why the config failed to load, if it did.
func (a *App) ConfigErr() error {
	return a.cfgErr
}

// Config returns the loaded configuration, or defaults if loading failed.
func (a *App) Config() config.Config {
	return a.cfg
}

// Local reports whether the app runs its own engine.
func (a *App) Local() bool {
	return a.local
}

func (a *App) ensureLocal() {
	a.localOnce.Do(func() {
		platform := localPlatform(a.log.With().Str("component", "platform").Logger())
		a.localEngine = engine.New(platform, a.log)
		a.localClient = procmanv1.NewLocalClient(daemon.NewService(a.localEngine, a.log))
	})
}

// writeExport writes through the local engine when there is one, so the
// export is logged alongside its actions.
func (a *App) writeExport(records []proc.Record, format export.Format, path string) error {
	if a.local {
		a.ensureLocal()
		return a.localEngine.Export(records, format, path)
	}
	return export.WriteFile(records, format, path)
}
