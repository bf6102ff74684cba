package config

import (
	"errors"
	"fmt"
	"os"
	"os/user"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	defaultRefreshInterval = 2 * time.Second
	defaultRPCTimeout      = 3 * time.Second
	defaultCPUPercent      = 80.0
	defaultMemoryKB        = 500_000
	defaultLogLevel        = "info"

	envPrefix = "PROCMAN"
)

// Alerts holds the thresholds used when the caller passes none.
type Alerts struct {
	CPUPercent float64 `mapstructure:"cpu_percent"`
	MemoryKB   uint64  `mapstructure:"memory_kb"`
}

// Config aggregates tunables for the daemon and CLI.
type Config struct {
	RefreshInterval time.Duration `mapstructure:"refresh_interval"`
	RPCTimeout      time.Duration `mapstructure:"rpc_timeout"`
	LogLevel        string        `mapstructure:"log_level"`
	Alerts          Alerts        `mapstructure:"alerts"`

	// SocketPath, when set, is the daemon socket. Otherwise the socket and
	// its pid and lock files live in RuntimeDir.
	SocketPath string `mapstructure:"socket_path"`
	RuntimeDir string `mapstructure:"runtime_dir"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		RefreshInterval: defaultRefreshInterval,
		RPCTimeout:      defaultRPCTimeout,
		LogLevel:        defaultLogLevel,
		Alerts:          Alerts{CPUPercent: defaultCPUPercent, MemoryKB: defaultMemoryKB},
		RuntimeDir:      defaultRuntimeDir(),
	}
}

// defaultRuntimeDir is the per-user runtime directory on Linux. Elsewhere a
// short per-user temp dir keeps the socket under the sun_path limit.
func defaultRuntimeDir() string {
	uid := "0"
	if u, err := user.Current(); err == nil && u.Uid != "" {
		uid = u.Uid
	}
	if runtime.GOOS == "linux" {
		return filepath.Join("/run/user", uid)
	}
	return filepath.Join(os.TempDir(), "procman-"+uid)
}

// Load builds a Config from an optional file (any format viper reads) plus
// PROCMAN_* environment overrides, e.g. PROCMAN_REFRESH_INTERVAL or
// PROCMAN_ALERTS_CPU_PERCENT. runtime_dir also honours XDG_RUNTIME_DIR.
func Load(path string) (Config, error) {
	v := viper.New()
	def := Default()
	v.SetDefault("refresh_interval", def.RefreshInterval)
	v.SetDefault("rpc_timeout", def.RPCTimeout)
	v.SetDefault("log_level", def.LogLevel)
	v.SetDefault("alerts.cpu_percent", def.Alerts.CPUPercent)
	v.SetDefault("alerts.memory_kb", def.Alerts.MemoryKB)
	v.SetDefault("socket_path", def.SocketPath)
	v.SetDefault("runtime_dir", def.RuntimeDir)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	if err := v.BindEnv("runtime_dir", envPrefix+"_RUNTIME_DIR", "XDG_RUNTIME_DIR"); err != nil {
		return def, fmt.Errorf("bind runtime_dir: %w", err)
	}

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return def, fmt.Errorf("load config %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return def, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return def, err
	}
	return cfg, nil
}

// Validate rejects non-positive intervals and negative thresholds.
func (c Config) Validate() error {
	if c.RefreshInterval <= 0 {
		return errors.New("refresh_interval must be > 0")
	}
	if c.RPCTimeout <= 0 {
		return errors.New("rpc_timeout must be > 0")
	}
	if c.Alerts.CPUPercent < 0 {
		return errors.New("alerts.cpu_percent must be >= 0")
	}
	if c.SocketPath == "" && c.RuntimeDir == "" {
		return errors.New("runtime_dir must be set when socket_path is empty")
	}
	return nil
}
