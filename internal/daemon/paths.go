package daemon

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"procman/internal/config"
)

const (
	socketFile = "procman.sock"
	pidFile    = "procman.pid"
	lockFile   = "procman.lock"
)

// Paths are the files owned by one daemon instance. The pid and lock files
// always sit next to the socket, so two daemons on different sockets never
// contend.
type Paths struct {
	Socket string
	PID    string
	Lock   string
}

// PathsFor resolves the daemon files from cfg: socket_path when set,
// otherwise runtime_dir/procman.sock.
func PathsFor(cfg config.Config) Paths {
	socket := cfg.SocketPath
	if socket == "" {
		socket = filepath.Join(cfg.RuntimeDir, socketFile)
	}
	dir := filepath.Dir(socket)
	return Paths{
		Socket: socket,
		PID:    filepath.Join(dir, pidFile),
		Lock:   filepath.Join(dir, lockFile),
	}
}

func (p Paths) ensureDir() error {
	return os.MkdirAll(filepath.Dir(p.Socket), 0o700)
}

func (p Paths) writePID(pid int) error {
	return os.WriteFile(p.PID, []byte(strconv.Itoa(pid)+"\n"), 0o600)
}

func (p Paths) removePID() error {
	if err := os.Remove(p.PID); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

// RunningPID reads the daemon pid from the pid file.
func (p Paths) RunningPID() (int, error) {
	data, err := os.ReadFile(p.PID)
	if err != nil {
		return 0, err
	}
	pid, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil {
		return 0, fmt.Errorf("parse pid file %s: %w", p.PID, err)
	}
	return pid, nil
}

// target is the gRPC dial target for the socket.
func (p Paths) target() string {
	if trimmed, ok := strings.CutPrefix(p.Socket, "/"); ok {
		return "unix:///" + trimmed
	}
	return "unix://" + p.Socket
}
