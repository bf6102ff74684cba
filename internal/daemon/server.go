package daemon

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"sync"
	"time"

	"github.com/gofrs/flock"
	"github.com/rs/zerolog"
	"golang.org/x/sys/unix"
	"google.golang.org/grpc"

	procmanv1 "procman/api/procman/v1"
	"procman/internal/config"
	"procman/internal/engine"
	"procman/internal/proc"
)

// ErrAlreadyRunning is returned when another daemon holds the lock file.
var ErrAlreadyRunning = errors.New("daemon is already running")

// Server hosts one engine over the UNIX socket and refreshes it periodically.
type Server struct {
	grpc *grpc.Server
	eng  *engine.Engine
	cfg  config.Config
	log  zerolog.Logger

	ln    net.Listener
	paths Paths
	lock  *flock.Flock

	stop      context.CancelFunc
	done      chan struct{}
	closeOnce sync.Once
	closeErr  error
}

func newServer(eng *engine.Engine, cfg config.Config, log zerolog.Logger) *Server {
	gs := grpc.NewServer(grpc.ChainUnaryInterceptor(logUnary(log)))
	procmanv1.RegisterProcManServer(gs, NewService(eng, log))
	return &Server{
		grpc: gs,
		eng:  eng,
		cfg:  cfg,
		log:  log,
		done: make(chan struct{}),
	}
}

// Engine returns the engine the server hosts.
func (s *Server) Engine() *engine.Engine { return s.eng }

// Close stops the refresher and the gRPC server, unlinks the socket and pid
// file and releases the lock.
func (s *Server) Close() error {
	s.closeOnce.Do(func() {
		if s.stop != nil {
			s.stop()
			<-s.done
		}
		s.grpc.GracefulStop()

		var errs []error
		if s.paths.Socket != "" {
			if err := os.Remove(s.paths.Socket); err != nil && !errors.Is(err, os.ErrNotExist) {
				errs = append(errs, err)
			}
			if err := s.paths.removePID(); err != nil {
				errs = append(errs, err)
			}
		}
		if s.lock != nil {
			if err := s.lock.Unlock(); err != nil {
				errs = append(errs, err)
			}
		}
		s.closeErr = errors.Join(errs...)
		s.log.Info().Msg("daemon stopped")
	})
	return s.closeErr
}

// StartDaemon takes the singleton lock, binds the UNIX socket, writes the pid
// file and starts serving the live system. File locations come from
// PathsFor(cfg).
func StartDaemon(cfg config.Config, log zerolog.Logger) (*Server, error) {
	paths := PathsFor(cfg)
	if err := paths.ensureDir(); err != nil {
		return nil, fmt.Errorf("create runtime dir: %w", err)
	}

	lock := flock.New(paths.Lock)
	locked, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire daemon lock: %w", err)
	}
	if !locked {
		return nil, ErrAlreadyRunning
	}

	path := paths.Socket
	// The lock proves no other daemon owns a leftover socket.
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		lock.Unlock()
		return nil, fmt.Errorf("remove stale socket: %w", err)
	}

	ln, err := net.Listen("unix", path)
	if err != nil {
		lock.Unlock()
		return nil, err
	}
	if err := os.Chmod(path, 0o600); err != nil {
		ln.Close()
		lock.Unlock()
		return nil, err
	}

	eng := engine.New(proc.NewSystemPlatform(log.With().Str("component", "platform").Logger()), log)
	s := newServer(eng, cfg, log)
	s.ln, s.paths, s.lock = ln, paths, lock

	if err := paths.writePID(os.Getpid()); err != nil {
		ln.Close()
		os.Remove(path)
		lock.Unlock()
		return nil, fmt.Errorf("write pid file: %w", err)
	}

	s.start(ln)
	s.log.Info().Str("socket", path).Dur("refresh", cfg.RefreshInterval).Msg("daemon listening")
	return s, nil
}

func (s *Server) start(ln net.Listener) {
	ctx, cancel := context.WithCancel(context.Background())
	s.stop = cancel
	go s.refreshLoop(ctx)
	go func() {
		if err := s.grpc.Serve(ln); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
			s.log.Error().Err(err).Msg("grpc serve")
		}
	}()
}

func (s *Server) refreshLoop(ctx context.Context) {
	defer close(s.done)

	ticker := time.NewTicker(s.interval())
	defer ticker.Stop()

	s.refresh(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.refresh(ctx)
		}
	}
}

func (s *Server) refresh(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, s.interval())
	defer cancel()
	if _, err := s.eng.RefreshSnapshot(ctx); err != nil && ctx.Err() == nil {
		s.log.Warn().Err(err).Msg("background refresh failed")
	}
}

func (s *Server) interval() time.Duration {
	if s.cfg.RefreshInterval <= 0 {
		return config.Default().RefreshInterval
	}
	return s.cfg.RefreshInterval
}

func logUnary(log zerolog.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		start := time.Now()
		resp, err := handler(ctx, req)
		ev := log.Debug()
		if err != nil {
			ev = log.Warn().Err(err)
		}
		ev.Str("method", info.FullMethod).Dur("took", time.Since(start)).Msg("rpc")
		return resp, err
	}
}

// StopRunningDaemon sends SIGTERM to the daemon owning p, and SIGKILL when
// force is set and it does not exit in time.
func StopRunningDaemon(p Paths, force bool) error {
	pid, err := p.RunningPID()
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			if IsRunning(p) {
				return fmt.Errorf("daemon is running but PID file %q is missing; stop it manually", p.PID)
			}
			return nil
		}
		return fmt.Errorf("unable to read daemon PID: %w", err)
	}
	if pid == os.Getpid() {
		return errors.New("refusing to stop current process")
	}
	target, err := os.FindProcess(pid)
	if err != nil {
		return err
	}
	if err := sendSignal(p, target, unix.SIGTERM); err != nil {
		return err
	}
	if waitForShutdown(p, 3*time.Second) {
		return nil
	}
	if !force {
		return fmt.Errorf("daemon process %d did not exit after SIGTERM", pid)
	}
	if err := sendSignal(p, target, unix.SIGKILL); err != nil {
		return err
	}
	if waitForShutdown(p, 2*time.Second) {
		return nil
	}
	return fmt.Errorf("daemon process %d did not exit after SIGKILL", pid)
}

func sendSignal(p Paths, target *os.Process, sig unix.Signal) error {
	if err := target.Signal(sig); err != nil {
		if errors.Is(err, os.ErrProcessDone) {
			_ = p.removePID()
			return nil
		}
		return err
	}
	return nil
}

func waitForShutdown(p Paths, timeout time.Duration) bool {
	deadline := time.Now().Add(timeout)
	for {
		if !IsRunning(p) {
			_ = p.removePID()
			return true
		}
		if time.Now().After(deadline) {
			return false
		}
		time.Sleep(100 * time.Millisecond)
	}
}
