// Package control executes state-changing operations against a pid and
// records every attempt in the history ledger.
package control

import (
	"errors"
	"fmt"

	"golang.org/x/sys/unix"

	"procman/internal/history"
	"procman/internal/proc"
)

// ErrInvalidArgument marks arguments rejected before any OS call.
var ErrInvalidArgument = errors.New("invalid argument")

const (
	reasonNotFound      = "no such process"
	reasonPermission    = "permission denied"
	reasonRestart       = "restart is not supported"
	reasonInvalidPID    = "invalid pid"
	reasonInvalidNiceFm = "niceness %d outside [%d, %d]"
)

// Controller is stateless between calls; the outcome of each call is only
// observable through its return value and the ledger.
type Controller struct {
	platform proc.Platform
	ledger   *history.Ledger
}

// New returns a controller acting through platform and logging to ledger.
func New(platform proc.Platform, ledger *history.Ledger) *Controller {
	return &Controller{platform: platform, ledger: ledger}
}

// Terminate sends the forceful kill signal to pid. A missing process and a
// denied signal are both ordinary failures.
func (c *Controller) Terminate(pid int) history.Outcome {
	return c.record(history.Kill(), pid, c.terminate(pid))
}

func (c *Controller) terminate(pid int) history.Outcome {
	if pid <= 0 {
		return history.Failed(reasonInvalidPID)
	}
	// Probe first so a vanished pid reports NotFound rather than whatever
	// the kill path returns on this platform.
	if err := c.platform.Signal(pid, 0); err != nil && !isPermission(err) {
		return history.Failed(describe(err))
	}
	if err := c.platform.Signal(pid, unix.SIGKILL); err != nil {
		return history.Failed(describe(err))
	}
	return history.Succeeded()
}

// SetPriority changes the niceness of pid. Values outside [proc.MinNice,
// proc.MaxNice] are rejected with ErrInvalidArgument before the OS is
// consulted; the rejection is still recorded.
func (c *Controller) SetPriority(pid, nice int) (history.Outcome, error) {
	if nice < proc.MinNice || nice > proc.MaxNice {
		reason := fmt.Sprintf(reasonInvalidNiceFm, nice, proc.MinNice, proc.MaxNice)
		out := c.record(history.SetPriority(nice), pid, history.Failed(reason))
		return out, fmt.Errorf("%w: %s", ErrInvalidArgument, reason)
	}
	if pid <= 0 {
		out := c.record(history.SetPriority(nice), pid, history.Failed(reasonInvalidPID))
		return out, fmt.Errorf("%w: pid %d", ErrInvalidArgument, pid)
	}

	out := history.Succeeded()
	if err := c.platform.SetPriority(pid, nice); err != nil {
		out = history.Failed(describe(err))
	}
	return c.record(history.SetPriority(nice), pid, out), nil
}

// Restart is not supported: re-executing a command line cannot restore a
// process's state. The attempt is recorded as a failure.
func (c *Controller) Restart(pid int) history.Outcome {
	return c.record(history.RestartAttempt(), pid, history.Failed(reasonRestart))
}

func (c *Controller) record(action history.Action, pid int, out history.Outcome) history.Outcome {
	c.ledger.Record(history.Entry{Action: action, TargetPID: pid, Outcome: out})
	return out
}

func describe(err error) string {
	switch {
	case errors.Is(err, unix.ESRCH):
		return reasonNotFound
	case isPermission(err):
		return reasonPermission
	default:
		return err.Error()
	}
}

func isPermission(err error) bool {
	return errors.Is(err, unix.EPERM) || errors.Is(err, unix.EACCES)
}
