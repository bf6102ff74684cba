package proc

import (
	"context"
	"fmt"

	"golang.org/x/sys/unix"
)

// Scheduling priority bounds accepted by SetPriority.
const (
	MinNice = -20
	MaxNice = 19
)

// Platform is the capability surface the engine needs from the OS.
// Implementations must be safe for concurrent use.
type Platform interface {
	// Enumerate lists every readable process together with system counters.
	// It only fails when enumeration itself is unavailable; processes that
	// vanish or cannot be read mid-scan are skipped.
	Enumerate(ctx context.Context) ([]Record, SystemStats, error)

	// Signal delivers sig to pid. Signal 0 probes for existence.
	Signal(pid int, sig unix.Signal) error

	// SetPriority changes the niceness of pid.
	SetPriority(pid, nice int) error
}

// SnapshotError reports that the OS enumeration mechanism failed.
type SnapshotError struct {
	Err error
}

func (e *SnapshotError) Error() string {
	return fmt.Sprintf("snapshot failed: %v", e.Err)
}

func (e *SnapshotError) Unwrap() error { return e.Err }
