// Package engine composes the snapshot provider, query, control, alert,
// history and export components behind one lock discipline. One Engine is
// shared by every caller in a process: the daemon's refresher, RPC handlers
// and the TUI.
package engine

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"procman/internal/alert"
	"procman/internal/control"
	"procman/internal/export"
	"procman/internal/history"
	"procman/internal/proc"
	"procman/internal/query"
)

// SampleWindow is the number of utilisation samples kept for charts.
const SampleWindow = 60

// Sample is the machine-wide utilisation observed at one refresh.
type Sample struct {
	Time          time.Time `json:"time"`
	CPUPercent    float64   `json:"cpu_percent"`
	MemoryPercent float64   `json:"memory_percent"`
	SwapPercent   float64   `json:"swap_percent"`
}

// Engine serves every snapshot, query and control operation for one process
// table. It is safe for concurrent use.
type Engine struct {
	// mu serializes control actions with their ledger append and guards the
	// sample ring. Snapshot enumeration runs outside it.
	mu sync.RWMutex

	provider *proc.Provider
	ledger   *history.Ledger
	control  *control.Controller
	log      zerolog.Logger

	samples []Sample
	next    int
}

// New builds an engine over platform. A fresh engine has an empty ledger and
// no cached snapshot.
func New(platform proc.Platform, log zerolog.Logger) *Engine {
	ledger := history.NewLedger(log.With().Str("component", "history").Logger())
	return &Engine{
		provider: proc.NewProvider(platform),
		ledger:   ledger,
		control:  control.New(platform, ledger),
		log:      log,
		samples:  make([]Sample, 0, SampleWindow),
	}
}

// RefreshSnapshot re-enumerates processes and records a utilisation sample.
func (e *Engine) RefreshSnapshot(ctx context.Context) (proc.Snapshot, error) {
	snap, err := e.provider.Refresh(ctx)
	if err != nil {
		e.log.Error().Err(err).Msg("refresh snapshot")
		return proc.Snapshot{}, err
	}

	e.mu.Lock()
	e.pushSample(Sample{
		Time:          snap.TakenAt,
		CPUPercent:    snap.System.CPUPercent,
		MemoryPercent: snap.System.MemoryPercent(),
		SwapPercent:   snap.System.SwapPercent(),
	})
	e.mu.Unlock()

	e.log.Debug().Int("processes", len(snap.Processes)).Msg("snapshot refreshed")
	return snap, nil
}

// Snapshot returns the cached snapshot, refreshing first when none exists.
func (e *Engine) Snapshot(ctx context.Context) (proc.Snapshot, error) {
	if snap, ok := e.provider.Cached(); ok {
		return snap, nil
	}
	return e.RefreshSnapshot(ctx)
}

// Cached returns the last snapshot without triggering enumeration.
func (e *Engine) Cached() (proc.Snapshot, bool) {
	return e.provider.Cached()
}

// Query filters and sorts the records of snap.
func (e *Engine) Query(snap proc.Snapshot, opts query.Options) ([]proc.Record, error) {
	return query.Apply(snap.Processes, opts)
}

// Tree builds the parent/child forest of snap.
func (e *Engine) Tree(snap proc.Snapshot) []*query.Node {
	return query.BuildTree(snap.Processes)
}

// Terminate kills pid. The returned outcome and the ledger entry are published
// together.
func (e *Engine) Terminate(pid int) history.Outcome {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.control.Terminate(pid)
}

// SetPriority changes the niceness of pid. See control.Controller.SetPriority.
func (e *Engine) SetPriority(pid, nice int) (history.Outcome, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.control.SetPriority(pid, nice)
}

// Restart always fails and records the attempt.
func (e *Engine) Restart(pid int) history.Outcome {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.control.Restart(pid)
}

// ScanAlerts returns the records of snap over th.
func (e *Engine) ScanAlerts(snap proc.Snapshot, th alert.Thresholds) []alert.Alert {
	return alert.Scan(snap.Processes, th)
}

// History returns every recorded action in order. The boolean is false on a
// fresh engine.
func (e *Engine) History() ([]history.Entry, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.ledger.ReadAll()
}

// Export writes records to dest in format.
func (e *Engine) Export(records []proc.Record, format export.Format, dest string) error {
	if err := export.WriteFile(records, format, dest); err != nil {
		e.log.Warn().Err(err).Str("dest", dest).Msg("export failed")
		return err
	}
	e.log.Info().Str("dest", dest).Str("format", string(format)).Int("records", len(records)).Msg("exported")
	return nil
}

// Samples returns the utilisation ring, oldest first.
func (e *Engine) Samples() []Sample {
	e.mu.RLock()
	defer e.mu.RUnlock()
	out := make([]Sample, 0, len(e.samples))
	if len(e.samples) < SampleWindow {
		return append(out, e.samples...)
	}
	out = append(out, e.samples[e.next:]...)
	return append(out, e.samples[:e.next]...)
}

func (e *Engine) pushSample(s Sample) {
	if len(e.samples) < SampleWindow {
		e.samples = append(e.samples, s)
		return
	}
	e.samples[e.next] = s
	e.next = (e.next + 1) % SampleWindow
}
