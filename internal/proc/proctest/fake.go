// Package proctest provides an in-memory proc.Platform for tests.
package proctest

import (
	"context"
	"sync"

	"golang.org/x/sys/unix"

	"procman/internal/proc"
)

// Call records one Signal or SetPriority invocation.
type Call struct {
	Op    string // "signal" or "priority"
	PID   int
	Value int
}

// Platform is a scripted proc.Platform. Processes are held in insertion order;
// SIGKILL removes the target.
type Platform struct {
	mu        sync.Mutex
	records   []proc.Record
	stats     proc.SystemStats
	enumErr   error
	denied    map[int]bool
	calls     []Call
	enumCount int
}

// New returns a fake platform seeded with records.
func New(records ...proc.Record) *Platform {
	return &Platform{
		records: append([]proc.Record(nil), records...),
		stats:   proc.SystemStats{CPUCores: 4, TotalMemoryKB: 8 << 20, UsedMemoryKB: 2 << 20},
		denied:  make(map[int]bool),
	}
}

// SetRecords replaces the process table.
func (p *Platform) SetRecords(records ...proc.Record) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.records = append([]proc.Record(nil), records...)
}

// SetStats replaces the system counters.
func (p *Platform) SetStats(stats proc.SystemStats) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.stats = stats
}

// FailEnumerate makes Enumerate return err until cleared with nil.
func (p *Platform) FailEnumerate(err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.enumErr = err
}

// Deny makes signals and priority changes on pid fail with EPERM.
func (p *Platform) Deny(pid int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.denied[pid] = true
}

// Calls returns every Signal/SetPriority call seen so far.
func (p *Platform) Calls() []Call {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]Call(nil), p.calls...)
}

// EnumerateCount reports how many times Enumerate ran.
func (p *Platform) EnumerateCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.enumCount
}

// Enumerate implements proc.Platform.
func (p *Platform) Enumerate(ctx context.Context) ([]proc.Record, proc.SystemStats, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.enumCount++
	if p.enumErr != nil {
		return nil, proc.SystemStats{}, p.enumErr
	}
	return append([]proc.Record(nil), p.records...), p.stats, nil
}

// Signal implements proc.Platform.
func (p *Platform) Signal(pid int, sig unix.Signal) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls = append(p.calls, Call{Op: "signal", PID: pid, Value: int(sig)})
	idx := p.indexLocked(pid)
	if idx < 0 {
		return unix.ESRCH
	}
	if p.denied[pid] {
		return unix.EPERM
	}
	if sig == unix.SIGKILL {
		p.records = append(p.records[:idx], p.records[idx+1:]...)
	}
	return nil
}

// SetPriority implements proc.Platform.
func (p *Platform) SetPriority(pid, nice int) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls = append(p.calls, Call{Op: "priority", PID: pid, Value: nice})
	idx := p.indexLocked(pid)
	if idx < 0 {
		return unix.ESRCH
	}
	if p.denied[pid] {
		return unix.EACCES
	}
	p.records[idx].Nice = nice
	return nil
}

func (p *Platform) indexLocked(pid int) int {
	for i, r := range p.records {
		if r.PID == pid {
			return i
		}
	}
	return -1
}
