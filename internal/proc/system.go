package proc

import (
	"context"
	"fmt"
	"math"
	"sync"

	"github.com/rs/zerolog"
	"github.com/shirou/gopsutil/v4/cpu"
	"github.com/shirou/gopsutil/v4/host"
	"github.com/shirou/gopsutil/v4/mem"
	"github.com/shirou/gopsutil/v4/process"
	"golang.org/x/sys/unix"
)

// handle pins a gopsutil process between refreshes so CPU percent is computed
// over the interval since the previous refresh rather than process lifetime.
type handle struct {
	proc    *process.Process
	created int64
}

// SystemPlatform reads the live OS through gopsutil and issues signals and
// priority changes through x/sys/unix.
type SystemPlatform struct {
	mu      sync.Mutex
	handles map[int32]handle
	log     zerolog.Logger
}

// NewSystemPlatform returns the platform for the running host.
func NewSystemPlatform(log zerolog.Logger) *SystemPlatform {
	return &SystemPlatform{
		handles: make(map[int32]handle),
		log:     log,
	}
}

// Enumerate implements Platform.
func (s *SystemPlatform) Enumerate(ctx context.Context) ([]Record, SystemStats, error) {
	stats, err := systemStats(ctx)
	if err != nil {
		return nil, SystemStats{}, err
	}

	procs, err := process.ProcessesWithContext(ctx)
	if err != nil {
		return nil, SystemStats{}, fmt.Errorf("list processes: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	seen := make(map[int32]handle, len(procs))
	records := make([]Record, 0, len(procs))
	skipped := 0
	for _, p := range procs {
		h := s.handleFor(ctx, p)
		rec, ok := readRecord(ctx, h.proc)
		if !ok {
			skipped++
			continue
		}
		seen[p.Pid] = h
		records = append(records, rec)
	}
	// Drop handles of exited processes so a reused pid starts fresh.
	s.handles = seen

	if skipped > 0 {
		s.log.Debug().Int("skipped", skipped).Int("listed", len(records)).Msg("unreadable processes omitted from snapshot")
	}
	return records, stats, nil
}

func (s *SystemPlatform) handleFor(ctx context.Context, p *process.Process) handle {
	created, err := p.CreateTimeWithContext(ctx)
	if err != nil {
		return handle{proc: p}
	}
	if h, ok := s.handles[p.Pid]; ok && h.created == created {
		return h
	}
	return handle{proc: p, created: created}
}

func readRecord(ctx context.Context, p *process.Process) (Record, bool) {
	name, err := p.NameWithContext(ctx)
	if err != nil {
		return Record{}, false
	}
	memInfo, err := p.MemoryInfoWithContext(ctx)
	if err != nil {
		return Record{}, false
	}

	rec := Record{
		PID:      int(p.Pid),
		Name:     name,
		MemoryKB: memInfo.RSS / 1024,
	}
	if rec.Name == "" {
		rec.Name = fmt.Sprintf("pid:%d", p.Pid)
	}
	if owner, err := p.UsernameWithContext(ctx); err == nil {
		rec.Owner = owner
	}
	if ppid, err := p.PpidWithContext(ctx); err == nil && ppid > 0 && ppid != p.Pid {
		rec.ParentPID = int(ppid)
		rec.HasParent = true
	}
	if pct, err := p.PercentWithContext(ctx, 0); err == nil && !math.IsNaN(pct) {
		rec.CPUPercent = pct
	}
	if nice, err := p.NiceWithContext(ctx); err == nil {
		rec.Nice = int(nice)
	}
	if cmd, err := p.CmdlineWithContext(ctx); err == nil {
		rec.Command = cmd
	}
	return rec, true
}

func systemStats(ctx context.Context) (SystemStats, error) {
	vm, err := mem.VirtualMemoryWithContext(ctx)
	if err != nil {
		return SystemStats{}, fmt.Errorf("read memory counters: %w", err)
	}
	stats := SystemStats{
		TotalMemoryKB: vm.Total / 1024,
		UsedMemoryKB:  vm.Used / 1024,
	}
	if swap, err := mem.SwapMemoryWithContext(ctx); err == nil {
		stats.TotalSwapKB = swap.Total / 1024
		stats.UsedSwapKB = swap.Used / 1024
	}
	if uptime, err := host.UptimeWithContext(ctx); err == nil {
		stats.UptimeSeconds = uptime
	}
	if cores, err := cpu.CountsWithContext(ctx, true); err == nil {
		stats.CPUCores = cores
	}
	if pct, err := cpu.PercentWithContext(ctx, 0, false); err == nil && len(pct) > 0 {
		stats.CPUPercent = pct[0]
	}
	return stats, nil
}

// Signal implements Platform.
func (s *SystemPlatform) Signal(pid int, sig unix.Signal) error {
	return unix.Kill(pid, sig)
}

// SetPriority implements Platform.
func (s *SystemPlatform) SetPriority(pid, nice int) error {
	return unix.Setpriority(unix.PRIO_PROCESS, pid, nice)
}
