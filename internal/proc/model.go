package proc

import (
	"encoding/json"
	"math"
	"time"
)

// Record is a point-in-time view of one OS process. Records are immutable once
// a snapshot has been built.
type Record struct {
	PID        int     `json:"pid"`
	Name       string  `json:"name"`
	Owner      string  `json:"owner,omitempty"` // empty when the uid could not be resolved
	CPUPercent float64 `json:"cpu_usage_percent"`
	MemoryKB   uint64  `json:"memory_kb"`
	ParentPID  int     `json:"parent_pid,omitempty"`
	HasParent  bool    `json:"has_parent"`
	Nice       int     `json:"nice"`
	Command    string  `json:"command,omitempty"`
}

// MarshalJSON writes a non-finite CPU reading as 0; JSON has no NaN.
func (r Record) MarshalJSON() ([]byte, error) {
	type plain Record
	out := plain(r)
	out.CPUPercent = Finite(out.CPUPercent)
	return json.Marshal(out)
}

// SystemStats holds machine-wide counters captured with a snapshot.
type SystemStats struct {
	TotalMemoryKB uint64  `json:"total_memory_kb"`
	UsedMemoryKB  uint64  `json:"used_memory_kb"`
	TotalSwapKB   uint64  `json:"total_swap_kb"`
	UsedSwapKB    uint64  `json:"used_swap_kb"`
	UptimeSeconds uint64  `json:"uptime_seconds"`
	CPUCores      int     `json:"cpu_core_count"`
	CPUPercent    float64 `json:"cpu_usage_percent"`
}

// MarshalJSON writes a non-finite CPU reading as 0.
func (s SystemStats) MarshalJSON() ([]byte, error) {
	type plain SystemStats
	out := plain(s)
	out.CPUPercent = Finite(out.CPUPercent)
	return json.Marshal(out)
}

// MemoryPercent returns used memory as a percentage of total memory.
func (s SystemStats) MemoryPercent() float64 {
	return percentOf(s.UsedMemoryKB, s.TotalMemoryKB)
}

// SwapPercent returns used swap as a percentage of total swap.
func (s SystemStats) SwapPercent() float64 {
	return percentOf(s.UsedSwapKB, s.TotalSwapKB)
}

// Finite returns f, or 0 when f is NaN or infinite.
func Finite(f float64) float64 {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return f
}

func percentOf(used, total uint64) float64 {
	if total == 0 {
		return 0
	}
	return float64(used) / float64(total) * 100
}

// Snapshot is one capture of every observable process plus system counters.
type Snapshot struct {
	Processes []Record    `json:"processes"`
	System    SystemStats `json:"system"`
	TakenAt   time.Time   `json:"taken_at"`
}

// Clone returns a copy that shares no mutable state with s.
func (s Snapshot) Clone() Snapshot {
	cp := s
	if s.Processes != nil {
		cp.Processes = append([]Record(nil), s.Processes...)
	}
	return cp
}

// Lookup returns the record for pid, if present.
func (s Snapshot) Lookup(pid int) (Record, bool) {
	for _, r := range s.Processes {
		if r.PID == pid {
			return r, true
		}
	}
	return Record{}, false
}
