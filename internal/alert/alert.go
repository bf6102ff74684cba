// Package alert flags processes whose resource usage crosses thresholds.
package alert

import (
	"encoding/json"
	"strings"

	"procman/internal/proc"
)

// Trigger is a bit set of the thresholds a process crossed.
type Trigger uint8

const (
	TriggerCPU Trigger = 1 << iota
	TriggerMemory
)

// Has reports whether every bit of o is set in t.
func (t Trigger) Has(o Trigger) bool { return t&o == o && o != 0 }

// Names lists the set members as lower-case names.
func (t Trigger) Names() []string {
	names := make([]string, 0, 2)
	if t.Has(TriggerCPU) {
		names = append(names, "cpu")
	}
	if t.Has(TriggerMemory) {
		names = append(names, "memory")
	}
	return names
}

func (t Trigger) String() string { return strings.Join(t.Names(), "+") }

// MarshalJSON encodes the set as a list of names.
func (t Trigger) MarshalJSON() ([]byte, error) { return json.Marshal(t.Names()) }

// UnmarshalJSON decodes a list of names produced by MarshalJSON.
func (t *Trigger) UnmarshalJSON(b []byte) error {
	var names []string
	if err := json.Unmarshal(b, &names); err != nil {
		return err
	}
	*t = 0
	for _, n := range names {
		switch n {
		case "cpu":
			*t |= TriggerCPU
		case "memory":
			*t |= TriggerMemory
		}
	}
	return nil
}

// Thresholds are caller-supplied limits; a process alerts when it exceeds one
// strictly.
type Thresholds struct {
	CPUPercent float64 `json:"cpu_percent"`
	MemoryKB   uint64  `json:"memory_kb"`
}

// DefaultThresholds are used when the caller configures nothing: 80% CPU and
// 500000 KB resident memory.
var DefaultThresholds = Thresholds{CPUPercent: 80, MemoryKB: 500_000}

// Alert describes one process over a threshold.
type Alert struct {
	PID         int     `json:"pid"`
	Name        string  `json:"name"`
	CPUPercent  float64 `json:"cpu_usage_percent"`
	MemoryKB    uint64  `json:"memory_kb"`
	TriggeredBy Trigger `json:"triggered_by"`
}

// MarshalJSON writes a non-finite CPU reading as 0.
func (a Alert) MarshalJSON() ([]byte, error) {
	type plain Alert
	out := plain(a)
	out.CPUPercent = proc.Finite(out.CPUPercent)
	return json.Marshal(out)
}

// Scan returns an alert per record over a threshold, in record order. It keeps
// no state between calls.
func Scan(records []proc.Record, th Thresholds) []Alert {
	var alerts []Alert
	for _, r := range records {
		var trig Trigger
		if r.CPUPercent > th.CPUPercent {
			trig |= TriggerCPU
		}
		if r.MemoryKB > th.MemoryKB {
			trig |= TriggerMemory
		}
		if trig == 0 {
			continue
		}
		alerts = append(alerts, Alert{
			PID:         r.PID,
			Name:        r.Name,
			CPUPercent:  r.CPUPercent,
			MemoryKB:    r.MemoryKB,
			TriggeredBy: trig,
		})
	}
	return alerts
}
