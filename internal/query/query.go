// Package query filters, sorts and arranges snapshot records. Every function
// returns fresh slices and leaves its input untouched.
package query

import (
	"cmp"
	"errors"
	"fmt"
	"math"
	"slices"
	"strings"

	"golang.org/x/text/cases"

	"procman/internal/proc"
)

// ErrInvalidArgument marks malformed query parameters.
var ErrInvalidArgument = errors.New("invalid argument")

// SortKey selects the ordering applied by Sort.
type SortKey string

const (
	SortNone   SortKey = ""
	SortCPU    SortKey = "cpu"    // descending
	SortMemory SortKey = "memory" // descending
	SortPID    SortKey = "pid"    // ascending
	SortName   SortKey = "name"   // ascending
)

// ParseSortKey validates a user-supplied sort key.
func ParseSortKey(raw string) (SortKey, error) {
	switch key := SortKey(strings.ToLower(strings.TrimSpace(raw))); key {
	case SortNone, SortCPU, SortMemory, SortPID, SortName:
		return key, nil
	default:
		return "", fmt.Errorf("%w: unknown sort key %q (want cpu, memory, pid or name)", ErrInvalidArgument, raw)
	}
}

// Options bundles the optional stages of Apply.
type Options struct {
	Name  string
	Owner string
	Sort  SortKey
}

// Apply runs the name filter, the owner filter and the sort, in that order.
func Apply(records []proc.Record, opts Options) ([]proc.Record, error) {
	if _, err := ParseSortKey(string(opts.Sort)); err != nil {
		return nil, err
	}
	out := FilterByName(records, opts.Name)
	out = FilterByOwner(out, opts.Owner)
	Sort(out, opts.Sort)
	return out, nil
}

// FilterByName keeps records whose name contains substr, ignoring case.
// An empty substr keeps everything.
func FilterByName(records []proc.Record, substr string) []proc.Record {
	if substr == "" {
		return slices.Clone(records)
	}
	fold := cases.Fold()
	needle := fold.String(substr)
	return filter(records, func(r proc.Record) bool {
		return strings.Contains(fold.String(r.Name), needle)
	})
}

// FilterByOwner keeps records whose resolved owner equals owner exactly.
// Records with an unresolved owner never match a non-empty owner.
func FilterByOwner(records []proc.Record, owner string) []proc.Record {
	if owner == "" {
		return slices.Clone(records)
	}
	return filter(records, func(r proc.Record) bool {
		return r.Owner != "" && r.Owner == owner
	})
}

func filter(records []proc.Record, keep func(proc.Record) bool) []proc.Record {
	out := make([]proc.Record, 0, len(records))
	for _, r := range records {
		if keep(r) {
			out = append(out, r)
		}
	}
	return out
}

// Sort orders records in place by key. The sort is stable, so ties keep their
// snapshot order. SortNone leaves the slice as is.
func Sort(records []proc.Record, key SortKey) {
	var less func(a, b proc.Record) int
	switch key {
	case SortCPU:
		less = func(a, b proc.Record) int { return compareCPUDesc(a.CPUPercent, b.CPUPercent) }
	case SortMemory:
		less = func(a, b proc.Record) int { return cmp.Compare(b.MemoryKB, a.MemoryKB) }
	case SortPID:
		less = func(a, b proc.Record) int { return cmp.Compare(a.PID, b.PID) }
	case SortName:
		less = func(a, b proc.Record) int { return strings.Compare(a.Name, b.Name) }
	default:
		return
	}
	slices.SortStableFunc(records, less)
}

// compareCPUDesc orders larger values first and NaN last.
func compareCPUDesc(a, b float64) int {
	aNaN, bNaN := math.IsNaN(a), math.IsNaN(b)
	switch {
	case aNaN && bNaN:
		return 0
	case aNaN:
		return 1
	case bNaN:
		return -1
	}
	return cmp.Compare(b, a)
}
