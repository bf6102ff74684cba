// Package procmanv1 is the procman.v1.ProcMan gRPC contract. Requests and
// responses are plain Go structs carried on the wire as
// google.protobuf.Struct values.
package procmanv1

import (
	"time"

	"procman/internal/alert"
	"procman/internal/engine"
	"procman/internal/history"
	"procman/internal/proc"
	"procman/internal/query"
)

type PingRequest struct{}

type PingResponse struct {
	Ok  string `json:"ok"`
	PID int    `json:"pid"`
}

func (r *PingResponse) GetOk() string {
	if r == nil {
		return ""
	}
	return r.Ok
}

// SnapshotRequest asks for the cached snapshot, or a fresh one when Refresh
// is set. The same flag appears on every read request.
type SnapshotRequest struct {
	Refresh bool `json:"refresh,omitempty"`
}

type SnapshotResponse struct {
	Snapshot proc.Snapshot `json:"snapshot"`
}

type QueryRequest struct {
	Refresh bool   `json:"refresh,omitempty"`
	Name    string `json:"name,omitempty"`
	Owner   string `json:"owner,omitempty"`
	Sort    string `json:"sort,omitempty"`
}

type QueryResponse struct {
	Processes []proc.Record `json:"processes"`
	TakenAt   time.Time     `json:"taken_at"`
}

type TreeRequest struct {
	Refresh bool `json:"refresh,omitempty"`
}

type TreeResponse struct {
	Roots []*query.Node `json:"roots"`
}

// ActionRequest targets a pid. Value carries the niceness for SetPriority.
type ActionRequest struct {
	PID   int `json:"pid"`
	Value int `json:"value,omitempty"`
}

type ActionResponse struct {
	Outcome history.Outcome `json:"outcome"`
}

type AlertsRequest struct {
	Refresh    bool    `json:"refresh,omitempty"`
	CPUPercent float64 `json:"cpu_percent"`
	MemoryKB   uint64  `json:"memory_kb"`
}

type AlertsResponse struct {
	Alerts []alert.Alert `json:"alerts"`
}

type HistoryRequest struct{}

// HistoryResponse sets Empty when nothing has been recorded.
type HistoryResponse struct {
	Entries []history.Entry `json:"entries"`
	Empty   bool            `json:"empty"`
}

type StatsRequest struct {
	Refresh bool `json:"refresh,omitempty"`
}

type StatsResponse struct {
	System  proc.SystemStats `json:"system"`
	Samples []engine.Sample  `json:"samples"`
	TakenAt time.Time        `json:"taken_at"`
}
