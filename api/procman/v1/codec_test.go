package procmanv1

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"procman/internal/alert"
	"procman/internal/history"
	"procman/internal/proc"
)

func TestCodecRoundTripKeepsTypedFields(t *testing.T) {
	at := time.Date(2026, 3, 4, 5, 6, 7, 0, time.UTC)
	in := &HistoryResponse{Entries: []history.Entry{{
		ID:        uuid.New(),
		Timestamp: at,
		Action:    history.SetPriority(-5),
		TargetPID: 321,
		Outcome:   history.Failed("permission denied"),
	}}}

	wire, err := Encode(in)
	require.NoError(t, err)

	var out HistoryResponse
	require.NoError(t, Decode(wire, &out))
	assert.Equal(t, *in, out)
}

func TestCodecAlertsAndRecords(t *testing.T) {
	in := &AlertsResponse{Alerts: []alert.Alert{{
		PID: 2, Name: "db", CPUPercent: 90.5, MemoryKB: 600_000,
		TriggeredBy: alert.TriggerCPU | alert.TriggerMemory,
	}}}
	wire, err := Encode(in)
	require.NoError(t, err)
	assert.Contains(t, wire.GetFields(), "alerts")

	var out AlertsResponse
	require.NoError(t, Decode(wire, &out))
	assert.Equal(t, *in, out)

	q := &QueryResponse{Processes: []proc.Record{{PID: 1, Name: "init", ParentPID: 0, MemoryKB: 8 << 20}}}
	wire, err = Encode(q)
	require.NoError(t, err)
	var back QueryResponse
	require.NoError(t, Decode(wire, &back))
	assert.Equal(t, q.Processes, back.Processes)
}

func TestDecodeNilPayload(t *testing.T) {
	req := ActionRequest{PID: 7}
	require.NoError(t, Decode(nil, &req))
	assert.Equal(t, 7, req.PID)
}
