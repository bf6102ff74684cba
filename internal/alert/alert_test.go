package alert

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"procman/internal/proc"
)

func TestScanCPUOnly(t *testing.T) {
	alerts := Scan([]proc.Record{{PID: 1, Name: "spin", CPUPercent: 81, MemoryKB: 100}},
		Thresholds{CPUPercent: 80, MemoryKB: 500_000})
	require.Len(t, alerts, 1)
	assert.Equal(t, TriggerCPU, alerts[0].TriggeredBy)
}

func TestScanThreeRecordScenario(t *testing.T) {
	records := []proc.Record{
		{PID: 1, Name: "a", CPUPercent: 10, MemoryKB: 100},
		{PID: 2, Name: "b", CPUPercent: 90, MemoryKB: 600_000},
		{PID: 3, Name: "c", CPUPercent: 5, MemoryKB: 50},
	}
	alerts := Scan(records, Thresholds{CPUPercent: 80, MemoryKB: 500_000})
	require.Len(t, alerts, 1)
	assert.Equal(t, 2, alerts[0].PID)
	assert.True(t, alerts[0].TriggeredBy.Has(TriggerCPU))
	assert.True(t, alerts[0].TriggeredBy.Has(TriggerMemory))
	assert.Equal(t, "cpu+memory", alerts[0].TriggeredBy.String())
}

func TestScanIsStrict(t *testing.T) {
	records := []proc.Record{
		{PID: 1, CPUPercent: 80, MemoryKB: 500_000},
		{PID: 2, CPUPercent: math.NaN(), MemoryKB: 500_001},
	}
	alerts := Scan(records, DefaultThresholds)
	require.Len(t, alerts, 1)
	assert.Equal(t, 2, alerts[0].PID)
	assert.Equal(t, TriggerMemory, alerts[0].TriggeredBy)
}

func TestScanKeepsRecordOrder(t *testing.T) {
	records := []proc.Record{
		{PID: 9, MemoryKB: 10},
		{PID: 4, MemoryKB: 10},
		{PID: 6, MemoryKB: 1},
		{PID: 1, MemoryKB: 10},
	}
	alerts := Scan(records, Thresholds{CPUPercent: 100, MemoryKB: 5})
	var got []int
	for _, a := range alerts {
		got = append(got, a.PID)
	}
	assert.Equal(t, []int{9, 4, 1}, got)
	assert.Empty(t, Scan(nil, DefaultThresholds))
}

func TestTriggerJSON(t *testing.T) {
	b, err := json.Marshal(TriggerCPU | TriggerMemory)
	require.NoError(t, err)
	assert.JSONEq(t, `["cpu","memory"]`, string(b))

	var back Trigger
	require.NoError(t, json.Unmarshal(b, &back))
	assert.Equal(t, TriggerCPU|TriggerMemory, back)
}
