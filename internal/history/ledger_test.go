package history

import (
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLedgerEmptyIndicator(t *testing.T) {
	l := NewLedger(zerolog.Nop())
	entries, ok := l.ReadAll()
	assert.False(t, ok)
	assert.Empty(t, entries)
	assert.Zero(t, l.Len())
}

func TestLedgerRecordFillsIdentityAndKeepsOrder(t *testing.T) {
	l := NewLedger(zerolog.Nop())
	fixed := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	l.now = func() time.Time { return fixed }

	first := l.Record(Entry{Action: Kill(), TargetPID: 10, Outcome: Succeeded()})
	second := l.Record(Entry{Action: SetPriority(5), TargetPID: 11, Outcome: Failed("permission denied")})
	third := l.Record(Entry{Action: RestartAttempt(), TargetPID: 12, Outcome: Failed("restart is not supported")})

	assert.NotEqual(t, uuid.Nil, first.ID)
	assert.NotEqual(t, first.ID, second.ID)
	assert.Equal(t, fixed, first.Timestamp)

	entries, ok := l.ReadAll()
	require.True(t, ok)
	require.Len(t, entries, 3)
	assert.Equal(t, []Entry{first, second, third}, entries)
	assert.Equal(t, "set_priority(5)", entries[1].Action.String())
	assert.Equal(t, "failure: permission denied", entries[1].Outcome.String())
}

func TestLedgerReadAllReturnsCopy(t *testing.T) {
	l := NewLedger(zerolog.Nop())
	l.Record(Entry{Action: Kill(), TargetPID: 1, Outcome: Succeeded()})

	entries, _ := l.ReadAll()
	entries[0].TargetPID = 999

	again, _ := l.ReadAll()
	assert.Equal(t, 1, again[0].TargetPID)
}

func TestLedgerConcurrentAppends(t *testing.T) {
	l := NewLedger(zerolog.Nop())
	const writers, perWriter = 8, 50

	var wg sync.WaitGroup
	for w := 0; w < writers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < perWriter; i++ {
				l.Record(Entry{Action: Kill(), TargetPID: w*1000 + i, Outcome: Succeeded()})
				l.ReadAll()
			}
		}(w)
	}
	wg.Wait()

	entries, ok := l.ReadAll()
	require.True(t, ok)
	require.Len(t, entries, writers*perWriter)

	// Per-writer order survives interleaving.
	last := make(map[int]int)
	for _, e := range entries {
		w := e.TargetPID / 1000
		if prev, seen := last[w]; seen {
			assert.Greater(t, e.TargetPID, prev)
		}
		last[w] = e.TargetPID
	}
}
