// Package history keeps the append-only audit log of control actions.
package history

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Ledger is an in-memory, insertion-ordered log. It lives as long as the
// engine that owns it and is never persisted.
type Ledger struct {
	mu      sync.RWMutex
	entries []Entry
	log     zerolog.Logger
	now     func() time.Time
}

// NewLedger returns an empty ledger that also logs each entry to log.
func NewLedger(log zerolog.Logger) *Ledger {
	return &Ledger{
		log: log,
		now: func() time.Time { return time.Now().UTC() },
	}
}

// Record appends entry, filling ID and Timestamp when unset, and returns the
// stored value.
func (l *Ledger) Record(entry Entry) Entry {
	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}

	l.mu.Lock()
	if entry.Timestamp.IsZero() {
		entry.Timestamp = l.now()
	}
	l.entries = append(l.entries, entry)
	l.mu.Unlock()

	ev := l.log.Info()
	if !entry.Outcome.OK() {
		ev = l.log.Warn().Str("reason", entry.Outcome.Reason)
	}
	ev.Str("action", entry.Action.String()).
		Int("pid", entry.TargetPID).
		Bool("success", entry.Outcome.OK()).
		Msg("control action recorded")
	return entry
}

// ReadAll returns every entry in insertion order. The boolean is false when
// nothing has been recorded yet.
func (l *Ledger) ReadAll() ([]Entry, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if len(l.entries) == 0 {
		return nil, false
	}
	return append([]Entry(nil), l.entries...), true
}

// Len reports the number of recorded entries.
func (l *Ledger) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.entries)
}
