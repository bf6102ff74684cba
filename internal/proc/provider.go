package proc

import (
	"context"
	"errors"
	"sync"
	"time"
)

// Provider produces snapshots from a Platform and caches the latest one.
// Enumeration runs outside the cache lock, so readers of Cached never wait on
// an in-flight refresh.
type Provider struct {
	platform Platform

	mu     sync.RWMutex
	cached *Snapshot

	now func() time.Time
}

// NewProvider returns a provider backed by platform.
func NewProvider(platform Platform) *Provider {
	return &Provider{
		platform: platform,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Refresh performs a full re-enumeration and replaces the cached snapshot.
func (p *Provider) Refresh(ctx context.Context) (Snapshot, error) {
	if p.platform == nil {
		return Snapshot{}, &SnapshotError{Err: errors.New("no platform configured")}
	}
	records, stats, err := p.platform.Enumerate(ctx)
	if err != nil {
		var snapErr *SnapshotError
		if errors.As(err, &snapErr) {
			return Snapshot{}, err
		}
		return Snapshot{}, &SnapshotError{Err: err}
	}

	snap := Snapshot{
		Processes: records,
		System:    stats,
		TakenAt:   p.now(),
	}

	p.mu.Lock()
	// A slower refresh must not overwrite a newer one.
	if p.cached == nil || !snap.TakenAt.Before(p.cached.TakenAt) {
		stored := snap.Clone()
		p.cached = &stored
	}
	p.mu.Unlock()

	return snap.Clone(), nil
}

// Cached returns a copy of the most recent snapshot, if any.
func (p *Provider) Cached() (Snapshot, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.cached == nil {
		return Snapshot{}, false
	}
	return p.cached.Clone(), true
}

// Platform exposes the underlying platform for control operations.
func (p *Provider) Platform() Platform {
	return p.platform
}
