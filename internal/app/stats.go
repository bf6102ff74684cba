package app

import (
	"context"
	"fmt"
	"time"

	procmanv1 "procman/api/procman/v1"
	"procman/internal/engine"
	"procman/internal/proc"
)

// Stats is the machine-wide view: counters from the latest snapshot plus the
// rolling utilisation samples.
type Stats struct {
	System  proc.SystemStats
	Samples []engine.Sample
	TakenAt time.Time
}

// Stats fetches system counters and samples.
func (a *App) Stats(ctx context.Context, refresh bool, timeout time.Duration) (Stats, error) {
	var out Stats
	err := a.withClient(ctx, timeout, func(ctx context.Context, client procmanv1.ProcManClient) error {
		resp, err := client.Stats(ctx, &procmanv1.StatsRequest{Refresh: refresh})
		if err != nil {
			return fmt.Errorf("daemon stats RPC failed: %w", err)
		}
		out = Stats{System: resp.System, Samples: resp.Samples, TakenAt: resp.TakenAt}
		return nil
	})
	return out, err
}
