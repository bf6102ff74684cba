package app

import (
	"context"
	"fmt"
	"time"

	procmanv1 "procman/api/procman/v1"
	"procman/internal/alert"
)

// AlertParams holds optional threshold overrides; nil falls back to the
// configured alerts section.
type AlertParams struct {
	CPUPercent *float64
	MemoryKB   *uint64
	Refresh    bool
	Timeout    time.Duration
}

// Thresholds resolves the effective thresholds for params.
func (a *App) Thresholds(params AlertParams) alert.Thresholds {
	th := alert.Thresholds{CPUPercent: a.cfg.Alerts.CPUPercent, MemoryKB: a.cfg.Alerts.MemoryKB}
	if params.CPUPercent != nil {
		th.CPUPercent = *params.CPUPercent
	}
	if params.MemoryKB != nil {
		th.MemoryKB = *params.MemoryKB
	}
	return th
}

// Alerts scans the current snapshot against the thresholds.
func (a *App) Alerts(ctx context.Context, params AlertParams) ([]alert.Alert, error) {
	th := a.Thresholds(params)
	if th.CPUPercent < 0 {
		return nil, fmt.Errorf("cpu threshold must not be negative, got %v", th.CPUPercent)
	}

	var alerts []alert.Alert
	err := a.withClient(ctx, params.Timeout, func(ctx context.Context, client procmanv1.ProcManClient) error {
		resp, err := client.Alerts(ctx, &procmanv1.AlertsRequest{
			Refresh:    params.Refresh,
			CPUPercent: th.CPUPercent,
			MemoryKB:   th.MemoryKB,
		})
		if err != nil {
			return fmt.Errorf("daemon alerts RPC failed: %w", err)
		}
		alerts = resp.Alerts
		return nil
	})
	return alerts, err
}
