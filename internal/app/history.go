package app

import (
	"context"
	"fmt"
	"time"

	procmanv1 "procman/api/procman/v1"
	"procman/internal/history"
)

// History returns the recorded control actions. The boolean is false when
// nothing has been recorded yet.
func (a *App) History(ctx context.Context, timeout time.Duration) ([]history.Entry, bool, error) {
	var (
		entries []history.Entry
		ok      bool
	)
	err := a.withClient(ctx, timeout, func(ctx context.Context, client procmanv1.ProcManClient) error {
		resp, err := client.History(ctx, &procmanv1.HistoryRequest{})
		if err != nil {
			return fmt.Errorf("daemon history RPC failed: %w", err)
		}
		entries, ok = resp.Entries, !resp.Empty
		return nil
	})
	return entries, ok, err
}
