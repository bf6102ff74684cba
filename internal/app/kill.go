package app

import (
	"context"
	"fmt"
	"time"

	procmanv1 "procman/api/procman/v1"
	"procman/internal/history"
)

// ActionParams targets one pid. Value is the niceness for Nice.
type ActionParams struct {
	PID     int
	Value   int
	Timeout time.Duration
}

// ActionResult reports the outcome of one control action. Name is empty when
// the pid was not in the latest snapshot.
type ActionResult struct {
	PID     int
	Name    string
	Outcome history.Outcome
}

// Kill terminates one process. A failed kill is reported in the result, not
// as an error.
func (a *App) Kill(ctx context.Context, params ActionParams) (ActionResult, error) {
	return a.act(ctx, params, "kill", func(ctx context.Context, client procmanv1.ProcManClient, req *procmanv1.ActionRequest) (*procmanv1.ActionResponse, error) {
		return client.Terminate(ctx, req)
	})
}

// Nice changes the scheduling priority of one process. Values outside
// [proc.MinNice, proc.MaxNice] come back as an InvalidArgument error after
// the engine has recorded the rejection.
func (a *App) Nice(ctx context.Context, params ActionParams) (ActionResult, error) {
	return a.act(ctx, params, "set priority", func(ctx context.Context, client procmanv1.ProcManClient, req *procmanv1.ActionRequest) (*procmanv1.ActionResponse, error) {
		return client.SetPriority(ctx, req)
	})
}

// Restart asks the engine to restart a process; it always fails and is
// recorded in history.
func (a *App) Restart(ctx context.Context, params ActionParams) (ActionResult, error) {
	return a.act(ctx, params, "restart", func(ctx context.Context, client procmanv1.ProcManClient, req *procmanv1.ActionRequest) (*procmanv1.ActionResponse, error) {
		return client.Restart(ctx, req)
	})
}

type actionCall func(context.Context, procmanv1.ProcManClient, *procmanv1.ActionRequest) (*procmanv1.ActionResponse, error)

func (a *App) act(ctx context.Context, params ActionParams, verb string, call actionCall) (ActionResult, error) {
	result := ActionResult{PID: params.PID}
	err := a.withClient(ctx, params.Timeout, func(ctx context.Context, client procmanv1.ProcManClient) error {
		// The name is informational only; the pid may be gone by now.
		if snap, err := client.Snapshot(ctx, &procmanv1.SnapshotRequest{}); err == nil {
			if rec, ok := snap.Snapshot.Lookup(params.PID); ok {
				result.Name = rec.Name
			}
		}
		resp, err := call(ctx, client, &procmanv1.ActionRequest{PID: params.PID, Value: params.Value})
		if err != nil {
			return fmt.Errorf("daemon %s RPC failed: %w", verb, err)
		}
		result.Outcome = resp.Outcome
		return nil
	})
	return result, err
}
