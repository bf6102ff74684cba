package app

import (
	"context"
	"fmt"
	"strings"
	"time"

	procmanv1 "procman/api/procman/v1"
	"procman/internal/proc"
	"procman/internal/query"
)

// ListParams defines filters and timeout.
type ListParams struct {
	Name    string
	Owner   string
	Sort    string
	Refresh bool
	Timeout time.Duration
}

func (p ListParams) buildRequest() (*procmanv1.QueryRequest, error) {
	key, err := query.ParseSortKey(p.Sort)
	if err != nil {
		return nil, err
	}
	return &procmanv1.QueryRequest{
		Refresh: p.Refresh,
		Name:    p.Name,
		Owner:   strings.TrimSpace(p.Owner),
		Sort:    string(key),
	}, nil
}

// List fetches the processes matching the provided filters.
func (a *App) List(ctx context.Context, params ListParams) ([]proc.Record, error) {
	req, err := params.buildRequest()
	if err != nil {
		return nil, err
	}

	var records []proc.Record
	err = a.withClient(ctx, params.Timeout, func(ctx context.Context, client procmanv1.ProcManClient) error {
		resp, err := client.Query(ctx, req)
		if err != nil {
			return fmt.Errorf("daemon query RPC failed: %w", err)
		}
		records = resp.Processes
		return nil
	})
	return records, err
}

// TreeParams configures the tree command.
type TreeParams struct {
	Refresh bool
	Timeout time.Duration
}

// Tree fetches the parent/child forest.
func (a *App) Tree(ctx context.Context, params TreeParams) ([]*query.Node, error) {
	var roots []*query.Node
	err := a.withClient(ctx, params.Timeout, func(ctx context.Context, client procmanv1.ProcManClient) error {
		resp, err := client.Tree(ctx, &procmanv1.TreeRequest{Refresh: params.Refresh})
		if err != nil {
			return fmt.Errorf("daemon tree RPC failed: %w", err)
		}
		roots = resp.Roots
		return nil
	})
	return roots, err
}
