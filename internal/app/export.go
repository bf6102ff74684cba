package app

import (
	"context"
	"errors"
	"strings"

	"procman/internal/export"
)

// ExportParams selects records like List and writes them to Path.
type ExportParams struct {
	List   ListParams
	Format string
	Path   string
}

// Export writes the matching records to params.Path and returns how many
// were written. The file is written by this process, not the daemon.
func (a *App) Export(ctx context.Context, params ExportParams) (int, error) {
	format, err := export.ParseFormat(params.Format)
	if err != nil {
		return 0, err
	}
	path := strings.TrimSpace(params.Path)
	if path == "" {
		return 0, errors.New("output path is required")
	}

	records, err := a.List(ctx, params.List)
	if err != nil {
		return 0, err
	}
	if err := a.writeExport(records, format, path); err != nil {
		return 0, err
	}
	return len(records), nil
}
