package daemon

import (
	"context"
	"errors"
	"os"

	"github.com/rs/zerolog"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	procmanv1 "procman/api/procman/v1"
	"procman/internal/alert"
	"procman/internal/control"
	"procman/internal/engine"
	"procman/internal/export"
	"procman/internal/proc"
	"procman/internal/query"
)

// service implements the ProcMan gRPC service backed by one engine.
type service struct {
	eng *engine.Engine
	log zerolog.Logger
}

// NewService exposes eng through the ProcMan server interface. The CLI's
// local mode wraps the same service in procmanv1.NewLocalClient.
func NewService(eng *engine.Engine, log zerolog.Logger) procmanv1.ProcManServer {
	return &service{eng: eng, log: log}
}

func (s *service) Ping(ctx context.Context, _ *procmanv1.PingRequest) (*procmanv1.PingResponse, error) {
	return &procmanv1.PingResponse{Ok: "pong", PID: os.Getpid()}, nil
}

func (s *service) snapshot(ctx context.Context, refresh bool) (proc.Snapshot, error) {
	var (
		snap proc.Snapshot
		err  error
	)
	if refresh {
		snap, err = s.eng.RefreshSnapshot(ctx)
	} else {
		snap, err = s.eng.Snapshot(ctx)
	}
	if err != nil {
		return proc.Snapshot{}, toStatus(err)
	}
	return snap, nil
}

func (s *service) Snapshot(ctx context.Context, req *procmanv1.SnapshotRequest) (*procmanv1.SnapshotResponse, error) {
	snap, err := s.snapshot(ctx, req.Refresh)
	if err != nil {
		return nil, err
	}
	return &procmanv1.SnapshotResponse{Snapshot: snap}, nil
}

func (s *service) Query(ctx context.Context, req *procmanv1.QueryRequest) (*procmanv1.QueryResponse, error) {
	key, err := query.ParseSortKey(req.Sort)
	if err != nil {
		return nil, toStatus(err)
	}
	snap, err := s.snapshot(ctx, req.Refresh)
	if err != nil {
		return nil, err
	}
	records, err := s.eng.Query(snap, query.Options{Name: req.Name, Owner: req.Owner, Sort: key})
	if err != nil {
		return nil, toStatus(err)
	}
	return &procmanv1.QueryResponse{Processes: records, TakenAt: snap.TakenAt}, nil
}

func (s *service) Tree(ctx context.Context, req *procmanv1.TreeRequest) (*procmanv1.TreeResponse, error) {
	snap, err := s.snapshot(ctx, req.Refresh)
	if err != nil {
		return nil, err
	}
	return &procmanv1.TreeResponse{Roots: s.eng.Tree(snap)}, nil
}

func (s *service) Terminate(ctx context.Context, req *procmanv1.ActionRequest) (*procmanv1.ActionResponse, error) {
	return &procmanv1.ActionResponse{Outcome: s.eng.Terminate(req.PID)}, nil
}

func (s *service) SetPriority(ctx context.Context, req *procmanv1.ActionRequest) (*procmanv1.ActionResponse, error) {
	out, err := s.eng.SetPriority(req.PID, req.Value)
	if err != nil {
		return nil, toStatus(err)
	}
	return &procmanv1.ActionResponse{Outcome: out}, nil
}

func (s *service) Restart(ctx context.Context, req *procmanv1.ActionRequest) (*procmanv1.ActionResponse, error) {
	return &procmanv1.ActionResponse{Outcome: s.eng.Restart(req.PID)}, nil
}

func (s *service) Alerts(ctx context.Context, req *procmanv1.AlertsRequest) (*procmanv1.AlertsResponse, error) {
	if req.CPUPercent < 0 {
		return nil, status.Error(codes.InvalidArgument, "cpu threshold must not be negative")
	}
	snap, err := s.snapshot(ctx, req.Refresh)
	if err != nil {
		return nil, err
	}
	th := alert.Thresholds{CPUPercent: req.CPUPercent, MemoryKB: req.MemoryKB}
	return &procmanv1.AlertsResponse{Alerts: s.eng.ScanAlerts(snap, th)}, nil
}

func (s *service) History(ctx context.Context, _ *procmanv1.HistoryRequest) (*procmanv1.HistoryResponse, error) {
	entries, ok := s.eng.History()
	return &procmanv1.HistoryResponse{Entries: entries, Empty: !ok}, nil
}

func (s *service) Stats(ctx context.Context, req *procmanv1.StatsRequest) (*procmanv1.StatsResponse, error) {
	snap, err := s.snapshot(ctx, req.Refresh)
	if err != nil {
		return nil, err
	}
	return &procmanv1.StatsResponse{
		System:  snap.System,
		Samples: s.eng.Samples(),
		TakenAt: snap.TakenAt,
	}, nil
}

func toStatus(err error) error {
	if err == nil {
		return nil
	}
	var snapErr *proc.SnapshotError
	switch {
	case errors.As(err, &snapErr):
		return status.Error(codes.Unavailable, err.Error())
	case errors.Is(err, control.ErrInvalidArgument),
		errors.Is(err, query.ErrInvalidArgument),
		errors.Is(err, export.ErrInvalidArgument):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		return status.Error(codes.DeadlineExceeded, err.Error())
	case errors.Is(err, context.Canceled):
		return status.Error(codes.Canceled, err.Error())
	default:
		return status.Error(codes.Internal, err.Error())
	}
}
