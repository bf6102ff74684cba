package procmanv1

import (
	"context"

	"google.golang.org/grpc"
)

// NewLocalClient adapts an in-process server to the client interface, so
// callers can run without a daemon. Call options are ignored.
func NewLocalClient(srv ProcManServer) ProcManClient {
	return localClient{srv: srv}
}

type localClient struct {
	srv ProcManServer
}

func (c localClient) Ping(ctx context.Context, in *PingRequest, _ ...grpc.CallOption) (*PingResponse, error) {
	return c.srv.Ping(ctx, in)
}

func (c localClient) Snapshot(ctx context.Context, in *SnapshotRequest, _ ...grpc.CallOption) (*SnapshotResponse, error) {
	return c.srv.Snapshot(ctx, in)
}

func (c localClient) Query(ctx context.Context, in *QueryRequest, _ ...grpc.CallOption) (*QueryResponse, error) {
	return c.srv.Query(ctx, in)
}

func (c localClient) Tree(ctx context.Context, in *TreeRequest, _ ...grpc.CallOption) (*TreeResponse, error) {
	return c.srv.Tree(ctx, in)
}

func (c localClient) Terminate(ctx context.Context, in *ActionRequest, _ ...grpc.CallOption) (*ActionResponse, error) {
	return c.srv.Terminate(ctx, in)
}

func (c localClient) SetPriority(ctx context.Context, in *ActionRequest, _ ...grpc.CallOption) (*ActionResponse, error) {
	return c.srv.SetPriority(ctx, in)
}

func (c localClient) Restart(ctx context.Context, in *ActionRequest, _ ...grpc.CallOption) (*ActionResponse, error) {
	return c.srv.Restart(ctx, in)
}

func (c localClient) Alerts(ctx context.Context, in *AlertsRequest, _ ...grpc.CallOption) (*AlertsResponse, error) {
	return c.srv.Alerts(ctx, in)
}

func (c localClient) History(ctx context.Context, in *HistoryRequest, _ ...grpc.CallOption) (*HistoryResponse, error) {
	return c.srv.History(ctx, in)
}

func (c localClient) Stats(ctx context.Context, in *StatsRequest, _ ...grpc.CallOption) (*StatsResponse, error) {
	return c.srv.Stats(ctx, in)
}
