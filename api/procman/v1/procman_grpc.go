package procmanv1

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
)

const ServiceName = "procman.v1.ProcMan"

// Full method names.
const (
	MethodPing        = "/" + ServiceName + "/Ping"
	MethodSnapshot    = "/" + ServiceName + "/Snapshot"
	MethodQuery       = "/" + ServiceName + "/Query"
	MethodTree        = "/" + ServiceName + "/Tree"
	MethodTerminate   = "/" + ServiceName + "/Terminate"
	MethodSetPriority = "/" + ServiceName + "/SetPriority"
	MethodRestart     = "/" + ServiceName + "/Restart"
	MethodAlerts      = "/" + ServiceName + "/Alerts"
	MethodHistory     = "/" + ServiceName + "/History"
	MethodStats       = "/" + ServiceName + "/Stats"
)

// ProcManClient is the client API for the ProcMan service.
type ProcManClient interface {
	Ping(ctx context.Context, in *PingRequest, opts ...grpc.CallOption) (*PingResponse, error)
	Snapshot(ctx context.Context, in *SnapshotRequest, opts ...grpc.CallOption) (*SnapshotResponse, error)
	Query(ctx context.Context, in *QueryRequest, opts ...grpc.CallOption) (*QueryResponse, error)
	Tree(ctx context.Context, in *TreeRequest, opts ...grpc.CallOption) (*TreeResponse, error)
	Terminate(ctx context.Context, in *ActionRequest, opts ...grpc.CallOption) (*ActionResponse, error)
	SetPriority(ctx context.Context, in *ActionRequest, opts ...grpc.CallOption) (*ActionResponse, error)
	Restart(ctx context.Context, in *ActionRequest, opts ...grpc.CallOption) (*ActionResponse, error)
	Alerts(ctx context.Context, in *AlertsRequest, opts ...grpc.CallOption) (*AlertsResponse, error)
	History(ctx context.Context, in *HistoryRequest, opts ...grpc.CallOption) (*HistoryResponse, error)
	Stats(ctx context.Context, in *StatsRequest, opts ...grpc.CallOption) (*StatsResponse, error)
}

type procManClient struct {
	cc grpc.ClientConnInterface
}

func NewProcManClient(cc grpc.ClientConnInterface) ProcManClient {
	return &procManClient{cc: cc}
}

func invoke[Req, Resp any](ctx context.Context, cc grpc.ClientConnInterface, method string, in *Req, opts []grpc.CallOption) (*Resp, error) {
	payload, err := Encode(in)
	if err != nil {
		return nil, err
	}
	reply := &structpb.Struct{}
	if err := cc.Invoke(ctx, method, payload, reply, opts...); err != nil {
		return nil, err
	}
	out := new(Resp)
	if err := Decode(reply, out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *procManClient) Ping(ctx context.Context, in *PingRequest, opts ...grpc.CallOption) (*PingResponse, error) {
	return invoke[PingRequest, PingResponse](ctx, c.cc, MethodPing, in, opts)
}

func (c *procManClient) Snapshot(ctx context.Context, in *SnapshotRequest, opts ...grpc.CallOption) (*SnapshotResponse, error) {
	return invoke[SnapshotRequest, SnapshotResponse](ctx, c.cc, MethodSnapshot, in, opts)
}

func (c *procManClient) Query(ctx context.Context, in *QueryRequest, opts ...grpc.CallOption) (*QueryResponse, error) {
	return invoke[QueryRequest, QueryResponse](ctx, c.cc, MethodQuery, in, opts)
}

func (c *procManClient) Tree(ctx context.Context, in *TreeRequest, opts ...grpc.CallOption) (*TreeResponse, error) {
	return invoke[TreeRequest, TreeResponse](ctx, c.cc, MethodTree, in, opts)
}

func (c *procManClient) Terminate(ctx context.Context, in *ActionRequest, opts ...grpc.CallOption) (*ActionResponse, error) {
	return invoke[ActionRequest, ActionResponse](ctx, c.cc, MethodTerminate, in, opts)
}

func (c *procManClient) SetPriority(ctx context.Context, in *ActionRequest, opts ...grpc.CallOption) (*ActionResponse, error) {
	return invoke[ActionRequest, ActionResponse](ctx, c.cc, MethodSetPriority, in, opts)
}

func (c *procManClient) Restart(ctx context.Context, in *ActionRequest, opts ...grpc.CallOption) (*ActionResponse, error) {
	return invoke[ActionRequest, ActionResponse](ctx, c.cc, MethodRestart, in, opts)
}

func (c *procManClient) Alerts(ctx context.Context, in *AlertsRequest, opts ...grpc.CallOption) (*AlertsResponse, error) {
	return invoke[AlertsRequest, AlertsResponse](ctx, c.cc, MethodAlerts, in, opts)
}

func (c *procManClient) History(ctx context.Context, in *HistoryRequest, opts ...grpc.CallOption) (*HistoryResponse, error) {
	return invoke[HistoryRequest, HistoryResponse](ctx, c.cc, MethodHistory, in, opts)
}

func (c *procManClient) Stats(ctx context.Context, in *StatsRequest, opts ...grpc.CallOption) (*StatsResponse, error) {
	return invoke[StatsRequest, StatsResponse](ctx, c.cc, MethodStats, in, opts)
}

// ProcManServer is the server API for the ProcMan service.
type ProcManServer interface {
	Ping(context.Context, *PingRequest) (*PingResponse, error)
	Snapshot(context.Context, *SnapshotRequest) (*SnapshotResponse, error)
	Query(context.Context, *QueryRequest) (*QueryResponse, error)
	Tree(context.Context, *TreeRequest) (*TreeResponse, error)
	Terminate(context.Context, *ActionRequest) (*ActionResponse, error)
	SetPriority(context.Context, *ActionRequest) (*ActionResponse, error)
	Restart(context.Context, *ActionRequest) (*ActionResponse, error)
	Alerts(context.Context, *AlertsRequest) (*AlertsResponse, error)
	History(context.Context, *HistoryRequest) (*HistoryResponse, error)
	Stats(context.Context, *StatsRequest) (*StatsResponse, error)
}

func RegisterProcManServer(s grpc.ServiceRegistrar, srv ProcManServer) {
	s.RegisterService(&ProcMan_ServiceDesc, srv)
}

func unary[Req, Resp any](name string, call func(ProcManServer, context.Context, *Req) (*Resp, error)) grpc.MethodDesc {
	fullMethod := "/" + ServiceName + "/" + name
	return grpc.MethodDesc{
		MethodName: name,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := &structpb.Struct{}
			if err := dec(in); err != nil {
				return nil, err
			}
			handle := func(ctx context.Context, raw any) (any, error) {
				req := new(Req)
				if err := Decode(raw.(*structpb.Struct), req); err != nil {
					return nil, status.Errorf(codes.InvalidArgument, "%s: %v", name, err)
				}
				resp, err := call(srv.(ProcManServer), ctx, req)
				if err != nil {
					return nil, err
				}
				out, err := Encode(resp)
				if err != nil {
					return nil, status.Errorf(codes.Internal, "%s: %v", name, err)
				}
				return out, nil
			}
			if interceptor == nil {
				return handle(ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
			return interceptor(ctx, in, info, handle)
		},
	}
}

// ProcMan_ServiceDesc is the grpc.ServiceDesc for the ProcMan service.
var ProcMan_ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*ProcManServer)(nil),
	Methods: []grpc.MethodDesc{
		unary("Ping", ProcManServer.Ping),
		unary("Snapshot", ProcManServer.Snapshot),
		unary("Query", ProcManServer.Query),
		unary("Tree", ProcManServer.Tree),
		unary("Terminate", ProcManServer.Terminate),
		unary("SetPriority", ProcManServer.SetPriority),
		unary("Restart", ProcManServer.Restart),
		unary("Alerts", ProcManServer.Alerts),
		unary("History", ProcManServer.History),
		unary("Stats", ProcManServer.Stats),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "procman/v1/procman.proto",
}
