package app

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/rs/zerolog"
	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"

	procmanv1 "procman/api/procman/v1"
	"procman/internal/daemon"
	"procman/internal/proc"
	"procman/internal/proc/proctest"
)

type fakeConn struct {
	invoke func(ctx context.Context, method string, args interface{}, reply interface{}, opts ...grpc.CallOption) error
}

func (f *fakeConn) Invoke(ctx context.Context, method string, args interface{}, reply interface{}, opts ...grpc.CallOption) error {
	if f.invoke != nil {
		return f.invoke(ctx, method, args, reply, opts...)
	}
	return nil
}

func (f *fakeConn) NewStream(ctx context.Context, desc *grpc.StreamDesc, method string, opts ...grpc.CallOption) (grpc.ClientStream, error) {
	return nil, errors.New("not implemented")
}

func (f *fakeConn) Close() error { return nil }

func stubDaemon(t *testing.T, running bool, dial func(context.Context, daemon.Paths) (procmanv1.ProcManClient, io.Closer, error)) {
	t.Helper()
	resetDaemonDeps()
	daemonIsRunning = func(daemon.Paths) bool { return running }
	if dial == nil {
		dial = func(context.Context, daemon.Paths) (procmanv1.ProcManClient, io.Closer, error) {
			return nil, nil, errors.New("dial not stubbed")
		}
	}
	dialDaemonClient = dial
	t.Cleanup(resetDaemonDeps)
}

// stubConn routes every call through invoke and hands back a client over it.
func stubConn(t *testing.T, invoke func(method string, args *structpb.Struct, reply *structpb.Struct) error) {
	t.Helper()
	stubDaemon(t, true, func(context.Context, daemon.Paths) (procmanv1.ProcManClient, io.Closer, error) {
		conn := &fakeConn{
			invoke: func(ctx context.Context, method string, args interface{}, reply interface{}, opts ...grpc.CallOption) error {
				return invoke(method, args.(*structpb.Struct), reply.(*structpb.Struct))
			},
		}
		return procmanv1.NewProcManClient(conn), conn, nil
	})
}

func respond(t *testing.T, reply *structpb.Struct, v any) {
	t.Helper()
	wire, err := procmanv1.Encode(v)
	if err != nil {
		t.Fatalf("encode reply: %v", err)
	}
	reply.Fields = wire.GetFields()
}

func decodeArgs[T any](t *testing.T, args *structpb.Struct) T {
	t.Helper()
	var out T
	if err := procmanv1.Decode(args, &out); err != nil {
		t.Fatalf("decode args: %v", err)
	}
	return out
}

// stubLocal makes local mode run on a fake platform seeded with records.
func stubLocal(t *testing.T, records ...proc.Record) *proctest.Platform {
	t.Helper()
	resetDaemonDeps()
	fake := proctest.New(records...)
	localPlatform = func(zerolog.Logger) proc.Platform { return fake }
	daemonIsRunning = func(daemon.Paths) bool {
		t.Fatal("local mode must not contact the daemon")
		return false
	}
	t.Cleanup(resetDaemonDeps)
	return fake
}
