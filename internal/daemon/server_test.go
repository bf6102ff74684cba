package daemon

import (
	"context"
	"errors"
	"math"
	"net"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"

	procmanv1 "procman/api/procman/v1"
	"procman/internal/config"
	"procman/internal/engine"
	"procman/internal/proc"
	"procman/internal/proc/proctest"
	"procman/internal/query"
)

func startBufServer(t *testing.T, fake *proctest.Platform) (procmanv1.ProcManClient, *Server) {
	t.Helper()
	cfg := config.Default()
	cfg.RefreshInterval = 20 * time.Millisecond
	srv := newServer(engine.New(fake, zerolog.Nop()), cfg, zerolog.Nop())

	lis := bufconn.Listen(1 << 20)
	srv.start(lis)
	t.Cleanup(func() { _ = srv.Close() })

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return procmanv1.NewProcManClient(conn), srv
}

func testRecords() []proc.Record {
	return []proc.Record{
		{PID: 1, Name: "init", Owner: "root", CPUPercent: 1, MemoryKB: 100},
		{PID: 20, Name: "postgres", Owner: "pg", CPUPercent: 95, MemoryKB: 700_000, ParentPID: 1, HasParent: true},
		{PID: 21, Name: "postgres: wal", Owner: "pg", CPUPercent: 3, MemoryKB: 9_000, ParentPID: 20, HasParent: true},
	}
}

func TestRPCRoundTrip(t *testing.T) {
	fake := proctest.New(testRecords()...)
	client, _ := startBufServer(t, fake)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	pong, err := client.Ping(ctx, &procmanv1.PingRequest{})
	require.NoError(t, err)
	assert.Equal(t, "pong", pong.GetOk())

	hist, err := client.History(ctx, &procmanv1.HistoryRequest{})
	require.NoError(t, err)
	assert.True(t, hist.Empty)

	q, err := client.Query(ctx, &procmanv1.QueryRequest{Refresh: true, Owner: "pg", Sort: "memory"})
	require.NoError(t, err)
	require.Len(t, q.Processes, 2)
	assert.Equal(t, 20, q.Processes[0].PID)
	assert.Equal(t, uint64(700_000), q.Processes[0].MemoryKB)

	tree, err := client.Tree(ctx, &procmanv1.TreeRequest{})
	require.NoError(t, err)
	require.Len(t, tree.Roots, 1)
	assert.Equal(t, 3, query.Count(tree.Roots))

	alerts, err := client.Alerts(ctx, &procmanv1.AlertsRequest{CPUPercent: 80, MemoryKB: 500_000})
	require.NoError(t, err)
	require.Len(t, alerts.Alerts, 1)
	assert.Equal(t, 20, alerts.Alerts[0].PID)

	killed, err := client.Terminate(ctx, &procmanv1.ActionRequest{PID: 21})
	require.NoError(t, err)
	assert.True(t, killed.Outcome.OK())

	restart, err := client.Restart(ctx, &procmanv1.ActionRequest{PID: 20})
	require.NoError(t, err)
	assert.Equal(t, "restart is not supported", restart.Outcome.Reason)

	hist, err = client.History(ctx, &procmanv1.HistoryRequest{})
	require.NoError(t, err)
	assert.False(t, hist.Empty)
	require.Len(t, hist.Entries, 2)
	assert.Equal(t, 21, hist.Entries[0].TargetPID)

	stats, err := client.Stats(ctx, &procmanv1.StatsRequest{})
	require.NoError(t, err)
	assert.Equal(t, 4, stats.System.CPUCores)
	assert.NotEmpty(t, stats.Samples)
}

func TestRPCErrorCodes(t *testing.T) {
	fake := proctest.New(testRecords()...)
	client, _ := startBufServer(t, fake)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	_, err := client.SetPriority(ctx, &procmanv1.ActionRequest{PID: 20, Value: 25})
	assert.Equal(t, codes.InvalidArgument, status.Code(err))

	_, err = client.Query(ctx, &procmanv1.QueryRequest{Sort: "colour"})
	assert.Equal(t, codes.InvalidArgument, status.Code(err))

	fake.FailEnumerate(errors.New("proc unavailable"))
	_, err = client.Snapshot(ctx, &procmanv1.SnapshotRequest{Refresh: true})
	assert.Equal(t, codes.Unavailable, status.Code(err))

	hist, err := client.History(ctx, &procmanv1.HistoryRequest{})
	require.NoError(t, err)
	require.Len(t, hist.Entries, 1, "rejected priority change is still recorded")
}

func TestNonFiniteCPUDoesNotBreakReplies(t *testing.T) {
	fake := proctest.New(
		proc.Record{PID: 1, Name: "stuck", CPUPercent: math.NaN(), MemoryKB: 900_000},
		proc.Record{PID: 2, Name: "busy", CPUPercent: 5, MemoryKB: 10},
	)
	fake.SetStats(proc.SystemStats{CPUCores: 2, CPUPercent: math.Inf(1)})
	client, _ := startBufServer(t, fake)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	q, err := client.Query(ctx, &procmanv1.QueryRequest{Refresh: true, Sort: "cpu"})
	require.NoError(t, err)
	require.Len(t, q.Processes, 2)
	assert.Equal(t, 2, q.Processes[0].PID, "unknown cpu sorts last")
	assert.Equal(t, 1, q.Processes[1].PID)
	assert.Zero(t, q.Processes[1].CPUPercent)

	snap, err := client.Snapshot(ctx, &procmanv1.SnapshotRequest{})
	require.NoError(t, err)
	assert.Len(t, snap.Snapshot.Processes, 2)
	assert.Zero(t, snap.Snapshot.System.CPUPercent)

	alerts, err := client.Alerts(ctx, &procmanv1.AlertsRequest{CPUPercent: 80, MemoryKB: 500_000})
	require.NoError(t, err)
	require.Len(t, alerts.Alerts, 1)
	assert.Equal(t, 1, alerts.Alerts[0].PID)
	assert.Zero(t, alerts.Alerts[0].CPUPercent)

	stats, err := client.Stats(ctx, &procmanv1.StatsRequest{})
	require.NoError(t, err)
	for _, sample := range stats.Samples {
		assert.Zero(t, sample.CPUPercent)
	}
}

func TestRefresherFeedsSamples(t *testing.T) {
	fake := proctest.New(testRecords()...)
	_, srv := startBufServer(t, fake)

	require.Eventually(t, func() bool {
		return len(srv.Engine().Samples()) >= 2
	}, 5*time.Second, 10*time.Millisecond)
	assert.GreaterOrEqual(t, fake.EnumerateCount(), 2)
}

func TestPathsFor(t *testing.T) {
	dir := t.TempDir()
	cfg := config.Default()
	cfg.RuntimeDir = dir

	p := PathsFor(cfg)
	assert.Equal(t, filepath.Join(dir, "procman.sock"), p.Socket)
	assert.Equal(t, filepath.Join(dir, "procman.pid"), p.PID)
	assert.Equal(t, filepath.Join(dir, "procman.lock"), p.Lock)
	assert.Equal(t, "unix:///"+strings.TrimPrefix(p.Socket, "/"), p.target())

	cfg.SocketPath = filepath.Join(dir, "sub", "custom.sock")
	p = PathsFor(cfg)
	assert.Equal(t, cfg.SocketPath, p.Socket)
	assert.Equal(t, filepath.Join(dir, "sub", "procman.pid"), p.PID)
}

func TestPIDFileLifecycle(t *testing.T) {
	cfg := config.Default()
	cfg.RuntimeDir = filepath.Join(t.TempDir(), "run")
	p := PathsFor(cfg)

	require.NoError(t, p.ensureDir())
	_, err := p.RunningPID()
	assert.ErrorIs(t, err, os.ErrNotExist)

	require.NoError(t, p.writePID(4242))
	pid, err := p.RunningPID()
	require.NoError(t, err)
	assert.Equal(t, 4242, pid)

	require.NoError(t, p.removePID())
	require.NoError(t, p.removePID())
	assert.False(t, IsRunning(p))
}

func TestStartDaemonOnConfiguredSocket(t *testing.T) {
	// Short dir keeps the socket path under the sun_path limit.
	dir, err := os.MkdirTemp("", "pm")
	require.NoError(t, err)
	t.Cleanup(func() { os.RemoveAll(dir) })

	cfg := config.Default()
	cfg.RuntimeDir = dir
	srv, err := StartDaemon(cfg, zerolog.Nop())
	require.NoError(t, err)

	p := PathsFor(cfg)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	client, conn, err := Dial(ctx, p)
	require.NoError(t, err)
	pong, err := client.Ping(ctx, &procmanv1.PingRequest{})
	require.NoError(t, err)
	assert.Equal(t, os.Getpid(), pong.PID)
	require.NoError(t, conn.Close())

	_, err = StartDaemon(cfg, zerolog.Nop())
	assert.ErrorIs(t, err, ErrAlreadyRunning)

	require.NoError(t, srv.Close())
	assert.NoFileExists(t, p.Socket)
	assert.NoFileExists(t, p.PID)
	assert.False(t, IsRunning(p))
}

func TestToStatus(t *testing.T) {
	assert.NoError(t, toStatus(nil))
	assert.Equal(t, codes.Unavailable, status.Code(toStatus(&proc.SnapshotError{Err: errors.New("x")})))
	assert.Equal(t, codes.InvalidArgument, status.Code(toStatus(query.ErrInvalidArgument)))
	assert.Equal(t, codes.Internal, status.Code(toStatus(errors.New("boom"))))
}
