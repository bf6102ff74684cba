package daemon

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/connectivity"
	"google.golang.org/grpc/credentials/insecure"

	procmanv1 "procman/api/procman/v1"
)

const probeTimeout = 300 * time.Millisecond

// Dial connects to the daemon listening on p.Socket and waits until the
// connection is ready or ctx ends.
func Dial(ctx context.Context, p Paths) (procmanv1.ProcManClient, *grpc.ClientConn, error) {
	conn, err := grpc.NewClient(
		p.target(),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			var d net.Dialer
			return d.DialContext(ctx, "unix", p.Socket)
		}),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("dial %s: %w", p.Socket, err)
	}
	conn.Connect()
	if err := awaitReady(ctx, conn); err != nil {
		_ = conn.Close()
		return nil, nil, err
	}
	return procmanv1.NewProcManClient(conn), conn, nil
}

func awaitReady(ctx context.Context, conn *grpc.ClientConn) error {
	for {
		state := conn.GetState()
		switch state {
		case connectivity.Ready:
			return nil
		case connectivity.Shutdown:
			return errors.New("connection shut down")
		}
		if !conn.WaitForStateChange(ctx, state) {
			if err := ctx.Err(); err != nil {
				return err
			}
			return fmt.Errorf("connection stuck in %s", state)
		}
	}
}

// IsRunning reports whether a daemon answers Ping on p.Socket.
func IsRunning(p Paths) bool {
	if _, err := os.Stat(p.Socket); err != nil {
		return false
	}
	ctx, cancel := context.WithTimeout(context.Background(), probeTimeout)
	defer cancel()

	client, conn, err := Dial(ctx, p)
	if err != nil {
		return false
	}
	defer conn.Close()
	_, err = client.Ping(ctx, &procmanv1.PingRequest{})
	return err == nil
}
