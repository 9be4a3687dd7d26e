package grpcx

import (
	"context"
	"errors"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
)

type lookup map[int64]bool

func (l lookup) CustomerExists(_ context.Context, id int64) (bool, error) {
	if id == 500 {
		return false, errors.New("store down")
	}
	return l[id], nil
}

type pinger struct{ err error }

func (p pinger) Ping(context.Context) error { return p.err }

func dial(t *testing.T, l lookup) (*DirectoryClient, *grpc.ClientConn, *grpc.Server, func(Pinger)) {
	t.Helper()
	lis := bufconn.Listen(1 << 20)
	srv, hs := NewServer(NewDirectory(l), zap.NewNop())
	go func() { _ = srv.Serve(lis) }()
	t.Cleanup(srv.Stop)

	client, conn, err := DialDirectory("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) { return lis.DialContext(ctx) }))
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	watch := func(p Pinger) {
		ctx, cancel := context.WithCancel(context.Background())
		t.Cleanup(cancel)
		go WatchStore(ctx, hs, p, time.Hour)
	}
	return client, conn, srv, watch
}

func TestValidateCustomer(t *testing.T) {
	client, _, _, _ := dial(t, lookup{1: true})
	ctx := context.Background()

	ok, err := client.ValidateCustomer(ctx, 1)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = client.ValidateCustomer(ctx, 2)
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = client.ValidateCustomer(ctx, 0)
	assert.Equal(t, codes.InvalidArgument, status.Code(err))

	_, err = client.ValidateCustomer(ctx, 500)
	assert.Equal(t, codes.Internal, status.Code(err))
}

func TestHealthFollowsStore(t *testing.T) {
	_, conn, _, watch := dial(t, lookup{})
	watch(pinger{err: errors.New("down")})

	hc := healthpb.NewHealthClient(conn)
	assert.Eventually(t, func() bool {
		resp, err := hc.Check(context.Background(), &healthpb.HealthCheckRequest{Service: DirectoryService})
		return err == nil && resp.GetStatus() == healthpb.HealthCheckResponse_NOT_SERVING
	}, 2*time.Second, 20*time.Millisecond)
}
