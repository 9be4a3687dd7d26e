// Package grpcx exposes the customer directory over gRPC for sibling services, together
// with the standard health service.
package grpcx

import (
	"context"
	"time"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

const (
	DirectoryService       = "shop.v1.CustomerDirectory"
	validateCustomerMethod = "/" + DirectoryService + "/ValidateCustomer"
)

// DirectoryServer is implemented by Directory.
type DirectoryServer interface {
	ValidateCustomer(context.Context, *wrapperspb.Int64Value) (*wrapperspb.BoolValue, error)
}

func validateCustomerHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(wrapperspb.Int64Value)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(DirectoryServer).ValidateCustomer(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: validateCustomerMethod}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(DirectoryServer).ValidateCustomer(ctx, req.(*wrapperspb.Int64Value))
	}
	return interceptor(ctx, in, info, handler)
}

// DirectoryServiceDesc uses the well-known wrapper messages, so no generated code is needed.
var DirectoryServiceDesc = grpc.ServiceDesc{
	ServiceName: DirectoryService,
	HandlerType: (*DirectoryServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "ValidateCustomer", Handler: validateCustomerHandler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "shop/v1/directory.proto",
}

// CustomerLookup is satisfied by shop.Service.
type CustomerLookup interface {
	CustomerExists(ctx context.Context, id int64) (bool, error)
}

type Directory struct {
	customers CustomerLookup
}

func NewDirectory(customers CustomerLookup) *Directory {
	return &Directory{customers: customers}
}

// ValidateCustomer (existe por ID)
func (d *Directory) ValidateCustomer(ctx context.Context, in *wrapperspb.Int64Value) (*wrapperspb.BoolValue, error) {
	if in.GetValue() <= 0 {
		return nil, status.Error(codes.InvalidArgument, "id is required")
	}
	ok, err := d.customers.CustomerExists(ctx, in.GetValue())
	if err != nil {
		return nil, status.Errorf(codes.Internal, "validate error: %v", err)
	}
	return wrapperspb.Bool(ok), nil
}

// NewServer registers the directory and health services.
func NewServer(dir *Directory, log *zap.Logger) (*grpc.Server, *health.Server) {
	srv := grpc.NewServer(grpc.ChainUnaryInterceptor(logUnary(log)))
	srv.RegisterService(&DirectoryServiceDesc, dir)
	hs := health.NewServer()
	healthpb.RegisterHealthServer(srv, hs)
	return srv, hs
}

func logUnary(log *zap.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		start := time.Now()
		resp, err := handler(ctx, req)
		log.Info("grpc",
			zap.String("method", info.FullMethod),
			zap.String("code", status.Code(err).String()),
			zap.Duration("dur", time.Since(start)),
		)
		return resp, err
	}
}

// Pinger reports store reachability.
type Pinger interface {
	Ping(ctx context.Context) error
}

// WatchStore flips the health status of the directory and the server as store
// reachability changes, until ctx is done.
func WatchStore(ctx context.Context, hs *health.Server, p Pinger, every time.Duration) {
	check := func() {
		pctx, cancel := context.WithTimeout(ctx, every)
		defer cancel()
		st := healthpb.HealthCheckResponse_SERVING
		if err := p.Ping(pctx); err != nil {
			st = healthpb.HealthCheckResponse_NOT_SERVING
		}
		hs.SetServingStatus("", st)
		hs.SetServingStatus(DirectoryService, st)
	}
	check()
	t := time.NewTicker(every)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			hs.Shutdown()
			return
		case <-t.C:
			check()
		}
	}
}

// DirectoryClient calls ValidateCustomer on a remote shop service.
type DirectoryClient struct {
	cc grpc.ClientConnInterface
}

func NewDirectoryClient(cc grpc.ClientConnInterface) *DirectoryClient {
	return &DirectoryClient{cc: cc}
}

// DialDirectory opens a non-blocking connection to addr.
func DialDirectory(addr string, opts ...grpc.DialOption) (*DirectoryClient, *grpc.ClientConn, error) {
	opts = append([]grpc.DialOption{grpc.WithTransportCredentials(insecure.NewCredentials())}, opts...)
	conn, err := grpc.NewClient(addr, opts...)
	if err != nil {
		return nil, nil, err
	}
	return NewDirectoryClient(conn), conn, nil
}

func (c *DirectoryClient) ValidateCustomer(ctx context.Context, id int64) (bool, error) {
	out := new(wrapperspb.BoolValue)
	if err := c.cc.Invoke(ctx, validateCustomerMethod, wrapperspb.Int64(id), out); err != nil {
		return false, err
	}
	return out.GetValue(), nil
}
