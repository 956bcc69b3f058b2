package grpcserver

import (
	"context"

	"github.com/md-rashed-zaman/availability/libs/grpcx"
	"github.com/md-rashed-zaman/availability/services/availability-service/internal/calc"
	"google.golang.org/grpc"
)

// Messages travel as JSON (grpcx.JSONCodec), so the service is described by hand instead of
// by generated protobuf stubs.

const (
	ServiceName       = "availability.v1.AvailabilityService"
	getPeriodsMethod  = "/" + ServiceName + "/GetPeriods"
	getSessionsMethod = "/" + ServiceName + "/GetSessions"
)

type AvailabilityServiceServer interface {
	GetPeriods(context.Context, *calc.Request) (*calc.PeriodsResponse, error)
	GetSessions(context.Context, *calc.Request) (*calc.SessionsResponse, error)
}

var serviceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*AvailabilityServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "GetPeriods", Handler: getPeriodsHandler},
		{MethodName: "GetSessions", Handler: getSessionsHandler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "availability/v1/availability.json",
}

func getPeriodsHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(calc.Request)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(AvailabilityServiceServer).GetPeriods(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: getPeriodsMethod}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(AvailabilityServiceServer).GetPeriods(ctx, req.(*calc.Request))
	}
	return interceptor(ctx, in, info, handler)
}

func getSessionsHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(calc.Request)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(AvailabilityServiceServer).GetSessions(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: getSessionsMethod}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(AvailabilityServiceServer).GetSessions(ctx, req.(*calc.Request))
	}
	return interceptor(ctx, in, info, handler)
}

// Client calls AvailabilityService over a connection from grpcx.Dial.
type Client struct {
	conn grpc.ClientConnInterface
}

func NewClient(conn grpc.ClientConnInterface) *Client {
	return &Client{conn: conn}
}

func (c *Client) GetPeriods(ctx context.Context, req *calc.Request, opts ...grpc.CallOption) (*calc.PeriodsResponse, error) {
	out := new(calc.PeriodsResponse)
	if err := c.conn.Invoke(ctx, getPeriodsMethod, req, out, append([]grpc.CallOption{grpcx.CallJSON()}, opts...)...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) GetSessions(ctx context.Context, req *calc.Request, opts ...grpc.CallOption) (*calc.SessionsResponse, error) {
	out := new(calc.SessionsResponse)
	if err := c.conn.Invoke(ctx, getSessionsMethod, req, out, append([]grpc.CallOption{grpcx.CallJSON()}, opts...)...); err != nil {
		return nil, err
	}
	return out, nil
}
