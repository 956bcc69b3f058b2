package grpcx

import (
	"context"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
)

const defaultDialTimeout = 3 * time.Second

// DialOptions configures Dial. A nil TransportCredentials means plaintext.
type DialOptions struct {
	Timeout              time.Duration
	TransportCredentials grpc.DialOption
}

func (o DialOptions) timeout() time.Duration {
	if o.Timeout <= 0 {
		return defaultDialTimeout
	}
	return o.Timeout
}

func (o DialOptions) build(extra []grpc.DialOption) []grpc.DialOption {
	creds := o.TransportCredentials
	if creds == nil {
		creds = grpc.WithTransportCredentials(insecure.NewCredentials())
	}
	out := []grpc.DialOption{
		grpc.WithStatsHandler(otelgrpc.NewClientHandler()),
		grpc.WithChainUnaryInterceptor(UnaryClientRequestIDInterceptor()),
		grpc.WithDefaultCallOptions(CallJSON()),
		grpc.WithBlock(),
		creds,
	}
	return append(out, extra...)
}

// Dial blocks until the availability server is reachable or the timeout elapses.
// Calls on the returned connection use the JSON codec.
func Dial(ctx context.Context, addr string, opts DialOptions, extra ...grpc.DialOption) (*grpc.ClientConn, error) {
	ctx, cancel := context.WithTimeout(ctx, opts.timeout())
	defer cancel()
	return grpc.DialContext(ctx, addr, opts.build(extra)...)
}
