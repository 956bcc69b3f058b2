package grpcx

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

var testInfo = &grpc.UnaryServerInfo{FullMethod: "/availability.v1.AvailabilityService/GetPeriods"}

func TestServerRequestIDFromMetadata(t *testing.T) {
	ctx := metadata.NewIncomingContext(context.Background(), metadata.Pairs(RequestIDMetadataKey, "req-7"))
	var seen string
	_, err := UnaryServerRequestIDInterceptor()(ctx, nil, testInfo, func(ctx context.Context, _ any) (any, error) {
		seen = RequestIDFromContext(ctx)
		return nil, nil
	})
	require.NoError(t, err)
	assert.Equal(t, "req-7", seen)
}

func TestServerRequestIDGenerated(t *testing.T) {
	var seen string
	_, _ = UnaryServerRequestIDInterceptor()(context.Background(), nil, testInfo, func(ctx context.Context, _ any) (any, error) {
		seen = RequestIDFromContext(ctx)
		return nil, nil
	})
	assert.Len(t, seen, 36)
}

func TestRecoveryAndLogging(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))

	_, err := UnaryServerRecoveryInterceptor(logger)(context.Background(), nil, testInfo, func(context.Context, any) (any, error) {
		panic("boom")
	})
	assert.Equal(t, codes.Internal, status.Code(err))

	buf.Reset()
	_, _ = UnaryServerLoggingInterceptor(logger)(context.Background(), nil, testInfo, func(context.Context, any) (any, error) {
		return nil, status.Error(codes.InvalidArgument, "bad range")
	})
	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "WARN", line["level"])
	assert.Equal(t, "InvalidArgument", line["code"])
}

func TestJSONCodec(t *testing.T) {
	type msg struct {
		Interval string `json:"interval"`
	}
	c := JSONCodec{}
	b, err := c.Marshal(msg{Interval: "15 minutes"})
	require.NoError(t, err)
	var out msg
	require.NoError(t, c.Unmarshal(b, &out))
	assert.Equal(t, "15 minutes", out.Interval)
	assert.Equal(t, "json", c.Name())
}

func TestDialOptionsDefaults(t *testing.T) {
	var opts DialOptions
	assert.Equal(t, defaultDialTimeout, opts.timeout())
	assert.Len(t, opts.build(nil), 5)

	opts.Timeout = time.Second
	assert.Equal(t, time.Second, opts.timeout())
	assert.Len(t, opts.build([]grpc.DialOption{grpc.WithUserAgent("availctl")}), 6)
}
