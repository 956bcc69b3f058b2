package grpcserver

import (
	"context"
	"errors"

	"github.com/md-rashed-zaman/availability/services/availability-service/internal/calc"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

type Calculator interface {
	Periods(ctx context.Context, req calc.Request) (calc.PeriodsResponse, error)
	Sessions(ctx context.Context, req calc.Request) (calc.SessionsResponse, error)
}

type server struct {
	calc Calculator
}

func Register(grpcServer *grpc.Server, c Calculator) {
	grpcServer.RegisterService(&serviceDesc, &server{calc: c})
}

func (s *server) GetPeriods(ctx context.Context, req *calc.Request) (*calc.PeriodsResponse, error) {
	resp, err := s.calc.Periods(ctx, *req)
	if err != nil {
		return nil, toStatus(err)
	}
	return &resp, nil
}

func (s *server) GetSessions(ctx context.Context, req *calc.Request) (*calc.SessionsResponse, error) {
	if req.Interval == "" {
		return nil, status.Error(codes.InvalidArgument, "interval is required")
	}
	resp, err := s.calc.Sessions(ctx, *req)
	if err != nil {
		return nil, toStatus(err)
	}
	return &resp, nil
}

func toStatus(err error) error {
	if errors.Is(err, calc.ErrInvalidRequest) {
		return status.Error(codes.InvalidArgument, err.Error())
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return status.FromContextError(err).Err()
	}
	return status.Error(codes.Internal, "availability computation failed")
}
