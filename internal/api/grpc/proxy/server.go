package proxy

import (
	"context"
	"errors"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"

	domain "github.com/oshokin/webkit-proxy/internal/domain/proxy"
	"github.com/oshokin/webkit-proxy/internal/installer"
	pb "github.com/oshokin/webkit-proxy/internal/pb/v1"
	"github.com/oshokin/webkit-proxy/internal/supervisor"
)

// Service abstracts the business operations the transport layer depends on.
type Service interface {
	Start(ctx context.Context) (*domain.State, error)
	Stop(ctx context.Context) (*domain.State, error)
	Status(ctx context.Context) *domain.State
}

// Server implements the ProxyService gRPC API.
type Server struct {
	pb.UnimplementedProxyServiceServer

	// service provides the business logic for proxy operations.
	service Service
}

// NewServer wires the provided service implementation into a gRPC handler.
func NewServer(service Service) *Server {
	return &Server{
		service: service,
	}
}

// Start launches the proxy.
func (s *Server) Start(ctx context.Context, _ *emptypb.Empty) (*structpb.Struct, error) {
	state, err := s.service.Start(ctx)
	if err != nil {
		return nil, toStatusError(err)
	}

	return pb.StateToStruct(state), nil
}

// Stop interrupts the proxy.
func (s *Server) Stop(ctx context.Context, _ *emptypb.Empty) (*structpb.Struct, error) {
	state, err := s.service.Stop(ctx)
	if err != nil {
		return nil, toStatusError(err)
	}

	return pb.StateToStruct(state), nil
}

// Status describes the supervised proxy.
func (s *Server) Status(ctx context.Context, _ *emptypb.Empty) (*structpb.Struct, error) {
	return pb.StateToStruct(s.service.Status(ctx)), nil
}

// toStatusError maps domain errors to gRPC status codes.
func toStatusError(err error) error {
	var exitedEarly *supervisor.ProcessExitedEarlyError

	switch {
	case errors.Is(err, installer.ErrNotInstalled):
		return status.Error(codes.FailedPrecondition, err.Error())
	case errors.As(err, &exitedEarly):
		return status.Error(codes.Aborted, err.Error())
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return status.FromContextError(err).Err()
	default:
		return status.Error(codes.Internal, err.Error())
	}
}
