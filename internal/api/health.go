package api

import (
	"context"
	"fmt"
	"net"
	"time"

	"lendit/internal/config"

	"github.com/rs/zerolog"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// HealthServer serves the standard gRPC health protocol so load
// balancers and orchestrators can probe the service.
type HealthServer struct {
	server   *grpc.Server
	health   *health.Server
	listener net.Listener
	logger   zerolog.Logger
}

func NewHealthServer(cfg config.APIGRPCConfig, logger *zerolog.Logger) (*HealthServer, error) {
	addr := fmt.Sprintf(":%d", cfg.Port)
	lis, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("grpc listen %s: %w", addr, err)
	}

	grpcServer := grpc.NewServer()
	healthServer := health.NewServer()
	healthpb.RegisterHealthServer(grpcServer, healthServer)

	return &HealthServer{
		server:   grpcServer,
		health:   healthServer,
		listener: lis,
		logger:   logger.With().Str("component", "grpc-health").Logger(),
	}, nil
}

func (s *HealthServer) Addr() string {
	return s.listener.Addr().String()
}

// SetServing flips the reported status for the whole service.
func (s *HealthServer) SetServing(serving bool) {
	status := healthpb.HealthCheckResponse_NOT_SERVING
	if serving {
		status = healthpb.HealthCheckResponse_SERVING
	}
	s.health.SetServingStatus("", status)
}

func (s *HealthServer) Serve() error {
	s.logger.Info().Str("addr", s.Addr()).Msg("gRPC health listening")
	return s.server.Serve(s.listener)
}

func (s *HealthServer) Shutdown(ctx context.Context) {
	s.health.Shutdown()

	done := make(chan struct{})
	go func() {
		s.server.GracefulStop()
		close(done)
	}()

	select {
	case <-done:
	case <-ctx.Done():
		s.logger.Warn().Msg("gRPC graceful shutdown timed out; forcing stop")
		s.server.Stop()
	case <-time.After(10 * time.Second):
		s.logger.Warn().Msg("gRPC graceful shutdown timed out; forcing stop")
		s.server.Stop()
	}
}
