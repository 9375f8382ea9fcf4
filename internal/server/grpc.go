package server

import (
	"ai-agent-character-demo/client/pkg/health"

	"google.golang.org/grpc"
	grpchealth "google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// NewGRPCServer returns a gRPC server carrying the standard health service.
// Its serving status follows checker.
func NewGRPCServer(checker *health.Checker, opts ...grpc.ServerOption) (*grpc.Server, *grpchealth.Server) {
	srv := grpc.NewServer(opts...)
	hs := grpchealth.NewServer()
	healthpb.RegisterHealthServer(srv, hs)

	hs.SetServingStatus("", servingStatus(checker.IsSystemHealthy()))
	checker.OnChange(func(healthy bool) {
		hs.SetServingStatus("", servingStatus(healthy))
	})
	return srv, hs
}

func servingStatus(healthy bool) healthpb.HealthCheckResponse_ServingStatus {
	if healthy {
		return healthpb.HealthCheckResponse_SERVING
	}
	return healthpb.HealthCheckResponse_NOT_SERVING
}
