package server

import (
	"log/slog"

	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"

	"smallbiz-erp/backend/internal/server/interceptors"
	"smallbiz-erp/backend/internal/telemetry"
)

// HealthCheckMethod is not emitted as telemetry; probes call it constantly.
const HealthCheckMethod = "/grpc.health.v1.Health/Check"

// NewOpsServer returns the gRPC server of the ops port. It serves grpc.health.v1 from healthSrv
// and server reflection, traced with otelgrpc. emitter may be nil.
func NewOpsServer(healthSrv *health.Server, logger *slog.Logger, emitter telemetry.EventEmitter) *grpc.Server {
	s := grpc.NewServer(
		grpc.StatsHandler(otelgrpc.NewServerHandler()),
		grpc.ChainUnaryInterceptor(
			interceptors.LoggingUnary(logger),
			interceptors.TelemetryUnary(emitter, map[string]bool{HealthCheckMethod: true}),
		),
	)
	healthpb.RegisterHealthServer(s, healthSrv)
	reflection.Register(s)
	return s
}
