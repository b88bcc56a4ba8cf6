package handler

import (
	"context"
	"log"
	"time"

	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// NewGRPCServer returns a grpc.health.v1 server that starts NOT_SERVING until Watch runs a check.
func NewGRPCServer() *health.Server {
	srv := health.NewServer()
	srv.SetServingStatus("", healthpb.HealthCheckResponse_NOT_SERVING)
	return srv
}

// Watch runs the checker every interval and mirrors the result into srv until ctx is done.
// On return srv is shut down, which reports NOT_SERVING to every watcher.
func (c *Checker) Watch(ctx context.Context, srv *health.Server, interval time.Duration) {
	defer srv.Shutdown()
	c.update(ctx, srv)
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			c.update(ctx, srv)
		}
	}
}

func (c *Checker) update(ctx context.Context, srv *health.Server) {
	status := healthpb.HealthCheckResponse_SERVING
	if err := c.Check(ctx); err != nil {
		if ctx.Err() != nil {
			return
		}
		log.Printf("health: not serving: %v", err)
		status = healthpb.HealthCheckResponse_NOT_SERVING
	}
	srv.SetServingStatus("", status)
}
