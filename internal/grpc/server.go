// Package grpc exposes the standard gRPC health service so Consul and the
// mesh can probe the assessment service.
package grpc

import (
	"context"
	"log"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
)

// Probe reports whether a dependency the service needs is reachable.
type Probe func() bool

type HealthServer struct {
	Server  *grpc.Server
	health  *health.Server
	service string
	probe   Probe
}

func NewHealthServer(serviceName string, probe Probe) *HealthServer {
	s := grpc.NewServer()
	hs := health.NewServer()
	healthpb.RegisterHealthServer(s, hs)
	reflection.Register(s)

	h := &HealthServer{
		Server:  s,
		health:  hs,
		service: serviceName,
		probe:   probe,
	}
	h.refresh()
	return h
}

func (h *HealthServer) refresh() {
	status := healthpb.HealthCheckResponse_SERVING
	if h.probe != nil && !h.probe() {
		status = healthpb.HealthCheckResponse_NOT_SERVING
	}
	h.health.SetServingStatus("", status)
	h.health.SetServingStatus(h.service, status)
}

// Watch re-evaluates the probe every interval until ctx ends.
func (h *HealthServer) Watch(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			h.refresh()
		}
	}
}

// Shutdown marks every service as not serving and stops the server.
func (h *HealthServer) Shutdown() {
	h.health.Shutdown()
	h.Server.GracefulStop()
	log.Println("gRPC server stopped")
}
