package server

import (
	"context"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// Registrar is a common interface for all gRPC service registrars
type Registrar interface {
	Register(s *grpc.Server)
}

// Pinger reports whether a backing dependency answers.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthRegistrar serves grpc.health.v1 and keeps the overall serving
// status in step with the given dependencies.
type HealthRegistrar struct {
	srv      *health.Server
	deps     map[string]Pinger
	interval time.Duration
}

// NewHealthRegistrar creates a registrar checking deps every interval.
func NewHealthRegistrar(interval time.Duration, deps map[string]Pinger) *HealthRegistrar {
	if interval <= 0 {
		interval = 10 * time.Second
	}
	return &HealthRegistrar{srv: health.NewServer(), deps: deps, interval: interval}
}

// Register attaches the health service to the gRPC server
func (h *HealthRegistrar) Register(s *grpc.Server) {
	healthpb.RegisterHealthServer(s, h.srv)
}

// Check pings every dependency once and publishes the result, per
// dependency and as the overall ("") status.
func (h *HealthRegistrar) Check(ctx context.Context) bool {
	ok := true
	for name, dep := range h.deps {
		status := healthpb.HealthCheckResponse_SERVING
		if err := dep.Ping(ctx); err != nil {
			status = healthpb.HealthCheckResponse_NOT_SERVING
			ok = false
		}
		h.srv.SetServingStatus(name, status)
	}
	if ok {
		h.srv.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	} else {
		h.srv.SetServingStatus("", healthpb.HealthCheckResponse_NOT_SERVING)
	}
	return ok
}

// Watch re-checks dependencies until ctx is done, then marks everything
// as not serving.
func (h *HealthRegistrar) Watch(ctx context.Context) {
	ticker := time.NewTicker(h.interval)
	defer ticker.Stop()

	h.Check(ctx)
	for {
		select {
		case <-ctx.Done():
			h.srv.Shutdown()
			return
		case <-ticker.C:
			h.Check(ctx)
		}
	}
}
