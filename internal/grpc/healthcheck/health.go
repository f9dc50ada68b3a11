// Package healthcheck registers the standard gRPC health service, fed by
// database and cache pings.
package healthcheck

import (
	"context"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	"google.golang.org/grpc/health/grpc_health_v1"

	"github.com/CyberWithAtharva/sec-comply-demo-sub001/internal/infrastructure/cache"
	"github.com/CyberWithAtharva/sec-comply-demo-sub001/internal/infrastructure/database"
)

const serviceName = "seccomply.v1.PostureScanService"

// Register registers the gRPC health check service and starts a
// background checker that flips serving status on dependency failures.
func Register(ctx context.Context, grpcServer *grpc.Server, db *database.PostgresDB, c *cache.RedisCache) {
	healthServer := health.NewServer()
	healthServer.SetServingStatus("", grpc_health_v1.HealthCheckResponse_SERVING)
	healthServer.SetServingStatus(serviceName, grpc_health_v1.HealthCheckResponse_SERVING)

	go func() {
		ticker := time.NewTicker(10 * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
			}

			status := grpc_health_v1.HealthCheckResponse_SERVING
			if db != nil {
				if err := db.Ping(ctx); err != nil {
					status = grpc_health_v1.HealthCheckResponse_NOT_SERVING
				}
			}
			if c != nil {
				if err := c.Ping(ctx); err != nil {
					status = grpc_health_v1.HealthCheckResponse_NOT_SERVING
				}
			}

			healthServer.SetServingStatus("", status)
			healthServer.SetServingStatus(serviceName, status)
		}
	}()

	grpc_health_v1.RegisterHealthServer(grpcServer, healthServer)
}
