package httpx

import (
	"context"
	"net/http"
	"time"
)

// HealthChecker is satisfied by any infrastructure dependency that exposes
// a Ping method (database.Database, cache.RedisClient, and the messaging
// connection manager all qualify).
type HealthChecker interface {
	Ping(ctx context.Context) error
}

// HealthChecks holds the set of dependencies to probe in the health
// endpoint. Nil fields are skipped: not every service carries Redis or a
// broker connection.
type HealthChecks struct {
	Database HealthChecker
	Redis    HealthChecker
	Broker   HealthChecker
}

type healthResponse struct {
	Status   string `json:"status"`
	Database string `json:"database,omitempty"`
	Redis    string `json:"redis,omitempty"`
	Broker   string `json:"broker,omitempty"`
}

// HealthHandler returns an http.HandlerFunc that probes all registered
// HealthCheckers and reports degraded status if any of them fail.
func HealthHandler(checks HealthChecks) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		resp := healthResponse{Status: "ok"}

		resp.Database = probe(ctx, checks.Database)
		resp.Redis = probe(ctx, checks.Redis)
		resp.Broker = probe(ctx, checks.Broker)

		status := http.StatusOK
		if resp.Database == "unreachable" || resp.Redis == "unreachable" || resp.Broker == "unreachable" {
			resp.Status = "degraded"
			status = http.StatusServiceUnavailable
		}
		JSON(w, status, resp)
	}
}

func probe(ctx context.Context, c HealthChecker) string {
	if c == nil {
		return ""
	}
	if err := c.Ping(ctx); err != nil {
		return "unreachable"
	}
	return "ok"
}
