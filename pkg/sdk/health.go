package tagdex

import (
	"context"
	"log/slog"
	"time"

	healthuc "github.com/kailas-cloud/tagdex/internal/usecase/health"
)

// HealthStatus is the record store health as seen by the client.
type HealthStatus struct {
	Status string            // "ok" or "degraded"
	Checks map[string]string // component -> "ok" or "error"
}

// Healthy reports whether every check passed.
func (h HealthStatus) Healthy() bool {
	return h.Status == string(healthuc.Healthy)
}

// Health probes the record store. Unlike Ping it never returns an error;
// failures show up as a degraded status.
func (c *Client) Health(ctx context.Context) (h HealthStatus) {
	start := time.Now()
	defer func() {
		c.obs.observe(ctx, "health", start, nil, slog.String("status", h.Status))
	}()

	report := c.healthSvc.Check(ctx)
	h = HealthStatus{
		Status: string(report.Status),
		Checks: make(map[string]string, len(report.Checks)),
	}
	for name, res := range report.Checks {
		h.Checks[name] = string(res)
	}
	return h
}

// healthUseCase is the internal interface for health checks.
type healthUseCase interface {
	Check(ctx context.Context) healthuc.Report
}
