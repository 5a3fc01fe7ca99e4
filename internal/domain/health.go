package domain

import "time"

// Health statuses reported by dependency probes.
const (
	HealthStatusOK       = "ok"
	HealthStatusDegraded = "degraded"
	HealthStatusError    = "error"
)

// HealthCheck is the outcome of a single dependency probe.
type HealthCheck struct {
	Status    string
	Detail    string
	Error     string
	Latency   time.Duration
	CheckedAt time.Time
}

// HealthReport aggregates probe outcomes with build metadata for the
// health and readiness endpoints.
type HealthReport struct {
	Status      string
	Checks      map[string]HealthCheck
	GeneratedAt time.Time
	Uptime      time.Duration
	Version     string
	Environment string
}
