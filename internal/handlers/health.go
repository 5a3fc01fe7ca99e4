package handlers

import (
	"net/http"
	"time"

	domain "github.com/sellerdesk/api/internal/domain"
	"github.com/sellerdesk/api/internal/platform/httpx"
	"github.com/sellerdesk/api/internal/services"
)

// HealthHandlers serves the liveness and readiness probes.
type HealthHandlers struct {
	system services.SystemService
}

// NewHealthHandlers constructs the probe handlers over the system service.
func NewHealthHandlers(system services.SystemService) *HealthHandlers {
	return &HealthHandlers{system: system}
}

type healthCheckPayload struct {
	Status    string `json:"status"`
	Detail    string `json:"detail,omitempty"`
	Error     string `json:"error,omitempty"`
	LatencyMS int64  `json:"latency_ms"`
	CheckedAt string `json:"checked_at,omitempty"`
}

type healthResponse struct {
	Status      string                        `json:"status"`
	Version     string                        `json:"version,omitempty"`
	Environment string                        `json:"environment,omitempty"`
	Uptime      string                        `json:"uptime,omitempty"`
	GeneratedAt string                        `json:"generated_at,omitempty"`
	Checks      map[string]healthCheckPayload `json:"checks,omitempty"`
}

// Healthz reports process liveness without touching any dependency.
func (h *HealthHandlers) Healthz(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.system == nil {
		writeJSONResponse(w, http.StatusOK, healthResponse{Status: string(domain.HealthStatusOK)})
		return
	}
	report := h.system.Health(r.Context())
	writeJSONResponse(w, http.StatusOK, buildHealthResponse(report))
}

// Readyz collects the dependency probes and reports 503 unless everything is
// healthy.
func (h *HealthHandlers) Readyz(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h == nil || h.system == nil {
		httpx.WriteError(ctx, w, httpx.NewError("health_unavailable", "system service unavailable", http.StatusServiceUnavailable))
		return
	}
	report, err := h.system.Ready(ctx)
	if err != nil {
		httpx.WriteError(ctx, w, httpx.NewError("health_check_failed", "readiness collection failed", http.StatusServiceUnavailable))
		return
	}
	status := http.StatusOK
	if report.Status != domain.HealthStatusOK {
		status = http.StatusServiceUnavailable
	}
	writeJSONResponse(w, status, buildHealthResponse(report))
}

func buildHealthResponse(report domain.HealthReport) healthResponse {
	resp := healthResponse{
		Status:      string(report.Status),
		Version:     report.Version,
		Environment: report.Environment,
		GeneratedAt: formatTime(report.GeneratedAt),
	}
	if report.Uptime > 0 {
		resp.Uptime = report.Uptime.Round(time.Second).String()
	}
	if len(report.Checks) > 0 {
		resp.Checks = make(map[string]healthCheckPayload, len(report.Checks))
		for name, check := range report.Checks {
			resp.Checks[name] = healthCheckPayload{
				Status:    string(check.Status),
				Detail:    check.Detail,
				Error:     check.Error,
				LatencyMS: check.Latency.Milliseconds(),
				CheckedAt: formatTime(check.CheckedAt),
			}
		}
	}
	return resp
}
