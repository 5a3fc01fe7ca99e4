package services

import (
	"context"
	"errors"
	"strings"
	"time"

	domain "github.com/sellerdesk/api/internal/domain"
	"github.com/sellerdesk/api/internal/repositories"
)

// BuildInfo captures runtime metadata exposed via the health endpoints.
type BuildInfo struct {
	Version     string
	Environment string
	StartedAt   time.Time
}

// SystemServiceDeps bundles constructor inputs for the system service.
type SystemServiceDeps struct {
	Health repositories.HealthRepository
	Clock  func() time.Time
	Build  BuildInfo
}

type systemService struct {
	health repositories.HealthRepository
	clock  func() time.Time
	build  BuildInfo
}

var _ SystemService = (*systemService)(nil)

// NewSystemService constructs the system service with the supplied dependencies.
func NewSystemService(deps SystemServiceDeps) (SystemService, error) {
	if deps.Health == nil {
		return nil, errors.New("system service: health repository is required")
	}
	clock := deps.Clock
	if clock == nil {
		clock = time.Now
	}
	build := deps.Build
	if build.StartedAt.IsZero() {
		build.StartedAt = clock()
	}
	return &systemService{
		health: deps.Health,
		clock:  func() time.Time { return clock().UTC() },
		build:  build,
	}, nil
}

// Health is the liveness report. It never touches dependencies so a stalled
// backing store does not restart the process.
func (s *systemService) Health(ctx context.Context) HealthReport {
	return s.enrich(HealthReport{Status: domain.HealthStatusOK})
}

// Ready runs the dependency probes and reports the aggregated result.
func (s *systemService) Ready(ctx context.Context) (HealthReport, error) {
	if ctx == nil {
		return HealthReport{}, errors.New("system service: context is required")
	}
	report, err := s.health.Collect(ctx)
	if err != nil {
		return HealthReport{}, err
	}
	return s.enrich(report), nil
}

func (s *systemService) enrich(report HealthReport) HealthReport {
	now := s.clock()
	if report.GeneratedAt.IsZero() {
		report.GeneratedAt = now
	}
	if strings.TrimSpace(report.Version) == "" {
		report.Version = s.build.Version
	}
	if strings.TrimSpace(report.Environment) == "" {
		report.Environment = s.build.Environment
	}
	if report.Uptime <= 0 && !s.build.StartedAt.IsZero() {
		report.Uptime = now.Sub(s.build.StartedAt)
	}
	return report
}
