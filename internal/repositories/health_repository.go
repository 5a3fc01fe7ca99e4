package repositories

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	domain "github.com/sellerdesk/api/internal/domain"
)

const defaultProbeTimeout = 1500 * time.Millisecond

// Probe is a single dependency check run during readiness collection.
type Probe struct {
	Name    string
	Timeout time.Duration
	Run     func(context.Context) error
}

// HealthOption customises the probe-backed health repository.
type HealthOption func(*probeHealthRepository)

// WithProbeTimeout overrides the default timeout for probes that omit their own.
func WithProbeTimeout(timeout time.Duration) HealthOption {
	return func(repo *probeHealthRepository) {
		if timeout > 0 {
			repo.defaultTimeout = timeout
		}
	}
}

// WithHealthClock injects a custom clock for tests.
func WithHealthClock(clock func() time.Time) HealthOption {
	return func(repo *probeHealthRepository) {
		if clock != nil {
			repo.now = clock
		}
	}
}

type probeHealthRepository struct {
	probes         []Probe
	defaultTimeout time.Duration
	now            func() time.Time
}

var _ HealthRepository = (*probeHealthRepository)(nil)

// NewHealthRepository constructs a HealthRepository that runs the given probes
// concurrently on every Collect call.
func NewHealthRepository(probes []Probe, opts ...HealthOption) (HealthRepository, error) {
	if len(probes) == 0 {
		return nil, errors.New("health repository: at least one probe is required")
	}
	for _, probe := range probes {
		if strings.TrimSpace(probe.Name) == "" {
			return nil, errors.New("health repository: probe name is required")
		}
		if probe.Run == nil {
			return nil, fmt.Errorf("health repository: probe %s has no run function", probe.Name)
		}
	}

	repo := &probeHealthRepository{
		probes:         make([]Probe, len(probes)),
		defaultTimeout: defaultProbeTimeout,
		now:            time.Now,
	}
	copy(repo.probes, probes)
	for _, opt := range opts {
		if opt != nil {
			opt(repo)
		}
	}
	return repo, nil
}

func (r *probeHealthRepository) Collect(ctx context.Context) (domain.HealthReport, error) {
	if ctx == nil {
		return domain.HealthReport{}, errors.New("health repository: context is required")
	}

	var (
		mu     sync.Mutex
		wg     sync.WaitGroup
		checks = make(map[string]domain.HealthCheck, len(r.probes))
	)

	wg.Add(len(r.probes))
	for _, probe := range r.probes {
		probe := probe
		go func() {
			defer wg.Done()

			timeout := probe.Timeout
			if timeout <= 0 {
				timeout = r.defaultTimeout
			}
			probeCtx, cancel := context.WithTimeout(ctx, timeout)
			defer cancel()

			start := r.now()
			err := probe.Run(probeCtx)
			end := r.now()

			check := domain.HealthCheck{
				Status:    domain.HealthStatusOK,
				Detail:    "ok",
				Latency:   end.Sub(start),
				CheckedAt: end,
			}
			switch {
			case err == nil:
			case errors.Is(err, context.DeadlineExceeded):
				check.Status = domain.HealthStatusError
				check.Detail = "timeout"
				check.Error = err.Error()
			case errors.Is(err, context.Canceled):
				check.Status = domain.HealthStatusError
				check.Detail = "cancelled"
				check.Error = err.Error()
			default:
				check.Status = domain.HealthStatusDegraded
				check.Detail = err.Error()
				check.Error = err.Error()
			}

			mu.Lock()
			checks[probe.Name] = check
			mu.Unlock()
		}()
	}
	wg.Wait()

	status := domain.HealthStatusOK
	for _, check := range checks {
		if check.Status == domain.HealthStatusError {
			status = domain.HealthStatusError
			break
		}
		if check.Status == domain.HealthStatusDegraded {
			status = domain.HealthStatusDegraded
		}
	}

	return domain.HealthReport{
		Status:      status,
		Checks:      checks,
		GeneratedAt: r.now(),
	}, nil
}
