package health

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
)

const (
	StatusHealthy   = "healthy"
	StatusDegraded  = "degraded"
	StatusUnhealthy = "unhealthy"
	StatusDisabled  = "disabled"

	checkTimeout = 5 * time.Second
)

// Pinger is anything that can report its own reachability.
type Pinger interface {
	Ping(ctx context.Context) error
}

// PingFunc adapts a plain function to Pinger.
type PingFunc func(ctx context.Context) error

func (f PingFunc) Ping(ctx context.Context) error { return f(ctx) }

// Check describes one dependency. A nil Pinger means the dependency is not
// configured. Optional dependencies degrade the overall status when they
// fail instead of making it unhealthy.
type Check struct {
	Name     string
	Pinger   Pinger
	Optional bool
}

// HealthChecker manages health checks for all services
type HealthChecker struct {
	checks  []Check
	logger  *logrus.Logger
	started time.Time
}

func NewHealthChecker(logger *logrus.Logger, checks ...Check) *HealthChecker {
	return &HealthChecker{
		checks:  checks,
		logger:  logger,
		started: time.Now(),
	}
}

// ServiceHealth represents the health status of a service
type ServiceHealth struct {
	Name         string `json:"name"`
	Status       string `json:"status"`
	ResponseTime int    `json:"response_time_ms"`
	Error        string `json:"error,omitempty"`
	LastChecked  string `json:"last_checked"`
}

// OverallHealth represents the overall system health
type OverallHealth struct {
	Status   string          `json:"status"`
	Service  string          `json:"service"`
	Services []ServiceHealth `json:"services"`
	Uptime   string          `json:"uptime"`
}

func (h *HealthChecker) check(ctx context.Context, c Check) ServiceHealth {
	result := ServiceHealth{
		Name:        c.Name,
		Status:      StatusHealthy,
		LastChecked: time.Now().Format(time.RFC3339),
	}
	if c.Pinger == nil {
		result.Status = StatusDisabled
		return result
	}

	ctx, cancel := context.WithTimeout(ctx, checkTimeout)
	defer cancel()

	start := time.Now()
	err := c.Pinger.Ping(ctx)
	result.ResponseTime = int(time.Since(start).Milliseconds())

	if err != nil {
		result.Status = StatusUnhealthy
		if c.Optional {
			result.Status = StatusDegraded
		}
		result.Error = err.Error()
		h.logger.WithError(err).WithField("service", c.Name).Warn("Health check failed")
	}
	return result
}

// CheckAll performs health checks on all services
func (h *HealthChecker) CheckAll(ctx context.Context) OverallHealth {
	services := make([]ServiceHealth, 0, len(h.checks))
	for _, c := range h.checks {
		services = append(services, h.check(ctx, c))
	}

	overallStatus := StatusHealthy
	for _, service := range services {
		if service.Status == StatusUnhealthy {
			overallStatus = StatusUnhealthy
			break
		}
		if service.Status == StatusDegraded {
			overallStatus = StatusDegraded
		}
	}

	return OverallHealth{
		Status:   overallStatus,
		Service:  "campusqa",
		Services: services,
		Uptime:   time.Since(h.started).Round(time.Second).String(),
	}
}
