// Package health provides system health monitoring and the HTTP surface of
// the serve mode.
package health

import (
	"context"
	"sync"
	"time"
)

// SystemStatus represents the health state of the system or a component.
type SystemStatus string

const (
	StatusHealthy  SystemStatus = "healthy"
	StatusDegraded SystemStatus = "degraded"
	StatusCritical SystemStatus = "critical"
)

// Check probes one dependency. A failing critical check makes the whole
// system critical; any other failure only degrades it.
type Check struct {
	Name     string
	Critical bool
	Probe    func(ctx context.Context) error
}

// ComponentHealth is the result of one Check.
type ComponentHealth struct {
	Name   string       `json:"name"`
	Status SystemStatus `json:"status"`
	Error  string       `json:"error,omitempty"`
}

// HealthReport contains the full system health report.
type HealthReport struct {
	SystemStatus SystemStatus               `json:"system_status"`
	Components   map[string]ComponentHealth `json:"components"`
}

// Monitor runs the registered checks, reusing the last report for interval.
type Monitor struct {
	checks     []Check
	interval   time.Duration
	lastCheck  time.Time
	lastReport HealthReport
	mu         sync.Mutex
}

// NewMonitor creates a monitor. A zero interval probes on every call.
func NewMonitor(interval time.Duration, checks ...Check) *Monitor {
	return &Monitor{
		checks:   checks,
		interval: interval,
	}
}

// CheckHealth probes every component and aggregates the result (worst wins).
func (m *Monitor) CheckHealth(ctx context.Context) HealthReport {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.interval > 0 && time.Since(m.lastCheck) < m.interval && m.lastReport.Components != nil {
		return m.lastReport
	}

	report := HealthReport{
		SystemStatus: StatusHealthy,
		Components:   make(map[string]ComponentHealth, len(m.checks)),
	}

	for _, c := range m.checks {
		ch := ComponentHealth{Name: c.Name, Status: StatusHealthy}
		if err := c.Probe(ctx); err != nil {
			ch.Error = err.Error()
			ch.Status = StatusDegraded
			if c.Critical {
				ch.Status = StatusCritical
			}
		}
		report.Components[c.Name] = ch

		switch {
		case ch.Status == StatusCritical:
			report.SystemStatus = StatusCritical
		case ch.Status == StatusDegraded && report.SystemStatus == StatusHealthy:
			report.SystemStatus = StatusDegraded
		}
	}

	m.lastCheck = time.Now()
	m.lastReport = report
	return report
}
