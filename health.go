package recordseal

import (
	"context"

	"github.com/hengadev/recordseal/internal/health"
	"github.com/sirupsen/logrus"
)

// Pinger is implemented by backends that can report whether they are
// reachable. Sources, stores and key stores that do not implement it are
// left out of health reports.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthReport aggregates the health of a pipeline's backends.
type HealthReport = health.Report

// HealthStatus is the status of a single backend or of a whole report.
type HealthStatus = health.Status

const (
	HealthHealthy   = health.StatusHealthy
	HealthUnhealthy = health.StatusUnhealthy
	HealthDegraded  = health.StatusDegraded
	HealthUnknown   = health.StatusUnknown
)

// Health pings the source, the record store and, when keys are persisted,
// the key store. The source and record store are critical; a failing key
// store only degrades the report since Process and Validate still work
// without it.
func (p *Pipeline) Health(ctx context.Context) HealthReport {
	checker := health.NewChecker()
	register := func(name string, component any, critical bool) {
		if pinger, ok := component.(Pinger); ok {
			checker.Register(health.Check{Name: name, Critical: critical, Func: pinger.Ping})
		}
	}

	register("source", p.source, true)
	register("store", p.store, true)
	if p.keys != nil && any(p.keys) != any(p.store) {
		register("key_store", p.keys, false)
	}

	report := checker.Run(ctx)
	p.logger.WithFields(logrus.Fields{
		"status":    report.Status,
		"healthy":   report.Summary.Healthy,
		"unhealthy": report.Summary.Unhealthy,
		"degraded":  report.Summary.Degraded,
	}).Debug("health check completed")
	return report
}
