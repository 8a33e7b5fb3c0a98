// Package health runs readiness checks against the backends a pipeline
// depends on and aggregates them into a report.
package health

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"
)

// Status represents the health status of a component
type Status string

const (
	StatusHealthy   Status = "healthy"
	StatusUnhealthy Status = "unhealthy"
	StatusDegraded  Status = "degraded"
	StatusUnknown   Status = "unknown"
)

// DefaultTimeout bounds a check that does not set its own timeout.
const DefaultTimeout = 5 * time.Second

// CheckFunc probes a component. A nil error means healthy; an error wrapped
// with Degraded marks the component degraded rather than unhealthy.
type CheckFunc func(ctx context.Context) error

// Check is a single named health check.
type Check struct {
	Name string
	// Critical checks make the whole report unhealthy when they fail.
	Critical bool
	Timeout  time.Duration
	Func     CheckFunc
}

// Result is the outcome of one check.
type Result struct {
	Name     string        `json:"name"`
	Status   Status        `json:"status"`
	Critical bool          `json:"critical"`
	Error    string        `json:"error,omitempty"`
	Duration time.Duration `json:"duration"`
}

// Summary counts results by status.
type Summary struct {
	Total     int `json:"total"`
	Healthy   int `json:"healthy"`
	Unhealthy int `json:"unhealthy"`
	Degraded  int `json:"degraded"`
}

// Report is the aggregated outcome of a Checker run.
type Report struct {
	Status    Status    `json:"status"`
	Results   []Result  `json:"results"`
	Summary   Summary   `json:"summary"`
	Timestamp time.Time `json:"timestamp"`
}

// Healthy reports whether the overall status is healthy.
func (r Report) Healthy() bool {
	return r.Status == StatusHealthy
}

type degradedError struct{ err error }

func (e degradedError) Error() string { return e.err.Error() }
func (e degradedError) Unwrap() error { return e.err }

// Degraded marks err as a degraded, non-fatal condition.
func Degraded(err error) error {
	if err == nil {
		return nil
	}
	return degradedError{err: err}
}

// Checker runs registered checks concurrently.
type Checker struct {
	mu     sync.RWMutex
	checks []Check
}

// NewChecker creates a checker with the given checks.
func NewChecker(checks ...Check) *Checker {
	c := &Checker{}
	for _, check := range checks {
		c.Register(check)
	}
	return c
}

// Register adds a check. Checks without a function are ignored.
func (c *Checker) Register(check Check) {
	if check.Func == nil {
		return
	}
	if check.Timeout <= 0 {
		check.Timeout = DefaultTimeout
	}
	c.mu.Lock()
	c.checks = append(c.checks, check)
	c.mu.Unlock()
}

// Run executes every check and returns the aggregated report. Results are
// ordered by check name.
func (c *Checker) Run(ctx context.Context) Report {
	c.mu.RLock()
	checks := append([]Check(nil), c.checks...)
	c.mu.RUnlock()

	results := make([]Result, len(checks))
	var wg sync.WaitGroup
	for i, check := range checks {
		wg.Add(1)
		go func(i int, check Check) {
			defer wg.Done()
			results[i] = execute(ctx, check)
		}(i, check)
	}
	wg.Wait()

	sort.Slice(results, func(i, j int) bool { return results[i].Name < results[j].Name })

	return Report{
		Status:    overallStatus(results),
		Results:   results,
		Summary:   summarize(results),
		Timestamp: time.Now().UTC(),
	}
}

func execute(ctx context.Context, check Check) (result Result) {
	ctx, cancel := context.WithTimeout(ctx, check.Timeout)
	defer cancel()

	start := time.Now()
	result = Result{Name: check.Name, Critical: check.Critical}
	defer func() {
		if r := recover(); r != nil {
			result.Status = StatusUnhealthy
			result.Error = fmt.Sprintf("check panicked: %v", r)
		}
		result.Duration = time.Since(start)
	}()

	err := check.Func(ctx)
	var degraded degradedError
	switch {
	case err == nil:
		result.Status = StatusHealthy
	case errors.As(err, &degraded):
		result.Status = StatusDegraded
		result.Error = err.Error()
	default:
		result.Status = StatusUnhealthy
		result.Error = err.Error()
	}
	return result
}

func summarize(results []Result) Summary {
	s := Summary{Total: len(results)}
	for _, r := range results {
		switch r.Status {
		case StatusHealthy:
			s.Healthy++
		case StatusUnhealthy:
			s.Unhealthy++
		case StatusDegraded:
			s.Degraded++
		}
	}
	return s
}

// overallStatus: a failed critical check is unhealthy, any other failure or
// degradation is degraded.
func overallStatus(results []Result) Status {
	if len(results) == 0 {
		return StatusUnknown
	}

	status := StatusHealthy
	for _, r := range results {
		switch r.Status {
		case StatusUnhealthy:
			if r.Critical {
				return StatusUnhealthy
			}
			status = StatusDegraded
		case StatusDegraded:
			status = StatusDegraded
		}
	}
	return status
}
