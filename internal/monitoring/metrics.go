package monitoring

import (
	"sort"
	"strings"
	"sync"
	"time"
)

// Metric names reported by the pipeline.
const (
	MetricProcessTotal     = "recordseal.process.total"
	MetricValidateTotal    = "recordseal.validate.total"
	MetricErrorsTotal      = "recordseal.errors.total"
	MetricProcessDuration  = "recordseal.process.duration"
	MetricValidateDuration = "recordseal.validate.duration"
)

// MetricsCollector receives counters and timings from pipeline operations.
type MetricsCollector interface {
	IncrementCounter(name string, tags map[string]string)
	RecordTiming(name string, duration time.Duration, tags map[string]string)
	Flush() error
}

// NoOpMetricsCollector discards everything.
type NoOpMetricsCollector struct{}

func (n *NoOpMetricsCollector) IncrementCounter(name string, tags map[string]string) {}
func (n *NoOpMetricsCollector) RecordTiming(name string, duration time.Duration, tags map[string]string) {
}
func (n *NoOpMetricsCollector) Flush() error { return nil }

// InMemoryMetricsCollector keeps metrics in memory, mostly for tests and the CLI
// summary output.
type InMemoryMetricsCollector struct {
	mu       sync.RWMutex
	counters map[string]int64
	timings  map[string][]time.Duration
}

// NewInMemoryMetricsCollector creates an empty collector.
func NewInMemoryMetricsCollector() *InMemoryMetricsCollector {
	return &InMemoryMetricsCollector{
		counters: make(map[string]int64),
		timings:  make(map[string][]time.Duration),
	}
}

func (m *InMemoryMetricsCollector) IncrementCounter(name string, tags map[string]string) {
	key := keyWithTags(name, tags)
	m.mu.Lock()
	m.counters[key]++
	m.mu.Unlock()
}

func (m *InMemoryMetricsCollector) RecordTiming(name string, duration time.Duration, tags map[string]string) {
	key := keyWithTags(name, tags)
	m.mu.Lock()
	m.timings[key] = append(m.timings[key], duration)
	m.mu.Unlock()
}

func (m *InMemoryMetricsCollector) Flush() error {
	return nil
}

// GetCounter returns the value of a counter.
func (m *InMemoryMetricsCollector) GetCounter(name string, tags map[string]string) int64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.counters[keyWithTags(name, tags)]
}

// GetTimings returns a copy of the recorded timings.
func (m *InMemoryMetricsCollector) GetTimings(name string, tags map[string]string) []time.Duration {
	m.mu.RLock()
	defer m.mu.RUnlock()
	src := m.timings[keyWithTags(name, tags)]
	out := make([]time.Duration, len(src))
	copy(out, src)
	return out
}

// keyWithTags sorts tags so the same tag set always yields the same key.
func keyWithTags(name string, tags map[string]string) string {
	if len(tags) == 0 {
		return name
	}

	keys := make([]string, 0, len(tags))
	for k := range tags {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	b.WriteString(name)
	for _, k := range keys {
		b.WriteString(",")
		b.WriteString(k)
		b.WriteString("=")
		b.WriteString(tags[k])
	}
	return b.String()
}
