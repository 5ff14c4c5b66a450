// Package telemetry provides metrics collection and reporting
// for monitoring the interpretation pipeline.
package telemetry

import (
	"fmt"
	"sync"
	"time"
)

// MetricsCollector provides a thread-safe interface for collecting
// application metrics for monitoring and troubleshooting.
type MetricsCollector struct {
	counters   map[string]int64
	gauges     map[string]float64
	timers     map[string][]time.Duration
	latestTime map[string]time.Time
	mu         sync.RWMutex
}

// PipelineMetrics defines constants for metrics related to the
// interpretation pipeline.
const (
	// Run outcomes
	MetricPipelineRuns    = "pipeline.runs"
	MetricPipelineSuccess = "pipeline.success"
	MetricPipelineSkipped = "pipeline.skipped"
	MetricPipelineFailure = "pipeline.failure"

	// Failure counts by kind
	MetricEventNotFound      = "pipeline.failures.event_not_found"
	MetricEmptyCompletion    = "pipeline.failures.empty_completion"
	MetricInvalidFormat      = "pipeline.failures.invalid_completion_format"
	MetricSchemaViolation    = "pipeline.failures.completion_schema_violation"
	MetricEmbeddingFailure   = "pipeline.failures.embedding"
	MetricPersistenceError   = "pipeline.failures.persistence"
	MetricUniquenessConflict = "pipeline.uniqueness_conflicts"

	// Phase timers
	MetricCompletionTime = "pipeline.completion_time"
	MetricEmbeddingTime  = "pipeline.embedding_time"
	MetricPersistTime    = "pipeline.persist_time"
	MetricTotalTime      = "pipeline.total_time"
)

// NewMetricsCollector creates a new MetricsCollector instance
func NewMetricsCollector() *MetricsCollector {
	return &MetricsCollector{
		counters:   make(map[string]int64),
		gauges:     make(map[string]float64),
		timers:     make(map[string][]time.Duration),
		latestTime: make(map[string]time.Time),
	}
}

// IncrementCounter increments a named counter by the specified amount
func (m *MetricsCollector) IncrementCounter(name string, amount int64) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.counters[name] += amount
}

// SetGauge sets a named gauge to the specified value
func (m *MetricsCollector) SetGauge(name string, value float64) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.gauges[name] = value
}

// RecordTimer records a duration for the specified timer
func (m *MetricsCollector) RecordTimer(name string, duration time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.timers[name] = append(m.timers[name], duration)

	// Limit the number of stored durations to avoid unbounded growth
	if len(m.timers[name]) > 100 {
		m.timers[name] = m.timers[name][1:]
	}
}

// RecordTimestamp records the current time for the specified event
func (m *MetricsCollector) RecordTimestamp(name string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.latestTime[name] = time.Now()
}

// GetCounter retrieves the current value of a counter
func (m *MetricsCollector) GetCounter(name string) int64 {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return m.counters[name]
}

// GetGauge retrieves the current value of a gauge
func (m *MetricsCollector) GetGauge(name string) float64 {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return m.gauges[name]
}

// GetTimerAverage returns the mean of the recorded durations for a timer,
// or zero when nothing has been recorded.
func (m *MetricsCollector) GetTimerAverage(name string) time.Duration {
	m.mu.RLock()
	defer m.mu.RUnlock()

	samples := m.timers[name]
	if len(samples) == 0 {
		return 0
	}

	var total time.Duration
	for _, d := range samples {
		total += d
	}
	return total / time.Duration(len(samples))
}

// GetTimestamp retrieves the most recent timestamp for an event
func (m *MetricsCollector) GetTimestamp(name string) (time.Time, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	ts, ok := m.latestTime[name]
	return ts, ok
}

// Snapshot returns a human-readable dump of all collected metrics,
// suitable for a diagnostics log line.
func (m *MetricsCollector) Snapshot() string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := ""
	for name, v := range m.counters {
		out += fmt.Sprintf("counter %s=%d\n", name, v)
	}
	for name, v := range m.gauges {
		out += fmt.Sprintf("gauge %s=%g\n", name, v)
	}
	for name, samples := range m.timers {
		var total time.Duration
		for _, d := range samples {
			total += d
		}
		if len(samples) > 0 {
			out += fmt.Sprintf("timer %s avg=%s n=%d\n", name, total/time.Duration(len(samples)), len(samples))
		}
	}
	return out
}

// Reset clears all collected metrics
func (m *MetricsCollector) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.counters = make(map[string]int64)
	m.gauges = make(map[string]float64)
	m.timers = make(map[string][]time.Duration)
	m.latestTime = make(map[string]time.Time)
}
