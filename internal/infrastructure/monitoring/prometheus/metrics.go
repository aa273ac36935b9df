package prometheus

import (
	"time"
)

// PlacementMetrics holds every metric the laboratory records.  A nil
// *PlacementMetrics records nothing.
type PlacementMetrics struct {
	PlacementsTotal    CounterVec
	PlacementDuration  HistogramVec
	UnmatchedHitsTotal CounterVec
	LadderRungsTotal   CounterVec
	MinimizationsTotal CounterVec
	CacheHitsTotal     CounterVec
	CacheMissesTotal   CounterVec
	ActiveTasks        GaugeVec
	ErrorsTotal        CounterVec
}

// DefaultPlacementDurationBuckets spans quick merges to slow minimizations.
var DefaultPlacementDurationBuckets = []float64{.01, .05, .1, .25, .5, 1, 2.5, 5, 10, 30, 60, 120}

// NewPlacementMetrics registers all metrics on collector.
func NewPlacementMetrics(collector MetricsCollector) *PlacementMetrics {
	m := &PlacementMetrics{}
	m.PlacementsTotal = collector.RegisterCounter("placements_total", "Placement tasks by operation and outcome", "operation", "status")
	m.PlacementDuration = collector.RegisterHistogram("placement_duration_seconds", "Placement task duration", DefaultPlacementDurationBuckets, "operation")
	m.UnmatchedHitsTotal = collector.RegisterCounter("unmatched_hits_total", "Hits excluded from a scaffold")
	m.LadderRungsTotal = collector.RegisterCounter("ladder_rungs_total", "Matching ladder rung used per mapping", "step", "rung")
	m.MinimizationsTotal = collector.RegisterCounter("minimizations_total", "Post-placement minimizations by result", "result")
	m.CacheHitsTotal = collector.RegisterCounter("cache_hits_total", "Result cache hits", "cache")
	m.CacheMissesTotal = collector.RegisterCounter("cache_misses_total", "Result cache misses", "cache")
	m.ActiveTasks = collector.RegisterGauge("active_tasks", "Placement tasks currently running", "operation")
	m.ErrorsTotal = collector.RegisterCounter("errors_total", "Failed tasks by error code", "code")
	return m
}

// Helpers

func (m *PlacementMetrics) RecordOutcome(operation, status, code string, duration time.Duration) {
	if m == nil {
		return
	}
	m.PlacementsTotal.WithLabelValues(operation, status).Inc()
	m.PlacementDuration.WithLabelValues(operation).Observe(duration.Seconds())
	if code != "" {
		m.ErrorsTotal.WithLabelValues(code).Inc()
	}
}

func (m *PlacementMetrics) RecordUnmatched(n int) {
	if m == nil || n == 0 {
		return
	}
	m.UnmatchedHitsTotal.WithLabelValues().Add(float64(n))
}

func (m *PlacementMetrics) RecordRung(step, rung string) {
	if m == nil {
		return
	}
	m.LadderRungsTotal.WithLabelValues(step, rung).Inc()
}

func (m *PlacementMetrics) RecordMinimization(result string) {
	if m == nil {
		return
	}
	m.MinimizationsTotal.WithLabelValues(result).Inc()
}

func (m *PlacementMetrics) RecordCacheAccess(cache string, hit bool) {
	if m == nil {
		return
	}
	if hit {
		m.CacheHitsTotal.WithLabelValues(cache).Inc()
	} else {
		m.CacheMissesTotal.WithLabelValues(cache).Inc()
	}
}

// TaskStarted marks a task as running and returns the matching release.
func (m *PlacementMetrics) TaskStarted(operation string) func() {
	if m == nil {
		return func() {}
	}
	g := m.ActiveTasks.WithLabelValues(operation)
	g.Inc()
	return g.Dec
}

//Personal.AI order the ending
