package prometheus

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestPlacementMetrics(t *testing.T) {
	c := newTestCollector(t)
	m := NewPlacementMetrics(c)

	m.RecordOutcome("place", "succeeded", "", 2*time.Second)
	m.RecordOutcome("place", "failed", "FRG_002", time.Second)
	m.RecordUnmatched(2)
	m.RecordUnmatched(0)
	m.RecordRung("followup-chimera", "elements")
	m.RecordMinimization("converged")
	m.RecordCacheAccess("redis", true)
	m.RecordCacheAccess("redis", false)
	m.RecordCacheAccess("redis", false)
	release := m.TaskStarted("place")

	output := scrapeMetrics(t, c)
	assert.Contains(t, output, `test_unit_placements_total{operation="place",status="succeeded"} 1`)
	assert.Contains(t, output, `test_unit_placements_total{operation="place",status="failed"} 1`)
	assert.Contains(t, output, `test_unit_placement_duration_seconds_count{operation="place"} 2`)
	assert.Contains(t, output, `test_unit_errors_total{code="FRG_002"} 1`)
	assert.Contains(t, output, "test_unit_unmatched_hits_total 2")
	assert.Contains(t, output, `test_unit_ladder_rungs_total{rung="elements",step="followup-chimera"} 1`)
	assert.Contains(t, output, `test_unit_minimizations_total{result="converged"} 1`)
	assert.Contains(t, output, `test_unit_cache_hits_total{cache="redis"} 1`)
	assert.Contains(t, output, `test_unit_cache_misses_total{cache="redis"} 2`)
	assert.Contains(t, output, `test_unit_active_tasks{operation="place"} 1`)

	release()
	assert.Contains(t, scrapeMetrics(t, c), `test_unit_active_tasks{operation="place"} 0`)
}

func TestPlacementMetrics_Nil(t *testing.T) {
	var m *PlacementMetrics
	assert.NotPanics(t, func() {
		m.RecordOutcome("place", "failed", "X", time.Second)
		m.RecordUnmatched(1)
		m.RecordRung("a", "b")
		m.RecordMinimization("failed")
		m.RecordCacheAccess("redis", true)
		m.TaskStarted("place")()
	})
}

//Personal.AI order the ending
