package service

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetricsCacheHitRatio(t *testing.T) {
	m := NewMetricsService()
	assert.Zero(t, m.CacheHitRatio())

	m.RecordCacheOperation(true, time.Millisecond)
	m.RecordCacheOperation(true, time.Millisecond)
	m.RecordCacheOperation(false, time.Millisecond)
	assert.InDelta(t, 2.0/3.0, m.CacheHitRatio(), 0.0001)
	assert.InDelta(t, 2.0/3.0, testutil.ToFloat64(m.cacheHitRatio), 0.0001)
}

func TestMetricsRegistryCollectsDomainSeries(t *testing.T) {
	m := NewMetricsService()
	m.RecordTransition("appointment", "accept", TransitionApplied)
	m.RecordReportJob("inventory", "completed")
	m.ObserveDBQuery("ping", 2*time.Millisecond)

	families, err := m.Registry().Gather()
	require.NoError(t, err)
	names := make(map[string]bool, len(families))
	for _, f := range families {
		names[f.GetName()] = true
	}
	assert.True(t, names["lifecycle_transitions_total"])
	assert.True(t, names["report_jobs_total"])
	assert.True(t, names["db_query_duration_seconds"])
	assert.Equal(t, 1.0, testutil.ToFloat64(m.transitions.WithLabelValues("appointment", "accept", TransitionApplied)))
}

func TestMetricsNilSafe(t *testing.T) {
	var m *MetricsService
	m.RecordTransition("inquiry", "resolve", TransitionRejected)
	m.RecordCacheOperation(true, time.Millisecond)
	assert.Nil(t, m.Registry())
	assert.Zero(t, m.CacheHitRatio())
}

func TestMetricsTrackQueueDepth(t *testing.T) {
	m := NewMetricsService()
	depth := 3
	m.TrackQueueDepth("reports", func() int { return depth })
	m.TrackQueueDepth("reports", func() int { return 0 })

	families, err := m.Registry().Gather()
	require.NoError(t, err)
	var value float64
	for _, f := range families {
		if f.GetName() == "job_queue_depth" {
			require.Len(t, f.GetMetric(), 1)
			value = f.GetMetric()[0].GetGauge().GetValue()
		}
	}
	assert.Equal(t, 3.0, value)
}
