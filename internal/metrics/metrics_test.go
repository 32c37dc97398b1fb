package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollectors(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.RecordClassification("hive")
	m.RecordClassification("hive")
	m.RecordFallback("mixed_kinds")
	m.RecordUpdate()
	m.RecordPersist(nil)
	m.RecordPersist(errors.New("boom"))
	m.ObserveOpen(10 * time.Millisecond)
	m.RecordRequest("GET", "/health", "200", time.Millisecond, 0, 42)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.SchemeClassifications.WithLabelValues("hive")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.PartitionFallbacks.WithLabelValues("mixed_kinds")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.MetadataUpdates))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.MetadataPersist.WithLabelValues("success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.MetadataPersist.WithLabelValues("error")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.HTTPRequestsTotal.WithLabelValues("GET", "/health", "200")))

	n, err := testutil.GatherAndCount(reg, "dataset_open_duration_seconds")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestNilMetricsAreNoOps(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.RecordClassification("flat")
		m.RecordFallback("x")
		m.RecordUpdate()
		m.RecordPersist(nil)
		m.ObserveOpen(time.Second)
		m.RecordRequest("GET", "/", "200", time.Second, 1, 1)
	})
}
