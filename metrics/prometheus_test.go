package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrometheusProvider_CounterAddsAcrossCalls(t *testing.T) {
	reg := prometheus.NewRegistry()
	p := NewPrometheusProvider("activity", reg)

	c := p.Counter("tasks_total")
	c.Add(1)
	c.Add(2)

	families, err := reg.Gather()
	require.NoError(t, err)
	m := findMetric(t, families, "activity_tasks_total")
	assert.Equal(t, float64(3), m.GetCounter().GetValue())
}

func TestPrometheusProvider_CounterIsRegisteredOncePerName(t *testing.T) {
	reg := prometheus.NewRegistry()
	p := NewPrometheusProvider("activity", reg)

	a := p.Counter("retries_total")
	b := p.Counter("retries_total")
	a.Add(1)
	b.Add(1)

	families, err := reg.Gather()
	require.NoError(t, err)
	m := findMetric(t, families, "activity_retries_total")
	assert.Equal(t, float64(2), m.GetCounter().GetValue(), "same name must share one underlying instrument")
}

func TestPrometheusProvider_UpDownCounterTracksSignedDeltas(t *testing.T) {
	reg := prometheus.NewRegistry()
	p := NewPrometheusProvider("activity", reg)

	g := p.UpDownCounter("inflight")
	g.Add(3)
	g.Add(-1)

	families, err := reg.Gather()
	require.NoError(t, err)
	m := findMetric(t, families, "activity_inflight")
	assert.Equal(t, float64(2), m.GetGauge().GetValue())
}

func TestPrometheusProvider_HistogramRecordsObservations(t *testing.T) {
	reg := prometheus.NewRegistry()
	p := NewPrometheusProvider("activity", reg)

	h := p.Histogram("latency_seconds")
	h.Record(0.5)
	h.Record(1.5)

	families, err := reg.Gather()
	require.NoError(t, err)
	m := findMetric(t, families, "activity_latency_seconds")
	assert.Equal(t, uint64(2), m.GetHistogram().GetSampleCount())
	assert.Equal(t, 2.0, m.GetHistogram().GetSampleSum())
}

func findMetric(t *testing.T, families []*dto.MetricFamily, name string) *dto.Metric {
	t.Helper()
	for _, f := range families {
		if f.GetName() == name {
			require.Len(t, f.GetMetric(), 1)
			return f.GetMetric()[0]
		}
	}
	t.Fatalf("metric family %q not found", name)
	return nil
}
