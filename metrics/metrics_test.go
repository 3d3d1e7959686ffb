// Copyright (c) 2025 The Stellis developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNoopByDefault(t *testing.T) {
	assert.IsType(t, &noopMetrics{}, metrics)

	// meters of the noop service must be callable
	Counter("noop_count").Add(1)
	Gauge("noop_gauge").Set(2)
	GaugeVec("noop_gauge_vec", []string{"a"}).SetWithLabel(3, map[string]string{"a": "b"})
	Histogram("noop_hist", Bucket10s).Observe(4)
	assert.Nil(t, HTTPHandler())
}

func TestLazyLoading(t *testing.T) {
	calls := 0
	lazy := LazyLoad(func() int {
		calls++
		return 42
	})
	assert.Equal(t, 0, calls)
	assert.Equal(t, 42, lazy())
	assert.Equal(t, 42, lazy())
	assert.Equal(t, 1, calls)
}

func TestPrometheusMeters(t *testing.T) {
	InitializePrometheusMetrics()
	assert.IsType(t, &prometheusMetrics{}, metrics)
	assert.NotNil(t, HTTPHandler())

	c1 := Counter("test_count")
	c2 := Counter("test_count")
	assert.Same(t, c1, c2)
	c1.Add(10)

	GaugeVec("test_gauge_vec", []string{"event"}).SetWithLabel(7, map[string]string{"event": "hit"})
	Histogram("test_hist", Bucket10s).Observe(123)

	families, err := prometheus.DefaultGatherer.Gather()
	require.NoError(t, err)

	byName := make(map[string]*dto.MetricFamily)
	for _, f := range families {
		byName[f.GetName()] = f
	}

	count := byName[namespace+"_test_count"]
	require.NotNil(t, count)
	assert.Equal(t, dto.MetricType_COUNTER, count.GetType())
	assert.Equal(t, float64(10), count.GetMetric()[0].GetCounter().GetValue())

	gaugeVec := byName[namespace+"_test_gauge_vec"]
	require.NotNil(t, gaugeVec)
	m := gaugeVec.GetMetric()[0]
	assert.Equal(t, "event", m.GetLabel()[0].GetName())
	assert.Equal(t, "hit", m.GetLabel()[0].GetValue())
	assert.Equal(t, float64(7), m.GetGauge().GetValue())

	hist := byName[namespace+"_test_hist"]
	require.NotNil(t, hist)
	assert.Equal(t, uint64(1), hist.GetMetric()[0].GetHistogram().GetSampleCount())
}
