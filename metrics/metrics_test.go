package metrics_test

import (
	"github.com/ejacobg/localclustering/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"testing"
)

func TestMustRegister(t *testing.T) {
	reg := prometheus.NewRegistry()
	require.NotPanics(t, func() { metrics.MustRegister(reg) })

	// A second registration of the same collectors is rejected.
	assert.Panics(t, func() { metrics.MustRegister(reg) })
}

func TestRunsTotal(t *testing.T) {
	c := metrics.RunsTotal.WithLabelValues("test", "fixed-point")
	before := testutil.ToFloat64(c)
	c.Inc()
	assert.Equal(t, before+1, testutil.ToFloat64(c))
}
