package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNilMetricsIsSafe(t *testing.T) {
	var m *Metrics
	m.SessionOpened()
	m.SessionClosed()
	m.Fed(10)
	m.Truncated()
	m.Processed("log", 3, true)
}

func TestMetricsRecord(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.SessionOpened()
	m.SessionOpened()
	m.SessionClosed()
	m.Fed(42)
	m.Fed(0)
	m.Truncated()
	m.Processed("file", 3, false)
	m.Processed("file", 2, true)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.SessionsActive))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.SessionsOpened))
	assert.Equal(t, 42.0, testutil.ToFloat64(m.BytesFed))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.LinesTruncated))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.PoolBlocks.WithLabelValues("file")))
	assert.Equal(t, 5.0, testutil.ToFloat64(m.PoolStatements.WithLabelValues("file")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.PoolFailures.WithLabelValues("file")))

	families, err := reg.Gather()
	require.NoError(t, err)
	assert.NotEmpty(t, families)
}
