package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_RegistersCollectors(t *testing.T) {
	m := New()

	m.FeedFetches.WithLabelValues(OutcomeOK).Inc()
	m.AuthAttempts.WithLabelValues("login", OutcomeRejected).Add(2)

	assert.Equal(t, float64(1), testutil.ToFloat64(m.FeedFetches.WithLabelValues(OutcomeOK)))
	assert.Equal(t, float64(2), testutil.ToFloat64(m.AuthAttempts.WithLabelValues("login", OutcomeRejected)))
}

func TestSnapshot_SkipsZeroSamplesAndSorts(t *testing.T) {
	m := New()
	m.StoreWrites.WithLabelValues("@job_finder_applications", OutcomeOK).Inc()
	m.FeedJobs.Set(12)
	m.FeedFetches.WithLabelValues(OutcomeError)

	lines, err := m.Snapshot()
	require.NoError(t, err)

	assert.Equal(t, []string{
		"jobkeeper_feed_jobs 12",
		`jobkeeper_store_writes_total{key="@job_finder_applications",outcome="ok"} 1`,
	}, lines)
}

func TestSnapshot_Empty(t *testing.T) {
	lines, err := New().Snapshot()
	require.NoError(t, err)
	assert.Empty(t, lines)
}
