package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	m := New()
	require.NotNil(t, m.Registry())

	// every vector is registered once; gathering must not error
	m.SearchesTotal.WithLabelValues("submitted").Inc()
	_, err := m.Registry().Gather()
	require.NoError(t, err)
}

func TestHelpersWithoutGlobal(t *testing.T) {
	SetGlobal(nil)

	// must be no-ops
	IncSearches("submitted")
	IncResultViews("ready")
	IncSubscriptions("saved")
	IncRateLimitExceeded("/search")
	ObserveBackendCall("api/result", "ok", time.Millisecond)
}

func TestHelpers(t *testing.T) {
	m := New()
	SetGlobal(m)
	defer SetGlobal(nil)

	IncSearches("submitted")
	IncSearches("submitted")
	IncSearches("invalid")
	IncResultViews("collecting")
	IncSubscriptions("failed")
	IncRateLimitExceeded("/search")
	ObserveBackendCall("api/result", "not_found", 20*time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.SearchesTotal.WithLabelValues("submitted")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.SearchesTotal.WithLabelValues("invalid")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ResultViewsTotal.WithLabelValues("collecting")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.SubscriptionsTotal.WithLabelValues("failed")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.RateLimitExceededTotal.WithLabelValues("/search")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.BackendCallsTotal.WithLabelValues("api/result", "not_found")))
	assert.Equal(t, 1, testutil.CollectAndCount(m.BackendCallDurationSeconds))
}

func TestIncUnknownCounter(t *testing.T) {
	m := New()
	assert.NotPanics(t, func() { m.inc("does_not_exist", "x") })
}
