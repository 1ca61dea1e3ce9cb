package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestService(t *testing.T) {
	reg := prometheus.NewRegistry()
	s := NewService(reg)

	s.IncResultsApplied()
	s.IncResultsApplied()
	s.IncGoalCorrections()
	s.IncReversals()
	s.IncResumes()
	s.IncPlayerWriteFailures(3)
	s.IncSlackNotifSent()
	s.IncSlackNotifFailed()
	s.ObserveApplyDuration(0.02)
	s.SetStartupTime(1.5)

	assert.Equal(t, 2.0, testutil.ToFloat64(s.ResultsApplied))
	assert.Equal(t, 1.0, testutil.ToFloat64(s.GoalCorrections))
	assert.Equal(t, 1.0, testutil.ToFloat64(s.Reversals))
	assert.Equal(t, 1.0, testutil.ToFloat64(s.Resumes))
	assert.Equal(t, 3.0, testutil.ToFloat64(s.PlayerWriteFailures))
	assert.Equal(t, 1.0, testutil.ToFloat64(s.SlackNotifSent))
	assert.Equal(t, 1.0, testutil.ToFloat64(s.SlackNotifFailed))
	assert.Equal(t, 1.5, testutil.ToFloat64(s.StartupTimeSeconds))
	assert.Equal(t, 1, testutil.CollectAndCount(s.ApplyDuration))
}

func TestMetricsHandler(t *testing.T) {
	reg := prometheus.NewRegistry()
	s := NewService(reg)
	s.IncReversals()

	rr := httptest.NewRecorder()
	NewMetricsHandler(reg).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "bondiola_reversals_total 1")
}

func TestMock(t *testing.T) {
	m := NewMock()
	m.IncResultsApplied()
	m.IncPlayerWriteFailures(2)
	m.IncPlayerWriteFailures(1)
	m.ObserveApplyDuration(0.5)

	assert.Equal(t, 1, m.ResultsApplied())
	assert.Equal(t, 3, m.PlayerWriteFailures())
	assert.Equal(t, []float64{0.5}, m.ApplyDurations())
	assert.Zero(t, m.Reversals())
}
