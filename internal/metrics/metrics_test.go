package metrics

import (
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCounters(t *testing.T) {
	m := New()

	m.FrameProcessed()
	m.FrameProcessed()
	m.DetectionSeen("car")
	m.DetectionSeen("car")
	m.DetectionSeen("person")
	m.RulePositive("Car and Person")
	m.AlertApproved("Car and Person")
	m.NotifyError()
	m.SetRegions(2)

	assert.Equal(t, float64(2), testutil.ToFloat64(m.framesProcessed))
	assert.Equal(t, float64(2), testutil.ToFloat64(m.detectionsSeen.WithLabelValues("car")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.detectionsSeen.WithLabelValues("person")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.rulePositives.WithLabelValues("Car and Person")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.alertsApproved.WithLabelValues("Car and Person")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.notifyErrors))
	assert.Equal(t, float64(2), testutil.ToFloat64(m.regionsGauge))
}

func TestHandlerServesRegistry(t *testing.T) {
	m := New()
	m.FrameProcessed()

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	require.Equal(t, 200, rec.Code)
	assert.Contains(t, rec.Body.String(), "vigil_frames_processed_total 1")
}
