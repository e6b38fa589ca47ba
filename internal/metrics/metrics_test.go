package metrics

import (
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCountersAndHandler(t *testing.T) {
	before := testutil.ToFloat64(FlowFailures.WithLabelValues("metricsTestFlow", "EMPTY_RESULT"))

	IncFlowRequest("metricsTestFlow")
	IncFlowFailure("metricsTestFlow", "EMPTY_RESULT")
	ObserveFlowDuration("metricsTestFlow", 300*time.Millisecond)
	IncActionSubstitute("metricsTestAction")

	assert.Equal(t, before+1, testutil.ToFloat64(FlowFailures.WithLabelValues("metricsTestFlow", "EMPTY_RESULT")))

	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)

	assert.Contains(t, string(body), `policygen_flow_requests_total{flow="metricsTestFlow"}`)
	assert.Contains(t, string(body), `policygen_action_substitutes_total{action="metricsTestAction"} 1`)
	assert.Contains(t, string(body), "policygen_flow_duration_seconds_bucket")
}
