package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordReconcileCountsRunsAndRows(t *testing.T) {
	before := testutil.ToFloat64(ReconcileProcessed.WithLabelValues("metrics_test_job"))
	RecordReconcile("metrics_test_job", 3, nil)
	RecordReconcile("metrics_test_job", 0, errors.New("boom"))

	assert.Equal(t, before+3, testutil.ToFloat64(ReconcileProcessed.WithLabelValues("metrics_test_job")))
	assert.Equal(t, float64(1), testutil.ToFloat64(ReconcileRuns.WithLabelValues("metrics_test_job", "failure")))
}

func TestRecordPointsIgnoresNonPositive(t *testing.T) {
	RecordPoints("in", "metrics_test_reason", 0)
	RecordPoints("in", "metrics_test_reason", 2.5)
	assert.Equal(t, 2.5, testutil.ToFloat64(PointsChanged.WithLabelValues("in", "metrics_test_reason")))
}

func TestHandlerExposesWorkflowHistogram(t *testing.T) {
	ObserveWorkflow("metrics_test_flow", time.Now(), nil)

	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), "member_ledger_workflow_duration_seconds"))
}
