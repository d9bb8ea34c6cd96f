package metrics

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObserveMovement(t *testing.T) {
	m := New()
	m.ObserveMovement("loan-disbursement", "CREDIT", 120000)
	m.ObserveMovement("loan-disbursement", "CREDIT", 500)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.LedgerMovements.WithLabelValues("loan-disbursement", "CREDIT")))
	assert.Equal(t, 120500.0, testutil.ToFloat64(m.LedgerVolume.WithLabelValues("loan-disbursement")))
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	m.ObserveMovement("deposit", "CREDIT", 1)
	m.ObserveTransition("A", "B")
	m.ObserveScheduleFailure()
	m.ObserveLateMark()
}

func TestHandlerExposesCollectors(t *testing.T) {
	m := New()
	m.ObserveTransition("PENDING_ADMIN_REVIEW", "PENDING_GUARANTOR_APPROVAL")
	m.ObserveScheduleFailure()

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)

	out := string(body)
	assert.True(t, strings.Contains(out, "coopfin_loan_transitions_total"), out)
	assert.True(t, strings.Contains(out, "coopfin_schedule_generation_failures_total 1"), out)
}
