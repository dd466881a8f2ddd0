package metrics

import (
	"io"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/erazemk/labstock/internal/status"
)

func scrape(t *testing.T, m *Metrics) string {
	t.Helper()
	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	return string(body)
}

func TestObserveChecks(t *testing.T) {
	m := New()
	m.ObserveChecks("Team A", map[status.Status]int{status.Low: 2, status.OK: 1})

	body := scrape(t, m)
	assert.Contains(t, body, `labstock_checks_submitted_total{group="Team A",status="low"} 2`)
	assert.Contains(t, body, `labstock_checks_submitted_total{group="Team A",status="ok"} 1`)
}

func TestHandlerExposesRuntimeMetrics(t *testing.T) {
	m := New()
	m.OrderTransitions.WithLabelValues("ordered").Inc()

	body := scrape(t, m)
	assert.Contains(t, body, `labstock_order_transitions_total{status="ordered"} 1`)
	assert.Contains(t, body, "go_goroutines")
}

func TestNewIsIsolated(t *testing.T) {
	a, b := New(), New()
	a.DutyAlertEmails.WithLabelValues("sent").Inc()

	assert.Contains(t, scrape(t, a), `labstock_duty_alert_emails_total{result="sent"} 1`)
	assert.NotContains(t, scrape(t, b), "labstock_duty_alert_emails_total")
}
