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

func TestCounters(t *testing.T) {
	m := New()

	m.Booking("book", "ok")
	m.Booking("book", "ok")
	m.Booking("book", "already_booked")
	m.Resolution("flight_icao3")
	m.ImportRow("imported")
	m.Notification("booking.confirmed", "published")

	assert.Equal(t, 2.0, testutil.ToFloat64(m.bookings.WithLabelValues("book", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.bookings.WithLabelValues("book", "already_booked")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.resolutions.WithLabelValues("flight_icao3")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.importRows.WithLabelValues("imported")))
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.Booking("book", "ok")
		m.Resolution("fallback")
		m.ImportRow("skipped")
		m.Notification("x", "failed")
		m.ObserveRequest("GET", "/health", 200, time.Millisecond)
	})
}

func TestHandlerExposesMetrics(t *testing.T) {
	m := New()
	m.ObserveRequest("GET", "/api/timetable", 200, 10*time.Millisecond)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "slotbook_http_request_duration_seconds")
}
