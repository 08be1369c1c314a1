package metrics_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/parley/parley/internal/infrastructure/metrics"
)

func TestNewHTTPMetrics_Registration(t *testing.T) {
	registry := prometheus.NewRegistry()

	m := metrics.NewHTTPMetrics(registry)

	require.NotNil(t, m.RequestsTotal)
	require.NotNil(t, m.RequestDuration)
	require.NotNil(t, m.RequestsInFlight)
	require.NotNil(t, m.WebSocketConnections)

	m.WebSocketConnections.Set(3)
	assert.InDelta(t, 3, testutil.ToFloat64(m.WebSocketConnections), 0)
}

func TestHTTPMetrics_Middleware_CountsRequests(t *testing.T) {
	registry := prometheus.NewRegistry()
	m := metrics.NewHTTPMetrics(registry)

	e := echo.New()
	e.Use(m.Middleware())
	e.GET("/channels/:id", func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})

	for range 2 {
		req := httptest.NewRequest(http.MethodGet, "/channels/abc", nil)
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)
	}

	got := testutil.ToFloat64(m.RequestsTotal.WithLabelValues("GET", "/channels/:id", "200"))
	assert.InDelta(t, 2, got, 0)
	assert.InDelta(t, 0, testutil.ToFloat64(m.RequestsInFlight), 0)
}

func TestHTTPMetrics_Middleware_ErrorStatus(t *testing.T) {
	registry := prometheus.NewRegistry()
	m := metrics.NewHTTPMetrics(registry)

	e := echo.New()
	e.Use(m.Middleware())
	e.GET("/boom", func(_ echo.Context) error {
		return echo.NewHTTPError(http.StatusNotFound, "missing")
	})

	req := httptest.NewRequest(http.MethodGet, "/boom", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	got := testutil.ToFloat64(m.RequestsTotal.WithLabelValues("GET", "/boom", "404"))
	assert.InDelta(t, 1, got, 0)
}
