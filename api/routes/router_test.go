package routes

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"

	"github.com/rahulmenon/billstack-backend/pkg/config"
	"github.com/rahulmenon/billstack-backend/pkg/logger"
)

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()
	cfg := &config.Config{}
	cfg.App.Env = "test"
	cfg.JWT = config.JWTConfig{Secret: "test-secret", Issuer: "billstack-test", ExpirationMinutes: 5}
	logg := logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
	return NewRouter(cfg, logg, nil, nil, prometheus.NewRegistry(), Services{})
}

func TestRouterHealthLive(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/health/live", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "test", rec.Header().Get("X-BillStack-Env"))
}

func TestRouterServesMetrics(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
}

func TestRouterGuardsAPIRoutes(t *testing.T) {
	router := newTestRouter(t)

	for _, path := range []string{
		"/api/v1/products",
		"/api/v1/invoices",
		"/api/v1/invoices/pending",
		"/api/v1/stock-log",
		"/api/v1/analytics/stock-flow",
		"/api/v1/customers",
		"/api/v1/profile",
		"/api/v1/sync/status",
	} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		require.Equalf(t, http.StatusUnauthorized, rec.Code, "path %s should require auth", path)
	}
}
