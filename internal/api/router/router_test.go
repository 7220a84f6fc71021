package router

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/homequote/homequote/internal/catalog"
	"github.com/homequote/homequote/internal/chat"
	"github.com/homequote/homequote/internal/leads"
	"github.com/homequote/homequote/internal/observability/metrics"
	"github.com/homequote/homequote/internal/session"
	"github.com/homequote/homequote/pkg/logging"
)

func newRouter(t *testing.T) http.Handler {
	t.Helper()
	c, err := catalog.Default()
	require.NoError(t, err)

	logger := logging.New("error")
	repo := leads.NewInMemoryRepository()
	reg := prometheus.NewRegistry()
	estimator := metrics.NewEstimatorMetrics(reg)
	svc := chat.NewService(c, session.NewInMemoryStore(), repo, estimator, logger, chat.Config{})

	return New(&Config{
		Logger:             logger,
		ChatHandler:        chat.NewChatHandler(svc, logger),
		LeadsHandler:       leads.NewHandler(repo, logger),
		MetricsSummary:     metrics.SummaryHandler(reg),
		AdminAuthSecret:    "secret",
		CORSAllowedOrigins: []string{"*"},
	})
}

func adminToken(t *testing.T) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   "admin",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	})
	signed, err := token.SignedString([]byte("secret"))
	require.NoError(t, err)
	return signed
}

func TestHealth(t *testing.T) {
	r := newRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"ok"`)
}

func TestChatRoutes(t *testing.T) {
	r := newRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/chat/start", strings.NewReader(`{}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"menu"`)
}

func TestAdminRequiresToken(t *testing.T) {
	r := newRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/admin/leads", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	req = httptest.NewRequest(http.MethodGet, "/admin/leads", nil)
	req.Header.Set("Authorization", "Bearer "+adminToken(t))
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"leads"`)
}

func TestAdminMetricsSummary(t *testing.T) {
	r := newRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/admin/metrics-summary", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	req = httptest.NewRequest(http.MethodGet, "/admin/metrics-summary", nil)
	req.Header.Set("Authorization", "Bearer "+adminToken(t))
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"estimates_given"`)
	assert.Contains(t, w.Body.String(), `"leads_saved"`)
	assert.Contains(t, w.Body.String(), `"errors_encountered"`)
}

func TestCORSHeaders(t *testing.T) {
	r := newRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/chat/start", strings.NewReader(`{}`))
	req.Header.Set("Origin", "https://widget.example")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, "https://widget.example", w.Header().Get("Access-Control-Allow-Origin"))
}
