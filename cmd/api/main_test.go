package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	appconfig "github.com/homequote/homequote/internal/config"
	"github.com/homequote/homequote/internal/observability/metrics"
	"github.com/homequote/homequote/internal/session"
	"github.com/homequote/homequote/pkg/logging"
)

func TestLoadCatalogEmbedded(t *testing.T) {
	c, err := loadCatalog("")
	if err != nil {
		t.Fatalf("load embedded catalog: %v", err)
	}
	if c.Len() != 4 {
		t.Fatalf("services = %d", c.Len())
	}
}

func TestMetricsEndpointExposesCounters(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.NewEstimatorMetrics(reg)
	handler := promhttp.HandlerFor(reg, promhttp.HandlerOpts{})

	m.ObserveEstimate("painting", "none")

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "homequote_estimator_estimates_total") {
		t.Fatalf("expected estimates counter to be exported")
	}
}

func TestConnectPostgresPoolEmptyURLReturnsNil(t *testing.T) {
	logger := logging.New("error")
	if pool := connectPostgresPool(context.Background(), "", logger); pool != nil {
		t.Fatalf("expected nil pool for empty URL")
	}
}

func TestBuildSessionStoreMemoryFallback(t *testing.T) {
	logger := logging.New("error")
	store := buildSessionStore(&appconfig.Config{}, logger)
	if _, ok := store.(*session.InMemoryStore); !ok {
		t.Fatalf("expected in-memory store, got %T", store)
	}
}
