package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"kiira-hq/triton/internal/upstreamtest"
	"kiira-hq/triton/pkg/config"
)

func newTestServer(t *testing.T, mutate func(*config.Config)) *Server {
	t.Helper()

	upstream := upstreamtest.New()
	t.Cleanup(upstream.Close)

	cfg := config.DefaultConfig()
	cfg.Upstream.BaseURL = upstream.URL()
	cfg.Upstream.AccountAPIBaseURL = upstream.URL()
	cfg.Upstream.UploaderBaseURL = upstream.URL()
	if mutate != nil {
		mutate(cfg)
	}

	srv, err := New(cfg, "test", nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() { srv.store.Close() })
	return srv
}

func TestRoutes_Health(t *testing.T) {
	srv := newTestServer(t, nil)
	handler := srv.setupRoutes()

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("body not JSON: %v", err)
	}
	if body["status"] != "ok" {
		t.Errorf("status field = %v", body["status"])
	}
	if rec.Header().Get("X-Request-ID") == "" {
		t.Error("missing request ID header")
	}
}

func TestRoutes_Metrics(t *testing.T) {
	srv := newTestServer(t, nil)
	handler := srv.setupRoutes()

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "triton_active_sessions") {
		t.Error("metrics output missing session gauge")
	}
}

func TestRoutes_MetricsDisabled(t *testing.T) {
	srv := newTestServer(t, func(cfg *config.Config) {
		cfg.Telemetry.Metrics.Enabled = false
	})
	handler := srv.setupRoutes()

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}

func TestRoutes_AuthProtectsAPIButNotHealth(t *testing.T) {
	srv := newTestServer(t, func(cfg *config.Config) {
		cfg.Adapter.APIKey = "secret"
	})
	handler := srv.setupRoutes()

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/models", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("unauthenticated /v1/models status = %d, want 401", rec.Code)
	}

	rec = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/v1/models", nil)
	req.Header.Set("Authorization", "Bearer secret")
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("authenticated /v1/models status = %d, want 200", rec.Code)
	}

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("/health status = %d, health must not require auth", rec.Code)
	}
}

func TestRoutes_VersionedAndBarePaths(t *testing.T) {
	srv := newTestServer(t, nil)
	handler := srv.setupRoutes()

	for _, path := range []string{"/v1/models", "/models"} {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		if rec.Code != http.StatusOK {
			t.Errorf("%s status = %d, want 200", path, rec.Code)
		}
	}
}

func TestNewStore_SQLite(t *testing.T) {
	dir := t.TempDir()
	store, err := newStore(config.ConversationConfig{
		Backend:    config.BackendSQLite,
		TTL:        config.DefaultConversationTTL,
		SQLitePath: dir + "/sessions.db",
	})
	if err != nil {
		t.Fatalf("newStore: %v", err)
	}
	defer store.Close()

	stats, err := store.Stats()
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if stats.Backend != "sqlite" {
		t.Errorf("backend = %q, want sqlite", stats.Backend)
	}
}
