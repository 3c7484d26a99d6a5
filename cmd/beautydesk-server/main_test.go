package main

import (
	"context"
	"io/fs"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/beautydesk/beautydesk/internal/config"
	"github.com/beautydesk/beautydesk/internal/platform/auth"
	"github.com/beautydesk/beautydesk/internal/platform/middleware"
	"github.com/beautydesk/beautydesk/migrations"
)

func testConfig() *config.Config {
	return &config.Config{
		Env:            "development",
		SessionSecret:  "0123456789abcdef0123456789abcdef",
		SessionTTL:     time.Hour,
		CORSOrigins:    []string{"http://localhost:5173"},
		RateLimitRPS:   1000,
		RateLimitBurst: 1000,
	}
}

func testServer(t *testing.T) (*auth.Manager, http.Handler) {
	t.Helper()
	cfg := testConfig()
	store := auth.NewMemorySessionStore(time.Minute)
	t.Cleanup(func() { store.Close() })
	mgr := auth.NewManager(store, auth.NewTokenIssuer([]byte(cfg.SessionSecret)), cfg.SessionTTL, false)
	return mgr, newServer(cfg, zerolog.Nop(), nil, mgr)
}

func TestDirOr(t *testing.T) {
	if got := dirOr("", "./migrations"); got != "./migrations" {
		t.Errorf("dirOr(empty) = %q, want fallback", got)
	}
	if got := dirOr("/tmp/m", "./migrations"); got != "/tmp/m" {
		t.Errorf("dirOr(flag) = %q, want flag", got)
	}
}

func TestMigrationsFS_FallsBackToEmbedded(t *testing.T) {
	if got := migrationsFS(filepath.Join(t.TempDir(), "missing")); got != fs.FS(migrations.FS) {
		t.Error("expected embedded migrations for a missing directory")
	}
	if got := migrationsFS(""); got != fs.FS(migrations.FS) {
		t.Error("expected embedded migrations for an empty directory setting")
	}
}

func TestMigrationsFS_UsesDirectory(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "001_local.sql"), []byte("SELECT 1;"), 0o600); err != nil {
		t.Fatal(err)
	}
	data, err := fs.ReadFile(migrationsFS(dir), "001_local.sql")
	if err != nil {
		t.Fatalf("expected on-disk migrations, got %v", err)
	}
	if string(data) != "SELECT 1;" {
		t.Errorf("unexpected content %q", data)
	}
}

func TestRateLimitConfig(t *testing.T) {
	cfg := testConfig()
	cfg.RateLimitRPS = 5
	cfg.RateLimitBurst = 10
	got := rateLimitConfig(cfg)
	if got.RequestsPerSecond != 5 || got.BurstSize != 10 {
		t.Errorf("unexpected rate limit config %+v", got)
	}

	cfg.RateLimitRPS = 0
	if got := rateLimitConfig(cfg); got != middleware.DefaultRateLimitConfig() {
		t.Errorf("expected defaults for a zero rate, got %+v", got)
	}
}

func TestNewSessionStore_Memory(t *testing.T) {
	store, err := newSessionStore(context.Background(), testConfig())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer store.Close()
	if _, ok := store.(*auth.MemorySessionStore); !ok {
		t.Errorf("expected a memory store without REDIS_URL, got %T", store)
	}
}

func TestNewSessionStore_Redis(t *testing.T) {
	mr := miniredis.RunT(t)
	cfg := testConfig()
	cfg.RedisURL = "redis://" + mr.Addr()

	store, err := newSessionStore(context.Background(), cfg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer store.Close()
	if _, ok := store.(*auth.RedisSessionStore); !ok {
		t.Errorf("expected a redis store, got %T", store)
	}
}

func TestNewSessionStore_BadRedisURL(t *testing.T) {
	cfg := testConfig()
	cfg.RedisURL = "://not-a-url"
	if _, err := newSessionStore(context.Background(), cfg); err == nil {
		t.Fatal("expected error for an invalid redis url")
	}
}

func TestServer_Health(t *testing.T) {
	_, srv := testServer(t)

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if rec.Header().Get(middleware.RequestIDHeader) == "" {
		t.Error("expected a request id header")
	}
}

func TestServer_RequiresSession(t *testing.T) {
	_, srv := testServer(t)

	for _, path := range []string{"/api/clients", "/api/appointments", "/api/dashboard/stats", "/api/financial-records"} {
		rec := httptest.NewRecorder()
		srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("GET %s: expected 401, got %d", path, rec.Code)
		}
	}
}

func TestServer_CollaboratorCannotReachFinance(t *testing.T) {
	mgr, srv := testServer(t)
	token, _, err := mgr.Start(context.Background(), uuid.New(), uuid.New(), auth.RoleCollaborator)
	if err != nil {
		t.Fatal(err)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/financial-records", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rec.Code)
	}
}

func TestServer_DashboardRejectsUnknownFilter(t *testing.T) {
	mgr, srv := testServer(t)
	token, _, err := mgr.Start(context.Background(), uuid.New(), uuid.New(), auth.RoleAdmin)
	if err != nil {
		t.Fatal(err)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/dashboard/stats?timeFilter=decade", nil)
	req.AddCookie(&http.Cookie{Name: auth.SessionCookieName, Value: token})
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", rec.Code, rec.Body.String())
	}
}
