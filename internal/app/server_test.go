package app

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/metric"
	metricnoop "go.opentelemetry.io/otel/metric/noop"
	"go.opentelemetry.io/otel/trace"
	tracenoop "go.opentelemetry.io/otel/trace/noop"
	"go.uber.org/zap/zaptest"

	"github.com/xenking/drinks-api/internal/auth"
	"github.com/xenking/drinks-api/internal/auth/authtest"
	"github.com/xenking/drinks-api/pkg/health"
)

type noopTelemetry struct{}

func (noopTelemetry) TracerProvider() trace.TracerProvider { return tracenoop.NewTracerProvider() }
func (noopTelemetry) MeterProvider() metric.MeterProvider  { return metricnoop.NewMeterProvider() }

type stack struct {
	srv   *httptest.Server
	iss   *authtest.Issuer
	store *Store
}

func newStack(t *testing.T, mutate func(cfg *Config)) *stack {
	t.Helper()
	ctx := context.Background()

	iss := authtest.New(t)
	cfg := validConfig()
	cfg.Storage.SQLitePath = filepath.Join(t.TempDir(), "drinks.db")
	cfg.CORS.Origins = []string{"https://bar.example"}
	cfg.RateLimit = RateLimitConfig{Max: 1000, Window: time.Minute}
	if mutate != nil {
		mutate(&cfg)
	}

	store, err := OpenStore(ctx, cfg.Storage)
	require.NoError(t, err)
	t.Cleanup(store.Close)

	hs := health.New()
	hs.Add(health.Readiness, "sqlite", health.PingCheck(store), health.CheckOptions{})
	hs.SetReady(true)

	h, err := NewHTTPHandler(&cfg, Deps{
		Logger:     zaptest.NewLogger(t),
		Telemetry:  noopTelemetry{},
		Drinks:     store.Drinks,
		Authorizer: iss.Authenticator(),
		Health:     hs,
	})
	require.NoError(t, err)

	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return &stack{srv: srv, iss: iss, store: store}
}

func (s *stack) do(t *testing.T, method, path, body string, perms ...string) *http.Response {
	t.Helper()
	req, err := http.NewRequest(method, s.srv.URL+path, strings.NewReader(body))
	require.NoError(t, err)
	if len(perms) > 0 {
		req.Header.Set("Authorization", authtest.Header(s.iss.Token(t, "manager|1", perms)))
	}
	resp, err := s.srv.Client().Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func TestServer_DrinkLifecycle(t *testing.T) {
	s := newStack(t, nil)

	resp := s.do(t, http.MethodPost, "/drinks",
		`{"title":"Water","recipe":[{"name":"water","color":"blue","parts":1}]}`,
		auth.PermissionPostDrinks)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get("X-Request-ID"))

	resp = s.do(t, http.MethodGet, "/drinks", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = s.do(t, http.MethodPatch, "/drinks/1", `{"title":"Still Water"}`, auth.PermissionPatchDrinks)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = s.do(t, http.MethodDelete, "/drinks/1", "", auth.PermissionDeleteDrinks)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = s.do(t, http.MethodDelete, "/drinks/1", "", auth.PermissionDeleteDrinks)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp = s.do(t, http.MethodGet, "/drinks-detail", "")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestServer_Probes(t *testing.T) {
	s := newStack(t, nil)

	for _, path := range []string{"/livez", "/readyz"} {
		resp := s.do(t, http.MethodGet, path, "")
		assert.Equal(t, http.StatusOK, resp.StatusCode, path)
	}
	resp := s.do(t, http.MethodGet, "/unknown", "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))
}

func TestServer_CORS(t *testing.T) {
	s := newStack(t, nil)

	req, err := http.NewRequest(http.MethodOptions, s.srv.URL+"/drinks", nil)
	require.NoError(t, err)
	req.Header.Set("Origin", "https://bar.example")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	req.Header.Set("Access-Control-Request-Headers", "Authorization")

	resp, err := s.srv.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, "https://bar.example", resp.Header.Get("Access-Control-Allow-Origin"))
	assert.Contains(t, resp.Header.Get("Access-Control-Allow-Methods"), http.MethodPost)
}

func TestServer_RateLimit(t *testing.T) {
	s := newStack(t, func(cfg *Config) {
		cfg.RateLimit = RateLimitConfig{Max: 2, Window: time.Minute}
	})

	for range 2 {
		assert.Equal(t, http.StatusOK, s.do(t, http.MethodGet, "/drinks", "").StatusCode)
	}
	resp := s.do(t, http.MethodGet, "/drinks", "")
	assert.Equal(t, http.StatusTooManyRequests, resp.StatusCode)
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))
}

func TestOpenStore_UnknownDriver(t *testing.T) {
	_, err := OpenStore(context.Background(), StorageConfig{Driver: "mysql"})
	assert.Error(t, err)
}

func TestStore_Reset(t *testing.T) {
	s := newStack(t, nil)
	ctx := context.Background()

	resp := s.do(t, http.MethodPost, "/drinks",
		`{"title":"Water","recipe":[{"name":"water","color":"blue","parts":1}]}`,
		auth.PermissionPostDrinks)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	require.NoError(t, s.store.Ping(ctx))
	require.NoError(t, s.store.Reset(ctx))

	list, err := s.store.Drinks.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, list)
}
