package router

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	apphttp "gsr_locator/internal/http"
	"gsr_locator/platform/config"
	"gsr_locator/platform/httpkit"
	"gsr_locator/platform/logger"
	"gsr_locator/platform/metrics"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type pingModule struct{}

func (pingModule) Name() string { return "ping" }

func (pingModule) RegisterRoutes(ctx *apphttp.RouterContext) {
	ctx.V1.GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, "pong") })
	ctx.Limited.POST("/ping", func(c *gin.Context) { c.Status(http.StatusAccepted) })
}

type stubHealth struct{ err error }

func (s stubHealth) Health(context.Context) error { return s.err }

func newApp(health apphttp.HealthChecker) *apphttp.App {
	registry := prometheus.NewRegistry()
	m := metrics.New(registry)
	m.SessionOpened()

	app := &apphttp.App{
		Config: &config.Config{
			CORSOrigins:    []string{"https://www.ne.ch"},
			RateLimitRPS:   0.001,
			RateLimitBurst: 1,
		},
		Logger:   logger.Discard(),
		Gatherer: registry,
		Modules:  []apphttp.Module{pingModule{}},
	}
	if health != nil {
		app.Health = health
	}
	return app
}

func serve(engine *gin.Engine, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	return w
}

func TestHealth(t *testing.T) {
	w := serve(New(newApp(nil)), httptest.NewRequest(http.MethodGet, "/api/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())

	w = serve(New(newApp(stubHealth{err: errors.New("redis down")})), httptest.NewRequest(http.MethodGet, "/api/health", nil))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestMetricsEndpoint(t *testing.T) {
	w := serve(New(newApp(nil)), httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, strings.Contains(w.Body.String(), "gsr_active_sessions 1"))
}

func TestModuleRoutesAndRequestID(t *testing.T) {
	w := serve(New(newApp(nil)), httptest.NewRequest(http.MethodGet, "/api/v1/ping", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "pong", w.Body.String())
	assert.NotEmpty(t, w.Header().Get(httpkit.HeaderRequestID))
	assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
}

func TestLimitedGroupIsRateLimited(t *testing.T) {
	engine := New(newApp(nil))

	first := serve(engine, httptest.NewRequest(http.MethodPost, "/api/v1/ping", nil))
	second := serve(engine, httptest.NewRequest(http.MethodPost, "/api/v1/ping", nil))

	assert.Equal(t, http.StatusAccepted, first.Code)
	assert.Equal(t, http.StatusTooManyRequests, second.Code)
}

func TestCORSPreflight(t *testing.T) {
	engine := New(newApp(nil))

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/ping", nil)
	req.Header.Set("Origin", "https://www.ne.ch")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	w := serve(engine, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "https://www.ne.ch", w.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodOptions, "/api/v1/ping", nil)
	req.Header.Set("Origin", "https://evil.example")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	w = serve(engine, req)
	assert.Equal(t, http.StatusForbidden, w.Code)
}
