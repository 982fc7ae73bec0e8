package router

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/goldfolio/goldfolio-api/app/middleware"
	"github.com/goldfolio/goldfolio-api/app/services"
	"github.com/goldfolio/goldfolio-api/config"
	testingutil "github.com/goldfolio/goldfolio-api/testing"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	routerTestSecret = "router-test-secret-key-32-characters!"
	routerCronSecret = "cron-secret"
)

// stubHandlers answers every route with its own name
type stubHandlers struct{}

func (stubHandlers) reply(c fiber.Ctx, name string) error { return c.SendString(name) }

func (h stubHandlers) ListLots(c fiber.Ctx) error     { return h.reply(c, "list") }
func (h stubHandlers) CreateLot(c fiber.Ctx) error    { return h.reply(c, "create") }
func (h stubHandlers) UpdateLot(c fiber.Ctx) error    { return h.reply(c, "update:"+c.Params("id")) }
func (h stubHandlers) DeleteLot(c fiber.Ctx) error    { return h.reply(c, "delete:"+c.Params("id")) }
func (h stubHandlers) GetSnapshot(c fiber.Ctx) error  { return h.reply(c, "snapshot:"+c.Params("date")) }
func (h stubHandlers) TodayPricing(c fiber.Ctx) error { return h.reply(c, "today") }
func (h stubHandlers) Ingest(c fiber.Ctx) error       { return h.reply(c, "ingest") }
func (h stubHandlers) Backfill(c fiber.Ctx) error     { return h.reply(c, "backfill") }
func (h stubHandlers) Status(c fiber.Ctx) error       { return h.reply(c, "status") }
func (h stubHandlers) Price(c fiber.Ctx) error        { return h.reply(c, "price") }

func newTestRouter(t *testing.T) *fiber.App {
	t.Helper()
	cfg := &config.ProductionConfig{
		Server:     config.ServerConfig{ReadTimeout: 5 * time.Second, WriteTimeout: 5 * time.Second},
		Security:   config.SecurityConfig{AllowedOrigins: []string{"http://localhost:3000"}, GlobalRateLimit: 1000, RateLimitWindow: time.Minute},
		Metrics:    config.MetricsConfig{Enabled: true, Path: "/metrics"},
		Deployment: config.DeploymentConfig{Environment: "test", Version: "0.0.1"},
		Admin:      config.AdminConfig{CronSecret: routerCronSecret},
	}

	tokens, err := services.NewTokenService("", "", routerTestSecret)
	require.NoError(t, err)

	h := stubHandlers{}
	r := NewFiberRouter(cfg, zerolog.Nop(), h, h, h, h, middleware.NewAuthMiddleware(tokens, "access_token"))
	r.SetupRoutes()
	return r.GetApp()
}

func send(t *testing.T, app *fiber.App, req *http.Request) (int, string) {
	t.Helper()
	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, string(body)
}

func TestRouter_Health(t *testing.T) {
	app := newTestRouter(t)

	status, body := send(t, app, httptest.NewRequest(http.MethodGet, "/api/v1/health", nil))
	require.Equal(t, http.StatusOK, status)

	var resp struct {
		Success bool `json:"success"`
		Data    struct {
			Status      string `json:"status"`
			Environment string `json:"environment"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(body), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, "ok", resp.Data.Status)
	assert.Equal(t, "test", resp.Data.Environment)
}

func TestRouter_PublicPriceRoutes(t *testing.T) {
	app := newTestRouter(t)

	status, body := send(t, app, httptest.NewRequest(http.MethodGet, "/api/v1/prices/today", nil))
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "today", body)

	status, body = send(t, app, httptest.NewRequest(http.MethodGet, "/api/v1/prices/2024-05-31", nil))
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "snapshot:2024-05-31", body)

	status, body = send(t, app, httptest.NewRequest(http.MethodGet, "/api/v1/subscription/price", nil))
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "price", body)
}

func TestRouter_PortfolioRequiresToken(t *testing.T) {
	app := newTestRouter(t)

	status, _ := send(t, app, httptest.NewRequest(http.MethodGet, "/api/v1/portfolio", nil))
	assert.Equal(t, http.StatusUnauthorized, status)

	status, _ = send(t, app, httptest.NewRequest(http.MethodGet, "/api/v1/subscription/status", nil))
	assert.Equal(t, http.StatusUnauthorized, status)

	token, err := testingutil.SignTestToken(routerTestSecret, testingutil.TestToken{OwnerID: "owner-1", Email: "owner@example.com"})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPut, "/api/v1/portfolio/abc", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	status, body := send(t, app, req)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "update:abc", body)

	req = httptest.NewRequest(http.MethodDelete, "/api/v1/portfolio/abc", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	status, body = send(t, app, req)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "delete:abc", body)
}

func TestRouter_AdminRequiresCronSecret(t *testing.T) {
	app := newTestRouter(t)

	status, _ := send(t, app, httptest.NewRequest(http.MethodPost, "/api/v1/admin/prices/ingest", nil))
	assert.Equal(t, http.StatusUnauthorized, status)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/admin/prices/backfill", nil)
	req.Header.Set(middleware.CronSecretHeader, routerCronSecret)
	status, body := send(t, app, req)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "backfill", body)
}

func TestRouter_NotFound(t *testing.T) {
	app := newTestRouter(t)

	status, body := send(t, app, httptest.NewRequest(http.MethodGet, "/api/v1/unknown", nil))
	assert.Equal(t, http.StatusNotFound, status)
	assert.Contains(t, body, `"code":"NOT_FOUND"`)
	assert.Contains(t, body, `"path":"/api/v1/unknown"`)
}

func TestRouter_MetricsEndpoint(t *testing.T) {
	app := newTestRouter(t)

	send(t, app, httptest.NewRequest(http.MethodGet, "/api/v1/health", nil))

	status, body := send(t, app, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, status)
	assert.Contains(t, body, "goldfolio_http_requests_total")
}
