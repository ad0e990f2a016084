package app

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/riskibarqy/komiti/internal/config"
	"github.com/riskibarqy/komiti/internal/platform/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(t *testing.T) config.Config {
	t.Helper()
	return config.Config{
		AppEnv:             config.EnvDev,
		HTTPAddr:           ":0",
		ReadTimeout:        time.Second,
		WriteTimeout:       time.Second,
		CORSAllowedOrigins: []string{"*"},
		MetricsEnabled:     true,
		StorageDriver:      config.StorageMemory,
		StateDriver:        config.StateNone,
		AuthMode:           config.AuthJWT,
		JWTSecret:          "0123456789abcdef-app-test",
		JWTTTL:             time.Hour,
		JWTIssuer:          "komiti",
	}
}

func TestNew_ServesHealthAndMetrics(t *testing.T) {
	a, err := New(context.Background(), testConfig(t), logging.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Shutdown(context.Background()) })

	assert.Nil(t, a.Scheduler)

	rec := httptest.NewRecorder()
	a.Server.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	a.Server.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "komiti_http_requests_total")
}

func TestNew_PersistsToStateFile(t *testing.T) {
	cfg := testConfig(t)
	cfg.StateDriver = config.StateFile
	cfg.StatePath = filepath.Join(t.TempDir(), "state.json")
	cfg.CacheEnabled = true
	cfg.CacheTTL = time.Second

	a, err := New(context.Background(), cfg, logging.NewNop())
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/v1/auth/login", strings.NewReader(`{"email_or_phone":"owner@example.com"}`))
	rec := httptest.NewRecorder()
	a.Server.Handler.ServeHTTP(rec, req)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	require.NoError(t, a.Shutdown(context.Background()))

	again, err := New(context.Background(), cfg, logging.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = again.Shutdown(context.Background()) })

	req = httptest.NewRequest(http.MethodPost, "/v1/auth/login", strings.NewReader(`{"email_or_phone":"owner@example.com"}`))
	rec = httptest.NewRecorder()
	again.Server.Handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
}

func TestNew_SchedulesReminders(t *testing.T) {
	cfg := testConfig(t)
	cfg.MetricsEnabled = false
	cfg.ReminderEnabled = true
	cfg.ReminderCron = "0 9 * * *"
	cfg.ReminderLanguage = "en"
	cfg.ReminderTimeout = time.Second

	a, err := New(context.Background(), cfg, logging.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Shutdown(context.Background()) })

	require.NotNil(t, a.Scheduler)
	result, err := a.Reminders.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Zero(t, result.Committees)

	rec := httptest.NewRecorder()
	a.Server.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestNew_RejectsEmptyAddr(t *testing.T) {
	cfg := testConfig(t)
	cfg.HTTPAddr = ""
	_, err := New(context.Background(), cfg, logging.NewNop())
	assert.Error(t, err)
}
