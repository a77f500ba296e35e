package config

import (
	"bytes"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"GutAssistant/pkg/handlerUtil"
)

func newMemoryServer(t *testing.T) *Server {
	t.Helper()
	t.Setenv("APP_ENV", "test")

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	server, err := NewServer(
		WithFiber(NewFiber(logger)),
		WithLogger(logger),
		WithSettings(Settings{
			Port:           "0",
			FeedbackStore:  StoreMemory,
			RateLimitRPS:   1000,
			RateLimitBurst: 1000,
		}),
		WithValidator(NewValidator()),
		WithDatabase(),
		WithMiddleware(),
		WithMetrics(prometheus.NewRegistry()),
		WithUtils(),
	)
	require.NoError(t, err)
	require.NoError(t, server.RegisterHandler())
	return server
}

func TestNewServerRequiresEngine(t *testing.T) {
	_, err := NewServer(WithLogger(logrus.New()))
	require.Error(t, err)
}

func TestHealthCheck(t *testing.T) {
	server := newMemoryServer(t)

	resp, err := server.engine.Test(httptest.NewRequest("GET", "/", nil))
	require.NoError(t, err)
	require.Equal(t, 200, resp.StatusCode)
	require.NotEmpty(t, resp.Header.Get("X-Request-ID"))
}

func TestChatRouteAndMetrics(t *testing.T) {
	server := newMemoryServer(t)

	req := httptest.NewRequest("POST", "/api/v1/chat/messages", bytes.NewBufferString(`{"session_id":"s1","message":"Hello"}`))
	req.Header.Set("Content-Type", "application/json")
	resp, err := server.engine.Test(req)
	require.NoError(t, err)
	require.Equal(t, 200, resp.StatusCode)

	resp, err = server.engine.Test(httptest.NewRequest("GET", "/metrics", nil))
	require.NoError(t, err)
	require.Equal(t, 200, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.Contains(t, string(body), "gut_assistant_classifications_total")
}

func TestUnknownRouteRendersJSON(t *testing.T) {
	server := newMemoryServer(t)

	resp, err := server.engine.Test(httptest.NewRequest("GET", "/api/v1/chat/nope", nil))
	require.NoError(t, err)
	require.Equal(t, 404, resp.StatusCode)

	var body handlerUtil.ErrorResponse
	require.NoError(t, jsoniter.NewDecoder(resp.Body).Decode(&body))
	require.Equal(t, "ROUTE_NOT_FOUND", body.Code)
}

func TestLoadSettings(t *testing.T) {
	t.Setenv("APP_PORT", "")
	t.Setenv("FEEDBACK_STORE", "Memory")
	t.Setenv("OVERRIDE_CACHE_TTL", "90m")
	t.Setenv("RATE_LIMIT_RPS", "nope")
	t.Setenv("RATE_LIMIT_BURST", "7")

	s := LoadSettings()
	require.Equal(t, "3000", s.Port)
	require.Equal(t, StoreMemory, s.FeedbackStore)
	require.Equal(t, 90*time.Minute, s.OverrideCacheTTL)
	require.Equal(t, 50.0, s.RateLimitRPS)
	require.Equal(t, 7, s.RateLimitBurst)

	t.Setenv("FEEDBACK_STORE", "")
	require.Equal(t, StorePostgres, LoadSettings().FeedbackStore)
}

func TestValidatorUsesJSONNames(t *testing.T) {
	type payload struct {
		TurnID string `json:"turn_id" validate:"required"`
	}
	err := NewValidator().Struct(payload{})
	require.Error(t, err)
	require.Contains(t, err.Error(), "turn_id")
}
