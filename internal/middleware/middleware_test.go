package middleware

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	contextPkg "GutAssistant/pkg/context"
)

func newTestApp(rps float64, burst int) *fiber.App {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	m := New(logger, rps, burst)

	app := fiber.New()
	app.Use(m.NewRequestIDMiddleware())
	app.Use(m.NewMetricsMiddleware())
	app.Get("/ping", m.NewRateLimiter, func(c *fiber.Ctx) error {
		return c.SendString(m.GetRequestID(c))
	})
	return app
}

func TestRequestIDGenerated(t *testing.T) {
	app := newTestApp(100, 100)

	resp, err := app.Test(httptest.NewRequest("GET", "/ping", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	header := resp.Header.Get(RequestIDKey)
	require.Len(t, header, 26)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.Equal(t, header, string(body))
}

func TestRequestIDPropagated(t *testing.T) {
	app := newTestApp(100, 100)

	req := httptest.NewRequest("GET", "/ping", nil)
	req.Header.Set(RequestIDKey, "client-supplied")
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, "client-supplied", resp.Header.Get(RequestIDKey))
}

func TestRequestIDRejectsMalformedHeader(t *testing.T) {
	app := newTestApp(100, 100)

	for _, header := range []string{"has spaces in it", "line\tbreak", strings.Repeat("a", 65)} {
		req := httptest.NewRequest("GET", "/ping", nil)
		req.Header.Set(RequestIDKey, header)
		resp, err := app.Test(req)
		require.NoError(t, err)

		got := resp.Header.Get(RequestIDKey)
		require.NotEqual(t, header, got)
		require.Len(t, got, 26)
	}
}

func TestRequestIDInUserContext(t *testing.T) {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	m := New(logger, 100, 100)

	app := fiber.New()
	app.Use(m.NewRequestIDMiddleware())
	app.Get("/ctx", func(c *fiber.Ctx) error {
		return c.SendString(contextPkg.GetRequestID(c.UserContext()))
	})

	req := httptest.NewRequest("GET", "/ctx", nil)
	req.Header.Set(RequestIDKey, "chat-client:42")
	resp, err := app.Test(req)
	require.NoError(t, err)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.Equal(t, "chat-client:42", string(body))
}

func TestRateLimiterRejectsBurst(t *testing.T) {
	app := newTestApp(0.001, 1)

	resp, err := app.Test(httptest.NewRequest("GET", "/ping", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp, err = app.Test(httptest.NewRequest("GET", "/ping", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusTooManyRequests, resp.StatusCode)
}

func TestSanitizeRequestBody(t *testing.T) {
	out := sanitizeRequestBody("/api/v1/chat/messages", `{"message":"hi","user_profile":{"allergies":["dairy"]},"token":"abc"}`)
	require.Contains(t, out, `"user_profile":"[REDACTED]"`)
	require.Contains(t, out, `"token":"[SECRET]"`)
	require.Contains(t, out, `"message":"hi"`)

	require.Equal(t, "[non-JSON body]", sanitizeRequestBody("/", "not json"))
}
