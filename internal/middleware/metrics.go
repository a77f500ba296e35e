package middleware

import (
	"GutAssistant/internal/metrics"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
)

func (m *middleware) NewMetricsMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		status := c.Response().StatusCode()
		if err != nil {
			if fe, ok := err.(*fiber.Error); ok {
				status = fe.Code
			}
		}

		route := ""
		if r := c.Route(); r != nil {
			route = r.Path
		}
		metrics.ObserveHTTP(c.Method(), route, strconv.Itoa(status), time.Since(start))
		return err
	}
}
