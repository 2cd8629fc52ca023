package middleware

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/billsplit/backend/internal/metrics"
)

// Metrics records request counts and latency by matched route pattern.
func Metrics() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if c.Path() == "/metrics" {
			return c.Next()
		}

		start := time.Now()
		metrics.InFlightInc()
		defer metrics.InFlightDec()

		err := c.Next()
		if err != nil {
			if herr := c.App().ErrorHandler(c, err); herr != nil {
				_ = c.SendStatus(fiber.StatusInternalServerError)
			}
			err = nil
		}

		// Requests that matched no route only ever reach the global "/" middleware.
		route := c.Route().Path
		if route == "/" {
			route = "unmatched"
		}
		status := c.Response().StatusCode()
		metrics.ObserveRequest(c.Method(), route, status, time.Since(start))
		return err
	}
}
