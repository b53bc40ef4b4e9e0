package httpapi

import (
	"github.com/charmbracelet/log"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// RequestID tags every request with a short unique ID for tracing, echoed
// back in the X-Request-ID response header.
func RequestID() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := uuid.NewString()[:8]
		c.Locals("request_id", id)

		log.Debug("request", "id", id, "method", c.Method(), "path", c.Path())

		err := c.Next()

		c.Set("X-Request-ID", id)
		log.Debug("response", "id", id, "status", c.Response().StatusCode())
		return err
	}
}
