package middleware

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/hashicorp/go-hclog"
)

// HeaderRequestID carries the per-request identifier.
const HeaderRequestID = "X-Request-ID"

const localsRequestID = "request_id"

// RequestLogger assigns every request an ID, echoes it in the response
// header and logs the request once it completes.
func RequestLogger(logger hclog.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()

		id, err := uuid.Parse(c.Get(HeaderRequestID))
		if err != nil {
			id = uuid.New()
		}
		requestID := id.String()
		c.Locals(localsRequestID, requestID)
		c.Set(HeaderRequestID, requestID)

		err = c.Next()

		logger.Debug("completed request",
			"method", c.Method(),
			"path", c.Path(),
			"status", c.Response().StatusCode(),
			"request_id", requestID,
			"duration", time.Since(start),
		)
		return err
	}
}

// RequestID returns the ID assigned by RequestLogger, or "" outside it.
func RequestID(c *fiber.Ctx) string {
	id, _ := c.Locals(localsRequestID).(string)
	return id
}
