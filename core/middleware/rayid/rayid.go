package rayid

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// HeaderName is the response (and accepted request) header carrying the ray id.
const HeaderName = "X-Ray-ID"

// LocalsKey is the fiber.Ctx locals key under which the ray id is stored.
const LocalsKey = "ray_id"

// New returns a middleware that assigns a RayID to every request.
// An incoming X-Ray-ID header is reused so that callers can correlate retries.
func New() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Get(HeaderName)
		if id == "" {
			id = uuid.NewString()
		}
		c.Locals(LocalsKey, id)
		c.Set(HeaderName, id)
		return c.Next()
	}
}
