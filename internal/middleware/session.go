package middleware

import (
	"github.com/gofiber/fiber/v2"

	"parfum/internal/cart"
)

// SessionHeader carries the shopper's session id. Clients send it back on
// every request; a request without one gets a fresh id assigned.
const SessionHeader = "X-Session-ID"

const sessionLocal = "session_id"

// Session resolves or assigns the shopper session id and echoes it back
// in the response so the client can persist it.
func Session() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Get(SessionHeader)
		if id == "" {
			id = cart.NewSessionID()
		}
		c.Locals(sessionLocal, id)
		c.Set(SessionHeader, id)
		return c.Next()
	}
}

// SessionID returns the session id resolved by Session for this request.
func SessionID(c *fiber.Ctx) string {
	id, _ := c.Locals(sessionLocal).(string)
	return id
}
