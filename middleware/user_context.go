// middleware/user_context.go
package middleware

import (
	"log"
	"strings"

	"github.com/gofiber/fiber/v2"
)

// UserContextMiddleware extracts the player identity set by the Gateway.
func UserContextMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID := strings.TrimSpace(c.Get("X-User-ID"))
		if userID == "" {
			log.Printf("❌ [USER_CTX] X-User-ID missing on %s", c.Path())
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "missing X-User-ID — request must come through gateway with auth context",
			})
		}

		c.Locals("user_id", userID)
		c.Locals("user_name", strings.TrimSpace(c.Get("X-User-Name")))
		return c.Next()
	}
}

// UserID reads the identity stored by UserContextMiddleware.
func UserID(c *fiber.Ctx) string {
	id, _ := c.Locals("user_id").(string)
	return id
}

func UserName(c *fiber.Ctx) string {
	name, _ := c.Locals("user_name").(string)
	return name
}
