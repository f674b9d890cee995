package middleware

import (
	"github.com/gofiber/fiber/v2"

	"github.com/semenggoh/parkguide-api/internal/utils"
)

// RequireRole gates a route group to the given roles. The role local is set
// by RequireAccount from the resolved user record.
func RequireRole(roles ...string) fiber.Handler {
	allowed := make(map[string]struct{}, len(roles))
	for _, role := range roles {
		if normalized := normalizeRole(role); normalized != "" {
			allowed[normalized] = struct{}{}
		}
	}

	return func(c *fiber.Ctx) error {
		role := normalizeRole(c.Locals("user_role"))
		if _, ok := allowed[role]; !ok {
			return utils.SendError(c, fiber.StatusForbidden, "insufficient permissions")
		}
		return c.Next()
	}
}
