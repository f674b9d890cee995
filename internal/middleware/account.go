package middleware

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/semenggoh/parkguide-api/internal/repository"
	"github.com/semenggoh/parkguide-api/internal/utils"
)

// RequireAccount resolves the authenticated UID to a database user and
// blocks accounts that have not been approved. On success the numeric user
// id and role are stored in request locals for downstream handlers.
func RequireAccount(store repository.Store) fiber.Handler {
	return func(c *fiber.Ctx) error {
		uid, ok := c.Locals("user_uid").(string)
		if !ok || uid == "" {
			return utils.SendError(c, fiber.StatusUnauthorized, "authentication required")
		}

		user, err := store.Users().GetByUID(c.UserContext(), uid)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return utils.SendError(c, fiber.StatusUnauthorized, "account not found")
			}
			return utils.SendError(c, fiber.StatusInternalServerError, "failed to resolve account")
		}

		if !user.IsApproved() {
			return utils.SendErrorWithReason(c, fiber.StatusForbidden, "account is not approved", "account_"+user.Status)
		}

		c.Locals("user_id", user.ID)
		c.Locals("user_role", user.Role)

		return c.Next()
	}
}
