// handlers/account_routes.go
package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"tictactoe-arena/middleware"
	"tictactoe-arena/services"
)

const maxAvatarSize = 2 * 1024 * 1024

func SetupAccountRoutes(r fiber.Router, accounts *services.AccountService) {
	r.Delete("/account", func(c *fiber.Ctx) error {
		if err := accounts.DeleteAccountData(c.UserContext(), middleware.UserID(c)); err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "failed to delete account",
				"cause": err.Error(),
			})
		}
		return c.JSON(fiber.Map{"deleted": true})
	})

	r.Post("/account/avatar", func(c *fiber.Ctx) error {
		file, err := c.FormFile("avatar")
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "avatar file is required",
				"cause": err.Error(),
			})
		}
		if file.Size > maxAvatarSize {
			return c.Status(fiber.StatusRequestEntityTooLarge).JSON(fiber.Map{
				"error": "avatar must be 2MB or smaller",
			})
		}

		url, err := accounts.UploadAvatar(c.UserContext(), middleware.UserID(c), file)
		switch {
		case errors.Is(err, services.ErrInvalidAvatar):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
		case errors.Is(err, services.ErrNoAvatarStore):
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"error": err.Error()})
		case err != nil:
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "failed to upload avatar",
				"cause": err.Error(),
			})
		}
		return c.JSON(fiber.Map{"avatar_url": url})
	})
}
