// handlers/leaderboard_routes.go
package handlers

import (
	"github.com/gofiber/fiber/v2"

	"tictactoe-arena/middleware"
	"tictactoe-arena/models"
	"tictactoe-arena/services"
)

func SetupLeaderboardRoutes(r fiber.Router, leaderboard *services.LeaderboardService) {
	r.Get("/leaderboard", func(c *fiber.Ctx) error {
		entries, err := leaderboard.ListTopPlayers(c.UserContext(), models.DefaultLeaderboardLimit)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "failed to load leaderboard",
				"cause": err.Error(),
			})
		}
		return c.JSON(fiber.Map{
			"entries": entries,
			"limit":   models.DefaultLeaderboardLimit,
		})
	})

	r.Get("/user/stats", func(c *fiber.Ctx) error {
		stats, err := leaderboard.PlayerStats(c.UserContext(), middleware.UserID(c))
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "failed to load stats",
				"cause": err.Error(),
			})
		}
		return c.JSON(stats)
	})
}
