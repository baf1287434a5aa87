// handlers/match_routes.go
package handlers

import (
	"context"
	"errors"
	"log"

	"github.com/gofiber/fiber/v2"

	"tictactoe-arena/middleware"
	"tictactoe-arena/models"
	"tictactoe-arena/realtime"
	"tictactoe-arena/services"
)

// MatchStateReader exposes read-only match snapshots.
type MatchStateReader interface {
	State(matchID string) (models.MatchState, error)
}

// AccountEnsurer creates the caller's account on first sight.
type AccountEnsurer interface {
	EnsureAccount(ctx context.Context, userID, displayName string) (*models.Account, error)
}

// Secured builds the group every player route hangs off.
func Secured(app *fiber.App, accounts AccountEnsurer) fiber.Router {
	return app.Group("/", middleware.UserContextMiddleware(), func(c *fiber.Ctx) error {
		if accounts != nil {
			if _, err := accounts.EnsureAccount(c.UserContext(), middleware.UserID(c), middleware.UserName(c)); err != nil {
				log.Printf("[ACCOUNT] ⚠️ Could not ensure account for %s: %v", middleware.UserID(c), err)
			}
		}
		return c.Next()
	})
}

func SetupMatchRoutes(r fiber.Router, matchmaker *services.MatchmakerService, matches MatchStateReader) {
	r.Post("/matchmaking", func(c *fiber.Ctx) error {
		var req struct {
			Mode string `json:"mode"`
		}
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "invalid request body",
				"cause": err.Error(),
			})
		}

		matchID, err := matchmaker.FindOrCreateMatch(c.UserContext(), req.Mode)
		if errors.Is(err, services.ErrInvalidMode) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "mode must be classic or timed",
				"cause": err.Error(),
			})
		}
		if err != nil {
			log.Printf("[MATCHMAKER] ❌ Matchmaking failed for %s: %v", middleware.UserID(c), err)
			return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{
				"error": "matchmaking unavailable",
				"cause": err.Error(),
			})
		}
		return c.JSON(fiber.Map{"match_id": matchID})
	})

	r.Get("/matches/:id", func(c *fiber.Ctx) error {
		st, err := matches.State(c.Params("id"))
		if errors.Is(err, realtime.ErrMatchNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "match not found"})
		}
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "failed to read match",
				"cause": err.Error(),
			})
		}
		return c.JSON(st)
	})
}
