// handlers/progression_routes.go
package handlers

import (
	"strconv"

	"rap-battle-service/middleware"
	"rap-battle-service/services"

	"github.com/gofiber/fiber/v2"
)

func SetupProgressionRoutes(app *fiber.App, xpService *services.XPService) {
	// 🔐 Secured routes — require user context forwarded by the gateway.
	securedGroup := app.Group("/", middleware.UserContextMiddleware())

	securedGroup.Get("/user/progress", func(c *fiber.Ctx) error {
		userID := c.Locals("user_id").(string)

		info, err := xpService.GetUserProgressInfo(c.Context(), userID)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "failed to load progress",
				"cause": err.Error(),
			})
		}
		return c.JSON(info)
	})

	securedGroup.Get("/leaderboard", func(c *fiber.Ctx) error {
		limit, _ := strconv.Atoi(c.Query("limit", "25"))
		top, err := xpService.GetLeaderboard(c.Context(), limit)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "failed to load leaderboard",
				"cause": err.Error(),
			})
		}
		return c.JSON(top)
	})

	securedGroup.Post("/user/login-bonus", func(c *fiber.Ctx) error {
		userID := c.Locals("user_id").(string)
		result, err := xpService.AwardLoginXP(c.Context(), userID)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "failed to award login XP",
				"cause": err.Error(),
			})
		}
		return c.JSON(result)
	})

	securedGroup.Post("/user/challenges/complete", func(c *fiber.Ctx) error {
		userID := c.Locals("user_id").(string)
		var req struct {
			ChallengeID   string `json:"challenge_id"`
			ChallengeType string `json:"challenge_type"`
		}
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid JSON"})
		}
		if req.ChallengeID == "" {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "challenge_id is required"})
		}
		result, err := xpService.AwardChallengeXP(c.Context(), userID, req.ChallengeID, req.ChallengeType)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "failed to award challenge XP",
				"cause": err.Error(),
			})
		}
		return c.JSON(result)
	})

	// Admin endpoints
	adminGroup := app.Group("/s/admin", middleware.UserContextMiddleware(), middleware.RequireRole("admin"))

	adminGroup.Post("/xp/grant", func(c *fiber.Ctx) error {
		var req struct {
			UserID string `json:"user_id"`
			XP     int64  `json:"xp"`
			Reason string `json:"reason"`
		}
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid JSON"})
		}
		if req.UserID == "" || req.XP <= 0 {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "user_id and a positive xp amount are required"})
		}

		result, err := xpService.AwardXP(c.Context(), req.UserID, req.XP, "admin_grant:"+req.Reason)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "XP award failed",
				"cause": err.Error(),
			})
		}
		return c.JSON(result)
	})

	adminGroup.Post("/tournaments/:id/placements", func(c *fiber.Ctx) error {
		tournamentID := c.Params("id")
		var req struct {
			UserID    string `json:"user_id"`
			Placement int    `json:"placement"`
		}
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid JSON"})
		}
		result, err := xpService.AwardTournamentXP(c.Context(), req.UserID, tournamentID, req.Placement)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "failed to award tournament XP",
				"cause": err.Error(),
			})
		}
		return c.JSON(result)
	})
}
