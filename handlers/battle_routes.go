// handlers/battle_routes.go
package handlers

import (
	"log"

	"rap-battle-service/middleware"
	"rap-battle-service/models"
	"rap-battle-service/services"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

func SetupBattleRoutes(app *fiber.App, xpService *services.XPService, matchSvc *services.MatchmakingService, walletSvc *services.WalletService, store services.ProgressStore, cfg models.MonetizationConfig) {
	securedGroup := app.Group("/", middleware.UserContextMiddleware())

	// POST /battles/complete — the battle engine reports a finished battle.
	// Flow: record the battle → award XP (idempotent by battle id) → pay the
	// USDC win reward from the rewards pool.
	securedGroup.Post("/battles/complete", func(c *fiber.Ctx) error {
		userID := c.Locals("user_id").(string)

		var req struct {
			BattleID      string `json:"battle_id"`
			OpponentID    string `json:"opponent_id"`
			Won           bool   `json:"won"`
			UserScore     int64  `json:"user_score"`
			OpponentScore int64  `json:"opponent_score"`
			Difficulty    string `json:"difficulty"`
		}
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid JSON"})
		}
		if req.BattleID == "" {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "battle_id is required"})
		}

		result := models.BattleResult{
			BattleID:      req.BattleID,
			Won:           req.Won,
			UserScore:     req.UserScore,
			OpponentScore: req.OpponentScore,
			Difficulty:    req.Difficulty,
		}

		levelUp, err := xpService.AwardBattleXP(c.Context(), userID, result)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "failed to award battle XP",
				"cause": err.Error(),
			})
		}

		if !levelUp.Replayed {
			battle := &models.BattleLog{
				ID:             uuid.NewString(),
				ExternalUserID: userID,
				OpponentID:     req.OpponentID,
				UserScore:      req.UserScore,
				OpponentScore:  req.OpponentScore,
				Won:            req.Won,
				Difficulty:     req.Difficulty,
				XPEarned:       levelUp.XPAwarded,
			}
			if err := store.RecordBattle(c.Context(), battle); err != nil {
				log.Printf("⚠️  Failed to record battle %s: %v", req.BattleID, err)
			}

			if req.Won && cfg.BattleWinReward.IsPositive() {
				if _, err := walletSvc.PayoutReward(c.Context(), userID, cfg.BattleWinReward, "Battle win reward: "+req.BattleID); err != nil {
					// Reward payout failure must not lose the XP award; the
					// payout is reconciled from the ledger export.
					log.Printf("⚠️  Battle reward payout failed for %s: %v", userID, err)
				}
			}
		}

		return c.JSON(levelUp)
	})

	// Matchmaking
	securedGroup.Post("/matchmaking/find", func(c *fiber.Ctx) error {
		userID := c.Locals("user_id").(string)
		var opts services.MatchOptions
		if err := c.BodyParser(&opts); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid JSON"})
		}
		opts.UserID = userID

		match, err := matchSvc.FindRandomMatch(c.Context(), opts)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "failed to find match",
				"cause": err.Error(),
			})
		}
		return c.JSON(match)
	})

	securedGroup.Post("/matchmaking/queue", func(c *fiber.Ctx) error {
		userID := c.Locals("user_id").(string)
		var opts services.MatchOptions
		if err := c.BodyParser(&opts); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid JSON"})
		}
		opts.UserID = userID
		matchSvc.QueueForMatch(opts)
		return c.JSON(fiber.Map{"queued": true, "waiting": matchSvc.QueueLength()})
	})

	securedGroup.Get("/matchmaking/check", func(c *fiber.Ctx) error {
		userID := c.Locals("user_id").(string)
		match, err := matchSvc.CheckForMatch(c.Context(), userID)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "matchmaking check failed",
				"cause": err.Error(),
			})
		}
		if match == nil {
			return c.JSON(fiber.Map{"matched": false})
		}
		return c.JSON(fiber.Map{"matched": true, "match": match})
	})

	securedGroup.Delete("/matchmaking/queue", func(c *fiber.Ctx) error {
		userID := c.Locals("user_id").(string)
		matchSvc.CancelMatchmaking(userID)
		return c.JSON(fiber.Map{"cancelled": true})
	})

	// Static AI roster for the character picker.
	app.Get("/characters", func(c *fiber.Ctx) error {
		return c.JSON(models.AIRoster)
	})
}
