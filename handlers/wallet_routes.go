// handlers/wallet_routes.go
package handlers

import (
	"rap-battle-service/middleware"
	"rap-battle-service/services"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
)

func SetupWalletRoutes(app *fiber.App, walletSvc *services.WalletService) {
	adminGroup := app.Group("/s/admin/wallets", middleware.UserContextMiddleware(), middleware.RequireRole("admin"))

	adminGroup.Get("/stats", func(c *fiber.Ctx) error {
		stats, err := walletSvc.GetWalletStats(c.Context())
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "failed to load wallet stats",
				"cause": err.Error(),
			})
		}
		return c.JSON(stats)
	})

	adminGroup.Get("/alerts", func(c *fiber.Ctx) error {
		alerts, err := walletSvc.CheckBalances(c.Context())
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "balance check failed",
				"cause": err.Error(),
			})
		}
		return c.JSON(fiber.Map{"alerts": alerts})
	})

	adminGroup.Post("/transfer", func(c *fiber.Ctx) error {
		var req struct {
			FromWalletType string `json:"from_wallet_type"`
			ToWalletType   string `json:"to_wallet_type"`
			Amount         string `json:"amount"`
			Description    string `json:"description"`
		}
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid JSON"})
		}
		amount, err := decimal.NewFromString(req.Amount)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid amount"})
		}

		outcome, err := walletSvc.ManualTransfer(c.Context(), req.FromWalletType, req.ToWalletType, amount, req.Description)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "transfer failed",
				"cause": err.Error(),
			})
		}
		if !outcome.Success {
			return c.Status(fiber.StatusBadRequest).JSON(outcome)
		}
		return c.JSON(outcome)
	})

	adminGroup.Post("/sweep", func(c *fiber.Ctx) error {
		result, err := walletSvc.SweepProfits(c.Context())
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "profit sweep failed",
				"cause": err.Error(),
			})
		}
		return c.JSON(result)
	})
}
