package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"rap-battle-service/handlers"
	"rap-battle-service/middleware"
	"rap-battle-service/models"
	"rap-battle-service/services"
	"rap-battle-service/storage"
	"rap-battle-service/utils"
	"rap-battle-service/workers"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/joho/godotenv"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("⚠️  No .env file found, reading environment variables directly")
	}

	app := fiber.New(fiber.Config{
		AppName: "rap-battle-service",
	})

	// 🔐 GLOBAL: only gateway requests allowed — no exceptions
	app.Use(middleware.GatewayAuthMiddleware())

	allowedOrigins := os.Getenv("ALLOWED_ORIGINS")
	if allowedOrigins == "" {
		log.Println("⚠️  ALLOWED_ORIGINS not set, using default: http://localhost:3000")
		allowedOrigins = "http://localhost:3000"
	}
	origins := strings.Split(allowedOrigins, ",")
	for i := range origins {
		origins[i] = strings.TrimSpace(origins[i])
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins:     strings.Join(origins, ","),
		AllowMethods:     "GET,POST,PUT,DELETE,OPTIONS,PATCH,HEAD",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, X-Requested-With, X-Request-ID, X-User-ID, X-User-Roles",
		AllowCredentials: true,
		MaxAge:           86400,
	}))

	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		log.Fatal("DATABASE_URL environment variable not set")
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatal("failed to connect to database:", err)
	}

	if err := db.AutoMigrate(
		&models.BattleUser{},
		&models.UserProgress{},
		&models.BattleLog{},
		&models.XPEvent{},
		&models.CurrencyTransaction{},
		&models.MilestoneTier{},
		&models.PlatformWallet{},
		&models.WalletTransaction{},
	); err != nil {
		log.Fatal("failed to migrate database:", err)
	}

	if err := storage.SeedMilestoneTiers(db); err != nil {
		log.Fatal("failed to seed milestone tiers:", err)
	}

	if err := utils.InitR2(); err != nil {
		log.Fatal("failed to initialize R2 client:", err)
	}

	cfg := models.LoadMonetizationConfig()

	progressStore := storage.NewGormProgressStore(db)
	walletStore := storage.NewGormWalletStore(db)

	xpService := services.NewXPService(progressStore)
	matchmakingService := services.NewMatchmakingService(progressStore, cfg)
	walletService := services.NewWalletService(walletStore, cfg)

	if err := walletService.InitializePlatformWallets(context.Background()); err != nil {
		log.Fatal("failed to initialize platform wallets:", err)
	}

	handlers.SetupProgressionRoutes(app, xpService)
	handlers.SetupBattleRoutes(app, xpService, matchmakingService, walletService, progressStore, cfg)
	handlers.SetupWalletRoutes(app, walletService)

	services.StartMonetizationScheduler(walletService, matchmakingService, cfg)

	workerCtx, stopWorkers := context.WithCancel(context.Background())
	exportWorker := workers.NewLedgerExportWorker(walletStore)
	go exportWorker.Run(workerCtx, 15*time.Minute)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	go func() {
		if err := app.Listen(":" + port); err != nil {
			log.Fatal("server error:", err)
		}
	}()
	log.Printf("🎤 rap-battle-service listening on :%s", port)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down...")
	stopWorkers()
	if err := app.Shutdown(); err != nil {
		log.Println("shutdown error:", err)
	}
}
