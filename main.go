package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"campaign-sharing-system/handlers"
	"campaign-sharing-system/middleware"
	"campaign-sharing-system/models"
	"campaign-sharing-system/services"
	"campaign-sharing-system/utils"
	"campaign-sharing-system/workers"

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
		BodyLimit: 20 * 1024 * 1024, // 20MB — logo uploads only
	})

	// 🔐 GLOBAL: Only Gateway requests allowed (click redirects exempt)
	app.Use(middleware.GatewayAuthMiddleware())

	allowedOriginsEnv := os.Getenv("ALLOWED_ORIGINS")
	if allowedOriginsEnv == "" {
		log.Println("⚠️  ALLOWED_ORIGINS environment variable not set, using default: http://localhost:3000")
		allowedOriginsEnv = "http://localhost:3000"
	}
	allowedOriginsList := strings.Split(allowedOriginsEnv, ",")
	for i, origin := range allowedOriginsList {
		allowedOriginsList[i] = strings.TrimSpace(origin)
	}
	allowedOriginsString := strings.Join(allowedOriginsList, ",")

	app.Use(cors.New(cors.Config{
		AllowOrigins:     allowedOriginsString,
		AllowMethods:     "GET,POST,PUT,DELETE,OPTIONS,PATCH,HEAD",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, X-Requested-With, X-Request-ID, X-User-ID, X-User-Roles, X-Social-Token, X-Service-Token",
		ExposeHeaders:    "Content-Length, Content-Type, Authorization, X-Request-ID",
		AllowCredentials: true,
		MaxAge:           86400, // 24 hours
	}))

	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		log.Fatal("DATABASE_URL environment variable not set")
	}

	if err := utils.InitR2(); err != nil {
		log.Fatal("failed to initialize R2 client:", err)
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatal("failed to connect to database:", err)
	}

	if err := db.AutoMigrate(
		&models.Campaign{},
		&models.Prize{},
		&models.CampaignUser{},
		&models.Action{},
		&models.UserAction{},
		&models.SharingCampaign{},
		&models.SharingCampaignUser{},
		&models.SharingAction{},
		&models.SharingUserAction{},
	); err != nil {
		log.Fatal("failed to migrate database:", err)
	}

	if err := utils.EnsureUploadDir(); err != nil {
		log.Fatal("failed to ensure upload dir:", err)
	}

	// --- External service configuration (explicit, passed to constructors) ---
	shortenerCfg := services.ShortenerConfig{
		BaseURL: os.Getenv("SHORTENER_API_URL"),
		Login:   os.Getenv("SHORTENER_API_LOGIN"),
		APIKey:  os.Getenv("SHORTENER_API_KEY"),
	}
	if shortenerCfg.BaseURL == "" || shortenerCfg.Login == "" || shortenerCfg.APIKey == "" {
		log.Fatal("SHORTENER_API_URL, SHORTENER_API_LOGIN and SHORTENER_API_KEY must be set")
	}

	socialCfg := services.SocialConfig{
		BaseURL:      os.Getenv("SOCIAL_API_URL"),
		ClientID:     os.Getenv("SOCIAL_CLIENT_ID"),
		ClientSecret: os.Getenv("SOCIAL_CLIENT_SECRET"),
	}
	if socialCfg.BaseURL == "" {
		log.Fatal("SOCIAL_API_URL environment variable not set")
	}

	publicBaseURL := os.Getenv("PUBLIC_BASE_URL")
	if publicBaseURL == "" {
		publicBaseURL = "http://localhost:5300"
	}
	// --- END CONFIG ---

	shortener := services.NewShortenerClient(shortenerCfg)
	poster := services.NewSocialPosterClient(socialCfg)

	pointsService := services.NewPointsService(db)
	shareLinkService := services.NewShareLinkService(db, shortener)
	campaignService := services.NewCampaignService(db, pointsService, shareLinkService, publicBaseURL)
	sharingService := services.NewSharingService(db, pointsService, shareLinkService, poster)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Background click analytics sync from the shortener
	clickSync := workers.NewClickSyncClient(db, shortener)
	go workers.PollClicks(ctx, clickSync, 1*time.Minute)

	// Deadline freeze job: snapshots points when campaigns close
	pointsService.StartFreezeScheduler()

	handlers.SetupCampaignRoutes(app, campaignService)
	handlers.SetupSharingRoutes(app, sharingService)

	app.Static("/uploads", "./uploads")

	go func() {
		if err := app.Listen(":5300"); err != nil {
			log.Printf("Server error: %v", err)
		}
	}()

	log.Println("✅ Server running on http://localhost:5300")
	log.Println("✅ Click sync worker running (every 1m)")
	log.Println("✅ Deadline freeze scheduler running (every 1m)")
	log.Printf("✅ CORS configured for origins: %s", allowedOriginsString)

	<-ctx.Done()
	log.Println("Shutting down server...")
}
