package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/claims-api/internal/config"
	"github.com/noah-isme/claims-api/internal/database"
	"github.com/noah-isme/claims-api/internal/handler"
	"github.com/noah-isme/claims-api/internal/middleware"
	"github.com/noah-isme/claims-api/internal/models"
	"github.com/noah-isme/claims-api/internal/observability"
	"github.com/noah-isme/claims-api/internal/repository"
	"github.com/noah-isme/claims-api/internal/router"
	"github.com/noah-isme/claims-api/internal/service"
	"github.com/noah-isme/claims-api/pkg/filestore"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	db, err := database.ConnectPostgres(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}

	if err := db.AutoMigrate(&models.User{}, &models.Module{}, &models.Claim{}, &models.SupportingDocument{}, &models.AuditLog{}); err != nil {
		log.Fatalf("failed to migrate database: %v", err)
	}

	redisClient, err := database.ConnectRedis(cfg.RedisURL)
	if err != nil {
		log.Fatalf("failed to connect to redis: %v", err)
	}
	defer redisClient.Close()

	storage, err := filestore.NewLocal(cfg.UploadDir)
	if err != nil {
		log.Fatalf("failed to initialise file storage: %v", err)
	}

	validate := validator.New(validator.WithRequiredStructEnabled())

	userRepo := repository.NewUserRepository(db)
	moduleRepo := repository.NewModuleRepository(db)
	claimRepo := repository.NewClaimRepository(db)
	documentRepo := repository.NewDocumentRepository(db)
	auditRepo := repository.NewAuditLogRepository(db)

	authService := service.NewAuthService(userRepo, validate, cfg.JWTSecret, cfg.TokenTTL, logger)
	claimService := service.NewClaimService(claimRepo, moduleRepo, storage, validate, logger)
	documentService := service.NewDocumentService(documentRepo, claimRepo, storage, logger)
	reportService := service.NewReportService(claimRepo, validate, logger)
	auditService := service.NewAuditService(auditRepo, validate, logger)
	dashboardService := service.NewDashboardService(claimRepo, userRepo, redisClient, cfg.DashboardCacheTTL, logger)

	authHandler := handler.NewAuthHandler(authService, logger)
	claimHandler := handler.NewClaimHandler(claimService, logger)
	documentHandler := handler.NewDocumentHandler(documentService, logger)
	reportHandler := handler.NewReportHandler(reportService, logger)
	auditHandler := handler.NewAuditHandler(auditService, logger)
	dashboardHandler := handler.NewDashboardHandler(dashboardService, logger)

	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ServerHeader: cfg.AppName,
	})

	middleware.Register(app, middleware.Config{Logger: &logger})
	app.Get("/metrics", observability.MetricsHandler())

	router.Register(app, cfg, router.Dependencies{
		AuthHandler:      authHandler,
		ClaimHandler:     claimHandler,
		DocumentHandler:  documentHandler,
		ReportHandler:    reportHandler,
		AuditHandler:     auditHandler,
		DashboardHandler: dashboardHandler,
		JWTMiddleware:    middleware.JWTProtected(cfg.JWTSecret),
	})

	go func() {
		if err := app.Listen(cfg.HTTPAddress()); err != nil {
			log.Fatalf("failed to start server: %v", err)
		}
	}()

	waitForShutdown(app)
}

func waitForShutdown(app *fiber.App) {
	shutdownCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-shutdownCtx.Done()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(ctx); err != nil {
		log.Printf("graceful shutdown failed: %v", err)
	}

	log.Println("server stopped")
}
