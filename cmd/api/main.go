package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/rs/zerolog/log"

	"alfredoptarigan/resume-optimizer/internal/app"
	"alfredoptarigan/resume-optimizer/internal/config"
	"alfredoptarigan/resume-optimizer/internal/handlers"
)

func main() {
	cfg := config.Load()
	config.SetupLogger(cfg.Log, os.Stdout)
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("❌ Invalid configuration")
	}
	log.Info().Str("env", cfg.Server.Env).Msg("✅ Config loaded successfully")

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	svc, err := app.New(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("❌ Failed to initialize services")
	}
	svc.Start(ctx)

	h := handlers.Handlers{
		Documents: handlers.NewDocumentHandler(
			svc.Loader,
			svc.Workspace,
			svc.Rasterizer,
			cfg.Storage.MaxFileSize,
		),
		Extractions: handlers.NewExtractionHandler(svc.Orchestrator, svc.Workspace),
		Resumes:     handlers.NewResumeHandler(svc.Resumes, svc.Matcher),
		Credits:     handlers.NewCreditHandler(svc.Ledger, cfg.Credits.ExtractionCost),
		Tailor:      handlers.NewTailorHandler(svc.Tailor, svc.Exporter),
		Insights:    handlers.NewInsightHandler(svc.Insights, svc.Resumes),
	}
	log.Info().Msg("✅ Handlers initialized")

	// No write timeout: extraction streams run for as long as OCR takes.
	server := fiber.New(fiber.Config{
		AppName:      "Resume Optimizer API",
		ReadTimeout:  30 * time.Second,
		BodyLimit:    int(cfg.Storage.MaxFileSize) + 1<<20,
		ErrorHandler: handlers.ErrorHandler,
	})

	server.Use(recover.New())
	server.Use(logger.New(logger.Config{
		Format:     "[${time}] ${status} - ${latency} ${method} ${path}\n",
		TimeFormat: "2006-01-02 15:04:05",
	}))
	server.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,DELETE,OPTIONS",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
	}))

	handlers.RegisterRoutes(server.Group("/api/v1"), h)

	server.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"message":   "Resume Optimizer API",
			"version":   "1.0.0",
			"endpoints": handlers.Endpoints(),
		})
	})

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-quit
		log.Info().Msg("🛑 Shutting down server...")
		stop()
		if err := server.ShutdownWithTimeout(10 * time.Second); err != nil {
			log.Error().Err(err).Msg("❌ Server forced to shutdown")
		}
	}()

	addr := fmt.Sprintf(":%s", cfg.Server.Port)
	log.Info().Str("addr", addr).Msg("🚀 Server starting")
	log.Info().Msgf("📖 API Documentation: http://localhost%s", addr)

	if err := server.Listen(addr); err != nil {
		log.Error().Err(err).Msg("❌ Failed to start server")
	}

	if err := svc.Close(); err != nil {
		log.Error().Err(err).Msg("❌ Failed to close services")
	}
	log.Info().Msg("👋 Server stopped")
}
