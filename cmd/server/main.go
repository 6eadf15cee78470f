package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"creativedesk/internal/config"
	"creativedesk/internal/database"
	"creativedesk/internal/handlers"
	"creativedesk/internal/jobs"
	"creativedesk/internal/logging"
	"creativedesk/internal/models"
	"creativedesk/internal/services"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/joho/godotenv"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	// Initialize structured logging (JSON in production, text in dev)
	logging.Init()

	log.Println("🚀 Starting CreativeDesk Server...")

	// Load .env file (ignore error if file doesn't exist)
	if err := godotenv.Load(); err != nil {
		log.Printf("⚠️  No .env file found or error loading it: %v", err)
	}

	cfg := config.Load()
	log.Printf("📋 Configuration loaded (Port: %s, DB: %s)", cfg.Port, cfg.DatabasePath)

	db, err := database.New(cfg.DatabasePath)
	if err != nil {
		log.Fatalf("❌ Failed to open database: %v", err)
	}
	defer db.Close()

	if err := db.Initialize(); err != nil {
		log.Fatalf("❌ Failed to initialize database: %v", err)
	}

	// Metrics
	services.InitMetrics()

	// Classifier provider chain: providers.yaml when configured, env keys otherwise
	loadProviders := func() ([]models.ProviderConfig, error) {
		file, err := config.LoadProviders(cfg.ProvidersPath)
		if err != nil {
			return nil, err
		}
		return file.Providers, nil
	}

	var providerConfigs []models.ProviderConfig
	if cfg.ProvidersPath != "" {
		providerConfigs, err = loadProviders()
		if err != nil {
			log.Fatalf("❌ Failed to load providers file: %v", err)
		}
	} else {
		providerConfigs = cfg.EnvProviders()
	}

	registry := services.NewProviderRegistry(providerConfigs)
	defer registry.Close()

	if cfg.ProvidersPath != "" {
		if err := registry.Watch(cfg.ProvidersPath, loadProviders); err != nil {
			log.Printf("⚠️ Provider hot-reload disabled: %v", err)
		}
	}

	configured := 0
	for _, p := range registry.Chain() {
		if p.Configured() {
			configured++
		}
	}
	log.Printf("🤖 Classifier chain: %d providers (%d configured)", len(registry.Chain()), configured)

	// Services
	libraryService := services.NewLibraryService(db)
	crmService := services.NewCRMService(db)
	sessionService := services.NewSessionService(libraryService)
	autoFileService := services.NewAutoFileService(crmService, sessionService)

	searchService := services.NewSearchService(cfg.SearXNGURL)
	if searchService.Available() {
		log.Printf("🔍 Search validation enabled: %s", cfg.SearXNGURL)
	} else {
		log.Println("⚠️ SEARXNG_URL not set - company search validation disabled")
	}

	classifierService := services.NewClassifierService(registry, searchService, autoFileService, sessionService)

	// Every recorded asset kicks off a detached classification
	sessionService.SetAssetHook(func(session *models.Session, asset models.GeneratedAsset) {
		classifierService.Classify(context.Background(), session, asset)
	})

	// Background jobs
	var scheduler interface{ Shutdown() error }
	if cfg.AutosaveEnabled {
		s, err := jobs.NewScheduler()
		if err != nil {
			log.Fatalf("❌ Failed to create job scheduler: %v", err)
		}
		if err := jobs.RegisterAutosave(s, sessionService, cfg.AutosaveInterval); err != nil {
			log.Fatalf("❌ Failed to register autosave job: %v", err)
		}
		s.Start()
		scheduler = s
	}

	// HTTP server
	app := fiber.New(fiber.Config{
		AppName:      "CreativeDesk v1.0",
		ReadTimeout:  120 * time.Second,
		WriteTimeout: 120 * time.Second,
		BodyLimit:    50 * 1024 * 1024, // data-URI image/video payloads
	})

	app.Use(recover.New())
	app.Use(logger.New())

	prometheus := fiberprometheus.New("creativedesk")
	prometheus.RegisterAt(app, "/metrics")
	app.Use(prometheus.Middleware)

	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowHeaders: "Origin, Content-Type, Accept",
	}))

	app.Use("/api", limiter.New(limiter.Config{
		Max:        120,
		Expiration: 1 * time.Minute,
	}))

	// Handlers
	sessionHandler := handlers.NewSessionHandler(sessionService)
	libraryHandler := handlers.NewLibraryHandler(libraryService)
	crmHandler := handlers.NewCRMHandler(crmService)
	healthHandler := handlers.NewHealthHandler(sessionService)

	app.Get("/health", healthHandler.Handle)

	api := app.Group("/api")
	api.Post("/sessions", sessionHandler.Start)
	api.Get("/sessions/current", sessionHandler.Current)
	api.Post("/sessions/current/images", sessionHandler.AddImage)
	api.Post("/sessions/current/videos", sessionHandler.AddVideo)
	api.Get("/library", libraryHandler.List)
	api.Get("/library/:id", libraryHandler.Get)
	api.Get("/companies", crmHandler.ListCompanies)
	api.Get("/companies/:id/projects", crmHandler.ListProjects)

	// Graceful shutdown
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		log.Println("\n🛑 Shutting down server...")

		// Let in-flight classifications land on their sessions, then flush
		sessionService.Drain()
		sessionService.Persist()

		if scheduler != nil {
			if err := scheduler.Shutdown(); err != nil {
				log.Printf("⚠️ Error stopping scheduler: %v", err)
			}
		}

		if err := app.Shutdown(); err != nil {
			log.Printf("⚠️ Error shutting down server: %v", err)
		}
	}()

	log.Printf("🌐 Server listening on port %s", cfg.Port)
	if err := app.Listen(":" + cfg.Port); err != nil {
		log.Fatalf("❌ Server error: %v", err)
	}

	log.Println("👋 Server stopped")
}
