package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/stwalsh4118/acquire/internal/cache"
	"github.com/stwalsh4118/acquire/internal/config"
	"github.com/stwalsh4118/acquire/internal/database"
	apierrors "github.com/stwalsh4118/acquire/internal/errors"
	"github.com/stwalsh4118/acquire/internal/extraction"
	"github.com/stwalsh4118/acquire/internal/geocoding"
	"github.com/stwalsh4118/acquire/internal/handlers"
	"github.com/stwalsh4118/acquire/internal/intake"
	"github.com/stwalsh4118/acquire/internal/logger"
	"github.com/stwalsh4118/acquire/internal/metadata"
	"github.com/stwalsh4118/acquire/internal/middleware"
	"github.com/stwalsh4118/acquire/internal/repository"
	"github.com/stwalsh4118/acquire/internal/services"
)

const (
	shutdownTimeout = 30 * time.Second
)

func main() {
	// Load configuration from environment variables
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize structured logger
	log := logger.New(cfg.Server.Env)
	log.Info("Starting Acquire API", logger.Fields{
		"version":     handlers.APIVersion,
		"environment": cfg.Server.Env,
		"port":        cfg.Server.Port,
		"store":       cfg.Server.Store,
	})

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	checks := map[string]handlers.Pinger{}

	// Storage backend
	var store *repository.Store
	switch cfg.Server.Store {
	case config.StoreMemory:
		store = repository.NewMemoryStore()
		log.Warn("Using in-memory store; data is lost on restart", nil)
	default:
		if cfg.Database.AutoMigrate {
			migrateDatabase(cfg.Database, log)
		}

		db, err := database.NewPostgresPool(ctx, cfg.Database)
		if err != nil {
			log.Fatal("Failed to connect to database", err, logger.Fields{
				"host": cfg.Database.Host,
				"port": cfg.Database.Port,
				"name": cfg.Database.Name,
			})
		}
		defer db.Close()

		log.Info("Database connection established", logger.Fields{
			"host":     cfg.Database.Host,
			"port":     cfg.Database.Port,
			"database": cfg.Database.Name,
			"pool_min": cfg.Database.PoolMin,
			"pool_max": cfg.Database.PoolMax,
		})
		store = repository.NewPostgresStore(db)
		checks["database"] = db
	}

	// Lookup cache for geocoding and link previews
	var lookupCache cache.Cache = cache.Nop{}
	if cfg.Cache.Addr != "" {
		rc, err := cache.NewRedisCache(ctx, cfg.Cache)
		if err != nil {
			log.Warn("Redis unavailable, lookups will not be cached", logger.Fields{
				"addr":  cfg.Cache.Addr,
				"error": err.Error(),
			})
		} else {
			defer rc.Close()
			lookupCache = rc
			checks["cache"] = rc
		}
	}

	// External lookups
	geocoder := geocoding.NewClient(cfg.Geocoder, lookupCache, log)
	addressValidator := geocoding.NewValidator(geocoder, log)
	fetcher := metadata.NewFetcher(cfg.Metadata, lookupCache, log)
	extractor := extraction.New(cfg.Extraction, log)
	if !extractor.Enabled() {
		log.Info("Listing extraction disabled; intake runs in manual mode", nil)
	}

	// Services
	folderService := services.NewFolderService(store, log)
	propertyService := services.NewPropertyService(store, log)
	linkService := services.NewLinkService(store, log)

	manager := intake.NewManager(intake.Deps{
		Properties: propertyService,
		Links:      linkService,
		Extractor:  extractor,
		Metadata:   fetcher,
		Checker:    addressValidator,
	}, intake.Options{
		Debounce:   cfg.Geocoder.Debounce,
		SessionTTL: cfg.Intake.SessionTTL,
	}, log)
	go manager.Run(ctx)

	// Setup Gin router
	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		if err := apierrors.RegisterTranslations(v); err != nil {
			log.Warn("Validation messages fall back to defaults", logger.Fields{"error": err.Error()})
		}
	}
	router := gin.New()

	// Add middleware in order: RequestID -> Logger -> Recovery -> CORS
	router.Use(middleware.RequestID())
	router.Use(middleware.Logger(log))
	router.Use(middleware.Recovery(log))
	router.Use(middleware.CORS(cfg.CORS.Origins))

	api := &handlers.API{
		Health:      handlers.NewHealthHandler(checks, cfg.Server.Env, cfg.Server.Store),
		Folders:     handlers.NewFolderHandler(folderService),
		Links:       handlers.NewLinkHandler(linkService),
		Intake:      handlers.NewIntakeHandler(manager),
		Properties:  handlers.NewPropertyHandler(propertyService, services.NewDashboardService(store, log)),
		Visits:      handlers.NewVisitHandler(services.NewVisitService(store, log)),
		Documents:   handlers.NewDocumentHandler(services.NewDocumentService(store, log)),
		Itineraries: handlers.NewItineraryHandler(services.NewItineraryService(store, log)),
		Address:     handlers.NewAddressHandler(addressValidator),
	}
	api.Register(router)

	// Create HTTP server
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.Server.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Info("Server listening", logger.Fields{
			"port": cfg.Server.Port,
			"addr": srv.Addr,
		})
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Server failed to start", err, nil)
		}
	}()

	// Wait for interrupt signal (SIGINT or SIGTERM)
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	// Graceful shutdown
	log.Info("Shutting down server...", nil)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", err, logger.Fields{
			"timeout": shutdownTimeout.String(),
		})
	}

	stop()
	manager.Close()

	log.Info("Server exited", nil)
}

// migrateDatabase applies pending schema migrations before the pool opens.
func migrateDatabase(cfg config.DatabaseConfig, log *logger.Logger) {
	m, err := database.NewMigrator(cfg)
	if err != nil {
		log.Fatal("Failed to prepare migrations", err, nil)
	}
	defer m.Close()

	if err := m.Up(); err != nil {
		log.Fatal("Failed to apply migrations", err, nil)
	}
	version, dirty, err := m.Version()
	if err != nil {
		log.Warn("Could not read schema version", logger.Fields{"error": err.Error()})
		return
	}
	log.Info("Database schema up to date", logger.Fields{"version": version, "dirty": dirty})
}
