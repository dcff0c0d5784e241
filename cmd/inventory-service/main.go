package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/stocklight/stocklight-backend/internal/inventory/events"
	"github.com/stocklight/stocklight-backend/internal/inventory/handler"
	"github.com/stocklight/stocklight-backend/internal/inventory/ledger"
	"github.com/stocklight/stocklight-backend/internal/inventory/store"
	"github.com/stocklight/stocklight-backend/pkg/auth"
	"github.com/stocklight/stocklight-backend/pkg/config"
	"github.com/stocklight/stocklight-backend/pkg/httputil"
	"github.com/stocklight/stocklight-backend/pkg/logger"
	"github.com/stocklight/stocklight-backend/pkg/messaging"
)

func main() {
	// Load configuration with validation (fails fast in production if required config is missing)
	cfg, err := config.LoadWithValidation("inventory-service")
	if err != nil {
		fmt.Fprintf(os.Stderr, "configuration error: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log := logger.New("inventory-service", cfg.Server.Environment)
	log.Info().Msg("starting Inventory Service")

	// Select snapshot store
	var (
		ledgerStore store.Store
		pgStore     *store.PostgresStore
	)
	switch cfg.Storage.Driver {
	case config.StorageMemory:
		ledgerStore = store.NewMemoryStore()
	case config.StorageFile:
		fs, err := store.NewFileStore(cfg.Storage.FilePath)
		if err != nil {
			log.Fatal().Err(err).Str("path", cfg.Storage.FilePath).Msg("failed to open snapshot file store")
		}
		ledgerStore = fs
	case config.StoragePostgres:
		pg, err := store.NewPostgresStore(&cfg.Database, log)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect to database")
		}
		defer pg.Close()
		pgStore = pg
		ledgerStore = pg
	default:
		log.Fatal().Str("driver", cfg.Storage.Driver).Msg("unknown storage driver")
	}
	log.Info().Str("driver", cfg.Storage.Driver).Msg("snapshot store ready")

	// Connect to RabbitMQ when enabled; the ledger works without a broker
	var (
		rmq       *messaging.RabbitMQ
		publisher *events.LedgerEventPublisher
	)
	if cfg.RabbitMQ.Enabled {
		rmq, err = messaging.New(&cfg.RabbitMQ, log)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect to RabbitMQ")
		}
		defer rmq.Close()

		publisher, err = events.NewLedgerEventPublisher(rmq, log)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to create event publisher")
		}
	} else {
		log.Info().Msg("event publishing disabled")
	}

	// Build the ledger and restore the last snapshot
	led := ledger.NewLedger(ledgerStore, cfg.Storage.SnapshotKey, publisher, log)
	if err := led.Load(context.Background()); err != nil {
		log.Fatal().Err(err).Msg("failed to load inventory snapshot")
	}

	// JWT manager for admin routes
	jwtManager := auth.NewManager(&cfg.JWT)

	// Initialize handlers
	catalogHandler := handler.NewCatalogHandler(led, log)
	itemHandler := handler.NewItemHandler(led, log)
	stockHandler := handler.NewStockHandler(led, log)
	reservationHandler := handler.NewReservationHandler(led, log)
	movementHandler := handler.NewMovementHandler(led, log)
	alertHandler := handler.NewAlertHandler(led, log)
	dashboardHandler := handler.NewDashboardHandler(led, log)

	// Create router
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RealIP)
	r.Use(httputil.RequestID)
	r.Use(httputil.Logger(log))
	r.Use(httputil.Recoverer(log))
	r.Use(middleware.Timeout(60 * time.Second))

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.Server.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		health := map[string]interface{}{
			"status":  "healthy",
			"service": "inventory-service",
			"storage": cfg.Storage.Driver,
		}
		if pgStore != nil {
			health["database"] = pgStore.Health(r.Context())
		}
		if rmq != nil {
			health["rabbitmq"] = rmq.Health()
		}
		httputil.JSON(w, http.StatusOK, health)
	})

	// API routes
	r.Route("/api/v1/inventory", func(r chi.Router) {
		// Catalog bootstrap (admin)
		r.Group(func(r chi.Router) {
			r.Use(jwtManager.Middleware)
			r.Use(auth.RequireRole("admin"))
			r.Post("/catalog/initialize", catalogHandler.Initialize)
			r.Post("/stock/update", stockHandler.Update)
			r.Put("/alerts/{id}/acknowledge", alertHandler.Acknowledge)
		})

		// Item routes
		r.Route("/items", func(r chi.Router) {
			r.Get("/", itemHandler.List)
			r.Get("/{variantID}", itemHandler.Get)
			r.Get("/{variantID}/movements", movementHandler.ListByVariant)
		})

		// Movement routes
		r.Route("/movements", func(r chi.Router) {
			r.Get("/", movementHandler.List)
			r.Get("/export", movementHandler.ExportCSV)
		})

		// Reservation routes
		r.Post("/reservations", reservationHandler.Reserve)
		r.Post("/reservations/release", reservationHandler.Release)

		// Purchase routes
		r.Post("/purchases", reservationHandler.Purchase)

		// Alert routes
		r.Get("/alerts", alertHandler.List)

		// Dashboard
		r.Get("/stats", dashboardHandler.GetStats)
	})

	// Create server
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	// Start server
	go func() {
		log.Info().Str("addr", addr).Msg("server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server")

	// Graceful shutdown
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server stopped")
}
