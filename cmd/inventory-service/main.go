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

	inventoryevents "github.com/inelac/inventory-backend/internal/inventory/events"
	inventoryhandler "github.com/inelac/inventory-backend/internal/inventory/handler"
	inventoryrepo "github.com/inelac/inventory-backend/internal/inventory/repository"
	inventoryservice "github.com/inelac/inventory-backend/internal/inventory/service"
	userhandler "github.com/inelac/inventory-backend/internal/user/handler"
	"github.com/inelac/inventory-backend/internal/user/jwt"
	userrepo "github.com/inelac/inventory-backend/internal/user/repository"
	userservice "github.com/inelac/inventory-backend/internal/user/service"
	"github.com/inelac/inventory-backend/pkg/cache"
	"github.com/inelac/inventory-backend/pkg/config"
	"github.com/inelac/inventory-backend/pkg/database"
	"github.com/inelac/inventory-backend/pkg/httputil"
	"github.com/inelac/inventory-backend/pkg/logger"
	"github.com/inelac/inventory-backend/pkg/messaging"
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

	// Connect to database
	db, err := database.New(&cfg.Database, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	// Connect to RabbitMQ
	rmq, err := messaging.New(&cfg.RabbitMQ, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to RabbitMQ")
	}
	defer rmq.Close()

	// Initialize event publisher
	amqpPublisher, err := messaging.NewPublisher(rmq, messaging.ExchangeInventoryEvents, "inventory-service", log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create event publisher")
	}
	publisher := inventoryevents.NewPublisher(amqpPublisher, log)

	// Optional Redis cache for dashboard aggregates (nil when not configured)
	dashboardCache := cache.New(&cfg.Redis, log)
	defer dashboardCache.Close()

	// Initialize repositories
	itemRepo := inventoryrepo.NewItemRepository(db)
	ledgerRepo := inventoryrepo.NewLedgerRepository(db)
	notificationRepo := inventoryrepo.NewNotificationRepository(db)
	locationRepo := inventoryrepo.NewLocationRepository(db)
	accountRepo := userrepo.NewUserRepository(db)

	// Initialize services
	jwtManager := jwt.NewManager(&cfg.JWT)
	userService := userservice.NewUserService(accountRepo, jwtManager, log)
	itemService := inventoryservice.NewItemService(itemRepo, log)
	reconcileService := inventoryservice.NewReconciliationService(db, itemRepo, ledgerRepo, notificationRepo, publisher, log)
	notificationService := inventoryservice.NewNotificationService(notificationRepo, itemRepo, log)
	dashboardService := inventoryservice.NewDashboardService(itemRepo, dashboardCache, log)
	exportService := inventoryservice.NewExportService(ledgerRepo, log)
	locationService := inventoryservice.NewLocationService(locationRepo, itemRepo, log)

	// Initialize handlers
	userHandler := userhandler.NewUserHandler(userService, log)
	itemHandler := inventoryhandler.NewItemHandler(itemService, reconcileService, dashboardService, log)
	ledgerHandler := inventoryhandler.NewLedgerHandler(ledgerRepo, exportService, log)
	notificationHandler := inventoryhandler.NewNotificationHandler(notificationService, log)
	dashboardHandler := inventoryhandler.NewDashboardHandler(dashboardService, log)
	locationHandler := inventoryhandler.NewLocationHandler(locationService, log)

	// Create router
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RealIP)
	r.Use(httputil.RequestID)
	r.Use(httputil.Logger(log))
	r.Use(httputil.Recoverer(log))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID", "Content-Disposition"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		httputil.JSON(w, http.StatusOK, map[string]interface{}{
			"status":   "healthy",
			"service":  "inventory-service",
			"database": db.Health(r.Context()),
			"rabbitmq": rmq.Health(),
			"cache":    dashboardCache.Health(r.Context()),
		})
	})

	// API routes
	r.Route("/api/v1", func(r chi.Router) {
		// Public routes
		r.Post("/auth/login", userHandler.Login)

		// Authenticated routes
		r.Group(func(r chi.Router) {
			r.Use(httputil.Auth(jwtManager))

			r.Get("/auth/me", userHandler.Me)
			r.Post("/auth/change-password", userHandler.ChangePassword)

			// Account management (administrators only)
			r.Route("/users", func(r chi.Router) {
				r.Use(httputil.RequireAdministrator)
				r.Get("/", userHandler.List)
				r.Post("/", userHandler.Create)
				r.Get("/{id}", userHandler.Get)
				r.Put("/{id}", userHandler.Update)
				r.Delete("/{id}", userHandler.Delete)
			})

			r.Route("/inventory", func(r chi.Router) {
				// Inventory items
				r.Route("/items", func(r chi.Router) {
					r.Get("/", itemHandler.List)
					r.Post("/", itemHandler.Create)
					r.Get("/{id}", itemHandler.Get)
					r.Put("/{id}", itemHandler.Update)
					r.Delete("/{id}", itemHandler.Delete)
					r.Post("/{id}/movements", itemHandler.ApplyMovement)
					r.Post("/{id}/retained", itemHandler.DisposeRetained)
				})

				// Movement ledger
				r.Route("/ledger", func(r chi.Router) {
					r.Get("/", ledgerHandler.List)
					r.Get("/export", ledgerHandler.Export)
				})

				// Stock-depletion notifications
				r.Route("/notifications", func(r chi.Router) {
					r.Get("/", notificationHandler.ListRecent)
					r.Get("/depleted", notificationHandler.ListDepleted)
				})

				// Warehouse locations
				r.Route("/locations", func(r chi.Router) {
					r.Get("/", locationHandler.List)
					r.Post("/", locationHandler.Create)
					r.Get("/{id}", locationHandler.Get)
					r.Put("/{id}", locationHandler.Update)
					r.Delete("/{id}", locationHandler.Delete)
				})

				// Dashboard
				r.Get("/dashboard/stats", dashboardHandler.Stats)
			})
		})
	})

	// Start server
	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		log.Info().Str("addr", srv.Addr).Msg("HTTP server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server exited")
}
