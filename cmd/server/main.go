package main // Entry point package

import (
	"context"
	"log" // Logging library
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"    // .env loader for local development
	"github.com/labstack/echo/v4" // Echo web framework

	"github.com/turftown/turf-booking/internal/config"
	"github.com/turftown/turf-booking/internal/database"
	"github.com/turftown/turf-booking/internal/handler"
	"github.com/turftown/turf-booking/internal/middleware"
	"github.com/turftown/turf-booking/internal/payment"
	"github.com/turftown/turf-booking/internal/queue"
	"github.com/turftown/turf-booking/internal/repository"
	"github.com/turftown/turf-booking/internal/router"
	"github.com/turftown/turf-booking/internal/sweeper"
)

func main() {
	// Load .env when present; real deployments set env vars directly.
	_ = godotenv.Load()

	cfg := config.Load() // Load environment config

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	// Redis backs rate limiting and the public response cache.  A nil
	// client disables both rather than blocking startup.
	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Println("redis unavailable; rate limiting and caching disabled")
	}

	gateway, err := payment.New(cfg.OmisePublicKey, cfg.OmiseSecretKey)
	if err != nil {
		log.Fatalf("payment gateway: %v", err)
	}

	// Repositories
	userRepo := repository.NewUserRepo(db)
	tokenRepo := repository.NewTokenRepo(db)
	turfRepo := repository.NewTurfRepo(db)
	slotRepo := repository.NewTimeSlotRepo(db)
	ruleRepo := repository.NewPriceRuleRepo(db)
	bookingRepo := repository.NewBookingRepo(db)

	// Handlers
	authHandler := handler.NewAuthHandler(cfg, userRepo, tokenRepo)
	publicHandler := &handler.PublicHandler{
		TurfRepo:    turfRepo,
		SlotRepo:    slotRepo,
		RuleRepo:    ruleRepo,
		BookingRepo: bookingRepo,
	}
	customerHandler := handler.NewCustomerHandler(turfRepo, slotRepo, ruleRepo, bookingRepo)
	ownerHandler := handler.NewOwnerHandler(turfRepo, slotRepo, ruleRepo, bookingRepo)
	adminHandler := handler.NewAdminHandler(turfRepo, bookingRepo)
	paymentHandler := handler.NewPaymentHandler(gateway, bookingRepo, turfRepo, cfg.Currency)

	e := echo.New() // Create Echo instance
	e.HideBanner = true

	// Token-bucket rate limiting applies to every route; the response
	// cache applies to guest browse routes only.
	e.Use(middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb))
	cacheMW := middleware.NewRedisCache(config.LoadCacheConfig(), rdb)

	router.RegisterRoutes(e) // Health check
	router.RegisterAuth(e, authHandler, cfg.JWTSecret)
	router.RegisterPublic(e, publicHandler, cacheMW)
	router.RegisterCustomer(e, customerHandler, paymentHandler, cfg.JWTSecret)
	router.RegisterOwner(e, ownerHandler, cfg.JWTSecret)
	router.RegisterAdmin(e, adminHandler, cfg.JWTSecret)

	// Consume booking events into the notification log.  The consumer
	// reconnects on its own; a hard failure only loses notifications.
	go func() {
		if err := queue.StartBookingConsumer(); err != nil {
			log.Printf("booking consumer stopped: %v", err)
		}
	}()

	// Background jobs: expire unpaid bookings, complete past ones,
	// purge dead refresh tokens.
	sw := sweeper.New(bookingRepo, tokenRepo, cfg.PendingTTLMin)
	sw.Start()

	addr := ":" + cfg.Port                                // Address string with port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env) // Print startup info

	go func() {
		if err := e.Start(addr); err != nil { // Start HTTP server
			log.Printf("server stopped: %v", err)
		}
	}()

	// Wait for shutdown signal, then drain.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	sw.Stop()
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := e.Shutdown(ctx); err != nil {
		log.Fatalf("shutdown: %v", err)
	}
}
