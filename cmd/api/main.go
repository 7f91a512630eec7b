package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/heliohq/claims-portal/internal/handlers"
	"github.com/heliohq/claims-portal/internal/mailer"
	"github.com/heliohq/claims-portal/internal/repository"
	"github.com/heliohq/claims-portal/internal/service"
	"github.com/heliohq/claims-portal/pkg/auth"
	"github.com/heliohq/claims-portal/pkg/config"
	"github.com/heliohq/claims-portal/pkg/database"
	"github.com/heliohq/claims-portal/pkg/events"
	"github.com/heliohq/claims-portal/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.Error("Invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx := context.Background()
	pool, err := database.Connect(ctx, cfg.Database)
	if err != nil {
		logger.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	redisOpts, err := redis.ParseURL(cfg.Redis.URL)
	if err != nil {
		logger.Error("Invalid Redis URL", "error", err)
		os.Exit(1)
	}
	redisClient := redis.NewClient(redisOpts)
	defer redisClient.Close()

	eventBus, err := events.NewNATSEventBus(cfg.NATS.URL)
	if err != nil {
		logger.Error("Failed to connect to NATS", "error", err)
		os.Exit(1)
	}
	defer eventBus.Close()

	// Mail delivery runs off the bus, decoupled from request handling.
	dispatcher := mailer.NewDispatcher(eventBus, mailer.New(cfg.Email, cfg.Auth.FrontendURL))
	if err := dispatcher.Start(); err != nil {
		logger.Error("Failed to start mail dispatcher", "error", err)
		os.Exit(1)
	}

	userRepo := repository.NewUserRepository(pool)
	adminRepo := repository.NewAdminRepository(pool)
	kycRepo := repository.NewKycRepository(pool)
	formRepo := repository.NewFormRepository(pool)
	referenceRepo := repository.NewReferenceRepository(pool)
	limiter := repository.NewRedisRateLimiter(redisClient)

	authService := service.NewAuthService(userRepo, eventBus, cfg.Auth)
	adminService := service.NewAdminService(adminRepo, userRepo, kycRepo, eventBus, cfg.Auth)
	kycService := service.NewKycService(kycRepo, userRepo, eventBus, cfg.Auth)
	formService := service.NewFormService(formRepo, eventBus)

	cookies := auth.CookieOptions{
		ExpiresDays: cfg.Auth.CookieExpiresDays,
		Production:  cfg.IsProduction(),
		FrontendURL: cfg.Auth.FrontendURL,
	}

	router := handlers.NewRouter(handlers.Deps{
		Config:    cfg,
		Guard:     handlers.NewGuard(cfg.Auth.JWTSecret, userRepo, adminRepo, limiter),
		Auth:      handlers.NewAuthHandlers(authService, cookies),
		AdminAuth: handlers.NewAdminAuthHandlers(adminService, cookies),
		Admin:     handlers.NewAdminHandlers(adminService),
		Kyc:       handlers.NewKycHandlers(kycService, cookies),
		Forms:     handlers.NewFormHandlers(formService),
		Crud:      handlers.NewCrudHandlers(referenceRepo),
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		logger.Info("Shutting down server...")

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			logger.Error("Server shutdown error", "error", err)
		}
	}()

	logger.Info("Starting server", "port", cfg.Server.Port, "env", cfg.Server.Environment)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("Server error", "error", err)
		os.Exit(1)
	}
}
