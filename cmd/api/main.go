package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/atlas-travel/atlas-auth/internal/auth"
	"github.com/atlas-travel/atlas-auth/internal/background"
	"github.com/atlas-travel/atlas-auth/internal/config"
	"github.com/atlas-travel/atlas-auth/internal/database"
	"github.com/atlas-travel/atlas-auth/internal/handlers"
	middlewareCustom "github.com/atlas-travel/atlas-auth/internal/middleware"
	"github.com/atlas-travel/atlas-auth/internal/repositories"
	"github.com/atlas-travel/atlas-auth/internal/routes"
	"github.com/atlas-travel/atlas-auth/internal/services"
	"github.com/atlas-travel/atlas-auth/internal/web"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}

	logger.Info("configuration loaded", slog.String("env", cfg.Server.Env))

	// Connect to MongoDB
	db, err := database.NewConnection(&cfg.Mongo, logger)
	if err != nil {
		logger.Error("failed to connect to database", slog.Any("error", err))
		os.Exit(1)
	}
	defer db.Close()

	// Initialize repositories and their indexes
	userRepo := repositories.NewUserRepository(db)
	stateRepo := repositories.NewOAuthStateRepository(db)

	indexCtx, indexCancel := context.WithTimeout(context.Background(), 10*time.Second)
	if err := userRepo.EnsureIndexes(indexCtx); err != nil {
		logger.Error("failed to ensure user indexes", slog.Any("error", err))
		os.Exit(1)
	}
	if err := stateRepo.EnsureIndexes(indexCtx); err != nil {
		logger.Error("failed to ensure oauth state indexes", slog.Any("error", err))
		os.Exit(1)
	}
	indexCancel()

	// Session tokens and cookie settings
	tokenManager := auth.NewTokenManager(cfg.Auth.SessionSecret, cfg.Auth.SessionExpiry)
	cookieCfg := auth.CookieConfig{
		Domain:   cfg.Auth.CookieDomain,
		Secure:   cfg.Auth.CookieSecure,
		SameSite: "lax",
	}

	// AWS SES email service
	emailService, err := services.NewAWSSESEmailService(
		cfg.Email.AWSRegion,
		cfg.Email.FromAddress,
		cfg.Server.BaseURL,
		logger,
	)
	if err != nil {
		logger.Error("failed to initialize email service", slog.Any("error", err))
		os.Exit(1)
	}

	// Initialize services
	credentialService := services.NewCredentialService(userRepo, logger)
	resetService := services.NewPasswordResetService(userRepo, emailService, logger)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(credentialService, resetService, userRepo, tokenManager, cookieCfg)
	pageHandler := web.NewPageHandler(logger)

	var googleHandler *handlers.GoogleHandler
	if cfg.Google.Enabled() {
		oauthService := services.NewOAuthService(userRepo, logger)
		googleHandler = handlers.NewGoogleHandler(
			oauthService,
			stateRepo,
			tokenManager,
			cookieCfg,
			cfg.Google.ClientID,
			cfg.Google.ClientSecret,
			cfg.Server.BaseURL,
			logger,
		)
	} else {
		logger.Info("google sign-in disabled, no client credentials configured")
	}

	// Periodic cleanup of expired reset tokens
	cleanupManager := background.NewCleanupManager(userRepo, logger, cfg.Auth.CleanupInterval)

	// Setup CORS middleware
	corsConfig := middlewareCustom.DefaultCORSConfig(cfg.Server.AllowedOrigins)

	// Setup router
	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middlewareCustom.SecurityHeaders(middlewareCustom.SecurityHeadersConfig{Env: cfg.Server.Env}))
	router.Use(middlewareCustom.CORS(corsConfig))
	router.Use(middlewareCustom.SecureLogger(logger, nil))
	router.Use(middleware.Recoverer)
	router.Use(middleware.Timeout(60 * time.Second))

	// Register routes
	routes.RegisterRoutes(router, authHandler, googleHandler, pageHandler, tokenManager)

	// Health check with database
	router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := db.HealthCheck(ctx); err != nil {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusServiceUnavailable)
			w.Write([]byte(`{"status":"unhealthy","database":"down"}`))
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"healthy","database":"up"}`))
	})

	// Create server
	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Start cleanup task
	cleanupCtx, cleanupCancel := context.WithCancel(context.Background())
	defer cleanupCancel()

	go cleanupManager.Start(cleanupCtx)

	// Start server
	go func() {
		logger.Info("starting server", slog.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", slog.Any("error", err))
			os.Exit(1)
		}
	}()

	// Graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	logger.Info("shutdown signal received")

	cleanupCancel()
	cleanupManager.Stop()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", slog.Any("error", err))
		os.Exit(1)
	}

	logger.Info("server stopped gracefully")
}
