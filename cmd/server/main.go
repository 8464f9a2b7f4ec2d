package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"go.uber.org/zap"

	"morak/internal/config"
	"morak/internal/database"
	"morak/internal/handlers"
	"morak/internal/jobs"
	"morak/internal/logging"
	"morak/internal/repository"
	"morak/internal/security"
	"morak/internal/service"
)

func main() {
	// Load configuration
	cfg := config.Load()

	logger, err := logging.New(cfg.IsDevelopment(), cfg.LogLevel)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	if err := cfg.Validate(); err != nil {
		logger.Fatal("invalid configuration", zap.Error(err))
	}

	startup := handlers.NewStartupStatus(
		handlers.StepDatabase,
		handlers.StepMigrations,
		handlers.StepServices,
		handlers.StepJobs,
	)

	// The listener comes up first so /health can report startup progress
	var app atomic.Pointer[http.Handler]
	server := &http.Server{
		Addr:         ":" + cfg.ServerPort,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
		Handler: http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if h := app.Load(); h != nil {
				(*h).ServeHTTP(w, r)
				return
			}
			startupHandler(startup, logger).ServeHTTP(w, r)
		}),
	}

	go func() {
		logger.Info("server starting", zap.String("addr", server.Addr), zap.String("env", cfg.AppEnv))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	ctx := context.Background()

	// Initialize database with config (supports sqlite, postgres, mysql)
	startup.SetCurrentStep(handlers.StepDatabase)
	db, err := database.InitializeWithConfig(cfg)
	if err != nil {
		logger.Fatal("failed to initialize database", zap.Error(err))
	}
	defer db.Close()
	startup.CompleteStep(handlers.StepDatabase)
	logger.Info("database connection established", zap.String("type", cfg.DatabaseType))

	startup.SetCurrentStep(handlers.StepMigrations)
	if err := db.RunMigrations(ctx, database.MigrationSource(cfg.MigrationsPath), logger); err != nil {
		logger.Fatal("failed to run migrations", zap.Error(err))
	}
	startup.CompleteStep(handlers.StepMigrations)

	startup.SetCurrentStep(handlers.StepServices)

	// Initialize repositories
	memberRepo := repository.NewMemberRepository(db)
	tokenRepo := repository.NewTokenRepository(db)
	groupRepo := repository.NewGroupRepository(db)
	mogacoRepo := repository.NewMogacoRepository(db)

	// Initialize services
	issuer := security.NewTokenIssuer(cfg.JWTSecret, cfg.AccessTokenTTL)
	authService := service.NewAuthService(memberRepo, tokenRepo, issuer, cfg.RefreshTokenTTL, logger)
	memberService := service.NewMemberService(authService)

	emailService, err := service.NewEmailService(ctx, cfg.AWSRegion, cfg.SESFromEmail, cfg.SESFromName, cfg.FrontendURL, logger)
	if err != nil {
		logger.Fatal("failed to initialize email service", zap.Error(err))
	}
	groupsService := service.NewGroupsService(groupRepo, memberRepo, emailService, logger)
	mogacoService := service.NewMogacoService(mogacoRepo, groupRepo, logger)

	// Initialize handlers
	authLimiter := security.NewRateLimiter(cfg.AuthRateLimit)
	providers := []handlers.OAuthProvider{
		handlers.NewGitHubProvider(cfg.GitHubClientID, cfg.GitHubClientSecret),
	}

	router := handlers.NewRouter(handlers.RouterDeps{
		Groups:         handlers.NewGroupsHandler(groupsService, logger),
		Members:        handlers.NewMemberHandler(memberService, logger),
		Auth:           handlers.NewAuthHandler(authService, providers, cfg.OAuthRedirectBaseURL, cfg.FrontendURL, logger),
		Mogaco:         handlers.NewMogacoHandler(mogacoService, logger),
		Health:         handlers.NewHealthHandler(db, startup, logger),
		Middleware:     handlers.NewMiddleware(authService, logger),
		AuthLimiter:    authLimiter,
		AllowedOrigins: cfg.CORSAllowedOrigins,
		TrustProxy:     cfg.TrustProxy,
		Logger:         logger,
	})
	startup.CompleteStep(handlers.StepServices)

	startup.SetCurrentStep(handlers.StepJobs)
	scheduler, err := jobs.NewScheduler(authService, authLimiter, logger)
	if err != nil {
		logger.Fatal("failed to schedule background jobs", zap.Error(err))
	}
	scheduler.Start()
	startup.CompleteStep(handlers.StepJobs)

	app.Store(&router)
	startup.MarkReady()
	logger.Info("server ready")

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("server shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", zap.Error(err))
	}
	scheduler.Stop(shutdownCtx)
}

// startupHandler answers /health with progress and everything else with 503
// until the full router is installed
func startupHandler(startup *handlers.StartupStatus, logger *zap.Logger) http.Handler {
	health := handlers.NewHealthHandler(notReady{}, startup, logger)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/health" {
			health.Health(w, r)
			return
		}
		w.Header().Set("Retry-After", "5")
		http.Error(w, "service starting", http.StatusServiceUnavailable)
	})
}

type notReady struct{}

func (notReady) PingContext(context.Context) error {
	return errors.New("database not initialized")
}
