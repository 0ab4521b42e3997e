package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/JasonDebnath001/QuickTix-server/api/routes"
	"github.com/JasonDebnath001/QuickTix-server/internal/bookings"
	"github.com/JasonDebnath001/QuickTix-server/internal/catalog"
	"github.com/JasonDebnath001/QuickTix-server/internal/jobs"
	"github.com/JasonDebnath001/QuickTix-server/internal/notifications"
	"github.com/JasonDebnath001/QuickTix-server/internal/payments"
	"github.com/JasonDebnath001/QuickTix-server/internal/release"
	"github.com/JasonDebnath001/QuickTix-server/internal/shared/config"
	"github.com/JasonDebnath001/QuickTix-server/internal/shared/database"
	"github.com/JasonDebnath001/QuickTix-server/internal/shared/middleware"
	"github.com/JasonDebnath001/QuickTix-server/internal/shows"
	"github.com/JasonDebnath001/QuickTix-server/internal/users"
	"github.com/JasonDebnath001/QuickTix-server/pkg/logger"
	"github.com/JasonDebnath001/QuickTix-server/pkg/ratelimit"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	appLogger := logger.GetDefault()

	// Smart environment loading
	if err := godotenv.Load(); err != nil {
		if os.Getenv("GIN_MODE") == "release" || os.Getenv("DOCKER_CONTAINER") == "true" {
			appLogger.Info("Production environment: using container environment variables")
		} else {
			appLogger.Info("No .env file found, using system environment variables")
		}
	} else {
		appLogger.Info("Development environment: loaded .env file")
	}

	cfg := config.Load()
	gin.SetMode(cfg.GinMode)

	appLogger = logger.NewWithOptions(os.Stdout, cfg.LogLevel, cfg.LogPretty)
	logger.SetDefault(appLogger)
	appLogger.Info("starting quicktix",
		slog.String("version", Version),
		slog.String("build_time", BuildTime),
		slog.String("commit", GitCommit),
	)

	db, err := database.InitDB(cfg,
		&users.User{},
		&shows.Movie{},
		&shows.Show{},
		&users.Favorite{},
		&bookings.Booking{},
		&release.Task{},
	)
	if err != nil {
		appLogger.Error("failed to connect", slog.Any("error", err))
		os.Exit(1)
	}
	defer db.Close()

	var rateLimiter *ratelimit.RateLimiter
	if cfg.RateLimit.Enabled {
		rateLimiter = ratelimit.NewRateLimiter(db.GetRedisClient(), ratelimit.FromConfig(cfg.RateLimit))
		appLogger.Info("Rate limiter initialized",
			slog.Duration("window", cfg.RateLimit.WindowDuration),
			slog.Int("default_requests", cfg.RateLimit.DefaultRequests),
		)
	} else {
		appLogger.Info("Rate limiting disabled")
	}

	notificationService, err := notifications.NewService(cfg.Notifications, appLogger)
	if err != nil {
		appLogger.Error("Failed to initialize notification service", slog.Any("error", err))
		os.Exit(1)
	}
	notificationCtx, notificationCancel := context.WithCancel(context.Background())
	defer notificationCancel()
	notificationService.Start(notificationCtx)

	dispatcher := notifications.NewDispatcher(notificationService.Notifier(), cfg.Notifications.SendTimeout, appLogger)

	appRouter := routes.NewRouter(cfg, db, routes.Dependencies{
		Mailer:  dispatcher,
		Gateway: payments.NewStripeGateway(cfg.Payment),
		Catalog: catalog.NewTMDBClient(cfg.Catalog),
		Logger:  appLogger,
	})

	// Holds whose tasks were lost are rebuilt before anything can expire.
	recoverCtx, recoverCancel := context.WithTimeout(context.Background(), 30*time.Second)
	if n, err := appRouter.Scheduler().Recover(recoverCtx); err != nil {
		appLogger.Error("Failed to recover release tasks", slog.Any("error", err))
	} else if n > 0 {
		appLogger.Info("Recovered release tasks", slog.Int("count", n))
	}
	recoverCancel()

	var jobProcessor *jobs.JobProcessor
	if cfg.Jobs.Enabled {
		jobProcessor = jobs.NewJobProcessor(appRouter.Scheduler(), appRouter.BookingService(), jobs.Config{
			SweepInterval:    cfg.Booking.SweepInterval,
			ReminderInterval: cfg.Jobs.ReminderInterval,
		}, appLogger)
		jobProcessor.Start(context.Background())
	}

	srv := &http.Server{
		Addr:           cfg.GetServerAddress(),
		Handler:        setupRouter(cfg, appRouter, rateLimiter, appLogger),
		ReadTimeout:    cfg.ReadTimeout,
		WriteTimeout:   cfg.WriteTimeout,
		IdleTimeout:    cfg.IdleTimeout,
		MaxHeaderBytes: cfg.MaxHeaderBytes,
	}

	go func() {
		appLogger.Info("Server running",
			slog.String("address", cfg.GetServerAddress()),
			slog.String("health_check", fmt.Sprintf("http://localhost:%s/health", cfg.Port)),
			slog.String("api_status", fmt.Sprintf("http://localhost:%s/status", cfg.Port)),
			slog.String("docs", fmt.Sprintf("http://localhost:%s/swagger/index.html", cfg.Port)),
			slog.String("version", cfg.APIVersion),
			slog.Bool("rate_limiting", cfg.RateLimit.Enabled),
			slog.String("notification_transport", cfg.Notifications.Transport),
		)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			appLogger.Error("Server failed", slog.Any("error", err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	appLogger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		appLogger.Error("Forced shutdown", slog.Any("error", err))
	}

	if jobProcessor != nil {
		jobProcessor.Stop()
	}
	dispatcher.Wait()
	if err := notificationService.Stop(); err != nil {
		appLogger.Error("Error stopping notification service", slog.Any("error", err))
	}

	appLogger.Info("Server exited gracefully")
}

func setupRouter(cfg *config.Config, appRouter *routes.Router, rateLimiter *ratelimit.RateLimiter, appLogger *logger.Logger) *gin.Engine {
	engine := gin.New()

	engine.Use(middleware.RequestID(), middleware.RequestLogger(appLogger), gin.Recovery())

	engine.Use(cors.New(cors.Config{
		AllowOriginFunc: func(origin string) bool {
			return !cfg.IsProduction() || origin == cfg.Payment.ClientOrigin
		},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Length", "Content-Type", "Authorization", "X-Request-ID"},
		ExposeHeaders:    []string{"Content-Length", "X-Request-ID", "X-RateLimit-Limit", "X-RateLimit-Remaining", "X-RateLimit-Reset"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	if rateLimiter != nil {
		engine.Use(ratelimit.Middleware(rateLimiter))
	}

	appRouter.SetupRoutes(engine)
	return engine
}
