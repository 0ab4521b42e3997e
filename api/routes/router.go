package routes

import (
	"net/http"
	"time"

	"github.com/JasonDebnath001/QuickTix-server/api/docs"
	"github.com/JasonDebnath001/QuickTix-server/internal/admin"
	"github.com/JasonDebnath001/QuickTix-server/internal/auth"
	"github.com/JasonDebnath001/QuickTix-server/internal/bookings"
	"github.com/JasonDebnath001/QuickTix-server/internal/catalog"
	"github.com/JasonDebnath001/QuickTix-server/internal/notifications"
	"github.com/JasonDebnath001/QuickTix-server/internal/payments"
	"github.com/JasonDebnath001/QuickTix-server/internal/release"
	"github.com/JasonDebnath001/QuickTix-server/internal/shared/clock"
	"github.com/JasonDebnath001/QuickTix-server/internal/shared/config"
	"github.com/JasonDebnath001/QuickTix-server/internal/shared/database"
	"github.com/JasonDebnath001/QuickTix-server/internal/shows"
	"github.com/JasonDebnath001/QuickTix-server/internal/users"
	"github.com/JasonDebnath001/QuickTix-server/pkg/cache"
	"github.com/JasonDebnath001/QuickTix-server/pkg/logger"

	"github.com/gin-gonic/gin"
)

// Dependencies are the long-lived collaborators built in main.
type Dependencies struct {
	Mailer  *notifications.Dispatcher
	Gateway payments.Gateway
	Catalog catalog.Provider
	Cache   cache.Service
	Clock   clock.Clock
	Logger  *logger.Logger
}

// Router holds all route dependencies
type Router struct {
	config *config.Config
	db     *database.DB

	scheduler *release.Scheduler

	authController     *auth.Controller
	showsController    shows.Controller
	bookingsController *bookings.Controller
	paymentsController payments.Controller
	usersController    *users.Controller
	adminController    *admin.Controller

	bookingService bookings.Service
}

// NewRouter builds every module. Services are shared by the HTTP layer and
// the background jobs.
func NewRouter(cfg *config.Config, db *database.DB, deps Dependencies) *Router {
	if deps.Clock == nil {
		deps.Clock = clock.NewSystem()
	}
	if deps.Logger == nil {
		deps.Logger = logger.GetDefault()
	}
	if deps.Cache == nil {
		deps.Cache = cache.NewService(db.GetRedisClient())
	}

	pg := db.GetPostgreSQL()
	tx := database.NewTransactor(pg)

	userRepo := users.NewRepository(pg)
	showRepo := shows.NewRepository(pg)

	showService := shows.NewService(shows.Deps{
		Repo:       showRepo,
		Tx:         tx,
		Catalog:    deps.Catalog,
		Recipients: userRepo,
		Announcer:  deps.Mailer,
		Cache:      deps.Cache,
		Clock:      deps.Clock,
		ClientURL:  cfg.Payment.ClientOrigin,
		Logger:     deps.Logger,
	})

	scheduler := release.NewScheduler(release.NewRepository(pg), cfg.Booking, deps.Clock, deps.Logger)

	bookingService := bookings.NewService(bookings.Config{
		HoldDuration:   cfg.Booking.HoldDuration,
		GatewayTimeout: cfg.Payment.GatewayTimeout,
		Currency:       cfg.Payment.Currency,
	}, bookings.Deps{
		Repo:      bookings.NewRepository(pg),
		Shows:     showRepo,
		SeatCache: showService,
		Tx:        tx,
		Scheduler: scheduler,
		Gateway:   deps.Gateway,
		Users:     userRepo,
		Mailer:    deps.Mailer,
		Clock:     deps.Clock,
		Logger:    deps.Logger,
	})
	scheduler.SetReleaser(bookingService)

	reconciler := payments.NewReconciler(deps.Gateway, bookingService, deps.Cache, deps.Logger)
	userService := users.NewService(userRepo, tx, showRepo, bookingService)

	adminService := admin.NewService(admin.Deps{
		Bookings: bookingService,
		Shows:    showRepo,
		Users:    userService,
		Cache:    deps.Cache,
		Clock:    deps.Clock,
		Logger:   deps.Logger,
	})

	return &Router{
		config:             cfg,
		db:                 db,
		scheduler:          scheduler,
		authController:     auth.NewController(auth.NewService(auth.NewRepository(pg), cfg.JWT, deps.Clock, deps.Logger)),
		showsController:    shows.NewController(showService),
		bookingsController: bookings.NewController(bookingService, showService),
		paymentsController: payments.NewController(reconciler, deps.Logger),
		usersController:    users.NewController(userService),
		adminController:    admin.NewController(adminService),
		bookingService:     bookingService,
	}
}

// Scheduler returns the release scheduler for recovery and the sweep job.
func (r *Router) Scheduler() *release.Scheduler {
	return r.scheduler
}

// BookingService returns the booking workflow for the reminder job.
func (r *Router) BookingService() bookings.Service {
	return r.bookingService
}

// SetupRoutes configures all application routes
func (r *Router) SetupRoutes(engine *gin.Engine) {
	// Health check and basic info endpoints
	r.setupHealthRoutes(engine)

	docs.Register(engine)

	api := engine.Group(r.config.GetAPIBasePath())
	{
		auth.SetupAuthRoutes(api, r.authController, r.config.JWT)
		shows.SetupShowRoutes(api, r.showsController, r.config.JWT)
		bookings.SetupBookingRoutes(api, r.bookingsController, r.config.JWT)
		payments.SetupPaymentRoutes(api, r.paymentsController)
		users.SetupUserRoutes(api, r.usersController, r.config.JWT)
		admin.SetupAdminRoutes(api, r.adminController, r.showsController, r.bookingsController, r.config.JWT)
	}
}

// setupHealthRoutes sets up health check and system status routes
func (r *Router) setupHealthRoutes(engine *gin.Engine) {
	engine.GET("/health", func(c *gin.Context) {
		if err := r.db.HealthCheck(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":    "unhealthy",
				"error":     err.Error(),
				"timestamp": time.Now(),
				"service":   "quicktix-server",
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"status":    "healthy",
			"timestamp": time.Now(),
			"service":   "quicktix-server",
		})
	})

	engine.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "pong",
			"version": r.config.APIVersion,
		})
	})

	engine.GET("/status", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":      "operational",
			"api_version": r.config.APIVersion,
			"timestamp":   time.Now(),
		})
	})
}
