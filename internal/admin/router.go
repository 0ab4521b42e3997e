package admin

import (
	"github.com/JasonDebnath001/QuickTix-server/internal/bookings"
	"github.com/JasonDebnath001/QuickTix-server/internal/shared/config"
	"github.com/JasonDebnath001/QuickTix-server/internal/shared/middleware"
	"github.com/JasonDebnath001/QuickTix-server/internal/shows"

	"github.com/gin-gonic/gin"
)

// SetupAdminRoutes mounts the admin-only views. Listings reuse the owning
// packages' controllers.
func SetupAdminRoutes(rg *gin.RouterGroup, controller *Controller, showsCtrl shows.Controller, bookingsCtrl *bookings.Controller, jwtCfg config.JWTConfig) {
	admin := rg.Group("/admin")
	admin.Use(middleware.JWTAuth(jwtCfg), middleware.RequireAdmin())
	{
		admin.GET("/dashboard", controller.GetDashboard)  // GET /api/v1/admin/dashboard
		admin.GET("/shows", showsCtrl.ListUpcomingShows)  // GET /api/v1/admin/shows
		admin.GET("/bookings", bookingsCtrl.ListBookings) // GET /api/v1/admin/bookings?limit=&offset=
	}
}
