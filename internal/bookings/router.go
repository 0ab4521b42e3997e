package bookings

import (
	"github.com/JasonDebnath001/QuickTix-server/internal/shared/config"
	"github.com/JasonDebnath001/QuickTix-server/internal/shared/constants"
	"github.com/JasonDebnath001/QuickTix-server/internal/shared/middleware"

	"github.com/gin-gonic/gin"
)

// SetupBookingRoutes configures all booking-related routes
func SetupBookingRoutes(rg *gin.RouterGroup, controller *Controller, jwtCfg config.JWTConfig) {
	public := rg.Group("/bookings")
	{
		public.GET("/occupied-seats", controller.OccupiedSeatsByQuery) // GET /api/v1/bookings/occupied-seats?showId=
		public.GET("/seats/:showId", controller.OccupiedSeatsByParam)  // GET /api/v1/bookings/seats/:showId
	}

	bookings := rg.Group("/bookings")
	bookings.Use(middleware.JWTAuth(jwtCfg), middleware.RequireRoles(constants.RoleUser, constants.RoleAdmin))
	{
		bookings.POST("/reserve", controller.Reserve) // POST /api/v1/bookings/reserve
	}
}

// Reservation flow:
// 1. Client reads taken seats with GET /bookings/seats/:showId
// 2. POST /bookings/reserve claims seats and returns the checkout redirect
// 3. The provider webhook marks the booking paid
// 4. Unpaid bookings are released when their hold expires
