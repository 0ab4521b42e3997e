package users

import (
	"github.com/JasonDebnath001/QuickTix-server/internal/shared/config"
	"github.com/JasonDebnath001/QuickTix-server/internal/shared/middleware"

	"github.com/gin-gonic/gin"
)

// SetupUserRoutes registers the signed-in user's routes
func SetupUserRoutes(rg *gin.RouterGroup, controller *Controller, jwtCfg config.JWTConfig) {
	users := rg.Group("/users")
	users.Use(middleware.JWTAuth(jwtCfg))
	{
		users.GET("/me", controller.GetProfile)             // GET /api/v1/users/me
		users.GET("/bookings", controller.GetBookings)      // GET /api/v1/users/bookings
		users.POST("/favorites", controller.ToggleFavorite) // POST /api/v1/users/favorites
		users.GET("/favorites", controller.GetFavorites)    // GET /api/v1/users/favorites
	}
}
