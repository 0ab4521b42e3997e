package shows

import (
	"github.com/JasonDebnath001/QuickTix-server/internal/shared/config"
	"github.com/JasonDebnath001/QuickTix-server/internal/shared/middleware"

	"github.com/gin-gonic/gin"
)

func SetupShowRoutes(router *gin.RouterGroup, controller Controller, jwtCfg config.JWTConfig) {
	publicShows := router.Group("/shows")
	{
		publicShows.GET("", controller.ListUpcomingMovies)     // GET /api/v1/shows - Movies with upcoming shows
		publicShows.GET("/:movieId", controller.GetMovieShows) // GET /api/v1/shows/:movieId - Show times grouped by date
	}

	adminShows := router.Group("/shows")
	adminShows.Use(middleware.JWTAuth(jwtCfg), middleware.RequireAdmin())
	{
		adminShows.GET("/now-playing", controller.NowPlaying) // GET /api/v1/shows/now-playing - Catalog proxy
		adminShows.POST("", controller.AddShows)              // POST /api/v1/shows - Add shows for a movie
	}
}
