package users

import (
	"errors"
	"net/http"

	"github.com/JasonDebnath001/QuickTix-server/internal/shared/middleware"
	"github.com/JasonDebnath001/QuickTix-server/internal/shared/utils/response"
	"github.com/JasonDebnath001/QuickTix-server/internal/shows"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

type Controller struct {
	service   Service
	validator *validator.Validate
}

func NewController(service Service) *Controller {
	return &Controller{service: service, validator: validator.New()}
}

func (c *Controller) caller(ctx *gin.Context) (uuid.UUID, bool) {
	raw, ok := middleware.UserID(ctx)
	if !ok {
		response.RespondJSON(ctx, "error", http.StatusUnauthorized, "User not authenticated", nil, nil)
		return uuid.Nil, false
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		response.RespondJSON(ctx, "error", http.StatusUnauthorized, "Invalid user identity", nil, nil)
		return uuid.Nil, false
	}
	return id, true
}

func (c *Controller) GetProfile(ctx *gin.Context) {
	userID, ok := c.caller(ctx)
	if !ok {
		return
	}
	user, err := c.service.Profile(ctx.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			response.RespondJSON(ctx, "error", http.StatusNotFound, "User not found", nil, nil)
			return
		}
		response.RespondJSON(ctx, "error", http.StatusInternalServerError, "Failed to load profile", nil, err.Error())
		return
	}
	response.RespondJSON(ctx, "success", http.StatusOK, "Profile retrieved successfully", user, nil)
}

func (c *Controller) GetBookings(ctx *gin.Context) {
	userID, ok := c.caller(ctx)
	if !ok {
		return
	}
	list, err := c.service.Bookings(ctx.Request.Context(), userID)
	if err != nil {
		response.RespondJSON(ctx, "error", http.StatusInternalServerError, "Failed to load bookings", nil, err.Error())
		return
	}
	response.RespondJSON(ctx, "success", http.StatusOK, "Bookings retrieved successfully", list, nil)
}

func (c *Controller) ToggleFavorite(ctx *gin.Context) {
	userID, ok := c.caller(ctx)
	if !ok {
		return
	}

	var req ToggleFavoriteRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid request body", nil, err.Error())
		return
	}
	if err := c.validator.Struct(req); err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Validation failed", nil, err.Error())
		return
	}

	resp, err := c.service.ToggleFavorite(ctx.Request.Context(), userID, req.MovieID)
	if err != nil {
		if errors.Is(err, shows.ErrMovieNotFound) {
			response.RespondJSON(ctx, "error", http.StatusNotFound, "Movie not found", nil, nil)
			return
		}
		response.RespondJSON(ctx, "error", http.StatusInternalServerError, "Failed to update favorites", nil, err.Error())
		return
	}

	message := "Favorite removed"
	if resp.Favorited {
		message = "Favorite added"
	}
	response.RespondJSON(ctx, "success", http.StatusOK, message, resp, nil)
}

func (c *Controller) GetFavorites(ctx *gin.Context) {
	userID, ok := c.caller(ctx)
	if !ok {
		return
	}
	movies, err := c.service.Favorites(ctx.Request.Context(), userID)
	if err != nil {
		response.RespondJSON(ctx, "error", http.StatusInternalServerError, "Failed to load favorites", nil, err.Error())
		return
	}
	response.RespondJSON(ctx, "success", http.StatusOK, "Favorites retrieved successfully", movies, nil)
}
