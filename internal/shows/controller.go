package shows

import (
	"errors"
	"net/http"

	"github.com/JasonDebnath001/QuickTix-server/internal/catalog"
	"github.com/JasonDebnath001/QuickTix-server/internal/shared/apperr"
	"github.com/JasonDebnath001/QuickTix-server/internal/shared/utils/response"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

type Controller interface {
	AddShows(c *gin.Context)
	ListUpcomingMovies(c *gin.Context)
	GetMovieShows(c *gin.Context)
	ListUpcomingShows(c *gin.Context)
	NowPlaying(c *gin.Context)
}

type controller struct {
	service   Service
	validator *validator.Validate
}

func NewController(service Service) Controller {
	return &controller{service: service, validator: validator.New()}
}

func (ctrl *controller) AddShows(c *gin.Context) {
	var req AddShowsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondJSON(c, "error", http.StatusBadRequest, "Invalid request body", nil, err.Error())
		return
	}
	if err := ctrl.validator.Struct(req); err != nil {
		response.RespondJSON(c, "error", http.StatusBadRequest, "Validation failed", nil, err.Error())
		return
	}

	result, err := ctrl.service.AddShows(c.Request.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidShowInput):
			response.RespondJSON(c, "error", http.StatusBadRequest, err.Error(), nil, nil)
		case errors.Is(err, catalog.ErrMovieNotFound):
			response.RespondJSON(c, "error", http.StatusNotFound, "Movie not found in catalog", nil, nil)
		case errors.Is(err, catalog.ErrUpstream):
			response.RespondJSON(c, "error", http.StatusBadGateway, "Movie catalog unavailable", nil, nil)
		default:
			response.RespondJSON(c, "error", http.StatusInternalServerError, "Failed to add shows", nil, err.Error())
		}
		return
	}

	response.RespondJSON(c, "success", http.StatusCreated, "Show Added Successfully", result, nil)
}

func (ctrl *controller) ListUpcomingMovies(c *gin.Context) {
	movies, err := ctrl.service.ListUpcomingMovies(c.Request.Context())
	if err != nil {
		response.RespondJSON(c, "error", http.StatusInternalServerError, "Failed to retrieve shows", nil, err.Error())
		return
	}
	response.RespondJSON(c, "success", http.StatusOK, "Shows retrieved successfully", movies, nil)
}

func (ctrl *controller) GetMovieShows(c *gin.Context) {
	result, err := ctrl.service.GetMovieShows(c.Request.Context(), c.Param("movieId"))
	if err != nil {
		if errors.Is(err, ErrMovieNotFound) {
			response.RespondJSON(c, "error", http.StatusNotFound, err.Error(), nil, nil)
			return
		}
		response.RespondJSON(c, "error", apperr.HTTPStatus(err), "Failed to retrieve shows", nil, err.Error())
		return
	}
	response.RespondJSON(c, "success", http.StatusOK, "Shows retrieved successfully", result, nil)
}

func (ctrl *controller) ListUpcomingShows(c *gin.Context) {
	shows, err := ctrl.service.ListUpcomingShows(c.Request.Context())
	if err != nil {
		response.RespondJSON(c, "error", http.StatusInternalServerError, "Failed to retrieve shows", nil, err.Error())
		return
	}
	response.RespondJSON(c, "success", http.StatusOK, "Shows retrieved successfully", shows, nil)
}

func (ctrl *controller) NowPlaying(c *gin.Context) {
	movies, err := ctrl.service.NowPlaying(c.Request.Context())
	if err != nil {
		response.RespondJSON(c, "error", http.StatusBadGateway, "Failed to fetch now playing movies", nil, err.Error())
		return
	}
	response.RespondJSON(c, "success", http.StatusOK, "Now playing movies retrieved successfully", movies, nil)
}
