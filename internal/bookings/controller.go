package bookings

import (
	"context"
	"errors"
	"net/http"

	"github.com/JasonDebnath001/QuickTix-server/internal/shared/apperr"
	"github.com/JasonDebnath001/QuickTix-server/internal/shared/middleware"
	"github.com/JasonDebnath001/QuickTix-server/internal/shared/utils/response"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// SeatReader serves the public seat list. shows.Service satisfies it.
type SeatReader interface {
	OccupiedSeats(ctx context.Context, showID uuid.UUID) ([]string, error)
}

type Controller struct {
	service   Service
	seats     SeatReader
	validator *validator.Validate
}

func NewController(service Service, seats SeatReader) *Controller {
	return &Controller{service: service, seats: seats, validator: validator.New()}
}

// Reserve handles POST /api/v1/bookings/reserve
func (c *Controller) Reserve(ctx *gin.Context) {
	userIDStr, ok := middleware.UserID(ctx)
	if !ok {
		response.RespondJSON(ctx, "error", http.StatusUnauthorized, "User not authenticated", nil, nil)
		return
	}
	userID, err := uuid.Parse(userIDStr)
	if err != nil {
		response.RespondJSON(ctx, "error", http.StatusUnauthorized, "Invalid user ID", nil, nil)
		return
	}

	var req ReserveRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid request body", nil, err.Error())
		return
	}
	if err := c.validator.Struct(req); err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Validation failed", nil, err.Error())
		return
	}

	result, err := c.service.Reserve(ctx.Request.Context(), userID, uuid.MustParse(req.ShowID), req.Seats, ctx.GetHeader("Origin"))
	if err != nil {
		c.respondReserveError(ctx, err)
		return
	}

	response.RespondJSON(ctx, "success", http.StatusCreated, "Seats reserved, complete payment to confirm", result, nil)
}

func (c *Controller) respondReserveError(ctx *gin.Context, err error) {
	var unavailable *apperr.SeatUnavailableError
	switch {
	case errors.As(err, &unavailable):
		response.RespondJSON(ctx, "error", http.StatusConflict, "Selected Seats Are Not Available", nil, gin.H{"seats": unavailable.Seats})
	case errors.Is(err, apperr.ErrShowNotFound):
		response.RespondJSON(ctx, "error", http.StatusNotFound, "Show not found", nil, nil)
	case errors.Is(err, apperr.ErrInvalidSeatSelection):
		response.RespondJSON(ctx, "error", http.StatusBadRequest, err.Error(), nil, nil)
	case errors.Is(err, apperr.ErrGateway):
		response.RespondJSON(ctx, "error", http.StatusBadGateway, "Payment provider unavailable, seats were released", nil, nil)
	default:
		response.RespondJSON(ctx, "error", http.StatusInternalServerError, "Failed to reserve seats", nil, err.Error())
	}
}

// OccupiedSeatsByQuery handles GET /api/v1/bookings/occupied-seats?showId=
func (c *Controller) OccupiedSeatsByQuery(ctx *gin.Context) {
	var q OccupiedSeatsQuery
	if err := ctx.ShouldBindQuery(&q); err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid query parameters", nil, err.Error())
		return
	}
	c.respondOccupied(ctx, q.ShowID)
}

// OccupiedSeatsByParam handles GET /api/v1/bookings/seats/:showId
func (c *Controller) OccupiedSeatsByParam(ctx *gin.Context) {
	c.respondOccupied(ctx, ctx.Param("showId"))
}

func (c *Controller) respondOccupied(ctx *gin.Context, raw string) {
	showID, err := uuid.Parse(raw)
	if err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid show ID", nil, nil)
		return
	}

	occupied, err := c.seats.OccupiedSeats(ctx.Request.Context(), showID)
	if err != nil {
		response.RespondJSON(ctx, "error", apperr.HTTPStatus(err), "Failed to retrieve occupied seats", nil, err.Error())
		return
	}
	if occupied == nil {
		occupied = []string{}
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Occupied seats retrieved successfully", OccupiedSeatsResponse{
		ShowID:        showID.String(),
		OccupiedSeats: occupied,
	}, nil)
}

// ListBookings handles GET /api/v1/admin/bookings
func (c *Controller) ListBookings(ctx *gin.Context) {
	var q ListQuery
	if err := ctx.ShouldBindQuery(&q); err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid query parameters", nil, err.Error())
		return
	}

	bookings, err := c.service.ListBookings(ctx.Request.Context(), q.Limit, q.Offset)
	if err != nil {
		response.RespondJSON(ctx, "error", http.StatusInternalServerError, "Failed to retrieve bookings", nil, err.Error())
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Bookings retrieved successfully", BookingListResponse{
		Bookings: bookings,
		Limit:    q.Limit,
		Offset:   q.Offset,
	}, nil)
}
