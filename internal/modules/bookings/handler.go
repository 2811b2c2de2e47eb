package bookings

import (
	"errors"
	"net/http"

	"calbook/internal/pkg/response"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/bookings", h.CreateBooking)
	rg.GET("/bookings", h.ListBookings)
	rg.GET("/bookings/:uid", h.GetBooking)
	rg.POST("/bookings/:uid/reschedule", h.RescheduleBooking)
	rg.POST("/bookings/:uid/cancel", h.CancelBooking)
	rg.POST("/bookings/:uid/mark-absent", h.MarkAbsent)
}

func writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		response.Error(c, http.StatusNotFound, "NOT_FOUND", err.Error())
	case errors.Is(err, ErrValidation):
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
	case errors.Is(err, ErrConflict):
		response.Error(c, http.StatusConflict, "BOOKING_CONFLICT", err.Error())
	case errors.Is(err, ErrDataIntegrity):
		response.Error(c, http.StatusInternalServerError, "DATA_INTEGRITY_ERROR", err.Error())
	default:
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error")
	}
}

func (h *Handler) CreateBooking(c *gin.Context) {
	var req CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}

	result, err := h.service.Create(
		c.Request.Context(),
		c.GetHeader("Authorization"),
		c.GetHeader(HeaderClientID),
		req,
	)
	if err != nil {
		writeError(c, err)
		return
	}

	response.Success(c, http.StatusCreated, result.Data())
}

func (h *Handler) RescheduleBooking(c *gin.Context) {
	var req RescheduleBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}

	view, err := h.service.Reschedule(
		c.Request.Context(),
		c.GetHeader("Authorization"),
		c.GetHeader(HeaderClientID),
		c.Param("uid"),
		req,
	)
	if err != nil {
		writeError(c, err)
		return
	}

	response.Success(c, http.StatusCreated, view)
}

func (h *Handler) CancelBooking(c *gin.Context) {
	var req CancelBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}

	result, err := h.service.Cancel(
		c.Request.Context(),
		c.GetHeader("Authorization"),
		c.GetHeader(HeaderClientID),
		c.Param("uid"),
		req,
	)
	if err != nil {
		writeError(c, err)
		return
	}

	response.Success(c, http.StatusOK, result.Data())
}

func (h *Handler) MarkAbsent(c *gin.Context) {
	var req MarkAbsentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}

	view, err := h.service.MarkAbsent(c.Request.Context(), c.Param("uid"), req)
	if err != nil {
		writeError(c, err)
		return
	}

	response.Success(c, http.StatusOK, view)
}

func (h *Handler) GetBooking(c *gin.Context) {
	view, err := h.service.Get(c.Request.Context(), c.Param("uid"))
	if err != nil {
		writeError(c, err)
		return
	}

	response.Success(c, http.StatusOK, view)
}

func (h *Handler) ListBookings(c *gin.Context) {
	var query ListBookingsQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid query parameters")
		return
	}

	views, err := h.service.List(c.Request.Context(), query)
	if err != nil {
		writeError(c, err)
		return
	}

	response.Success(c, http.StatusOK, views)
}
