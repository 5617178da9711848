package handlers

import (
	"net/http"

	"maisonette/models"
	"maisonette/services/booking"
	"maisonette/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// BookingHandler serves guest booking and admin booking management.
type BookingHandler struct {
	Service booking.BookingService
	Logger  *zap.Logger
}

func NewBookingHandler(service booking.BookingService, logger *zap.Logger) *BookingHandler {
	return &BookingHandler{Service: service, Logger: logger}
}

// CheckAvailability handles GET /api/bookings/check-availability.
func (h *BookingHandler) CheckAvailability(c *gin.Context) {
	avail, err := h.Service.CheckAvailability(c.Request.Context(), c.Query("unit_id"), c.Query("start"), c.Query("end"))
	if err != nil {
		utils.RespondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, avail)
}

// Create handles POST /api/bookings. Guest bookings always start pending.
func (h *BookingHandler) Create(c *gin.Context) {
	var req models.BookingRequest
	if !bindJSON(c, &req) {
		return
	}
	b, err := h.Service.CreateBooking(c.Request.Context(), req)
	if err != nil {
		utils.RespondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusCreated, b)
}

// AdminList handles GET /api/admin/bookings?unit_id=&status=.
func (h *BookingHandler) AdminList(c *gin.Context) {
	statuses, ok := queryStatuses(c)
	if !ok {
		return
	}
	list, err := h.Service.ListBookings(c.Request.Context(), models.BookingFilter{UnitID: c.Query("unit_id"), Statuses: statuses})
	if err != nil {
		utils.RespondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (h *BookingHandler) AdminGet(c *gin.Context) {
	b, err := h.Service.GetBooking(c.Request.Context(), c.Param("id"))
	if err != nil {
		utils.RespondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, b)
}

func (h *BookingHandler) AdminCreate(c *gin.Context) {
	var req models.AdminBookingRequest
	if !bindJSON(c, &req) {
		return
	}
	b, err := h.Service.AdminCreateBooking(c.Request.Context(), req)
	if err != nil {
		utils.RespondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusCreated, b)
}

func (h *BookingHandler) AdminUpdate(c *gin.Context) {
	var upd models.BookingUpdate
	if !bindJSON(c, &upd) {
		return
	}
	b, err := h.Service.UpdateBooking(c.Request.Context(), c.Param("id"), upd)
	if err != nil {
		utils.RespondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, b)
}

// AdminUpdateStatus handles PUT /api/admin/bookings/:id/status.
func (h *BookingHandler) AdminUpdateStatus(c *gin.Context) {
	var input struct {
		Status models.BookingStatus `json:"status" binding:"required"`
	}
	if !bindJSON(c, &input) {
		return
	}
	b, err := h.Service.UpdateBookingStatus(c.Request.Context(), c.Param("id"), input.Status)
	if err != nil {
		utils.RespondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, b)
}

func (h *BookingHandler) AdminDelete(c *gin.Context) {
	if err := h.Service.DeleteBooking(c.Request.Context(), c.Param("id")); err != nil {
		utils.RespondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "booking deleted"})
}
