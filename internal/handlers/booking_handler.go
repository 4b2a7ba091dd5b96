package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/skyvista/flight-booking-backend/internal/middleware"
	"github.com/skyvista/flight-booking-backend/internal/models"
	"github.com/skyvista/flight-booking-backend/internal/services"
)

// BookingHandler handles passenger booking operations
type BookingHandler struct {
	bookings *services.BookingService
	logger   *logrus.Logger
}

// NewBookingHandler creates a new BookingHandler
func NewBookingHandler(bookings *services.BookingService, logger *logrus.Logger) *BookingHandler {
	return &BookingHandler{
		bookings: bookings,
		logger:   logger,
	}
}

// CreateBooking creates a new booking
// @Summary Create a new booking
// @Description Book seats on a flight for one or more passengers
// @Tags Bookings
// @Accept json
// @Produce json
// @Param request body models.CreateBookingRequest true "Booking request"
// @Success 201 {object} models.Booking "Booking created successfully"
// @Failure 400 {object} map[string]interface{} "Invalid request"
// @Failure 404 {object} map[string]interface{} "Flight not found"
// @Failure 409 {object} map[string]interface{} "Seats not available"
// @Security BearerAuth
// @Router /api/v1/bookings [post]
func (h *BookingHandler) CreateBooking(c *gin.Context) {
	userCtx := middleware.MustGetUserContext(c)

	var req models.CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	booking, err := h.bookings.CreateBooking(userCtx.UserID.String(), &req)
	if err != nil {
		h.respondBookingError(c, err)
		return
	}

	c.JSON(http.StatusCreated, booking)
}

// ListBookings lists the authenticated user's bookings
// @Summary List my bookings
// @Tags Bookings
// @Produce json
// @Success 200 {array} models.Booking
// @Security BearerAuth
// @Router /api/v1/bookings [get]
func (h *BookingHandler) ListBookings(c *gin.Context) {
	userCtx := middleware.MustGetUserContext(c)

	bookings, err := h.bookings.ListBookings(userCtx.UserID.String())
	if err != nil {
		h.logger.WithError(err).Error("Failed to list bookings")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list bookings"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"bookings": bookings, "count": len(bookings)})
}

// GetBooking retrieves one booking by ID
// @Summary Get a booking
// @Tags Bookings
// @Produce json
// @Param id path string true "Booking ID"
// @Success 200 {object} models.Booking
// @Failure 404 {object} map[string]interface{} "Booking not found"
// @Security BearerAuth
// @Router /api/v1/bookings/{id} [get]
func (h *BookingHandler) GetBooking(c *gin.Context) {
	userCtx := middleware.MustGetUserContext(c)

	booking, err := h.bookings.GetBooking(c.Param("id"), userCtx.UserID.String(), userCtx.IsAdmin())
	if err != nil {
		h.respondBookingError(c, err)
		return
	}

	c.JSON(http.StatusOK, booking)
}

// GetBookingByReference retrieves one booking by its human-readable reference
// @Summary Get a booking by reference
// @Tags Bookings
// @Produce json
// @Param reference path string true "Booking reference, e.g. FB-20260901-A1B2C3"
// @Success 200 {object} models.Booking
// @Failure 404 {object} map[string]interface{} "Booking not found"
// @Security BearerAuth
// @Router /api/v1/bookings/ref/{reference} [get]
func (h *BookingHandler) GetBookingByReference(c *gin.Context) {
	userCtx := middleware.MustGetUserContext(c)

	booking, err := h.bookings.GetBookingByReference(c.Param("reference"), userCtx.UserID.String(), userCtx.IsAdmin())
	if err != nil {
		h.respondBookingError(c, err)
		return
	}

	c.JSON(http.StatusOK, booking)
}

// GetBookingByPNR retrieves a booking by PNR and passenger last name
// @Summary Retrieve a booking by PNR
// @Description Public retrieve-booking flow: PNR plus a passenger's last name
// @Tags Bookings
// @Produce json
// @Param pnr path string true "Passenger name record"
// @Param last_name query string true "Passenger last name"
// @Success 200 {object} models.Booking
// @Failure 404 {object} map[string]interface{} "Booking not found"
// @Router /api/v1/bookings/pnr/{pnr} [get]
func (h *BookingHandler) GetBookingByPNR(c *gin.Context) {
	lastName := c.Query("last_name")
	if lastName == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "last_name query parameter is required"})
		return
	}

	booking, err := h.bookings.GetBookingByPNR(c.Param("pnr"), lastName)
	if err != nil {
		h.respondBookingError(c, err)
		return
	}

	c.JSON(http.StatusOK, booking)
}

// CancelBooking cancels a booking and computes the refund
// @Summary Cancel a booking
// @Description Cancel inside the cancellation window; seats return to the pool
// @Tags Bookings
// @Accept json
// @Produce json
// @Param id path string true "Booking ID"
// @Param request body models.CancelBookingRequest true "Cancellation reason"
// @Success 200 {object} models.CancellationResult
// @Failure 400 {object} map[string]interface{} "Cancellation window closed"
// @Failure 404 {object} map[string]interface{} "Booking not found"
// @Failure 409 {object} map[string]interface{} "Already cancelled"
// @Security BearerAuth
// @Router /api/v1/bookings/{id}/cancel [post]
func (h *BookingHandler) CancelBooking(c *gin.Context) {
	userCtx := middleware.MustGetUserContext(c)

	var req models.CancelBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Cancellation reason is required", "details": err.Error()})
		return
	}

	result, err := h.bookings.CancelBooking(c.Param("id"), userCtx.UserID.String(), userCtx.IsAdmin(), &req)
	if err != nil {
		h.respondBookingError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// CheckIn checks a booking in before departure
// @Summary Check in
// @Tags Bookings
// @Produce json
// @Param id path string true "Booking ID"
// @Success 200 {object} models.Booking
// @Failure 400 {object} map[string]interface{} "Check-in closed"
// @Failure 409 {object} map[string]interface{} "Already checked in"
// @Security BearerAuth
// @Router /api/v1/bookings/{id}/check-in [post]
func (h *BookingHandler) CheckIn(c *gin.Context) {
	userCtx := middleware.MustGetUserContext(c)

	booking, err := h.bookings.CheckIn(c.Param("id"), userCtx.UserID.String(), userCtx.IsAdmin())
	if err != nil {
		h.respondBookingError(c, err)
		return
	}

	c.JSON(http.StatusOK, booking)
}

// respondBookingError maps booking engine errors onto HTTP responses
func (h *BookingHandler) respondBookingError(c *gin.Context, err error) {
	var validationErr *models.ValidationError
	var seatErr *models.SeatUnavailableError
	var windowErr *models.CancellationWindowClosedError

	switch {
	case errors.As(err, &validationErr):
		c.JSON(http.StatusBadRequest, gin.H{"error": validationErr.Error()})
	case errors.As(err, &seatErr):
		c.JSON(http.StatusConflict, gin.H{
			"error":             "Some seats are no longer available",
			"unavailable_seats": seatErr.SeatNumbers,
		})
	case errors.As(err, &windowErr):
		c.JSON(http.StatusBadRequest, gin.H{
			"error":          windowErr.Error(),
			"cutoff":         windowErr.Cutoff.String(),
			"departure_time": windowErr.Departure,
		})
	case errors.Is(err, models.ErrAlreadyCancelled):
		c.JSON(http.StatusConflict, gin.H{"error": "Booking is already cancelled"})
	case errors.Is(err, models.ErrAlreadyCheckedIn):
		c.JSON(http.StatusConflict, gin.H{"error": "Booking is already checked in"})
	case errors.Is(err, models.ErrBookingNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Booking not found"})
	case errors.Is(err, models.ErrFlightNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Flight not found"})
	default:
		h.logger.WithError(err).Error("Booking operation failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}
