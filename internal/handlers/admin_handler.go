package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/skyvista/flight-booking-backend/internal/database"
	"github.com/skyvista/flight-booking-backend/internal/models"
	"github.com/skyvista/flight-booking-backend/internal/services"
)

// AdminHandler handles the admin surface: flight management, seat holds,
// dashboard stats and user administration. All routes require the admin role.
type AdminHandler struct {
	flights *services.FlightService
	admin   *database.AdminRepository
	users   *database.UserRepository
	logger  *logrus.Logger
}

// NewAdminHandler creates a new AdminHandler
func NewAdminHandler(flights *services.FlightService, admin *database.AdminRepository, users *database.UserRepository, logger *logrus.Logger) *AdminHandler {
	return &AdminHandler{
		flights: flights,
		admin:   admin,
		users:   users,
		logger:  logger,
	}
}

// CreateFlight creates a flight with its full seat inventory
// @Summary Create a flight
// @Description Creates the flight and generates its seat map from the cabin layout
// @Tags Admin
// @Accept json
// @Produce json
// @Param request body models.CreateFlightRequest true "Flight details"
// @Success 201 {object} models.Flight
// @Failure 400 {object} map[string]interface{} "Invalid request"
// @Security BearerAuth
// @Router /api/v1/admin/flights [post]
func (h *AdminHandler) CreateFlight(c *gin.Context) {
	var req models.CreateFlightRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	flight, err := h.flights.CreateFlight(&req)
	if err != nil {
		var validationErr *models.ValidationError
		switch {
		case errors.As(err, &validationErr):
			c.JSON(http.StatusBadRequest, gin.H{"error": validationErr.Error()})
		case errors.Is(err, models.ErrAirportNotFound):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown airport code"})
		default:
			h.logger.WithError(err).Error("Failed to create flight")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create flight"})
		}
		return
	}

	c.JSON(http.StatusCreated, flight)
}

// UpdateFlightStatus transitions a flight's operational status
// @Summary Update flight status
// @Tags Admin
// @Accept json
// @Produce json
// @Param id path string true "Flight ID"
// @Param request body models.UpdateFlightStatusRequest true "New status"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} map[string]interface{} "Flight not found"
// @Security BearerAuth
// @Router /api/v1/admin/flights/{id}/status [put]
func (h *AdminHandler) UpdateFlightStatus(c *gin.Context) {
	var req models.UpdateFlightStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	flightID := c.Param("id")
	if err := h.flights.UpdateStatus(flightID, req.Status); err != nil {
		var validationErr *models.ValidationError
		switch {
		case errors.As(err, &validationErr):
			c.JSON(http.StatusBadRequest, gin.H{"error": validationErr.Error()})
		case errors.Is(err, models.ErrFlightNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Flight not found"})
		default:
			h.logger.WithError(err).Error("Failed to update flight status")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update flight status"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"flight_id": flightID, "status": req.Status})
}

// UpdateFlight edits the schedule and pricing of a flight
// @Summary Update flight
// @Description Nil fields keep their current values; seat inventory cannot be edited
// @Tags Admin
// @Accept json
// @Produce json
// @Param id path string true "Flight ID"
// @Param request body models.UpdateFlightRequest true "Fields to change"
// @Success 200 {object} models.Flight
// @Failure 404 {object} map[string]interface{} "Flight not found"
// @Security BearerAuth
// @Router /api/v1/admin/flights/{id} [put]
func (h *AdminHandler) UpdateFlight(c *gin.Context) {
	var req models.UpdateFlightRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	flight, err := h.flights.UpdateFlight(c.Param("id"), &req)
	if err != nil {
		var validationErr *models.ValidationError
		switch {
		case errors.As(err, &validationErr):
			c.JSON(http.StatusBadRequest, gin.H{"error": validationErr.Error()})
		case errors.Is(err, models.ErrFlightNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Flight not found"})
		default:
			h.logger.WithError(err).Error("Failed to update flight")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update flight"})
		}
		return
	}

	c.JSON(http.StatusOK, flight)
}

// BlockSeats places administrative holds on seats
// @Summary Block seats
// @Description Blocked seats stay visible in the seat map but cannot be booked
// @Tags Admin
// @Accept json
// @Produce json
// @Param id path string true "Flight ID"
// @Param request body models.BlockSeatsRequest true "Seats to block"
// @Success 200 {object} map[string]interface{}
// @Security BearerAuth
// @Router /api/v1/admin/flights/{id}/seats/block [post]
func (h *AdminHandler) BlockSeats(c *gin.Context) {
	h.setSeatsBlocked(c, true)
}

// UnblockSeats releases administrative seat holds
// @Summary Unblock seats
// @Tags Admin
// @Accept json
// @Produce json
// @Param id path string true "Flight ID"
// @Param request body models.BlockSeatsRequest true "Seats to unblock"
// @Success 200 {object} map[string]interface{}
// @Security BearerAuth
// @Router /api/v1/admin/flights/{id}/seats/unblock [post]
func (h *AdminHandler) UnblockSeats(c *gin.Context) {
	h.setSeatsBlocked(c, false)
}

func (h *AdminHandler) setSeatsBlocked(c *gin.Context, blocked bool) {
	var req models.BlockSeatsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	changed, skipped, err := h.flights.SetSeatsBlocked(c.Param("id"), &req, blocked)
	if err != nil {
		if errors.Is(err, models.ErrFlightNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Flight not found"})
			return
		}
		h.logger.WithError(err).Error("Failed to update seat holds")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update seat holds"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"blocked": blocked,
		"changed": changed,
		"skipped": skipped,
	})
}

// GetDashboardStats returns the admin dashboard rollup
// @Summary Dashboard statistics
// @Tags Admin
// @Produce json
// @Success 200 {object} models.DashboardStats
// @Security BearerAuth
// @Router /api/v1/admin/stats [get]
func (h *AdminHandler) GetDashboardStats(c *gin.Context) {
	stats, err := h.admin.GetDashboardStats()
	if err != nil {
		h.logger.WithError(err).Error("Failed to load dashboard stats")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load dashboard stats"})
		return
	}

	c.JSON(http.StatusOK, stats)
}

// ListUsers lists all accounts
// @Summary List users
// @Tags Admin
// @Produce json
// @Success 200 {array} models.User
// @Security BearerAuth
// @Router /api/v1/admin/users [get]
func (h *AdminHandler) ListUsers(c *gin.Context) {
	users, err := h.users.List()
	if err != nil {
		h.logger.WithError(err).Error("Failed to list users")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list users"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"users": users, "count": len(users)})
}

// UpdateUserStatus activates or deactivates an account
// @Summary Update user status
// @Tags Admin
// @Accept json
// @Produce json
// @Param id path string true "User ID"
// @Param request body models.UpdateUserStatusRequest true "Active flag"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} map[string]interface{} "User not found"
// @Security BearerAuth
// @Router /api/v1/admin/users/{id}/status [put]
func (h *AdminHandler) UpdateUserStatus(c *gin.Context) {
	userID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user ID"})
		return
	}

	var req models.UpdateUserStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	if err := h.users.UpdateStatus(userID, req.IsActive); err != nil {
		if errors.Is(err, models.ErrUserNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
			return
		}
		h.logger.WithError(err).Error("Failed to update user status")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update user status"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"user_id": userID, "is_active": req.IsActive})
}
