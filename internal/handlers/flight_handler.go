package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/skyvista/flight-booking-backend/internal/models"
	"github.com/skyvista/flight-booking-backend/internal/services"
)

// FlightHandler handles the public flight catalog endpoints
type FlightHandler struct {
	flights *services.FlightService
	logger  *logrus.Logger
}

// NewFlightHandler creates a new FlightHandler
func NewFlightHandler(flights *services.FlightService, logger *logrus.Logger) *FlightHandler {
	return &FlightHandler{
		flights: flights,
		logger:  logger,
	}
}

// SearchFlights lists flights matching the query filters
// @Summary Search flights
// @Tags Flights
// @Produce json
// @Param origin query string false "Departure airport code"
// @Param destination query string false "Arrival airport code"
// @Param date query string false "Departure date (YYYY-MM-DD)"
// @Param status query string false "Flight status filter"
// @Success 200 {array} models.Flight
// @Router /api/v1/flights [get]
func (h *FlightHandler) SearchFlights(c *gin.Context) {
	params := models.FlightSearchParams{
		Origin:      c.Query("origin"),
		Destination: c.Query("destination"),
	}

	if date := c.Query("date"); date != "" {
		parsed, err := time.Parse("2006-01-02", date)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "date must be YYYY-MM-DD"})
			return
		}
		params.Date = &parsed
	}

	if status := c.Query("status"); status != "" {
		flightStatus := models.FlightStatus(status)
		if !flightStatus.Valid() {
			c.JSON(http.StatusBadRequest, gin.H{"error": "unknown flight status"})
			return
		}
		params.Status = &flightStatus
	}

	flights, err := h.flights.SearchFlights(params)
	if err != nil {
		h.logger.WithError(err).Error("Flight search failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to search flights"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"flights": flights, "count": len(flights)})
}

// GetFlight retrieves one flight by ID
// @Summary Get a flight
// @Tags Flights
// @Produce json
// @Param id path string true "Flight ID"
// @Success 200 {object} models.Flight
// @Failure 404 {object} map[string]interface{} "Flight not found"
// @Router /api/v1/flights/{id} [get]
func (h *FlightHandler) GetFlight(c *gin.Context) {
	flight, err := h.flights.GetFlight(c.Param("id"))
	if err != nil {
		if errors.Is(err, models.ErrFlightNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Flight not found"})
			return
		}
		h.logger.WithError(err).Error("Failed to get flight")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get flight"})
		return
	}

	c.JSON(http.StatusOK, flight)
}

// GetSeatMap renders the seat map of a flight
// @Summary Get the seat map of a flight
// @Description Seats grouped by row with availability and effective prices
// @Tags Flights
// @Produce json
// @Param id path string true "Flight ID"
// @Success 200 {object} models.SeatMapResponse
// @Failure 404 {object} map[string]interface{} "Flight not found"
// @Router /api/v1/flights/{id}/seats [get]
func (h *FlightHandler) GetSeatMap(c *gin.Context) {
	seatMap, err := h.flights.GetSeatMap(c.Param("id"))
	if err != nil {
		if errors.Is(err, models.ErrFlightNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Flight not found"})
			return
		}
		h.logger.WithError(err).Error("Failed to build seat map")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to build seat map"})
		return
	}

	c.JSON(http.StatusOK, seatMap)
}
