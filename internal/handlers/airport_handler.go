package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/skyvista/flight-booking-backend/internal/database"
	"github.com/skyvista/flight-booking-backend/internal/models"
)

// AirportHandler serves the airport directory
type AirportHandler struct {
	airports *database.AirportRepository
	logger   *logrus.Logger
}

// NewAirportHandler creates a new AirportHandler
func NewAirportHandler(airports *database.AirportRepository, logger *logrus.Logger) *AirportHandler {
	return &AirportHandler{
		airports: airports,
		logger:   logger,
	}
}

// ListAirports lists all airports
// @Summary List airports
// @Tags Airports
// @Produce json
// @Success 200 {array} models.Airport
// @Router /api/v1/airports [get]
func (h *AirportHandler) ListAirports(c *gin.Context) {
	airports, err := h.airports.List()
	if err != nil {
		h.logger.WithError(err).Error("Failed to list airports")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list airports"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"airports": airports, "count": len(airports)})
}

// SearchAirports searches airports by code, name or city
// @Summary Search airports
// @Tags Airports
// @Produce json
// @Param q query string true "Search term"
// @Param limit query int false "Maximum results (default 10)"
// @Success 200 {array} models.Airport
// @Router /api/v1/airports/search [get]
func (h *AirportHandler) SearchAirports(c *gin.Context) {
	term := c.Query("q")
	if term == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "q query parameter is required"})
		return
	}

	limit := 10
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 || parsed > 100 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be between 1 and 100"})
			return
		}
		limit = parsed
	}

	airports, err := h.airports.Search(term, limit)
	if err != nil {
		h.logger.WithError(err).Error("Airport search failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to search airports"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"airports": airports, "count": len(airports)})
}

// GetAirport retrieves one airport by IATA code
// @Summary Get an airport
// @Tags Airports
// @Produce json
// @Param code path string true "IATA airport code"
// @Success 200 {object} models.Airport
// @Failure 404 {object} map[string]interface{} "Airport not found"
// @Router /api/v1/airports/{code} [get]
func (h *AirportHandler) GetAirport(c *gin.Context) {
	airport, err := h.airports.GetByCode(c.Param("code"))
	if err != nil {
		if errors.Is(err, models.ErrAirportNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Airport not found"})
			return
		}
		h.logger.WithError(err).Error("Failed to get airport")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get airport"})
		return
	}

	c.JSON(http.StatusOK, airport)
}
