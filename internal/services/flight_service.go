package services

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/skyvista/flight-booking-backend/internal/models"
)

// FlightStore is the persistence contract of the flight catalog
type FlightStore interface {
	CreateWithSeats(flight *models.Flight, seats []models.Seat) error
	GetByID(flightID string) (*models.Flight, error)
	Search(params models.FlightSearchParams) ([]models.Flight, error)
	UpdateStatus(flightID string, status models.FlightStatus) error
	UpdateSchedule(flight *models.Flight) error
}

// AirportReader resolves airport reference data
type AirportReader interface {
	GetByCode(code string) (*models.Airport, error)
}

// SeatBlocker toggles administrative seat holds
type SeatBlocker interface {
	SetBlocked(flightID string, seatNumbers []string, blocked bool) ([]string, error)
}

// FlightService owns the flight catalog: admin-side creation with seat
// inventory generation, public search and retrieval, status transitions
// and seat blocking.
type FlightService struct {
	store    FlightStore
	airports AirportReader
	blocker  SeatBlocker
	seatMaps *SeatMapService
	logger   *logrus.Logger
}

// NewFlightService creates a new flight service
func NewFlightService(store FlightStore, airports AirportReader, blocker SeatBlocker, seatMaps *SeatMapService, logger *logrus.Logger) *FlightService {
	return &FlightService{
		store:    store,
		airports: airports,
		blocker:  blocker,
		seatMaps: seatMaps,
		logger:   logger,
	}
}

// CreateFlight creates a flight and its full seat inventory in one step.
// The per-class availability counters start equal to the generated seat
// counts, so counters and seat rows agree from the first read.
func (s *FlightService) CreateFlight(req *models.CreateFlightRequest) (*models.Flight, error) {
	if err := req.Validate(); err != nil {
		return nil, &models.ValidationError{Message: err.Error()}
	}

	departure, err := s.airports.GetByCode(req.DepartureAirport)
	if err != nil {
		return nil, err
	}
	arrival, err := s.airports.GetByCode(req.ArrivalAirport)
	if err != nil {
		return nil, err
	}

	seats, err := s.seatMaps.GenerateSeats(req.Cabin)
	if err != nil {
		return nil, &models.ValidationError{Field: "cabin", Message: err.Error()}
	}

	counts := make(map[models.SeatClass]int)
	for _, seat := range seats {
		counts[seat.Class]++
	}

	flight := &models.Flight{
		ID:           uuid.New().String(),
		FlightNumber: req.FlightNumber,
		Airline:      req.Airline,
		Departure: models.RoutePoint{
			AirportCode: departure.Code,
			Airport:     departure,
			Time:        req.DepartureTime,
			Terminal:    req.DepartureTerminal,
			Gate:        req.Gate,
		},
		Arrival: models.RoutePoint{
			AirportCode: arrival.Code,
			Airport:     arrival,
			Time:        req.ArrivalTime,
			Terminal:    req.ArrivalTerminal,
		},
		Aircraft: models.Aircraft{
			Model:      req.AircraftModel,
			TotalSeats: len(seats),
		},
		Pricing: models.FlightPricing{
			Economy:    models.FareClassPricing{Price: req.EconomyPrice, AvailableSeats: counts[models.SeatClassEconomy]},
			Business:   models.FareClassPricing{Price: req.BusinessPrice, AvailableSeats: counts[models.SeatClassBusiness]},
			FirstClass: models.FareClassPricing{Price: req.FirstClassPrice, AvailableSeats: counts[models.SeatClassFirst]},
		},
		Status: models.FlightStatusScheduled,
	}

	for i := range seats {
		seats[i].ID = uuid.New().String()
		seats[i].FlightID = flight.ID
	}

	if err := s.store.CreateWithSeats(flight, seats); err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"flight_id":     flight.ID,
		"flight_number": flight.FlightNumber,
		"route":         fmt.Sprintf("%s-%s", departure.Code, arrival.Code),
		"total_seats":   len(seats),
	}).Info("Flight created")

	return flight, nil
}

// GetFlight retrieves a flight with its airports resolved
func (s *FlightService) GetFlight(flightID string) (*models.Flight, error) {
	flight, err := s.store.GetByID(flightID)
	if err != nil {
		return nil, err
	}
	return s.resolveAirports(flight)
}

// SearchFlights lists flights matching the filters, airports resolved
func (s *FlightService) SearchFlights(params models.FlightSearchParams) ([]models.Flight, error) {
	flights, err := s.store.Search(params)
	if err != nil {
		return nil, err
	}

	// Routes repeat heavily in a result set, so resolve each code once.
	cache := map[string]*models.Airport{}
	for i := range flights {
		if err := s.resolveAirportsCached(&flights[i], cache); err != nil {
			return nil, err
		}
	}

	return flights, nil
}

// GetSeatMap renders the seat map of a flight
func (s *FlightService) GetSeatMap(flightID string) (*models.SeatMapResponse, error) {
	flight, err := s.store.GetByID(flightID)
	if err != nil {
		return nil, err
	}
	return s.seatMaps.BuildSeatMap(flight)
}

// UpdateStatus transitions a flight's operational status
func (s *FlightService) UpdateStatus(flightID string, status models.FlightStatus) error {
	if !status.Valid() {
		return &models.ValidationError{Field: "status", Message: fmt.Sprintf("unknown flight status %q", status)}
	}

	if err := s.store.UpdateStatus(flightID, status); err != nil {
		return err
	}

	s.logger.WithFields(logrus.Fields{
		"flight_id": flightID,
		"status":    status,
	}).Info("Flight status updated")

	return nil
}

// UpdateFlight edits the schedule and pricing of an existing flight.
// Nil request fields keep their current values.
func (s *FlightService) UpdateFlight(flightID string, req *models.UpdateFlightRequest) (*models.Flight, error) {
	flight, err := s.store.GetByID(flightID)
	if err != nil {
		return nil, err
	}

	if req.DepartureTime != nil {
		flight.Departure.Time = *req.DepartureTime
	}
	if req.ArrivalTime != nil {
		flight.Arrival.Time = *req.ArrivalTime
	}
	if req.DepartureTerminal != nil {
		flight.Departure.Terminal = *req.DepartureTerminal
	}
	if req.ArrivalTerminal != nil {
		flight.Arrival.Terminal = *req.ArrivalTerminal
	}
	if req.Gate != nil {
		flight.Departure.Gate = *req.Gate
	}
	if req.EconomyPrice != nil {
		flight.Pricing.Economy.Price = *req.EconomyPrice
	}
	if req.BusinessPrice != nil {
		flight.Pricing.Business.Price = *req.BusinessPrice
	}
	if req.FirstClassPrice != nil {
		flight.Pricing.FirstClass.Price = *req.FirstClassPrice
	}

	if !flight.Arrival.Time.After(flight.Departure.Time) {
		return nil, &models.ValidationError{Field: "arrival_time", Message: "arrival_time must be after departure_time"}
	}
	for _, price := range []float64{flight.Pricing.Economy.Price, flight.Pricing.Business.Price, flight.Pricing.FirstClass.Price} {
		if price <= 0 {
			return nil, &models.ValidationError{Field: "pricing", Message: "fare prices must be positive"}
		}
	}

	if err := s.store.UpdateSchedule(flight); err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"flight_id":      flight.ID,
		"flight_number":  flight.FlightNumber,
		"departure_time": flight.Departure.Time,
	}).Info("Flight updated")

	return s.resolveAirports(flight)
}

// SetSeatsBlocked blocks or unblocks seats for crew or maintenance holds.
// Seats already sold are skipped, and the skipped numbers are returned so
// the admin can see what did not change.
func (s *FlightService) SetSeatsBlocked(flightID string, req *models.BlockSeatsRequest, blocked bool) (changed, skipped []string, err error) {
	if _, err := s.store.GetByID(flightID); err != nil {
		return nil, nil, err
	}

	changed, err = s.blocker.SetBlocked(flightID, req.SeatNumbers, blocked)
	if err != nil {
		return nil, nil, err
	}

	changedSet := make(map[string]bool, len(changed))
	for _, n := range changed {
		changedSet[n] = true
	}
	for _, n := range req.SeatNumbers {
		if !changedSet[n] {
			skipped = append(skipped, n)
		}
	}

	s.logger.WithFields(logrus.Fields{
		"flight_id": flightID,
		"blocked":   blocked,
		"changed":   changed,
		"skipped":   skipped,
		"reason":    req.Reason,
	}).Info("Seat block state updated")

	return changed, skipped, nil
}

func (s *FlightService) resolveAirports(flight *models.Flight) (*models.Flight, error) {
	return flight, s.resolveAirportsCached(flight, map[string]*models.Airport{})
}

func (s *FlightService) resolveAirportsCached(flight *models.Flight, cache map[string]*models.Airport) error {
	for _, point := range []*models.RoutePoint{&flight.Departure, &flight.Arrival} {
		airport, ok := cache[point.AirportCode]
		if !ok {
			var err error
			airport, err = s.airports.GetByCode(point.AirportCode)
			if err != nil {
				return err
			}
			cache[point.AirportCode] = airport
		}
		point.Airport = airport
	}
	return nil
}
