package services

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/skyvista/flight-booking-backend/internal/config"
	"github.com/skyvista/flight-booking-backend/internal/models"
	"github.com/skyvista/flight-booking-backend/pkg/pnr"
)

// FlightReader is the read side of the flight catalog
type FlightReader interface {
	GetByID(flightID string) (*models.Flight, error)
}

// BookingStore is the persistence contract of the booking engine. The
// concrete store must make Create and Cancel atomic: either the booking and
// all its seat mutations commit together, or none do.
type BookingStore interface {
	Create(booking *models.Booking, passengers []models.Passenger) error
	Cancel(booking *models.Booking, reason string, refundAmount float64) error
	GetByID(id string) (*models.Booking, error)
	GetByBookingID(bookingID string) (*models.Booking, error)
	GetByPNR(pnr string) (*models.Booking, error)
	ListByUser(userID string) ([]models.Booking, error)
	SetCheckedIn(id string) error
}

// BookingService implements the booking lifecycle: creation with seat
// allocation and pricing, retrieval, cancellation with refunds, and
// check-in. Policy values (tax rate, fees, refund rate, cutoff) come from
// configuration, never from code.
type BookingService struct {
	flights FlightReader
	seats   SeatReader
	store   BookingStore
	policy  config.BookingConfig
	logger  *logrus.Logger
	now     func() time.Time
}

// NewBookingService creates a new booking service
func NewBookingService(flights FlightReader, seats SeatReader, store BookingStore, policy config.BookingConfig, logger *logrus.Logger) *BookingService {
	return &BookingService{
		flights: flights,
		seats:   seats,
		store:   store,
		policy:  policy,
		logger:  logger,
		now:     time.Now,
	}
}

// CreateBooking validates the request, prices the selected seats and commits
// the booking. Seat availability is pre-checked here for a fast, friendly
// error, but the store re-checks atomically at commit time, so two
// concurrent requests for the same seat can never both succeed.
func (s *BookingService) CreateBooking(userID string, req *models.CreateBookingRequest) (*models.Booking, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	flight, err := s.flights.GetByID(req.FlightID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	if !flight.IsBookable(now) {
		return nil, &models.ValidationError{
			Field:   "flight_id",
			Message: fmt.Sprintf("flight %s is not open for booking", flight.FlightNumber),
		}
	}

	seats, err := s.seats.GetByFlightAndNumbers(flight.ID, req.SelectedSeats)
	if err != nil {
		return nil, fmt.Errorf("failed to load selected seats: %w", err)
	}

	seatsByNumber := make(map[string]models.Seat, len(seats))
	for _, seat := range seats {
		seatsByNumber[seat.SeatNumber] = seat
	}

	unavailable := []string{}
	for _, number := range req.SelectedSeats {
		seat, ok := seatsByNumber[number]
		if !ok {
			return nil, &models.ValidationError{
				Field:   "selected_seats",
				Message: fmt.Sprintf("seat %s does not exist on this flight", number),
			}
		}
		if !seat.IsBookable() {
			unavailable = append(unavailable, number)
		}
	}
	if len(unavailable) > 0 {
		return nil, &models.SeatUnavailableError{SeatNumbers: unavailable}
	}

	// Price from the seats actually assigned, not from what the client sent.
	basePrice := 0.0
	passengers := make([]models.Passenger, len(req.Passengers))
	for i, input := range req.Passengers {
		seat := seatsByNumber[req.SelectedSeats[i]]
		basePrice += seat.PriceFor(flight)
		passengers[i] = models.Passenger{
			Ordinal:        i,
			Title:          input.Title,
			FirstName:      input.FirstName,
			LastName:       input.LastName,
			DateOfBirth:    input.DateOfBirth,
			Gender:         input.Gender,
			Nationality:    input.Nationality,
			PassportNumber: input.PassportNumber,
			MealPreference: input.MealPreference,
			SeatNumber:     seat.SeatNumber,
			SeatClass:      seat.Class,
		}
	}

	taxes := round2(basePrice * s.policy.TaxRate)
	fees := s.policy.ServiceFee

	bookingID, err := pnr.GenerateBookingID()
	if err != nil {
		return nil, err
	}
	record, err := pnr.GeneratePNR()
	if err != nil {
		return nil, err
	}

	booking := &models.Booking{
		BookingID:      bookingID,
		PNR:            record,
		UserID:         userID,
		FlightID:       flight.ID,
		ContactDetails: req.ContactDetails,
		Pricing: models.BookingPricing{
			BasePrice:   round2(basePrice),
			Taxes:       taxes,
			Fees:        fees,
			TotalAmount: round2(basePrice + taxes + fees),
		},
		BookingStatus: models.BookingStatusConfirmed,
		TransactionID: "TXN-" + uuid.New().String(),
	}

	if err := s.store.Create(booking, passengers); err != nil {
		return nil, err
	}

	booking.Flight = flight

	s.logger.WithFields(logrus.Fields{
		"booking_id":   booking.BookingID,
		"pnr":          booking.PNR,
		"flight":       flight.FlightNumber,
		"seats":        booking.SelectedSeats,
		"total_amount": booking.Pricing.TotalAmount,
	}).Info("Booking confirmed")

	return booking, nil
}

// GetBooking retrieves a booking by internal ID, enforcing ownership.
// Admins can read any booking; other users get not-found for bookings that
// are not theirs.
func (s *BookingService) GetBooking(id, userID string, isAdmin bool) (*models.Booking, error) {
	booking, err := s.store.GetByID(id)
	if err != nil {
		return nil, err
	}
	return s.presentBooking(booking, userID, isAdmin)
}

// GetBookingByReference retrieves a booking by its human-readable reference
func (s *BookingService) GetBookingByReference(bookingID, userID string, isAdmin bool) (*models.Booking, error) {
	booking, err := s.store.GetByBookingID(bookingID)
	if err != nil {
		return nil, err
	}
	return s.presentBooking(booking, userID, isAdmin)
}

// GetBookingByPNR retrieves a booking by PNR and passenger last name.
// The last-name check stands in for ownership on the unauthenticated
// retrieve-booking flow.
func (s *BookingService) GetBookingByPNR(record, lastName string) (*models.Booking, error) {
	booking, err := s.store.GetByPNR(record)
	if err != nil {
		return nil, err
	}

	matched := false
	for _, p := range booking.Passengers {
		if strings.EqualFold(p.LastName, lastName) {
			matched = true
			break
		}
	}
	if !matched {
		return nil, models.ErrBookingNotFound
	}

	return s.attachFlight(booking)
}

// ListBookings retrieves the user's bookings, newest first, with derived
// statuses resolved against each flight's arrival time.
func (s *BookingService) ListBookings(userID string) ([]models.Booking, error) {
	bookings, err := s.store.ListByUser(userID)
	if err != nil {
		return nil, err
	}

	for i := range bookings {
		if _, err := s.attachFlight(&bookings[i]); err != nil {
			return nil, err
		}
	}

	return bookings, nil
}

// CancelBooking cancels a booking inside the cancellation window, releasing
// its seats and computing the refund from the configured refund rate.
func (s *BookingService) CancelBooking(id, userID string, isAdmin bool, req *models.CancelBookingRequest) (*models.CancellationResult, error) {
	booking, err := s.store.GetByID(id)
	if err != nil {
		return nil, err
	}
	if !isAdmin && booking.UserID != userID {
		return nil, models.ErrBookingNotFound
	}

	flight, err := s.flights.GetByID(booking.FlightID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	if booking.BookingStatus == models.BookingStatusCancelled {
		return nil, models.ErrAlreadyCancelled
	}
	if !booking.CanBeCancelled(now, flight.Departure.Time, s.policy.CancellationCutoff) {
		return nil, &models.CancellationWindowClosedError{
			Cutoff:    s.policy.CancellationCutoff,
			Departure: flight.Departure.Time,
		}
	}

	refund := round2(booking.Pricing.TotalAmount * s.policy.RefundRate)

	if err := s.store.Cancel(booking, req.Reason, refund); err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"booking_id":    booking.BookingID,
		"pnr":           booking.PNR,
		"refund_amount": refund,
		"reason":        req.Reason,
	}).Info("Booking cancelled")

	return &models.CancellationResult{
		BookingID:       booking.BookingID,
		PNR:             booking.PNR,
		BookingStatus:   models.BookingStatusCancelled,
		RefundAmount:    refund,
		RefundingWithin: fmt.Sprintf("%dh", s.policy.RefundProcessingHours),
	}, nil
}

// CheckIn marks a confirmed booking as checked in. Check-in closes once the
// flight has departed.
func (s *BookingService) CheckIn(id, userID string, isAdmin bool) (*models.Booking, error) {
	booking, err := s.store.GetByID(id)
	if err != nil {
		return nil, err
	}
	if !isAdmin && booking.UserID != userID {
		return nil, models.ErrBookingNotFound
	}

	flight, err := s.flights.GetByID(booking.FlightID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	if booking.BookingStatus != models.BookingStatusConfirmed || now.After(flight.Departure.Time) {
		return nil, &models.ValidationError{
			Field:   "booking",
			Message: "check-in is only available for confirmed bookings before departure",
		}
	}

	if err := s.store.SetCheckedIn(booking.ID); err != nil {
		return nil, err
	}

	booking.IsCheckedIn = true
	booking.Flight = flight

	s.logger.WithFields(logrus.Fields{
		"booking_id": booking.BookingID,
		"pnr":        booking.PNR,
	}).Info("Passenger checked in")

	return booking, nil
}

func (s *BookingService) presentBooking(booking *models.Booking, userID string, isAdmin bool) (*models.Booking, error) {
	if !isAdmin && booking.UserID != userID {
		return nil, models.ErrBookingNotFound
	}
	return s.attachFlight(booking)
}

// attachFlight loads the flight and resolves the booking's derived status:
// a confirmed booking whose flight has arrived presents as completed.
func (s *BookingService) attachFlight(booking *models.Booking) (*models.Booking, error) {
	flight, err := s.flights.GetByID(booking.FlightID)
	if err != nil {
		return nil, err
	}
	booking.Flight = flight
	booking.BookingStatus = booking.EffectiveStatus(s.now(), flight.Arrival.Time)
	return booking, nil
}

// round2 rounds to cents. Pricing math stays on two decimal places so the
// committed breakdown always sums exactly.
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
