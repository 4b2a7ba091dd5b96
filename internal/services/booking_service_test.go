package services

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/skyvista/flight-booking-backend/internal/config"
	"github.com/skyvista/flight-booking-backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testPolicy = config.BookingConfig{
	TaxRate:               0.10,
	ServiceFee:            25,
	RefundRate:            0.80,
	CancellationCutoff:    24 * time.Hour,
	RefundProcessingHours: 72,
}

// fakeFlightReader serves flights from memory
type fakeFlightReader struct {
	flights map[string]*models.Flight
}

func (f *fakeFlightReader) GetByID(id string) (*models.Flight, error) {
	flight, ok := f.flights[id]
	if !ok {
		return nil, models.ErrFlightNotFound
	}
	return flight, nil
}

// fakeStore is an in-memory BookingStore and SeatReader. Create and Cancel
// mutate seat state under one mutex, mirroring the conditional-update
// semantics of the SQL store.
type fakeStore struct {
	mu       sync.Mutex
	seats    map[string]map[string]*models.Seat // flightID -> seatNumber -> seat
	bookings map[string]*models.Booking
	nextID   int
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		seats:    map[string]map[string]*models.Seat{},
		bookings: map[string]*models.Booking{},
	}
}

func (f *fakeStore) addSeat(flightID string, seat models.Seat) {
	if f.seats[flightID] == nil {
		f.seats[flightID] = map[string]*models.Seat{}
	}
	seat.FlightID = flightID
	f.seats[flightID][seat.SeatNumber] = &seat
}

func (f *fakeStore) GetByFlight(flightID string) ([]models.Seat, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	seats := []models.Seat{}
	for _, seat := range f.seats[flightID] {
		seats = append(seats, *seat)
	}
	return seats, nil
}

func (f *fakeStore) GetByFlightAndNumbers(flightID string, seatNumbers []string) ([]models.Seat, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	seats := []models.Seat{}
	for _, number := range seatNumbers {
		if seat, ok := f.seats[flightID][number]; ok {
			seats = append(seats, *seat)
		}
	}
	return seats, nil
}

func (f *fakeStore) Create(booking *models.Booking, passengers []models.Passenger) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	conflicts := []string{}
	for _, p := range passengers {
		seat, ok := f.seats[booking.FlightID][p.SeatNumber]
		if !ok || !seat.IsAvailable || seat.IsBlocked {
			conflicts = append(conflicts, p.SeatNumber)
		}
	}
	if len(conflicts) > 0 {
		return &models.SeatUnavailableError{SeatNumbers: conflicts}
	}

	for _, p := range passengers {
		f.seats[booking.FlightID][p.SeatNumber].IsAvailable = false
	}

	f.nextID++
	booking.ID = fmt.Sprintf("booking-%d", f.nextID)
	booking.CreatedAt = time.Now()
	booking.UpdatedAt = booking.CreatedAt
	booking.Passengers = passengers
	booking.SelectedSeats = make([]string, len(passengers))
	for i, p := range passengers {
		booking.SelectedSeats[i] = p.SeatNumber
	}

	stored := *booking
	f.bookings[booking.ID] = &stored
	return nil
}

func (f *fakeStore) Cancel(booking *models.Booking, reason string, refundAmount float64) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	stored, ok := f.bookings[booking.ID]
	if !ok {
		return models.ErrBookingNotFound
	}
	if stored.BookingStatus == models.BookingStatusCancelled {
		return models.ErrAlreadyCancelled
	}

	stored.BookingStatus = models.BookingStatusCancelled
	stored.CancellationReason = &reason
	stored.RefundAmount = &refundAmount
	now := time.Now()
	stored.CancelledAt = &now

	for _, p := range stored.Passengers {
		f.seats[stored.FlightID][p.SeatNumber].IsAvailable = true
	}

	booking.BookingStatus = models.BookingStatusCancelled
	return nil
}

func (f *fakeStore) GetByID(id string) (*models.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	booking, ok := f.bookings[id]
	if !ok {
		return nil, models.ErrBookingNotFound
	}
	copied := *booking
	return &copied, nil
}

func (f *fakeStore) GetByBookingID(bookingID string) (*models.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, booking := range f.bookings {
		if booking.BookingID == bookingID {
			copied := *booking
			return &copied, nil
		}
	}
	return nil, models.ErrBookingNotFound
}

func (f *fakeStore) GetByPNR(pnr string) (*models.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, booking := range f.bookings {
		if booking.PNR == pnr {
			copied := *booking
			return &copied, nil
		}
	}
	return nil, models.ErrBookingNotFound
}

func (f *fakeStore) ListByUser(userID string) ([]models.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	bookings := []models.Booking{}
	for _, booking := range f.bookings {
		if booking.UserID == userID {
			bookings = append(bookings, *booking)
		}
	}
	return bookings, nil
}

func (f *fakeStore) SetCheckedIn(id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	booking, ok := f.bookings[id]
	if !ok {
		return models.ErrBookingNotFound
	}
	if booking.IsCheckedIn {
		return models.ErrAlreadyCheckedIn
	}
	booking.IsCheckedIn = true
	return nil
}

func (f *fakeStore) seatAvailable(flightID, seatNumber string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.seats[flightID][seatNumber].IsAvailable
}

// testEnv wires a BookingService over the in-memory fakes with a frozen clock
type testEnv struct {
	service *BookingService
	store   *fakeStore
	flight  *models.Flight
	now     time.Time
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	now := time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC)
	departure := now.Add(72 * time.Hour)

	flight := &models.Flight{
		ID:           "flight-1",
		FlightNumber: "SV101",
		Airline:      models.Airline{Name: "SkyVista Airways", Code: "SV"},
		Departure:    models.RoutePoint{AirportCode: "JFK", Time: departure},
		Arrival:      models.RoutePoint{AirportCode: "LHR", Time: departure.Add(7 * time.Hour)},
		Aircraft:     models.Aircraft{Model: "A330-300", TotalSeats: 8},
		Pricing: models.FlightPricing{
			Economy:  models.FareClassPricing{Price: 100, AvailableSeats: 6},
			Business: models.FareClassPricing{Price: 250, AvailableSeats: 2},
		},
		Status: models.FlightStatusScheduled,
	}

	store := newFakeStore()
	for _, column := range []string{"A", "B", "C", "D", "E", "F"} {
		store.addSeat(flight.ID, models.Seat{
			SeatNumber:  "10" + column,
			Class:       models.SeatClassEconomy,
			Row:         10,
			Column:      column,
			IsAvailable: true,
		})
	}
	for _, column := range []string{"A", "B"} {
		store.addSeat(flight.ID, models.Seat{
			SeatNumber:  "2" + column,
			Class:       models.SeatClassBusiness,
			Row:         2,
			Column:      column,
			IsAvailable: true,
		})
	}

	flights := &fakeFlightReader{flights: map[string]*models.Flight{flight.ID: flight}}

	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)

	service := NewBookingService(flights, store, store, testPolicy, logger)
	service.now = func() time.Time { return now }

	return &testEnv{service: service, store: store, flight: flight, now: now}
}

func validRequest(seats ...string) *models.CreateBookingRequest {
	passengers := make([]models.PassengerInput, len(seats))
	for i := range seats {
		passengers[i] = models.PassengerInput{
			Title:       "Mr",
			FirstName:   "Alex",
			LastName:    "Morgan",
			DateOfBirth: "1990-04-12",
			Gender:      "male",
			Nationality: "US",
		}
	}
	return &models.CreateBookingRequest{
		FlightID:      "flight-1",
		Passengers:    passengers,
		SelectedSeats: seats,
		ContactDetails: models.ContactDetails{
			Email: "alex@example.com",
			Phone: "+12025550123",
		},
	}
}

func TestCreateBooking_Success(t *testing.T) {
	env := newTestEnv(t)

	booking, err := env.service.CreateBooking("user-1", validRequest("10A", "10B"))
	require.NoError(t, err)

	assert.Equal(t, models.BookingStatusConfirmed, booking.BookingStatus)
	assert.NotEmpty(t, booking.BookingID)
	assert.Len(t, booking.PNR, 6)
	assert.Equal(t, []string{"10A", "10B"}, booking.SelectedSeats)
	assert.Equal(t, models.SeatClassEconomy, booking.Passengers[0].SeatClass)

	// Both seats leave the pool
	assert.False(t, env.store.seatAvailable("flight-1", "10A"))
	assert.False(t, env.store.seatAvailable("flight-1", "10B"))
}

func TestCreateBooking_PricingBreakdown(t *testing.T) {
	env := newTestEnv(t)

	// One economy seat plus one business seat: 100 + 250
	booking, err := env.service.CreateBooking("user-1", validRequest("10C", "2A"))
	require.NoError(t, err)

	assert.Equal(t, 350.0, booking.Pricing.BasePrice)
	assert.Equal(t, 35.0, booking.Pricing.Taxes) // 10% of base
	assert.Equal(t, 25.0, booking.Pricing.Fees)
	assert.Equal(t, 410.0, booking.Pricing.TotalAmount)

	// The breakdown always sums exactly
	sum := booking.Pricing.BasePrice + booking.Pricing.Taxes + booking.Pricing.Fees
	assert.Equal(t, booking.Pricing.TotalAmount, sum)
}

func TestCreateBooking_SeatPriceOverride(t *testing.T) {
	env := newTestEnv(t)

	// Extra-legroom seat priced above the class base fare
	override := 140.0
	env.store.seats["flight-1"]["10D"].Price = &override

	booking, err := env.service.CreateBooking("user-1", validRequest("10D"))
	require.NoError(t, err)

	assert.Equal(t, 140.0, booking.Pricing.BasePrice)
	assert.Equal(t, 14.0, booking.Pricing.Taxes)
}

func TestCreateBooking_ValidationErrors(t *testing.T) {
	env := newTestEnv(t)

	tests := []struct {
		name    string
		mutate  func(req *models.CreateBookingRequest)
		message string
	}{
		{
			name: "seat count mismatch",
			mutate: func(req *models.CreateBookingRequest) {
				req.SelectedSeats = []string{"10A"}
			},
			message: "selected_seats",
		},
		{
			name: "duplicate seat",
			mutate: func(req *models.CreateBookingRequest) {
				req.SelectedSeats = []string{"10A", "10A"}
			},
			message: "duplicate seat",
		},
		{
			name: "missing phone",
			mutate: func(req *models.CreateBookingRequest) {
				req.ContactDetails.Phone = ""
			},
			message: "phone",
		},
		{
			name: "bad date of birth",
			mutate: func(req *models.CreateBookingRequest) {
				req.Passengers[0].DateOfBirth = "12/04/1990"
			},
			message: "date_of_birth",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := validRequest("10A", "10B")
			tt.mutate(req)

			_, err := env.service.CreateBooking("user-1", req)
			var validationErr *models.ValidationError
			require.ErrorAs(t, err, &validationErr)
			assert.Contains(t, validationErr.Error(), tt.message)
		})
	}

	// Nothing was persisted by the failed attempts
	assert.True(t, env.store.seatAvailable("flight-1", "10A"))
	assert.True(t, env.store.seatAvailable("flight-1", "10B"))
}

func TestCreateBooking_UnknownSeat(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.service.CreateBooking("user-1", validRequest("99Z"))
	var validationErr *models.ValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.Contains(t, validationErr.Error(), "99Z")
}

func TestCreateBooking_SeatAlreadyTaken(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.service.CreateBooking("user-1", validRequest("10A"))
	require.NoError(t, err)

	_, err = env.service.CreateBooking("user-2", validRequest("10A", "10B"))
	var seatErr *models.SeatUnavailableError
	require.ErrorAs(t, err, &seatErr)
	assert.Equal(t, []string{"10A"}, seatErr.SeatNumbers)

	// The second request must not claim 10B either
	assert.True(t, env.store.seatAvailable("flight-1", "10B"))
}

func TestCreateBooking_BlockedSeat(t *testing.T) {
	env := newTestEnv(t)
	env.store.seats["flight-1"]["10A"].IsBlocked = true

	_, err := env.service.CreateBooking("user-1", validRequest("10A"))
	var seatErr *models.SeatUnavailableError
	require.ErrorAs(t, err, &seatErr)
	assert.Equal(t, []string{"10A"}, seatErr.SeatNumbers)
}

func TestCreateBooking_ConcurrentSameSeat(t *testing.T) {
	env := newTestEnv(t)

	const attempts = 20
	results := make(chan error, attempts)

	var start sync.WaitGroup
	start.Add(1)
	for i := 0; i < attempts; i++ {
		user := fmt.Sprintf("user-%d", i)
		go func() {
			start.Wait()
			_, err := env.service.CreateBooking(user, validRequest("10A"))
			results <- err
		}()
	}
	start.Done()

	succeeded := 0
	for i := 0; i < attempts; i++ {
		err := <-results
		if err == nil {
			succeeded++
			continue
		}
		var seatErr *models.SeatUnavailableError
		require.ErrorAs(t, err, &seatErr)
	}

	// At most one owner per seat, ever
	assert.Equal(t, 1, succeeded)
}

func TestCreateBooking_FlightNotBookable(t *testing.T) {
	env := newTestEnv(t)
	env.flight.Status = models.FlightStatusCancelled

	_, err := env.service.CreateBooking("user-1", validRequest("10A"))
	var validationErr *models.ValidationError
	require.ErrorAs(t, err, &validationErr)
}

func TestCreateBooking_FlightNotFound(t *testing.T) {
	env := newTestEnv(t)

	req := validRequest("10A")
	req.FlightID = "missing"

	_, err := env.service.CreateBooking("user-1", req)
	assert.ErrorIs(t, err, models.ErrFlightNotFound)
}

func TestCancelBooking_RefundAndSeatRelease(t *testing.T) {
	env := newTestEnv(t)

	booking, err := env.service.CreateBooking("user-1", validRequest("10A", "10B"))
	require.NoError(t, err)

	result, err := env.service.CancelBooking(booking.ID, "user-1", false,
		&models.CancelBookingRequest{Reason: "change of plans"})
	require.NoError(t, err)

	assert.Equal(t, models.BookingStatusCancelled, result.BookingStatus)
	assert.Equal(t, "72h", result.RefundingWithin)

	// refund = round(total * 0.80): total 245 -> 196
	assert.Equal(t, 245.0, booking.Pricing.TotalAmount)
	assert.Equal(t, 196.0, result.RefundAmount)

	// Seats return to the pool
	assert.True(t, env.store.seatAvailable("flight-1", "10A"))
	assert.True(t, env.store.seatAvailable("flight-1", "10B"))

	// And can be booked again
	_, err = env.service.CreateBooking("user-2", validRequest("10A"))
	assert.NoError(t, err)
}

func TestCancelBooking_Twice(t *testing.T) {
	env := newTestEnv(t)

	booking, err := env.service.CreateBooking("user-1", validRequest("10A"))
	require.NoError(t, err)

	_, err = env.service.CancelBooking(booking.ID, "user-1", false,
		&models.CancelBookingRequest{Reason: "first"})
	require.NoError(t, err)

	_, err = env.service.CancelBooking(booking.ID, "user-1", false,
		&models.CancelBookingRequest{Reason: "second"})
	assert.ErrorIs(t, err, models.ErrAlreadyCancelled)
}

func TestCancelBooking_WindowClosed(t *testing.T) {
	env := newTestEnv(t)

	tests := []struct {
		name      string
		seat      string
		remaining time.Duration
		wantErr   bool
	}{
		{"well before cutoff", "10A", 48 * time.Hour, false},
		{"just inside cutoff", "10B", 25 * time.Hour, false},
		{"exactly at cutoff", "10C", 24 * time.Hour, true},
		{"inside cutoff", "10D", 2 * time.Hour, true},
		{"after departure", "10E", -time.Hour, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env.service.now = func() time.Time { return env.now }
			booking, err := env.service.CreateBooking("user-1", validRequest(tt.seat))
			require.NoError(t, err)

			env.service.now = func() time.Time {
				return env.flight.Departure.Time.Add(-tt.remaining)
			}

			_, err = env.service.CancelBooking(booking.ID, "user-1", false,
				&models.CancelBookingRequest{Reason: "test"})

			if tt.wantErr {
				var windowErr *models.CancellationWindowClosedError
				require.ErrorAs(t, err, &windowErr)
				assert.Equal(t, testPolicy.CancellationCutoff, windowErr.Cutoff)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestCancelBooking_OwnershipEnforced(t *testing.T) {
	env := newTestEnv(t)

	booking, err := env.service.CreateBooking("user-1", validRequest("10A"))
	require.NoError(t, err)

	_, err = env.service.CancelBooking(booking.ID, "user-2", false,
		&models.CancelBookingRequest{Reason: "not mine"})
	assert.ErrorIs(t, err, models.ErrBookingNotFound)

	// Admins may cancel any booking
	_, err = env.service.CancelBooking(booking.ID, "user-2", true,
		&models.CancelBookingRequest{Reason: "operational"})
	assert.NoError(t, err)
}

func TestGetBooking_CompletedAfterArrival(t *testing.T) {
	env := newTestEnv(t)

	booking, err := env.service.CreateBooking("user-1", validRequest("10A"))
	require.NoError(t, err)

	// Before arrival the booking reads confirmed
	got, err := env.service.GetBooking(booking.ID, "user-1", false)
	require.NoError(t, err)
	assert.Equal(t, models.BookingStatusConfirmed, got.BookingStatus)

	// After arrival it reads completed, without any write
	env.service.now = func() time.Time { return env.flight.Arrival.Time.Add(time.Hour) }
	got, err = env.service.GetBooking(booking.ID, "user-1", false)
	require.NoError(t, err)
	assert.Equal(t, models.BookingStatusCompleted, got.BookingStatus)

	// Cancelled stays cancelled even past arrival
	env.service.now = func() time.Time { return env.now }
	_, err = env.service.CancelBooking(booking.ID, "user-1", false,
		&models.CancelBookingRequest{Reason: "test"})
	require.NoError(t, err)

	env.service.now = func() time.Time { return env.flight.Arrival.Time.Add(time.Hour) }
	got, err = env.service.GetBooking(booking.ID, "user-1", false)
	require.NoError(t, err)
	assert.Equal(t, models.BookingStatusCancelled, got.BookingStatus)
}

func TestGetBookingByPNR(t *testing.T) {
	env := newTestEnv(t)

	booking, err := env.service.CreateBooking("user-1", validRequest("10A"))
	require.NoError(t, err)

	// Last-name match is case-insensitive
	got, err := env.service.GetBookingByPNR(booking.PNR, "MORGAN")
	require.NoError(t, err)
	assert.Equal(t, booking.BookingID, got.BookingID)

	// Wrong last name reads as not found
	_, err = env.service.GetBookingByPNR(booking.PNR, "Smith")
	assert.ErrorIs(t, err, models.ErrBookingNotFound)

	_, err = env.service.GetBookingByPNR("XXXXXX", "Morgan")
	assert.ErrorIs(t, err, models.ErrBookingNotFound)
}

func TestGetBookingByReference(t *testing.T) {
	env := newTestEnv(t)

	booking, err := env.service.CreateBooking("user-1", validRequest("10A"))
	require.NoError(t, err)

	got, err := env.service.GetBookingByReference(booking.BookingID, "user-1", false)
	require.NoError(t, err)
	assert.Equal(t, booking.ID, got.ID)

	// Another user's reference reads as not found
	_, err = env.service.GetBookingByReference(booking.BookingID, "user-2", false)
	assert.ErrorIs(t, err, models.ErrBookingNotFound)

	// Admins can look up any booking
	got, err = env.service.GetBookingByReference(booking.BookingID, "user-2", true)
	require.NoError(t, err)
	assert.Equal(t, booking.ID, got.ID)
}

func TestListBookings(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.service.CreateBooking("user-1", validRequest("10A"))
	require.NoError(t, err)
	_, err = env.service.CreateBooking("user-1", validRequest("10B"))
	require.NoError(t, err)
	_, err = env.service.CreateBooking("user-2", validRequest("10C"))
	require.NoError(t, err)

	bookings, err := env.service.ListBookings("user-1")
	require.NoError(t, err)
	assert.Len(t, bookings, 2)
	for _, booking := range bookings {
		assert.Equal(t, "user-1", booking.UserID)
		assert.NotNil(t, booking.Flight)
	}
}

func TestCheckIn(t *testing.T) {
	env := newTestEnv(t)

	booking, err := env.service.CreateBooking("user-1", validRequest("10A"))
	require.NoError(t, err)

	got, err := env.service.CheckIn(booking.ID, "user-1", false)
	require.NoError(t, err)
	assert.True(t, got.IsCheckedIn)

	// Second check-in is rejected
	_, err = env.service.CheckIn(booking.ID, "user-1", false)
	assert.ErrorIs(t, err, models.ErrAlreadyCheckedIn)
}

func TestCheckIn_AfterDeparture(t *testing.T) {
	env := newTestEnv(t)

	booking, err := env.service.CreateBooking("user-1", validRequest("10A"))
	require.NoError(t, err)

	env.service.now = func() time.Time { return env.flight.Departure.Time.Add(time.Hour) }

	_, err = env.service.CheckIn(booking.ID, "user-1", false)
	var validationErr *models.ValidationError
	assert.ErrorAs(t, err, &validationErr)
}
