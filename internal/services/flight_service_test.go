package services

import (
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/skyvista/flight-booking-backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeFlightStore struct {
	flights map[string]*models.Flight
	seats   map[string][]models.Seat
}

func newFakeFlightStore() *fakeFlightStore {
	return &fakeFlightStore{
		flights: map[string]*models.Flight{},
		seats:   map[string][]models.Seat{},
	}
}

func (f *fakeFlightStore) CreateWithSeats(flight *models.Flight, seats []models.Seat) error {
	f.flights[flight.ID] = flight
	f.seats[flight.ID] = seats
	return nil
}

func (f *fakeFlightStore) GetByID(flightID string) (*models.Flight, error) {
	flight, ok := f.flights[flightID]
	if !ok {
		return nil, models.ErrFlightNotFound
	}
	copied := *flight
	return &copied, nil
}

func (f *fakeFlightStore) Search(params models.FlightSearchParams) ([]models.Flight, error) {
	flights := []models.Flight{}
	for _, flight := range f.flights {
		if params.Origin != "" && flight.Departure.AirportCode != params.Origin {
			continue
		}
		if params.Destination != "" && flight.Arrival.AirportCode != params.Destination {
			continue
		}
		flights = append(flights, *flight)
	}
	return flights, nil
}

func (f *fakeFlightStore) UpdateStatus(flightID string, status models.FlightStatus) error {
	flight, ok := f.flights[flightID]
	if !ok {
		return models.ErrFlightNotFound
	}
	flight.Status = status
	return nil
}

func (f *fakeFlightStore) UpdateSchedule(flight *models.Flight) error {
	if _, ok := f.flights[flight.ID]; !ok {
		return models.ErrFlightNotFound
	}
	f.flights[flight.ID] = flight
	return nil
}

type fakeAirportReader struct {
	airports map[string]*models.Airport
}

func (f *fakeAirportReader) GetByCode(code string) (*models.Airport, error) {
	airport, ok := f.airports[code]
	if !ok {
		return nil, models.ErrAirportNotFound
	}
	return airport, nil
}

type fakeSeatBlocker struct {
	changed []string
}

func (f *fakeSeatBlocker) SetBlocked(flightID string, seatNumbers []string, blocked bool) ([]string, error) {
	return f.changed, nil
}

func newFlightTestService(store *fakeFlightStore, blocker *fakeSeatBlocker) *FlightService {
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)

	airports := &fakeAirportReader{airports: map[string]*models.Airport{
		"JFK": {Code: "JFK", Name: "John F. Kennedy International Airport", City: "New York"},
		"LHR": {Code: "LHR", Name: "London Heathrow Airport", City: "London"},
	}}

	seatStore := newFakeStore()
	return NewFlightService(store, airports, blocker, NewSeatMapService(seatStore, logger), logger)
}

func createFlightRequest() *models.CreateFlightRequest {
	departure := time.Date(2026, 10, 1, 8, 0, 0, 0, time.UTC)
	return &models.CreateFlightRequest{
		FlightNumber:     "SV101",
		Airline:          models.Airline{Name: "SkyVista Airways", Code: "SV"},
		DepartureAirport: "JFK",
		ArrivalAirport:   "LHR",
		DepartureTime:    departure,
		ArrivalTime:      departure.Add(7 * time.Hour),
		AircraftModel:    "A330-300",
		EconomyPrice:     100,
		BusinessPrice:    250,
		FirstClassPrice:  500,
		Cabin: []models.ClassLayout{
			{Class: models.SeatClassFirst, Rows: 1, Layout: "1-1"},
			{Class: models.SeatClassBusiness, Rows: 2, Layout: "2-2"},
			{Class: models.SeatClassEconomy, Rows: 5, Layout: "3-3"},
		},
	}
}

func TestCreateFlight(t *testing.T) {
	store := newFakeFlightStore()
	service := newFlightTestService(store, &fakeSeatBlocker{})

	flight, err := service.CreateFlight(createFlightRequest())
	require.NoError(t, err)

	// 2 first + 8 business + 30 economy
	assert.Equal(t, 40, flight.Aircraft.TotalSeats)
	assert.Len(t, store.seats[flight.ID], 40)

	// Counters start equal to seat counts per class
	assert.Equal(t, 2, flight.Pricing.FirstClass.AvailableSeats)
	assert.Equal(t, 8, flight.Pricing.Business.AvailableSeats)
	assert.Equal(t, 30, flight.Pricing.Economy.AvailableSeats)
	assert.Equal(t, 40, flight.Pricing.TotalAvailable())

	assert.Equal(t, models.FlightStatusScheduled, flight.Status)
	assert.Equal(t, "JFK", flight.Departure.AirportCode)
	require.NotNil(t, flight.Departure.Airport)
	assert.Equal(t, "New York", flight.Departure.Airport.City)

	// Every generated seat belongs to the flight
	for _, seat := range store.seats[flight.ID] {
		assert.Equal(t, flight.ID, seat.FlightID)
		assert.NotEmpty(t, seat.ID)
	}
}

func TestCreateFlight_UnknownAirport(t *testing.T) {
	service := newFlightTestService(newFakeFlightStore(), &fakeSeatBlocker{})

	req := createFlightRequest()
	req.ArrivalAirport = "XXX"

	_, err := service.CreateFlight(req)
	assert.ErrorIs(t, err, models.ErrAirportNotFound)
}

func TestCreateFlight_InvalidRequest(t *testing.T) {
	service := newFlightTestService(newFakeFlightStore(), &fakeSeatBlocker{})

	tests := []struct {
		name   string
		mutate func(req *models.CreateFlightRequest)
	}{
		{
			name: "arrival before departure",
			mutate: func(req *models.CreateFlightRequest) {
				req.ArrivalTime = req.DepartureTime.Add(-time.Hour)
			},
		},
		{
			name: "same airports",
			mutate: func(req *models.CreateFlightRequest) {
				req.ArrivalAirport = req.DepartureAirport
			},
		},
		{
			name: "duplicate cabin class",
			mutate: func(req *models.CreateFlightRequest) {
				req.Cabin = append(req.Cabin, models.ClassLayout{
					Class: models.SeatClassEconomy, Rows: 1, Layout: "3-3",
				})
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := createFlightRequest()
			tt.mutate(req)

			_, err := service.CreateFlight(req)
			var validationErr *models.ValidationError
			assert.ErrorAs(t, err, &validationErr)
		})
	}
}

func TestSearchFlights_ResolvesAirports(t *testing.T) {
	store := newFakeFlightStore()
	service := newFlightTestService(store, &fakeSeatBlocker{})

	_, err := service.CreateFlight(createFlightRequest())
	require.NoError(t, err)

	flights, err := service.SearchFlights(models.FlightSearchParams{Origin: "JFK"})
	require.NoError(t, err)
	require.Len(t, flights, 1)
	require.NotNil(t, flights[0].Arrival.Airport)
	assert.Equal(t, "London", flights[0].Arrival.Airport.City)

	flights, err = service.SearchFlights(models.FlightSearchParams{Origin: "LHR"})
	require.NoError(t, err)
	assert.Empty(t, flights)
}

func TestUpdateStatus(t *testing.T) {
	store := newFakeFlightStore()
	service := newFlightTestService(store, &fakeSeatBlocker{})

	flight, err := service.CreateFlight(createFlightRequest())
	require.NoError(t, err)

	require.NoError(t, service.UpdateStatus(flight.ID, models.FlightStatusBoarding))
	assert.Equal(t, models.FlightStatusBoarding, store.flights[flight.ID].Status)

	err = service.UpdateStatus(flight.ID, models.FlightStatus("taxiing"))
	var validationErr *models.ValidationError
	assert.ErrorAs(t, err, &validationErr)

	assert.ErrorIs(t, service.UpdateStatus("missing", models.FlightStatusDelayed), models.ErrFlightNotFound)
}

func TestUpdateFlight(t *testing.T) {
	store := newFakeFlightStore()
	service := newFlightTestService(store, &fakeSeatBlocker{})

	flight, err := service.CreateFlight(createFlightRequest())
	require.NoError(t, err)

	newDeparture := flight.Departure.Time.Add(2 * time.Hour)
	newPrice := 120.0
	gate := "B14"

	updated, err := service.UpdateFlight(flight.ID, &models.UpdateFlightRequest{
		DepartureTime: &newDeparture,
		EconomyPrice:  &newPrice,
		Gate:          &gate,
	})
	require.NoError(t, err)

	assert.Equal(t, newDeparture, updated.Departure.Time)
	assert.Equal(t, 120.0, updated.Pricing.Economy.Price)
	assert.Equal(t, "B14", updated.Departure.Gate)
	// Untouched fields keep their values
	assert.Equal(t, flight.Arrival.Time, updated.Arrival.Time)
	assert.Equal(t, 250.0, updated.Pricing.Business.Price)
}

func TestUpdateFlight_InvalidSchedule(t *testing.T) {
	store := newFakeFlightStore()
	service := newFlightTestService(store, &fakeSeatBlocker{})

	flight, err := service.CreateFlight(createFlightRequest())
	require.NoError(t, err)

	badDeparture := flight.Arrival.Time.Add(time.Hour)
	_, err = service.UpdateFlight(flight.ID, &models.UpdateFlightRequest{
		DepartureTime: &badDeparture,
	})
	var validationErr *models.ValidationError
	assert.ErrorAs(t, err, &validationErr)

	zero := 0.0
	_, err = service.UpdateFlight(flight.ID, &models.UpdateFlightRequest{EconomyPrice: &zero})
	assert.ErrorAs(t, err, &validationErr)

	_, err = service.UpdateFlight("missing", &models.UpdateFlightRequest{})
	assert.ErrorIs(t, err, models.ErrFlightNotFound)
}

func TestSetSeatsBlocked_ReportsSkipped(t *testing.T) {
	store := newFakeFlightStore()
	blocker := &fakeSeatBlocker{changed: []string{"10A"}}
	service := newFlightTestService(store, blocker)

	flight, err := service.CreateFlight(createFlightRequest())
	require.NoError(t, err)

	// 10B is already sold, so the store only flips 10A
	changed, skipped, err := service.SetSeatsBlocked(flight.ID,
		&models.BlockSeatsRequest{SeatNumbers: []string{"10A", "10B"}, Reason: "crew rest"}, true)
	require.NoError(t, err)
	assert.Equal(t, []string{"10A"}, changed)
	assert.Equal(t, []string{"10B"}, skipped)
}

func TestSetSeatsBlocked_FlightNotFound(t *testing.T) {
	service := newFlightTestService(newFakeFlightStore(), &fakeSeatBlocker{})

	_, _, err := service.SetSeatsBlocked("missing",
		&models.BlockSeatsRequest{SeatNumbers: []string{"10A"}}, true)
	assert.ErrorIs(t, err, models.ErrFlightNotFound)
}
