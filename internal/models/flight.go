package models

import (
	"errors"
	"time"
)

// FlightStatus represents the operational status of a flight
type FlightStatus string

const (
	FlightStatusScheduled FlightStatus = "scheduled"
	FlightStatusBoarding  FlightStatus = "boarding"
	FlightStatusDeparted  FlightStatus = "departed"
	FlightStatusArrived   FlightStatus = "arrived"
	FlightStatusDelayed   FlightStatus = "delayed"
	FlightStatusCancelled FlightStatus = "cancelled"
)

// Valid reports whether the status is a known flight status
func (s FlightStatus) Valid() bool {
	switch s {
	case FlightStatusScheduled, FlightStatusBoarding, FlightStatusDeparted,
		FlightStatusArrived, FlightStatusDelayed, FlightStatusCancelled:
		return true
	}
	return false
}

// Airline identifies the operating carrier
type Airline struct {
	Name string `json:"name" db:"airline_name"`
	Code string `json:"code" db:"airline_code"`
}

// RoutePoint is one end of a flight's route
type RoutePoint struct {
	AirportCode string    `json:"airport_code"`
	Airport     *Airport  `json:"airport,omitempty"` // resolved reference data
	Time        time.Time `json:"time"`
	Terminal    string    `json:"terminal,omitempty"`
	Gate        string    `json:"gate,omitempty"`
}

// Aircraft describes the equipment assigned to a flight
type Aircraft struct {
	Model      string `json:"model" db:"aircraft_model"`
	TotalSeats int    `json:"total_seats" db:"total_seats"`
}

// FareClassPricing holds the base price and live availability counter
// for one fare class on one flight
type FareClassPricing struct {
	Price          float64 `json:"price"`
	AvailableSeats int     `json:"available_seats"`
}

// FlightPricing holds pricing for each fare class
type FlightPricing struct {
	Economy    FareClassPricing `json:"economy"`
	Business   FareClassPricing `json:"business"`
	FirstClass FareClassPricing `json:"firstClass"`
}

// For returns the pricing entry for the given class
func (p *FlightPricing) For(class SeatClass) *FareClassPricing {
	switch class {
	case SeatClassBusiness:
		return &p.Business
	case SeatClassFirst:
		return &p.FirstClass
	default:
		return &p.Economy
	}
}

// TotalAvailable sums the availability counters across fare classes
func (p *FlightPricing) TotalAvailable() int {
	return p.Economy.AvailableSeats + p.Business.AvailableSeats + p.FirstClass.AvailableSeats
}

// Flight represents one scheduled flight in the catalog
type Flight struct {
	ID           string        `json:"id"`
	FlightNumber string        `json:"flight_number"`
	Airline      Airline       `json:"airline"`
	Departure    RoutePoint    `json:"departure"`
	Arrival      RoutePoint    `json:"arrival"`
	Aircraft     Aircraft      `json:"aircraft"`
	Pricing      FlightPricing `json:"pricing"`
	Status       FlightStatus  `json:"status"`
	CreatedAt    time.Time     `json:"created_at"`
	UpdatedAt    time.Time     `json:"updated_at"`
}

// Duration returns the scheduled flight time
func (f *Flight) Duration() time.Duration {
	return f.Arrival.Time.Sub(f.Departure.Time)
}

// IsBookable reports whether new bookings may be created on the flight
func (f *Flight) IsBookable(now time.Time) bool {
	if f.Status != FlightStatusScheduled && f.Status != FlightStatusDelayed {
		return false
	}
	return f.Departure.Time.After(now)
}

// ClassLayout configures one fare-class block for seat map generation
type ClassLayout struct {
	Class  SeatClass `json:"class" binding:"required"`
	Rows   int       `json:"rows" binding:"required,min=1"`
	Layout string    `json:"layout" binding:"required"` // e.g. "3-3", "2-2"
}

// CreateFlightRequest is the admin request to create a flight with its seat map
type CreateFlightRequest struct {
	FlightNumber      string        `json:"flight_number" binding:"required"`
	Airline           Airline       `json:"airline" binding:"required"`
	DepartureAirport  string        `json:"departure_airport" binding:"required,len=3"`
	ArrivalAirport    string        `json:"arrival_airport" binding:"required,len=3"`
	DepartureTime     time.Time     `json:"departure_time" binding:"required"`
	ArrivalTime       time.Time     `json:"arrival_time" binding:"required"`
	DepartureTerminal string        `json:"departure_terminal"`
	ArrivalTerminal   string        `json:"arrival_terminal"`
	Gate              string        `json:"gate"`
	AircraftModel     string        `json:"aircraft_model" binding:"required"`
	EconomyPrice      float64       `json:"economy_price" binding:"required,gt=0"`
	BusinessPrice     float64       `json:"business_price" binding:"required,gt=0"`
	FirstClassPrice   float64       `json:"first_class_price" binding:"required,gt=0"`
	Cabin             []ClassLayout `json:"cabin" binding:"required,min=1"`
}

// Validate checks constraints the binding tags cannot express
func (r *CreateFlightRequest) Validate() error {
	if !r.ArrivalTime.After(r.DepartureTime) {
		return errors.New("arrival_time must be after departure_time")
	}
	if r.DepartureAirport == r.ArrivalAirport {
		return errors.New("departure and arrival airports must differ")
	}
	seen := make(map[SeatClass]bool, len(r.Cabin))
	for _, block := range r.Cabin {
		if !block.Class.Valid() {
			return errors.New("unknown fare class in cabin layout")
		}
		if seen[block.Class] {
			return errors.New("duplicate fare class in cabin layout")
		}
		seen[block.Class] = true
	}
	return nil
}

// UpdateFlightStatusRequest changes a flight's operational status
type UpdateFlightStatusRequest struct {
	Status FlightStatus `json:"status" binding:"required"`
}

// UpdateFlightRequest edits the schedule and pricing of a flight. Nil
// fields are left unchanged; seat inventory cannot be edited after creation.
type UpdateFlightRequest struct {
	DepartureTime     *time.Time `json:"departure_time,omitempty"`
	ArrivalTime       *time.Time `json:"arrival_time,omitempty"`
	DepartureTerminal *string    `json:"departure_terminal,omitempty"`
	ArrivalTerminal   *string    `json:"arrival_terminal,omitempty"`
	Gate              *string    `json:"gate,omitempty"`
	EconomyPrice      *float64   `json:"economy_price,omitempty"`
	BusinessPrice     *float64   `json:"business_price,omitempty"`
	FirstClassPrice   *float64   `json:"first_class_price,omitempty"`
}

// FlightSearchParams filters the public flight listing
type FlightSearchParams struct {
	Origin      string
	Destination string
	Date        *time.Time
	Status      *FlightStatus
}
