package models

import (
	"time"

	"github.com/lib/pq"
)

// SeatClass represents the fare class a seat belongs to
type SeatClass string

const (
	SeatClassEconomy  SeatClass = "economy"
	SeatClassBusiness SeatClass = "business"
	SeatClassFirst    SeatClass = "firstClass"
)

// SeatClasses lists all fare classes in cabin order (front to back)
var SeatClasses = []SeatClass{SeatClassFirst, SeatClassBusiness, SeatClassEconomy}

// Valid reports whether the class is a known fare class
func (c SeatClass) Valid() bool {
	switch c {
	case SeatClassEconomy, SeatClassBusiness, SeatClassFirst:
		return true
	}
	return false
}

// Seat represents one bookable seat on one flight
type Seat struct {
	ID          string         `json:"id" db:"id"`
	FlightID    string         `json:"flight_id" db:"flight_id"`
	SeatNumber  string         `json:"seat_number" db:"seat_number"` // e.g. "12A"
	Class       SeatClass      `json:"class" db:"class"`
	Row         int            `json:"row" db:"row_number"`
	Column      string         `json:"column" db:"column_letter"`
	Price       *float64       `json:"price,omitempty" db:"price"` // per-seat override, nil = class base fare
	IsAvailable bool           `json:"is_available" db:"is_available"`
	IsBlocked   bool           `json:"is_blocked" db:"is_blocked"`
	Features    pq.StringArray `json:"features" db:"features"` // e.g. "extra-legroom", "window"
	CreatedAt   time.Time      `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at" db:"updated_at"`
}

// IsBookable reports whether the seat can currently be sold
func (s *Seat) IsBookable() bool {
	return s.IsAvailable && !s.IsBlocked
}

// PriceFor returns the effective price of the seat on the given flight:
// the per-seat override when it is set above the class base fare,
// otherwise the flight's base fare for the seat's class.
func (s *Seat) PriceFor(flight *Flight) float64 {
	base := flight.Pricing.For(s.Class).Price
	if s.Price != nil && *s.Price > base {
		return *s.Price
	}
	return base
}

// SeatMapRow groups the seats of one physical row for display
type SeatMapRow struct {
	Row   int    `json:"row"`
	Seats []Seat `json:"seats"`
}

// SeatMapResponse is the full seat map of a flight, grouped by row
type SeatMapResponse struct {
	FlightID   string       `json:"flight_id"`
	TotalSeats int          `json:"total_seats"`
	Available  int          `json:"available_seats"`
	Rows       []SeatMapRow `json:"rows"`
}

// BlockSeatsRequest blocks or unblocks seats for crew/maintenance holds
type BlockSeatsRequest struct {
	SeatNumbers []string `json:"seat_numbers" binding:"required,min=1"`
	Reason      string   `json:"reason"`
}
