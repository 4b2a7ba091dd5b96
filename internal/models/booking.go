package models

import (
	"errors"
	"time"
)

// BookingStatus represents the lifecycle status of a booking
type BookingStatus string

const (
	BookingStatusPending   BookingStatus = "pending"
	BookingStatusConfirmed BookingStatus = "confirmed"
	BookingStatusCancelled BookingStatus = "cancelled"
	BookingStatusCompleted BookingStatus = "completed"
)

// Passenger is a booking-scoped traveller record. Passengers are created
// at booking time and never mutated afterwards.
type Passenger struct {
	ID             string    `json:"id" db:"id"`
	BookingID      string    `json:"-" db:"booking_id"`
	Ordinal        int       `json:"-" db:"ordinal"` // preserves caller ordering
	Title          string    `json:"title" db:"title"`
	FirstName      string    `json:"first_name" db:"first_name"`
	LastName       string    `json:"last_name" db:"last_name"`
	DateOfBirth    string    `json:"date_of_birth" db:"date_of_birth"` // YYYY-MM-DD
	Gender         string    `json:"gender" db:"gender"`
	Nationality    string    `json:"nationality" db:"nationality"`
	PassportNumber *string   `json:"passport_number,omitempty" db:"passport_number"`
	MealPreference string    `json:"meal_preference" db:"meal_preference"`
	SeatNumber     string    `json:"seat_number" db:"seat_number"`
	SeatClass      SeatClass `json:"seat_class" db:"seat_class"`
	CreatedAt      time.Time `json:"created_at" db:"created_at"`
}

// ContactDetails holds the booking's contact information
type ContactDetails struct {
	Email            string `json:"email"`
	Phone            string `json:"phone"`
	EmergencyContact string `json:"emergency_contact,omitempty"`
}

// BookingPricing is the price breakdown committed with a booking
type BookingPricing struct {
	BasePrice   float64 `json:"base_price"`
	Taxes       float64 `json:"taxes"`
	Fees        float64 `json:"fees"`
	TotalAmount float64 `json:"total_amount"`
}

// Booking represents a confirmed seat reservation on one flight
type Booking struct {
	ID                 string         `json:"id"`
	BookingID          string         `json:"booking_id"` // human-readable reference, e.g. FB-20260901-A1B2C3
	PNR                string         `json:"pnr"`
	UserID             string         `json:"user_id"`
	FlightID           string         `json:"flight_id"`
	Flight             *Flight        `json:"flight,omitempty"`
	Passengers         []Passenger    `json:"passengers"`
	SelectedSeats      []string       `json:"selected_seats"` // same length and order as Passengers
	ContactDetails     ContactDetails `json:"contact_details"`
	Pricing            BookingPricing `json:"pricing"`
	BookingStatus      BookingStatus  `json:"booking_status"`
	IsCheckedIn        bool           `json:"is_checked_in"`
	TransactionID      string         `json:"transaction_id"`
	CancelledAt        *time.Time     `json:"cancelled_at,omitempty"`
	CancellationReason *string        `json:"cancellation_reason,omitempty"`
	RefundAmount       *float64       `json:"refund_amount,omitempty"`
	CreatedAt          time.Time      `json:"created_at"`
	UpdatedAt          time.Time      `json:"updated_at"`
}

// EffectiveStatus derives the read-time status: a confirmed booking whose
// flight has arrived reads as completed. Cancelled is terminal.
func (b *Booking) EffectiveStatus(now, arrivalTime time.Time) BookingStatus {
	if b.BookingStatus == BookingStatusConfirmed && now.After(arrivalTime) {
		return BookingStatusCompleted
	}
	return b.BookingStatus
}

// CanBeCancelled reports whether the booking is still inside the
// cancellation window for the given departure time.
func (b *Booking) CanBeCancelled(now, departureTime time.Time, cutoff time.Duration) bool {
	if b.BookingStatus == BookingStatusCancelled {
		return false
	}
	return now.Add(cutoff).Before(departureTime)
}

// PassengerInput is one traveller in a create-booking request
type PassengerInput struct {
	Title          string  `json:"title"`
	FirstName      string  `json:"first_name"`
	LastName       string  `json:"last_name"`
	DateOfBirth    string  `json:"date_of_birth"`
	Gender         string  `json:"gender"`
	Nationality    string  `json:"nationality"`
	PassportNumber *string `json:"passport_number,omitempty"`
	MealPreference string  `json:"meal_preference"`
}

// CreateBookingRequest is the request to create a booking. selected_seats[i]
// is the seat assigned to passengers[i].
type CreateBookingRequest struct {
	FlightID       string           `json:"flight_id" binding:"required"`
	Passengers     []PassengerInput `json:"passengers" binding:"required"`
	SelectedSeats  []string         `json:"selected_seats" binding:"required"`
	ContactDetails ContactDetails   `json:"contact_details"`
}

// Validate enforces the booking engine preconditions
func (r *CreateBookingRequest) Validate() error {
	if len(r.Passengers) == 0 {
		return &ValidationError{Field: "passengers", Message: "at least one passenger is required"}
	}
	if len(r.Passengers) != len(r.SelectedSeats) {
		return &ValidationError{Field: "selected_seats", Message: "selected_seats must match passengers in length and order"}
	}
	for i, p := range r.Passengers {
		if p.FirstName == "" || p.LastName == "" {
			return &ValidationError{Field: "passengers", Message: "passenger name is required"}
		}
		if p.DateOfBirth == "" {
			return &ValidationError{Field: "passengers", Message: "passenger date_of_birth is required"}
		}
		if _, err := time.Parse("2006-01-02", p.DateOfBirth); err != nil {
			return &ValidationError{Field: "passengers", Message: "passenger date_of_birth must be YYYY-MM-DD"}
		}
		if r.SelectedSeats[i] == "" {
			return &ValidationError{Field: "selected_seats", Message: "seat number cannot be empty"}
		}
	}
	seen := make(map[string]bool, len(r.SelectedSeats))
	for _, seat := range r.SelectedSeats {
		if seen[seat] {
			return &ValidationError{Field: "selected_seats", Message: "duplicate seat " + seat + " in selection"}
		}
		seen[seat] = true
	}
	if r.ContactDetails.Phone == "" {
		return &ValidationError{Field: "contact_details.phone", Message: "contact phone is required"}
	}
	return nil
}

// CancelBookingRequest carries the mandatory cancellation reason
type CancelBookingRequest struct {
	Reason string `json:"reason" binding:"required"`
}

// CancellationResult reports the outcome of a successful cancellation
type CancellationResult struct {
	BookingID       string        `json:"booking_id"`
	PNR             string        `json:"pnr"`
	BookingStatus   BookingStatus `json:"booking_status"`
	RefundAmount    float64       `json:"refund_amount"`
	RefundingWithin string        `json:"refunding_within"` // user-facing promise, e.g. "72h"
}

var errInvalidBookingStatus = errors.New("invalid booking status")

// ParseBookingStatus converts a stored string to a BookingStatus
func ParseBookingStatus(s string) (BookingStatus, error) {
	switch BookingStatus(s) {
	case BookingStatusPending, BookingStatusConfirmed, BookingStatusCancelled, BookingStatusCompleted:
		return BookingStatus(s), nil
	}
	return "", errInvalidBookingStatus
}
