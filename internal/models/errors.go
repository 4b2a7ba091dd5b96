package models

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Sentinel errors for missing entities. Repositories translate sql.ErrNoRows
// into these so handlers can map them to 404s without importing database/sql.
var (
	ErrFlightNotFound  = errors.New("flight not found")
	ErrBookingNotFound = errors.New("booking not found")
	ErrUserNotFound    = errors.New("user not found")
	ErrAirportNotFound = errors.New("airport not found")

	// ErrAlreadyCancelled marks a double-cancellation attempt. It is distinct
	// from a generic failure so clients do not retry it as transient.
	ErrAlreadyCancelled = errors.New("booking is already cancelled")

	// ErrAlreadyCheckedIn marks a repeated check-in attempt.
	ErrAlreadyCheckedIn = errors.New("booking is already checked in")
)

// ValidationError reports malformed or incomplete input. Nothing is
// persisted when it is returned.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// SeatUnavailableError reports seats that were no longer bookable at commit
// time, listing the conflicting seat numbers so the client can re-render
// seat selection.
type SeatUnavailableError struct {
	SeatNumbers []string
}

func (e *SeatUnavailableError) Error() string {
	return fmt.Sprintf("seats no longer available: %s", strings.Join(e.SeatNumbers, ", "))
}

// CancellationWindowClosedError reports a cancellation attempted too close
// to departure, carrying the configured cutoff so the UI can explain why.
type CancellationWindowClosedError struct {
	Cutoff    time.Duration
	Departure time.Time
}

func (e *CancellationWindowClosedError) Error() string {
	return fmt.Sprintf("cancellation window closed: bookings must be cancelled at least %s before departure (%s)",
		e.Cutoff, e.Departure.Format(time.RFC3339))
}
