package database

import (
	"fmt"

	"github.com/lib/pq"
	"github.com/skyvista/flight-booking-backend/internal/models"
)

// SeatRepository handles database operations for the seats table
type SeatRepository struct {
	db DB
}

// NewSeatRepository creates a new SeatRepository
func NewSeatRepository(db DB) *SeatRepository {
	return &SeatRepository{db: db}
}

const seatColumns = `
	id, flight_id, seat_number, class, row_number, column_letter,
	price, is_available, is_blocked, features, created_at, updated_at`

// GetByFlight retrieves the full seat map of a flight in cabin order
func (r *SeatRepository) GetByFlight(flightID string) ([]models.Seat, error) {
	query := `SELECT ` + seatColumns + `
		FROM seats
		WHERE flight_id = $1
		ORDER BY row_number, column_letter`

	seats := []models.Seat{}
	if err := r.db.Select(&seats, query, flightID); err != nil {
		return nil, fmt.Errorf("failed to fetch seat map: %w", err)
	}

	return seats, nil
}

// GetByFlightAndNumbers retrieves specific seats of a flight. Seats not
// belonging to the flight are simply absent from the result; the caller
// detects them by comparing lengths.
func (r *SeatRepository) GetByFlightAndNumbers(flightID string, seatNumbers []string) ([]models.Seat, error) {
	query := `SELECT ` + seatColumns + `
		FROM seats
		WHERE flight_id = $1 AND seat_number = ANY($2)`

	seats := []models.Seat{}
	if err := r.db.Select(&seats, query, flightID, pq.Array(seatNumbers)); err != nil {
		return nil, fmt.Errorf("failed to fetch seats: %w", err)
	}

	return seats, nil
}

// SetBlocked blocks or unblocks seats for a crew/maintenance hold.
// Only seats not currently sold can change block state; the returned list
// contains the seat numbers that were actually updated.
func (r *SeatRepository) SetBlocked(flightID string, seatNumbers []string, blocked bool) ([]string, error) {
	query := `
		UPDATE seats
		SET is_blocked = $3, updated_at = NOW()
		WHERE flight_id = $1 AND seat_number = ANY($2) AND is_available = TRUE
		RETURNING seat_number
	`

	rows, err := r.db.Query(query, flightID, pq.Array(seatNumbers), blocked)
	if err != nil {
		return nil, fmt.Errorf("failed to update seat block state: %w", err)
	}
	defer rows.Close()

	updated := []string{}
	for rows.Next() {
		var seatNumber string
		if err := rows.Scan(&seatNumber); err != nil {
			return nil, err
		}
		updated = append(updated, seatNumber)
	}

	return updated, rows.Err()
}
