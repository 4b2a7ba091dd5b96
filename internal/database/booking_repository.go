package database

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/skyvista/flight-booking-backend/internal/models"
)

// BookingRepository handles database operations for bookings and their
// passengers. Creation and cancellation run the seat and counter mutations
// in the same transaction as the booking row, so no partial state is ever
// visible.
type BookingRepository struct {
	db *sqlx.DB
}

// NewBookingRepository creates a new BookingRepository
func NewBookingRepository(db *sqlx.DB) *BookingRepository {
	return &BookingRepository{db: db}
}

const bookingColumns = `
	id, booking_id, pnr, user_id, flight_id,
	contact_email, contact_phone, emergency_contact,
	base_price, taxes, fees, total_amount,
	booking_status, is_checked_in, transaction_id,
	cancelled_at, cancellation_reason, refund_amount,
	created_at, updated_at`

// Create commits a booking atomically: every selected seat is flipped to
// unavailable with a conditional UPDATE (set unavailable where currently
// bookable, checking rows affected), the per-class availability counters are
// decremented with a floor-at-zero guard, and the booking and passenger rows
// are inserted. If any seat has been taken in the meantime the whole
// transaction rolls back and a SeatUnavailableError lists every conflict.
func (r *BookingRepository) Create(booking *models.Booking, passengers []models.Passenger) error {
	tx, err := r.db.Beginx()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	// 1. Claim each seat with an atomic conditional update. Two concurrent
	// bookings racing for the same seat cannot both see rows affected = 1.
	conflicts := []string{}
	for _, p := range passengers {
		result, err := tx.Exec(`
			UPDATE seats
			SET is_available = FALSE, updated_at = NOW()
			WHERE flight_id = $1 AND seat_number = $2
			  AND is_available = TRUE AND is_blocked = FALSE`,
			booking.FlightID, p.SeatNumber)
		if err != nil {
			return fmt.Errorf("failed to claim seat %s: %w", p.SeatNumber, err)
		}

		rows, err := result.RowsAffected()
		if err != nil {
			return err
		}
		if rows == 0 {
			conflicts = append(conflicts, p.SeatNumber)
		}
	}
	if len(conflicts) > 0 {
		return &models.SeatUnavailableError{SeatNumbers: conflicts}
	}

	// 2. Decrement the per-class availability counters, floored at zero.
	for class, count := range seatCountByClass(passengers) {
		column, err := availabilityColumn(class)
		if err != nil {
			return err
		}

		query := fmt.Sprintf(`
			UPDATE flights
			SET %s = %s - $2, updated_at = NOW()
			WHERE id = $1 AND %s >= $2`, column, column, column)

		result, err := tx.Exec(query, booking.FlightID, count)
		if err != nil {
			return fmt.Errorf("failed to decrement %s availability: %w", class, err)
		}

		rows, err := result.RowsAffected()
		if err != nil {
			return err
		}
		if rows == 0 {
			return &models.SeatUnavailableError{SeatNumbers: seatNumbersOfClass(passengers, class)}
		}
	}

	// 3. Insert the booking row.
	if booking.ID == "" {
		booking.ID = uuid.New().String()
	}

	err = tx.QueryRowx(`
		INSERT INTO bookings (
			id, booking_id, pnr, user_id, flight_id,
			contact_email, contact_phone, emergency_contact,
			base_price, taxes, fees, total_amount,
			booking_status, is_checked_in, transaction_id
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		RETURNING created_at, updated_at`,
		booking.ID, booking.BookingID, booking.PNR, booking.UserID, booking.FlightID,
		booking.ContactDetails.Email, booking.ContactDetails.Phone,
		nullIfEmpty(booking.ContactDetails.EmergencyContact),
		booking.Pricing.BasePrice, booking.Pricing.Taxes, booking.Pricing.Fees,
		booking.Pricing.TotalAmount,
		booking.BookingStatus, booking.IsCheckedIn, booking.TransactionID,
	).Scan(&booking.CreatedAt, &booking.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create booking: %w", err)
	}

	// 4. Insert passenger rows in caller order.
	for i := range passengers {
		passengers[i].ID = uuid.New().String()
		passengers[i].BookingID = booking.ID
		passengers[i].Ordinal = i

		_, err = tx.Exec(`
			INSERT INTO passengers (
				id, booking_id, ordinal, title, first_name, last_name,
				date_of_birth, gender, nationality, passport_number,
				meal_preference, seat_number, seat_class
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
			passengers[i].ID, passengers[i].BookingID, passengers[i].Ordinal,
			passengers[i].Title, passengers[i].FirstName, passengers[i].LastName,
			passengers[i].DateOfBirth, passengers[i].Gender, passengers[i].Nationality,
			passengers[i].PassportNumber, passengers[i].MealPreference,
			passengers[i].SeatNumber, passengers[i].SeatClass,
		)
		if err != nil {
			return fmt.Errorf("failed to create passenger for seat %s: %w", passengers[i].SeatNumber, err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	booking.Passengers = passengers
	booking.SelectedSeats = selectedSeats(passengers)

	return nil
}

// Cancel marks a booking cancelled and restores seat and counter state as
// the exact inverse of Create. The status flip is conditional so a booking
// already cancelled by a concurrent request fails with ErrAlreadyCancelled
// instead of double-refunding.
func (r *BookingRepository) Cancel(booking *models.Booking, reason string, refundAmount float64) error {
	tx, err := r.db.Beginx()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.Exec(`
		UPDATE bookings
		SET booking_status = 'cancelled',
		    cancellation_reason = $2,
		    refund_amount = $3,
		    cancelled_at = NOW(),
		    updated_at = NOW()
		WHERE id = $1 AND booking_status != 'cancelled'`,
		booking.ID, reason, refundAmount)
	if err != nil {
		return fmt.Errorf("failed to cancel booking: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return models.ErrAlreadyCancelled
	}

	// Restore each seat to the pool.
	for _, p := range booking.Passengers {
		_, err = tx.Exec(`
			UPDATE seats
			SET is_available = TRUE, updated_at = NOW()
			WHERE flight_id = $1 AND seat_number = $2`,
			booking.FlightID, p.SeatNumber)
		if err != nil {
			return fmt.Errorf("failed to release seat %s: %w", p.SeatNumber, err)
		}
	}

	// Increment the per-class counters by exactly what Create decremented.
	for class, count := range seatCountByClass(booking.Passengers) {
		column, err := availabilityColumn(class)
		if err != nil {
			return err
		}

		query := fmt.Sprintf(`
			UPDATE flights
			SET %s = %s + $2, updated_at = NOW()
			WHERE id = $1`, column, column)

		if _, err := tx.Exec(query, booking.FlightID, count); err != nil {
			return fmt.Errorf("failed to restore %s availability: %w", class, err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	now := time.Now()
	booking.BookingStatus = models.BookingStatusCancelled
	booking.CancelledAt = &now
	booking.CancellationReason = &reason
	booking.RefundAmount = &refundAmount

	return nil
}

// GetByID retrieves a booking with its passengers by internal ID
func (r *BookingRepository) GetByID(id string) (*models.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE id = $1`
	return r.loadBooking(r.db.QueryRow(query, id))
}

// GetByBookingID retrieves a booking by its human-readable reference
func (r *BookingRepository) GetByBookingID(bookingID string) (*models.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE booking_id = $1`
	return r.loadBooking(r.db.QueryRow(query, bookingID))
}

// GetByPNR retrieves a booking by its passenger name record
func (r *BookingRepository) GetByPNR(pnr string) (*models.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE pnr = $1`
	return r.loadBooking(r.db.QueryRow(query, pnr))
}

// ListByUser retrieves all bookings of a user, newest first
func (r *BookingRepository) ListByUser(userID string) ([]models.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE user_id = $1 ORDER BY created_at DESC`

	rows, err := r.db.Query(query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list bookings: %w", err)
	}
	defer rows.Close()

	bookings := []models.Booking{}
	for rows.Next() {
		booking, err := r.scanBooking(rows)
		if err != nil {
			return nil, err
		}
		bookings = append(bookings, *booking)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range bookings {
		if err := r.loadPassengers(&bookings[i]); err != nil {
			return nil, err
		}
	}

	return bookings, nil
}

// SetCheckedIn flips the check-in flag on a confirmed booking
func (r *BookingRepository) SetCheckedIn(id string) error {
	result, err := r.db.Exec(`
		UPDATE bookings
		SET is_checked_in = TRUE, updated_at = NOW()
		WHERE id = $1 AND booking_status = 'confirmed' AND is_checked_in = FALSE`,
		id)
	if err != nil {
		return fmt.Errorf("failed to check in booking: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return models.ErrAlreadyCheckedIn
	}

	return nil
}

// CountSeatsHeld counts seats held by non-cancelled bookings on a flight.
// Used by the admin stats and by availability reconciliation checks.
func (r *BookingRepository) CountSeatsHeld(flightID string) (int, error) {
	var count int
	err := r.db.Get(&count, `
		SELECT COUNT(*)
		FROM passengers p
		JOIN bookings b ON b.id = p.booking_id
		WHERE b.flight_id = $1 AND b.booking_status != 'cancelled'`,
		flightID)
	return count, err
}

func (r *BookingRepository) loadBooking(row scanner) (*models.Booking, error) {
	booking, err := r.scanBooking(row)
	if err != nil {
		return nil, err
	}
	if err := r.loadPassengers(booking); err != nil {
		return nil, err
	}
	return booking, nil
}

func (r *BookingRepository) loadPassengers(booking *models.Booking) error {
	query := `
		SELECT id, booking_id, ordinal, title, first_name, last_name,
		       date_of_birth, gender, nationality, passport_number,
		       meal_preference, seat_number, seat_class, created_at
		FROM passengers
		WHERE booking_id = $1
		ORDER BY ordinal`

	passengers := []models.Passenger{}
	if err := r.db.Select(&passengers, query, booking.ID); err != nil {
		return fmt.Errorf("failed to fetch passengers: %w", err)
	}

	booking.Passengers = passengers
	booking.SelectedSeats = selectedSeats(passengers)

	return nil
}

func (r *BookingRepository) scanBooking(row scanner) (*models.Booking, error) {
	booking := &models.Booking{}
	var emergencyContact, cancellationReason sql.NullString
	var cancelledAt sql.NullTime
	var refundAmount sql.NullFloat64

	err := row.Scan(
		&booking.ID, &booking.BookingID, &booking.PNR, &booking.UserID, &booking.FlightID,
		&booking.ContactDetails.Email, &booking.ContactDetails.Phone, &emergencyContact,
		&booking.Pricing.BasePrice, &booking.Pricing.Taxes, &booking.Pricing.Fees,
		&booking.Pricing.TotalAmount,
		&booking.BookingStatus, &booking.IsCheckedIn, &booking.TransactionID,
		&cancelledAt, &cancellationReason, &refundAmount,
		&booking.CreatedAt, &booking.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, models.ErrBookingNotFound
		}
		return nil, fmt.Errorf("failed to scan booking: %w", err)
	}

	booking.ContactDetails.EmergencyContact = emergencyContact.String
	if cancelledAt.Valid {
		booking.CancelledAt = &cancelledAt.Time
	}
	if cancellationReason.Valid {
		booking.CancellationReason = &cancellationReason.String
	}
	if refundAmount.Valid {
		booking.RefundAmount = &refundAmount.Float64
	}

	return booking, nil
}

// availabilityColumn maps a fare class to its counter column on flights.
// The switch doubles as an allow-list for the fmt.Sprintf queries above.
func availabilityColumn(class models.SeatClass) (string, error) {
	switch class {
	case models.SeatClassEconomy:
		return "economy_available", nil
	case models.SeatClassBusiness:
		return "business_available", nil
	case models.SeatClassFirst:
		return "first_class_available", nil
	}
	return "", fmt.Errorf("unknown fare class: %s", class)
}

func seatCountByClass(passengers []models.Passenger) map[models.SeatClass]int {
	counts := make(map[models.SeatClass]int)
	for _, p := range passengers {
		counts[p.SeatClass]++
	}
	return counts
}

func seatNumbersOfClass(passengers []models.Passenger, class models.SeatClass) []string {
	numbers := []string{}
	for _, p := range passengers {
		if p.SeatClass == class {
			numbers = append(numbers, p.SeatNumber)
		}
	}
	return numbers
}

func selectedSeats(passengers []models.Passenger) []string {
	seats := make([]string, len(passengers))
	for i, p := range passengers {
		seats[i] = p.SeatNumber
	}
	return seats
}
