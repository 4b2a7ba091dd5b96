package database

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/skyvista/flight-booking-backend/internal/models"
)

// FlightRepository handles database operations for the flights table
type FlightRepository struct {
	db *sqlx.DB
}

// NewFlightRepository creates a new FlightRepository
func NewFlightRepository(db *sqlx.DB) *FlightRepository {
	return &FlightRepository{db: db}
}

const flightColumns = `
	id, flight_number, airline_name, airline_code,
	departure_airport, arrival_airport, departure_time, arrival_time,
	departure_terminal, arrival_terminal, departure_gate, arrival_gate,
	aircraft_model, total_seats,
	economy_price, economy_available,
	business_price, business_available,
	first_class_price, first_class_available,
	status, created_at, updated_at`

// CreateWithSeats inserts a flight and its generated seat map in one
// transaction, so a flight never exists without its seats.
func (r *FlightRepository) CreateWithSeats(flight *models.Flight, seats []models.Seat) error {
	tx, err := r.db.Beginx()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if flight.ID == "" {
		flight.ID = uuid.New().String()
	}

	query := `
		INSERT INTO flights (
			id, flight_number, airline_name, airline_code,
			departure_airport, arrival_airport, departure_time, arrival_time,
			departure_terminal, arrival_terminal, departure_gate, arrival_gate,
			aircraft_model, total_seats,
			economy_price, economy_available,
			business_price, business_available,
			first_class_price, first_class_available,
			status
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10,
			$11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21
		) RETURNING created_at, updated_at
	`

	err = tx.QueryRowx(query,
		flight.ID, flight.FlightNumber, flight.Airline.Name, flight.Airline.Code,
		flight.Departure.AirportCode, flight.Arrival.AirportCode,
		flight.Departure.Time, flight.Arrival.Time,
		nullIfEmpty(flight.Departure.Terminal), nullIfEmpty(flight.Arrival.Terminal),
		nullIfEmpty(flight.Departure.Gate), nullIfEmpty(flight.Arrival.Gate),
		flight.Aircraft.Model, flight.Aircraft.TotalSeats,
		flight.Pricing.Economy.Price, flight.Pricing.Economy.AvailableSeats,
		flight.Pricing.Business.Price, flight.Pricing.Business.AvailableSeats,
		flight.Pricing.FirstClass.Price, flight.Pricing.FirstClass.AvailableSeats,
		flight.Status,
	).Scan(&flight.CreatedAt, &flight.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create flight: %w", err)
	}

	seatQuery := `
		INSERT INTO seats (
			id, flight_id, seat_number, class, row_number, column_letter,
			price, is_available, is_blocked, features
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	for i := range seats {
		if seats[i].ID == "" {
			seats[i].ID = uuid.New().String()
		}
		seats[i].FlightID = flight.ID

		_, err = tx.Exec(seatQuery,
			seats[i].ID, seats[i].FlightID, seats[i].SeatNumber, seats[i].Class,
			seats[i].Row, seats[i].Column, seats[i].Price,
			seats[i].IsAvailable, seats[i].IsBlocked, seats[i].Features,
		)
		if err != nil {
			return fmt.Errorf("failed to create seat %s: %w", seats[i].SeatNumber, err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// GetByID retrieves a flight by ID
func (r *FlightRepository) GetByID(flightID string) (*models.Flight, error) {
	query := `SELECT ` + flightColumns + ` FROM flights WHERE id = $1`
	return r.scanFlight(r.db.QueryRow(query, flightID))
}

// Search lists flights matching the public search filters, soonest first
func (r *FlightRepository) Search(params models.FlightSearchParams) ([]models.Flight, error) {
	query := `SELECT ` + flightColumns + ` FROM flights WHERE 1=1`
	args := []interface{}{}

	if params.Origin != "" {
		args = append(args, params.Origin)
		query += fmt.Sprintf(" AND departure_airport = $%d", len(args))
	}
	if params.Destination != "" {
		args = append(args, params.Destination)
		query += fmt.Sprintf(" AND arrival_airport = $%d", len(args))
	}
	if params.Date != nil {
		args = append(args, *params.Date)
		query += fmt.Sprintf(" AND departure_time::date = $%d::date", len(args))
	}
	if params.Status != nil {
		args = append(args, *params.Status)
		query += fmt.Sprintf(" AND status = $%d", len(args))
	}

	query += " ORDER BY departure_time"

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to search flights: %w", err)
	}
	defer rows.Close()

	flights := []models.Flight{}
	for rows.Next() {
		flight, err := r.scanFlight(rows)
		if err != nil {
			return nil, err
		}
		flights = append(flights, *flight)
	}

	return flights, rows.Err()
}

// UpdateStatus changes a flight's operational status
func (r *FlightRepository) UpdateStatus(flightID string, status models.FlightStatus) error {
	query := `UPDATE flights SET status = $2, updated_at = NOW() WHERE id = $1`

	result, err := r.db.Exec(query, flightID, status)
	if err != nil {
		return fmt.Errorf("failed to update flight status: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return models.ErrFlightNotFound
	}

	return nil
}

// UpdateSchedule edits the admin-editable schedule fields
func (r *FlightRepository) UpdateSchedule(flight *models.Flight) error {
	query := `
		UPDATE flights
		SET departure_time = $2, arrival_time = $3,
		    departure_terminal = $4, arrival_terminal = $5,
		    departure_gate = $6, arrival_gate = $7,
		    economy_price = $8, business_price = $9, first_class_price = $10,
		    updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at
	`

	err := r.db.QueryRow(query,
		flight.ID, flight.Departure.Time, flight.Arrival.Time,
		nullIfEmpty(flight.Departure.Terminal), nullIfEmpty(flight.Arrival.Terminal),
		nullIfEmpty(flight.Departure.Gate), nullIfEmpty(flight.Arrival.Gate),
		flight.Pricing.Economy.Price, flight.Pricing.Business.Price, flight.Pricing.FirstClass.Price,
	).Scan(&flight.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.ErrFlightNotFound
		}
		return fmt.Errorf("failed to update flight: %w", err)
	}

	return nil
}

// scanFlight scans a single flight row into the nested model
func (r *FlightRepository) scanFlight(row scanner) (*models.Flight, error) {
	flight := &models.Flight{}
	var depTerminal, arrTerminal, depGate, arrGate sql.NullString

	err := row.Scan(
		&flight.ID, &flight.FlightNumber, &flight.Airline.Name, &flight.Airline.Code,
		&flight.Departure.AirportCode, &flight.Arrival.AirportCode,
		&flight.Departure.Time, &flight.Arrival.Time,
		&depTerminal, &arrTerminal, &depGate, &arrGate,
		&flight.Aircraft.Model, &flight.Aircraft.TotalSeats,
		&flight.Pricing.Economy.Price, &flight.Pricing.Economy.AvailableSeats,
		&flight.Pricing.Business.Price, &flight.Pricing.Business.AvailableSeats,
		&flight.Pricing.FirstClass.Price, &flight.Pricing.FirstClass.AvailableSeats,
		&flight.Status, &flight.CreatedAt, &flight.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, models.ErrFlightNotFound
		}
		return nil, fmt.Errorf("failed to scan flight: %w", err)
	}

	flight.Departure.Terminal = depTerminal.String
	flight.Arrival.Terminal = arrTerminal.String
	flight.Departure.Gate = depGate.String
	flight.Arrival.Gate = arrGate.String

	return flight, nil
}

// nullIfEmpty maps "" to NULL for optional text columns
func nullIfEmpty(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
