package database

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/skyvista/flight-booking-backend/internal/models"
)

// AirportRepository handles database operations for the airports table
type AirportRepository struct {
	db DB
}

// NewAirportRepository creates a new AirportRepository
func NewAirportRepository(db DB) *AirportRepository {
	return &AirportRepository{db: db}
}

// GetByCode retrieves an airport by its 3-letter code
func (r *AirportRepository) GetByCode(code string) (*models.Airport, error) {
	airport := &models.Airport{}
	query := `
		SELECT code, name, city, country, region, latitude, longitude, created_at
		FROM airports
		WHERE code = $1
	`

	err := r.db.Get(airport, query, code)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, models.ErrAirportNotFound
		}
		return nil, fmt.Errorf("failed to fetch airport: %w", err)
	}

	return airport, nil
}

// List retrieves all airports ordered by code
func (r *AirportRepository) List() ([]models.Airport, error) {
	query := `
		SELECT code, name, city, country, region, latitude, longitude, created_at
		FROM airports
		ORDER BY code
	`

	airports := []models.Airport{}
	if err := r.db.Select(&airports, query); err != nil {
		return nil, fmt.Errorf("failed to list airports: %w", err)
	}

	return airports, nil
}

// Search matches airports by code prefix or a case-insensitive substring of
// name, city or country. Used by the search autocomplete.
func (r *AirportRepository) Search(term string, limit int) ([]models.Airport, error) {
	query := `
		SELECT code, name, city, country, region, latitude, longitude, created_at
		FROM airports
		WHERE code ILIKE $1 || '%'
		   OR name ILIKE '%' || $1 || '%'
		   OR city ILIKE '%' || $1 || '%'
		   OR country ILIKE '%' || $1 || '%'
		ORDER BY code
		LIMIT $2
	`

	airports := []models.Airport{}
	if err := r.db.Select(&airports, query, term, limit); err != nil {
		return nil, fmt.Errorf("failed to search airports: %w", err)
	}

	return airports, nil
}

// Upsert inserts or updates an airport record (used by the seed tool)
func (r *AirportRepository) Upsert(airport *models.Airport) error {
	query := `
		INSERT INTO airports (code, name, city, country, region, latitude, longitude)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (code) DO UPDATE
		SET name = EXCLUDED.name, city = EXCLUDED.city, country = EXCLUDED.country,
		    region = EXCLUDED.region, latitude = EXCLUDED.latitude, longitude = EXCLUDED.longitude
	`

	_, err := r.db.Exec(query, airport.Code, airport.Name, airport.City,
		airport.Country, airport.Region, airport.Latitude, airport.Longitude)
	if err != nil {
		return fmt.Errorf("failed to upsert airport %s: %w", airport.Code, err)
	}

	return nil
}
