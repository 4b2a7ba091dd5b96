package models

import "time"

// Airport represents an airport reference record with geographic coordinates.
// Airports are immutable reference data loaded by the seed tool.
type Airport struct {
	Code      string    `json:"code" db:"code"` // 3-letter IATA code, unique
	Name      string    `json:"name" db:"name"`
	City      string    `json:"city" db:"city"`
	Country   string    `json:"country" db:"country"`
	Region    string    `json:"region" db:"region"`
	Latitude  float64   `json:"latitude" db:"latitude"`
	Longitude float64   `json:"longitude" db:"longitude"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}
