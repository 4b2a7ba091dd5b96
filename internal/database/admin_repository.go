package database

import (
	"fmt"

	"github.com/skyvista/flight-booking-backend/internal/models"
)

// AdminRepository serves the admin dashboard rollups
type AdminRepository struct {
	db DB
}

// NewAdminRepository creates a new AdminRepository
func NewAdminRepository(db DB) *AdminRepository {
	return &AdminRepository{db: db}
}

// GetDashboardStats aggregates the dashboard counters in a single query.
// Revenue counts non-cancelled bookings only; refunds are summed separately
// so the two never overlap.
func (r *AdminRepository) GetDashboardStats() (*models.DashboardStats, error) {
	stats := &models.DashboardStats{}

	err := r.db.Get(stats, `
		SELECT
			(SELECT COUNT(*) FROM users) AS total_users,
			(SELECT COUNT(*) FROM users WHERE is_active = TRUE) AS active_users,
			(SELECT COUNT(*) FROM flights) AS total_flights,
			(SELECT COUNT(*) FROM flights WHERE status = 'scheduled') AS scheduled_flights,
			(SELECT COUNT(*) FROM bookings) AS total_bookings,
			(SELECT COUNT(*) FROM bookings WHERE booking_status = 'confirmed') AS confirmed_bookings,
			(SELECT COUNT(*) FROM bookings WHERE booking_status = 'cancelled') AS cancelled_bookings,
			(SELECT COALESCE(SUM(total_amount), 0) FROM bookings WHERE booking_status != 'cancelled') AS total_revenue,
			(SELECT COALESCE(SUM(refund_amount), 0) FROM bookings WHERE booking_status = 'cancelled') AS total_refunded,
			(SELECT COUNT(*) FROM passengers p
				JOIN bookings b ON b.id = p.booking_id
				WHERE b.booking_status != 'cancelled') AS seats_sold`)
	if err != nil {
		return nil, fmt.Errorf("failed to load dashboard stats: %w", err)
	}

	return stats, nil
}
