package models

// DashboardStats is the admin read-side rollup over users, flights and
// bookings. Pure aggregation, computed by SQL at read time.
type DashboardStats struct {
	TotalUsers        int     `json:"total_users" db:"total_users"`
	ActiveUsers       int     `json:"active_users" db:"active_users"`
	TotalFlights      int     `json:"total_flights" db:"total_flights"`
	ScheduledFlights  int     `json:"scheduled_flights" db:"scheduled_flights"`
	TotalBookings     int     `json:"total_bookings" db:"total_bookings"`
	ConfirmedBookings int     `json:"confirmed_bookings" db:"confirmed_bookings"`
	CancelledBookings int     `json:"cancelled_bookings" db:"cancelled_bookings"`
	TotalRevenue      float64 `json:"total_revenue" db:"total_revenue"`
	TotalRefunded     float64 `json:"total_refunded" db:"total_refunded"`
	SeatsSold         int     `json:"seats_sold" db:"seats_sold"`
}
