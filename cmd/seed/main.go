// Seed loads the airport reference directory into the database, and with
// -flights also creates a week of demo flights with full seat maps.
// Run it once after migrations; airport upserts make it safe to re-run.
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/skyvista/flight-booking-backend/internal/config"
	"github.com/skyvista/flight-booking-backend/internal/database"
	"github.com/skyvista/flight-booking-backend/internal/models"
	"github.com/skyvista/flight-booking-backend/internal/services"
)

var airports = []models.Airport{
	{Code: "JFK", Name: "John F. Kennedy International Airport", City: "New York", Country: "United States", Region: "North America", Latitude: 40.6413, Longitude: -73.7781},
	{Code: "LAX", Name: "Los Angeles International Airport", City: "Los Angeles", Country: "United States", Region: "North America", Latitude: 33.9416, Longitude: -118.4085},
	{Code: "ORD", Name: "O'Hare International Airport", City: "Chicago", Country: "United States", Region: "North America", Latitude: 41.9742, Longitude: -87.9073},
	{Code: "SFO", Name: "San Francisco International Airport", City: "San Francisco", Country: "United States", Region: "North America", Latitude: 37.6213, Longitude: -122.3790},
	{Code: "MIA", Name: "Miami International Airport", City: "Miami", Country: "United States", Region: "North America", Latitude: 25.7959, Longitude: -80.2870},
	{Code: "YYZ", Name: "Toronto Pearson International Airport", City: "Toronto", Country: "Canada", Region: "North America", Latitude: 43.6777, Longitude: -79.6248},
	{Code: "LHR", Name: "London Heathrow Airport", City: "London", Country: "United Kingdom", Region: "Europe", Latitude: 51.4700, Longitude: -0.4543},
	{Code: "CDG", Name: "Charles de Gaulle Airport", City: "Paris", Country: "France", Region: "Europe", Latitude: 49.0097, Longitude: 2.5479},
	{Code: "FRA", Name: "Frankfurt Airport", City: "Frankfurt", Country: "Germany", Region: "Europe", Latitude: 50.0379, Longitude: 8.5622},
	{Code: "AMS", Name: "Amsterdam Airport Schiphol", City: "Amsterdam", Country: "Netherlands", Region: "Europe", Latitude: 52.3105, Longitude: 4.7683},
	{Code: "MAD", Name: "Adolfo Suarez Madrid-Barajas Airport", City: "Madrid", Country: "Spain", Region: "Europe", Latitude: 40.4983, Longitude: -3.5676},
	{Code: "DXB", Name: "Dubai International Airport", City: "Dubai", Country: "United Arab Emirates", Region: "Middle East", Latitude: 25.2532, Longitude: 55.3657},
	{Code: "DOH", Name: "Hamad International Airport", City: "Doha", Country: "Qatar", Region: "Middle East", Latitude: 25.2609, Longitude: 51.6138},
	{Code: "SIN", Name: "Singapore Changi Airport", City: "Singapore", Country: "Singapore", Region: "Asia", Latitude: 1.3644, Longitude: 103.9915},
	{Code: "HND", Name: "Tokyo Haneda Airport", City: "Tokyo", Country: "Japan", Region: "Asia", Latitude: 35.5494, Longitude: 139.7798},
	{Code: "HKG", Name: "Hong Kong International Airport", City: "Hong Kong", Country: "China", Region: "Asia", Latitude: 22.3080, Longitude: 113.9185},
	{Code: "BOM", Name: "Chhatrapati Shivaji Maharaj International Airport", City: "Mumbai", Country: "India", Region: "Asia", Latitude: 19.0896, Longitude: 72.8656},
	{Code: "CMB", Name: "Bandaranaike International Airport", City: "Colombo", Country: "Sri Lanka", Region: "Asia", Latitude: 7.1808, Longitude: 79.8841},
	{Code: "SYD", Name: "Sydney Kingsford Smith Airport", City: "Sydney", Country: "Australia", Region: "Oceania", Latitude: -33.9399, Longitude: 151.1753},
	{Code: "GRU", Name: "Sao Paulo-Guarulhos International Airport", City: "Sao Paulo", Country: "Brazil", Region: "South America", Latitude: -23.4356, Longitude: -46.4731},
	{Code: "JNB", Name: "O.R. Tambo International Airport", City: "Johannesburg", Country: "South Africa", Region: "Africa", Latitude: -26.1392, Longitude: 28.2460},
}

type demoRoute struct {
	number       string
	origin, dest string
	departHour   int
	duration     time.Duration
	economy      float64
	business     float64
	firstClass   float64
}

var demoRoutes = []demoRoute{
	{"SV101", "JFK", "LHR", 19, 7 * time.Hour, 420, 1450, 3200},
	{"SV102", "LHR", "JFK", 11, 8 * time.Hour, 435, 1480, 3250},
	{"SV205", "LAX", "HND", 13, 12 * time.Hour, 680, 2100, 4800},
	{"SV310", "SFO", "SIN", 23, 17 * time.Hour, 790, 2600, 5400},
	{"SV412", "CDG", "DXB", 9, 6*time.Hour + 45*time.Minute, 310, 980, 2100},
	{"SV520", "CMB", "SIN", 8, 3*time.Hour + 50*time.Minute, 180, 520, 0},
}

// widebodyCabin is the standard demo layout: 0 first-class rows means the
// class is omitted entirely.
func widebodyCabin(withFirst bool) []models.ClassLayout {
	cabin := []models.ClassLayout{}
	if withFirst {
		cabin = append(cabin, models.ClassLayout{Class: models.SeatClassFirst, Rows: 2, Layout: "1-1"})
	}
	return append(cabin,
		models.ClassLayout{Class: models.SeatClassBusiness, Rows: 5, Layout: "2-2"},
		models.ClassLayout{Class: models.SeatClassEconomy, Rows: 25, Layout: "3-3"},
	)
}

func main() {
	seedFlights := flag.Bool("flights", false, "also create a week of demo flights")
	days := flag.Int("days", 7, "number of days of demo flights")
	flag.Parse()

	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	logger.SetOutput(os.Stdout)

	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("Failed to load configuration: %v", err)
	}

	db, err := database.NewConnection(cfg.Database)
	if err != nil {
		logger.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	airportRepo := database.NewAirportRepository(db)

	for i := range airports {
		if err := airportRepo.Upsert(&airports[i]); err != nil {
			logger.WithError(err).Fatalf("Failed to seed airport %s", airports[i].Code)
		}
	}
	logger.WithField("count", len(airports)).Info("Airport directory seeded")

	if !*seedFlights {
		return
	}

	pgDB, ok := db.(*database.PostgresDB)
	if !ok {
		logger.Fatal("Flight seeding requires a postgres connection")
	}

	seatRepo := database.NewSeatRepository(db)
	flightService := services.NewFlightService(
		database.NewFlightRepository(pgDB.DB),
		airportRepo,
		seatRepo,
		services.NewSeatMapService(seatRepo, logger),
		logger,
	)

	created := 0
	start := time.Now().UTC().Truncate(24 * time.Hour).Add(24 * time.Hour)
	for day := 0; day < *days; day++ {
		for _, route := range demoRoutes {
			departure := start.AddDate(0, 0, day).Add(time.Duration(route.departHour) * time.Hour)
			first := route.firstClass
			if first == 0 {
				first = route.business * 2 // class omitted from cabin, price still required
			}

			req := &models.CreateFlightRequest{
				FlightNumber:     fmt.Sprintf("%s-%s", route.number, departure.Format("20060102")),
				Airline:          models.Airline{Name: "SkyVista Airways", Code: "SV"},
				DepartureAirport: route.origin,
				ArrivalAirport:   route.dest,
				DepartureTime:    departure,
				ArrivalTime:      departure.Add(route.duration),
				AircraftModel:    "A330-300",
				EconomyPrice:     route.economy,
				BusinessPrice:    route.business,
				FirstClassPrice:  first,
				Cabin:            widebodyCabin(route.firstClass > 0),
			}

			if _, err := flightService.CreateFlight(req); err != nil {
				logger.WithError(err).Fatalf("Failed to seed flight %s", req.FlightNumber)
			}
			created++
		}
	}

	logger.WithField("count", created).Info("Demo flights seeded")
}
