package services

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/skyvista/flight-booking-backend/internal/models"
)

// SeatReader is the read side of the seat store
type SeatReader interface {
	GetByFlight(flightID string) ([]models.Seat, error)
	GetByFlightAndNumbers(flightID string, seatNumbers []string) ([]models.Seat, error)
}

// SeatMapService generates seat inventories from cabin layouts and renders
// the per-flight seat map. Generation is deterministic: the same layout
// always produces the same seat numbers.
type SeatMapService struct {
	seats  SeatReader
	logger *logrus.Logger
}

// NewSeatMapService creates a new seat map service
func NewSeatMapService(seats SeatReader, logger *logrus.Logger) *SeatMapService {
	return &SeatMapService{
		seats:  seats,
		logger: logger,
	}
}

// GenerateSeats expands a cabin layout into the flight's full seat
// inventory. Class blocks are laid out in cabin order (first class at the
// front, economy at the back) with contiguous row numbers starting at 1.
// Column letters start at A and follow the block's layout string, e.g.
// "3-3" gives A B C | D E F with the aisle between C and D.
func (s *SeatMapService) GenerateSeats(cabin []models.ClassLayout) ([]models.Seat, error) {
	blocks := make(map[models.SeatClass]models.ClassLayout, len(cabin))
	for _, block := range cabin {
		blocks[block.Class] = block
	}

	seats := []models.Seat{}
	nextRow := 1

	for _, class := range models.SeatClasses {
		block, ok := blocks[class]
		if !ok {
			continue
		}

		columns, aisleAfter, err := parseLayout(block.Layout)
		if err != nil {
			return nil, fmt.Errorf("invalid layout for %s: %w", class, err)
		}

		for row := nextRow; row < nextRow+block.Rows; row++ {
			for i, column := range columns {
				seat := models.Seat{
					SeatNumber:  strconv.Itoa(row) + column,
					Class:       class,
					Row:         row,
					Column:      column,
					IsAvailable: true,
					Features:    seatFeatures(i, len(columns), aisleAfter),
				}
				seats = append(seats, seat)
			}
		}
		nextRow += block.Rows
	}

	if len(seats) == 0 {
		return nil, fmt.Errorf("cabin layout produced no seats")
	}

	return seats, nil
}

// BuildSeatMap renders the seat map of a flight grouped by row, with
// per-seat effective prices resolved against the flight's fare classes.
func (s *SeatMapService) BuildSeatMap(flight *models.Flight) (*models.SeatMapResponse, error) {
	seats, err := s.seats.GetByFlight(flight.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load seats: %w", err)
	}

	byRow := make(map[int][]models.Seat)
	available := 0
	for _, seat := range seats {
		price := seat.PriceFor(flight)
		seat.Price = &price
		byRow[seat.Row] = append(byRow[seat.Row], seat)
		if seat.IsBookable() {
			available++
		}
	}

	rowNumbers := make([]int, 0, len(byRow))
	for row := range byRow {
		rowNumbers = append(rowNumbers, row)
	}
	sort.Ints(rowNumbers)

	rows := make([]models.SeatMapRow, 0, len(rowNumbers))
	for _, row := range rowNumbers {
		rowSeats := byRow[row]
		sort.Slice(rowSeats, func(i, j int) bool {
			return rowSeats[i].Column < rowSeats[j].Column
		})
		rows = append(rows, models.SeatMapRow{Row: row, Seats: rowSeats})
	}

	return &models.SeatMapResponse{
		FlightID:   flight.ID,
		TotalSeats: len(seats),
		Available:  available,
		Rows:       rows,
	}, nil
}

// parseLayout converts a layout string like "3-3" into the ordered column
// letters and the set of column indexes that sit before an aisle.
func parseLayout(layout string) ([]string, map[int]bool, error) {
	groups := strings.Split(layout, "-")
	columns := []string{}
	aisleAfter := map[int]bool{}

	for g, group := range groups {
		width, err := strconv.Atoi(group)
		if err != nil || width < 1 {
			return nil, nil, fmt.Errorf("bad layout group %q", group)
		}
		for i := 0; i < width; i++ {
			columns = append(columns, string(rune('A'+len(columns))))
		}
		if g < len(groups)-1 {
			aisleAfter[len(columns)-1] = true
		}
	}

	if len(columns) > 26 {
		return nil, nil, fmt.Errorf("layout %q exceeds 26 columns", layout)
	}

	return columns, aisleAfter, nil
}

func seatFeatures(index, total int, aisleAfter map[int]bool) []string {
	features := []string{}
	if index == 0 || index == total-1 {
		features = append(features, "window")
	}
	if aisleAfter[index] || (index > 0 && aisleAfter[index-1]) {
		features = append(features, "aisle")
	}
	return features
}
