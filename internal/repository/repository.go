package repository

import (
	"database/sql"
	"strings"

	"slotbook/internal/database"
)

type Repositories struct {
	Airlines     *AirlineRepository
	Airports     *AirportRepository
	Flights      *FlightRepository
	Bookings     *BookingRepository
	Users        *UserRepository
	Events       *EventRepository
	PrivateSlots *PrivateSlotRepository
}

func NewRepositories(db *database.DB) *Repositories {
	return &Repositories{
		Airlines:     NewAirlineRepository(db),
		Airports:     NewAirportRepository(db),
		Flights:      NewFlightRepository(db),
		Bookings:     NewBookingRepository(db),
		Users:        NewUserRepository(db),
		Events:       NewEventRepository(db),
		PrivateSlots: NewPrivateSlotRepository(db),
	}
}

// nullIfEmpty maps "" to SQL NULL
func nullIfEmpty(s string) sql.NullString {
	s = strings.TrimSpace(s)
	return sql.NullString{String: s, Valid: s != ""}
}

// scanner is satisfied by *sql.Row and *sql.Rows
type scanner interface {
	Scan(dest ...any) error
}
