package service

import (
	"context"

	"slotbook/internal/models"
	"slotbook/internal/repository"
)

// Storage contracts. Postgres repositories and the in-memory store in
// repository/repositorytest both satisfy them. Lookups return (nil, nil) on miss.

type AirlineStore interface {
	GetByIATA(ctx context.Context, code string) (*models.Airline, error)
	GetByICAO(ctx context.Context, code string) (*models.Airline, error)
	FindByName(ctx context.Context, name string, match repository.NameMatch) (*models.Airline, error)
	Create(ctx context.Context, airline *models.Airline) (bool, error)
	FillMissing(ctx context.Context, id int64, iata, icao, name string) error
}

type AirportStore interface {
	GetByICAO(ctx context.Context, icao string) (*models.Airport, error)
}

type FlightStore interface {
	Create(ctx context.Context, f *models.Flight) error
	Update(ctx context.Context, f *models.Flight) error
	GetByID(ctx context.Context, id int64) (*models.Flight, error)
	Delete(ctx context.Context, id int64) (bool, error)
	DeleteAll(ctx context.Context) (int64, error)
	ListByCategory(ctx context.Context, category string) ([]models.TimetableEntry, error)
	ListBookedBy(ctx context.Context, vid int64) ([]models.TimetableEntry, error)
	ListAll(ctx context.Context) ([]models.Flight, error)
	UpdateAirlineName(ctx context.Context, id int64, name string) error
	UpdateAirlineCodes(ctx context.Context, id int64, iata, icao string) error
}

type BookingStore interface {
	Create(ctx context.Context, booking *models.Booking) error
	GetByFlight(ctx context.Context, flightID int64) (*models.Booking, error)
	Delete(ctx context.Context, flightID int64, ownerVID *int64) (*models.Booking, error)
}

type UserStore interface {
	GetByVID(ctx context.Context, vid int64) (*models.User, error)
	Upsert(ctx context.Context, user *models.User) error
}

type EventStore interface {
	Current(ctx context.Context) (*models.Event, error)
}

type PrivateSlotStore interface {
	Create(ctx context.Context, p *models.PrivateSlotRequest) error
	GetByID(ctx context.Context, id int64) (*models.PrivateSlotRequest, error)
	List(ctx context.Context, status string) ([]models.PrivateSlotRequest, error)
	UpdateStatus(ctx context.Context, id int64, status string, rejection, cancellation *string) (*models.PrivateSlotRequest, error)
	Delete(ctx context.Context, id int64) (bool, error)
	DeleteAll(ctx context.Context) (int64, error)
	CountByStatus(ctx context.Context) (models.PrivateSlotStats, error)
}

// Publisher is satisfied by *messaging.NATSClient
type Publisher interface {
	Publish(subject string, data interface{}) error
}

// FlightIndex is the optional full-text timetable index
type FlightIndex interface {
	IndexFlight(ctx context.Context, f *models.Flight) error
	DeleteFlight(ctx context.Context, id int64) error
	DeleteAll(ctx context.Context) error
	SearchFlights(ctx context.Context, query, category string, limit int) ([]models.Flight, error)
}
