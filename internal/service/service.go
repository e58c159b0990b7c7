package service

import (
	"slotbook/internal/metrics"
	"slotbook/internal/repository"
)

type Services struct {
	Events       *EventService
	Users        *UserService
	Airlines     *AirlineResolver
	Flights      *FlightService
	Bookings     *BookingService
	PrivateSlots *PrivateSlotService
}

// Stores groups the storage contracts the services are built on
type Stores struct {
	Airlines     AirlineStore
	Airports     AirportStore
	Flights      FlightStore
	Bookings     BookingStore
	Users        UserStore
	Events       EventStore
	PrivateSlots PrivateSlotStore
}

// StoresFrom adapts the Postgres repositories
func StoresFrom(repos *repository.Repositories) Stores {
	return Stores{
		Airlines:     repos.Airlines,
		Airports:     repos.Airports,
		Flights:      repos.Flights,
		Bookings:     repos.Bookings,
		Users:        repos.Users,
		Events:       repos.Events,
		PrivateSlots: repos.PrivateSlots,
	}
}

func NewServices(stores Stores, publisher Publisher, index FlightIndex, m *metrics.Metrics) *Services {
	resolver := NewAirlineResolver(stores.Airlines, stores.Flights, m)

	return &Services{
		Events:       NewEventService(stores.Events),
		Users:        NewUserService(stores.Users),
		Airlines:     resolver,
		Flights:      NewFlightService(stores.Flights, stores.Bookings, stores.Airports, stores.Users, resolver, index, publisher, m),
		Bookings:     NewBookingService(stores.Bookings, stores.Flights, stores.Users, publisher, m),
		PrivateSlots: NewPrivateSlotService(stores.PrivateSlots, stores.Users, publisher, m),
	}
}
