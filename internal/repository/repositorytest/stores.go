package repositorytest

import "slotbook/internal/service"

// Stores exposes the store as the service storage contracts
func (s *Store) Stores() service.Stores {
	return service.Stores{
		Airlines:     s.Airlines(),
		Airports:     s.Airports(),
		Flights:      s.Flights(),
		Bookings:     s.Bookings(),
		Users:        s.Users(),
		Events:       s.Events(),
		PrivateSlots: s.PrivateSlots(),
	}
}
