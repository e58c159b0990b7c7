package repositorytest

import (
	"context"
	"sort"
	"time"

	apperrors "slotbook/internal/errors"
	"slotbook/internal/models"
)

type Flights struct{ s *Store }

func (r *Flights) conflicts(f *models.Flight) bool {
	for id, other := range r.s.flights {
		if id != f.ID && other.FlightNumber == f.FlightNumber &&
			other.DepartureTimeZulu == f.DepartureTimeZulu && other.Category == f.Category {
			return true
		}
	}
	return false
}

func (r *Flights) Create(_ context.Context, f *models.Flight) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.conflicts(f) {
		return apperrors.ErrFlightExists
	}
	f.ID = r.s.nextID()
	f.CreatedAt = time.Now()
	r.s.flights[f.ID] = *f
	return nil
}

func (r *Flights) Update(_ context.Context, f *models.Flight) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	existing, ok := r.s.flights[f.ID]
	if !ok {
		return apperrors.ErrFlightNotFound
	}
	if r.conflicts(f) {
		return apperrors.ErrFlightExists
	}
	f.Source = existing.Source
	f.CreatedAt = existing.CreatedAt
	r.s.flights[f.ID] = *f
	return nil
}

func (r *Flights) GetByID(_ context.Context, id int64) (*models.Flight, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	f, ok := r.s.flights[id]
	if !ok {
		return nil, nil
	}
	return &f, nil
}

func (r *Flights) Delete(_ context.Context, id int64) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.flights[id]; !ok {
		return false, nil
	}
	delete(r.s.flights, id)
	delete(r.s.bookings, id)
	return true, nil
}

func (r *Flights) DeleteAll(_ context.Context) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	n := int64(len(r.s.flights))
	r.s.flights = map[int64]models.Flight{}
	r.s.bookings = map[int64]models.Booking{}
	return n, nil
}

func (r *Flights) entries(keep func(models.Flight, *models.Booking) bool) []models.TimetableEntry {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	out := []models.TimetableEntry{}
	for _, f := range r.s.flights {
		var booking *models.Booking
		if b, ok := r.s.bookings[f.ID]; ok {
			booking = &b
		}
		if !keep(f, booking) {
			continue
		}
		e := models.TimetableEntry{Flight: f}
		if booking != nil {
			vid := booking.BookedByVID
			e.BookedByVID = &vid
			e.BookedByName = r.s.users[vid].Name
		}
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].DepartureTimeZulu != out[j].DepartureTimeZulu {
			return out[i].DepartureTimeZulu < out[j].DepartureTimeZulu
		}
		return out[i].FlightNumber < out[j].FlightNumber
	})
	return out
}

func (r *Flights) ListByCategory(_ context.Context, category string) ([]models.TimetableEntry, error) {
	return r.entries(func(f models.Flight, _ *models.Booking) bool { return f.Category == category }), nil
}

func (r *Flights) ListBookedBy(_ context.Context, vid int64) ([]models.TimetableEntry, error) {
	return r.entries(func(_ models.Flight, b *models.Booking) bool { return b != nil && b.BookedByVID == vid }), nil
}

func (r *Flights) ListAll(_ context.Context) ([]models.Flight, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := make([]models.Flight, 0, len(r.s.flights))
	for _, f := range r.s.flights {
		out = append(out, f)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *Flights) UpdateAirlineName(_ context.Context, id int64, name string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if f, ok := r.s.flights[id]; ok {
		f.AirlineName = name
		r.s.flights[id] = f
	}
	return nil
}

func (r *Flights) UpdateAirlineCodes(_ context.Context, id int64, iata, icao string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if f, ok := r.s.flights[id]; ok {
		f.AirlineIATA, f.AirlineICAO = iata, icao
		r.s.flights[id] = f
	}
	return nil
}

// Bookings

type Bookings struct{ s *Store }

func (r *Bookings) Create(_ context.Context, booking *models.Booking) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.flights[booking.FlightID]; !ok {
		return apperrors.ErrFlightNotFound
	}
	if _, ok := r.s.users[booking.BookedByVID]; !ok {
		return apperrors.ErrUnauthorized
	}
	if _, ok := r.s.bookings[booking.FlightID]; ok {
		return apperrors.ErrAlreadyBooked
	}
	booking.ID = r.s.nextID()
	booking.CreatedAt = time.Now()
	r.s.bookings[booking.FlightID] = *booking
	return nil
}

func (r *Bookings) GetByFlight(_ context.Context, flightID int64) (*models.Booking, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	b, ok := r.s.bookings[flightID]
	if !ok {
		return nil, nil
	}
	return &b, nil
}

func (r *Bookings) Delete(_ context.Context, flightID int64, ownerVID *int64) (*models.Booking, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	b, ok := r.s.bookings[flightID]
	if !ok || (ownerVID != nil && b.BookedByVID != *ownerVID) {
		return nil, nil
	}
	delete(r.s.bookings, flightID)
	return &b, nil
}
