// Package repositorytest is an in-memory implementation of the service storage
// contracts. It mirrors the Postgres constraints that the services rely on:
// one booking per flight, cascading flight deletes, unique airline codes.
package repositorytest

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"slotbook/internal/models"
	"slotbook/internal/repository"
)

type Store struct {
	mu sync.Mutex

	seq      int64
	airlines map[int64]models.Airline
	airports map[string]models.Airport
	flights  map[int64]models.Flight
	bookings map[int64]models.Booking // by flight id
	users    map[int64]models.User
	events   []models.Event
	slots    map[int64]models.PrivateSlotRequest

	failAirlines error
}

func New() *Store {
	return &Store{
		airlines: map[int64]models.Airline{},
		airports: map[string]models.Airport{},
		flights:  map[int64]models.Flight{},
		bookings: map[int64]models.Booking{},
		users:    map[int64]models.User{},
		slots:    map[int64]models.PrivateSlotRequest{},
	}
}

func (s *Store) nextID() int64 {
	s.seq++
	return s.seq
}

// FailAirlines makes every airline lookup return err; nil restores normal behaviour
func (s *Store) FailAirlines(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failAirlines = err
}

// Seed helpers

func (s *Store) AddAirline(iata, icao, name string) models.Airline {
	s.mu.Lock()
	defer s.mu.Unlock()
	a := models.Airline{ID: s.nextID(), IATA: iata, ICAO: icao, Name: name, CreatedAt: time.Now()}
	s.airlines[a.ID] = a
	return a
}

func (s *Store) AddAirport(icao, name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.airports[icao] = models.Airport{ICAO: icao, Name: name}
}

func (s *Store) AddUser(vid int64, name, email string) models.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	u := models.User{VID: vid, Name: name, CreatedAt: time.Now()}
	if email != "" {
		u.Email = &email
	}
	s.users[vid] = u
	return u
}

// GrantRole adds a role to an existing user
func (s *Store) GrantRole(vid int64, role string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u := s.users[vid]
	u.VID = vid
	u.Roles = append(u.Roles, role)
	s.users[vid] = u
}

func (s *Store) AddEvent(isOpen, privateSlots bool) models.Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	e := models.Event{ID: s.nextID(), IsOpen: isOpen, PrivateSlotsEnabled: privateSlots, CreatedAt: time.Now()}
	s.events = append(s.events, e)
	return e
}

func (s *Store) AllAirlines() []models.Airline {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Airline, 0, len(s.airlines))
	for _, a := range s.airlines {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (s *Store) BookingCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.bookings)
}

func (s *Store) Airlines() *Airlines         { return &Airlines{s} }
func (s *Store) Airports() *Airports         { return &Airports{s} }
func (s *Store) Flights() *Flights           { return &Flights{s} }
func (s *Store) Bookings() *Bookings         { return &Bookings{s} }
func (s *Store) Users() *Users               { return &Users{s} }
func (s *Store) Events() *Events             { return &Events{s} }
func (s *Store) PrivateSlots() *PrivateSlots { return &PrivateSlots{s} }

// Airlines

type Airlines struct{ s *Store }

func (r *Airlines) find(match func(models.Airline) bool) (*models.Airline, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.failAirlines != nil {
		return nil, r.s.failAirlines
	}
	var ids []int64
	for id, a := range r.s.airlines {
		if match(a) {
			ids = append(ids, id)
		}
	}
	if len(ids) == 0 {
		return nil, nil
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	a := r.s.airlines[ids[0]]
	return &a, nil
}

func (r *Airlines) GetByIATA(_ context.Context, code string) (*models.Airline, error) {
	return r.find(func(a models.Airline) bool { return a.IATA != "" && a.IATA == code })
}

func (r *Airlines) GetByICAO(_ context.Context, code string) (*models.Airline, error) {
	return r.find(func(a models.Airline) bool { return a.ICAO != "" && a.ICAO == code })
}

func (r *Airlines) FindByName(_ context.Context, name string, match repository.NameMatch) (*models.Airline, error) {
	switch match {
	case repository.MatchExact:
		return r.find(func(a models.Airline) bool { return a.Name == name })
	case repository.MatchFold:
		return r.find(func(a models.Airline) bool { return strings.EqualFold(a.Name, name) })
	}

	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.failAirlines != nil {
		return nil, r.s.failAirlines
	}

	needle := strings.ToLower(name)
	rank := func(a models.Airline) int {
		hay := strings.ToLower(a.Name)
		switch {
		case hay == needle:
			return 0
		case strings.HasPrefix(hay, needle):
			return 1
		}
		return 2
	}

	var hits []models.Airline
	for _, a := range r.s.airlines {
		if a.Name != "" && strings.Contains(strings.ToLower(a.Name), needle) {
			hits = append(hits, a)
		}
	}
	if len(hits) == 0 {
		return nil, nil
	}
	sort.Slice(hits, func(i, j int) bool {
		ri, rj := rank(hits[i]), rank(hits[j])
		if ri != rj {
			return ri < rj
		}
		if len(hits[i].Name) != len(hits[j].Name) {
			return len(hits[i].Name) < len(hits[j].Name)
		}
		return hits[i].ID < hits[j].ID
	})
	return &hits[0], nil
}

func (r *Airlines) Create(_ context.Context, airline *models.Airline) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.failAirlines != nil {
		return false, r.s.failAirlines
	}
	for _, a := range r.s.airlines {
		if (airline.IATA != "" && a.IATA == airline.IATA) || (airline.ICAO != "" && a.ICAO == airline.ICAO) {
			return false, nil
		}
	}
	airline.ID = r.s.nextID()
	airline.CreatedAt = time.Now()
	airline.UpdatedAt = airline.CreatedAt
	r.s.airlines[airline.ID] = *airline
	return true, nil
}

func (r *Airlines) FillMissing(_ context.Context, id int64, iata, icao, name string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.failAirlines != nil {
		return r.s.failAirlines
	}
	a, ok := r.s.airlines[id]
	if !ok {
		return nil
	}
	if a.IATA == "" && iata != "" {
		a.IATA = iata
	}
	if a.ICAO == "" && icao != "" {
		a.ICAO = icao
	}
	if strings.TrimSpace(a.Name) == "" && name != "" {
		a.Name = name
	}
	a.UpdatedAt = time.Now()
	r.s.airlines[id] = a
	return nil
}

// Airports

type Airports struct{ s *Store }

func (r *Airports) GetByICAO(_ context.Context, icao string) (*models.Airport, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	a, ok := r.s.airports[icao]
	if !ok {
		return nil, nil
	}
	return &a, nil
}

// Users

type Users struct{ s *Store }

func (r *Users) GetByVID(_ context.Context, vid int64) (*models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[vid]
	if !ok {
		return nil, nil
	}
	return &u, nil
}

func (r *Users) Upsert(_ context.Context, user *models.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	existing, ok := r.s.users[user.VID]
	if ok {
		if user.Email == nil {
			user.Email = existing.Email
		}
		user.IsStaff = existing.IsStaff
		user.Roles = existing.Roles
		user.CreatedAt = existing.CreatedAt
	} else {
		user.CreatedAt = time.Now()
	}
	r.s.users[user.VID] = *user
	return nil
}

// Events

type Events struct{ s *Store }

func (r *Events) Current(_ context.Context) (*models.Event, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if len(r.s.events) == 0 {
		return nil, nil
	}
	e := r.s.events[len(r.s.events)-1]
	return &e, nil
}
