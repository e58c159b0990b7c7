package models

import (
	"time"
)

// Категории рейсов расписания
const (
	CategoryDeparture = "departure"
	CategoryArrival   = "arrival"
	CategoryPrivate   = "private"
)

// Происхождение записи рейса
const (
	SourceManual = "manual"
	SourceImport = "import"
)

// Статусы заявки на частный слот
const (
	SlotStatusPending   = "pending"
	SlotStatusApproved  = "approved"
	SlotStatusRejected  = "rejected"
	SlotStatusCancelled = "cancelled"
)

// Роли, выдаваемые администраторами
const (
	RoleAdmin        = "admin"
	RolePrivateAdmin = "private_admin"
)

// User is a community member identified by VID
type User struct {
	VID       int64     `json:"vid" db:"vid"`
	Name      string    `json:"name" db:"name"`
	Email     *string   `json:"email,omitempty" db:"email"`
	IsStaff   bool      `json:"is_staff" db:"is_staff"`
	Roles     []string  `json:"roles,omitempty"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

func (u *User) HasRole(role string) bool {
	for _, r := range u.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// IsAdmin: staff flag or the admin role
func (u *User) IsAdmin() bool {
	return u.IsStaff || u.HasRole(RoleAdmin)
}

// IsPrivateAdmin can review private slot requests
func (u *User) IsPrivateAdmin() bool {
	return u.IsAdmin() || u.HasRole(RolePrivateAdmin)
}

// Event is the bookable occasion; only the latest row matters
type Event struct {
	ID                  int64     `json:"id" db:"id"`
	Title               string    `json:"title" db:"title"`
	IsOpen              bool      `json:"is_open" db:"is_open"`
	PrivateSlotsEnabled bool      `json:"private_slots_enabled" db:"private_slots_enabled"`
	CreatedAt           time.Time `json:"created_at" db:"created_at"`
}

// EventSettings is the per-request snapshot of the current event switches
type EventSettings struct {
	IsOpen              bool `json:"is_open"`
	PrivateSlotsEnabled bool `json:"private_slots_enabled"`
}

// Settings returns the switches of e; a nil event is closed
func (e *Event) Settings() EventSettings {
	if e == nil {
		return EventSettings{}
	}
	return EventSettings{IsOpen: e.IsOpen, PrivateSlotsEnabled: e.PrivateSlotsEnabled}
}

// Airline is an entry of the airline reference table. Empty code means absent.
type Airline struct {
	ID        int64     `json:"id" db:"id"`
	IATA      string    `json:"iata,omitempty" db:"iata"`
	ICAO      string    `json:"icao,omitempty" db:"icao"`
	Name      string    `json:"airline_name" db:"airline_name"`
	Callsign  string    `json:"callsign,omitempty" db:"callsign"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// Airport is reference data used to fill origin/destination names
type Airport struct {
	ICAO        string `json:"icao" db:"icao"`
	Name        string `json:"airport_name" db:"airport_name"`
	CountryCode string `json:"country_code,omitempty" db:"country_code"`
}

// Flight is a timetable row. Airline fields use "" for absent.
type Flight struct {
	ID                int64     `json:"id" db:"id"`
	Source            string    `json:"source" db:"source"`
	FlightNumber      string    `json:"flight_number" db:"flight_number"`
	AirlineName       string    `json:"airline_name,omitempty" db:"airline_name"`
	AirlineIATA       string    `json:"airline_iata,omitempty" db:"airline_iata"`
	AirlineICAO       string    `json:"airline_icao,omitempty" db:"airline_icao"`
	Aircraft          string    `json:"aircraft" db:"aircraft"`
	OriginICAO        string    `json:"origin_icao" db:"origin_icao"`
	OriginName        string    `json:"origin_name" db:"origin_name"`
	DestinationICAO   string    `json:"destination_icao" db:"destination_icao"`
	DestinationName   string    `json:"destination_name" db:"destination_name"`
	DepartureTimeZulu string    `json:"departure_time_zulu" db:"departure_time_zulu"`
	Route             *string   `json:"route,omitempty" db:"route"`
	Gate              *string   `json:"gate,omitempty" db:"gate"`
	Category          string    `json:"category" db:"category"`
	CreatedAt         time.Time `json:"created_at" db:"created_at"`
}

// Booking reserves one flight for one member
type Booking struct {
	ID          int64     `json:"id" db:"id"`
	FlightID    int64     `json:"flight_id" db:"flight_id"`
	BookedByVID int64     `json:"booked_by_vid" db:"booked_by_vid"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}

// TimetableEntry is a flight together with its booking, if any
type TimetableEntry struct {
	Flight
	BookedByVID  *int64 `json:"booked_by_vid,omitempty"`
	BookedByName string `json:"booked_by_name,omitempty"`
}

// PrivateSlotRequest is a member's request for a private slot
type PrivateSlotRequest struct {
	ID                 int64      `json:"id" db:"id"`
	VID                int64      `json:"vid" db:"vid"`
	FlightNumber       string     `json:"flight_number" db:"flight_number"`
	AircraftType       string     `json:"aircraft_type" db:"aircraft_type"`
	OriginICAO         string     `json:"origin_icao" db:"origin_icao"`
	DestinationICAO    string     `json:"destination_icao" db:"destination_icao"`
	DepartureTimeZulu  string     `json:"departure_time_zulu" db:"departure_time_zulu"`
	Status             string     `json:"status" db:"status"`
	RejectionReason    *string    `json:"rejection_reason,omitempty" db:"rejection_reason"`
	CancellationReason *string    `json:"cancellation_reason,omitempty" db:"cancellation_reason"`
	CreatedAt          time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt          *time.Time `json:"updated_at,omitempty" db:"updated_at"`
	RequesterName      string     `json:"requester_name,omitempty"`
}
