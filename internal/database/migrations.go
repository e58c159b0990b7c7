package database

import (
	"fmt"
	"log/slog"
)

// Constraint names referenced by repositories when mapping pq errors.
const (
	BookingsFlightUnique = "bookings_flight_id_key"
	BookingsFlightFK     = "bookings_flight_id_fkey"
	BookingsUserFK       = "bookings_booked_by_vid_fkey"
	FlightsNaturalKey    = "flights_number_time_category_key"
	PrivateSlotsUserFK   = "private_slot_requests_vid_fkey"
)

func (db *DB) RunMigrations() error {
	slog.Info("Running database migrations...")

	migrations := []string{
		createUsersTable,
		createUserRolesTable,
		createEventsTable,
		createAirlinesTable,
		createAirportsTable,
		createFlightsTable,
		createBookingsTable,
		createPrivateSlotRequestsTable,
	}

	for i, migration := range migrations {
		slog.Info("Running migration", "step", i+1)
		if _, err := db.Exec(migration); err != nil {
			return fmt.Errorf("migration %d failed: %w", i+1, err)
		}
	}

	slog.Info("All migrations completed successfully")
	return nil
}

const createUsersTable = `
CREATE TABLE IF NOT EXISTS users (
    vid BIGINT PRIMARY KEY,
    name VARCHAR(255) NOT NULL DEFAULT '',
    email VARCHAR(255),
    is_staff BOOLEAN NOT NULL DEFAULT FALSE,
    created_at TIMESTAMP NOT NULL DEFAULT NOW()
);`

const createUserRolesTable = `
CREATE TABLE IF NOT EXISTS user_roles (
    vid BIGINT NOT NULL REFERENCES users(vid) ON DELETE CASCADE,
    role VARCHAR(32) NOT NULL CHECK (role IN ('admin', 'private_admin')),
    PRIMARY KEY (vid, role)
);`

const createEventsTable = `
CREATE TABLE IF NOT EXISTS events (
    id SERIAL PRIMARY KEY,
    title VARCHAR(255) NOT NULL DEFAULT '',
    is_open BOOLEAN NOT NULL DEFAULT FALSE,
    private_slots_enabled BOOLEAN NOT NULL DEFAULT FALSE,
    created_at TIMESTAMP NOT NULL DEFAULT NOW()
);`

// iata хранится до трех символов: шаг разрешения по трехбуквенному
// префиксу номера рейса ищет его и как IATA.
const createAirlinesTable = `
CREATE TABLE IF NOT EXISTS airlines (
    id SERIAL PRIMARY KEY,
    iata VARCHAR(3),
    icao VARCHAR(3),
    airline_name VARCHAR(255) NOT NULL,
    callsign VARCHAR(64),
    created_at TIMESTAMP NOT NULL DEFAULT NOW(),
    updated_at TIMESTAMP NOT NULL DEFAULT NOW()
);
CREATE UNIQUE INDEX IF NOT EXISTS airlines_iata_key ON airlines (iata) WHERE iata IS NOT NULL AND iata <> '';
CREATE UNIQUE INDEX IF NOT EXISTS airlines_icao_key ON airlines (icao) WHERE icao IS NOT NULL AND icao <> '';
CREATE INDEX IF NOT EXISTS airlines_name_lower_idx ON airlines (LOWER(airline_name));`

const createAirportsTable = `
CREATE TABLE IF NOT EXISTS airports (
    icao VARCHAR(4) PRIMARY KEY,
    airport_name VARCHAR(255) NOT NULL,
    country_code VARCHAR(2)
);`

const createFlightsTable = `
CREATE TABLE IF NOT EXISTS flights (
    id SERIAL PRIMARY KEY,
    source VARCHAR(16) NOT NULL DEFAULT 'manual' CHECK (source IN ('manual', 'import')),
    flight_number VARCHAR(16) NOT NULL,
    airline_name VARCHAR(255),
    airline_iata VARCHAR(3),
    airline_icao VARCHAR(3),
    aircraft VARCHAR(16) NOT NULL DEFAULT '',
    origin_icao CHAR(4) NOT NULL,
    origin_name VARCHAR(255) NOT NULL DEFAULT '',
    destination_icao CHAR(4) NOT NULL,
    destination_name VARCHAR(255) NOT NULL DEFAULT '',
    departure_time_zulu CHAR(5) NOT NULL,
    route TEXT,
    gate VARCHAR(16),
    category VARCHAR(16) NOT NULL CHECK (category IN ('departure', 'arrival', 'private')),
    created_at TIMESTAMP NOT NULL DEFAULT NOW(),
    CONSTRAINT flights_number_time_category_key UNIQUE (flight_number, departure_time_zulu, category)
);
CREATE INDEX IF NOT EXISTS flights_category_time_idx ON flights (category, departure_time_zulu);`

// Уникальность брони на рейс обеспечивает только этот индекс.
const createBookingsTable = `
CREATE TABLE IF NOT EXISTS bookings (
    id SERIAL PRIMARY KEY,
    flight_id INTEGER NOT NULL,
    booked_by_vid BIGINT NOT NULL,
    created_at TIMESTAMP NOT NULL DEFAULT NOW(),
    CONSTRAINT bookings_flight_id_key UNIQUE (flight_id),
    CONSTRAINT bookings_flight_id_fkey FOREIGN KEY (flight_id) REFERENCES flights(id) ON DELETE CASCADE,
    CONSTRAINT bookings_booked_by_vid_fkey FOREIGN KEY (booked_by_vid) REFERENCES users(vid) ON DELETE CASCADE
);
CREATE INDEX IF NOT EXISTS bookings_booked_by_idx ON bookings (booked_by_vid);`

const createPrivateSlotRequestsTable = `
CREATE TABLE IF NOT EXISTS private_slot_requests (
    id SERIAL PRIMARY KEY,
    vid BIGINT NOT NULL,
    flight_number VARCHAR(6) NOT NULL,
    aircraft_type VARCHAR(16) NOT NULL DEFAULT '',
    origin_icao CHAR(4) NOT NULL,
    destination_icao CHAR(4) NOT NULL,
    departure_time_zulu CHAR(5) NOT NULL,
    status VARCHAR(16) NOT NULL DEFAULT 'pending' CHECK (status IN ('pending', 'approved', 'rejected', 'cancelled')),
    rejection_reason TEXT,
    cancellation_reason TEXT,
    created_at TIMESTAMP NOT NULL DEFAULT NOW(),
    updated_at TIMESTAMP,
    CONSTRAINT private_slot_requests_vid_fkey FOREIGN KEY (vid) REFERENCES users(vid) ON DELETE CASCADE
);
CREATE INDEX IF NOT EXISTS private_slot_requests_status_idx ON private_slot_requests (status);`
