package repository

import (
	"context"
	"database/sql"
	"fmt"

	"slotbook/internal/database"
	apperrors "slotbook/internal/errors"
	"slotbook/internal/models"
)

type FlightRepository struct {
	db *database.DB
}

func NewFlightRepository(db *database.DB) *FlightRepository {
	return &FlightRepository{db: db}
}

const flightColumns = `
	f.id, f.source, f.flight_number, COALESCE(f.airline_name, ''), COALESCE(f.airline_iata, ''),
	COALESCE(f.airline_icao, ''), f.aircraft, f.origin_icao, f.origin_name, f.destination_icao,
	f.destination_name, f.departure_time_zulu, f.route, f.gate, f.category, f.created_at`

func flightDest(f *models.Flight) []any {
	return []any{
		&f.ID, &f.Source, &f.FlightNumber, &f.AirlineName, &f.AirlineIATA,
		&f.AirlineICAO, &f.Aircraft, &f.OriginICAO, &f.OriginName, &f.DestinationICAO,
		&f.DestinationName, &f.DepartureTimeZulu, &f.Route, &f.Gate, &f.Category, &f.CreatedAt,
	}
}

func (r *FlightRepository) Create(ctx context.Context, f *models.Flight) error {
	query := `
		INSERT INTO flights (source, flight_number, airline_name, airline_iata, airline_icao, aircraft,
		                     origin_icao, origin_name, destination_icao, destination_name,
		                     departure_time_zulu, route, gate, category)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		RETURNING id, created_at`

	err := r.db.QueryRowContext(ctx, query,
		f.Source,
		f.FlightNumber,
		nullIfEmpty(f.AirlineName),
		nullIfEmpty(f.AirlineIATA),
		nullIfEmpty(f.AirlineICAO),
		f.Aircraft,
		f.OriginICAO,
		f.OriginName,
		f.DestinationICAO,
		f.DestinationName,
		f.DepartureTimeZulu,
		f.Route,
		f.Gate,
		f.Category,
	).Scan(&f.ID, &f.CreatedAt)

	if database.IsUniqueViolation(err, database.FlightsNaturalKey) {
		return apperrors.ErrFlightExists
	}
	if err != nil {
		return fmt.Errorf("failed to create flight: %w", err)
	}
	return nil
}

func (r *FlightRepository) Update(ctx context.Context, f *models.Flight) error {
	query := `
		UPDATE flights SET
			flight_number = $1, airline_name = $2, airline_iata = $3, airline_icao = $4, aircraft = $5,
			origin_icao = $6, origin_name = $7, destination_icao = $8, destination_name = $9,
			departure_time_zulu = $10, route = $11, gate = $12, category = $13
		WHERE id = $14`

	res, err := r.db.ExecContext(ctx, query,
		f.FlightNumber,
		nullIfEmpty(f.AirlineName),
		nullIfEmpty(f.AirlineIATA),
		nullIfEmpty(f.AirlineICAO),
		f.Aircraft,
		f.OriginICAO,
		f.OriginName,
		f.DestinationICAO,
		f.DestinationName,
		f.DepartureTimeZulu,
		f.Route,
		f.Gate,
		f.Category,
		f.ID,
	)
	if database.IsUniqueViolation(err, database.FlightsNaturalKey) {
		return apperrors.ErrFlightExists
	}
	if err != nil {
		return fmt.Errorf("failed to update flight: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperrors.ErrFlightNotFound
	}
	return nil
}

func (r *FlightRepository) GetByID(ctx context.Context, id int64) (*models.Flight, error) {
	f := &models.Flight{}
	query := `SELECT ` + flightColumns + ` FROM flights f WHERE f.id = $1`

	err := r.db.QueryRowContext(ctx, query, id).Scan(flightDest(f)...)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return f, err
}

// Delete removes the flight; its booking goes with it via ON DELETE CASCADE
func (r *FlightRepository) Delete(ctx context.Context, id int64) (bool, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM flights WHERE id = $1`, id)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

// DeleteAll clears bookings and the whole timetable
func (r *FlightRepository) DeleteAll(ctx context.Context) (int64, error) {
	var removed int64
	err := r.db.WithTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM bookings`); err != nil {
			return err
		}
		res, err := tx.ExecContext(ctx, `DELETE FROM flights`)
		if err != nil {
			return err
		}
		removed, err = res.RowsAffected()
		return err
	})
	return removed, err
}

// ListByCategory returns a timetable page ordered by zulu time
func (r *FlightRepository) ListByCategory(ctx context.Context, category string) ([]models.TimetableEntry, error) {
	query := `
		SELECT ` + flightColumns + `, b.booked_by_vid, COALESCE(u.name, '')
		FROM flights f
		LEFT JOIN bookings b ON b.flight_id = f.id
		LEFT JOIN users u ON u.vid = b.booked_by_vid
		WHERE f.category = $1
		ORDER BY f.departure_time_zulu, f.flight_number`

	return r.queryEntries(ctx, query, category)
}

// ListBookedBy returns flights booked by the member
func (r *FlightRepository) ListBookedBy(ctx context.Context, vid int64) ([]models.TimetableEntry, error) {
	query := `
		SELECT ` + flightColumns + `, b.booked_by_vid, COALESCE(u.name, '')
		FROM bookings b
		JOIN flights f ON f.id = b.flight_id
		LEFT JOIN users u ON u.vid = b.booked_by_vid
		WHERE b.booked_by_vid = $1
		ORDER BY f.departure_time_zulu`

	return r.queryEntries(ctx, query, vid)
}

func (r *FlightRepository) queryEntries(ctx context.Context, query string, args ...any) ([]models.TimetableEntry, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := []models.TimetableEntry{}
	for rows.Next() {
		var e models.TimetableEntry
		dest := append(flightDest(&e.Flight), &e.BookedByVID, &e.BookedByName)
		if err := rows.Scan(dest...); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func (r *FlightRepository) ListAll(ctx context.Context) ([]models.Flight, error) {
	query := `SELECT ` + flightColumns + ` FROM flights f ORDER BY f.id`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var flights []models.Flight
	for rows.Next() {
		var f models.Flight
		if err := rows.Scan(flightDest(&f)...); err != nil {
			return nil, err
		}
		flights = append(flights, f)
	}
	return flights, rows.Err()
}

func (r *FlightRepository) UpdateAirlineName(ctx context.Context, id int64, name string) error {
	_, err := r.db.ExecContext(ctx, `UPDATE flights SET airline_name = $1 WHERE id = $2`, nullIfEmpty(name), id)
	return err
}

func (r *FlightRepository) UpdateAirlineCodes(ctx context.Context, id int64, iata, icao string) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE flights SET airline_iata = $1, airline_icao = $2 WHERE id = $3`,
		nullIfEmpty(iata), nullIfEmpty(icao), id)
	return err
}
