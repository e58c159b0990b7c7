package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"slotbook/internal/database"
	"slotbook/internal/models"
)

// NameMatch selects how FindByName compares airline names
type NameMatch int

const (
	MatchExact NameMatch = iota
	MatchFold
	// MatchPartial prefers exact, then prefix, then substring hits
	MatchPartial
)

type AirlineRepository struct {
	db *database.DB
}

func NewAirlineRepository(db *database.DB) *AirlineRepository {
	return &AirlineRepository{db: db}
}

const airlineColumns = `id, COALESCE(iata, ''), COALESCE(icao, ''), airline_name, COALESCE(callsign, ''), created_at, updated_at`

func scanAirline(row scanner) (*models.Airline, error) {
	a := &models.Airline{}
	err := row.Scan(&a.ID, &a.IATA, &a.ICAO, &a.Name, &a.Callsign, &a.CreatedAt, &a.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return a, nil
}

func (r *AirlineRepository) GetByIATA(ctx context.Context, code string) (*models.Airline, error) {
	query := `SELECT ` + airlineColumns + ` FROM airlines WHERE iata = $1 LIMIT 1`
	return scanAirline(r.db.QueryRowContext(ctx, query, code))
}

func (r *AirlineRepository) GetByICAO(ctx context.Context, code string) (*models.Airline, error) {
	query := `SELECT ` + airlineColumns + ` FROM airlines WHERE icao = $1 LIMIT 1`
	return scanAirline(r.db.QueryRowContext(ctx, query, code))
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func (r *AirlineRepository) FindByName(ctx context.Context, name string, match NameMatch) (*models.Airline, error) {
	var query string
	args := []any{name}

	switch match {
	case MatchExact:
		query = `SELECT ` + airlineColumns + ` FROM airlines WHERE airline_name = $1 LIMIT 1`
	case MatchFold:
		query = `SELECT ` + airlineColumns + ` FROM airlines WHERE LOWER(airline_name) = LOWER($1) LIMIT 1`
	case MatchPartial:
		query = `
			SELECT ` + airlineColumns + `
			FROM airlines
			WHERE airline_name <> '' AND LOWER(airline_name) LIKE '%' || LOWER($2) || '%'
			ORDER BY
				CASE
					WHEN LOWER(airline_name) = LOWER($1) THEN 0
					WHEN LOWER(airline_name) LIKE LOWER($2) || '%' THEN 1
					ELSE 2
				END,
				LENGTH(airline_name), id
			LIMIT 1`
		args = append(args, likeEscaper.Replace(name))
	default:
		return nil, fmt.Errorf("unknown name match %d", match)
	}

	return scanAirline(r.db.QueryRowContext(ctx, query, args...))
}

// Create inserts a reference row. It reports false when a concurrent writer
// already holds one of the codes; the existing row is left untouched.
func (r *AirlineRepository) Create(ctx context.Context, airline *models.Airline) (bool, error) {
	query := `
		INSERT INTO airlines (iata, icao, airline_name, callsign)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT DO NOTHING
		RETURNING id, created_at, updated_at`

	err := r.db.QueryRowContext(ctx, query,
		nullIfEmpty(airline.IATA),
		nullIfEmpty(airline.ICAO),
		airline.Name,
		nullIfEmpty(airline.Callsign),
	).Scan(&airline.ID, &airline.CreatedAt, &airline.UpdatedAt)

	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to create airline: %w", err)
	}
	return true, nil
}

// FillMissing sets only the fields that are currently NULL or blank
func (r *AirlineRepository) FillMissing(ctx context.Context, id int64, iata, icao, name string) error {
	query := `
		UPDATE airlines SET
			iata = CASE WHEN COALESCE(iata, '') = '' THEN COALESCE($2, iata) ELSE iata END,
			icao = CASE WHEN COALESCE(icao, '') = '' THEN COALESCE($3, icao) ELSE icao END,
			airline_name = CASE WHEN airline_name = '' AND $4 <> '' THEN $4 ELSE airline_name END,
			updated_at = NOW()
		WHERE id = $1`

	_, err := r.db.ExecContext(ctx, query, id, nullIfEmpty(iata), nullIfEmpty(icao), strings.TrimSpace(name))
	if database.IsUniqueViolation(err, "") {
		// another airline owns the code; keep existing data
		return nil
	}
	return err
}

func (r *AirlineRepository) List(ctx context.Context) ([]models.Airline, error) {
	query := `SELECT ` + airlineColumns + ` FROM airlines ORDER BY airline_name`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var airlines []models.Airline
	for rows.Next() {
		a, err := scanAirline(rows)
		if err != nil {
			return nil, err
		}
		airlines = append(airlines, *a)
	}
	return airlines, rows.Err()
}
