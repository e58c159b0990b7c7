package repository

import (
	"context"
	"database/sql"

	"slotbook/internal/database"
	"slotbook/internal/models"
)

type AirportRepository struct {
	db *database.DB
}

func NewAirportRepository(db *database.DB) *AirportRepository {
	return &AirportRepository{db: db}
}

func (r *AirportRepository) GetByICAO(ctx context.Context, icao string) (*models.Airport, error) {
	a := &models.Airport{}
	query := `SELECT icao, airport_name, COALESCE(country_code, '') FROM airports WHERE icao = $1`

	err := r.db.QueryRowContext(ctx, query, icao).Scan(&a.ICAO, &a.Name, &a.CountryCode)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return a, err
}
