package repository

import (
	"context"
	"database/sql"
	"fmt"

	"slotbook/internal/database"
	apperrors "slotbook/internal/errors"
	"slotbook/internal/models"
)

type PrivateSlotRepository struct {
	db *database.DB
}

func NewPrivateSlotRepository(db *database.DB) *PrivateSlotRepository {
	return &PrivateSlotRepository{db: db}
}

const privateSlotColumns = `
	p.id, p.vid, p.flight_number, p.aircraft_type, p.origin_icao, p.destination_icao,
	p.departure_time_zulu, p.status, p.rejection_reason, p.cancellation_reason,
	p.created_at, p.updated_at, COALESCE(u.name, '')`

func scanPrivateSlot(row scanner) (*models.PrivateSlotRequest, error) {
	p := &models.PrivateSlotRequest{}
	err := row.Scan(
		&p.ID, &p.VID, &p.FlightNumber, &p.AircraftType, &p.OriginICAO, &p.DestinationICAO,
		&p.DepartureTimeZulu, &p.Status, &p.RejectionReason, &p.CancellationReason,
		&p.CreatedAt, &p.UpdatedAt, &p.RequesterName,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (r *PrivateSlotRepository) Create(ctx context.Context, p *models.PrivateSlotRequest) error {
	query := `
		INSERT INTO private_slot_requests (vid, flight_number, aircraft_type, origin_icao,
		                                   destination_icao, departure_time_zulu, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at`

	err := r.db.QueryRowContext(ctx, query,
		p.VID, p.FlightNumber, p.AircraftType, p.OriginICAO,
		p.DestinationICAO, p.DepartureTimeZulu, p.Status,
	).Scan(&p.ID, &p.CreatedAt)

	if database.IsForeignKeyViolation(err, database.PrivateSlotsUserFK) {
		return apperrors.ErrUnauthorized
	}
	if err != nil {
		return fmt.Errorf("failed to create private slot request: %w", err)
	}
	return nil
}

func (r *PrivateSlotRepository) GetByID(ctx context.Context, id int64) (*models.PrivateSlotRequest, error) {
	query := `
		SELECT ` + privateSlotColumns + `
		FROM private_slot_requests p
		LEFT JOIN users u ON u.vid = p.vid
		WHERE p.id = $1`
	return scanPrivateSlot(r.db.QueryRowContext(ctx, query, id))
}

// List returns requests newest first; empty status lists all of them
func (r *PrivateSlotRepository) List(ctx context.Context, status string) ([]models.PrivateSlotRequest, error) {
	query := `
		SELECT ` + privateSlotColumns + `
		FROM private_slot_requests p
		LEFT JOIN users u ON u.vid = p.vid
		WHERE ($1 = '' OR p.status = $1)
		ORDER BY p.created_at DESC, p.id DESC`

	rows, err := r.db.QueryContext(ctx, query, status)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	requests := []models.PrivateSlotRequest{}
	for rows.Next() {
		p, err := scanPrivateSlot(rows)
		if err != nil {
			return nil, err
		}
		requests = append(requests, *p)
	}
	return requests, rows.Err()
}

// UpdateStatus overwrites status and both reasons. Any status may follow any
// other. Returns nil when the request does not exist.
func (r *PrivateSlotRepository) UpdateStatus(ctx context.Context, id int64, status string, rejection, cancellation *string) (*models.PrivateSlotRequest, error) {
	query := `
		UPDATE private_slot_requests
		SET status = $1, rejection_reason = $2, cancellation_reason = $3, updated_at = NOW()
		WHERE id = $4`

	res, err := r.db.ExecContext(ctx, query, status, rejection, cancellation, id)
	if err != nil {
		return nil, fmt.Errorf("failed to update private slot request: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, nil
	}
	return r.GetByID(ctx, id)
}

func (r *PrivateSlotRepository) Delete(ctx context.Context, id int64) (bool, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM private_slot_requests WHERE id = $1`, id)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

func (r *PrivateSlotRepository) DeleteAll(ctx context.Context) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM private_slot_requests`)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (r *PrivateSlotRepository) CountByStatus(ctx context.Context) (models.PrivateSlotStats, error) {
	var stats models.PrivateSlotStats
	query := `
		SELECT
			COUNT(*) FILTER (WHERE status = 'pending'),
			COUNT(*) FILTER (WHERE status = 'approved'),
			COUNT(*) FILTER (WHERE status = 'rejected'),
			COUNT(*) FILTER (WHERE status = 'cancelled')
		FROM private_slot_requests`

	err := r.db.QueryRowContext(ctx, query).Scan(&stats.Pending, &stats.Approved, &stats.Rejected, &stats.Cancelled)
	return stats, err
}
