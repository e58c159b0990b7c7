package repository

import (
	"context"
	"database/sql"
	"fmt"

	"slotbook/internal/database"
	apperrors "slotbook/internal/errors"
	"slotbook/internal/models"
)

type BookingRepository struct {
	db *database.DB
}

func NewBookingRepository(db *database.DB) *BookingRepository {
	return &BookingRepository{db: db}
}

// Create inserts without checking first. The UNIQUE(flight_id) constraint
// decides between concurrent callers.
func (r *BookingRepository) Create(ctx context.Context, booking *models.Booking) error {
	query := `
		INSERT INTO bookings (flight_id, booked_by_vid)
		VALUES ($1, $2)
		RETURNING id, created_at`

	err := r.db.QueryRowContext(ctx, query, booking.FlightID, booking.BookedByVID).
		Scan(&booking.ID, &booking.CreatedAt)

	switch {
	case err == nil:
		return nil
	case database.IsUniqueViolation(err, database.BookingsFlightUnique):
		return apperrors.ErrAlreadyBooked
	case database.IsForeignKeyViolation(err, database.BookingsFlightFK):
		return apperrors.ErrFlightNotFound
	case database.IsForeignKeyViolation(err, database.BookingsUserFK):
		return apperrors.ErrUnauthorized
	}
	return fmt.Errorf("failed to create booking: %w", err)
}

func (r *BookingRepository) GetByFlight(ctx context.Context, flightID int64) (*models.Booking, error) {
	b := &models.Booking{}
	query := `SELECT id, flight_id, booked_by_vid, created_at FROM bookings WHERE flight_id = $1`

	err := r.db.QueryRowContext(ctx, query, flightID).Scan(&b.ID, &b.FlightID, &b.BookedByVID, &b.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return b, err
}

// Delete removes the flight's booking and returns the removed row. When
// ownerVID is set only that member's booking is removed. Returns nil when
// nothing matched.
func (r *BookingRepository) Delete(ctx context.Context, flightID int64, ownerVID *int64) (*models.Booking, error) {
	b := &models.Booking{}
	query := `
		DELETE FROM bookings
		WHERE flight_id = $1 AND ($2::BIGINT IS NULL OR booked_by_vid = $2)
		RETURNING id, flight_id, booked_by_vid, created_at`

	err := r.db.QueryRowContext(ctx, query, flightID, ownerVID).
		Scan(&b.ID, &b.FlightID, &b.BookedByVID, &b.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to delete booking: %w", err)
	}
	return b, nil
}
