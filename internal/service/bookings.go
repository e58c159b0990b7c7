package service

import (
	"context"
	"errors"
	"fmt"

	apperrors "slotbook/internal/errors"
	"slotbook/internal/logger"
	"slotbook/internal/metrics"
	"slotbook/internal/models"
)

type BookingService struct {
	bookings BookingStore
	flights  FlightStore
	notify   *notifier
	metrics  *metrics.Metrics
}

func NewBookingService(bookings BookingStore, flights FlightStore, users UserStore, publisher Publisher, m *metrics.Metrics) *BookingService {
	return &BookingService{
		bookings: bookings,
		flights:  flights,
		notify:   &notifier{publisher: publisher, users: users, metrics: m},
		metrics:  m,
	}
}

func bookingResult(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, apperrors.ErrBookingClosed):
		return "closed"
	case errors.Is(err, apperrors.ErrAlreadyBooked):
		return "already_booked"
	case errors.Is(err, apperrors.ErrFlightNotFound), errors.Is(err, apperrors.ErrBookingNotFound):
		return "not_found"
	}
	return "error"
}

// Book reserves the flight for userID. There is no availability pre-check:
// the storage uniqueness constraint alone decides concurrent attempts.
func (s *BookingService) Book(ctx context.Context, settings models.EventSettings, flightID, userID int64) (*models.Booking, error) {
	booking, err := s.book(ctx, settings, flightID, userID)
	s.metrics.Booking("book", bookingResult(err))
	return booking, err
}

func (s *BookingService) book(ctx context.Context, settings models.EventSettings, flightID, userID int64) (*models.Booking, error) {
	if !settings.IsOpen {
		return nil, apperrors.ErrBookingClosed
	}

	booking := &models.Booking{FlightID: flightID, BookedByVID: userID}
	if err := s.bookings.Create(ctx, booking); err != nil {
		if errors.Is(err, apperrors.ErrAlreadyBooked) || errors.Is(err, apperrors.ErrFlightNotFound) ||
			errors.Is(err, apperrors.ErrUnauthorized) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to create booking: %w", err)
	}

	logger.WithContext(ctx).Info("Flight booked", "flight_id", flightID, "booking_id", booking.ID)

	flight, err := s.flights.GetByID(ctx, flightID)
	if err != nil || flight == nil {
		logger.WithContext(ctx).Warn("Booked flight not readable for notification", "flight_id", flightID, "error", err)
		return booking, nil
	}

	s.notify.publish(ctx, models.EventBookingConfirmed, models.BookingConfirmedEvent{
		MessageID: newMessageID(),
		BookingID: booking.ID,
		Flight:    *flight,
		Recipient: s.notify.recipient(ctx, userID),
		Timestamp: now(),
	})

	return booking, nil
}

// Unbook releases a booking. Admins release any booking on the flight,
// members only their own. The removed row is what gets notified.
func (s *BookingService) Unbook(ctx context.Context, flightID, userID int64, isAdmin bool) (*models.Booking, error) {
	booking, err := s.unbook(ctx, flightID, userID, isAdmin)
	s.metrics.Booking("unbook", bookingResult(err))
	return booking, err
}

func (s *BookingService) unbook(ctx context.Context, flightID, userID int64, isAdmin bool) (*models.Booking, error) {
	flight, err := s.flights.GetByID(ctx, flightID)
	if err != nil {
		return nil, fmt.Errorf("failed to get flight: %w", err)
	}
	if flight == nil {
		return nil, apperrors.ErrFlightNotFound
	}

	var owner *int64
	if !isAdmin {
		owner = &userID
	}

	removed, err := s.bookings.Delete(ctx, flightID, owner)
	if err != nil {
		return nil, fmt.Errorf("failed to delete booking: %w", err)
	}
	if removed == nil {
		return nil, apperrors.ErrBookingNotFound
	}

	logger.WithContext(ctx).Info("Booking removed",
		"flight_id", flightID,
		"booking_id", removed.ID,
		"owner_vid", removed.BookedByVID,
		"by_admin", isAdmin)

	s.notify.publish(ctx, models.EventBookingCancelled, models.BookingCancelledEvent{
		MessageID:   newMessageID(),
		BookingID:   removed.ID,
		Flight:      *flight,
		Recipient:   s.notify.recipient(ctx, removed.BookedByVID),
		CancelledBy: userID,
		ByAdmin:     isAdmin,
		Timestamp:   now(),
	})

	return removed, nil
}

// ListForUser returns the flights the member has booked
func (s *BookingService) ListForUser(ctx context.Context, userID int64) ([]models.TimetableEntry, error) {
	entries, err := s.flights.ListBookedBy(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list bookings: %w", err)
	}
	return entries, nil
}
