package service_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	apperrors "slotbook/internal/errors"
	"slotbook/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var open = models.EventSettings{IsOpen: true}

func seedFlight(t *testing.T, fx *fixture, number string) *models.Flight {
	t.Helper()
	f := &models.Flight{
		FlightNumber: number, Aircraft: "A320", OriginICAO: "OMDB", DestinationICAO: "OEJN",
		DepartureTimeZulu: "08:00", Category: models.CategoryDeparture, Source: models.SourceManual,
	}
	require.NoError(t, fx.store.Flights().Create(context.Background(), f))
	return f
}

func TestBookConcurrentSingleWinner(t *testing.T) {
	fx := newFixture(t)
	flight := seedFlight(t, fx, "FYC701")

	const members = 20
	for i := 1; i <= members; i++ {
		fx.store.AddUser(int64(1000+i), "Member", "")
	}

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		wins    int
		already int
	)
	for i := 1; i <= members; i++ {
		wg.Add(1)
		go func(vid int64) {
			defer wg.Done()
			_, err := fx.services.Bookings.Book(context.Background(), open, flight.ID, vid)
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				wins++
			case errors.Is(err, apperrors.ErrAlreadyBooked):
				already++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}(int64(1000 + i))
	}
	wg.Wait()

	assert.Equal(t, 1, wins)
	assert.Equal(t, members-1, already)
	assert.Equal(t, 1, fx.store.BookingCount())
	assert.Equal(t, []string{models.EventBookingConfirmed}, fx.pub.Subjects())
}

func TestBookClosed(t *testing.T) {
	fx := newFixture(t)
	flight := seedFlight(t, fx, "FYC701")
	fx.store.AddUser(1, "A", "")

	_, err := fx.services.Bookings.Book(context.Background(), models.EventSettings{}, flight.ID, 1)
	assert.ErrorIs(t, err, apperrors.ErrBookingClosed)
	assert.Zero(t, fx.store.BookingCount())
	assert.Empty(t, fx.pub.Messages())
}

func TestBookUnknownFlight(t *testing.T) {
	fx := newFixture(t)
	fx.store.AddUser(1, "A", "")

	_, err := fx.services.Bookings.Book(context.Background(), open, 999, 1)
	assert.ErrorIs(t, err, apperrors.ErrFlightNotFound)
}

func TestBookNotificationCarriesFlightAndContact(t *testing.T) {
	fx := newFixture(t)
	flight := seedFlight(t, fx, "FYC701")
	fx.store.AddUser(1, "Pilot One", "one@example.com")

	booking, err := fx.services.Bookings.Book(context.Background(), open, flight.ID, 1)
	require.NoError(t, err)
	assert.Equal(t, flight.ID, booking.FlightID)

	var event models.BookingConfirmedEvent
	require.NoError(t, fx.pub.Decode(0, &event))
	assert.Equal(t, "FYC701", event.Flight.FlightNumber)
	assert.Equal(t, "one@example.com", event.Recipient.Email)
	assert.NotEmpty(t, event.MessageID)
}

func TestBookSucceedsWhenNotificationFails(t *testing.T) {
	fx := newFixture(t)
	flight := seedFlight(t, fx, "FYC701")
	fx.store.AddUser(1, "A", "")
	fx.pub.Err = errors.New("nats down")

	booking, err := fx.services.Bookings.Book(context.Background(), open, flight.ID, 1)
	require.NoError(t, err)
	assert.NotZero(t, booking.ID)
	assert.Equal(t, 1, fx.store.BookingCount())
}

func TestUnbook(t *testing.T) {
	ctx := context.Background()

	setup := func(t *testing.T) (*fixture, *models.Flight) {
		fx := newFixture(t)
		flight := seedFlight(t, fx, "MSR707")
		fx.store.AddUser(1, "Owner", "owner@example.com")
		fx.store.AddUser(2, "Other", "")
		_, err := fx.services.Bookings.Book(ctx, open, flight.ID, 1)
		require.NoError(t, err)
		return fx, flight
	}

	t.Run("owner releases own booking", func(t *testing.T) {
		fx, flight := setup(t)

		removed, err := fx.services.Bookings.Unbook(ctx, flight.ID, 1, false)
		require.NoError(t, err)
		assert.Equal(t, int64(1), removed.BookedByVID)
		assert.Zero(t, fx.store.BookingCount())
	})

	t.Run("other member cannot release", func(t *testing.T) {
		fx, flight := setup(t)

		_, err := fx.services.Bookings.Unbook(ctx, flight.ID, 2, false)
		assert.ErrorIs(t, err, apperrors.ErrBookingNotFound)
		assert.Equal(t, 1, fx.store.BookingCount())
	})

	t.Run("admin releases and owner is notified", func(t *testing.T) {
		fx, flight := setup(t)

		_, err := fx.services.Bookings.Unbook(ctx, flight.ID, 2, true)
		require.NoError(t, err)
		assert.Zero(t, fx.store.BookingCount())

		subjects := fx.pub.Subjects()
		require.Equal(t, []string{models.EventBookingConfirmed, models.EventBookingCancelled}, subjects)

		var event models.BookingCancelledEvent
		require.NoError(t, fx.pub.Decode(1, &event))
		assert.Equal(t, int64(1), event.Recipient.VID)
		assert.Equal(t, "owner@example.com", event.Recipient.Email)
		assert.Equal(t, int64(2), event.CancelledBy)
		assert.True(t, event.ByAdmin)
	})

	t.Run("nothing to release", func(t *testing.T) {
		fx, flight := setup(t)

		_, err := fx.services.Bookings.Unbook(ctx, flight.ID, 1, false)
		require.NoError(t, err)
		_, err = fx.services.Bookings.Unbook(ctx, flight.ID, 1, false)
		assert.ErrorIs(t, err, apperrors.ErrBookingNotFound)
	})

	t.Run("rebook after release", func(t *testing.T) {
		fx, flight := setup(t)

		_, err := fx.services.Bookings.Unbook(ctx, flight.ID, 1, false)
		require.NoError(t, err)
		_, err = fx.services.Bookings.Book(ctx, open, flight.ID, 2)
		assert.NoError(t, err)
	})
}

func TestDeleteFlightCascadesBooking(t *testing.T) {
	ctx := context.Background()
	fx := newFixture(t)
	flight := seedFlight(t, fx, "EK205")
	fx.store.AddUser(1, "A", "")
	_, err := fx.services.Bookings.Book(ctx, open, flight.ID, 1)
	require.NoError(t, err)

	require.NoError(t, fx.services.Flights.Delete(ctx, flight.ID))

	assert.Zero(t, fx.store.BookingCount())
	mine, err := fx.services.Bookings.ListForUser(ctx, 1)
	require.NoError(t, err)
	assert.Empty(t, mine)
}
