package service_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	apperrors "slotbook/internal/errors"
	"slotbook/internal/models"
	"slotbook/internal/validation"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func flightRequest() *models.FlightRequest {
	return &models.FlightRequest{
		FlightNumber:      "ek205",
		Aircraft:          "b77w",
		OriginICAO:        "omdb",
		DestinationICAO:   "egll",
		DepartureTimeZulu: "0930",
		Gate:              strPtr("A1"),
		Category:          models.CategoryDeparture,
	}
}

func TestCreateFlightResolvesAirline(t *testing.T) {
	ctx := context.Background()
	fx := newFixture(t)
	fx.store.AddAirline("EK", "UAE", "Emirates")
	fx.store.AddAirport("OMDB", "Dubai International")

	f, err := fx.services.Flights.Create(ctx, flightRequest())
	require.NoError(t, err)

	assert.Equal(t, "EK205", f.FlightNumber)
	assert.Equal(t, "Emirates", f.AirlineName)
	assert.Equal(t, "EK", f.AirlineIATA)
	assert.Equal(t, "UAE", f.AirlineICAO)
	assert.Equal(t, "Dubai International", f.OriginName)
	assert.Equal(t, "EGLL", f.DestinationName)
	assert.Equal(t, "09:30", f.DepartureTimeZulu)
	assert.Equal(t, models.SourceManual, f.Source)
}

func TestCreateFlightValidatesBeforeWriting(t *testing.T) {
	ctx := context.Background()
	fx := newFixture(t)

	req := flightRequest()
	req.AirlineName = "Brand New Air"
	req.OriginICAO = "OMD"

	_, err := fx.services.Flights.Create(ctx, req)
	var vErr *validation.Error
	require.True(t, errors.As(err, &vErr))
	assert.Equal(t, "origin_icao", vErr.Field)

	assert.Empty(t, fx.store.AllAirlines())
	all, _ := fx.store.Flights().ListAll(ctx)
	assert.Empty(t, all)
}

func TestCreateFlightDuplicate(t *testing.T) {
	ctx := context.Background()
	fx := newFixture(t)

	_, err := fx.services.Flights.Create(ctx, flightRequest())
	require.NoError(t, err)

	_, err = fx.services.Flights.Create(ctx, flightRequest())
	assert.ErrorIs(t, err, apperrors.ErrFlightExists)
}

func TestUpdateFlightNotifiesBooker(t *testing.T) {
	ctx := context.Background()
	fx := newFixture(t)
	fx.store.AddUser(7, "Booker", "b@example.com")

	f, err := fx.services.Flights.Create(ctx, flightRequest())
	require.NoError(t, err)
	_, err = fx.services.Bookings.Book(ctx, open, f.ID, 7)
	require.NoError(t, err)

	req := flightRequest()
	req.DepartureTimeZulu = "10:15"
	req.Gate = strPtr("B2")
	_, err = fx.services.Flights.Update(ctx, f.ID, req)
	require.NoError(t, err)

	subjects := fx.pub.Subjects()
	require.Len(t, subjects, 2)
	assert.Equal(t, models.EventFlightUpdated, subjects[1])

	var event models.FlightUpdatedEvent
	require.NoError(t, fx.pub.Decode(1, &event))
	assert.Equal(t, int64(7), event.Recipient.VID)
	assert.ElementsMatch(t, []models.FieldChange{
		{Field: "departure_time_zulu", Old: "09:30", New: "10:15"},
		{Field: "gate", Old: "A1", New: "B2"},
	}, event.Changes)
}

func TestUpdateFlightWithoutChangesIsSilent(t *testing.T) {
	ctx := context.Background()
	fx := newFixture(t)
	fx.store.AddUser(7, "Booker", "")

	f, err := fx.services.Flights.Create(ctx, flightRequest())
	require.NoError(t, err)
	_, err = fx.services.Bookings.Book(ctx, open, f.ID, 7)
	require.NoError(t, err)

	_, err = fx.services.Flights.Update(ctx, f.ID, flightRequest())
	require.NoError(t, err)
	assert.Equal(t, []string{models.EventBookingConfirmed}, fx.pub.Subjects())
}

func TestUpdateMissingFlight(t *testing.T) {
	fx := newFixture(t)
	_, err := fx.services.Flights.Update(context.Background(), 42, flightRequest())
	assert.ErrorIs(t, err, apperrors.ErrFlightNotFound)
}

func TestClearAll(t *testing.T) {
	ctx := context.Background()
	fx := newFixture(t)
	fx.store.AddUser(1, "A", "")
	f, err := fx.services.Flights.Create(ctx, flightRequest())
	require.NoError(t, err)
	_, err = fx.services.Bookings.Book(ctx, open, f.ID, 1)
	require.NoError(t, err)

	removed, err := fx.services.Flights.ClearAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), removed)
	assert.Zero(t, fx.store.BookingCount())
}

func TestTimetableAndSearch(t *testing.T) {
	ctx := context.Background()
	fx := newFixture(t)
	fx.store.AddAirline("EK", "UAE", "Emirates")

	_, err := fx.services.Flights.Create(ctx, flightRequest())
	require.NoError(t, err)
	early := flightRequest()
	early.FlightNumber = "EK1"
	early.DepartureTimeZulu = "01:00"
	_, err = fx.services.Flights.Create(ctx, early)
	require.NoError(t, err)

	entries, err := fx.services.Flights.Timetable(ctx, "departure")
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "EK1", entries[0].FlightNumber)

	_, err = fx.services.Flights.Timetable(ctx, "cargo")
	assert.Error(t, err)

	found, err := fx.services.Flights.Search(ctx, "emirates", "")
	require.NoError(t, err)
	assert.Len(t, found, 2)

	found, err = fx.services.Flights.Search(ctx, "ek205", models.CategoryArrival)
	require.NoError(t, err)
	assert.Empty(t, found)
}

const opsHeader = "flightnumber,airline name,departure,destination,deptime,arrtime,aircraft,route,gate\n"

func TestImportOpsLayout(t *testing.T) {
	ctx := context.Background()
	fx := newFixture(t)
	fx.store.AddAirline("G9", "ABY", "Air Arabia")

	csv := "\ufeff" + opsHeader +
		"FYC701,Air Arabia,OMDB,OEJN,08:00,,A320,,U1\n" +
		"MSR707,EgyptAir,HECA,OMDB,,1230Z,A330,DCT,\n" +
		"FZ123,FlyDubai,OMDB,OOMS,,,B738,,\n" +
		"BAD,Nobody,OMDB,OOMS,10:00,,B738,,\n" +
		"EK205,Emirates,OMD,EGLL,10:00,,B77W,,\n" +
		"FYC701,Air Arabia,OMDB,OEJN,08:00,,A320,,U1\n"

	report, err := fx.services.Flights.Import(ctx, strings.NewReader(csv))
	require.NoError(t, err)

	assert.Equal(t, 2, report.Imported)
	assert.Equal(t, 1, report.Departures)
	assert.Equal(t, 1, report.Arrivals)
	assert.Equal(t, 4, report.Skipped)

	deps, err := fx.services.Flights.Timetable(ctx, models.CategoryDeparture)
	require.NoError(t, err)
	require.Len(t, deps, 1)
	dep := deps[0]
	assert.Equal(t, "FYC701", dep.FlightNumber)
	assert.Equal(t, "08:00", dep.DepartureTimeZulu)
	assert.Equal(t, "Air Arabia", dep.AirlineName)
	assert.Equal(t, "A320", dep.Aircraft)
	assert.Equal(t, models.SourceImport, dep.Source)
	require.NotNil(t, dep.Gate)
	assert.Equal(t, "U1", *dep.Gate)
	assert.Nil(t, dep.Route)

	arrs, err := fx.services.Flights.Timetable(ctx, models.CategoryArrival)
	require.NoError(t, err)
	require.Len(t, arrs, 1)
	assert.Equal(t, "12:30", arrs[0].DepartureTimeZulu)
	assert.Equal(t, "EgyptAir", arrs[0].AirlineName)
}

func TestImportPrefersFlightPrefixAirline(t *testing.T) {
	ctx := context.Background()
	fx := newFixture(t)
	fx.store.AddAirline("", "FYC", "Air Arabia Abu Dhabi")

	report, err := fx.services.Flights.Import(ctx, strings.NewReader(opsHeader+"FYC701,Air Arabia,OMDB,OEJN,08:00,,A320,,U1\n"))
	require.NoError(t, err)
	require.Equal(t, 1, report.Imported)

	deps, err := fx.services.Flights.Timetable(ctx, models.CategoryDeparture)
	require.NoError(t, err)
	assert.Equal(t, "Air Arabia Abu Dhabi", deps[0].AirlineName)
	assert.Equal(t, "FYC", deps[0].AirlineICAO)
}

func TestImportPositionalLayouts(t *testing.T) {
	ctx := context.Background()

	t.Run("wide layout with airport names", func(t *testing.T) {
		fx := newFixture(t)
		csv := "Flight Number,Aircraft,Origin ICAO,Origin Name,Destination ICAO,Destination Name,Time,Route,Gate,Airline Name\n" +
			"EY301,A35K,OMAA,Abu Dhabi,EGLL,Heathrow,14:05,,C3,Etihad\n"

		report, err := fx.services.Flights.Import(ctx, strings.NewReader(csv))
		require.NoError(t, err)
		require.Equal(t, 1, report.Imported)

		deps, _ := fx.services.Flights.Timetable(ctx, models.CategoryDeparture)
		require.Len(t, deps, 1)
		assert.Equal(t, "Abu Dhabi", deps[0].OriginName)
		assert.Equal(t, "Heathrow", deps[0].DestinationName)
		assert.Equal(t, "Etihad", deps[0].AirlineName)
	})

	t.Run("minimal layout", func(t *testing.T) {
		fx := newFixture(t)
		csv := "Flight Number,Aircraft,Departure ICAO,Destination ICAO,Departure Time\n" +
			"EK205,B77W,OMDB,EGLL,2359\n" +
			"EK206,B77W,OMDB,EGLL,25:00\n"

		report, err := fx.services.Flights.Import(ctx, strings.NewReader(csv))
		require.NoError(t, err)
		assert.Equal(t, 1, report.Imported)
		assert.Equal(t, 1, report.Skipped)
		assert.Len(t, report.Errors, 1)
	})

	t.Run("empty file", func(t *testing.T) {
		fx := newFixture(t)
		_, err := fx.services.Flights.Import(ctx, strings.NewReader(""))
		var vErr *validation.Error
		assert.True(t, errors.As(err, &vErr))
	})
}
