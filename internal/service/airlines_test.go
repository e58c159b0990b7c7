package service_test

import (
	"context"
	"errors"
	"testing"

	"slotbook/internal/models"
	"slotbook/internal/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCanonicalNamePriority(t *testing.T) {
	ctx := context.Background()

	t.Run("flight prefix beats a conflicting name", func(t *testing.T) {
		fx := newFixture(t)
		fx.store.AddAirline("EK", "UAE", "Emirates")
		fx.store.AddAirline("", "", "Some Other")

		got := fx.services.Airlines.CanonicalName(ctx, "Some Other", "", "", "EK205")
		assert.Equal(t, "Emirates", got)
	})

	t.Run("supplied IATA beats supplied ICAO", func(t *testing.T) {
		fx := newFixture(t)
		fx.store.AddAirline("FZ", "FDB", "flydubai")
		fx.store.AddAirline("EY", "ETD", "Etihad Airways")

		got := fx.services.Airlines.CanonicalName(ctx, "", "FZ", "ETD", "")
		assert.Equal(t, "flydubai", got)
	})

	t.Run("three letter prefix as ICAO before two letter IATA", func(t *testing.T) {
		fx := newFixture(t)
		fx.store.AddAirline("FY", "", "Firefly")
		fx.store.AddAirline("", "FYC", "Air Arabia")

		got := fx.services.Airlines.CanonicalName(ctx, "", "", "", "FYC701")
		assert.Equal(t, "Air Arabia", got)
	})

	t.Run("three letter IATA", func(t *testing.T) {
		fx := newFixture(t)
		fx.store.AddAirline("MSR", "", "EgyptAir")

		got := fx.services.Airlines.CanonicalName(ctx, "", "", "", "MSR707")
		assert.Equal(t, "EgyptAir", got)
	})

	t.Run("rows with blank names are ignored", func(t *testing.T) {
		fx := newFixture(t)
		fx.store.AddAirline("EK", "", "")
		fx.store.AddAirline("", "", "Emirates")

		got := fx.services.Airlines.CanonicalName(ctx, "emirates", "EK", "", "EK205")
		assert.Equal(t, "Emirates", got)
	})

	t.Run("partial match prefers prefix over substring", func(t *testing.T) {
		fx := newFixture(t)
		fx.store.AddAirline("", "", "Royal Air Maroc")
		fx.store.AddAirline("", "", "Air Maroc Cargo")

		got := fx.services.Airlines.CanonicalName(ctx, "Air Maroc", "", "", "")
		assert.Equal(t, "Air Maroc Cargo", got)
	})

	t.Run("fallback returns trimmed name", func(t *testing.T) {
		fx := newFixture(t)
		assert.Equal(t, "Foo Air", fx.services.Airlines.CanonicalName(ctx, "  Foo Air  ", "", "", "ZZZ9"))
		assert.Equal(t, "", fx.services.Airlines.CanonicalName(ctx, "", "", "", ""))
	})
}

func TestCanonicalNameIdempotent(t *testing.T) {
	ctx := context.Background()
	fx := newFixture(t)
	fx.store.AddAirline("EK", "UAE", "Emirates")
	fx.store.AddAirline("", "", "Air Arabia")

	inputs := []struct{ name, iata, icao, fn string }{
		{"emirates", "", "", ""},
		{"Air Arab", "", "", "XYZ1"},
		{"Unlisted", "", "", ""},
		{"", "EK", "", "EK1"},
	}
	for _, in := range inputs {
		first := fx.services.Airlines.CanonicalName(ctx, in.name, in.iata, in.icao, in.fn)
		second := fx.services.Airlines.CanonicalName(ctx, first, in.iata, in.icao, in.fn)
		assert.Equal(t, first, second, in.name)
	}
}

func TestCanonicalNameDegradesOnStoreFailure(t *testing.T) {
	fx := newFixture(t)
	fx.store.AddAirline("EK", "UAE", "Emirates")
	fx.store.FailAirlines(errors.New("connection refused"))

	got := fx.services.Airlines.CanonicalName(context.Background(), " Emirates Airline ", "EK", "", "EK205")
	assert.Equal(t, "Emirates Airline", got)

	codes := fx.services.Airlines.ResolveCodes(context.Background(), "Emirates", "EK205")
	assert.True(t, codes.IsEmpty())

	assert.NotPanics(t, func() {
		fx.services.Airlines.EnsureExists(context.Background(), "Emirates", "EK", "UAE")
	})
}

func TestResolveCodes(t *testing.T) {
	ctx := context.Background()
	fx := newFixture(t)
	fx.store.AddAirline("EK", "UAE", "Emirates")
	fx.store.AddAirline("", "", "Codeless Air")
	fx.store.AddAirline("", "FYC", "Air Arabia")

	assert.Equal(t, service.Codes{IATA: "EK", ICAO: "UAE"}, fx.services.Airlines.ResolveCodes(ctx, "Emirates", ""))
	// name row has no codes, falls through to the flight prefix
	assert.Equal(t, service.Codes{IATA: "EK", ICAO: "UAE"}, fx.services.Airlines.ResolveCodes(ctx, "Codeless Air", "EK77"))
	assert.Equal(t, service.Codes{ICAO: "FYC"}, fx.services.Airlines.ResolveCodes(ctx, "", "fyc701"))
	assert.True(t, fx.services.Airlines.ResolveCodes(ctx, "Nobody", "QQ1").IsEmpty())
}

func TestNameFromFlightNumber(t *testing.T) {
	ctx := context.Background()
	fx := newFixture(t)
	fx.store.AddAirline("EK", "UAE", "Emirates")
	fx.store.AddAirline("", "FYC", "Air Arabia")

	assert.Equal(t, "Emirates", fx.services.Airlines.NameFromFlightNumber(ctx, "ek205"))
	assert.Equal(t, "Air Arabia", fx.services.Airlines.NameFromFlightNumber(ctx, "FYC701"))
	assert.Equal(t, "", fx.services.Airlines.NameFromFlightNumber(ctx, "Z"))
}

func TestEnsureExists(t *testing.T) {
	ctx := context.Background()

	t.Run("never overwrites stored values", func(t *testing.T) {
		fx := newFixture(t)
		fx.store.AddAirline("EK", "", "Emirates")

		fx.services.Airlines.EnsureExists(ctx, "Fly Emirates", "EK", "UAE")

		airlines := fx.store.AllAirlines()
		require.Len(t, airlines, 1)
		assert.Equal(t, "Emirates", airlines[0].Name)
		assert.Equal(t, "EK", airlines[0].IATA)
		assert.Equal(t, "UAE", airlines[0].ICAO)
	})

	t.Run("inserts unknown airline from codes", func(t *testing.T) {
		fx := newFixture(t)

		fx.services.Airlines.EnsureExists(ctx, "", "fz", "")

		airlines := fx.store.AllAirlines()
		require.Len(t, airlines, 1)
		assert.Equal(t, service.UnknownAirline, airlines[0].Name)
		assert.Equal(t, "FZ", airlines[0].IATA)
	})

	t.Run("no-op without input", func(t *testing.T) {
		fx := newFixture(t)
		fx.services.Airlines.EnsureExists(ctx, "  ", "", "")
		assert.Empty(t, fx.store.AllAirlines())
	})

	t.Run("repeated name-only sightings add one row", func(t *testing.T) {
		fx := newFixture(t)
		fx.services.Airlines.EnsureExists(ctx, "Foo Air", "", "")
		fx.services.Airlines.EnsureExists(ctx, "Foo Air", "", "")
		assert.Len(t, fx.store.AllAirlines(), 1)
	})
}

func TestSyncFlightPrefersFlightNumber(t *testing.T) {
	ctx := context.Background()
	fx := newFixture(t)
	fx.store.AddAirline("EK", "UAE", "Emirates")
	fx.store.AddAirline("EY", "ETD", "Etihad Airways")

	flight := &models.Flight{
		FlightNumber: "EK205", AirlineName: "Etihad Airways", AirlineIATA: "EY", AirlineICAO: "ETD",
		OriginICAO: "OMDB", DestinationICAO: "EGLL", DepartureTimeZulu: "10:00", Category: models.CategoryDeparture,
	}
	require.NoError(t, fx.store.Flights().Create(ctx, flight))

	res := fx.services.Airlines.SyncFlight(ctx, flight.ID, flight.FlightNumber, flight.AirlineName, flight.AirlineIATA, flight.AirlineICAO)
	assert.Equal(t, "Emirates", res.Name)
	assert.True(t, res.CodesUpdated)

	stored, err := fx.store.Flights().GetByID(ctx, flight.ID)
	require.NoError(t, err)
	assert.Equal(t, "Emirates", stored.AirlineName)
	assert.Equal(t, "EK", stored.AirlineIATA)
	assert.Equal(t, "UAE", stored.AirlineICAO)
}

func TestSyncFlightLeavesUnresolvedFlight(t *testing.T) {
	ctx := context.Background()
	fx := newFixture(t)
	fx.store.AddAirline("EK", "UAE", "Emirates")

	flight := &models.Flight{
		FlightNumber: "QQ9", OriginICAO: "OMDB", DestinationICAO: "EGLL",
		DepartureTimeZulu: "03:00", Category: models.CategoryDeparture,
	}
	require.NoError(t, fx.store.Flights().Create(ctx, flight))

	res := fx.services.Airlines.SyncFlight(ctx, flight.ID, flight.FlightNumber, "", "", "")
	assert.Empty(t, res.Name)
	assert.False(t, res.NameUpdated)
	assert.False(t, res.CodesUpdated)

	stored, err := fx.store.Flights().GetByID(ctx, flight.ID)
	require.NoError(t, err)
	assert.Empty(t, stored.AirlineName)
	assert.Empty(t, stored.AirlineIATA)
	assert.Empty(t, stored.AirlineICAO)
}

func TestSyncAll(t *testing.T) {
	ctx := context.Background()
	fx := newFixture(t)
	fx.store.AddAirline("EK", "UAE", "Emirates")

	for _, f := range []*models.Flight{
		{FlightNumber: "EK1", AirlineName: "emirates", OriginICAO: "OMDB", DestinationICAO: "EGLL", DepartureTimeZulu: "01:00", Category: models.CategoryDeparture},
		{FlightNumber: "QQ1", AirlineName: "Nowhere Air", OriginICAO: "OMDB", DestinationICAO: "EGLL", DepartureTimeZulu: "02:00", Category: models.CategoryDeparture},
	} {
		require.NoError(t, fx.store.Flights().Create(ctx, f))
	}

	report, err := fx.services.Airlines.SyncAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, report.Total)
	assert.Equal(t, 1, report.NamesUpdated)
	assert.Equal(t, 1, report.CodesUpdated)
	assert.Equal(t, 1, report.NotFound)
}
