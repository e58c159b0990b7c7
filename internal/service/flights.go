package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	apperrors "slotbook/internal/errors"
	"slotbook/internal/logger"
	"slotbook/internal/metrics"
	"slotbook/internal/models"
	"slotbook/internal/validation"
)

type FlightService struct {
	flights  FlightStore
	bookings BookingStore
	airports AirportStore
	resolver *AirlineResolver
	index    FlightIndex
	notify   *notifier
	metrics  *metrics.Metrics
}

func NewFlightService(flights FlightStore, bookings BookingStore, airports AirportStore, users UserStore,
	resolver *AirlineResolver, index FlightIndex, publisher Publisher, m *metrics.Metrics) *FlightService {
	return &FlightService{
		flights:  flights,
		bookings: bookings,
		airports: airports,
		resolver: resolver,
		index:    index,
		notify:   &notifier{publisher: publisher, users: users, metrics: m},
		metrics:  m,
	}
}

func flightFromRequest(req *models.FlightRequest) *models.Flight {
	return &models.Flight{
		FlightNumber:      req.FlightNumber,
		AirlineName:       req.AirlineName,
		AirlineIATA:       req.AirlineIATA,
		AirlineICAO:       req.AirlineICAO,
		Aircraft:          req.Aircraft,
		OriginICAO:        req.OriginICAO,
		OriginName:        req.OriginName,
		DestinationICAO:   req.DestinationICAO,
		DestinationName:   req.DestinationName,
		DepartureTimeZulu: req.DepartureTimeZulu,
		Route:             req.Route,
		Gate:              req.Gate,
		Category:          req.Category,
	}
}

// prepare normalizes and validates f, then resolves airline and airport data.
// Nothing is written before validation passes.
func (s *FlightService) prepare(ctx context.Context, f *models.Flight) error {
	validation.NormalizeFlight(f)
	if err := validation.ValidateFlight(f); err != nil {
		return err
	}

	if f.AirlineName == "" {
		f.AirlineName = s.resolver.NameFromFlightNumber(ctx, f.FlightNumber)
	}

	codes := s.resolver.ResolveCodes(ctx, f.AirlineName, f.FlightNumber)
	if f.AirlineIATA == "" {
		f.AirlineIATA = codes.IATA
	}
	if f.AirlineICAO == "" {
		f.AirlineICAO = codes.ICAO
	}

	s.resolver.EnsureExists(ctx, f.AirlineName, f.AirlineIATA, f.AirlineICAO)
	f.AirlineName = s.resolver.CanonicalName(ctx, f.AirlineName, f.AirlineIATA, f.AirlineICAO, f.FlightNumber)

	f.OriginName = s.airportName(ctx, f.OriginICAO, f.OriginName)
	f.DestinationName = s.airportName(ctx, f.DestinationICAO, f.DestinationName)
	return nil
}

func (s *FlightService) airportName(ctx context.Context, icao, name string) string {
	if name != "" && name != icao {
		return name
	}
	airport, err := s.airports.GetByICAO(ctx, icao)
	if err != nil {
		logger.WithContext(ctx).Warn("Airport lookup failed", "icao", icao, "error", err)
	}
	if airport != nil && airport.Name != "" {
		return airport.Name
	}
	return icao
}

// afterSave re-syncs airline fields against the stored row and refreshes the index
func (s *FlightService) afterSave(ctx context.Context, f *models.Flight) {
	res := s.resolver.SyncFlight(ctx, f.ID, f.FlightNumber, f.AirlineName, f.AirlineIATA, f.AirlineICAO)
	if res.NameUpdated {
		f.AirlineName = res.Name
	}
	if res.CodesUpdated {
		f.AirlineIATA, f.AirlineICAO = res.Codes.IATA, res.Codes.ICAO
	}
	s.indexFlight(ctx, f)
}

func (s *FlightService) indexFlight(ctx context.Context, f *models.Flight) {
	if s.index == nil {
		return
	}
	if err := s.index.IndexFlight(ctx, f); err != nil {
		logger.WithContext(ctx).Warn("Failed to index flight", "flight_id", f.ID, "error", err)
	}
}

func (s *FlightService) Create(ctx context.Context, req *models.FlightRequest) (*models.Flight, error) {
	return s.create(ctx, flightFromRequest(req), models.SourceManual)
}

func (s *FlightService) create(ctx context.Context, f *models.Flight, source string) (*models.Flight, error) {
	if err := s.prepare(ctx, f); err != nil {
		return nil, err
	}
	f.Source = source

	if err := s.flights.Create(ctx, f); err != nil {
		if errors.Is(err, apperrors.ErrFlightExists) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to create flight: %w", err)
	}

	s.afterSave(ctx, f)
	logger.WithContext(ctx).Info("Flight created", "flight_id", f.ID, "flight_number", f.FlightNumber, "source", source)
	return f, nil
}

func (s *FlightService) Update(ctx context.Context, id int64, req *models.FlightRequest) (*models.Flight, error) {
	before, err := s.flights.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get flight: %w", err)
	}
	if before == nil {
		return nil, apperrors.ErrFlightNotFound
	}

	f := flightFromRequest(req)
	f.ID = id
	if err := s.prepare(ctx, f); err != nil {
		return nil, err
	}
	f.Source = before.Source
	f.CreatedAt = before.CreatedAt

	if err := s.flights.Update(ctx, f); err != nil {
		if errors.Is(err, apperrors.ErrFlightExists) || errors.Is(err, apperrors.ErrFlightNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to update flight: %w", err)
	}

	s.afterSave(ctx, f)

	if changes := diffFlight(before, f); len(changes) > 0 {
		s.notifyBooker(ctx, f, changes)
	}
	return f, nil
}

func (s *FlightService) notifyBooker(ctx context.Context, f *models.Flight, changes []models.FieldChange) {
	booking, err := s.bookings.GetByFlight(ctx, f.ID)
	if err != nil {
		logger.WithContext(ctx).Warn("Failed to load booking for flight update", "flight_id", f.ID, "error", err)
		return
	}
	if booking == nil {
		return
	}

	s.notify.publish(ctx, models.EventFlightUpdated, models.FlightUpdatedEvent{
		MessageID: newMessageID(),
		Flight:    *f,
		Changes:   changes,
		Recipient: s.notify.recipient(ctx, booking.BookedByVID),
		Timestamp: now(),
	})
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// diffFlight lists the fields a booker cares about
func diffFlight(before, after *models.Flight) []models.FieldChange {
	fields := []struct {
		name     string
		old, cur string
	}{
		{"flight_number", before.FlightNumber, after.FlightNumber},
		{"airline_name", before.AirlineName, after.AirlineName},
		{"aircraft", before.Aircraft, after.Aircraft},
		{"origin_icao", before.OriginICAO, after.OriginICAO},
		{"destination_icao", before.DestinationICAO, after.DestinationICAO},
		{"departure_time_zulu", before.DepartureTimeZulu, after.DepartureTimeZulu},
		{"gate", deref(before.Gate), deref(after.Gate)},
	}

	var changes []models.FieldChange
	for _, f := range fields {
		if f.old != f.cur {
			changes = append(changes, models.FieldChange{Field: f.name, Old: f.old, New: f.cur})
		}
	}
	return changes
}

// Delete removes a flight together with its booking
func (s *FlightService) Delete(ctx context.Context, id int64) error {
	ok, err := s.flights.Delete(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to delete flight: %w", err)
	}
	if !ok {
		return apperrors.ErrFlightNotFound
	}

	if s.index != nil {
		if err := s.index.DeleteFlight(ctx, id); err != nil {
			logger.WithContext(ctx).Warn("Failed to remove flight from index", "flight_id", id, "error", err)
		}
	}
	return nil
}

// ClearAll removes every booking and flight
func (s *FlightService) ClearAll(ctx context.Context) (int64, error) {
	removed, err := s.flights.DeleteAll(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to clear timetable: %w", err)
	}

	if s.index != nil {
		if err := s.index.DeleteAll(ctx); err != nil {
			logger.WithContext(ctx).Warn("Failed to clear flight index", "error", err)
		}
	}

	logger.WithContext(ctx).Info("Timetable cleared", "flights_removed", removed)
	return removed, nil
}

func (s *FlightService) Get(ctx context.Context, id int64) (*models.Flight, error) {
	f, err := s.flights.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get flight: %w", err)
	}
	if f == nil {
		return nil, apperrors.ErrFlightNotFound
	}
	return f, nil
}

// Timetable returns one category ordered by zulu time
func (s *FlightService) Timetable(ctx context.Context, category string) ([]models.TimetableEntry, error) {
	category = strings.ToLower(strings.TrimSpace(category))
	if !validation.IsValidCategory(category) {
		return nil, &validation.Error{Field: "category", Message: fmt.Sprintf("unknown category %q", category)}
	}

	entries, err := s.flights.ListByCategory(ctx, category)
	if err != nil {
		return nil, fmt.Errorf("failed to list flights: %w", err)
	}
	return entries, nil
}

const searchLimit = 50

// Search finds flights by number, airline or airport. Without an index it
// scans the timetable.
func (s *FlightService) Search(ctx context.Context, query, category string) ([]models.Flight, error) {
	query = strings.TrimSpace(query)
	category = strings.ToLower(strings.TrimSpace(category))
	if category != "" && !validation.IsValidCategory(category) {
		return nil, &validation.Error{Field: "category", Message: fmt.Sprintf("unknown category %q", category)}
	}

	if s.index != nil {
		flights, err := s.index.SearchFlights(ctx, query, category, searchLimit)
		if err == nil {
			return flights, nil
		}
		logger.WithContext(ctx).Warn("Flight index search failed, scanning timetable", "error", err)
	}

	all, err := s.flights.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list flights: %w", err)
	}

	needle := strings.ToLower(query)
	result := []models.Flight{}
	for _, f := range all {
		if category != "" && f.Category != category {
			continue
		}
		if needle == "" || matchesFlight(f, needle) {
			result = append(result, f)
		}
		if len(result) == searchLimit {
			break
		}
	}
	return result, nil
}

func matchesFlight(f models.Flight, needle string) bool {
	for _, v := range []string{f.FlightNumber, f.AirlineName, f.OriginICAO, f.OriginName, f.DestinationICAO, f.DestinationName, f.Aircraft} {
		if strings.Contains(strings.ToLower(v), needle) {
			return true
		}
	}
	return false
}

// Reindex pushes every flight to the search index
func (s *FlightService) Reindex(ctx context.Context) (int, error) {
	if s.index == nil {
		return 0, nil
	}
	all, err := s.flights.ListAll(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to list flights: %w", err)
	}
	for i := range all {
		if err := s.index.IndexFlight(ctx, &all[i]); err != nil {
			return i, fmt.Errorf("failed to index flight %d: %w", all[i].ID, err)
		}
	}
	return len(all), nil
}
