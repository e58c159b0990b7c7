package service

import (
	"context"
	"strings"

	"slotbook/internal/logger"
	"slotbook/internal/metrics"
	"slotbook/internal/models"
	"slotbook/internal/repository"
	"slotbook/internal/validation"
)

// UnknownAirline names reference rows created from codes alone
const UnknownAirline = "Unknown Airline"

// Codes is an IATA/ICAO pair; "" means absent
type Codes struct {
	IATA string `json:"iata,omitempty"`
	ICAO string `json:"icao,omitempty"`
}

func (c Codes) IsEmpty() bool {
	return c.IATA == "" && c.ICAO == ""
}

// AirlineResolver keeps flight airline data consistent with the reference
// table. It never fails its caller: store errors are logged and the
// operation falls back to what the caller supplied.
type AirlineResolver struct {
	airlines AirlineStore
	flights  FlightStore
	metrics  *metrics.Metrics
}

func NewAirlineResolver(airlines AirlineStore, flights FlightStore, m *metrics.Metrics) *AirlineResolver {
	return &AirlineResolver{airlines: airlines, flights: flights, metrics: m}
}

func prefix(s string, n int) string {
	if len(s) < n {
		return ""
	}
	return s[:n]
}

func (r *AirlineResolver) warn(ctx context.Context, msg string, err error, args ...any) {
	logger.WithContext(ctx).Warn(msg, append(args, "error", err)...)
}

// NameFromFlightNumber looks the designator up as 2-letter IATA, then 3-letter ICAO
func (r *AirlineResolver) NameFromFlightNumber(ctx context.Context, flightNumber string) string {
	fn := validation.Upper(flightNumber)

	if code := prefix(fn, 2); code != "" {
		a, err := r.airlines.GetByIATA(ctx, code)
		if err != nil {
			r.warn(ctx, "Airline lookup failed", err, "iata", code)
			return ""
		}
		if a != nil && a.Name != "" {
			return a.Name
		}
	}

	if code := prefix(fn, 3); code != "" {
		a, err := r.airlines.GetByICAO(ctx, code)
		if err != nil {
			r.warn(ctx, "Airline lookup failed", err, "icao", code)
			return ""
		}
		if a != nil && a.Name != "" {
			return a.Name
		}
	}

	return ""
}

// ResolveCodes returns the codes of the first lookup that yields any:
// exact name, then 2-char IATA prefix, then 3-char ICAO prefix.
// Results from different lookups are never mixed.
func (r *AirlineResolver) ResolveCodes(ctx context.Context, name, flightNumber string) Codes {
	name = strings.TrimSpace(name)
	fn := validation.Upper(flightNumber)

	type lookup struct {
		key  string
		find func() (*models.Airline, error)
	}

	lookups := []lookup{
		{name, func() (*models.Airline, error) { return r.airlines.FindByName(ctx, name, repository.MatchExact) }},
		{prefix(fn, 2), func() (*models.Airline, error) { return r.airlines.GetByIATA(ctx, prefix(fn, 2)) }},
		{prefix(fn, 3), func() (*models.Airline, error) { return r.airlines.GetByICAO(ctx, prefix(fn, 3)) }},
	}

	for _, l := range lookups {
		if l.key == "" {
			continue
		}
		a, err := l.find()
		if err != nil {
			r.warn(ctx, "Airline code lookup failed", err, "key", l.key)
			return Codes{}
		}
		if a == nil {
			continue
		}
		if codes := (Codes{IATA: a.IATA, ICAO: a.ICAO}); !codes.IsEmpty() {
			return codes
		}
	}

	return Codes{}
}

// EnsureExists records an airline sighting. Existing rows only get their
// blank fields filled; stored values are never overwritten.
func (r *AirlineResolver) EnsureExists(ctx context.Context, name, iata, icao string) {
	name = strings.TrimSpace(name)
	iata = validation.Upper(iata)
	icao = validation.Upper(icao)

	if name == "" && iata == "" && icao == "" {
		return
	}

	existing, err := r.findByCodes(ctx, iata, icao)
	if err != nil {
		r.warn(ctx, "Airline lookup failed", err, "iata", iata, "icao", icao)
		return
	}

	if name == "" && existing != nil {
		name = existing.Name
	}

	if existing != nil {
		fillIATA := iata != "" && existing.IATA == ""
		fillICAO := icao != "" && existing.ICAO == ""
		fillName := name != "" && strings.TrimSpace(existing.Name) == ""
		if !fillIATA && !fillICAO && !fillName {
			return
		}
		if !fillIATA {
			iata = ""
		}
		if !fillICAO {
			icao = ""
		}
		if err := r.airlines.FillMissing(ctx, existing.ID, iata, icao, name); err != nil {
			r.warn(ctx, "Failed to fill airline fields", err, "airline_id", existing.ID)
		}
		return
	}

	if iata == "" && icao == "" {
		// name-only sighting: only add names we have not seen yet
		byName, err := r.airlines.FindByName(ctx, name, repository.MatchExact)
		if err != nil {
			r.warn(ctx, "Airline lookup failed", err, "name", name)
			return
		}
		if byName != nil {
			return
		}
	}

	if name == "" {
		name = UnknownAirline
	}

	airline := &models.Airline{IATA: iata, ICAO: icao, Name: name}
	created, err := r.airlines.Create(ctx, airline)
	if err != nil {
		r.warn(ctx, "Failed to create airline", err, "name", name)
		return
	}
	if created {
		logger.WithContext(ctx).Info("Airline added", "airline_id", airline.ID, "name", name, "iata", iata, "icao", icao)
	}
}

func (r *AirlineResolver) findByCodes(ctx context.Context, iata, icao string) (*models.Airline, error) {
	if iata != "" {
		a, err := r.airlines.GetByIATA(ctx, iata)
		if err != nil || a != nil {
			return a, err
		}
	}
	if icao != "" {
		return r.airlines.GetByICAO(ctx, icao)
	}
	return nil, nil
}

// CanonicalName resolves the authoritative airline name. Lookups are tried
// in order and the first row with a non-blank name wins:
//
//	supplied IATA, supplied ICAO,
//	3-char flight prefix as ICAO then as IATA, 2-char flight prefix as IATA,
//	name exact, case-insensitive, partial.
//
// Without a hit the trimmed supplied name is returned ("" if none).
func (r *AirlineResolver) CanonicalName(ctx context.Context, name, iata, icao, flightNumber string) string {
	name = strings.TrimSpace(name)
	iata = validation.Upper(iata)
	icao = validation.Upper(icao)
	fn := validation.Upper(flightNumber)

	if name == "" && iata == "" && icao == "" && fn == "" {
		return ""
	}

	type step struct {
		label string
		key   string
		find  func(key string) (*models.Airline, error)
	}

	byIATA := func(k string) (*models.Airline, error) { return r.airlines.GetByIATA(ctx, k) }
	byICAO := func(k string) (*models.Airline, error) { return r.airlines.GetByICAO(ctx, k) }
	byName := func(m repository.NameMatch) func(string) (*models.Airline, error) {
		return func(k string) (*models.Airline, error) { return r.airlines.FindByName(ctx, k, m) }
	}

	steps := []step{
		{"iata", iata, byIATA},
		{"icao", icao, byICAO},
		{"flight_icao3", prefix(fn, 3), byICAO},
		{"flight_iata3", prefix(fn, 3), byIATA},
		{"flight_iata2", prefix(fn, 2), byIATA},
		{"name_exact", name, byName(repository.MatchExact)},
		{"name_fold", name, byName(repository.MatchFold)},
		{"name_partial", name, byName(repository.MatchPartial)},
	}

	for _, s := range steps {
		if s.key == "" {
			continue
		}
		a, err := s.find(s.key)
		if err != nil {
			r.warn(ctx, "Canonical airline lookup failed", err, "step", s.label)
			r.metrics.Resolution("error")
			return name
		}
		if a != nil && strings.TrimSpace(a.Name) != "" {
			r.metrics.Resolution(s.label)
			return strings.TrimSpace(a.Name)
		}
	}

	r.metrics.Resolution("fallback")
	return name
}

// SyncResult reports what SyncFlight wrote
type SyncResult struct {
	Name         string
	Codes        Codes
	NameUpdated  bool
	CodesUpdated bool
}

// SyncFlight rewrites the flight's airline fields from the reference table.
// The flight number prefix is tried alone first; stored codes may be stale.
func (r *AirlineResolver) SyncFlight(ctx context.Context, flightID int64, flightNumber, name, iata, icao string) SyncResult {
	var res SyncResult

	if strings.TrimSpace(flightNumber) != "" {
		res.Name = r.CanonicalName(ctx, "", "", "", flightNumber)
	}
	if res.Name == "" {
		res.Name = r.CanonicalName(ctx, name, iata, icao, flightNumber)
	}
	// нечего записывать: рейс остаётся как есть
	if res.Name == "" {
		return res
	}

	if err := r.flights.UpdateAirlineName(ctx, flightID, res.Name); err != nil {
		r.warn(ctx, "Failed to sync flight airline name", err, "flight_id", flightID)
		return res
	}
	res.NameUpdated = true

	res.Codes = r.ResolveCodes(ctx, res.Name, flightNumber)
	if res.Codes.IsEmpty() {
		return res
	}
	if err := r.flights.UpdateAirlineCodes(ctx, flightID, res.Codes.IATA, res.Codes.ICAO); err != nil {
		r.warn(ctx, "Failed to sync flight airline codes", err, "flight_id", flightID)
		return res
	}
	res.CodesUpdated = true
	return res
}

// SyncAll runs SyncFlight over the whole timetable
func (r *AirlineResolver) SyncAll(ctx context.Context) (models.SyncReport, error) {
	var report models.SyncReport

	flights, err := r.flights.ListAll(ctx)
	if err != nil {
		return report, err
	}

	for _, f := range flights {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		report.Total++

		res := r.SyncFlight(ctx, f.ID, f.FlightNumber, f.AirlineName, f.AirlineIATA, f.AirlineICAO)
		if res.NameUpdated && res.Name != f.AirlineName {
			report.NamesUpdated++
		}
		if res.CodesUpdated && (res.Codes.IATA != f.AirlineIATA || res.Codes.ICAO != f.AirlineICAO) {
			report.CodesUpdated++
		}
		if res.Codes.IsEmpty() {
			report.NotFound++
		}
	}

	logger.WithContext(ctx).Info("Airline sync completed",
		"total", report.Total,
		"names_updated", report.NamesUpdated,
		"codes_updated", report.CodesUpdated,
		"not_found", report.NotFound)

	return report, nil
}
