package service

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	apperrors "slotbook/internal/errors"
	"slotbook/internal/logger"
	"slotbook/internal/models"
	"slotbook/internal/validation"
)

const maxReportedImportErrors = 50

// csvLayout maps a data row onto an import row
type csvLayout func(cells []string) importRow

type importRow struct {
	FlightNumber    string
	AirlineName     string
	Aircraft        string
	OriginICAO      string
	OriginName      string
	DestinationICAO string
	DestinationName string
	DepTime         string
	ArrTime         string
	Route           string
	Gate            string
}

func cleanCell(s string) string {
	return strings.TrimSpace(strings.TrimPrefix(s, "\ufeff"))
}

func cell(cells []string, i int) string {
	if i < 0 || i >= len(cells) {
		return ""
	}
	return cells[i]
}

func headerIndex(header []string) map[string]int {
	idx := make(map[string]int, len(header))
	for i, h := range header {
		if _, seen := idx[h]; !seen {
			idx[h] = i
		}
	}
	return idx
}

// column returns the first present header among names, or -1
func column(idx map[string]int, names ...string) int {
	for _, n := range names {
		if i, ok := idx[n]; ok {
			return i
		}
	}
	return -1
}

var airlineNameHeaders = []string{"airline name", "airline_name", "airlinename"}

// detectLayout picks one of the three supported layouts from the header:
// named ops columns, a wide positional layout with airport names, or the
// minimal positional layout.
func detectLayout(header []string) csvLayout {
	idx := headerIndex(header)
	airline := column(idx, airlineNameHeaders...)

	number := column(idx, "flightnumber")
	origin := column(idx, "departure", "origin")
	destination := column(idx, "destination")
	dep := column(idx, "deptime")
	aircraft := column(idx, "aircraft")

	if number >= 0 && origin >= 0 && destination >= 0 && dep >= 0 && aircraft >= 0 {
		arr := column(idx, "arrtime")
		route := column(idx, "route")
		gate := column(idx, "gate")
		return func(c []string) importRow {
			return importRow{
				FlightNumber:    cell(c, number),
				AirlineName:     cell(c, airline),
				Aircraft:        cell(c, aircraft),
				OriginICAO:      cell(c, origin),
				DestinationICAO: cell(c, destination),
				DepTime:         cell(c, dep),
				ArrTime:         cell(c, arr),
				Route:           cell(c, route),
				Gate:            cell(c, gate),
			}
		}
	}

	if len(header) >= 7 {
		return func(c []string) importRow {
			return importRow{
				FlightNumber:    cell(c, 0),
				Aircraft:        cell(c, 1),
				OriginICAO:      cell(c, 2),
				OriginName:      cell(c, 3),
				DestinationICAO: cell(c, 4),
				DestinationName: cell(c, 5),
				DepTime:         cell(c, 6),
				Route:           cell(c, 7),
				Gate:            cell(c, 8),
				AirlineName:     cell(c, airline),
			}
		}
	}

	return func(c []string) importRow {
		return importRow{
			FlightNumber:    cell(c, 0),
			Aircraft:        cell(c, 1),
			OriginICAO:      cell(c, 2),
			DestinationICAO: cell(c, 3),
			DepTime:         cell(c, 4),
			Route:           cell(c, 5),
			Gate:            cell(c, 6),
		}
	}
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// toFlight decides the row category: a valid departure time makes it a
// departure, otherwise a valid arrival time makes it an arrival.
func (r importRow) toFlight() (*models.Flight, error) {
	f := &models.Flight{
		FlightNumber:    validation.Upper(r.FlightNumber),
		AirlineName:     r.AirlineName,
		Aircraft:        r.Aircraft,
		OriginICAO:      validation.Upper(r.OriginICAO),
		OriginName:      r.OriginName,
		DestinationICAO: validation.Upper(r.DestinationICAO),
		DestinationName: r.DestinationName,
		Route:           optional(r.Route),
		Gate:            optional(r.Gate),
	}

	if !validation.IsValidICAO(f.OriginICAO) || !validation.IsValidICAO(f.DestinationICAO) {
		return nil, fmt.Errorf("invalid ICAO %q -> %q", f.OriginICAO, f.DestinationICAO)
	}
	if !validation.IsValidFlightNumber(f.FlightNumber, models.CategoryDeparture) {
		return nil, fmt.Errorf("invalid flight number %q", f.FlightNumber)
	}

	if t, ok := validation.NormalizeZuluTime(r.DepTime); ok {
		f.Category, f.DepartureTimeZulu = models.CategoryDeparture, t
	} else if t, ok := validation.NormalizeZuluTime(r.ArrTime); ok {
		f.Category, f.DepartureTimeZulu = models.CategoryArrival, t
	} else {
		return nil, fmt.Errorf("no valid departure or arrival time")
	}
	return f, nil
}

// Import reads a timetable CSV. Each accepted row goes through the same
// save path as a manual flight. Malformed rows and duplicates are skipped.
func (s *FlightService) Import(ctx context.Context, r io.Reader) (*models.ImportReport, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true
	reader.LazyQuotes = true

	header, err := reader.Read()
	if err == io.EOF {
		return nil, &validation.Error{Field: "csv", Message: "file is empty"}
	}
	if err != nil {
		return nil, &validation.Error{Field: "csv", Message: err.Error()}
	}
	for i := range header {
		header[i] = strings.ToLower(cleanCell(header[i]))
	}
	layout := detectLayout(header)

	report := &models.ImportReport{}
	skip := func(line int, reason string) {
		report.Skipped++
		s.metrics.ImportRow("skipped")
		if len(report.Errors) < maxReportedImportErrors {
			report.Errors = append(report.Errors, fmt.Sprintf("line %d: %s", line, reason))
		}
	}

	line := 1
	for {
		cells, err := reader.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			skip(line, err.Error())
			continue
		}
		if err := ctx.Err(); err != nil {
			return report, err
		}

		for i := range cells {
			cells[i] = cleanCell(cells[i])
		}
		if strings.Join(cells, "") == "" {
			continue
		}

		flight, err := layout(cells).toFlight()
		if err != nil {
			skip(line, err.Error())
			continue
		}

		if _, err := s.create(ctx, flight, models.SourceImport); err != nil {
			var vErr *validation.Error
			switch {
			case errors.Is(err, apperrors.ErrFlightExists):
				skip(line, "duplicate flight")
			case errors.As(err, &vErr):
				skip(line, vErr.Error())
			default:
				skip(line, "store error")
				logger.WithContext(ctx).Warn("Failed to import row", "line", line, "error", err)
			}
			continue
		}

		report.Imported++
		s.metrics.ImportRow("imported")
		if flight.Category == models.CategoryDeparture {
			report.Departures++
		} else {
			report.Arrivals++
		}
	}

	logger.WithContext(ctx).Info("Timetable import completed",
		"imported", report.Imported,
		"departures", report.Departures,
		"arrivals", report.Arrivals,
		"skipped", report.Skipped)

	return report, nil
}
