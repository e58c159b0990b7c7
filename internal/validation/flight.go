package validation

import (
	"fmt"
	"regexp"
	"strings"

	"slotbook/internal/models"
)

var (
	icaoPattern          = regexp.MustCompile(`^[A-Z]{4}$`)
	zuluTimePattern      = regexp.MustCompile(`^(?:[01]\d|2[0-3]):[0-5]\d$`)
	publicFlightPattern  = regexp.MustCompile(`^[A-Z]{2,3}\d{1,4}$`)
	privateFlightPattern = regexp.MustCompile(`^[A-Z0-9]{1,6}$`)
	compactTimePattern   = regexp.MustCompile(`^\d{4}$`)
)

// Error описывает невалидное поле
type Error struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func invalid(field, format string, args ...any) *Error {
	return &Error{Field: field, Message: fmt.Sprintf(format, args...)}
}

// Upper trims and upper-cases a code-like value
func Upper(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}

func IsValidICAO(code string) bool {
	return icaoPattern.MatchString(code)
}

func IsValidZuluTime(t string) bool {
	return zuluTimePattern.MatchString(t)
}

func IsValidCategory(category string) bool {
	switch category {
	case models.CategoryDeparture, models.CategoryArrival, models.CategoryPrivate:
		return true
	}
	return false
}

// IsValidFlightNumber checks the number format required by the category.
// Public flights carry a 2-3 letter airline designator and 1-4 digits.
func IsValidFlightNumber(number, category string) bool {
	if category == models.CategoryPrivate {
		return privateFlightPattern.MatchString(number)
	}
	return publicFlightPattern.MatchString(number)
}

// NormalizeZuluTime accepts "HH:MM", "HHMM" and a trailing "Z".
// The second result reports whether the value is a valid zulu time.
func NormalizeZuluTime(raw string) (string, bool) {
	t := strings.TrimSpace(raw)
	t = strings.TrimSuffix(strings.TrimSuffix(t, "Z"), "z")
	if compactTimePattern.MatchString(t) {
		t = t[:2] + ":" + t[2:]
	}
	return t, IsValidZuluTime(t)
}

// NormalizeFlight trims every field and upper-cases codes in place
func NormalizeFlight(f *models.Flight) {
	f.FlightNumber = Upper(f.FlightNumber)
	f.AirlineName = strings.TrimSpace(f.AirlineName)
	f.AirlineIATA = Upper(f.AirlineIATA)
	f.AirlineICAO = Upper(f.AirlineICAO)
	f.Aircraft = Upper(f.Aircraft)
	f.OriginICAO = Upper(f.OriginICAO)
	f.OriginName = strings.TrimSpace(f.OriginName)
	f.DestinationICAO = Upper(f.DestinationICAO)
	f.DestinationName = strings.TrimSpace(f.DestinationName)
	f.DepartureTimeZulu, _ = NormalizeZuluTime(f.DepartureTimeZulu)
	f.Category = strings.ToLower(strings.TrimSpace(f.Category))
	f.Route = trimOptional(f.Route)
	f.Gate = trimOptional(f.Gate)
}

func trimOptional(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}

// ValidateFlight проверяет нормализованный рейс до любой записи в хранилище
func ValidateFlight(f *models.Flight) error {
	if !IsValidCategory(f.Category) {
		return invalid("category", "unknown category %q", f.Category)
	}
	if !IsValidFlightNumber(f.FlightNumber, f.Category) {
		if f.Category == models.CategoryPrivate {
			return invalid("flight_number", "must be 1-6 letters or digits")
		}
		return invalid("flight_number", "must be an airline designator followed by 1-4 digits")
	}
	if !IsValidICAO(f.OriginICAO) {
		return invalid("origin_icao", "must be exactly 4 letters")
	}
	if !IsValidICAO(f.DestinationICAO) {
		return invalid("destination_icao", "must be exactly 4 letters")
	}
	if !IsValidZuluTime(f.DepartureTimeZulu) {
		return invalid("departure_time_zulu", "must be HH:MM in zulu")
	}
	return nil
}

// ValidatePrivateSlot нормализует и проверяет заявку на частный слот
func ValidatePrivateSlot(req *models.PrivateSlotSubmitRequest) error {
	req.FlightNumber = Upper(req.FlightNumber)
	req.AircraftType = Upper(req.AircraftType)
	req.OriginICAO = Upper(req.OriginICAO)
	req.DestinationICAO = Upper(req.DestinationICAO)
	req.DepartureTimeZulu, _ = NormalizeZuluTime(req.DepartureTimeZulu)

	if !IsValidFlightNumber(req.FlightNumber, models.CategoryPrivate) {
		return invalid("flight_number", "must be 1-6 letters or digits")
	}
	if req.AircraftType == "" {
		return invalid("aircraft_type", "required")
	}
	if !IsValidICAO(req.OriginICAO) {
		return invalid("origin_icao", "must be exactly 4 letters")
	}
	if !IsValidICAO(req.DestinationICAO) {
		return invalid("destination_icao", "must be exactly 4 letters")
	}
	if !IsValidZuluTime(req.DepartureTimeZulu) {
		return invalid("departure_time_zulu", "must be HH:MM in zulu")
	}
	return nil
}
