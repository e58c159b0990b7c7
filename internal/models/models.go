package models

// FlightRequest - модель для создания и изменения рейса
type FlightRequest struct {
	FlightNumber      string  `json:"flight_number" binding:"required"`
	AirlineName       string  `json:"airline_name"`
	AirlineIATA       string  `json:"airline_iata"`
	AirlineICAO       string  `json:"airline_icao"`
	Aircraft          string  `json:"aircraft"`
	OriginICAO        string  `json:"origin_icao" binding:"required"`
	OriginName        string  `json:"origin_name"`
	DestinationICAO   string  `json:"destination_icao" binding:"required"`
	DestinationName   string  `json:"destination_name"`
	DepartureTimeZulu string  `json:"departure_time_zulu" binding:"required"`
	Route             *string `json:"route"`
	Gate              *string `json:"gate"`
	Category          string  `json:"category" binding:"required"`
}

// PrivateSlotSubmitRequest - заявка участника на частный слот
type PrivateSlotSubmitRequest struct {
	FlightNumber      string `json:"flight_number" binding:"required"`
	AircraftType      string `json:"aircraft_type" binding:"required"`
	OriginICAO        string `json:"origin_icao" binding:"required"`
	DestinationICAO   string `json:"destination_icao" binding:"required"`
	DepartureTimeZulu string `json:"departure_time_zulu" binding:"required"`
}

// ReasonRequest - причина отклонения или отмены заявки
type ReasonRequest struct {
	Reason string `json:"reason"`
}

// TimetableResponse - расписание категории и состояние события
type TimetableResponse struct {
	Category string           `json:"category"`
	Settings EventSettings    `json:"settings"`
	Flights  []TimetableEntry `json:"flights"`
}

// ImportReport - итог импорта CSV
type ImportReport struct {
	Imported   int      `json:"imported"`
	Departures int      `json:"departures"`
	Arrivals   int      `json:"arrivals"`
	Skipped    int      `json:"skipped"`
	Errors     []string `json:"errors,omitempty"`
}

// SyncReport - итог синхронизации авиакомпаний по всему расписанию
type SyncReport struct {
	Total        int `json:"total"`
	NamesUpdated int `json:"names_updated"`
	CodesUpdated int `json:"codes_updated"`
	NotFound     int `json:"not_found"`
}

// PrivateSlotStats - количество заявок по статусам
type PrivateSlotStats struct {
	Pending   int `json:"pending"`
	Approved  int `json:"approved"`
	Rejected  int `json:"rejected"`
	Cancelled int `json:"cancelled"`
}
