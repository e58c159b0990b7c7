package errors

import "errors"

var ErrUnauthorized = errors.New("user is not authorized")
var ErrForbidden = errors.New("operation is forbidden for user")

// Бронирование
var (
	ErrBookingClosed   = errors.New("booking is closed for the current event")
	ErrAlreadyBooked   = errors.New("flight is already booked")
	ErrBookingNotFound = errors.New("booking not found")
)

// Расписание
var (
	ErrFlightNotFound = errors.New("flight not found")
	ErrFlightExists   = errors.New("flight with this number, time and category already exists")
)

// Частные слоты
var (
	ErrPrivateSlotsDisabled = errors.New("private slot requests are not accepted")
	ErrRequestNotFound      = errors.New("private slot request not found")
)
