package models

import "time"

// NATS subjects for member notifications
const (
	EventBookingConfirmed     = "booking.confirmed"
	EventBookingCancelled     = "booking.cancelled"
	EventFlightUpdated        = "flight.updated"
	EventPrivateSlotApproved  = "private_slot.approved"
	EventPrivateSlotRejected  = "private_slot.rejected"
	EventPrivateSlotCancelled = "private_slot.cancelled"
)

// NotificationSubjects lists every subject the notifier consumes
var NotificationSubjects = []string{
	EventBookingConfirmed,
	EventBookingCancelled,
	EventFlightUpdated,
	EventPrivateSlotApproved,
	EventPrivateSlotRejected,
	EventPrivateSlotCancelled,
}

// Recipient is the member a notification is addressed to
type Recipient struct {
	VID   int64  `json:"vid"`
	Name  string `json:"name"`
	Email string `json:"email,omitempty"`
}

// RecipientFor builds a Recipient from a user row; nil user yields only the VID
func RecipientFor(vid int64, u *User) Recipient {
	r := Recipient{VID: vid}
	if u != nil {
		r.Name = u.Name
		if u.Email != nil {
			r.Email = *u.Email
		}
	}
	return r
}

// BookingConfirmedEvent carries the full flight row of a new booking
type BookingConfirmedEvent struct {
	MessageID string    `json:"message_id"`
	BookingID int64     `json:"booking_id"`
	Flight    Flight    `json:"flight"`
	Recipient Recipient `json:"recipient"`
	Timestamp time.Time `json:"timestamp"`
}

// BookingCancelledEvent is addressed to the owner of the removed booking
type BookingCancelledEvent struct {
	MessageID   string    `json:"message_id"`
	BookingID   int64     `json:"booking_id"`
	Flight      Flight    `json:"flight"`
	Recipient   Recipient `json:"recipient"`
	CancelledBy int64     `json:"cancelled_by"`
	ByAdmin     bool      `json:"by_admin"`
	Timestamp   time.Time `json:"timestamp"`
}

// FieldChange is one changed flight field
type FieldChange struct {
	Field string `json:"field"`
	Old   string `json:"old"`
	New   string `json:"new"`
}

// FlightUpdatedEvent tells a booker what changed on their flight
type FlightUpdatedEvent struct {
	MessageID string        `json:"message_id"`
	Flight    Flight        `json:"flight"`
	Changes   []FieldChange `json:"changes"`
	Recipient Recipient     `json:"recipient"`
	Timestamp time.Time     `json:"timestamp"`
}

// PrivateSlotEvent is published on every private slot status transition
type PrivateSlotEvent struct {
	MessageID string             `json:"message_id"`
	Request   PrivateSlotRequest `json:"request"`
	Recipient Recipient          `json:"recipient"`
	Timestamp time.Time          `json:"timestamp"`
}
