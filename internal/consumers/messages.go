package consumers

import (
	"encoding/json"
	"fmt"
	"strings"

	"slotbook/internal/models"
)

// Message is a rendered notification ready for delivery
type Message struct {
	Kind    string
	To      models.Recipient
	Subject string
	Body    string
}

func flightLine(f models.Flight) string {
	return fmt.Sprintf("%s %s-%s (%s)", f.FlightNumber, f.OriginICAO, f.DestinationICAO, f.Category)
}

func times(f models.Flight) string {
	var parts []string
	if f.DepartureTimeZulu != "" {
		parts = append(parts, "departs "+f.DepartureTimeZulu+"Z")
	}
	if f.Gate != nil && *f.Gate != "" {
		parts = append(parts, "gate "+*f.Gate)
	}
	return strings.Join(parts, ", ")
}

// Build decodes a published event into a Message. Unknown subjects are errors.
func Build(subject string, data []byte) (*Message, error) {
	switch subject {
	case models.EventBookingConfirmed:
		var e models.BookingConfirmedEvent
		if err := json.Unmarshal(data, &e); err != nil {
			return nil, fmt.Errorf("failed to decode %s: %w", subject, err)
		}
		body := "Your booking is confirmed: " + flightLine(e.Flight)
		if t := times(e.Flight); t != "" {
			body += ", " + t
		}
		return &Message{Kind: subject, To: e.Recipient, Subject: "Booking confirmed: " + e.Flight.FlightNumber, Body: body}, nil

	case models.EventBookingCancelled:
		var e models.BookingCancelledEvent
		if err := json.Unmarshal(data, &e); err != nil {
			return nil, fmt.Errorf("failed to decode %s: %w", subject, err)
		}
		body := "Your booking was cancelled: " + flightLine(e.Flight)
		if e.ByAdmin && e.CancelledBy != e.Recipient.VID {
			body += ". The booking was released by an event administrator."
		}
		return &Message{Kind: subject, To: e.Recipient, Subject: "Booking cancelled: " + e.Flight.FlightNumber, Body: body}, nil

	case models.EventFlightUpdated:
		var e models.FlightUpdatedEvent
		if err := json.Unmarshal(data, &e); err != nil {
			return nil, fmt.Errorf("failed to decode %s: %w", subject, err)
		}
		var b strings.Builder
		b.WriteString("Your booked flight has changed: " + flightLine(e.Flight) + "\n")
		for _, c := range e.Changes {
			fmt.Fprintf(&b, "%s: %q -> %q\n", c.Field, c.Old, c.New)
		}
		return &Message{Kind: subject, To: e.Recipient, Subject: "Flight updated: " + e.Flight.FlightNumber, Body: strings.TrimRight(b.String(), "\n")}, nil

	case models.EventPrivateSlotApproved, models.EventPrivateSlotRejected, models.EventPrivateSlotCancelled:
		var e models.PrivateSlotEvent
		if err := json.Unmarshal(data, &e); err != nil {
			return nil, fmt.Errorf("failed to decode %s: %w", subject, err)
		}
		return privateSlotMessage(subject, e), nil
	}

	return nil, fmt.Errorf("unknown notification subject %q", subject)
}

func privateSlotMessage(subject string, e models.PrivateSlotEvent) *Message {
	r := e.Request
	line := fmt.Sprintf("%s %s-%s at %sZ", r.FlightNumber, r.OriginICAO, r.DestinationICAO, r.DepartureTimeZulu)

	var title, body string
	switch subject {
	case models.EventPrivateSlotApproved:
		title = "Private slot approved"
		body = "Your private slot request was approved: " + line
	case models.EventPrivateSlotRejected:
		title = "Private slot rejected"
		body = "Your private slot request was rejected: " + line
		if r.RejectionReason != nil {
			body += "\nReason: " + *r.RejectionReason
		}
	default:
		title = "Private slot cancelled"
		body = "Your private slot was cancelled: " + line
		if r.CancellationReason != nil {
			body += "\nReason: " + *r.CancellationReason
		}
	}

	return &Message{Kind: subject, To: e.Recipient, Subject: title + ": " + r.FlightNumber, Body: body}
}
