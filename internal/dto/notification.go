package dto

import (
	"time"

	"eventify/internal/reservation"
)

// BookingNotification is the message published to the notification queue
// for every confirmed or cancelled booking.
type BookingNotification struct {
	Kind          string       `json:"kind"`
	BookingID     int64        `json:"booking_id"`
	UserName      string       `json:"user_name"`
	UserEmail     string       `json:"user_email"`
	EventName     string       `json:"event_name"`
	EventDate     time.Time    `json:"event_date"`
	EventLocation string       `json:"event_location"`
	Tickets       int          `json:"tickets"`
	Seats         []BookedSeat `json:"seats,omitempty"`
	TotalAmount   float64      `json:"total_amount"`
}

func NewBookingNotification(n reservation.Notification) BookingNotification {
	return BookingNotification{
		Kind:          n.Kind,
		BookingID:     n.BookingID,
		UserName:      n.UserName,
		UserEmail:     n.UserEmail,
		EventName:     n.EventName,
		EventDate:     n.EventDate,
		EventLocation: n.EventLocation,
		Tickets:       n.Tickets,
		Seats:         NewBookedSeats(n.Seats),
		TotalAmount:   n.TotalAmount,
	}
}
