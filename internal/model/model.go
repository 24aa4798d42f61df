package model

import "time"

const (
	SeatStatusAvailable = "available"
	SeatStatusBooked    = "booked"
	SeatStatusReserved  = "reserved"
)

const (
	SeatTypeRegular = "regular"
	SeatTypeVIP     = "vip"
	SeatTypePremium = "premium"
)

const (
	BookingStatusConfirmed = "Confirmed"
	BookingStatusCancelled = "Cancelled"
)

// SeatSection names a group of rows sharing a price multiplier, e.g.
// {Name: "VIP", Rows: ["A", "B"], PriceMultiplier: 1.5}.
type SeatSection struct {
	Name            string   `json:"name"`
	Rows            []string `json:"rows"`
	PriceMultiplier float64  `json:"price_multiplier"`
}

// SeatLayout describes the optional per-event seating grid. Events without
// a layout sell generic tickets against the capacity counter only.
type SeatLayout struct {
	Rows        int           `json:"rows"`
	SeatsPerRow int           `json:"seats_per_row"`
	Sections    []SeatSection `json:"sections"`
}

type Event struct {
	ID               int64       `db:"id" json:"id"`
	Name             string      `db:"name" json:"name"`
	Date             time.Time   `db:"date" json:"date"`
	Location         string      `db:"location" json:"location"`
	Description      string      `db:"description,omitempty" json:"description,omitempty"`
	TotalSeats       int         `db:"total_seats" json:"total_seats"`
	AvailableSeats   int         `db:"available_seats" json:"available_seats"`
	HasSeatSelection bool        `db:"has_seat_selection" json:"has_seat_selection"`
	SeatLayout       *SeatLayout `db:"seat_layout,omitempty" json:"seat_layout,omitempty"`
	CreatedAt        time.Time   `db:"created_at" json:"created_at"`
	UpdatedAt        time.Time   `db:"updated_at" json:"updated_at"`
}

// Expired reports whether the event date is already in the past at the
// given instant. Both booking and cancellation are refused once it is.
func (e *Event) Expired(now time.Time) bool {
	return e.Date.Before(now)
}

type Seat struct {
	ID         int64     `db:"id" json:"id"`
	EventID    int64     `db:"event_id" json:"event_id"`
	SeatNumber string    `db:"seat_number" json:"seat_number"`
	Row        string    `db:"row_label" json:"row"`
	Section    string    `db:"section" json:"section"`
	Price      float64   `db:"price" json:"price"`
	SeatType   string    `db:"seat_type" json:"type"`
	Status     string    `db:"status" json:"status"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time `db:"updated_at" json:"updated_at"`
}

type Booking struct {
	ID          int64     `db:"id" json:"id"`
	UserID      int64     `db:"user_id" json:"user_id"`
	EventID     int64     `db:"event_id" json:"event_id"`
	UserName    string    `db:"user_name" json:"user_name"`
	UserEmail   string    `db:"user_email" json:"user_email"`
	Tickets     int       `db:"tickets" json:"tickets"`
	SeatIDs     []int64   `db:"-" json:"seat_ids,omitempty"`
	TotalAmount float64   `db:"total_amount" json:"total_amount"`
	Status      string    `db:"status" json:"status"`
	BookingDate time.Time `db:"booking_date" json:"booking_date"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

// Identity is the authenticated caller as supplied by the auth middleware.
// The booking core trusts it and performs no authentication of its own.
type Identity struct {
	UserID int64
	Name   string
	Email  string
	Role   string
}

func (i Identity) IsAdmin() bool {
	return i.Role == "admin"
}
