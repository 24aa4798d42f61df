package dto

import (
	"time"

	"github.com/wb-go/wbf/ginext"

	"eventify/internal/model"
)

const (
	FieldBadFormat     = "FIELD_BADFORMAT"
	FieldIncorrect     = "FIELD_INCORRECT"
	ServiceUnavailable = "SERVICE_UNAVAILABLE"
	InternalError      = "Service is currently unavailable. Please try again later."

	EventNotFound           = "EVENT_NOT_FOUND"
	EventExpired            = "EVENT_EXPIRED"
	InsufficientCapacity    = "INSUFFICIENT_CAPACITY"
	SeatConflict            = "SEAT_CONFLICT"
	BookingNotFound         = "BOOKING_NOT_FOUND"
	BookingDuplicate        = "BOOKING_DUPLICATE"
	BookingAlreadyCancelled = "BOOKING_ALREADY_CANCELLED"
)

type CreateEventRequest struct {
	Name        string            `json:"name" validate:"required,max=100"`
	Date        time.Time         `json:"date" validate:"required,future"`
	Location    string            `json:"location" validate:"required,max=200"`
	Description string            `json:"description" validate:"max=500"`
	TotalSeats  int               `json:"total_seats" validate:"required,gte=1"`
	SeatLayout  *model.SeatLayout `json:"seat_layout,omitempty"`
}

type UpdateEventRequest struct {
	Name        string    `json:"name" validate:"required,max=100"`
	Date        time.Time `json:"date" validate:"required,future"`
	Location    string    `json:"location" validate:"required,max=200"`
	Description string    `json:"description" validate:"max=500"`
}

type BookTicketsRequest struct {
	Name    string `json:"name" validate:"required,min=2,max=255"`
	Email   string `json:"email" validate:"required,email"`
	Tickets int    `json:"tickets" validate:"required,gte=1,lte=10"`
}

type BookSeatsRequest struct {
	Name  string  `json:"name" validate:"required,min=2,max=255"`
	Email string  `json:"email" validate:"required,email"`
	Seats []int64 `json:"seats" validate:"required,min=1"`
}

type SeatInput struct {
	SeatNumber string  `json:"seatNumber" validate:"required,max=16"`
	Row        string  `json:"row" validate:"required,max=8"`
	Section    string  `json:"section" validate:"max=64"`
	Price      float64 `json:"price" validate:"gte=0"`
	SeatType   string  `json:"type" validate:"omitempty,oneof=regular vip premium"`
}

type CreateSeatsRequest struct {
	Seats []SeatInput `json:"seats" validate:"required,min=1,dive"`
}

type GenerateSeatsRequest struct {
	BasePrice float64 `json:"base_price" validate:"required,gt=0"`
}

type EventResponse struct {
	ID               int64             `json:"id"`
	Name             string            `json:"name"`
	Date             time.Time         `json:"date"`
	Location         string            `json:"location"`
	Description      string            `json:"description,omitempty"`
	TotalSeats       int               `json:"total_seats"`
	AvailableSeats   int               `json:"available_seats"`
	HasSeatSelection bool              `json:"has_seat_selection"`
	SeatLayout       *model.SeatLayout `json:"seat_layout,omitempty"`
	CreatedAt        time.Time         `json:"created_at"`
	UpdatedAt        time.Time         `json:"updated_at"`
}

func NewEventResponse(e *model.Event) EventResponse {
	return EventResponse{
		ID:               e.ID,
		Name:             e.Name,
		Date:             e.Date,
		Location:         e.Location,
		Description:      e.Description,
		TotalSeats:       e.TotalSeats,
		AvailableSeats:   e.AvailableSeats,
		HasSeatSelection: e.HasSeatSelection,
		SeatLayout:       e.SeatLayout,
		CreatedAt:        e.CreatedAt,
		UpdatedAt:        e.UpdatedAt,
	}
}

type SeatResponse struct {
	ID         int64   `json:"id"`
	SeatNumber string  `json:"seatNumber"`
	Status     string  `json:"status"`
	Price      float64 `json:"price"`
	SeatType   string  `json:"type"`
}

// SeatGroupResponse is a section-row bucket of seats, the shape the seat map
// endpoint serves to clients.
type SeatGroupResponse struct {
	Section string         `json:"section"`
	Row     string         `json:"row"`
	Seats   []SeatResponse `json:"seats"`
}

// GroupSeats buckets seats by (section, row) preserving row order.
func GroupSeats(seats []model.Seat) []SeatGroupResponse {
	var groups []SeatGroupResponse
	index := make(map[string]int)
	for _, s := range seats {
		key := s.Section + "-" + s.Row
		i, ok := index[key]
		if !ok {
			i = len(groups)
			index[key] = i
			groups = append(groups, SeatGroupResponse{Section: s.Section, Row: s.Row})
		}
		groups[i].Seats = append(groups[i].Seats, SeatResponse{
			ID:         s.ID,
			SeatNumber: s.SeatNumber,
			Status:     s.Status,
			Price:      s.Price,
			SeatType:   s.SeatType,
		})
	}
	return groups
}

type BookingResponse struct {
	ID          int64     `json:"id"`
	EventID     int64     `json:"event_id"`
	EventName   string    `json:"event_name,omitempty"`
	Date        time.Time `json:"date,omitempty"`
	Location    string    `json:"location,omitempty"`
	UserName    string    `json:"userName"`
	UserEmail   string    `json:"userEmail"`
	Tickets     int       `json:"tickets"`
	TotalAmount float64   `json:"totalAmount"`
	Status      string    `json:"status"`
	BookingDate time.Time `json:"bookingDate"`
}

type BookedSeat struct {
	ID         int64   `json:"id"`
	SeatNumber string  `json:"seatNumber"`
	Row        string  `json:"row"`
	Section    string  `json:"section"`
	Price      float64 `json:"price"`
}

type BookSeatsResponse struct {
	ID          int64        `json:"id"`
	Message     string       `json:"message"`
	Seats       []BookedSeat `json:"seats"`
	TotalAmount float64      `json:"totalAmount"`
}

func NewBookedSeats(seats []model.Seat) []BookedSeat {
	out := make([]BookedSeat, 0, len(seats))
	for _, s := range seats {
		out = append(out, BookedSeat{
			ID:         s.ID,
			SeatNumber: s.SeatNumber,
			Row:        s.Row,
			Section:    s.Section,
			Price:      s.Price,
		})
	}
	return out
}

type Response struct {
	Status string `json:"status"`
	Error  *Error `json:"error,omitempty"`
	Data   any    `json:"data,omitempty"`
}

type Error struct {
	Code    string `json:"code"`
	Desc    string `json:"desc"`
	Details any    `json:"details,omitempty"`
}

func BadResponseError(c *ginext.Context, code, desc string) {
	c.JSON(400, Response{
		Status: "error",
		Error:  &Error{Code: code, Desc: desc},
	})
}

func BadResponseErrorDetails(c *ginext.Context, code, desc string, details any) {
	c.JSON(400, Response{
		Status: "error",
		Error:  &Error{Code: code, Desc: desc, Details: details},
	})
}

func NotFoundError(c *ginext.Context, code, desc string) {
	c.JSON(404, Response{
		Status: "error",
		Error:  &Error{Code: code, Desc: desc},
	})
}

func InternalServerError(c *ginext.Context) {
	c.JSON(500, Response{
		Status: "error",
		Error:  &Error{Code: ServiceUnavailable, Desc: InternalError},
	})
}

func EventNotFoundError(c *ginext.Context) {
	NotFoundError(c, EventNotFound, "Event not found")
}

func BookingNotFoundError(c *ginext.Context) {
	NotFoundError(c, BookingNotFound, "Booking not found")
}

func SuccessResponse(c *ginext.Context, data any) {
	c.JSON(200, Response{Status: "ok", Data: data})
}

func SuccessCreatedResponse(c *ginext.Context, data any) {
	c.JSON(201, Response{Status: "ok", Data: data})
}
