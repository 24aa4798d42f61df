package service

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/wb-go/wbf/ginext"

	"eventify/internal/dto"
	"eventify/internal/model"
	"eventify/internal/repo"
	"eventify/internal/reservation"
	"eventify/pkg/validator"
)

// IdentityKey is the gin context key the auth middleware stores the
// caller identity under.
const IdentityKey = "identity"

type Service interface {
	CreateEvent(ctx *ginext.Context)
	UpdateEvent(ctx *ginext.Context)
	DeleteEvent(ctx *ginext.Context)
	GetAllEvents(ctx *ginext.Context)
	GetInfo(ctx *ginext.Context)
	GetSeats(ctx *ginext.Context)
	CreateSeats(ctx *ginext.Context)
	GenerateSeats(ctx *ginext.Context)
	BookTickets(ctx *ginext.Context)
	BookSeats(ctx *ginext.Context)
	CancelBooking(ctx *ginext.Context)
	GetMyBookings(ctx *ginext.Context)
	GetBookingSeats(ctx *ginext.Context)
}

type service struct {
	repo  repo.Repository
	coord *reservation.Coordinator
	log   *zerolog.Logger
}

func NewService(repo repo.Repository, coord *reservation.Coordinator, logger *zerolog.Logger) Service {
	return &service{
		repo:  repo,
		coord: coord,
		log:   logger,
	}
}

func identityFrom(ctx *ginext.Context) (model.Identity, bool) {
	v, ok := ctx.Get(IdentityKey)
	if !ok {
		return model.Identity{}, false
	}
	id, ok := v.(model.Identity)
	return id, ok
}

func (s *service) CreateEvent(ctx *ginext.Context) {
	var req dto.CreateEventRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		s.log.Error().Err(err).Msg("failed to parse create event request")
		dto.BadResponseError(ctx, dto.FieldIncorrect, "Invalid JSON format")
		return
	}

	if verr := validator.Validate(ctx, req); verr != nil {
		s.log.Error().Msgf("validation failed: %v", verr)
		dto.BadResponseError(ctx, dto.FieldIncorrect, fmt.Sprintf("%v", verr))
		return
	}

	event := &model.Event{
		Name:        req.Name,
		Date:        req.Date,
		Location:    req.Location,
		Description: req.Description,
		TotalSeats:  req.TotalSeats,
		SeatLayout:  req.SeatLayout,
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
	}

	id, err := s.repo.CreateEvent(ctx, event)
	if err != nil {
		s.log.Error().Err(err).Msg("failed to create event in DB")
		dto.InternalServerError(ctx)
		return
	}

	event.ID = id
	event.AvailableSeats = event.TotalSeats
	s.log.Info().Int64("event_id", id).Msg("event created successfully")

	dto.SuccessCreatedResponse(ctx, dto.NewEventResponse(event))
}

func (s *service) UpdateEvent(ctx *ginext.Context) {
	eventID, err := strconv.ParseInt(ctx.Param("id"), 10, 64)
	if err != nil {
		dto.BadResponseError(ctx, dto.FieldIncorrect, "Invalid event ID")
		return
	}

	var req dto.UpdateEventRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		dto.BadResponseError(ctx, dto.FieldIncorrect, "Invalid JSON format")
		return
	}

	if verr := validator.Validate(ctx, req); verr != nil {
		dto.BadResponseError(ctx, dto.FieldIncorrect, fmt.Sprintf("%v", verr))
		return
	}

	event := &model.Event{
		ID:          eventID,
		Name:        req.Name,
		Date:        req.Date,
		Location:    req.Location,
		Description: req.Description,
	}

	if err := s.repo.UpdateEvent(ctx, event); err != nil {
		if errors.Is(err, reservation.ErrEventNotFound) {
			dto.EventNotFoundError(ctx)
			return
		}
		s.log.Error().Err(err).Int64("event_id", eventID).Msg("failed to update event")
		dto.InternalServerError(ctx)
		return
	}

	updated, err := s.repo.GetEvent(ctx, eventID)
	if err != nil {
		s.log.Error().Err(err).Int64("event_id", eventID).Msg("failed to reload event after update")
		dto.InternalServerError(ctx)
		return
	}

	dto.SuccessResponse(ctx, dto.NewEventResponse(updated))
}

func (s *service) DeleteEvent(ctx *ginext.Context) {
	eventID, err := strconv.ParseInt(ctx.Param("id"), 10, 64)
	if err != nil {
		dto.BadResponseError(ctx, dto.FieldIncorrect, "Invalid event ID")
		return
	}

	if err := s.repo.DeleteEvent(ctx, eventID); err != nil {
		if errors.Is(err, reservation.ErrEventNotFound) {
			dto.EventNotFoundError(ctx)
			return
		}
		s.log.Error().Err(err).Int64("event_id", eventID).Msg("failed to delete event")
		dto.InternalServerError(ctx)
		return
	}

	s.log.Info().Int64("event_id", eventID).Msg("event deleted")
	dto.SuccessResponse(ctx, gin.H{"deleted": eventID})
}

func (s *service) GetAllEvents(ctx *ginext.Context) {
	events, err := s.repo.GetAllEvents(ctx)
	if err != nil {
		s.log.Error().Err(err).Msg("failed to list events")
		dto.InternalServerError(ctx)
		return
	}

	resp := make([]dto.EventResponse, 0, len(events))
	for i := range events {
		resp = append(resp, dto.NewEventResponse(&events[i]))
	}

	dto.SuccessResponse(ctx, resp)
}

func (s *service) GetInfo(ctx *ginext.Context) {
	eventID, err := strconv.ParseInt(ctx.Param("id"), 10, 64)
	if err != nil {
		dto.BadResponseError(ctx, dto.FieldIncorrect, "Invalid event ID")
		return
	}

	event, err := s.repo.GetEvent(ctx, eventID)
	if err != nil {
		if errors.Is(err, reservation.ErrEventNotFound) {
			dto.EventNotFoundError(ctx)
			return
		}
		s.log.Error().Err(err).Int64("event_id", eventID).Msg("failed to get event")
		dto.InternalServerError(ctx)
		return
	}

	dto.SuccessResponse(ctx, dto.NewEventResponse(event))
}

func (s *service) GetSeats(ctx *ginext.Context) {
	eventID, err := strconv.ParseInt(ctx.Param("id"), 10, 64)
	if err != nil {
		dto.BadResponseError(ctx, dto.FieldIncorrect, "Invalid event ID")
		return
	}

	if _, err := s.repo.GetEvent(ctx, eventID); err != nil {
		if errors.Is(err, reservation.ErrEventNotFound) {
			dto.EventNotFoundError(ctx)
			return
		}
		s.log.Error().Err(err).Int64("event_id", eventID).Msg("failed to get event")
		dto.InternalServerError(ctx)
		return
	}

	seats, err := s.repo.GetSeatsByEvent(ctx, eventID, ctx.Query("section"), ctx.Query("row"))
	if err != nil {
		s.log.Error().Err(err).Int64("event_id", eventID).Msg("failed to list seats")
		dto.InternalServerError(ctx)
		return
	}

	dto.SuccessResponse(ctx, dto.GroupSeats(seats))
}

func (s *service) CreateSeats(ctx *ginext.Context) {
	eventID, err := strconv.ParseInt(ctx.Param("id"), 10, 64)
	if err != nil {
		dto.BadResponseError(ctx, dto.FieldIncorrect, "Invalid event ID")
		return
	}

	var req dto.CreateSeatsRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		dto.BadResponseError(ctx, dto.FieldIncorrect, "Invalid JSON format")
		return
	}

	if verr := validator.Validate(ctx, req); verr != nil {
		dto.BadResponseError(ctx, dto.FieldIncorrect, fmt.Sprintf("%v", verr))
		return
	}

	seats := make([]model.Seat, 0, len(req.Seats))
	for _, in := range req.Seats {
		seats = append(seats, model.Seat{
			EventID:    eventID,
			SeatNumber: in.SeatNumber,
			Row:        in.Row,
			Section:    in.Section,
			Price:      in.Price,
			SeatType:   in.SeatType,
			Status:     model.SeatStatusAvailable,
		})
	}

	count, err := s.repo.CreateSeats(ctx, eventID, seats)
	if err != nil {
		switch {
		case errors.Is(err, reservation.ErrEventNotFound):
			dto.EventNotFoundError(ctx)
		case errors.Is(err, reservation.ErrSeatConflict):
			dto.BadResponseError(ctx, dto.SeatConflict, "Duplicate seat positions for this event")
		default:
			s.log.Error().Err(err).Int64("event_id", eventID).Msg("failed to create seats")
			dto.InternalServerError(ctx)
		}
		return
	}

	s.log.Info().Int64("event_id", eventID).Int("seats", count).Msg("seats created")
	dto.SuccessCreatedResponse(ctx, gin.H{"created": count})
}

func (s *service) GenerateSeats(ctx *ginext.Context) {
	eventID, err := strconv.ParseInt(ctx.Param("id"), 10, 64)
	if err != nil {
		dto.BadResponseError(ctx, dto.FieldIncorrect, "Invalid event ID")
		return
	}

	var req dto.GenerateSeatsRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		dto.BadResponseError(ctx, dto.FieldIncorrect, "Invalid JSON format")
		return
	}

	if verr := validator.Validate(ctx, req); verr != nil {
		dto.BadResponseError(ctx, dto.FieldIncorrect, fmt.Sprintf("%v", verr))
		return
	}

	event, err := s.repo.GetEvent(ctx, eventID)
	if err != nil {
		if errors.Is(err, reservation.ErrEventNotFound) {
			dto.EventNotFoundError(ctx)
			return
		}
		s.log.Error().Err(err).Int64("event_id", eventID).Msg("failed to get event")
		dto.InternalServerError(ctx)
		return
	}

	if event.SeatLayout == nil {
		dto.BadResponseError(ctx, dto.FieldIncorrect, "Event has no seat layout")
		return
	}

	seats, err := model.GenerateSeats(eventID, *event.SeatLayout, req.BasePrice)
	if err != nil {
		dto.BadResponseError(ctx, dto.FieldIncorrect, fmt.Sprintf("%v", err))
		return
	}

	count, err := s.repo.CreateSeats(ctx, eventID, seats)
	if err != nil {
		switch {
		case errors.Is(err, reservation.ErrSeatConflict):
			dto.BadResponseError(ctx, dto.SeatConflict, "Seats already generated for this event")
		default:
			s.log.Error().Err(err).Int64("event_id", eventID).Msg("failed to store generated seats")
			dto.InternalServerError(ctx)
		}
		return
	}

	s.log.Info().Int64("event_id", eventID).Int("seats", count).Msg("seat map generated")
	dto.SuccessCreatedResponse(ctx, gin.H{"created": count})
}

func (s *service) BookTickets(ctx *ginext.Context) {
	eventID, err := strconv.ParseInt(ctx.Param("id"), 10, 64)
	if err != nil {
		dto.BadResponseError(ctx, dto.FieldIncorrect, "Invalid event ID")
		return
	}

	user, ok := identityFrom(ctx)
	if !ok {
		dto.BadResponseError(ctx, dto.FieldIncorrect, "Missing caller identity")
		return
	}

	var req dto.BookTicketsRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		dto.BadResponseError(ctx, dto.FieldIncorrect, "Invalid JSON format")
		return
	}

	if verr := validator.Validate(ctx, req); verr != nil {
		dto.BadResponseError(ctx, dto.FieldIncorrect, fmt.Sprintf("%v", verr))
		return
	}

	user.Name = req.Name
	user.Email = req.Email

	booking, err := s.coord.BookTickets(ctx.Request.Context(), user, eventID, req.Tickets)
	if err != nil {
		s.respondReservationError(ctx, err)
		return
	}

	s.log.Info().
		Int64("booking_id", booking.ID).
		Int64("event_id", eventID).
		Int("tickets", booking.Tickets).
		Msg("tickets booked")

	dto.SuccessCreatedResponse(ctx, dto.BookingResponse{
		ID:          booking.ID,
		EventID:     booking.EventID,
		UserName:    booking.UserName,
		UserEmail:   booking.UserEmail,
		Tickets:     booking.Tickets,
		TotalAmount: booking.TotalAmount,
		Status:      booking.Status,
		BookingDate: booking.BookingDate,
	})
}

func (s *service) BookSeats(ctx *ginext.Context) {
	eventID, err := strconv.ParseInt(ctx.Param("id"), 10, 64)
	if err != nil {
		dto.BadResponseError(ctx, dto.FieldIncorrect, "Invalid event ID")
		return
	}

	user, ok := identityFrom(ctx)
	if !ok {
		dto.BadResponseError(ctx, dto.FieldIncorrect, "Missing caller identity")
		return
	}

	var req dto.BookSeatsRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		dto.BadResponseError(ctx, dto.FieldIncorrect, "Invalid JSON format")
		return
	}

	if verr := validator.Validate(ctx, req); verr != nil {
		dto.BadResponseError(ctx, dto.FieldIncorrect, fmt.Sprintf("%v", verr))
		return
	}

	user.Name = req.Name
	user.Email = req.Email

	booking, seats, err := s.coord.BookSeats(ctx.Request.Context(), user, eventID, req.Seats)
	if err != nil {
		s.respondReservationError(ctx, err)
		return
	}

	s.log.Info().
		Int64("booking_id", booking.ID).
		Int64("event_id", eventID).
		Int("seats", len(seats)).
		Msg("seats booked")

	dto.SuccessCreatedResponse(ctx, dto.BookSeatsResponse{
		ID:          booking.ID,
		Message:     "Seats booked successfully",
		Seats:       dto.NewBookedSeats(seats),
		TotalAmount: booking.TotalAmount,
	})
}

func (s *service) CancelBooking(ctx *ginext.Context) {
	bookingID, err := strconv.ParseInt(ctx.Param("id"), 10, 64)
	if err != nil {
		dto.BadResponseError(ctx, dto.FieldIncorrect, "Invalid booking ID")
		return
	}

	user, ok := identityFrom(ctx)
	if !ok {
		dto.BadResponseError(ctx, dto.FieldIncorrect, "Missing caller identity")
		return
	}

	booking, err := s.coord.Cancel(ctx.Request.Context(), user, bookingID)
	if err != nil {
		s.respondReservationError(ctx, err)
		return
	}

	s.log.Info().
		Int64("booking_id", booking.ID).
		Int64("event_id", booking.EventID).
		Msg("booking cancelled")

	dto.SuccessResponse(ctx, dto.BookingResponse{
		ID:          booking.ID,
		EventID:     booking.EventID,
		UserName:    booking.UserName,
		UserEmail:   booking.UserEmail,
		Tickets:     booking.Tickets,
		TotalAmount: booking.TotalAmount,
		Status:      booking.Status,
		BookingDate: booking.BookingDate,
	})
}

func (s *service) GetMyBookings(ctx *ginext.Context) {
	user, ok := identityFrom(ctx)
	if !ok {
		dto.BadResponseError(ctx, dto.FieldIncorrect, "Missing caller identity")
		return
	}

	bookings, events, err := s.repo.GetBookingsByUser(ctx, user.UserID)
	if err != nil {
		s.log.Error().Err(err).Int64("user_id", user.UserID).Msg("failed to list bookings")
		dto.InternalServerError(ctx)
		return
	}

	resp := make([]dto.BookingResponse, 0, len(bookings))
	for i, b := range bookings {
		resp = append(resp, dto.BookingResponse{
			ID:          b.ID,
			EventID:     b.EventID,
			EventName:   events[i].Name,
			Date:        events[i].Date,
			Location:    events[i].Location,
			UserName:    b.UserName,
			UserEmail:   b.UserEmail,
			Tickets:     b.Tickets,
			TotalAmount: b.TotalAmount,
			Status:      b.Status,
			BookingDate: b.BookingDate,
		})
	}

	dto.SuccessResponse(ctx, resp)
}

func (s *service) GetBookingSeats(ctx *ginext.Context) {
	bookingID, err := strconv.ParseInt(ctx.Param("id"), 10, 64)
	if err != nil {
		dto.BadResponseError(ctx, dto.FieldIncorrect, "Invalid booking ID")
		return
	}

	user, ok := identityFrom(ctx)
	if !ok {
		dto.BadResponseError(ctx, dto.FieldIncorrect, "Missing caller identity")
		return
	}

	booking, event, seats, err := s.repo.GetBookingSeats(ctx, bookingID, user.UserID)
	if err != nil {
		if errors.Is(err, reservation.ErrBookingNotFound) {
			dto.BookingNotFoundError(ctx)
			return
		}
		s.log.Error().Err(err).Int64("booking_id", bookingID).Msg("failed to get booking seats")
		dto.InternalServerError(ctx)
		return
	}

	dto.SuccessResponse(ctx, gin.H{
		"booking": dto.BookingResponse{
			ID:          booking.ID,
			EventID:     booking.EventID,
			EventName:   event.Name,
			Date:        event.Date,
			Location:    event.Location,
			UserName:    booking.UserName,
			UserEmail:   booking.UserEmail,
			Tickets:     booking.Tickets,
			TotalAmount: booking.TotalAmount,
			Status:      booking.Status,
			BookingDate: booking.BookingDate,
		},
		"seats": dto.NewBookedSeats(seats),
	})
}

func (s *service) respondReservationError(ctx *ginext.Context, err error) {
	var capErr *reservation.CapacityError
	var seatErr *reservation.SeatConflictError
	var valErr *reservation.ValidationError

	switch {
	case errors.Is(err, reservation.ErrEventNotFound):
		dto.EventNotFoundError(ctx)
	case errors.Is(err, reservation.ErrEventExpired):
		dto.BadResponseError(ctx, dto.EventExpired, "Event has already taken place")
	case errors.As(err, &capErr):
		dto.BadResponseErrorDetails(ctx, dto.InsufficientCapacity, "Not enough seats available",
			gin.H{"available_seats": capErr.Available})
	case errors.As(err, &seatErr):
		dto.BadResponseErrorDetails(ctx, dto.SeatConflict, "Some seats are no longer available",
			gin.H{"unavailable": seatErr.SeatIDs})
	case errors.Is(err, reservation.ErrDuplicateBooking):
		dto.BadResponseError(ctx, dto.BookingDuplicate, "You already have a booking for this event")
	case errors.Is(err, reservation.ErrBookingNotFound):
		dto.BookingNotFoundError(ctx)
	case errors.Is(err, reservation.ErrAlreadyCancelled):
		dto.BadResponseError(ctx, dto.BookingAlreadyCancelled, "Booking is already cancelled")
	case errors.As(err, &valErr):
		dto.BadResponseError(ctx, dto.FieldIncorrect, valErr.Reason)
	default:
		s.log.Error().Err(err).Msg("reservation failed")
		dto.InternalServerError(ctx)
	}
}
