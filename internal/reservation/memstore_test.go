package reservation_test

import (
	"context"
	"sync"
	"time"

	"eventify/internal/model"
	"eventify/internal/reservation"
)

// memStore is a mutex-guarded in-memory reservation.Store. It enforces the
// same conditional transitions as the SQL implementation: counters never go
// negative, only available seats flip to booked, and a user holds at most
// one Confirmed booking per event.
type memStore struct {
	mu           sync.Mutex
	nextID       int64
	events       map[int64]*model.Event
	seats        map[int64]*model.Seat
	bookings     map[int64]*model.Booking
	bookingSeats map[int64][]int64
}

func newMemStore() *memStore {
	return &memStore{
		events:       make(map[int64]*model.Event),
		seats:        make(map[int64]*model.Seat),
		bookings:     make(map[int64]*model.Booking),
		bookingSeats: make(map[int64][]int64),
	}
}

func (m *memStore) addEvent(name string, date time.Time, total int) int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	m.events[m.nextID] = &model.Event{
		ID:             m.nextID,
		Name:           name,
		Date:           date,
		Location:       "Main Hall",
		TotalSeats:     total,
		AvailableSeats: total,
	}
	return m.nextID
}

func (m *memStore) addSeat(eventID int64, row, number string, price float64) int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	m.seats[m.nextID] = &model.Seat{
		ID:         m.nextID,
		EventID:    eventID,
		SeatNumber: number,
		Row:        row,
		Section:    "General",
		Price:      price,
		SeatType:   model.SeatTypeRegular,
		Status:     model.SeatStatusAvailable,
	}
	return m.nextID
}

func (m *memStore) availableSeats(eventID int64) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.events[eventID].AvailableSeats
}

func (m *memStore) seatStatus(seatID int64) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.seats[seatID].Status
}

// confirmedTickets sums tickets over Confirmed bookings for the event.
func (m *memStore) confirmedTickets(eventID int64) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	total := 0
	for _, b := range m.bookings {
		if b.EventID == eventID && b.Status == model.BookingStatusConfirmed {
			total += b.Tickets
		}
	}
	return total
}

func (m *memStore) GetEvent(_ context.Context, eventID int64) (*model.Event, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.events[eventID]
	if !ok {
		return nil, reservation.ErrEventNotFound
	}
	cp := *e
	return &cp, nil
}

func (m *memStore) ActiveBooking(_ context.Context, userID, eventID int64) (*model.Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b := m.activeBookingLocked(userID, eventID)
	if b == nil {
		return nil, nil
	}
	cp := *b
	return &cp, nil
}

func (m *memStore) activeBookingLocked(userID, eventID int64) *model.Booking {
	for _, b := range m.bookings {
		if b.UserID == userID && b.EventID == eventID && b.Status == model.BookingStatusConfirmed {
			return b
		}
	}
	return nil
}

func (m *memStore) BookTickets(_ context.Context, b *model.Booking) (*model.Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.events[b.EventID]
	if !ok {
		return nil, reservation.ErrEventNotFound
	}
	if e.Date.Before(time.Now()) {
		return nil, reservation.ErrEventExpired
	}
	if e.AvailableSeats < b.Tickets {
		return nil, &reservation.CapacityError{Requested: b.Tickets, Available: e.AvailableSeats}
	}
	if m.activeBookingLocked(b.UserID, b.EventID) != nil {
		return nil, reservation.ErrDuplicateBooking
	}

	e.AvailableSeats -= b.Tickets
	return m.insertBookingLocked(b), nil
}

func (m *memStore) BookSeats(_ context.Context, b *model.Booking, seatIDs []int64) (*model.Booking, []model.Seat, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.events[b.EventID]
	if !ok {
		return nil, nil, reservation.ErrEventNotFound
	}
	if e.Date.Before(time.Now()) {
		return nil, nil, reservation.ErrEventExpired
	}
	if m.activeBookingLocked(b.UserID, b.EventID) != nil {
		return nil, nil, reservation.ErrDuplicateBooking
	}

	var conflicts []int64
	for _, id := range seatIDs {
		s, ok := m.seats[id]
		if !ok || s.EventID != b.EventID || s.Status != model.SeatStatusAvailable {
			conflicts = append(conflicts, id)
		}
	}
	if len(conflicts) > 0 {
		return nil, nil, &reservation.SeatConflictError{SeatIDs: conflicts}
	}
	if e.AvailableSeats < len(seatIDs) {
		return nil, nil, &reservation.CapacityError{Requested: len(seatIDs), Available: e.AvailableSeats}
	}

	var total float64
	booked := make([]model.Seat, 0, len(seatIDs))
	for _, id := range seatIDs {
		s := m.seats[id]
		s.Status = model.SeatStatusBooked
		total += s.Price
		booked = append(booked, *s)
	}
	e.AvailableSeats -= len(seatIDs)

	b.TotalAmount = total
	stored := m.insertBookingLocked(b)
	stored.SeatIDs = seatIDs
	m.bookingSeats[stored.ID] = seatIDs
	return stored, booked, nil
}

func (m *memStore) Cancel(_ context.Context, bookingID, userID int64) (*reservation.CancelResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	b, ok := m.bookings[bookingID]
	if !ok || b.UserID != userID {
		return nil, reservation.ErrBookingNotFound
	}
	if b.Status == model.BookingStatusCancelled {
		return nil, reservation.ErrAlreadyCancelled
	}

	e := m.events[b.EventID]
	if e.Date.Before(time.Now()) {
		return nil, reservation.ErrEventExpired
	}

	b.Status = model.BookingStatusCancelled

	var released []model.Seat
	for _, id := range m.bookingSeats[bookingID] {
		s := m.seats[id]
		if s.Status == model.SeatStatusBooked {
			s.Status = model.SeatStatusAvailable
			released = append(released, *s)
		}
	}

	e.AvailableSeats += b.Tickets
	if e.AvailableSeats > e.TotalSeats {
		e.AvailableSeats = e.TotalSeats
	}

	bc, ec := *b, *e
	return &reservation.CancelResult{Booking: &bc, Event: &ec, Seats: released}, nil
}

func (m *memStore) insertBookingLocked(b *model.Booking) *model.Booking {
	m.nextID++
	stored := *b
	stored.ID = m.nextID
	stored.BookingDate = time.Now()
	m.bookings[stored.ID] = &stored
	cp := stored
	return &cp
}
