package reservation_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"eventify/internal/model"
	"eventify/internal/reservation"
)

type recordNotifier struct {
	mu   sync.Mutex
	sent []reservation.Notification
	err  error
}

func (r *recordNotifier) Notify(_ context.Context, n reservation.Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	r.sent = append(r.sent, n)
	return nil
}

func (r *recordNotifier) kinds() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.sent))
	for _, n := range r.sent {
		out = append(out, n.Kind)
	}
	return out
}

func newCoordinator(t *testing.T, store reservation.Store, notifier reservation.Notifier) *reservation.Coordinator {
	t.Helper()
	log := zerolog.Nop()
	return reservation.NewCoordinator(store, notifier, &log)
}

func alice() model.Identity {
	return model.Identity{UserID: 1, Name: "Alice Smith", Email: "alice@example.com"}
}

func TestBookTickets(t *testing.T) {
	store := newMemStore()
	eventID := store.addEvent("Go Conference", time.Now().Add(48*time.Hour), 100)
	notifier := &recordNotifier{}
	coord := newCoordinator(t, store, notifier)

	booking, err := coord.BookTickets(context.Background(), alice(), eventID, 3)
	require.NoError(t, err)
	require.NotNil(t, booking)

	assert.Equal(t, model.BookingStatusConfirmed, booking.Status)
	assert.Equal(t, 3, booking.Tickets)
	assert.Equal(t, "alice@example.com", booking.UserEmail)
	assert.Equal(t, 97, store.availableSeats(eventID))
	assert.Equal(t, []string{reservation.NotifyBookingConfirmed}, notifier.kinds())
}

func TestBookTicketsValidatesCount(t *testing.T) {
	store := newMemStore()
	eventID := store.addEvent("Go Conference", time.Now().Add(48*time.Hour), 100)
	coord := newCoordinator(t, store, &recordNotifier{})

	for _, tickets := range []int{0, -1, 11} {
		_, err := coord.BookTickets(context.Background(), alice(), eventID, tickets)
		assert.ErrorIs(t, err, reservation.ErrValidation, "tickets=%d", tickets)
	}
	assert.Equal(t, 100, store.availableSeats(eventID))
}

func TestBookTicketsEventNotFound(t *testing.T) {
	store := newMemStore()
	coord := newCoordinator(t, store, &recordNotifier{})

	_, err := coord.BookTickets(context.Background(), alice(), 42, 2)
	assert.ErrorIs(t, err, reservation.ErrEventNotFound)
}

func TestBookTicketsEventExpired(t *testing.T) {
	store := newMemStore()
	eventID := store.addEvent("Past Event", time.Now().Add(-time.Hour), 100)
	coord := newCoordinator(t, store, &recordNotifier{})

	_, err := coord.BookTickets(context.Background(), alice(), eventID, 2)
	assert.ErrorIs(t, err, reservation.ErrEventExpired)
	assert.Equal(t, 100, store.availableSeats(eventID))
}

func TestBookTicketsInsufficientCapacity(t *testing.T) {
	store := newMemStore()
	eventID := store.addEvent("Small Venue", time.Now().Add(48*time.Hour), 2)
	coord := newCoordinator(t, store, &recordNotifier{})

	_, err := coord.BookTickets(context.Background(), alice(), eventID, 5)
	require.ErrorIs(t, err, reservation.ErrInsufficientCapacity)

	var capErr *reservation.CapacityError
	require.ErrorAs(t, err, &capErr)
	assert.Equal(t, 5, capErr.Requested)
	assert.Equal(t, 2, capErr.Available)
	assert.Equal(t, 2, store.availableSeats(eventID))
}

func TestDuplicateBookingLifecycle(t *testing.T) {
	store := newMemStore()
	eventID := store.addEvent("Go Conference", time.Now().Add(48*time.Hour), 100)
	notifier := &recordNotifier{}
	coord := newCoordinator(t, store, notifier)
	ctx := context.Background()

	first, err := coord.BookTickets(ctx, alice(), eventID, 2)
	require.NoError(t, err)

	_, err = coord.BookTickets(ctx, alice(), eventID, 1)
	assert.ErrorIs(t, err, reservation.ErrDuplicateBooking)
	assert.Equal(t, 98, store.availableSeats(eventID))

	cancelled, err := coord.Cancel(ctx, alice(), first.ID)
	require.NoError(t, err)
	assert.Equal(t, model.BookingStatusCancelled, cancelled.Status)
	assert.Equal(t, 100, store.availableSeats(eventID))

	second, err := coord.BookTickets(ctx, alice(), eventID, 4)
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, second.ID)
	assert.Equal(t, 96, store.availableSeats(eventID))

	assert.Equal(t, []string{
		reservation.NotifyBookingConfirmed,
		reservation.NotifyBookingCancelled,
		reservation.NotifyBookingConfirmed,
	}, notifier.kinds())
}

func TestBookSeats(t *testing.T) {
	store := newMemStore()
	eventID := store.addEvent("Jazz Night", time.Now().Add(48*time.Hour), 50)
	s1 := store.addSeat(eventID, "A", "A1", 100)
	s2 := store.addSeat(eventID, "A", "A2", 150)
	notifier := &recordNotifier{}
	coord := newCoordinator(t, store, notifier)

	booking, seats, err := coord.BookSeats(context.Background(), alice(), eventID, []int64{s1, s2})
	require.NoError(t, err)
	require.Len(t, seats, 2)

	assert.Equal(t, 2, booking.Tickets)
	assert.Equal(t, 250.0, booking.TotalAmount)
	assert.Equal(t, model.SeatStatusBooked, store.seatStatus(s1))
	assert.Equal(t, model.SeatStatusBooked, store.seatStatus(s2))
	assert.Equal(t, 48, store.availableSeats(eventID))

	require.Len(t, notifier.sent, 1)
	assert.Equal(t, 250.0, notifier.sent[0].TotalAmount)
	assert.Len(t, notifier.sent[0].Seats, 2)
}

func TestBookSeatsCollapsesDuplicateIDs(t *testing.T) {
	store := newMemStore()
	eventID := store.addEvent("Jazz Night", time.Now().Add(48*time.Hour), 50)
	s1 := store.addSeat(eventID, "A", "A1", 100)
	coord := newCoordinator(t, store, &recordNotifier{})

	booking, seats, err := coord.BookSeats(context.Background(), alice(), eventID, []int64{s1, s1, s1})
	require.NoError(t, err)
	assert.Equal(t, 1, booking.Tickets)
	assert.Len(t, seats, 1)
	assert.Equal(t, 49, store.availableSeats(eventID))
}

func TestBookSeatsValidatesSelection(t *testing.T) {
	store := newMemStore()
	eventID := store.addEvent("Jazz Night", time.Now().Add(48*time.Hour), 50)
	coord := newCoordinator(t, store, &recordNotifier{})
	ctx := context.Background()

	_, _, err := coord.BookSeats(ctx, alice(), eventID, nil)
	assert.ErrorIs(t, err, reservation.ErrValidation)

	_, _, err = coord.BookSeats(ctx, alice(), eventID, []int64{0, 0})
	assert.ErrorIs(t, err, reservation.ErrValidation)

	tooMany := make([]int64, 11)
	for i := range tooMany {
		tooMany[i] = int64(i + 1)
	}
	_, _, err = coord.BookSeats(ctx, alice(), eventID, tooMany)
	assert.ErrorIs(t, err, reservation.ErrValidation)
}

func TestBookSeatsConflict(t *testing.T) {
	store := newMemStore()
	eventID := store.addEvent("Jazz Night", time.Now().Add(48*time.Hour), 50)
	s1 := store.addSeat(eventID, "A", "A1", 100)
	s2 := store.addSeat(eventID, "A", "A2", 100)
	coord := newCoordinator(t, store, &recordNotifier{})
	ctx := context.Background()

	bob := model.Identity{UserID: 2, Name: "Bob Jones", Email: "bob@example.com"}
	_, _, err := coord.BookSeats(ctx, bob, eventID, []int64{s1})
	require.NoError(t, err)

	_, _, err = coord.BookSeats(ctx, alice(), eventID, []int64{s1, s2})
	require.ErrorIs(t, err, reservation.ErrSeatConflict)

	var conflict *reservation.SeatConflictError
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, []int64{s1}, conflict.SeatIDs)

	// the failed attempt must leave no partial state
	assert.Equal(t, model.SeatStatusAvailable, store.seatStatus(s2))
	assert.Equal(t, 49, store.availableSeats(eventID))
}

func TestCancelReleasesSeats(t *testing.T) {
	store := newMemStore()
	eventID := store.addEvent("Jazz Night", time.Now().Add(48*time.Hour), 50)
	s1 := store.addSeat(eventID, "A", "A1", 100)
	coord := newCoordinator(t, store, &recordNotifier{})
	ctx := context.Background()

	booking, _, err := coord.BookSeats(ctx, alice(), eventID, []int64{s1})
	require.NoError(t, err)

	_, err = coord.Cancel(ctx, alice(), booking.ID)
	require.NoError(t, err)

	assert.Equal(t, model.SeatStatusAvailable, store.seatStatus(s1))
	assert.Equal(t, 50, store.availableSeats(eventID))

	_, err = coord.Cancel(ctx, alice(), booking.ID)
	assert.ErrorIs(t, err, reservation.ErrAlreadyCancelled)
	assert.Equal(t, 50, store.availableSeats(eventID))
}

func TestCancelUnknownOrForeignBooking(t *testing.T) {
	store := newMemStore()
	eventID := store.addEvent("Jazz Night", time.Now().Add(48*time.Hour), 50)
	coord := newCoordinator(t, store, &recordNotifier{})
	ctx := context.Background()

	_, err := coord.Cancel(ctx, alice(), 999)
	assert.ErrorIs(t, err, reservation.ErrBookingNotFound)

	booking, err := coord.BookTickets(ctx, alice(), eventID, 1)
	require.NoError(t, err)

	bob := model.Identity{UserID: 2, Name: "Bob Jones", Email: "bob@example.com"}
	_, err = coord.Cancel(ctx, bob, booking.ID)
	assert.ErrorIs(t, err, reservation.ErrBookingNotFound)
}

func TestNotifierFailureDoesNotFailBooking(t *testing.T) {
	store := newMemStore()
	eventID := store.addEvent("Go Conference", time.Now().Add(48*time.Hour), 100)
	notifier := &recordNotifier{err: errors.New("queue down")}
	coord := newCoordinator(t, store, notifier)

	booking, err := coord.BookTickets(context.Background(), alice(), eventID, 2)
	require.NoError(t, err)
	assert.Equal(t, model.BookingStatusConfirmed, booking.Status)
	assert.Equal(t, 98, store.availableSeats(eventID))
}

func TestConcurrentSeatBooking(t *testing.T) {
	store := newMemStore()
	eventID := store.addEvent("Jazz Night", time.Now().Add(48*time.Hour), 50)
	seatID := store.addSeat(eventID, "A", "A1", 100)
	coord := newCoordinator(t, store, &recordNotifier{})

	const workers = 16
	results := make(chan error, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(userID int64) {
			defer wg.Done()
			user := model.Identity{UserID: userID, Name: "User", Email: "user@example.com"}
			_, _, err := coord.BookSeats(context.Background(), user, eventID, []int64{seatID})
			results <- err
		}(int64(i + 1))
	}
	wg.Wait()
	close(results)

	var wins, conflicts int
	for err := range results {
		switch {
		case err == nil:
			wins++
		case errors.Is(err, reservation.ErrSeatConflict):
			conflicts++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}

	assert.Equal(t, 1, wins)
	assert.Equal(t, workers-1, conflicts)
	assert.Equal(t, model.SeatStatusBooked, store.seatStatus(seatID))
	assert.Equal(t, 49, store.availableSeats(eventID))
}

func TestConcurrentLastTickets(t *testing.T) {
	store := newMemStore()
	eventID := store.addEvent("Small Venue", time.Now().Add(48*time.Hour), 3)
	coord := newCoordinator(t, store, &recordNotifier{})

	const workers = 10
	results := make(chan error, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(userID int64) {
			defer wg.Done()
			user := model.Identity{UserID: userID, Name: "User", Email: "user@example.com"}
			_, err := coord.BookTickets(context.Background(), user, eventID, 3)
			results <- err
		}(int64(i + 1))
	}
	wg.Wait()
	close(results)

	var wins, rejected int
	for err := range results {
		switch {
		case err == nil:
			wins++
		case errors.Is(err, reservation.ErrInsufficientCapacity):
			rejected++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}

	assert.Equal(t, 1, wins)
	assert.Equal(t, workers-1, rejected)
	assert.Equal(t, 0, store.availableSeats(eventID))
	assert.Equal(t, 3, store.confirmedTickets(eventID))
}
