package reservation

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"eventify/internal/model"
)

// Ticket count limits per booking, matching the public API contract.
const (
	MinTickets = 1
	MaxTickets = 10
)

// Store is the persistence collaborator of the coordinator. The three Book*/
// Cancel methods are atomic commits: ledger write and inventory mutation
// succeed or fail as one unit, and the conditional transitions they perform
// (decrement only while the counter stays non-negative, book only seats that
// are still available, one Confirmed booking per user and event) are enforced
// at the storage layer, not by the caller.
type Store interface {
	GetEvent(ctx context.Context, eventID int64) (*model.Event, error)

	// ActiveBooking returns the caller's Confirmed booking for the event,
	// or nil when there is none. Used as an early duplicate check only;
	// BookTickets/BookSeats re-enforce uniqueness at commit time.
	ActiveBooking(ctx context.Context, userID, eventID int64) (*model.Booking, error)

	// BookTickets decrements the event's available counter by b.Tickets and
	// inserts the booking. Fails with ErrEventNotFound, ErrEventExpired,
	// CapacityError or ErrDuplicateBooking.
	BookTickets(ctx context.Context, b *model.Booking) (*model.Booking, error)

	// BookSeats transitions exactly the requested seats available -> booked,
	// decrements the counter by len(seatIDs) and inserts the booking with
	// the summed seat prices. Fails with ErrEventNotFound, ErrEventExpired,
	// SeatConflictError or ErrDuplicateBooking.
	BookSeats(ctx context.Context, b *model.Booking, seatIDs []int64) (*model.Booking, []model.Seat, error)

	// Cancel flips the booking to Cancelled, releases its seats back to
	// available (idempotently) and restores the counter, clamped to the
	// event total. Fails with ErrBookingNotFound, ErrAlreadyCancelled or
	// ErrEventExpired.
	Cancel(ctx context.Context, bookingID, userID int64) (*CancelResult, error)
}

// CancelResult returns everything released by a cancellation so the caller
// can notify without re-reading.
type CancelResult struct {
	Booking *model.Booking
	Event   *model.Event
	Seats   []model.Seat
}

const (
	NotifyBookingConfirmed = "booking_confirmed"
	NotifyBookingCancelled = "booking_cancelled"
)

// Notification is emitted after a successful commit. Delivery is
// best-effort: a failing sink is logged and never rolls back the booking.
type Notification struct {
	Kind          string
	BookingID     int64
	UserName      string
	UserEmail     string
	EventName     string
	EventDate     time.Time
	EventLocation string
	Tickets       int
	Seats         []model.Seat
	TotalAmount   float64
}

// Notifier is the single-operation delivery capability injected into the
// coordinator. Production wires a queue publisher; LogNotifier is the sink
// used when no delivery channel is configured.
type Notifier interface {
	Notify(ctx context.Context, n Notification) error
}

type LogNotifier struct {
	Log *zerolog.Logger
}

func (l *LogNotifier) Notify(_ context.Context, n Notification) error {
	l.Log.Info().
		Str("kind", n.Kind).
		Int64("booking_id", n.BookingID).
		Str("email", n.UserEmail).
		Str("event", n.EventName).
		Msg("booking notification (log sink)")
	return nil
}

// Coordinator orchestrates a booking or cancellation attempt. All checks run
// before any inventory mutation; the mutation itself is delegated to a single
// atomic Store commit, so a failed attempt leaves zero side effects.
type Coordinator struct {
	store    Store
	notifier Notifier
	log      *zerolog.Logger
	now      func() time.Time
}

func NewCoordinator(store Store, notifier Notifier, log *zerolog.Logger) *Coordinator {
	if notifier == nil {
		notifier = &LogNotifier{Log: log}
	}
	return &Coordinator{
		store:    store,
		notifier: notifier,
		log:      log,
		now:      time.Now,
	}
}

// BookTickets reserves a generic ticket count against the event capacity.
func (c *Coordinator) BookTickets(ctx context.Context, user model.Identity, eventID int64, tickets int) (*model.Booking, error) {
	if tickets < MinTickets || tickets > MaxTickets {
		return nil, &ValidationError{Reason: "tickets must be between 1 and 10"}
	}

	event, err := c.checkEvent(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if event.AvailableSeats < tickets {
		return nil, &CapacityError{Requested: tickets, Available: event.AvailableSeats}
	}
	if err := c.checkDuplicate(ctx, user.UserID, eventID); err != nil {
		return nil, err
	}

	booking, err := c.store.BookTickets(ctx, &model.Booking{
		UserID:    user.UserID,
		EventID:   eventID,
		UserName:  user.Name,
		UserEmail: user.Email,
		Tickets:   tickets,
		Status:    model.BookingStatusConfirmed,
	})
	if err != nil {
		return nil, err
	}

	c.notify(ctx, Notification{
		Kind:          NotifyBookingConfirmed,
		BookingID:     booking.ID,
		UserName:      booking.UserName,
		UserEmail:     booking.UserEmail,
		EventName:     event.Name,
		EventDate:     event.Date,
		EventLocation: event.Location,
		Tickets:       booking.Tickets,
		TotalAmount:   booking.TotalAmount,
	})
	return booking, nil
}

// BookSeats reserves the given specific seats. Duplicate seat IDs in the
// request are collapsed before reservation.
func (c *Coordinator) BookSeats(ctx context.Context, user model.Identity, eventID int64, seatIDs []int64) (*model.Booking, []model.Seat, error) {
	unique := dedupe(seatIDs)
	if len(unique) == 0 {
		return nil, nil, &ValidationError{Reason: "at least one seat must be selected"}
	}
	if len(unique) > MaxTickets {
		return nil, nil, &ValidationError{Reason: "cannot book more than 10 seats at once"}
	}

	event, err := c.checkEvent(ctx, eventID)
	if err != nil {
		return nil, nil, err
	}
	if err := c.checkDuplicate(ctx, user.UserID, eventID); err != nil {
		return nil, nil, err
	}

	booking, seats, err := c.store.BookSeats(ctx, &model.Booking{
		UserID:    user.UserID,
		EventID:   eventID,
		UserName:  user.Name,
		UserEmail: user.Email,
		Tickets:   len(unique),
		Status:    model.BookingStatusConfirmed,
	}, unique)
	if err != nil {
		return nil, nil, err
	}

	c.notify(ctx, Notification{
		Kind:          NotifyBookingConfirmed,
		BookingID:     booking.ID,
		UserName:      booking.UserName,
		UserEmail:     booking.UserEmail,
		EventName:     event.Name,
		EventDate:     event.Date,
		EventLocation: event.Location,
		Tickets:       booking.Tickets,
		Seats:         seats,
		TotalAmount:   booking.TotalAmount,
	})
	return booking, seats, nil
}

// Cancel flips the caller's booking to Cancelled and restores whatever
// inventory it held. Cancelling after the event date is refused.
func (c *Coordinator) Cancel(ctx context.Context, user model.Identity, bookingID int64) (*model.Booking, error) {
	res, err := c.store.Cancel(ctx, bookingID, user.UserID)
	if err != nil {
		return nil, err
	}

	c.notify(ctx, Notification{
		Kind:          NotifyBookingCancelled,
		BookingID:     res.Booking.ID,
		UserName:      res.Booking.UserName,
		UserEmail:     res.Booking.UserEmail,
		EventName:     res.Event.Name,
		EventDate:     res.Event.Date,
		EventLocation: res.Event.Location,
		Tickets:       res.Booking.Tickets,
		Seats:         res.Seats,
		TotalAmount:   res.Booking.TotalAmount,
	})
	return res.Booking, nil
}

func (c *Coordinator) checkEvent(ctx context.Context, eventID int64) (*model.Event, error) {
	event, err := c.store.GetEvent(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if event.Expired(c.now()) {
		return nil, ErrEventExpired
	}
	return event, nil
}

func (c *Coordinator) checkDuplicate(ctx context.Context, userID, eventID int64) error {
	existing, err := c.store.ActiveBooking(ctx, userID, eventID)
	if err != nil {
		return err
	}
	if existing != nil {
		return ErrDuplicateBooking
	}
	return nil
}

func (c *Coordinator) notify(ctx context.Context, n Notification) {
	if err := c.notifier.Notify(ctx, n); err != nil {
		c.log.Warn().
			Err(err).
			Int64("booking_id", n.BookingID).
			Str("kind", n.Kind).
			Msg("failed to deliver booking notification")
	}
}

func dedupe(ids []int64) []int64 {
	seen := make(map[int64]struct{}, len(ids))
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if id == 0 {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
