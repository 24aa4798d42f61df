package repo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"

	"eventify/internal/model"
	"eventify/internal/reservation"
)

const bookingColumns = `id, user_id, event_id, user_name, user_email, tickets, total_amount, status, booking_date, created_at, updated_at`

func scanBooking(row interface{ Scan(...any) error }) (*model.Booking, error) {
	var b model.Booking
	err := row.Scan(
		&b.ID, &b.UserID, &b.EventID, &b.UserName, &b.UserEmail,
		&b.Tickets, &b.TotalAmount, &b.Status, &b.BookingDate,
		&b.CreatedAt, &b.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *repository) ActiveBooking(ctx context.Context, userID, eventID int64) (*model.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings
	          WHERE user_id = $1 AND event_id = $2 AND status = $3`
	b, err := scanBooking(r.db.QueryRowContext(ctx, query, userID, eventID, model.BookingStatusConfirmed))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to check active booking: %w", err)
	}
	return b, nil
}

// BookTickets commits a generic ticket booking: the capacity decrement and
// the ledger insert happen in one transaction, and the decrement is a
// conditional update that refuses to take the counter negative no matter how
// many requests race for the last tickets.
func (r *repository) BookTickets(ctx context.Context, b *model.Booking) (*model.Booking, error) {
	tx, err := r.db.Master.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to start transaction: %w", err)
	}
	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
	}()

	available, err := checkEventTx(ctx, tx, b.EventID)
	if err != nil {
		_ = tx.Rollback()
		return nil, err
	}

	var remaining int
	err = tx.QueryRowContext(ctx, `
		UPDATE events
		SET available_seats = available_seats - $2, updated_at = NOW()
		WHERE id = $1 AND available_seats >= $2
		RETURNING available_seats
	`, b.EventID, b.Tickets).Scan(&remaining)
	if err != nil {
		_ = tx.Rollback()
		if errors.Is(err, sql.ErrNoRows) {
			return nil, &reservation.CapacityError{Requested: b.Tickets, Available: available}
		}
		return nil, fmt.Errorf("failed to reserve tickets: %w", err)
	}

	booked, err := insertBookingTx(ctx, tx, b)
	if err != nil {
		_ = tx.Rollback()
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return booked, nil
}

// BookSeats commits a seat-level booking. The available->booked transition is
// a single conditional UPDATE over the whole seat set; if it touches fewer
// rows than requested some seat was taken (or unknown) and the transaction
// rolls back with the losing seats listed. Exactly one of two racing requests
// for an overlapping set can win.
func (r *repository) BookSeats(ctx context.Context, b *model.Booking, seatIDs []int64) (*model.Booking, []model.Seat, error) {
	tx, err := r.db.Master.BeginTx(ctx, nil)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to start transaction: %w", err)
	}
	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
	}()

	available, err := checkEventTx(ctx, tx, b.EventID)
	if err != nil {
		_ = tx.Rollback()
		return nil, nil, err
	}

	rows, err := tx.QueryContext(ctx, `
		UPDATE seats
		SET status = $3, updated_at = NOW()
		WHERE event_id = $1 AND id = ANY($2) AND status = $4
		RETURNING `+seatColumns,
		b.EventID, pq.Array(seatIDs), model.SeatStatusBooked, model.SeatStatusAvailable,
	)
	if err != nil {
		_ = tx.Rollback()
		return nil, nil, fmt.Errorf("failed to reserve seats: %w", err)
	}

	var seats []model.Seat
	taken := make(map[int64]struct{}, len(seatIDs))
	total := 0.0
	for rows.Next() {
		var s model.Seat
		if err := rows.Scan(
			&s.ID, &s.EventID, &s.SeatNumber, &s.Row, &s.Section,
			&s.Price, &s.SeatType, &s.Status, &s.CreatedAt, &s.UpdatedAt,
		); err != nil {
			rows.Close()
			_ = tx.Rollback()
			return nil, nil, fmt.Errorf("failed to scan reserved seat: %w", err)
		}
		taken[s.ID] = struct{}{}
		total += s.Price
		seats = append(seats, s)
	}
	if err := rows.Close(); err != nil {
		_ = tx.Rollback()
		return nil, nil, fmt.Errorf("failed to reserve seats: %w", err)
	}

	if len(seats) != len(seatIDs) {
		var conflicting []int64
		for _, id := range seatIDs {
			if _, ok := taken[id]; !ok {
				conflicting = append(conflicting, id)
			}
		}
		_ = tx.Rollback()
		return nil, nil, &reservation.SeatConflictError{SeatIDs: conflicting}
	}

	var remaining int
	err = tx.QueryRowContext(ctx, `
		UPDATE events
		SET available_seats = available_seats - $2, updated_at = NOW()
		WHERE id = $1 AND available_seats >= $2
		RETURNING available_seats
	`, b.EventID, len(seatIDs)).Scan(&remaining)
	if err != nil {
		_ = tx.Rollback()
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil, &reservation.CapacityError{Requested: len(seatIDs), Available: available}
		}
		return nil, nil, fmt.Errorf("failed to reserve capacity: %w", err)
	}

	b.TotalAmount = total
	booked, err := insertBookingTx(ctx, tx, b)
	if err != nil {
		_ = tx.Rollback()
		return nil, nil, err
	}

	if err := insertBookingSeatsTx(ctx, tx, booked.ID, seatIDs); err != nil {
		_ = tx.Rollback()
		return nil, nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	booked.SeatIDs = seatIDs
	return booked, seats, nil
}

// Cancel flips a Confirmed booking to Cancelled and restores its inventory.
// The booking row is locked for the duration so concurrent cancellations of
// the same booking serialize; the second one sees ErrAlreadyCancelled.
func (r *repository) Cancel(ctx context.Context, bookingID, userID int64) (*reservation.CancelResult, error) {
	tx, err := r.db.Master.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to start transaction: %w", err)
	}
	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
	}()

	var b model.Booking
	var e model.Event
	err = tx.QueryRowContext(ctx, `
		SELECT b.id, b.user_id, b.event_id, b.user_name, b.user_email, b.tickets,
		       b.total_amount, b.status, b.booking_date,
		       e.id, e.name, e.date, e.location, e.total_seats, e.available_seats
		FROM bookings b
		JOIN events e ON e.id = b.event_id
		WHERE b.id = $1 AND b.user_id = $2
		FOR UPDATE OF b
	`, bookingID, userID).Scan(
		&b.ID, &b.UserID, &b.EventID, &b.UserName, &b.UserEmail, &b.Tickets,
		&b.TotalAmount, &b.Status, &b.BookingDate,
		&e.ID, &e.Name, &e.Date, &e.Location, &e.TotalSeats, &e.AvailableSeats,
	)
	if err != nil {
		_ = tx.Rollback()
		if errors.Is(err, sql.ErrNoRows) {
			return nil, reservation.ErrBookingNotFound
		}
		return nil, fmt.Errorf("failed to load booking: %w", err)
	}

	if b.Status == model.BookingStatusCancelled {
		_ = tx.Rollback()
		return nil, reservation.ErrAlreadyCancelled
	}
	if e.Expired(time.Now()) {
		_ = tx.Rollback()
		return nil, reservation.ErrEventExpired
	}

	if _, err := tx.ExecContext(ctx, `
		UPDATE bookings SET status = $2, updated_at = NOW() WHERE id = $1
	`, b.ID, model.BookingStatusCancelled); err != nil {
		_ = tx.Rollback()
		return nil, fmt.Errorf("failed to cancel booking: %w", err)
	}
	b.Status = model.BookingStatusCancelled

	seats, err := releaseBookingSeatsTx(ctx, tx, b.ID)
	if err != nil {
		_ = tx.Rollback()
		return nil, err
	}

	// Restore capacity; the counter never exceeds the event total.
	err = tx.QueryRowContext(ctx, `
		UPDATE events
		SET available_seats = LEAST(total_seats, available_seats + $2), updated_at = NOW()
		WHERE id = $1
		RETURNING available_seats
	`, b.EventID, b.Tickets).Scan(&e.AvailableSeats)
	if err != nil {
		_ = tx.Rollback()
		return nil, fmt.Errorf("failed to release capacity: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return &reservation.CancelResult{Booking: &b, Event: &e, Seats: seats}, nil
}

func (r *repository) GetBookingsByUser(ctx context.Context, userID int64) ([]model.Booking, []model.Event, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT b.id, b.user_id, b.event_id, b.user_name, b.user_email, b.tickets,
		       b.total_amount, b.status, b.booking_date, b.created_at, b.updated_at,
		       e.name, e.date, e.location
		FROM bookings b
		JOIN events e ON e.id = b.event_id
		WHERE b.user_id = $1
		ORDER BY b.created_at DESC
	`, userID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get bookings: %w", err)
	}
	defer rows.Close()

	var bookings []model.Booking
	var events []model.Event
	for rows.Next() {
		var b model.Booking
		var e model.Event
		if err := rows.Scan(
			&b.ID, &b.UserID, &b.EventID, &b.UserName, &b.UserEmail, &b.Tickets,
			&b.TotalAmount, &b.Status, &b.BookingDate, &b.CreatedAt, &b.UpdatedAt,
			&e.Name, &e.Date, &e.Location,
		); err != nil {
			return nil, nil, fmt.Errorf("failed to scan booking: %w", err)
		}
		e.ID = b.EventID
		bookings = append(bookings, b)
		events = append(events, e)
	}
	return bookings, events, rows.Err()
}

func (r *repository) GetBookingSeats(ctx context.Context, bookingID, userID int64) (*model.Booking, *model.Event, []model.Seat, error) {
	var b model.Booking
	var e model.Event
	err := r.db.QueryRowContext(ctx, `
		SELECT b.id, b.user_id, b.event_id, b.user_name, b.user_email, b.tickets,
		       b.total_amount, b.status, b.booking_date,
		       e.name, e.date, e.location
		FROM bookings b
		JOIN events e ON e.id = b.event_id
		WHERE b.id = $1 AND b.user_id = $2
	`, bookingID, userID).Scan(
		&b.ID, &b.UserID, &b.EventID, &b.UserName, &b.UserEmail, &b.Tickets,
		&b.TotalAmount, &b.Status, &b.BookingDate,
		&e.Name, &e.Date, &e.Location,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil, nil, reservation.ErrBookingNotFound
		}
		return nil, nil, nil, fmt.Errorf("failed to get booking: %w", err)
	}
	e.ID = b.EventID

	rows, err := r.db.QueryContext(ctx, `
		SELECT `+prefixedSeatColumns("s")+`
		FROM seats s
		JOIN booking_seats bs ON bs.seat_id = s.id
		WHERE bs.booking_id = $1
		ORDER BY s.row_label, s.seat_number
	`, bookingID)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to get booking seats: %w", err)
	}
	defer rows.Close()

	var seats []model.Seat
	for rows.Next() {
		var s model.Seat
		if err := rows.Scan(
			&s.ID, &s.EventID, &s.SeatNumber, &s.Row, &s.Section,
			&s.Price, &s.SeatType, &s.Status, &s.CreatedAt, &s.UpdatedAt,
		); err != nil {
			return nil, nil, nil, fmt.Errorf("failed to scan seat: %w", err)
		}
		b.SeatIDs = append(b.SeatIDs, s.ID)
		seats = append(seats, s)
	}
	return &b, &e, seats, rows.Err()
}

// checkEventTx validates existence and date inside the booking transaction
// and returns the current available counter for error reporting.
func checkEventTx(ctx context.Context, tx *sql.Tx, eventID int64) (int, error) {
	var date time.Time
	var available int
	err := tx.QueryRowContext(ctx,
		`SELECT date, available_seats FROM events WHERE id = $1`, eventID,
	).Scan(&date, &available)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, reservation.ErrEventNotFound
		}
		return 0, fmt.Errorf("failed to load event: %w", err)
	}
	if date.Before(time.Now()) {
		return 0, reservation.ErrEventExpired
	}
	return available, nil
}

func insertBookingTx(ctx context.Context, tx *sql.Tx, b *model.Booking) (*model.Booking, error) {
	booked := *b
	err := tx.QueryRowContext(ctx, `
		INSERT INTO bookings (user_id, event_id, user_name, user_email, tickets, total_amount, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, booking_date, created_at, updated_at
	`, b.UserID, b.EventID, b.UserName, b.UserEmail, b.Tickets, b.TotalAmount, model.BookingStatusConfirmed,
	).Scan(&booked.ID, &booked.BookingDate, &booked.CreatedAt, &booked.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, reservation.ErrDuplicateBooking
		}
		return nil, fmt.Errorf("failed to create booking: %w", err)
	}
	booked.Status = model.BookingStatusConfirmed
	return &booked, nil
}

func insertBookingSeatsTx(ctx context.Context, tx *sql.Tx, bookingID int64, seatIDs []int64) error {
	query := `INSERT INTO booking_seats (booking_id, seat_id) VALUES `
	args := make([]any, 0, len(seatIDs)*2)
	for i, id := range seatIDs {
		if i > 0 {
			query += ","
		}
		query += fmt.Sprintf("($%d, $%d)", i*2+1, i*2+2)
		args = append(args, bookingID, id)
	}
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to link booking seats: %w", err)
	}
	return nil
}

// releaseBookingSeatsTx returns a booking's seats to available. The status
// filter makes the release idempotent: seats already available (or held as
// reserved by an admin) are left untouched.
func releaseBookingSeatsTx(ctx context.Context, tx *sql.Tx, bookingID int64) ([]model.Seat, error) {
	rows, err := tx.QueryContext(ctx, `
		UPDATE seats
		SET status = $2, updated_at = NOW()
		WHERE id IN (SELECT seat_id FROM booking_seats WHERE booking_id = $1)
		  AND status = $3
		RETURNING `+seatColumns,
		bookingID, model.SeatStatusAvailable, model.SeatStatusBooked,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to release seats: %w", err)
	}
	defer rows.Close()

	var seats []model.Seat
	for rows.Next() {
		var s model.Seat
		if err := rows.Scan(
			&s.ID, &s.EventID, &s.SeatNumber, &s.Row, &s.Section,
			&s.Price, &s.SeatType, &s.Status, &s.CreatedAt, &s.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan released seat: %w", err)
		}
		seats = append(seats, s)
	}
	return seats, rows.Err()
}

func prefixedSeatColumns(alias string) string {
	return alias + `.id, ` + alias + `.event_id, ` + alias + `.seat_number, ` + alias + `.row_label, ` +
		alias + `.section, ` + alias + `.price, ` + alias + `.seat_type, ` + alias + `.status, ` +
		alias + `.created_at, ` + alias + `.updated_at`
}
