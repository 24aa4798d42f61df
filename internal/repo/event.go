package repo

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"eventify/internal/model"
	"eventify/internal/reservation"
)

const eventColumns = `id, name, date, location, description, total_seats, available_seats,
       has_seat_selection, seat_layout, created_at, updated_at`

func scanEvent(row interface{ Scan(...any) error }) (*model.Event, error) {
	var e model.Event
	var layout []byte
	err := row.Scan(
		&e.ID, &e.Name, &e.Date, &e.Location, &e.Description,
		&e.TotalSeats, &e.AvailableSeats, &e.HasSeatSelection, &layout,
		&e.CreatedAt, &e.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if len(layout) > 0 {
		var l model.SeatLayout
		if err := json.Unmarshal(layout, &l); err != nil {
			return nil, fmt.Errorf("failed to decode seat layout: %w", err)
		}
		e.SeatLayout = &l
	}
	return &e, nil
}

func (r *repository) CreateEvent(ctx context.Context, e *model.Event) (int64, error) {
	layout, err := marshalLayout(e.SeatLayout)
	if err != nil {
		return 0, err
	}

	// A new event starts with its full capacity available.
	query := `
		INSERT INTO events (name, date, location, description, total_seats, available_seats, has_seat_selection, seat_layout)
		VALUES ($1, $2, $3, $4, $5, $5, $6, $7)
		RETURNING id
	`
	var id int64
	err = r.db.QueryRowContext(ctx, query,
		e.Name, e.Date, e.Location, e.Description, e.TotalSeats, e.HasSeatSelection, layout,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("failed to insert event: %w", err)
	}
	return id, nil
}

func (r *repository) GetEvent(ctx context.Context, id int64) (*model.Event, error) {
	query := `SELECT ` + eventColumns + ` FROM events WHERE id = $1`
	e, err := scanEvent(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, reservation.ErrEventNotFound
		}
		return nil, err
	}
	return e, nil
}

func (r *repository) GetAllEvents(ctx context.Context) ([]model.Event, error) {
	query := `SELECT ` + eventColumns + ` FROM events ORDER BY date ASC`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to get events: %w", err)
	}
	defer rows.Close()

	var events []model.Event
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan event: %w", err)
		}
		events = append(events, *e)
	}
	return events, rows.Err()
}

// UpdateEvent changes the descriptive fields only. Capacity counters are
// owned by the booking commits and never written here.
func (r *repository) UpdateEvent(ctx context.Context, e *model.Event) error {
	query := `
		UPDATE events
		SET name = $2, date = $3, location = $4, description = $5, updated_at = NOW()
		WHERE id = $1
	`
	res, err := r.db.ExecContext(ctx, query, e.ID, e.Name, e.Date, e.Location, e.Description)
	if err != nil {
		return fmt.Errorf("failed to update event: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return reservation.ErrEventNotFound
	}
	return nil
}

func (r *repository) DeleteEvent(ctx context.Context, id int64) error {
	// Seats and bookings go with the event via ON DELETE CASCADE.
	res, err := r.db.ExecContext(ctx, `DELETE FROM events WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete event: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return reservation.ErrEventNotFound
	}
	return nil
}

func marshalLayout(l *model.SeatLayout) ([]byte, error) {
	if l == nil {
		return nil, nil
	}
	b, err := json.Marshal(l)
	if err != nil {
		return nil, fmt.Errorf("failed to encode seat layout: %w", err)
	}
	return b, nil
}
