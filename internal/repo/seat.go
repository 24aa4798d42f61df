package repo

import (
	"context"
	"fmt"

	"eventify/internal/model"
	"eventify/internal/reservation"
)

const seatColumns = `id, event_id, seat_number, row_label, section, price, seat_type, status, created_at, updated_at`

// CreateSeats bulk-inserts seats for an event in a single statement and
// marks the event as seat-selectable. Duplicate (row, number) pairs within
// the event are reported as a seat conflict.
func (r *repository) CreateSeats(ctx context.Context, eventID int64, seats []model.Seat) (int, error) {
	if len(seats) == 0 {
		return 0, nil
	}

	tx, err := r.db.Master.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to start transaction: %w", err)
	}
	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
	}()

	query := `INSERT INTO seats (event_id, seat_number, row_label, section, price, seat_type, status) VALUES `
	args := make([]any, 0, len(seats)*7)
	for i, s := range seats {
		if i > 0 {
			query += ","
		}
		base := i * 7
		query += fmt.Sprintf("($%d, $%d, $%d, $%d, $%d, $%d, $%d)",
			base+1, base+2, base+3, base+4, base+5, base+6, base+7)
		seatType := s.SeatType
		if seatType == "" {
			seatType = model.SeatTypeRegular
		}
		section := s.Section
		if section == "" {
			section = "General"
		}
		args = append(args, eventID, s.SeatNumber, s.Row, section, s.Price, seatType, model.SeatStatusAvailable)
	}
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		_ = tx.Rollback()
		if isUniqueViolation(err) {
			return 0, fmt.Errorf("duplicate seat numbers for event %d: %w", eventID, reservation.ErrSeatConflict)
		}
		return 0, fmt.Errorf("failed to insert seats: %w", err)
	}

	res, err := tx.ExecContext(ctx,
		`UPDATE events SET has_seat_selection = TRUE, updated_at = NOW() WHERE id = $1`, eventID)
	if err != nil {
		_ = tx.Rollback()
		return 0, fmt.Errorf("failed to enable seat selection: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		_ = tx.Rollback()
		return 0, reservation.ErrEventNotFound
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return len(seats), nil
}

// GetSeatsByEvent lists an event's seats ordered by row then number,
// optionally filtered by section and/or row.
func (r *repository) GetSeatsByEvent(ctx context.Context, eventID int64, section, row string) ([]model.Seat, error) {
	query := `SELECT ` + seatColumns + ` FROM seats WHERE event_id = $1`
	args := []any{eventID}
	if section != "" {
		args = append(args, section)
		query += fmt.Sprintf(" AND section = $%d", len(args))
	}
	if row != "" {
		args = append(args, row)
		query += fmt.Sprintf(" AND row_label = $%d", len(args))
	}
	query += ` ORDER BY row_label, seat_number`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to get seats: %w", err)
	}
	defer rows.Close()

	var seats []model.Seat
	for rows.Next() {
		var s model.Seat
		if err := rows.Scan(
			&s.ID, &s.EventID, &s.SeatNumber, &s.Row, &s.Section,
			&s.Price, &s.SeatType, &s.Status, &s.CreatedAt, &s.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan seat: %w", err)
		}
		seats = append(seats, s)
	}
	return seats, rows.Err()
}
