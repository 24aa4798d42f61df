package repo

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/lib/pq"
	"github.com/rs/zerolog"
	"github.com/wb-go/wbf/dbpg"

	"eventify/internal/model"
	"eventify/internal/reservation"
)

// Repository is the full persistence surface: the atomic booking commits
// consumed by the reservation coordinator plus the CRUD the HTTP layer needs.
type Repository interface {
	reservation.Store

	CreateEvent(ctx context.Context, e *model.Event) (int64, error)
	UpdateEvent(ctx context.Context, e *model.Event) error
	DeleteEvent(ctx context.Context, id int64) error
	GetAllEvents(ctx context.Context) ([]model.Event, error)

	CreateSeats(ctx context.Context, eventID int64, seats []model.Seat) (int, error)
	GetSeatsByEvent(ctx context.Context, eventID int64, section, row string) ([]model.Seat, error)

	GetBookingsByUser(ctx context.Context, userID int64) ([]model.Booking, []model.Event, error)
	GetBookingSeats(ctx context.Context, bookingID, userID int64) (*model.Booking, *model.Event, []model.Seat, error)

	MigrateUp(migrationsDir string) error
	MigrateDown(migrationsDir string) error
}

type repository struct {
	db  *dbpg.DB
	log *zerolog.Logger
}

func NewRepository(db *dbpg.DB, log *zerolog.Logger) (Repository, error) {
	if db == nil {
		return nil, fmt.Errorf("db cannot be nil")
	}
	if err := db.Master.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping DB: %w", err)
	}
	return &repository{db: db, log: log}, nil
}

func (r *repository) MigrateUp(migrationsDir string) error {
	return r.applyMigrations(migrationsDir, "*.up.sql")
}

func (r *repository) MigrateDown(migrationsDir string) error {
	return r.applyMigrations(migrationsDir, "*.down.sql")
}

func (r *repository) applyMigrations(migrationsDir, pattern string) error {
	files, err := filepath.Glob(filepath.Join(migrationsDir, pattern))
	if err != nil {
		return fmt.Errorf("failed to read migration files: %w", err)
	}

	for _, file := range files {
		sqlBytes, err := os.ReadFile(file)
		if err != nil {
			return fmt.Errorf("failed to read migration file %s: %w", file, err)
		}

		if _, err := r.db.ExecContext(context.Background(), string(sqlBytes)); err != nil {
			return fmt.Errorf("failed to apply migration %s: %w", file, err)
		}
	}

	r.log.Info().Msgf("Migrations applied from %s (%s)", migrationsDir, pattern)
	return nil
}

// isUniqueViolation reports whether err is the Postgres unique-constraint
// error (23505). The partial unique index on (user_id, event_id) for
// Confirmed bookings surfaces duplicate bookings through it.
func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}
