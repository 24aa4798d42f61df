package reservation

import (
	"errors"
	"fmt"
)

// Every failure the booking core can report maps to one of these sentinels
// so callers can render a distinct condition. Storage failures outside this
// set are returned opaque and must never leave partial state behind.
var (
	ErrEventNotFound        = errors.New("event not found")
	ErrEventExpired         = errors.New("event date has passed")
	ErrInsufficientCapacity = errors.New("not enough seats available")
	ErrSeatConflict         = errors.New("seat is not available")
	ErrDuplicateBooking     = errors.New("active booking already exists for this event")
	ErrBookingNotFound      = errors.New("booking not found")
	ErrAlreadyCancelled     = errors.New("booking is already cancelled")
	ErrValidation           = errors.New("validation failed")
)

// CapacityError carries the remaining capacity so the caller can tell the
// user how many tickets are still available.
type CapacityError struct {
	Requested int
	Available int
}

func (e *CapacityError) Error() string {
	return fmt.Sprintf("not enough seats available: requested %d, available %d", e.Requested, e.Available)
}

func (e *CapacityError) Unwrap() error { return ErrInsufficientCapacity }

// SeatConflictError lists the seats that could not be booked: missing,
// belonging to another event, or not currently available.
type SeatConflictError struct {
	SeatIDs []int64
}

func (e *SeatConflictError) Error() string {
	return fmt.Sprintf("seats unavailable or unknown: %v", e.SeatIDs)
}

func (e *SeatConflictError) Unwrap() error { return ErrSeatConflict }

type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string { return "validation failed: " + e.Reason }

func (e *ValidationError) Unwrap() error { return ErrValidation }
