package validator

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type bookingPayload struct {
	Name    string `validate:"required,min=2,max=255"`
	Email   string `validate:"required,email"`
	Tickets int    `validate:"required,gte=1,lte=10"`
}

type eventPayload struct {
	Name string    `validate:"required,max=100"`
	Date time.Time `validate:"required,future"`
	Type string    `validate:"omitempty,oneof=regular vip premium"`
}

func TestValidateBookingPayload(t *testing.T) {
	ctx := context.Background()

	valid := bookingPayload{Name: "Alice Smith", Email: "alice@example.com", Tickets: 3}
	assert.NoError(t, Validate(ctx, valid))

	missing := bookingPayload{Email: "alice@example.com", Tickets: 3}
	err := Validate(ctx, missing)
	assert.ErrorContains(t, err, ErrFieldRequired)

	badEmail := bookingPayload{Name: "Alice Smith", Email: "not-an-email", Tickets: 3}
	err = Validate(ctx, badEmail)
	assert.ErrorContains(t, err, ErrInvalidFormat)

	tooMany := bookingPayload{Name: "Alice Smith", Email: "alice@example.com", Tickets: 11}
	err = Validate(ctx, tooMany)
	assert.ErrorContains(t, err, ErrFieldExceedsMaxVal)
}

func TestValidateEventPayload(t *testing.T) {
	ctx := context.Background()

	valid := eventPayload{Name: "Jazz Night", Date: time.Now().Add(time.Hour), Type: "vip"}
	assert.NoError(t, Validate(ctx, valid))

	past := eventPayload{Name: "Jazz Night", Date: time.Now().Add(-time.Hour)}
	err := Validate(ctx, past)
	assert.ErrorContains(t, err, "Date must be in the future")

	badType := eventPayload{Name: "Jazz Night", Date: time.Now().Add(time.Hour), Type: "balcony"}
	err = Validate(ctx, badType)
	assert.ErrorContains(t, err, "not one of the allowed options")
}
