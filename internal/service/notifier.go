package service

import (
	"context"
	"encoding/json"

	"github.com/rs/zerolog"

	"eventify/internal/dto"
	"eventify/internal/rabbit"
	"eventify/internal/reservation"
)

// queueNotifier publishes booking notifications to RabbitMQ for the
// mail worker to pick up.
type queueNotifier struct {
	rbt rabbit.Rabbiter
	log *zerolog.Logger
}

func NewQueueNotifier(rbt rabbit.Rabbiter, log *zerolog.Logger) reservation.Notifier {
	return &queueNotifier{rbt: rbt, log: log}
}

func (q *queueNotifier) Notify(_ context.Context, n reservation.Notification) error {
	payload, err := json.Marshal(dto.NewBookingNotification(n))
	if err != nil {
		q.log.Error().Err(err).Msg("failed to marshal booking notification")
		return err
	}
	return q.rbt.Publish(payload)
}
