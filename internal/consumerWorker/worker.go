package consumerWorker

import (
	"context"
	"encoding/json"

	"github.com/wb-go/wbf/zlog"

	"eventify/internal/dto"
	"eventify/internal/mailer"
	"eventify/internal/rabbit"
)

type Reader struct {
	RMQ     *rabbit.Client
	mailCfg mailer.Config
	done    chan struct{}
	cancel  context.CancelFunc
}

func NewReader(rmq *rabbit.Client, mailCfg mailer.Config) *Reader {
	return &Reader{
		RMQ:     rmq,
		mailCfg: mailCfg,
		done:    make(chan struct{}),
	}
}

func (r *Reader) Start(ctx context.Context) {
	cctx, cancel := context.WithCancel(ctx)
	r.cancel = cancel

	zlog.Logger.Info().Msg("notification worker started")

	go func() {
		defer close(r.done)

		handler := func(body []byte) error {
			var msg dto.BookingNotification
			if err := json.Unmarshal(body, &msg); err != nil {
				zlog.Logger.Error().
					Err(err).
					Msgf("Failed to unmarshal message: %s", string(body))
				return err
			}

			zlog.Logger.Info().
				Int64("booking_id", msg.BookingID).
				Str("kind", msg.Kind).
				Msg("Received message from RabbitMQ")

			if err := mailer.SendBookingEmail(&zlog.Logger, r.mailCfg, msg); err != nil {
				zlog.Logger.Warn().
					Err(err).
					Int64("booking_id", msg.BookingID).
					Msg("Failed to send notification e-mail")
			}

			return nil
		}

		if err := r.RMQ.Consume(handler); err != nil {
			zlog.Logger.Error().Err(err).Msg("Failed to start consuming")
			return
		}

		<-cctx.Done()
		zlog.Logger.Info().Msg("notification worker stopped by context")
	}()
}

func (r *Reader) Stop() {
	if r.cancel != nil {
		r.cancel()
		<-r.done
	}
}
