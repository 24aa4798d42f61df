package mailer

import (
	"fmt"
	"net/smtp"
	"strings"

	"github.com/rs/zerolog"

	"eventify/internal/dto"
	"eventify/internal/reservation"
)

type Config struct {
	Enabled  bool
	Host     string
	Port     int
	From     string
	Password string
}

// BuildBookingEmail renders the subject and body for a booking notification.
func BuildBookingEmail(n dto.BookingNotification) (string, string) {
	var subject string
	var b strings.Builder

	switch n.Kind {
	case reservation.NotifyBookingCancelled:
		subject = fmt.Sprintf("Your booking for %s has been cancelled", n.EventName)
		fmt.Fprintf(&b, "Hello %s!\n\n", n.UserName)
		fmt.Fprintf(&b, "Your booking #%d for %s has been cancelled.\n", n.BookingID, n.EventName)
	default:
		subject = fmt.Sprintf("Your booking for %s is confirmed", n.EventName)
		fmt.Fprintf(&b, "Hello %s!\n\n", n.UserName)
		fmt.Fprintf(&b, "Your booking #%d for %s is confirmed.\n", n.BookingID, n.EventName)
	}

	fmt.Fprintf(&b, "\nWhen: %s\n", n.EventDate.Format("Mon, 02 Jan 2006 15:04"))
	if n.EventLocation != "" {
		fmt.Fprintf(&b, "Where: %s\n", n.EventLocation)
	}

	if len(n.Seats) > 0 {
		b.WriteString("\nSeats:\n")
		for _, s := range n.Seats {
			fmt.Fprintf(&b, "  %s %s (%.2f)\n", s.Section, s.SeatNumber, s.Price)
		}
	} else if n.Tickets > 0 {
		fmt.Fprintf(&b, "Tickets: %d\n", n.Tickets)
	}

	if n.TotalAmount > 0 {
		fmt.Fprintf(&b, "\nTotal: %.2f\n", n.TotalAmount)
	}

	b.WriteString("\nSee you there!\n")
	return subject, b.String()
}

func SendBookingEmail(log *zerolog.Logger, cfg Config, n dto.BookingNotification) error {
	subject, body := BuildBookingEmail(n)

	if !cfg.Enabled {
		log.Info().
			Str("email", n.UserEmail).
			Str("subject", subject).
			Msg("mail disabled, skipping send")
		return nil
	}

	msg := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\n\r\n%s",
		cfg.From, n.UserEmail, subject, body,
	)

	addr := fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)
	auth := smtp.PlainAuth("", cfg.From, cfg.Password, cfg.Host)

	if err := smtp.SendMail(addr, auth, cfg.From, []string{n.UserEmail}, []byte(msg)); err != nil {
		log.Warn().Msgf("failed to send email to %s: %v", n.UserEmail, err)
		return fmt.Errorf("send email: %w", err)
	}

	log.Info().Msgf("email sent to %s (kind: %s)", n.UserEmail, n.Kind)
	return nil
}
