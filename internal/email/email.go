package email

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/Domenick1991/skybooker/internal/kafka"
)

type Message struct {
	To      string
	Subject string
	Body    string
}

// Sender delivers booking notifications. Delivery is a structured log line.
type Sender struct {
	log *zap.Logger
}

func NewSender(log *zap.Logger) *Sender {
	return &Sender{log: log}
}

func (s *Sender) Send(ctx context.Context, event kafka.BookingEvent) error {
	if event.Email == "" {
		s.log.Warn("booking event without recipient", zap.String("booking_id", event.BookingID), zap.String("type", event.Type))
		return nil
	}
	msg := Compose(event)
	s.log.Info("send email",
		zap.String("to", msg.To),
		zap.String("subject", msg.Subject),
		zap.String("booking_id", event.BookingID),
		zap.String("type", event.Type))
	return nil
}

func Compose(event kafka.BookingEvent) Message {
	var subject, body string
	switch event.Type {
	case kafka.EventBookingCreated:
		subject = fmt.Sprintf("Booking %s confirmed", event.ConfirmationCode)
		body = fmt.Sprintf("Your booking %s is confirmed. Total %s %s. Complete payment before %s.",
			event.BookingID, event.TotalPrice, event.Currency, event.ExpiresAt.Format("02 Jan 2006 15:04 MST"))
	case kafka.EventPaymentConfirmed:
		subject = fmt.Sprintf("Payment received for %s", event.ConfirmationCode)
		body = fmt.Sprintf("We received %s %s for booking %s.", event.TotalPrice, event.Currency, event.BookingID)
	case kafka.EventBookingCancelled:
		subject = fmt.Sprintf("Booking %s cancelled", event.ConfirmationCode)
		body = fmt.Sprintf("Booking %s has been cancelled.", event.BookingID)
	case kafka.EventBookingExpired:
		subject = fmt.Sprintf("Booking %s expired", event.ConfirmationCode)
		body = fmt.Sprintf("Booking %s was released because payment was not received by %s.",
			event.BookingID, event.ExpiresAt.Format("02 Jan 2006 15:04 MST"))
	default:
		subject = fmt.Sprintf("Booking %s update", event.ConfirmationCode)
		body = fmt.Sprintf("Booking %s is now %s.", event.BookingID, event.Status)
	}
	return Message{To: event.Email, Subject: subject, Body: body}
}
