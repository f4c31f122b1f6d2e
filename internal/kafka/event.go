package kafka

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/Domenick1991/skybooker/internal/domain"
)

const (
	EventBookingCreated   = "booking_created"
	EventBookingCancelled = "booking_cancelled"
	EventPaymentConfirmed = "payment_confirmed"
	EventBookingExpired   = "booking_expired"
)

type BookingEvent struct {
	Type             string       `json:"type"`
	BookingID        string       `json:"bookingId"`
	ConfirmationCode string       `json:"confirmationCode"`
	UserID           string       `json:"userId"`
	Email            string       `json:"email"`
	Status           string       `json:"status"`
	TotalPrice       domain.Money `json:"totalPrice"`
	Currency         string       `json:"currency"`
	ExpiresAt        time.Time    `json:"expiresAt"`
	OccurredAt       time.Time    `json:"occurredAt"`
}

func NewBookingEvent(eventType string, b *domain.Booking, at time.Time) BookingEvent {
	return BookingEvent{
		Type:             eventType,
		BookingID:        b.BookingID,
		ConfirmationCode: b.ConfirmationCode,
		UserID:           b.UserID,
		Email:            b.ContactInfo.Email,
		Status:           string(b.Status),
		TotalPrice:       b.Pricing.TotalPrice,
		Currency:         b.Pricing.Currency,
		ExpiresAt:        b.ExpiresAt,
		OccurredAt:       at,
	}
}

func DecodeBookingEvent(data []byte) (BookingEvent, error) {
	var event BookingEvent
	if err := json.Unmarshal(data, &event); err != nil {
		return BookingEvent{}, fmt.Errorf("decode booking event: %w", err)
	}
	if event.BookingID == "" {
		return BookingEvent{}, fmt.Errorf("decode booking event: missing bookingId")
	}
	return event, nil
}
