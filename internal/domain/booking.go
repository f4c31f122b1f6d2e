package domain

import (
	"fmt"
	"time"
)

type BookingStatus string

const (
	BookingStatusDraft     BookingStatus = "DRAFT"
	BookingStatusConfirmed BookingStatus = "CONFIRMED"
	BookingStatusCancelled BookingStatus = "CANCELLED"
	BookingStatusCompleted BookingStatus = "COMPLETED"
)

var bookingTransitions = map[BookingStatus][]BookingStatus{
	BookingStatusDraft:     {BookingStatusConfirmed, BookingStatusCancelled},
	BookingStatusConfirmed: {BookingStatusCancelled, BookingStatusCompleted},
}

// CanTransition reports whether a booking may move from one status to another.
func CanTransition(from, to BookingStatus) bool {
	for _, next := range bookingTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "PENDING"
	PaymentStatusPaid      PaymentStatus = "PAID"
	PaymentStatusFailed    PaymentStatus = "FAILED"
	PaymentStatusCancelled PaymentStatus = "CANCELLED"
)

type PaymentMethod string

const (
	PaymentMethodWallet     PaymentMethod = "WALLET"
	PaymentMethodCreditCard PaymentMethod = "CREDIT_CARD"
)

func (m PaymentMethod) Valid() bool {
	return m == PaymentMethodWallet || m == PaymentMethodCreditCard
}

type Payment struct {
	Method        PaymentMethod `json:"method"`
	Status        PaymentStatus `json:"status"`
	TransactionID string        `json:"transactionId,omitempty"`
	PaidAt        *time.Time    `json:"paidAt,omitempty"`
}

// PriceQuote is a fully aggregated trip price. Build it with NewPriceQuote.
type PriceQuote struct {
	BasePrice  Money  `json:"basePrice"`
	Taxes      Money  `json:"taxes"`
	Fees       Money  `json:"fees"`
	Markup     Money  `json:"markup"`
	TotalPrice Money  `json:"totalPrice"`
	Currency   string `json:"currency"`
}

func NewPriceQuote(base, taxes, fees, markup Money, currency string) (PriceQuote, error) {
	q := PriceQuote{
		BasePrice: base,
		Taxes:     taxes,
		Fees:      fees,
		Markup:    markup,
		Currency:  currency,
	}
	total := base
	for _, part := range []Money{taxes, fees, markup} {
		var err error
		if total, err = total.Add(part); err != nil {
			return PriceQuote{}, err
		}
	}
	q.TotalPrice = total
	return q, q.Validate()
}

// Validate checks the quote invariants: no negative component and total equal to the parts.
func (q PriceQuote) Validate() error {
	for name, v := range map[string]Money{
		"basePrice": q.BasePrice, "taxes": q.Taxes, "fees": q.Fees, "markup": q.Markup, "totalPrice": q.TotalPrice,
	} {
		if v < 0 {
			return fmt.Errorf("quote %s is negative: %s", name, v)
		}
	}
	if q.BasePrice+q.Taxes+q.Fees+q.Markup != q.TotalPrice {
		return fmt.Errorf("quote total %s does not match components", q.TotalPrice)
	}
	if q.Currency == "" {
		return fmt.Errorf("quote currency is empty")
	}
	return nil
}

type BookingMetadata struct {
	BookedBy   string `json:"bookedBy,omitempty"`
	ApprovedBy string `json:"approvedBy,omitempty"`
	Reason     string `json:"reason,omitempty"`
	CostCenter string `json:"costCenter,omitempty"`
}

// Booking is the aggregate root. Passengers and pricing are owned by value.
type Booking struct {
	BookingID          string            `json:"bookingId"`
	UserID             string            `json:"userId"`
	CompanyID          string            `json:"companyId"`
	FlightDetails      FlightDetails     `json:"flightDetails"`
	Passengers         []PassengerDetail `json:"passengers"`
	ContactInfo        ContactInfo       `json:"contactInfo"`
	Pricing            PriceQuote        `json:"pricing"`
	Payment            Payment           `json:"payment"`
	Status             BookingStatus     `json:"status"`
	ConfirmationCode   string            `json:"confirmationCode"`
	ExternalBookingRef string            `json:"externalBookingRef,omitempty"`
	Provider           Provider          `json:"provider,omitempty"`
	Metadata           BookingMetadata   `json:"metadata"`
	ExpiresAt          time.Time         `json:"expiresAt"`
	CreatedAt          time.Time         `json:"createdAt"`
	UpdatedAt          time.Time         `json:"updatedAt"`
}
