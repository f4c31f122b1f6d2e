package booking

import (
	"context"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/Domenick1991/skybooker/internal/apperror"
	"github.com/Domenick1991/skybooker/internal/domain"
)

type FlightResolver interface {
	Flight(ctx context.Context, flightID string) (*domain.Flight, error)
}

type AssembleInput struct {
	UserID                string
	CompanyID             string
	Selection             domain.FlightSelection
	Passengers            []domain.PassengerDetail
	ContactInfo           domain.ContactInfo
	PaymentMethod         domain.PaymentMethod
	Quote                 domain.PriceQuote
	BusinessJustification string

	// OutboundFlight and ReturnFlight skip the catalog lookup when already resolved.
	OutboundFlight     *domain.Flight
	ReturnFlight       *domain.Flight
	Provider           domain.Provider
	ExternalBookingRef string
}

// Assembler turns a priced, validated request into a CONFIRMED booking with fresh identifiers.
type Assembler struct {
	flights  FlightResolver
	ids      *IDGenerator
	validate *validator.Validate
	expiry   time.Duration
	now      func() time.Time
}

type AssemblerOption func(*Assembler)

func WithClock(now func() time.Time) AssemblerOption {
	return func(a *Assembler) {
		a.now = now
	}
}

func NewAssembler(flights FlightResolver, ids *IDGenerator, expiry time.Duration, opts ...AssemblerOption) *Assembler {
	a := &Assembler{
		flights:  flights,
		ids:      ids,
		validate: validator.New(),
		expiry:   expiry,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Validate checks the request shape. It does not look at the quote.
func (a *Assembler) Validate(in AssembleInput) error {
	if in.Selection.Outbound == nil || in.Selection.Outbound.FlightID == "" {
		return apperror.Validation("outbound flight selection is required")
	}
	counts := domain.CountPassengers(in.Passengers)
	if counts.Adults < 1 {
		return apperror.Validation("at least one adult required")
	}
	if len(in.Passengers) > domain.MaxPassengers {
		return apperror.Validation(fmt.Sprintf("at most %d passengers per booking", domain.MaxPassengers))
	}
	if counts.Total() != len(in.Passengers) {
		return apperror.Validation("passenger type must be ADULT, CHILD or INFANT")
	}

	today := a.now()
	for i, p := range in.Passengers {
		if p.DateOfBirth.After(today) {
			return apperror.Validation(fmt.Sprintf("passenger %d: date of birth is in the future", i+1))
		}
		if p.Passport.Number != "" && !p.Passport.ExpiryDate.After(today) {
			return apperror.Validation(fmt.Sprintf("passenger %d: passport has expired", i+1))
		}
	}

	if err := a.validate.Var(in.ContactInfo.Email, "required,email"); err != nil {
		return apperror.Validation("contact email is invalid")
	}
	if in.PaymentMethod != "" && !in.PaymentMethod.Valid() {
		return apperror.Validation(fmt.Sprintf("unsupported payment method %q", in.PaymentMethod))
	}
	return nil
}

func (a *Assembler) Assemble(ctx context.Context, in AssembleInput) (*domain.Booking, error) {
	if err := a.Validate(in); err != nil {
		return nil, err
	}
	if in.Quote.TotalPrice < 0 {
		return nil, apperror.Validation("total price must not be negative")
	}
	if err := in.Quote.Validate(); err != nil {
		return nil, apperror.New(apperror.ErrComputation, "inconsistent price quote", err)
	}

	outbound, err := a.resolve(ctx, in.OutboundFlight, in.Selection.Outbound)
	if err != nil {
		return nil, err
	}
	details := domain.FlightDetails{Outbound: domain.NewFlightSnapshot(outbound, in.Selection.Outbound.CabinClass)}
	if in.Selection.Return != nil {
		ret, err := a.resolve(ctx, in.ReturnFlight, in.Selection.Return)
		if err != nil {
			return nil, err
		}
		snap := domain.NewFlightSnapshot(ret, in.Selection.Return.CabinClass)
		details.Return = &snap
	}

	bookingID, err := a.ids.BookingID()
	if err != nil {
		return nil, err
	}
	code, err := a.ids.ConfirmationCode()
	if err != nil {
		return nil, err
	}

	method := in.PaymentMethod
	if method == "" {
		method = domain.PaymentMethodCreditCard
	}
	provider := in.Provider
	if provider == "" {
		provider = outbound.Provider
	}

	now := a.now().UTC()
	passengers := make([]domain.PassengerDetail, len(in.Passengers))
	copy(passengers, in.Passengers)

	return &domain.Booking{
		BookingID:          bookingID,
		UserID:             in.UserID,
		CompanyID:          in.CompanyID,
		FlightDetails:      details,
		Passengers:         passengers,
		ContactInfo:        in.ContactInfo,
		Pricing:            in.Quote,
		Payment:            domain.Payment{Method: method, Status: domain.PaymentStatusPending},
		Status:             domain.BookingStatusConfirmed,
		ConfirmationCode:   code,
		ExternalBookingRef: in.ExternalBookingRef,
		Provider:           provider,
		Metadata: domain.BookingMetadata{
			BookedBy: in.UserID,
			Reason:   in.BusinessJustification,
		},
		ExpiresAt: now.Add(a.expiry),
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

func (a *Assembler) resolve(ctx context.Context, known *domain.Flight, sel *domain.FlightSegmentSelection) (*domain.Flight, error) {
	if known != nil {
		return known, nil
	}
	return a.flights.Flight(ctx, sel.FlightID)
}
