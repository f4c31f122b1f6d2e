package booking

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/Domenick1991/skybooker/internal/apperror"
	"github.com/Domenick1991/skybooker/internal/domain"
	"github.com/Domenick1991/skybooker/internal/kafka"
	"github.com/Domenick1991/skybooker/internal/provider/amadeus"
	"github.com/Domenick1991/skybooker/internal/repository"
	"github.com/Domenick1991/skybooker/internal/service/pricing"
)

type BookingUseCase interface {
	CreateBooking(ctx context.Context, input CreateBookingInput) (*domain.Booking, error)
	CreateProviderOrder(ctx context.Context, input ProviderOrderInput) (*domain.Booking, error)
	GetBooking(ctx context.Context, userID, bookingID string) (*domain.Booking, error)
	CancelBooking(ctx context.Context, userID, bookingID string) (*domain.Booking, error)
	ConfirmPayment(ctx context.Context, userID, bookingID, transactionID string) (*domain.Booking, error)
	ExpireUnpaidBookings(ctx context.Context) ([]domain.Booking, error)
}

type Producer interface {
	Publish(ctx context.Context, topic, key string, value interface{}) error
}

// OrderProvider places orders with an external flight provider.
type OrderProvider interface {
	CreateOrder(ctx context.Context, offer json.RawMessage, travelers []amadeus.Traveler) (*amadeus.Order, error)
}

type BookingService struct {
	bookings           repository.BookingRepository
	pricer             pricing.PricingUseCase
	assembler          *Assembler
	producer           Producer
	orders             OrderProvider
	bookingTopic       string
	notificationsTopic string
	now                func() time.Time
	log                *zap.Logger
}

type CreateBookingInput struct {
	UserID                string
	CompanyID             string
	Selection             domain.FlightSelection
	Passengers            []domain.PassengerDetail
	ContactInfo           domain.ContactInfo
	PaymentMethod         domain.PaymentMethod
	BusinessJustification string
}

// ProviderOrderInput books a priced provider offer, passed through verbatim.
type ProviderOrderInput struct {
	UserID                string
	CompanyID             string
	Offer                 json.RawMessage
	Passengers            []domain.PassengerDetail
	ContactInfo           domain.ContactInfo
	PaymentMethod         domain.PaymentMethod
	BusinessJustification string
}

type BookingServiceOption func(*BookingService)

func WithNotificationsTopic(topic string) BookingServiceOption {
	return func(s *BookingService) {
		s.notificationsTopic = topic
	}
}

func WithOrderProvider(orders OrderProvider) BookingServiceOption {
	return func(s *BookingService) {
		s.orders = orders
	}
}

func WithServiceClock(now func() time.Time) BookingServiceOption {
	return func(s *BookingService) {
		s.now = now
	}
}

func NewBookingService(
	bookings repository.BookingRepository,
	pricer pricing.PricingUseCase,
	assembler *Assembler,
	producer Producer,
	bookingTopic string,
	log *zap.Logger,
	opts ...BookingServiceOption,
) *BookingService {
	service := &BookingService{
		bookings:     bookings,
		pricer:       pricer,
		assembler:    assembler,
		producer:     producer,
		bookingTopic: bookingTopic,
		now:          time.Now,
		log:          log,
	}
	for _, opt := range opts {
		opt(service)
	}
	return service
}

// CreateBooking prices the selection, assembles the booking and stores it.
// Nothing is persisted when pricing or assembly fails.
func (s *BookingService) CreateBooking(ctx context.Context, input CreateBookingInput) (*domain.Booking, error) {
	req := AssembleInput{
		UserID:                input.UserID,
		CompanyID:             input.CompanyID,
		Selection:             input.Selection,
		Passengers:            input.Passengers,
		ContactInfo:           input.ContactInfo,
		PaymentMethod:         input.PaymentMethod,
		BusinessJustification: input.BusinessJustification,
	}
	if err := s.assembler.Validate(req); err != nil {
		return nil, err
	}

	quote, err := s.pricer.QuoteTrip(ctx, input.Selection, domain.CountPassengers(input.Passengers))
	if err != nil {
		return nil, err
	}
	req.Quote = quote

	booking, err := s.assembler.Assemble(ctx, req)
	if err != nil {
		return nil, err
	}
	if err := s.persist(ctx, booking); err != nil {
		return nil, err
	}

	s.log.Info("booking created",
		zap.String("booking_id", booking.BookingID),
		zap.String("user_id", booking.UserID),
		zap.Stringer("total_price", booking.Pricing.TotalPrice),
	)
	s.publish(ctx, kafka.EventBookingCreated, booking)
	return booking, nil
}

// CreateProviderOrder prices a provider offer with our own rules, places the order
// upstream and stores the booking with the provider's order reference.
func (s *BookingService) CreateProviderOrder(ctx context.Context, input ProviderOrderInput) (*domain.Booking, error) {
	if s.orders == nil {
		err := apperror.New(apperror.ErrUpstream, "flight provider is not configured", nil)
		err.Retryable = false
		return nil, err
	}
	offer, err := amadeus.ParseOffer(input.Offer)
	if err != nil {
		return nil, err
	}
	flight, err := amadeus.OfferToFlight(offer, nil)
	if err != nil {
		return nil, err
	}
	cabin := offeredCabin(flight)

	req := AssembleInput{
		UserID:    input.UserID,
		CompanyID: input.CompanyID,
		Selection: domain.FlightSelection{
			Outbound: &domain.FlightSegmentSelection{FlightID: flight.ID, CabinClass: cabin, Date: flight.Schedule.DepartureTime},
		},
		Passengers:            input.Passengers,
		ContactInfo:           input.ContactInfo,
		PaymentMethod:         input.PaymentMethod,
		BusinessJustification: input.BusinessJustification,
		OutboundFlight:        flight,
		Provider:              domain.ProviderAmadeus,
	}
	if err := s.assembler.Validate(req); err != nil {
		return nil, err
	}

	quote, err := s.pricer.QuoteFlight(flight, cabin, domain.CountPassengers(input.Passengers))
	if err != nil {
		return nil, err
	}
	req.Quote = quote

	// Everything that can fail locally runs before the order is placed upstream.
	booking, err := s.assembler.Assemble(ctx, req)
	if err != nil {
		return nil, err
	}

	order, err := s.orders.CreateOrder(ctx, offer.Raw, amadeus.TravelersFromPassengers(input.Passengers, input.ContactInfo))
	if err != nil {
		return nil, err
	}
	booking.ExternalBookingRef = order.ID

	if err := s.persist(ctx, booking); err != nil {
		s.log.Error("provider order placed but booking not stored",
			zap.String("order_id", order.ID), zap.Error(err))
		return nil, err
	}

	s.log.Info("provider order booked",
		zap.String("booking_id", booking.BookingID),
		zap.String("order_id", order.ID),
	)
	s.publish(ctx, kafka.EventBookingCreated, booking)
	return booking, nil
}

// GetBooking returns a booking owned by userID. Bookings of other users are reported as not found.
func (s *BookingService) GetBooking(ctx context.Context, userID, bookingID string) (*domain.Booking, error) {
	if bookingID == "" {
		return nil, apperror.Validation("booking id is required")
	}
	b, err := s.bookings.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if b.UserID != userID {
		s.log.Warn("booking requested by another user",
			zap.String("booking_id", bookingID),
			zap.String("user_id", userID))
		return nil, apperror.Newf(apperror.ErrBookingNotFound, "booking %s not found", bookingID)
	}
	return b, nil
}

// CancelBooking is idempotent for already cancelled bookings.
func (s *BookingService) CancelBooking(ctx context.Context, userID, bookingID string) (*domain.Booking, error) {
	current, err := s.GetBooking(ctx, userID, bookingID)
	if err != nil {
		return nil, err
	}
	if current.Status == domain.BookingStatusCancelled {
		return current, nil
	}
	if !domain.CanTransition(current.Status, domain.BookingStatusCancelled) {
		return nil, apperror.Newf(apperror.ErrInvalidTransition, "booking %s is %s and cannot be cancelled", bookingID, current.Status)
	}

	updated, err := s.bookings.UpdateStatus(ctx, bookingID, current.Status, domain.BookingStatusCancelled)
	if err != nil {
		return nil, err
	}
	s.publish(ctx, kafka.EventBookingCancelled, updated)
	return updated, nil
}

// ConfirmPayment records a successful payment on a confirmed, unexpired booking.
// The store repeats the state check, so a booking cancelled meanwhile is not paid.
func (s *BookingService) ConfirmPayment(ctx context.Context, userID, bookingID, transactionID string) (*domain.Booking, error) {
	if transactionID == "" {
		return nil, apperror.Validation("transaction id is required")
	}
	current, err := s.GetBooking(ctx, userID, bookingID)
	if err != nil {
		return nil, err
	}
	if current.Status != domain.BookingStatusConfirmed || current.Payment.Status != domain.PaymentStatusPending {
		return nil, apperror.Newf(apperror.ErrInvalidTransition,
			"booking %s is %s with payment %s", bookingID, current.Status, current.Payment.Status)
	}
	now := s.now().UTC()
	if now.After(current.ExpiresAt) {
		return nil, apperror.Newf(apperror.ErrInvalidTransition, "booking %s expired at %s", bookingID, current.ExpiresAt.Format(time.RFC3339))
	}

	payment := domain.Payment{
		Method:        current.Payment.Method,
		Status:        domain.PaymentStatusPaid,
		TransactionID: transactionID,
		PaidAt:        &now,
	}
	updated, err := s.bookings.UpdatePayment(ctx, bookingID, payment, now)
	if err != nil {
		return nil, err
	}
	s.publish(ctx, kafka.EventPaymentConfirmed, updated)
	return updated, nil
}

// ExpireUnpaidBookings cancels bookings whose payment deadline has passed.
func (s *BookingService) ExpireUnpaidBookings(ctx context.Context) ([]domain.Booking, error) {
	expired, err := s.bookings.ExpireUnpaid(ctx, s.now().UTC())
	if err != nil {
		return nil, err
	}
	for i := range expired {
		s.publish(ctx, kafka.EventBookingExpired, &expired[i])
	}
	return expired, nil
}

func (s *BookingService) persist(ctx context.Context, booking *domain.Booking) error {
	err := s.bookings.Create(ctx, booking)
	if err == nil {
		return nil
	}
	msg := fmt.Sprintf("store booking %s", booking.BookingID)
	if errors.Is(err, apperror.ErrDuplicateBookingID) {
		msg = fmt.Sprintf("booking id %s already taken, retry the request", booking.BookingID)
	}
	wrapped := apperror.New(apperror.ErrBookingPersistFailed, msg, err)
	wrapped.Retryable = apperror.IsRetryable(err)
	return wrapped
}

// publish is best effort: the booking is already stored.
func (s *BookingService) publish(ctx context.Context, eventType string, booking *domain.Booking) {
	if s.producer == nil || s.bookingTopic == "" {
		return
	}
	event := kafka.NewBookingEvent(eventType, booking, s.now().UTC())
	topics := []string{s.bookingTopic}
	if s.notificationsTopic != "" {
		topics = append(topics, s.notificationsTopic)
	}
	for _, topic := range topics {
		if err := s.producer.Publish(ctx, topic, booking.BookingID, event); err != nil {
			s.log.Warn("failed to publish booking event",
				zap.String("event", eventType),
				zap.String("topic", topic),
				zap.String("booking_id", booking.BookingID),
				zap.Error(err),
			)
		}
	}
}

// offeredCabin returns the single cabin a provider offer is priced for.
func offeredCabin(f *domain.Flight) domain.CabinClass {
	for cabin := range f.Fares {
		return cabin
	}
	return domain.CabinEconomy
}

var _ BookingUseCase = (*BookingService)(nil)
