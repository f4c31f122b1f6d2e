package flights

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Domenick1991/skybooker/internal/apperror"
	"github.com/Domenick1991/skybooker/internal/domain"
	"github.com/Domenick1991/skybooker/internal/provider/amadeus"
	"github.com/Domenick1991/skybooker/internal/repository"
	"github.com/Domenick1991/skybooker/internal/service/pricing"
)

type FlightUseCase interface {
	Search(ctx context.Context, input SearchInput) (*SearchResult, error)
	ConfirmPrice(ctx context.Context, offer json.RawMessage) (*amadeus.PricingResult, error)
}

// Provider is the part of the flight provider client used for shopping.
type Provider interface {
	SearchOffers(ctx context.Context, p amadeus.SearchParams) (*amadeus.SearchResult, error)
	PriceOffer(ctx context.Context, offer json.RawMessage) (*amadeus.PricingResult, error)
}

type SearchInput struct {
	UserID   string
	Criteria domain.SearchCriteria
}

// PricedOffer is a provider offer with our own price for the requested party.
// Quote is nil when the offer does not sell the requested cabin.
type PricedOffer struct {
	Flight *domain.Flight     `json:"flight"`
	Quote  *domain.PriceQuote `json:"quote,omitempty"`
	Offer  json.RawMessage    `json:"offer"`
}

type SearchResult struct {
	SearchID string        `json:"searchId"`
	Count    int           `json:"count"`
	Offers   []PricedOffer `json:"offers"`
}

type FlightService struct {
	provider Provider
	pricer   pricing.PricingUseCase
	history  repository.SearchHistoryRepository
	log      *zap.Logger
	now      func() time.Time
}

type FlightServiceOption func(*FlightService)

// WithSearchHistory stores every search. Without it history is not kept.
func WithSearchHistory(history repository.SearchHistoryRepository) FlightServiceOption {
	return func(s *FlightService) {
		s.history = history
	}
}

func WithClock(now func() time.Time) FlightServiceOption {
	return func(s *FlightService) {
		s.now = now
	}
}

func NewFlightService(provider Provider, pricer pricing.PricingUseCase, log *zap.Logger, opts ...FlightServiceOption) *FlightService {
	s := &FlightService{provider: provider, pricer: pricer, log: log, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *FlightService) Search(ctx context.Context, input SearchInput) (*SearchResult, error) {
	c := input.Criteria
	if err := c.Passengers.Validate(); err != nil {
		return nil, apperror.New(apperror.ErrInvalidPassengerCounts, err.Error(), nil)
	}
	if c.Origin == c.Destination {
		return nil, apperror.Validation("origin and destination must differ")
	}
	if c.ReturnDate != nil && c.ReturnDate.Before(c.DepartureDate) {
		return nil, apperror.Validation("return date is before departure date")
	}
	if c.CabinClass == "" {
		c.CabinClass = domain.CabinEconomy
	}
	if s.provider == nil {
		err := apperror.New(apperror.ErrUpstream, "flight provider is not configured", nil)
		err.Retryable = false
		return nil, err
	}

	started := s.now()
	found, err := s.provider.SearchOffers(ctx, amadeus.SearchParams{
		Origin:        c.Origin,
		Destination:   c.Destination,
		DepartureDate: c.DepartureDate,
		ReturnDate:    c.ReturnDate,
		Adults:        c.Passengers.Adults,
		Children:      c.Passengers.Children,
		Infants:       c.Passengers.Infants,
		TravelClass:   c.CabinClass,
		CurrencyCode:  c.CurrencyCode,
	})
	if err != nil {
		return nil, err
	}

	result := &SearchResult{SearchID: uuid.NewString(), Offers: make([]PricedOffer, 0, len(found.Offers))}
	for _, offer := range found.Offers {
		priced, ok := s.priceOffer(offer, found.Carriers, c)
		if ok {
			result.Offers = append(result.Offers, priced)
		}
	}
	result.Count = len(result.Offers)

	s.saveHistory(ctx, domain.SearchRecord{
		SearchID:      result.SearchID,
		UserID:        input.UserID,
		Criteria:      c,
		ResultCount:   result.Count,
		ExecutionTime: s.now().Sub(started),
		CreatedAt:     started.UTC(),
	})
	return result, nil
}

// priceOffer drops offers that cannot be mapped and keeps unpriceable ones without a quote.
func (s *FlightService) priceOffer(offer amadeus.Offer, carriers map[string]string, c domain.SearchCriteria) (PricedOffer, bool) {
	flight, err := amadeus.OfferToFlight(offer, carriers)
	if err != nil {
		s.log.Warn("skipping provider offer", zap.String("offer_id", offer.ID), zap.Error(err))
		return PricedOffer{}, false
	}
	priced := PricedOffer{Flight: flight, Offer: offer.Raw}

	quote, err := s.pricer.QuoteFlight(flight, c.CabinClass, c.Passengers)
	switch {
	case err == nil:
		priced.Quote = &quote
	case errors.Is(err, apperror.ErrFareUnavailable):
	default:
		s.log.Warn("failed to price provider offer", zap.String("offer_id", offer.ID), zap.Error(err))
	}
	return priced, true
}

func (s *FlightService) saveHistory(ctx context.Context, rec domain.SearchRecord) {
	if s.history == nil {
		return
	}
	if err := s.history.Save(ctx, rec); err != nil {
		s.log.Warn("failed to save search history", zap.String("search_id", rec.SearchID), zap.Error(err))
	}
}

// ConfirmPrice asks the provider for the current price of an offer.
// Any provider warning, such as a price change, rejects the confirmation.
func (s *FlightService) ConfirmPrice(ctx context.Context, offer json.RawMessage) (*amadeus.PricingResult, error) {
	if len(offer) == 0 {
		return nil, apperror.Validation("flight offer is required")
	}
	if s.provider == nil {
		err := apperror.New(apperror.ErrUpstream, "flight provider is not configured", nil)
		err.Retryable = false
		return nil, err
	}
	result, err := s.provider.PriceOffer(ctx, offer)
	if err != nil {
		return nil, err
	}
	if len(result.Warnings) > 0 {
		w := result.Warnings[0]
		detail := w.Detail
		if detail == "" {
			detail = w.Title
		}
		return nil, apperror.New(apperror.ErrPriceWarning, detail, nil)
	}
	return result, nil
}

var _ FlightUseCase = (*FlightService)(nil)
