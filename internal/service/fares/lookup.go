// Package fares resolves flights and cabin fares from the configured catalog.
package fares

import (
	"context"
	"fmt"

	"github.com/Domenick1991/skybooker/internal/apperror"
	"github.com/Domenick1991/skybooker/internal/domain"
)

// Catalog is a flight source. Implementations return apperror.ErrFlightNotFound for unknown ids.
type Catalog interface {
	Flight(ctx context.Context, flightID string) (*domain.Flight, error)
}

type Lookup struct {
	catalog           Catalog
	fallbackToEconomy bool
}

type LookupOption func(*Lookup)

// WithEconomyFallback substitutes the ECONOMY fare when the requested cabin is not sold.
func WithEconomyFallback(enabled bool) LookupOption {
	return func(l *Lookup) {
		l.fallbackToEconomy = enabled
	}
}

func NewLookup(catalog Catalog, opts ...LookupOption) *Lookup {
	l := &Lookup{catalog: catalog}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

func (l *Lookup) Flight(ctx context.Context, flightID string) (*domain.Flight, error) {
	if flightID == "" {
		return nil, apperror.Validation("flight id is required")
	}
	return l.catalog.Flight(ctx, flightID)
}

// LookupFare returns the fare for one flight and cabin.
func (l *Lookup) LookupFare(ctx context.Context, flightID string, cabin domain.CabinClass) (domain.Fare, error) {
	flight, err := l.Flight(ctx, flightID)
	if err != nil {
		return domain.Fare{}, err
	}
	return l.FareFor(flight, cabin)
}

func (l *Lookup) FareFor(flight *domain.Flight, cabin domain.CabinClass) (domain.Fare, error) {
	if fare, ok := flight.Fare(cabin); ok {
		return fare, nil
	}
	if l.fallbackToEconomy {
		if fare, ok := flight.Fare(domain.CabinEconomy); ok {
			return fare, nil
		}
	}
	return domain.Fare{}, apperror.New(apperror.ErrFareUnavailable,
		fmt.Sprintf("flight %s has no %s fare", flight.ID, cabin), nil)
}
