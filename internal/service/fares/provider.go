package fares

import (
	"context"

	"github.com/Domenick1991/skybooker/internal/domain"
	"github.com/Domenick1991/skybooker/internal/provider/amadeus"
)

type OfferGetter interface {
	GetOffer(ctx context.Context, offerID string) (*amadeus.Offer, error)
}

// ProviderCatalog treats provider offer ids as flight ids.
type ProviderCatalog struct {
	offers OfferGetter
}

func NewProviderCatalog(offers OfferGetter) *ProviderCatalog {
	return &ProviderCatalog{offers: offers}
}

func (c *ProviderCatalog) Flight(ctx context.Context, flightID string) (*domain.Flight, error) {
	offer, err := c.offers.GetOffer(ctx, flightID)
	if err != nil {
		return nil, err
	}
	return amadeus.OfferToFlight(*offer, nil)
}

var _ Catalog = (*ProviderCatalog)(nil)
