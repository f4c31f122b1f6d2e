package fares

import (
	"context"

	"go.uber.org/zap"

	"github.com/Domenick1991/skybooker/internal/domain"
)

// FlightCache returns nil, nil on a miss.
type FlightCache interface {
	GetFlight(ctx context.Context, flightID string) (*domain.Flight, error)
	SetFlight(ctx context.Context, flight *domain.Flight) error
}

// CachedCatalog reads through a cache. Cache failures are logged and bypassed.
type CachedCatalog struct {
	next  Catalog
	cache FlightCache
	log   *zap.Logger
}

func NewCachedCatalog(next Catalog, cache FlightCache, log *zap.Logger) *CachedCatalog {
	return &CachedCatalog{next: next, cache: cache, log: log}
}

func (c *CachedCatalog) Flight(ctx context.Context, flightID string) (*domain.Flight, error) {
	cached, err := c.cache.GetFlight(ctx, flightID)
	if err != nil {
		c.log.Warn("flight cache read failed", zap.String("flight_id", flightID), zap.Error(err))
	} else if cached != nil {
		return cached, nil
	}

	flight, err := c.next.Flight(ctx, flightID)
	if err != nil {
		return nil, err
	}
	if err := c.cache.SetFlight(ctx, flight); err != nil {
		c.log.Warn("flight cache write failed", zap.String("flight_id", flightID), zap.Error(err))
	}
	return flight, nil
}

var _ Catalog = (*CachedCatalog)(nil)
