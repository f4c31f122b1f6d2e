package pricing

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/Domenick1991/skybooker/internal/apperror"
	"github.com/Domenick1991/skybooker/internal/domain"
)

// FareLookup resolves flights and their cabin fares.
type FareLookup interface {
	Flight(ctx context.Context, flightID string) (*domain.Flight, error)
	FareFor(flight *domain.Flight, cabin domain.CabinClass) (domain.Fare, error)
}

type PricingUseCase interface {
	QuoteTrip(ctx context.Context, selection domain.FlightSelection, counts domain.PassengerCounts) (domain.PriceQuote, error)
	QuoteFlight(flight *domain.Flight, cabin domain.CabinClass, counts domain.PassengerCounts) (domain.PriceQuote, error)
}

type Pricer struct {
	fares      FareLookup
	aggregator *Aggregator
}

func NewPricer(fares FareLookup, aggregator *Aggregator) *Pricer {
	return &Pricer{fares: fares, aggregator: aggregator}
}

type leg struct {
	flight *domain.Flight
	fare   domain.Fare
}

// QuoteTrip looks up outbound and return fares concurrently and prices the trip.
// Route surcharges use the outbound flight's origin and destination.
func (p *Pricer) QuoteTrip(ctx context.Context, selection domain.FlightSelection, counts domain.PassengerCounts) (domain.PriceQuote, error) {
	if selection.Outbound == nil {
		return domain.PriceQuote{}, apperror.Validation("outbound flight selection is required")
	}

	var outbound, ret leg
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		outbound, err = p.resolve(gctx, selection.Outbound)
		return err
	})
	if selection.Return != nil {
		g.Go(func() error {
			var err error
			ret, err = p.resolve(gctx, selection.Return)
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return domain.PriceQuote{}, err
	}

	outPrice, err := PriceSegment(outbound.fare, counts)
	if err != nil {
		return domain.PriceQuote{}, err
	}
	var retPrice *SegmentPrice
	if ret.flight != nil {
		rp, err := PriceSegment(ret.fare, counts)
		if err != nil {
			return domain.PriceQuote{}, err
		}
		retPrice = &rp
	}

	route := outbound.flight.Route
	return p.aggregator.AggregateTripPrice(outPrice, retPrice, route.Origin.Code, route.Destination.Code)
}

// QuoteFlight prices a one-way trip on an already resolved flight.
func (p *Pricer) QuoteFlight(flight *domain.Flight, cabin domain.CabinClass, counts domain.PassengerCounts) (domain.PriceQuote, error) {
	fare, err := p.fares.FareFor(flight, cabin)
	if err != nil {
		return domain.PriceQuote{}, err
	}
	seg, err := PriceSegment(fare, counts)
	if err != nil {
		return domain.PriceQuote{}, err
	}
	return p.aggregator.AggregateTripPrice(seg, nil, flight.Route.Origin.Code, flight.Route.Destination.Code)
}

func (p *Pricer) resolve(ctx context.Context, sel *domain.FlightSegmentSelection) (leg, error) {
	flight, err := p.fares.Flight(ctx, sel.FlightID)
	if err != nil {
		return leg{}, err
	}
	fare, err := p.fares.FareFor(flight, sel.CabinClass)
	if err != nil {
		return leg{}, err
	}
	return leg{flight: flight, fare: fare}, nil
}

var _ PricingUseCase = (*Pricer)(nil)
