package pricing

import (
	"go.uber.org/zap"

	"github.com/Domenick1991/skybooker/internal/apperror"
	"github.com/Domenick1991/skybooker/internal/domain"
)

const (
	gstPercent    = 18
	markupPercent = 5
)

// MarkupFunc computes the business markup from the summed base price.
type MarkupFunc func(base domain.Money) (domain.Money, error)

// PercentMarkup charges a flat percentage of the base price.
func PercentMarkup(percent int64) MarkupFunc {
	return func(base domain.Money) (domain.Money, error) {
		return base.MulDiv(percent, 100)
	}
}

type Aggregator struct {
	currency string
	markup   MarkupFunc
	log      *zap.Logger
}

type AggregatorOption func(*Aggregator)

func WithMarkup(fn MarkupFunc) AggregatorOption {
	return func(a *Aggregator) {
		a.markup = fn
	}
}

func NewAggregator(currency string, log *zap.Logger, opts ...AggregatorOption) *Aggregator {
	a := &Aggregator{
		currency: currency,
		markup:   PercentMarkup(markupPercent),
		log:      log,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// AggregateTripPrice combines leg prices into a quote. Tax and fee failures abort,
// a markup failure is logged and the markup becomes zero.
func (a *Aggregator) AggregateTripPrice(outbound SegmentPrice, ret *SegmentPrice, origin, destination string) (domain.PriceQuote, error) {
	segments := []SegmentPrice{outbound}
	if ret != nil {
		segments = append(segments, *ret)
	}

	var sum SegmentPrice
	for _, s := range segments {
		if s.BasePrice < 0 || s.Taxes < 0 || s.Fees < 0 {
			return domain.PriceQuote{}, apperror.Newf(apperror.ErrInvalidFareData, "negative segment price %+v", s)
		}
		var err error
		if sum.BasePrice, err = sum.BasePrice.Add(s.BasePrice); err != nil {
			return domain.PriceQuote{}, apperror.New(apperror.ErrComputation, "sum base price", err)
		}
		if sum.Taxes, err = sum.Taxes.Add(s.Taxes); err != nil {
			return domain.PriceQuote{}, apperror.New(apperror.ErrComputation, "sum taxes", err)
		}
		if sum.Fees, err = sum.Fees.Add(s.Fees); err != nil {
			return domain.PriceQuote{}, apperror.New(apperror.ErrComputation, "sum fees", err)
		}
	}

	gst, err := sum.BasePrice.MulDiv(gstPercent, 100)
	if err != nil {
		return domain.PriceQuote{}, apperror.New(apperror.ErrComputation, "gst", err)
	}
	taxes := sum.Taxes
	for _, part := range []domain.Money{gst, AirportSurcharge(origin), AirportSurcharge(destination)} {
		if taxes, err = taxes.Add(part); err != nil {
			return domain.PriceQuote{}, apperror.New(apperror.ErrComputation, "route taxes", err)
		}
	}

	markup, err := a.markup(sum.BasePrice)
	if err != nil || markup < 0 {
		a.log.Warn("markup computation failed, applying zero markup",
			zap.Error(err),
			zap.Stringer("base_price", sum.BasePrice),
			zap.Stringer("markup", markup))
		markup = 0
	}

	quote, err := domain.NewPriceQuote(sum.BasePrice, taxes, sum.Fees, markup, a.currency)
	if err != nil {
		return domain.PriceQuote{}, apperror.New(apperror.ErrComputation, "build quote", err)
	}
	return quote, nil
}
