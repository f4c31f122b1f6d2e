package pricing

import (
	"github.com/Domenick1991/skybooker/internal/apperror"
	"github.com/Domenick1991/skybooker/internal/domain"
)

// Passenger weights in percent of the adult fare.
const (
	adultWeight  = 100
	childWeight  = 50
	infantWeight = 10
	weightScale  = 100
)

// perPassengerFee is charged to adults and children, never infants.
var perPassengerFee = domain.FromMajor(200)

// SegmentPrice is the priced total of one leg for the whole party.
type SegmentPrice struct {
	BasePrice domain.Money `json:"basePrice"`
	Taxes     domain.Money `json:"taxes"`
	Fees      domain.Money `json:"fees"`
}

// PriceSegment expands a per-adult fare into the party total for one leg.
func PriceSegment(fare domain.Fare, counts domain.PassengerCounts) (SegmentPrice, error) {
	if err := counts.Validate(); err != nil {
		return SegmentPrice{}, apperror.New(apperror.ErrInvalidPassengerCounts, err.Error(), nil)
	}
	if fare.BasePrice < 0 || fare.Taxes < 0 {
		return SegmentPrice{}, apperror.Newf(apperror.ErrInvalidFareData, "negative fare: base %s, taxes %s", fare.BasePrice, fare.Taxes)
	}

	weight := int64(adultWeight*counts.Adults + childWeight*counts.Children + infantWeight*counts.Infants)

	base, err := fare.BasePrice.MulDiv(weight, weightScale)
	if err != nil {
		return SegmentPrice{}, apperror.New(apperror.ErrComputation, "segment base price", err)
	}
	taxes, err := fare.Taxes.MulDiv(weight, weightScale)
	if err != nil {
		return SegmentPrice{}, apperror.New(apperror.ErrComputation, "segment taxes", err)
	}
	fees, err := perPassengerFee.MulDiv(int64(counts.Adults+counts.Children), 1)
	if err != nil {
		return SegmentPrice{}, apperror.New(apperror.ErrComputation, "segment fees", err)
	}

	return SegmentPrice{BasePrice: base, Taxes: taxes, Fees: fees}, nil
}
