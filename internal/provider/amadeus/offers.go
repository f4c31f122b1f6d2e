package amadeus

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/Domenick1991/skybooker/internal/apperror"
	"github.com/Domenick1991/skybooker/internal/domain"
)

// timeLayout is the provider's local date-time format (no zone).
const timeLayout = "2006-01-02T15:04:05"

type Offer struct {
	Type                   string            `json:"type"`
	ID                     string            `json:"id"`
	Source                 string            `json:"source"`
	NumberOfBookableSeats  int               `json:"numberOfBookableSeats"`
	Itineraries            []Itinerary       `json:"itineraries"`
	Price                  Price             `json:"price"`
	ValidatingAirlineCodes []string          `json:"validatingAirlineCodes"`
	TravelerPricings       []TravelerPricing `json:"travelerPricings"`

	// Raw is the offer exactly as received; pricing and order calls send it back untouched.
	Raw json.RawMessage `json:"-"`
}

type Itinerary struct {
	Duration string    `json:"duration"`
	Segments []Segment `json:"segments"`
}

type Segment struct {
	ID            string   `json:"id"`
	Departure     Endpoint `json:"departure"`
	Arrival       Endpoint `json:"arrival"`
	CarrierCode   string   `json:"carrierCode"`
	Number        string   `json:"number"`
	Aircraft      Aircraft `json:"aircraft"`
	Duration      string   `json:"duration"`
	NumberOfStops int      `json:"numberOfStops"`
}

type Endpoint struct {
	IATACode string `json:"iataCode"`
	Terminal string `json:"terminal,omitempty"`
	At       string `json:"at"`
}

type Aircraft struct {
	Code string `json:"code"`
}

type Price struct {
	Currency   string `json:"currency"`
	Total      string `json:"total"`
	Base       string `json:"base"`
	GrandTotal string `json:"grandTotal,omitempty"`
}

type TravelerPricing struct {
	TravelerID           string              `json:"travelerId"`
	FareOption           string              `json:"fareOption"`
	TravelerType         string              `json:"travelerType"`
	Price                Price               `json:"price"`
	FareDetailsBySegment []FareDetailSegment `json:"fareDetailsBySegment"`
}

type FareDetailSegment struct {
	SegmentID string `json:"segmentId"`
	Cabin     string `json:"cabin"`
}

// ParseOffer decodes one offer and keeps the raw document.
func ParseOffer(raw json.RawMessage) (Offer, error) {
	var o Offer
	if err := json.Unmarshal(raw, &o); err != nil {
		return Offer{}, apperror.New(apperror.ErrValidation, "malformed flight offer", err)
	}
	o.Raw = append(json.RawMessage(nil), raw...)
	return o, nil
}

// OfferToFlight maps an offer to a catalog entry. The adult traveler price becomes
// the fare of the offer's cabin; carriers resolves airline names when known.
func OfferToFlight(o Offer, carriers map[string]string) (*domain.Flight, error) {
	if len(o.Itineraries) == 0 || len(o.Itineraries[0].Segments) == 0 {
		return nil, apperror.Newf(apperror.ErrInvalidFareData, "offer %s has no segments", o.ID)
	}
	segments := o.Itineraries[0].Segments
	first, last := segments[0], segments[len(segments)-1]

	departure, err := time.Parse(timeLayout, first.Departure.At)
	if err != nil {
		return nil, apperror.New(apperror.ErrInvalidFareData, fmt.Sprintf("offer %s departure time", o.ID), err)
	}
	arrival, err := time.Parse(timeLayout, last.Arrival.At)
	if err != nil {
		return nil, apperror.New(apperror.ErrInvalidFareData, fmt.Sprintf("offer %s arrival time", o.ID), err)
	}

	stops := len(segments) - 1
	for _, s := range segments {
		stops += s.NumberOfStops
	}

	fare, cabin, err := adultFare(o)
	if err != nil {
		return nil, err
	}
	fare.SeatsAvailable = o.NumberOfBookableSeats

	return &domain.Flight{
		ID:           o.ID,
		FlightNumber: first.CarrierCode + first.Number,
		Airline:      domain.Airline{Code: first.CarrierCode, Name: carriers[first.CarrierCode]},
		Route: domain.Route{
			Origin:      domain.Airport{Code: first.Departure.IATACode, Terminal: first.Departure.Terminal},
			Destination: domain.Airport{Code: last.Arrival.IATACode, Terminal: last.Arrival.Terminal},
		},
		Schedule: domain.Schedule{
			DepartureTime:   departure,
			ArrivalTime:     arrival,
			DurationMinutes: durationMinutes(o.Itineraries[0].Duration, arrival.Sub(departure)),
		},
		Aircraft: first.Aircraft.Code,
		Stops:    stops,
		Fares:    map[domain.CabinClass]domain.Fare{cabin: fare},
		Provider: domain.ProviderAmadeus,
	}, nil
}

func adultFare(o Offer) (domain.Fare, domain.CabinClass, error) {
	price := o.Price
	cabin := domain.CabinEconomy
	for _, tp := range o.TravelerPricings {
		if tp.TravelerType != "ADULT" {
			continue
		}
		price = tp.Price
		if len(tp.FareDetailsBySegment) > 0 {
			if c, err := domain.ParseCabinClass(tp.FareDetailsBySegment[0].Cabin); err == nil {
				cabin = c
			}
		}
		break
	}

	base, err := domain.ParseMoney(price.Base)
	if err != nil {
		return domain.Fare{}, "", apperror.New(apperror.ErrInvalidFareData, fmt.Sprintf("offer %s base price", o.ID), err)
	}
	total, err := domain.ParseMoney(price.Total)
	if err != nil {
		return domain.Fare{}, "", apperror.New(apperror.ErrInvalidFareData, fmt.Sprintf("offer %s total price", o.ID), err)
	}
	if base < 0 || total < base {
		return domain.Fare{}, "", apperror.Newf(apperror.ErrInvalidFareData, "offer %s price total %s below base %s", o.ID, total, base)
	}
	return domain.Fare{BasePrice: base, Taxes: total - base}, cabin, nil
}

// durationMinutes reads an ISO-8601 duration such as PT2H45M and falls back to the schedule.
func durationMinutes(iso string, fallback time.Duration) int {
	s := strings.TrimPrefix(strings.ToUpper(iso), "PT")
	if s == "" || s == strings.ToUpper(iso) {
		return int(fallback.Minutes())
	}
	d, err := time.ParseDuration(strings.ToLower(s))
	if err != nil {
		return int(fallback.Minutes())
	}
	return int(d.Minutes())
}
