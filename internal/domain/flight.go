package domain

import (
	"fmt"
	"strings"
	"time"
)

type CabinClass string

const (
	CabinEconomy  CabinClass = "ECONOMY"
	CabinBusiness CabinClass = "BUSINESS"
	CabinFirst    CabinClass = "FIRST"
)

// ParseCabinClass accepts any letter case ("economy", "Business").
func ParseCabinClass(s string) (CabinClass, error) {
	switch c := CabinClass(strings.ToUpper(strings.TrimSpace(s))); c {
	case CabinEconomy, CabinBusiness, CabinFirst:
		return c, nil
	default:
		return "", fmt.Errorf("unknown cabin class %q", s)
	}
}

type Provider string

const (
	ProviderCatalog Provider = "CATALOG"
	ProviderAmadeus Provider = "AMADEUS"
	ProviderSabre   Provider = "SABRE"
)

// Fare is the per-adult price of one flight and cabin.
type Fare struct {
	BasePrice      Money `json:"basePrice" yaml:"base_price"`
	Taxes          Money `json:"taxes" yaml:"taxes"`
	SeatsAvailable int   `json:"seatsAvailable" yaml:"seats_available"`
}

type Airport struct {
	Code     string `json:"code" yaml:"code"`
	Name     string `json:"name,omitempty" yaml:"name"`
	City     string `json:"city,omitempty" yaml:"city"`
	Country  string `json:"country,omitempty" yaml:"country"`
	Terminal string `json:"terminal,omitempty" yaml:"terminal"`
}

type Route struct {
	Origin      Airport `json:"origin" yaml:"origin"`
	Destination Airport `json:"destination" yaml:"destination"`
}

func (r Route) String() string {
	return r.Origin.Code + " → " + r.Destination.Code
}

type Schedule struct {
	DepartureTime   time.Time `json:"departureTime" yaml:"departure_time"`
	ArrivalTime     time.Time `json:"arrivalTime" yaml:"arrival_time"`
	DurationMinutes int       `json:"duration" yaml:"duration_minutes"`
}

type Airline struct {
	Code string `json:"code" yaml:"code"`
	Name string `json:"name,omitempty" yaml:"name"`
}

// Flight is one flight catalog entry with its fare table.
type Flight struct {
	ID           string              `json:"flightId" yaml:"flight_id"`
	FlightNumber string              `json:"flightNumber" yaml:"flight_number"`
	Airline      Airline             `json:"airline" yaml:"airline"`
	Route        Route               `json:"route" yaml:"route"`
	Schedule     Schedule            `json:"schedule" yaml:"schedule"`
	Aircraft     string              `json:"aircraft,omitempty" yaml:"aircraft"`
	Stops        int                 `json:"stops" yaml:"stops"`
	Fares        map[CabinClass]Fare `json:"pricing" yaml:"fares"`
	Provider     Provider            `json:"provider,omitempty" yaml:"provider"`
}

// Fare returns the fare for the cabin, if the flight sells it.
func (f *Flight) Fare(cabin CabinClass) (Fare, bool) {
	fare, ok := f.Fares[cabin]
	return fare, ok
}

// FlightSegmentSelection identifies one directional leg to be priced and booked.
type FlightSegmentSelection struct {
	FlightID   string     `json:"flightId"`
	CabinClass CabinClass `json:"class"`
	Date       time.Time  `json:"departureDate"`
}

type FlightSelection struct {
	Outbound *FlightSegmentSelection `json:"outbound"`
	Return   *FlightSegmentSelection `json:"return,omitempty"`
}

// FlightSnapshot is the denormalized copy of catalog data kept inside a booking.
type FlightSnapshot struct {
	FlightID     string     `json:"flightId"`
	FlightNumber string     `json:"flightNumber"`
	Route        Route      `json:"route"`
	Schedule     Schedule   `json:"schedule"`
	SeatClass    CabinClass `json:"seatClass"`
	SeatNumber   string     `json:"seatNumber,omitempty"`
}

func NewFlightSnapshot(f *Flight, cabin CabinClass) FlightSnapshot {
	return FlightSnapshot{
		FlightID:     f.ID,
		FlightNumber: f.FlightNumber,
		Route:        f.Route,
		Schedule:     f.Schedule,
		SeatClass:    cabin,
	}
}

type FlightDetails struct {
	Outbound FlightSnapshot  `json:"outbound"`
	Return   *FlightSnapshot `json:"return,omitempty"`
}
