// Package catalog holds the in-memory flight catalog used when no live source is configured.
package catalog

import (
	"context"
	"fmt"
	"maps"
	"os"
	"slices"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/Domenick1991/skybooker/internal/apperror"
	"github.com/Domenick1991/skybooker/internal/domain"
)

// Static is an immutable flight table keyed by flight id.
type Static struct {
	flights map[string]domain.Flight
}

func NewStatic(flights []domain.Flight) *Static {
	s := &Static{flights: make(map[string]domain.Flight, len(flights))}
	for _, f := range flights {
		if f.Provider == "" {
			f.Provider = domain.ProviderCatalog
		}
		s.flights[f.ID] = f
	}
	return s
}

type fileFormat struct {
	Flights []domain.Flight `yaml:"flights"`
}

// LoadFile reads a YAML catalog with a top-level "flights" list.
func LoadFile(path string) (*Static, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog %s: %w", path, err)
	}
	var file fileFormat
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse catalog %s: %w", path, err)
	}
	for _, f := range file.Flights {
		if f.ID == "" {
			return nil, fmt.Errorf("catalog %s: flight without flight_id", path)
		}
	}
	return NewStatic(file.Flights), nil
}

func (s *Static) Flight(_ context.Context, flightID string) (*domain.Flight, error) {
	f, ok := s.flights[flightID]
	if !ok {
		return nil, apperror.New(apperror.ErrFlightNotFound, fmt.Sprintf("flight %s not found", flightID), nil)
	}
	f.Fares = maps.Clone(f.Fares)
	return &f, nil
}

// Flights returns every entry ordered by flight id, e.g. to seed another store.
func (s *Static) Flights() []domain.Flight {
	out := make([]domain.Flight, 0, len(s.flights))
	for _, id := range slices.Sorted(maps.Keys(s.flights)) {
		f := s.flights[id]
		f.Fares = maps.Clone(f.Fares)
		out = append(out, f)
	}
	return out
}

func (s *Static) Len() int {
	return len(s.flights)
}

// Default is the built-in two-flight BLR → DEL table.
func Default() *Static {
	blr := domain.Airport{Code: "BLR", Name: "Bengaluru", City: "Bengaluru", Country: "India"}
	del := domain.Airport{Code: "DEL", Name: "Delhi", City: "Delhi", Country: "India"}

	return NewStatic([]domain.Flight{
		{
			ID:           "flight_789",
			FlightNumber: "6E2043",
			Airline:      domain.Airline{Code: "6E", Name: "IndiGo"},
			Route:        domain.Route{Origin: blr, Destination: del},
			Schedule: domain.Schedule{
				DepartureTime:   time.Date(2025, 8, 15, 6, 30, 0, 0, time.UTC),
				ArrivalTime:     time.Date(2025, 8, 15, 9, 15, 0, 0, time.UTC),
				DurationMinutes: 165,
			},
			Aircraft: "A320",
			Fares: map[domain.CabinClass]domain.Fare{
				domain.CabinEconomy:  {BasePrice: domain.FromMajor(4500), Taxes: domain.FromMajor(890), SeatsAvailable: 9},
				domain.CabinBusiness: {BasePrice: domain.FromMajor(12000), Taxes: domain.FromMajor(2100), SeatsAvailable: 3},
			},
		},
		{
			ID:           "flight_790",
			FlightNumber: "AI101",
			Airline:      domain.Airline{Code: "AI", Name: "Air India"},
			Route:        domain.Route{Origin: blr, Destination: del},
			Schedule: domain.Schedule{
				DepartureTime:   time.Date(2025, 8, 15, 8, 0, 0, 0, time.UTC),
				ArrivalTime:     time.Date(2025, 8, 15, 10, 45, 0, 0, time.UTC),
				DurationMinutes: 165,
			},
			Aircraft: "B787",
			Fares: map[domain.CabinClass]domain.Fare{
				domain.CabinEconomy:  {BasePrice: domain.FromMajor(5200), Taxes: domain.FromMajor(950), SeatsAvailable: 12},
				domain.CabinBusiness: {BasePrice: domain.FromMajor(15000), Taxes: domain.FromMajor(2500), SeatsAvailable: 5},
			},
		},
	})
}
