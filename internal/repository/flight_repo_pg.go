package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/Domenick1991/skybooker/internal/apperror"
	"github.com/Domenick1991/skybooker/internal/domain"
)

// FlightRepository is the postgres-backed flight catalog.
type FlightRepository interface {
	Flight(ctx context.Context, flightID string) (*domain.Flight, error)
	Upsert(ctx context.Context, flights []domain.Flight) error
}

type PGFlightRepository struct {
	db DBConn
}

func NewFlightRepository(db DBConn) FlightRepository {
	return &PGFlightRepository{db: db}
}

func (r *PGFlightRepository) Flight(ctx context.Context, flightID string) (*domain.Flight, error) {
	row := r.db.QueryRow(ctx, `SELECT flight_id, flight_number, airline, route, departure_time, arrival_time,
		duration_minutes, aircraft, stops, fares, provider FROM flights WHERE flight_id=$1`, flightID)

	var (
		f                     domain.Flight
		provider              string
		airline, route, fares []byte
	)
	if err := row.Scan(&f.ID, &f.FlightNumber, &airline, &route, &f.Schedule.DepartureTime, &f.Schedule.ArrivalTime,
		&f.Schedule.DurationMinutes, &f.Aircraft, &f.Stops, &fares, &provider); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperror.New(apperror.ErrFlightNotFound, fmt.Sprintf("flight %s not found", flightID), nil)
		}
		return nil, fmt.Errorf("scan flight %s: %w", flightID, err)
	}
	f.Provider = domain.Provider(provider)

	if err := json.Unmarshal(airline, &f.Airline); err != nil {
		return nil, fmt.Errorf("decode flight %s airline: %w", flightID, err)
	}
	if err := json.Unmarshal(route, &f.Route); err != nil {
		return nil, fmt.Errorf("decode flight %s route: %w", flightID, err)
	}
	if err := json.Unmarshal(fares, &f.Fares); err != nil {
		return nil, apperror.New(apperror.ErrInvalidFareData, fmt.Sprintf("flight %s fares", flightID), err)
	}
	return &f, nil
}

// Upsert writes catalog entries in one transaction.
func (r *PGFlightRepository) Upsert(ctx context.Context, flights []domain.Flight) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	for _, f := range flights {
		airline, err := json.Marshal(f.Airline)
		if err != nil {
			return err
		}
		route, err := json.Marshal(f.Route)
		if err != nil {
			return err
		}
		fares, err := json.Marshal(f.Fares)
		if err != nil {
			return err
		}
		if _, err := tx.Exec(ctx, `INSERT INTO flights (flight_id, flight_number, airline, route, departure_time, arrival_time,
			duration_minutes, aircraft, stops, fares, provider)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
			ON CONFLICT (flight_id) DO UPDATE SET flight_number=EXCLUDED.flight_number, airline=EXCLUDED.airline,
			route=EXCLUDED.route, departure_time=EXCLUDED.departure_time, arrival_time=EXCLUDED.arrival_time,
			duration_minutes=EXCLUDED.duration_minutes, aircraft=EXCLUDED.aircraft, stops=EXCLUDED.stops,
			fares=EXCLUDED.fares, provider=EXCLUDED.provider, updated_at=now()`,
			f.ID, f.FlightNumber, airline, route, f.Schedule.DepartureTime, f.Schedule.ArrivalTime,
			f.Schedule.DurationMinutes, f.Aircraft, f.Stops, fares, string(f.Provider)); err != nil {
			return fmt.Errorf("upsert flight %s: %w", f.ID, err)
		}
	}
	return tx.Commit(ctx)
}

var _ FlightRepository = (*PGFlightRepository)(nil)
