package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Domenick1991/skybooker/internal/apperror"
	"github.com/Domenick1991/skybooker/internal/domain"
)

var flightCols = []string{"flight_id", "flight_number", "airline", "route", "departure_time", "arrival_time",
	"duration_minutes", "aircraft", "stops", "fares", "provider"}

func TestPGFlightRepository_Flight(t *testing.T) {
	mockDb := setupMockDB(t)
	repo := NewFlightRepository(mockDb)
	dep := time.Date(2025, 8, 15, 6, 30, 0, 0, time.UTC)

	mockDb.ExpectQuery("FROM flights WHERE flight_id").
		WithArgs("flight_789").
		WillReturnRows(pgxmock.NewRows(flightCols).AddRow(
			"flight_789", "6E2043",
			[]byte(`{"code":"6E","name":"IndiGo"}`),
			[]byte(`{"origin":{"code":"BLR"},"destination":{"code":"DEL"}}`),
			dep, dep.Add(165*time.Minute), 165, "A320", 0,
			[]byte(`{"ECONOMY":{"basePrice":4500,"taxes":890,"seatsAvailable":9}}`),
			"CATALOG",
		))

	f, err := repo.Flight(context.Background(), "flight_789")
	require.NoError(t, err)
	assert.Equal(t, "6E2043", f.FlightNumber)
	assert.Equal(t, "IndiGo", f.Airline.Name)
	assert.Equal(t, "BLR → DEL", f.Route.String())
	assert.Equal(t, domain.FromMajor(4500), f.Fares[domain.CabinEconomy].BasePrice)
	assert.Equal(t, domain.ProviderCatalog, f.Provider)
	assert.NoError(t, mockDb.ExpectationsWereMet())
}

func TestPGFlightRepository_FlightNotFound(t *testing.T) {
	mockDb := setupMockDB(t)
	repo := NewFlightRepository(mockDb)

	mockDb.ExpectQuery("FROM flights WHERE flight_id").WithArgs("nope").WillReturnError(pgx.ErrNoRows)

	_, err := repo.Flight(context.Background(), "nope")
	assert.ErrorIs(t, err, apperror.ErrFlightNotFound)
}

func TestPGFlightRepository_CorruptFares(t *testing.T) {
	mockDb := setupMockDB(t)
	repo := NewFlightRepository(mockDb)
	dep := time.Date(2025, 8, 15, 6, 30, 0, 0, time.UTC)

	mockDb.ExpectQuery("FROM flights WHERE flight_id").
		WithArgs("flight_789").
		WillReturnRows(pgxmock.NewRows(flightCols).AddRow(
			"flight_789", "6E2043", []byte(`{}`), []byte(`{}`), dep, dep, 0, "", 0,
			[]byte(`{"ECONOMY":{"basePrice":"n/a"}}`), "CATALOG",
		))

	_, err := repo.Flight(context.Background(), "flight_789")
	assert.ErrorIs(t, err, apperror.ErrInvalidFareData)
}

func TestPGFlightRepository_Upsert(t *testing.T) {
	mockDb := setupMockDB(t)
	repo := NewFlightRepository(mockDb)

	flights := []domain.Flight{{ID: "a", FlightNumber: "6E1"}, {ID: "b", FlightNumber: "AI2"}}

	mockDb.ExpectBegin()
	for _, f := range flights {
		mockDb.ExpectExec("INSERT INTO flights").
			WithArgs(f.ID, f.FlightNumber, pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(),
				0, "", 0, pgxmock.AnyArg(), "").
			WillReturnResult(pgxmock.NewResult("INSERT", 1))
	}
	mockDb.ExpectCommit()

	require.NoError(t, repo.Upsert(context.Background(), flights))
	assert.NoError(t, mockDb.ExpectationsWereMet())
}

func TestPGFlightRepository_UpsertRollsBack(t *testing.T) {
	mockDb := setupMockDB(t)
	repo := NewFlightRepository(mockDb)

	mockDb.ExpectBegin()
	mockDb.ExpectExec("INSERT INTO flights").WillReturnError(errors.New("disk full"))
	mockDb.ExpectRollback()

	err := repo.Upsert(context.Background(), []domain.Flight{{ID: "a"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")
	assert.NoError(t, mockDb.ExpectationsWereMet())
}
