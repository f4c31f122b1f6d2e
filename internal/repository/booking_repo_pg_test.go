package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Domenick1991/skybooker/internal/apperror"
	"github.com/Domenick1991/skybooker/internal/domain"
)

var bookingCols = []string{"booking_id", "user_id", "company_id", "status", "confirmation_code", "external_booking_ref",
	"provider", "flight_details", "passengers", "contact_info", "pricing", "payment", "metadata",
	"expires_at", "created_at", "updated_at"}

func setupMockDB(t *testing.T) pgxmock.PgxPoolIface {
	t.Helper()
	mockDb, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mockDb.Close)
	return mockDb
}

func sampleBooking() *domain.Booking {
	now := time.Date(2026, 10, 16, 12, 0, 0, 0, time.UTC)
	quote, _ := domain.NewPriceQuote(domain.FromMajor(4500), domain.FromMajor(2200), domain.FromMajor(200), domain.FromMajor(225), "INR")
	return &domain.Booking{
		BookingID: "BK12345678A1B2",
		UserID:    "user_123",
		CompanyID: "comp_456",
		FlightDetails: domain.FlightDetails{Outbound: domain.FlightSnapshot{
			FlightID:     "flight_789",
			FlightNumber: "6E2043",
			Route:        domain.Route{Origin: domain.Airport{Code: "BLR"}, Destination: domain.Airport{Code: "DEL"}},
			SeatClass:    domain.CabinEconomy,
		}},
		Passengers:       []domain.PassengerDetail{{Type: domain.PassengerAdult, FirstName: "Asha", LastName: "Rao"}},
		ContactInfo:      domain.ContactInfo{Email: "asha@example.com"},
		Pricing:          quote,
		Payment:          domain.Payment{Method: domain.PaymentMethodCreditCard, Status: domain.PaymentStatusPending},
		Status:           domain.BookingStatusConfirmed,
		ConfirmationCode: "Q7XK2M",
		Provider:         domain.ProviderCatalog,
		ExpiresAt:        now.Add(24 * time.Hour),
		CreatedAt:        now,
		UpdatedAt:        now,
	}
}

func bookingRow(b *domain.Booking) []any {
	docs, _ := marshalDocs(b)
	return []any{b.BookingID, b.UserID, b.CompanyID, string(b.Status), b.ConfirmationCode, b.ExternalBookingRef,
		string(b.Provider), docs[0], docs[1], docs[2], docs[3], docs[4], docs[5], b.ExpiresAt, b.CreatedAt, b.UpdatedAt}
}

func TestPGBookingRepository_Create(t *testing.T) {
	mockDb := setupMockDB(t)
	repo := NewBookingRepository(mockDb)
	b := sampleBooking()

	mockDb.ExpectExec("INSERT INTO bookings").
		WithArgs(b.BookingID, b.UserID, b.CompanyID, "CONFIRMED", b.ConfirmationCode, "", "CATALOG",
			pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(),
			b.ExpiresAt, b.CreatedAt, b.UpdatedAt).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	require.NoError(t, repo.Create(context.Background(), b))
	assert.NoError(t, mockDb.ExpectationsWereMet())
}

func TestPGBookingRepository_CreateDuplicate(t *testing.T) {
	mockDb := setupMockDB(t)
	repo := NewBookingRepository(mockDb)

	mockDb.ExpectExec("INSERT INTO bookings").
		WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "bookings_pkey"})

	err := repo.Create(context.Background(), sampleBooking())
	require.Error(t, err)
	assert.ErrorIs(t, err, apperror.ErrDuplicateBookingID)
	assert.True(t, apperror.IsRetryable(err))

	var pgErr *pgconn.PgError
	assert.True(t, errors.As(err, &pgErr))
}

func TestPGBookingRepository_CreateFailure(t *testing.T) {
	mockDb := setupMockDB(t)
	repo := NewBookingRepository(mockDb)

	mockDb.ExpectExec("INSERT INTO bookings").WillReturnError(errors.New("connection reset"))

	err := repo.Create(context.Background(), sampleBooking())
	require.Error(t, err)
	assert.NotErrorIs(t, err, apperror.ErrDuplicateBookingID)
	assert.Contains(t, err.Error(), "connection reset")
}

func TestPGBookingRepository_GetByID(t *testing.T) {
	mockDb := setupMockDB(t)
	repo := NewBookingRepository(mockDb)
	b := sampleBooking()

	mockDb.ExpectQuery("FROM bookings WHERE booking_id").
		WithArgs(b.BookingID).
		WillReturnRows(pgxmock.NewRows(bookingCols).AddRow(bookingRow(b)...))

	got, err := repo.GetByID(context.Background(), b.BookingID)
	require.NoError(t, err)
	assert.Equal(t, b.BookingID, got.BookingID)
	assert.Equal(t, domain.BookingStatusConfirmed, got.Status)
	assert.Equal(t, domain.ProviderCatalog, got.Provider)
	assert.Equal(t, b.Pricing, got.Pricing)
	assert.Equal(t, "BLR → DEL", got.FlightDetails.Outbound.Route.String())
	assert.Equal(t, b.Passengers[0].FirstName, got.Passengers[0].FirstName)
	assert.Equal(t, domain.PaymentStatusPending, got.Payment.Status)
	assert.NoError(t, mockDb.ExpectationsWereMet())
}

func TestPGBookingRepository_GetByIDNotFound(t *testing.T) {
	mockDb := setupMockDB(t)
	repo := NewBookingRepository(mockDb)

	mockDb.ExpectQuery("FROM bookings WHERE booking_id").
		WithArgs("BK0").
		WillReturnError(pgx.ErrNoRows)

	_, err := repo.GetByID(context.Background(), "BK0")
	assert.ErrorIs(t, err, apperror.ErrBookingNotFound)
}

func TestPGBookingRepository_UpdateStatus(t *testing.T) {
	mockDb := setupMockDB(t)
	repo := NewBookingRepository(mockDb)
	b := sampleBooking()
	b.Status = domain.BookingStatusCancelled

	mockDb.ExpectQuery("UPDATE bookings SET status").
		WithArgs("CANCELLED", b.BookingID, "CONFIRMED").
		WillReturnRows(pgxmock.NewRows(bookingCols).AddRow(bookingRow(b)...))

	got, err := repo.UpdateStatus(context.Background(), b.BookingID, domain.BookingStatusConfirmed, domain.BookingStatusCancelled)
	require.NoError(t, err)
	assert.Equal(t, domain.BookingStatusCancelled, got.Status)
	assert.NoError(t, mockDb.ExpectationsWereMet())
}

func TestPGBookingRepository_UpdateStatusConflict(t *testing.T) {
	mockDb := setupMockDB(t)
	repo := NewBookingRepository(mockDb)

	mockDb.ExpectQuery("UPDATE bookings SET status").
		WithArgs("CANCELLED", "BK1", "CONFIRMED").
		WillReturnError(pgx.ErrNoRows)

	_, err := repo.UpdateStatus(context.Background(), "BK1", domain.BookingStatusConfirmed, domain.BookingStatusCancelled)
	assert.ErrorIs(t, err, apperror.ErrInvalidTransition)
}

func TestPGBookingRepository_UpdatePayment(t *testing.T) {
	mockDb := setupMockDB(t)
	repo := NewBookingRepository(mockDb)
	b := sampleBooking()
	b.Payment.Status = domain.PaymentStatusPaid
	b.Payment.TransactionID = "txn_1"

	at := b.CreatedAt.Add(time.Hour)

	mockDb.ExpectQuery("UPDATE bookings SET payment").
		WithArgs(pgxmock.AnyArg(), b.BookingID, "CONFIRMED", "PENDING", at).
		WillReturnRows(pgxmock.NewRows(bookingCols).AddRow(bookingRow(b)...))

	got, err := repo.UpdatePayment(context.Background(), b.BookingID, b.Payment, at)
	require.NoError(t, err)
	assert.Equal(t, domain.PaymentStatusPaid, got.Payment.Status)
	assert.Equal(t, "txn_1", got.Payment.TransactionID)
	assert.NoError(t, mockDb.ExpectationsWereMet())
}

// A booking cancelled or expired after it was read must not be paid.
func TestPGBookingRepository_UpdatePaymentConflict(t *testing.T) {
	mockDb := setupMockDB(t)
	repo := NewBookingRepository(mockDb)
	at := time.Date(2026, 10, 16, 13, 0, 0, 0, time.UTC)
	payment := domain.Payment{Method: domain.PaymentMethodCreditCard, Status: domain.PaymentStatusPaid, TransactionID: "txn_1"}

	mockDb.ExpectQuery("WHERE booking_id=\\$2 AND status=\\$3 AND payment->>'status'=\\$4 AND expires_at > \\$5").
		WithArgs(pgxmock.AnyArg(), "BK1", "CONFIRMED", "PENDING", at).
		WillReturnError(pgx.ErrNoRows)

	got, err := repo.UpdatePayment(context.Background(), "BK1", payment, at)
	assert.Nil(t, got)
	assert.ErrorIs(t, err, apperror.ErrInvalidTransition)
	assert.False(t, errors.Is(err, apperror.ErrBookingNotFound))
	assert.NoError(t, mockDb.ExpectationsWereMet())
}

func TestPGBookingRepository_ExpireUnpaid(t *testing.T) {
	mockDb := setupMockDB(t)
	repo := NewBookingRepository(mockDb)
	before := time.Date(2026, 10, 18, 0, 0, 0, 0, time.UTC)

	first := sampleBooking()
	first.Status = domain.BookingStatusCancelled
	first.Payment.Status = domain.PaymentStatusCancelled
	second := sampleBooking()
	second.BookingID = "BK12345678C3D4"
	second.Status = domain.BookingStatusCancelled
	second.Payment.Status = domain.PaymentStatusCancelled

	mockDb.ExpectQuery("UPDATE bookings").
		WithArgs("CANCELLED", "CANCELLED", "CONFIRMED", "PENDING", before).
		WillReturnRows(pgxmock.NewRows(bookingCols).AddRow(bookingRow(first)...).AddRow(bookingRow(second)...))

	expired, err := repo.ExpireUnpaid(context.Background(), before)
	require.NoError(t, err)
	require.Len(t, expired, 2)
	assert.Equal(t, "BK12345678C3D4", expired[1].BookingID)
	assert.Equal(t, domain.PaymentStatusCancelled, expired[0].Payment.Status)
	assert.NoError(t, mockDb.ExpectationsWereMet())
}

func TestPGBookingRepository_ExpireUnpaidNone(t *testing.T) {
	mockDb := setupMockDB(t)
	repo := NewBookingRepository(mockDb)

	mockDb.ExpectQuery("UPDATE bookings").WillReturnRows(pgxmock.NewRows(bookingCols))

	expired, err := repo.ExpireUnpaid(context.Background(), time.Now())
	require.NoError(t, err)
	assert.Empty(t, expired)
}

func TestPGBookingRepository_ExpireUnpaidFailure(t *testing.T) {
	mockDb := setupMockDB(t)
	repo := NewBookingRepository(mockDb)

	mockDb.ExpectQuery("UPDATE bookings").WillReturnError(errors.New("connection lost"))

	_, err := repo.ExpireUnpaid(context.Background(), time.Now())
	assert.ErrorContains(t, err, "connection lost")
}
