package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/Domenick1991/skybooker/internal/apperror"
	"github.com/Domenick1991/skybooker/internal/domain"
)

type BookingRepository interface {
	Create(ctx context.Context, booking *domain.Booking) error
	GetByID(ctx context.Context, bookingID string) (*domain.Booking, error)
	UpdateStatus(ctx context.Context, bookingID string, from, to domain.BookingStatus) (*domain.Booking, error)
	UpdatePayment(ctx context.Context, bookingID string, payment domain.Payment, at time.Time) (*domain.Booking, error)
	ExpireUnpaid(ctx context.Context, before time.Time) ([]domain.Booking, error)
}

type PGBookingRepository struct {
	db DBConn
}

func NewBookingRepository(db DBConn) BookingRepository {
	return &PGBookingRepository{db: db}
}

const bookingColumns = `booking_id, user_id, company_id, status, confirmation_code, external_booking_ref, provider,
	flight_details, passengers, contact_info, pricing, payment, metadata, expires_at, created_at, updated_at`

// Create inserts a booking. A booking id or confirmation code collision is ErrDuplicateBookingID.
func (r *PGBookingRepository) Create(ctx context.Context, b *domain.Booking) error {
	docs, err := marshalDocs(b)
	if err != nil {
		return err
	}

	_, err = r.db.Exec(ctx, `INSERT INTO bookings (`+bookingColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)`,
		b.BookingID, b.UserID, b.CompanyID, string(b.Status), b.ConfirmationCode, b.ExternalBookingRef, string(b.Provider),
		docs[0], docs[1], docs[2], docs[3], docs[4], docs[5], b.ExpiresAt, b.CreatedAt, b.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return apperror.New(apperror.ErrDuplicateBookingID,
				fmt.Sprintf("booking %s collides on %s", b.BookingID, pgErr.ConstraintName), err)
		}
		return fmt.Errorf("insert booking %s: %w", b.BookingID, err)
	}
	return nil
}

func (r *PGBookingRepository) GetByID(ctx context.Context, bookingID string) (*domain.Booking, error) {
	row := r.db.QueryRow(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE booking_id=$1`, bookingID)
	return scanBooking(row, bookingID)
}

// UpdateStatus moves a booking from one status to another. It fails with ErrInvalidTransition
// when the stored status is no longer from.
func (r *PGBookingRepository) UpdateStatus(ctx context.Context, bookingID string, from, to domain.BookingStatus) (*domain.Booking, error) {
	row := r.db.QueryRow(ctx, `UPDATE bookings SET status=$1, updated_at=now()
		WHERE booking_id=$2 AND status=$3
		RETURNING `+bookingColumns, string(to), bookingID, string(from))
	b, err := scanBooking(row, bookingID)
	if errors.Is(err, apperror.ErrBookingNotFound) {
		return nil, apperror.Newf(apperror.ErrInvalidTransition, "booking %s is no longer %s", bookingID, from)
	}
	return b, err
}

// UpdatePayment replaces the payment of a confirmed booking whose payment is still pending
// and not expired at at. Any other stored state is ErrInvalidTransition.
func (r *PGBookingRepository) UpdatePayment(ctx context.Context, bookingID string, payment domain.Payment, at time.Time) (*domain.Booking, error) {
	doc, err := json.Marshal(payment)
	if err != nil {
		return nil, fmt.Errorf("encode payment: %w", err)
	}
	row := r.db.QueryRow(ctx, `UPDATE bookings SET payment=$1, updated_at=now()
		WHERE booking_id=$2 AND status=$3 AND payment->>'status'=$4 AND expires_at > $5
		RETURNING `+bookingColumns, doc, bookingID,
		string(domain.BookingStatusConfirmed), string(domain.PaymentStatusPending), at)
	b, err := scanBooking(row, bookingID)
	if errors.Is(err, apperror.ErrBookingNotFound) {
		return nil, apperror.Newf(apperror.ErrInvalidTransition, "booking %s is no longer awaiting payment", bookingID)
	}
	return b, err
}

// ExpireUnpaid cancels confirmed bookings whose payment is still pending at before.
func (r *PGBookingRepository) ExpireUnpaid(ctx context.Context, before time.Time) ([]domain.Booking, error) {
	rows, err := r.db.Query(ctx, `UPDATE bookings
		SET status=$1, payment=jsonb_set(payment, '{status}', to_jsonb($2::text)), updated_at=now()
		WHERE status=$3 AND payment->>'status'=$4 AND expires_at < $5
		RETURNING `+bookingColumns,
		string(domain.BookingStatusCancelled), string(domain.PaymentStatusCancelled),
		string(domain.BookingStatusConfirmed), string(domain.PaymentStatusPending), before)
	if err != nil {
		return nil, fmt.Errorf("expire unpaid bookings: %w", err)
	}
	defer rows.Close()

	var expired []domain.Booking
	for rows.Next() {
		b, err := scanBooking(rows, "")
		if err != nil {
			return nil, err
		}
		expired = append(expired, *b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("expire unpaid bookings: %w", err)
	}
	return expired, nil
}

func marshalDocs(b *domain.Booking) ([6][]byte, error) {
	var docs [6][]byte
	for i, v := range []any{b.FlightDetails, b.Passengers, b.ContactInfo, b.Pricing, b.Payment, b.Metadata} {
		data, err := json.Marshal(v)
		if err != nil {
			return docs, fmt.Errorf("encode booking %s: %w", b.BookingID, err)
		}
		docs[i] = data
	}
	return docs, nil
}

func scanBooking(row pgx.Row, bookingID string) (*domain.Booking, error) {
	var (
		b                domain.Booking
		status, provider string
		docs             [6][]byte
	)
	err := row.Scan(&b.BookingID, &b.UserID, &b.CompanyID, &status, &b.ConfirmationCode, &b.ExternalBookingRef, &provider,
		&docs[0], &docs[1], &docs[2], &docs[3], &docs[4], &docs[5], &b.ExpiresAt, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperror.New(apperror.ErrBookingNotFound, fmt.Sprintf("booking %s not found", bookingID), nil)
		}
		return nil, fmt.Errorf("scan booking %s: %w", bookingID, err)
	}
	b.Status = domain.BookingStatus(status)
	b.Provider = domain.Provider(provider)

	for i, dst := range []any{&b.FlightDetails, &b.Passengers, &b.ContactInfo, &b.Pricing, &b.Payment, &b.Metadata} {
		if err := json.Unmarshal(docs[i], dst); err != nil {
			return nil, fmt.Errorf("decode booking %s: %w", bookingID, err)
		}
	}
	return &b, nil
}

var _ BookingRepository = (*PGBookingRepository)(nil)
