package storage

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/medsched/medsched/libs/db"
	"github.com/medsched/medsched/services/booking-service/internal/availability"
	"github.com/medsched/medsched/services/booking-service/internal/model"
)

type BookingRepository struct {
	pool *db.Pool
}

func NewBookingRepository(pool *db.Pool) *BookingRepository {
	return &BookingRepository{pool: pool}
}

func (r *BookingRepository) Begin(ctx context.Context) (pgx.Tx, error) {
	return r.pool.Begin(ctx)
}

type IdempotencyRecord struct {
	ProviderID      string
	IdempotencyKey  string
	BookingID       string
	StatusCode      int
	ResponsePayload []byte
}

func (r *BookingRepository) LockIdempotencyKey(ctx context.Context, tx pgx.Tx, providerID, key string) (IdempotencyRecord, bool, error) {
	rec, err := r.selectIdempotencyForUpdate(ctx, tx, providerID, key)
	if err == nil {
		return rec, true, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return IdempotencyRecord{}, false, err
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO booking_idempotency_keys (provider_id, idempotency_key)
		VALUES ($1, $2)
		ON CONFLICT (provider_id, idempotency_key) DO NOTHING
	`, providerID, key)
	if err != nil {
		return IdempotencyRecord{}, false, err
	}

	rec, err = r.selectIdempotencyForUpdate(ctx, tx, providerID, key)
	if err != nil {
		return IdempotencyRecord{}, false, err
	}
	return rec, false, nil
}

func (r *BookingRepository) FinalizeIdempotency(ctx context.Context, tx pgx.Tx, providerID, key, bookingID string, statusCode int, response []byte) error {
	_, err := tx.Exec(ctx, `
		UPDATE booking_idempotency_keys
		SET booking_id = NULLIF($3, '')::uuid,
			status_code = $4,
			response_payload = $5,
			updated_at = now()
		WHERE provider_id = $1 AND idempotency_key = $2
	`, providerID, key, bookingID, statusCode, response)
	return err
}

// Create inserts an active booking. The partial unique index on
// (provider_id, booked_on, start_minute) lets exactly one concurrent caller
// win; the loser surfaces through IsSlotTaken.
func (r *BookingRepository) Create(ctx context.Context, tx pgx.Tx, b *model.Booking) (string, error) {
	var id string
	err := tx.QueryRow(ctx, `
		INSERT INTO bookings
			(provider_id, patient_id, patient_name, patient_email, booked_on, start_minute, end_minute, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id
	`, b.ProviderID, b.PatientID, b.PatientName, b.PatientEmail,
		b.BookedOn, b.StartMinute, b.EndMinute, b.Status).Scan(&id)
	if err != nil {
		return "", err
	}
	return id, nil
}

func (r *BookingRepository) GetForUpdate(ctx context.Context, tx pgx.Tx, providerID, bookingID string) (model.Booking, error) {
	var b model.Booking
	var releasedAt *time.Time
	err := tx.QueryRow(ctx, `
		SELECT id, provider_id, patient_id, patient_name, patient_email,
			booked_on, start_minute, end_minute, status, released_at, release_reason, created_at
		FROM bookings
		WHERE id = $1 AND provider_id = $2
		FOR UPDATE
	`, bookingID, providerID).Scan(
		&b.ID,
		&b.ProviderID,
		&b.PatientID,
		&b.PatientName,
		&b.PatientEmail,
		&b.BookedOn,
		&b.StartMinute,
		&b.EndMinute,
		&b.Status,
		&releasedAt,
		&b.ReleaseReason,
		&b.CreatedAt,
	)
	if err != nil {
		return model.Booking{}, err
	}
	b.ReleasedAt = releasedAt
	return b, nil
}

func (r *BookingRepository) Release(ctx context.Context, tx pgx.Tx, providerID, bookingID, reason string) (time.Time, error) {
	var releasedAt time.Time
	err := tx.QueryRow(ctx, `
		UPDATE bookings
		SET status = 'released',
			released_at = now(),
			release_reason = $3
		WHERE id = $1 AND provider_id = $2
		RETURNING released_at
	`, bookingID, providerID, reason).Scan(&releasedAt)
	return releasedAt, err
}

// ListActiveWindows returns the busy intervals for one provider day, used
// to knock booked units out of the availability response.
func (r *BookingRepository) ListActiveWindows(ctx context.Context, providerID string, bookedOn time.Time) ([]availability.Window, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT start_minute, end_minute
		FROM bookings
		WHERE provider_id = $1 AND booked_on = $2 AND status = 'active'
		ORDER BY start_minute
	`, providerID, bookedOn)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var busy []availability.Window
	for rows.Next() {
		var w availability.Window
		if err := rows.Scan(&w.StartMinute, &w.EndMinute); err != nil {
			return nil, err
		}
		busy = append(busy, w)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return busy, nil
}

func (r *BookingRepository) ListByProvider(ctx context.Context, providerID string, from, to *time.Time, limit int) ([]model.Booking, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := r.pool.Query(ctx, `
		SELECT id, provider_id, patient_id, patient_name, patient_email,
			booked_on, start_minute, end_minute, status, released_at, release_reason, created_at
		FROM bookings
		WHERE provider_id = $1
			AND ($2::date IS NULL OR booked_on >= $2)
			AND ($3::date IS NULL OR booked_on <= $3)
		ORDER BY booked_on DESC, start_minute DESC
		LIMIT $4
	`, providerID, from, to, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var bookings []model.Booking
	for rows.Next() {
		var b model.Booking
		var releasedAt *time.Time
		if err := rows.Scan(
			&b.ID,
			&b.ProviderID,
			&b.PatientID,
			&b.PatientName,
			&b.PatientEmail,
			&b.BookedOn,
			&b.StartMinute,
			&b.EndMinute,
			&b.Status,
			&releasedAt,
			&b.ReleaseReason,
			&b.CreatedAt,
		); err != nil {
			return nil, err
		}
		b.ReleasedAt = releasedAt
		bookings = append(bookings, b)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return bookings, nil
}

// IsSlotTaken reports a unique violation on the active-slot index.
func IsSlotTaken(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

func IsNotFound(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}

func (r *BookingRepository) selectIdempotencyForUpdate(ctx context.Context, tx pgx.Tx, providerID, key string) (IdempotencyRecord, error) {
	var rec IdempotencyRecord
	var responseText string
	err := tx.QueryRow(ctx, `
		SELECT provider_id::text,
			idempotency_key,
			COALESCE(booking_id::text, ''),
			COALESCE(status_code, 0),
			COALESCE(response_payload::text, '')
		FROM booking_idempotency_keys
		WHERE provider_id = $1 AND idempotency_key = $2
		FOR UPDATE
	`, providerID, key).Scan(
		&rec.ProviderID,
		&rec.IdempotencyKey,
		&rec.BookingID,
		&rec.StatusCode,
		&responseText,
	)
	if err != nil {
		return IdempotencyRecord{}, err
	}
	if responseText != "" {
		rec.ResponsePayload = []byte(responseText)
	}
	return rec, nil
}
