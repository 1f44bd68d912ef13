package storage

import (
	"context"

	"github.com/medsched/medsched/libs/db"
)

var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS bookings (
		id uuid PRIMARY KEY DEFAULT gen_random_uuid(),
		provider_id uuid NOT NULL,
		patient_id text NOT NULL DEFAULT '',
		patient_name text NOT NULL,
		patient_email text NOT NULL DEFAULT '',
		booked_on date NOT NULL,
		start_minute int NOT NULL,
		end_minute int NOT NULL,
		status text NOT NULL DEFAULT 'active',
		released_at timestamptz,
		release_reason text NOT NULL DEFAULT '',
		created_at timestamptz NOT NULL DEFAULT now(),
		CHECK (start_minute >= 0 AND end_minute <= 1440 AND start_minute < end_minute)
	)`,
	// One active booking per provider slot; released bookings free the slot.
	`CREATE UNIQUE INDEX IF NOT EXISTS uq_bookings_active_slot
		ON bookings (provider_id, booked_on, start_minute)
		WHERE status = 'active'`,
	`CREATE INDEX IF NOT EXISTS idx_bookings_provider_date ON bookings (provider_id, booked_on)`,
	`CREATE TABLE IF NOT EXISTS booking_idempotency_keys (
		provider_id uuid NOT NULL,
		idempotency_key text NOT NULL,
		booking_id uuid,
		status_code int,
		response_payload jsonb,
		created_at timestamptz NOT NULL DEFAULT now(),
		updated_at timestamptz NOT NULL DEFAULT now(),
		PRIMARY KEY (provider_id, idempotency_key)
	)`,
	`CREATE TABLE IF NOT EXISTS outbox_events (
		id bigserial PRIMARY KEY,
		event_id uuid NOT NULL DEFAULT gen_random_uuid(),
		aggregate_type text NOT NULL,
		aggregate_id text NOT NULL,
		event_type text NOT NULL,
		payload jsonb NOT NULL,
		traceparent text NOT NULL DEFAULT '',
		tracestate text NOT NULL DEFAULT '',
		published_at timestamptz,
		created_at timestamptz NOT NULL DEFAULT now()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_outbox_unpublished ON outbox_events (id) WHERE published_at IS NULL`,
}

func EnsureSchema(ctx context.Context, pool *db.Pool) error {
	for _, stmt := range schemaStatements {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}
