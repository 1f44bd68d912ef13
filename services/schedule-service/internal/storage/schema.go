package storage

import (
	"context"

	"github.com/medsched/medsched/libs/db"
)

// Schema statements are idempotent so the service can converge the database
// on startup (SCHEDULE_DB_AUTOMIGRATE=true in dev/compose environments).
var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS provider_profiles (
		provider_id uuid PRIMARY KEY,
		display_name text NOT NULL DEFAULT '',
		timezone text NOT NULL DEFAULT 'UTC',
		consultation_minutes int NOT NULL DEFAULT 30 CHECK (consultation_minutes > 0),
		created_at timestamptz NOT NULL DEFAULT now(),
		updated_at timestamptz NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS provider_schedule_days (
		provider_id uuid NOT NULL,
		weekday smallint NOT NULL CHECK (weekday BETWEEN 0 AND 6),
		is_available boolean NOT NULL DEFAULT false,
		slots jsonb NOT NULL DEFAULT '[]'::jsonb,
		version bigint NOT NULL DEFAULT 1,
		updated_at timestamptz NOT NULL DEFAULT now(),
		PRIMARY KEY (provider_id, weekday)
	)`,
	`CREATE TABLE IF NOT EXISTS provider_blocked_dates (
		provider_id uuid NOT NULL,
		blocked_on date NOT NULL,
		reason text NOT NULL DEFAULT '',
		created_at timestamptz NOT NULL DEFAULT now(),
		PRIMARY KEY (provider_id, blocked_on)
	)`,
	`CREATE TABLE IF NOT EXISTS provider_schedule_meta (
		provider_id uuid PRIMARY KEY,
		blocked_version bigint NOT NULL DEFAULT 0,
		updated_at timestamptz NOT NULL DEFAULT now()
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
