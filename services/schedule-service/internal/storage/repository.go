package storage

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/medsched/medsched/libs/db"
	"github.com/medsched/medsched/services/schedule-service/internal/model"
)

// ErrVersionConflict signals that a day's stored version moved past the
// caller's expected version; the caller re-fetches and retries.
var ErrVersionConflict = errors.New("schedule version conflict")

// ErrNotFound is returned for unknown providers.
var ErrNotFound = errors.New("not found")

type Repository struct {
	pool *db.Pool
}

func NewRepository(pool *db.Pool) *Repository {
	return &Repository{pool: pool}
}

func (r *Repository) Begin(ctx context.Context) (pgx.Tx, error) {
	return r.pool.Begin(ctx)
}

type Profile struct {
	ProviderID          string `json:"provider_id"`
	DisplayName         string `json:"display_name"`
	Timezone            string `json:"timezone"`
	ConsultationMinutes int    `json:"consultation_minutes"`
}

func (r *Repository) GetOrCreateProfile(ctx context.Context, providerID string) (Profile, error) {
	// Materialize a default profile on first touch so a freshly registered
	// provider can open the schedule editor without a separate setup step.
	_, err := r.pool.Exec(ctx, `
		INSERT INTO provider_profiles (provider_id)
		VALUES ($1)
		ON CONFLICT (provider_id) DO NOTHING
	`, providerID)
	if err != nil {
		return Profile{}, err
	}

	var p Profile
	err = r.pool.QueryRow(ctx, `
		SELECT provider_id::text, display_name, timezone, consultation_minutes
		FROM provider_profiles
		WHERE provider_id = $1
	`, providerID).Scan(&p.ProviderID, &p.DisplayName, &p.Timezone, &p.ConsultationMinutes)
	return p, err
}

func (r *Repository) UpdateProfile(ctx context.Context, providerID, displayName, timezone string, consultationMinutes int) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO provider_profiles (provider_id, display_name, timezone, consultation_minutes)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (provider_id) DO UPDATE
		SET display_name = EXCLUDED.display_name,
			timezone = EXCLUDED.timezone,
			consultation_minutes = EXCLUDED.consultation_minutes,
			updated_at = now()
	`, providerID, displayName, timezone, consultationMinutes)
	return err
}

// GetWeek returns all seven day templates for a provider. Days never saved
// materialize as the default unavailable template at version 0.
func (r *Repository) GetWeek(ctx context.Context, providerID string) (map[model.Weekday]model.VersionedDay, error) {
	week := make(map[model.Weekday]model.VersionedDay, 7)
	for d := model.Monday; d <= model.Sunday; d++ {
		week[d] = model.VersionedDay{Template: model.Unavailable(d), Version: 0}
	}

	rows, err := r.pool.Query(ctx, `
		SELECT weekday, is_available, slots, version
		FROM provider_schedule_days
		WHERE provider_id = $1
		ORDER BY weekday
	`, providerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		day, err := scanDay(rows)
		if err != nil {
			return nil, err
		}
		week[day.Template.Day] = day
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return week, nil
}

func (r *Repository) GetDay(ctx context.Context, providerID string, day model.Weekday) (model.VersionedDay, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT weekday, is_available, slots, version
		FROM provider_schedule_days
		WHERE provider_id = $1 AND weekday = $2
	`, providerID, int(day))
	vd, err := scanDay(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return model.VersionedDay{Template: model.Unavailable(day), Version: 0}, nil
	}
	return vd, err
}

// SaveDay persists exactly one day's template, compare-and-swap on the
// per-day version. expectedVersion 0 means the caller saw the default
// (no row); any concurrent insert loses the race and conflicts.
func (r *Repository) SaveDay(ctx context.Context, tx pgx.Tx, providerID string, tpl model.DayTemplate, expectedVersion int64) (int64, error) {
	slots, err := json.Marshal(tpl.Slots)
	if err != nil {
		return 0, err
	}
	if tpl.Slots == nil {
		slots = []byte("[]")
	}

	if expectedVersion == 0 {
		var version int64
		err := tx.QueryRow(ctx, `
			INSERT INTO provider_schedule_days (provider_id, weekday, is_available, slots, version)
			VALUES ($1, $2, $3, $4, 1)
			ON CONFLICT (provider_id, weekday) DO NOTHING
			RETURNING version
		`, providerID, int(tpl.Day), tpl.IsAvailable, slots).Scan(&version)
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, ErrVersionConflict
		}
		return version, err
	}

	var version int64
	err = tx.QueryRow(ctx, `
		UPDATE provider_schedule_days
		SET is_available = $4,
			slots = $5,
			version = version + 1,
			updated_at = now()
		WHERE provider_id = $1 AND weekday = $2 AND version = $3
		RETURNING version
	`, providerID, int(tpl.Day), expectedVersion, tpl.IsAvailable, slots).Scan(&version)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, ErrVersionConflict
	}
	return version, err
}

// BlockDates adds calendar dates to the provider's blocked set and bumps
// the set version. Already-blocked dates are idempotent no-ops.
func (r *Repository) BlockDates(ctx context.Context, tx pgx.Tx, providerID string, dates []time.Time, reason string) (int64, error) {
	for _, d := range dates {
		if _, err := tx.Exec(ctx, `
			INSERT INTO provider_blocked_dates (provider_id, blocked_on, reason)
			VALUES ($1, $2, $3)
			ON CONFLICT (provider_id, blocked_on) DO NOTHING
		`, providerID, d, reason); err != nil {
			return 0, err
		}
	}
	return r.bumpBlockedVersion(ctx, tx, providerID)
}

func (r *Repository) UnblockDates(ctx context.Context, tx pgx.Tx, providerID string, dates []time.Time) (int64, error) {
	for _, d := range dates {
		if _, err := tx.Exec(ctx, `
			DELETE FROM provider_blocked_dates
			WHERE provider_id = $1 AND blocked_on = $2
		`, providerID, d); err != nil {
			return 0, err
		}
	}
	return r.bumpBlockedVersion(ctx, tx, providerID)
}

func (r *Repository) bumpBlockedVersion(ctx context.Context, tx pgx.Tx, providerID string) (int64, error) {
	var version int64
	err := tx.QueryRow(ctx, `
		INSERT INTO provider_schedule_meta (provider_id, blocked_version)
		VALUES ($1, 1)
		ON CONFLICT (provider_id) DO UPDATE
		SET blocked_version = provider_schedule_meta.blocked_version + 1,
			updated_at = now()
		RETURNING blocked_version
	`, providerID).Scan(&version)
	return version, err
}

// ListBlocked returns the blocked dates sorted ascending plus the set version.
func (r *Repository) ListBlocked(ctx context.Context, providerID string) ([]time.Time, int64, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT blocked_on
		FROM provider_blocked_dates
		WHERE provider_id = $1
		ORDER BY blocked_on
	`, providerID)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var dates []time.Time
	for rows.Next() {
		var d time.Time
		if err := rows.Scan(&d); err != nil {
			return nil, 0, err
		}
		dates = append(dates, d)
	}
	if rows.Err() != nil {
		return nil, 0, rows.Err()
	}

	var version int64
	err = r.pool.QueryRow(ctx, `
		SELECT blocked_version FROM provider_schedule_meta WHERE provider_id = $1
	`, providerID).Scan(&version)
	if errors.Is(err, pgx.ErrNoRows) {
		version = 0
		err = nil
	}
	return dates, version, err
}

func scanDay(row pgx.Row) (model.VersionedDay, error) {
	var (
		weekday     int
		isAvailable bool
		slotsRaw    []byte
		version     int64
	)
	if err := row.Scan(&weekday, &isAvailable, &slotsRaw, &version); err != nil {
		return model.VersionedDay{}, err
	}

	var slots []model.TimeSlot
	if len(slotsRaw) > 0 {
		if err := json.Unmarshal(slotsRaw, &slots); err != nil {
			return model.VersionedDay{}, err
		}
	}
	return model.VersionedDay{
		Template: model.DayTemplate{
			Day:         model.Weekday(weekday),
			IsAvailable: isAvailable,
			Slots:       slots,
		},
		Version: version,
	}, nil
}
