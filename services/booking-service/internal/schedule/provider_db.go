package schedule

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/medsched/medsched/libs/db"
	"github.com/medsched/medsched/services/booking-service/internal/availability"
)

// DBProvider reads the schedule tables directly. Both services share one
// Postgres instance, so this is the default wiring; the gRPC client takes
// over when the services are split.
type DBProvider struct {
	pool *db.Pool
}

func NewDBProvider(pool *db.Pool) *DBProvider {
	return &DBProvider{pool: pool}
}

func (p *DBProvider) DayAvailability(ctx context.Context, providerID, date string) (DayAvailability, error) {
	out := DayAvailability{Timezone: "UTC", ConsultationMinutes: 30}

	var timezone string
	var consultationMinutes int
	err := p.pool.QueryRow(ctx, `
		SELECT timezone, consultation_minutes
		FROM provider_profiles
		WHERE provider_id = $1
	`, providerID).Scan(&timezone, &consultationMinutes)
	if errors.Is(err, pgx.ErrNoRows) {
		// Profiles are created lazily, so absence alone is not conclusive;
		// a provider with no schedule rows either is unknown.
		known, kerr := p.hasScheduleDays(ctx, providerID)
		if kerr != nil {
			return out, kerr
		}
		if !known {
			return out, ErrProviderNotFound
		}
	} else if err != nil {
		return out, err
	}
	if strings.TrimSpace(timezone) != "" {
		out.Timezone = strings.TrimSpace(timezone)
	}
	if consultationMinutes > 0 {
		out.ConsultationMinutes = consultationMinutes
	}

	day, err := time.ParseInLocation("2006-01-02", date, out.Location())
	if err != nil {
		return out, fmt.Errorf("invalid date %q", date)
	}

	var blocked bool
	err = p.pool.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM provider_blocked_dates
			WHERE provider_id = $1 AND blocked_on = $2
		)
	`, providerID, day).Scan(&blocked)
	if err != nil {
		return out, err
	}
	if blocked {
		return out, nil
	}

	// Weekday column counts Monday as 0.
	weekday := (int(day.Weekday()) + 6) % 7

	var isAvailable bool
	var slotsRaw []byte
	var version int64
	err = p.pool.QueryRow(ctx, `
		SELECT is_available, slots, version
		FROM provider_schedule_days
		WHERE provider_id = $1 AND weekday = $2
	`, providerID, weekday).Scan(&isAvailable, &slotsRaw, &version)
	if errors.Is(err, pgx.ErrNoRows) {
		return out, nil
	}
	if err != nil {
		return out, err
	}
	out.ScheduleVersion = version
	if !isAvailable {
		return out, nil
	}

	windows, err := parseStoredSlots(slotsRaw)
	if err != nil {
		return out, err
	}
	out.Bookable = true
	out.Windows = windows
	return out, nil
}

func (p *DBProvider) hasScheduleDays(ctx context.Context, providerID string) (bool, error) {
	var exists bool
	err := p.pool.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM provider_schedule_days
			WHERE provider_id = $1
		)
	`, providerID).Scan(&exists)
	return exists, err
}

type storedSlot struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// parseStoredSlots decodes the jsonb slot list written by the schedule
// service, with times as HH:MM clock strings.
func parseStoredSlots(raw []byte) ([]availability.Window, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	var stored []storedSlot
	if err := json.Unmarshal(raw, &stored); err != nil {
		return nil, err
	}
	windows := make([]availability.Window, 0, len(stored))
	for _, s := range stored {
		start, err := parseClock(s.Start)
		if err != nil {
			return nil, err
		}
		end, err := parseClock(s.End)
		if err != nil {
			return nil, err
		}
		windows = append(windows, availability.Window{StartMinute: start, EndMinute: end})
	}
	return windows, nil
}

func parseClock(s string) (int, error) {
	t, err := time.Parse("15:04", s)
	if err != nil {
		if s == "24:00" {
			return 24 * 60, nil
		}
		return 0, fmt.Errorf("invalid clock value %q", s)
	}
	return t.Hour()*60 + t.Minute(), nil
}
