package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/medsched/medsched/services/schedule-service/internal/model"
	"github.com/medsched/medsched/services/schedule-service/internal/storage"
)

// ScheduleStore is the slice of schedule storage the manager needs.
type ScheduleStore interface {
	GetWeek(ctx context.Context, providerID string) (map[model.Weekday]model.VersionedDay, error)
	GetDay(ctx context.Context, providerID string, day model.Weekday) (model.VersionedDay, error)
	SaveDay(ctx context.Context, providerID string, tpl model.DayTemplate, expectedVersion int64) (int64, error)
}

// ValidationError reports which draft day failed template validation.
type ValidationError struct {
	Day model.Weekday
	Err error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid template for %s: %v", e.Day, e.Err)
}

func (e *ValidationError) Unwrap() error { return e.Err }

// DayConflict records a day whose stored version moved while the session
// held a draft edit for it.
type DayConflict struct {
	Day             model.Weekday `json:"day"`
	ExpectedVersion int64         `json:"expected_version"`
	CurrentVersion  int64         `json:"current_version"`
}

// SaveResult reports the outcome of a save attempt. Conflicted days keep
// their draft edits; their baselines are refreshed to the stored state so
// the provider can review and retry.
type SaveResult struct {
	Saved     []model.Weekday
	Conflicts []DayConflict
}

type Manager struct {
	store     Store
	schedules ScheduleStore
	ttl       time.Duration
}

func NewManager(store Store, schedules ScheduleStore, ttl time.Duration) *Manager {
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	return &Manager{store: store, schedules: schedules, ttl: ttl}
}

// Open snapshots the provider's current week into a new draft session.
func (m *Manager) Open(ctx context.Context, providerID string) (*Session, error) {
	week, err := m.schedules.GetWeek(ctx, providerID)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	sess := &Session{
		ID:         uuid.NewString(),
		ProviderID: providerID,
		Draft:      make(map[model.Weekday]model.DayTemplate, len(week)),
		Baseline:   week,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	for d, vd := range week {
		sess.Draft[d] = vd.Template.CloneSlots()
	}

	if err := m.store.Put(ctx, sess, m.ttl); err != nil {
		return nil, err
	}
	return sess, nil
}

func (m *Manager) Get(ctx context.Context, id string) (*Session, error) {
	return m.store.Get(ctx, id)
}

// Edit replaces one day's draft template and extends the session TTL.
func (m *Manager) Edit(ctx context.Context, id string, tpl model.DayTemplate) (*Session, error) {
	sess, err := m.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	sess.SetDay(tpl)
	if err := m.store.Put(ctx, sess, m.ttl); err != nil {
		return nil, err
	}
	return sess, nil
}

// Revert restores one day's draft to its baseline.
func (m *Manager) Revert(ctx context.Context, id string, day model.Weekday) (*Session, error) {
	sess, err := m.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	sess.Revert(day)
	if err := m.store.Put(ctx, sess, m.ttl); err != nil {
		return nil, err
	}
	return sess, nil
}

func (m *Manager) Discard(ctx context.Context, id string) error {
	return m.store.Delete(ctx, id)
}

// Save persists every dirty day, each compare-and-swapped against the
// baseline version captured when the session last saw it. All dirty drafts
// are validated before anything is written so a bad Tuesday cannot leave a
// half-saved week. Clean days are never written, whatever happened to them
// in storage meanwhile.
func (m *Manager) Save(ctx context.Context, id string) (SaveResult, *Session, error) {
	sess, err := m.store.Get(ctx, id)
	if err != nil {
		return SaveResult{}, nil, err
	}

	dirty := sess.DirtyDays()
	for _, d := range dirty {
		if err := model.Validate(sess.Draft[d]); err != nil {
			return SaveResult{}, sess, &ValidationError{Day: d, Err: err}
		}
	}

	var result SaveResult
	for _, d := range dirty {
		draft := sess.Draft[d]
		expected := sess.Baseline[d].Version

		version, err := m.schedules.SaveDay(ctx, sess.ProviderID, draft, expected)
		if errors.Is(err, storage.ErrVersionConflict) {
			current, gerr := m.schedules.GetDay(ctx, sess.ProviderID, d)
			if gerr != nil {
				return result, sess, gerr
			}
			sess.Baseline[d] = current
			result.Conflicts = append(result.Conflicts, DayConflict{
				Day:             d,
				ExpectedVersion: expected,
				CurrentVersion:  current.Version,
			})
			continue
		}
		if err != nil {
			return result, sess, err
		}

		sess.Baseline[d] = model.VersionedDay{Template: draft.CloneSlots(), Version: version}
		result.Saved = append(result.Saved, d)
	}

	sess.UpdatedAt = time.Now().UTC()
	if err := m.store.Put(ctx, sess, m.ttl); err != nil {
		return result, sess, err
	}
	return result, sess, nil
}
