package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/medsched/medsched/services/schedule-service/internal/model"
	"github.com/medsched/medsched/services/schedule-service/internal/storage"
)

type fakeSchedules struct {
	days  map[model.Weekday]model.VersionedDay
	saved []model.Weekday
}

func newFakeSchedules() *fakeSchedules {
	return &fakeSchedules{days: make(map[model.Weekday]model.VersionedDay)}
}

func (f *fakeSchedules) GetWeek(ctx context.Context, providerID string) (map[model.Weekday]model.VersionedDay, error) {
	week := make(map[model.Weekday]model.VersionedDay, 7)
	for d := model.Monday; d <= model.Sunday; d++ {
		if vd, ok := f.days[d]; ok {
			week[d] = vd
		} else {
			week[d] = model.VersionedDay{Template: model.Unavailable(d), Version: 0}
		}
	}
	return week, nil
}

func (f *fakeSchedules) GetDay(ctx context.Context, providerID string, day model.Weekday) (model.VersionedDay, error) {
	if vd, ok := f.days[day]; ok {
		return vd, nil
	}
	return model.VersionedDay{Template: model.Unavailable(day), Version: 0}, nil
}

func (f *fakeSchedules) SaveDay(ctx context.Context, providerID string, tpl model.DayTemplate, expectedVersion int64) (int64, error) {
	current := f.days[tpl.Day].Version
	if current != expectedVersion {
		return 0, storage.ErrVersionConflict
	}
	next := current + 1
	f.days[tpl.Day] = model.VersionedDay{Template: tpl, Version: next}
	f.saved = append(f.saved, tpl.Day)
	return next, nil
}

func mondayTemplate() model.DayTemplate {
	return model.DayTemplate{
		Day:         model.Monday,
		IsAvailable: true,
		Slots:       []model.TimeSlot{{StartMinute: 9 * 60, EndMinute: 12 * 60}},
	}
}

func TestOpenSnapshotsWeek(t *testing.T) {
	ctx := context.Background()
	schedules := newFakeSchedules()
	schedules.days[model.Friday] = model.VersionedDay{Template: model.DayTemplate{
		Day:         model.Friday,
		IsAvailable: true,
		Slots:       []model.TimeSlot{{StartMinute: 8 * 60, EndMinute: 10 * 60}},
	}, Version: 3}
	mgr := NewManager(NewMemoryStore(), schedules, time.Minute)

	sess, err := mgr.Open(ctx, "prov-1")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if len(sess.Draft) != 7 || len(sess.Baseline) != 7 {
		t.Fatalf("expected 7 draft and baseline days, got %d/%d", len(sess.Draft), len(sess.Baseline))
	}
	if got := sess.DirtyDays(); len(got) != 0 {
		t.Fatalf("fresh session should be clean, dirty days: %v", got)
	}
	if sess.Baseline[model.Friday].Version != 3 {
		t.Fatalf("baseline version = %d, want 3", sess.Baseline[model.Friday].Version)
	}
}

func TestEditMarksOnlyThatDayDirty(t *testing.T) {
	ctx := context.Background()
	schedules := newFakeSchedules()
	mgr := NewManager(NewMemoryStore(), schedules, time.Minute)

	sess, err := mgr.Open(ctx, "prov-1")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	sess, err = mgr.Edit(ctx, sess.ID, mondayTemplate())
	if err != nil {
		t.Fatalf("edit: %v", err)
	}

	dirty := sess.DirtyDays()
	if len(dirty) != 1 || dirty[0] != model.Monday {
		t.Fatalf("dirty days = %v, want [monday]", dirty)
	}
}

func TestSaveWritesOnlyDirtyDays(t *testing.T) {
	ctx := context.Background()
	schedules := newFakeSchedules()
	mgr := NewManager(NewMemoryStore(), schedules, time.Minute)

	sess, err := mgr.Open(ctx, "prov-1")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if _, err := mgr.Edit(ctx, sess.ID, mondayTemplate()); err != nil {
		t.Fatalf("edit monday: %v", err)
	}
	wed := model.DayTemplate{
		Day:         model.Wednesday,
		IsAvailable: true,
		Slots:       []model.TimeSlot{{StartMinute: 14 * 60, EndMinute: 17 * 60}},
	}
	if _, err := mgr.Edit(ctx, sess.ID, wed); err != nil {
		t.Fatalf("edit wednesday: %v", err)
	}

	result, sess, err := mgr.Save(ctx, sess.ID)
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if len(result.Conflicts) != 0 {
		t.Fatalf("unexpected conflicts: %v", result.Conflicts)
	}
	if len(schedules.saved) != 2 {
		t.Fatalf("store saw %d writes, want 2 (only dirty days)", len(schedules.saved))
	}
	if got := sess.DirtyDays(); len(got) != 0 {
		t.Fatalf("session should be clean after save, dirty: %v", got)
	}
	if sess.Baseline[model.Monday].Version != 1 {
		t.Fatalf("monday baseline version = %d, want 1", sess.Baseline[model.Monday].Version)
	}
}

func TestSaveValidatesAllDraftsBeforeWriting(t *testing.T) {
	ctx := context.Background()
	schedules := newFakeSchedules()
	mgr := NewManager(NewMemoryStore(), schedules, time.Minute)

	sess, err := mgr.Open(ctx, "prov-1")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if _, err := mgr.Edit(ctx, sess.ID, mondayTemplate()); err != nil {
		t.Fatalf("edit monday: %v", err)
	}
	// Available with no slots is invalid.
	bad := model.DayTemplate{Day: model.Tuesday, IsAvailable: true}
	if _, err := mgr.Edit(ctx, sess.ID, bad); err != nil {
		t.Fatalf("edit tuesday: %v", err)
	}

	_, _, err = mgr.Save(ctx, sess.ID)
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("save error = %v, want ValidationError", err)
	}
	if verr.Day != model.Tuesday {
		t.Fatalf("validation error day = %v, want tuesday", verr.Day)
	}
	if !errors.Is(err, model.ErrEmptyAvailableDay) {
		t.Fatalf("expected wrapped ErrEmptyAvailableDay, got %v", err)
	}
	if len(schedules.saved) != 0 {
		t.Fatalf("invalid save must write nothing, store saw %v", schedules.saved)
	}
}

func TestSaveVersionConflictKeepsDraft(t *testing.T) {
	ctx := context.Background()
	schedules := newFakeSchedules()
	mgr := NewManager(NewMemoryStore(), schedules, time.Minute)

	sess, err := mgr.Open(ctx, "prov-1")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if _, err := mgr.Edit(ctx, sess.ID, mondayTemplate()); err != nil {
		t.Fatalf("edit: %v", err)
	}

	// Another writer updates Monday after the session opened.
	concurrent := model.DayTemplate{
		Day:         model.Monday,
		IsAvailable: true,
		Slots:       []model.TimeSlot{{StartMinute: 13 * 60, EndMinute: 15 * 60}},
	}
	if _, err := schedules.SaveDay(ctx, "prov-1", concurrent, 0); err != nil {
		t.Fatalf("concurrent save: %v", err)
	}
	schedules.saved = nil

	result, sess, err := mgr.Save(ctx, sess.ID)
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if len(result.Conflicts) != 1 || result.Conflicts[0].Day != model.Monday {
		t.Fatalf("conflicts = %v, want monday", result.Conflicts)
	}
	if result.Conflicts[0].CurrentVersion != 1 {
		t.Fatalf("current version = %d, want 1", result.Conflicts[0].CurrentVersion)
	}
	if len(schedules.saved) != 0 {
		t.Fatalf("conflicted day must not be written, store saw %v", schedules.saved)
	}
	// Draft survives, baseline moves to storage's state.
	if !sess.IsDirty(model.Monday) {
		t.Fatal("draft edit should survive a conflict")
	}
	if !sess.Baseline[model.Monday].Template.Equal(concurrent.Normalize()) {
		t.Fatalf("baseline not refreshed: %+v", sess.Baseline[model.Monday])
	}
}

func TestRevertRestoresBaseline(t *testing.T) {
	ctx := context.Background()
	schedules := newFakeSchedules()
	mgr := NewManager(NewMemoryStore(), schedules, time.Minute)

	sess, err := mgr.Open(ctx, "prov-1")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if _, err := mgr.Edit(ctx, sess.ID, mondayTemplate()); err != nil {
		t.Fatalf("edit: %v", err)
	}
	sess, err = mgr.Revert(ctx, sess.ID, model.Monday)
	if err != nil {
		t.Fatalf("revert: %v", err)
	}
	if got := sess.DirtyDays(); len(got) != 0 {
		t.Fatalf("revert should clean the day, dirty: %v", got)
	}
}

func TestDiscardRemovesSession(t *testing.T) {
	ctx := context.Background()
	schedules := newFakeSchedules()
	mgr := NewManager(NewMemoryStore(), schedules, time.Minute)

	sess, err := mgr.Open(ctx, "prov-1")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if err := mgr.Discard(ctx, sess.ID); err != nil {
		t.Fatalf("discard: %v", err)
	}
	if _, err := mgr.Get(ctx, sess.ID); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("get after discard = %v, want ErrSessionNotFound", err)
	}
}

func TestMemoryStoreExpiry(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	sess := &Session{
		ID:         "expired",
		ProviderID: "prov-1",
		Draft:      map[model.Weekday]model.DayTemplate{},
		Baseline:   map[model.Weekday]model.VersionedDay{},
	}
	if err := store.Put(ctx, sess, -time.Second); err != nil {
		t.Fatalf("put: %v", err)
	}
	if _, err := store.Get(ctx, "expired"); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("expired get = %v, want ErrSessionNotFound", err)
	}
}
