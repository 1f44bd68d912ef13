package storage

import (
	"context"
	"time"

	"github.com/medsched/medsched/libs/db"
	"github.com/medsched/medsched/services/schedule-service/internal/model"
	"github.com/medsched/medsched/services/schedule-service/internal/outbox"
)

// Store wraps the repository so every schedule write and its outbox event
// land in the same transaction.
type Store struct {
	pool   *db.Pool
	repo   *Repository
	outbox *outbox.Repository
}

func NewStore(pool *db.Pool, repo *Repository, ob *outbox.Repository) *Store {
	return &Store{pool: pool, repo: repo, outbox: ob}
}

func (s *Store) GetWeek(ctx context.Context, providerID string) (map[model.Weekday]model.VersionedDay, error) {
	return s.repo.GetWeek(ctx, providerID)
}

func (s *Store) GetDay(ctx context.Context, providerID string, day model.Weekday) (model.VersionedDay, error) {
	return s.repo.GetDay(ctx, providerID, day)
}

func (s *Store) GetOrCreateProfile(ctx context.Context, providerID string) (Profile, error) {
	return s.repo.GetOrCreateProfile(ctx, providerID)
}

func (s *Store) UpdateProfile(ctx context.Context, providerID, displayName, timezone string, consultationMinutes int) error {
	return s.repo.UpdateProfile(ctx, providerID, displayName, timezone, consultationMinutes)
}

func (s *Store) ListBlocked(ctx context.Context, providerID string) ([]time.Time, int64, error) {
	return s.repo.ListBlocked(ctx, providerID)
}

func (s *Store) SaveDay(ctx context.Context, providerID string, tpl model.DayTemplate, expectedVersion int64) (int64, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return 0, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	version, err := s.repo.SaveDay(ctx, tx, providerID, tpl, expectedVersion)
	if err != nil {
		return 0, err
	}
	evt := outbox.NewDayUpdated(providerID, tpl.Day.String(), tpl.IsAvailable, version)
	if err := s.outbox.Insert(ctx, tx, evt); err != nil {
		return 0, err
	}
	if err := tx.Commit(ctx); err != nil {
		return 0, err
	}
	return version, nil
}

func (s *Store) BlockDates(ctx context.Context, providerID string, dates []time.Time, reason string) (int64, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return 0, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	version, err := s.repo.BlockDates(ctx, tx, providerID, dates, reason)
	if err != nil {
		return 0, err
	}
	if err := s.outbox.Insert(ctx, tx, outbox.NewDatesBlocked(providerID, dates, version)); err != nil {
		return 0, err
	}
	if err := tx.Commit(ctx); err != nil {
		return 0, err
	}
	return version, nil
}

func (s *Store) UnblockDates(ctx context.Context, providerID string, dates []time.Time) (int64, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return 0, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	version, err := s.repo.UnblockDates(ctx, tx, providerID, dates)
	if err != nil {
		return 0, err
	}
	if err := s.outbox.Insert(ctx, tx, outbox.NewDatesUnblocked(providerID, dates, version)); err != nil {
		return 0, err
	}
	if err := tx.Commit(ctx); err != nil {
		return 0, err
	}
	return version, nil
}
